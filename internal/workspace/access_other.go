//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package workspace

import (
	"fmt"
	"os"
)

// canWrite only checks the owner write bit where access(2) is unavailable.
func canWrite(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm()&0200 == 0 {
		return fmt.Errorf("%s: %w", path, os.ErrPermission)
	}
	return nil
}
