//go:build linux || darwin || freebsd || netbsd || openbsd

package workspace

import "golang.org/x/sys/unix"

func canWrite(path string) error {
	return unix.Access(path, unix.W_OK)
}
