package verify

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// AliasName is the shell alias for a release, e.g. "geant4-11_3_2".
func AliasName(release string) string {
	return "geant4-" + strings.ReplaceAll(release, ".", "_")
}

// AliasLine sources the environment script of installPath under AliasName.
func AliasLine(release, installPath string) string {
	return fmt.Sprintf(`alias %s="source %s/bin/geant4.sh"`, AliasName(release), installPath)
}

// SourceLine sources the environment script on every shell start.
func SourceLine(installPath string) string {
	return fmt.Sprintf("source %s/bin/geant4.sh", installPath)
}

// HasLine reports whether path contains line exactly (ignoring surrounding
// whitespace). A missing file has no lines.
func HasLine(path, line string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	want := strings.TrimSpace(line)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == want {
			return true, nil
		}
	}
	return false, sc.Err()
}

// AppendLine appends line to path unless it is already present. It
// reports whether the file was changed. The file is created if missing.
func AppendLine(path, line string) (bool, error) {
	present, err := HasLine(path, line)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if present {
		return false, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err := fmt.Fprintf(f, "\n%s\n", line); err != nil {
		f.Close()
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return false, err
	}
	return true, nil
}
