package version

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

var (
	sourceDirPattern = regexp.MustCompile(`^geant4-v(\d+)\.(\d+)(?:\.(\d+))?$`)
	headerDefine     = regexp.MustCompile(`(?m)^\s*#define\s+G4VERSION_(MAJOR|MINOR|PATCH)\s+(\d+)`)
)

// VersionHeaderName is the in-tree file declaring the release numbers.
const VersionHeaderName = "G4Version.hh"

// FromSourceDirName parses a source directory name such as
// "geant4-v11.3.2". Build and install directories do not match.
func FromSourceDirName(name string) (TargetVersion, bool) {
	m := sourceDirPattern.FindStringSubmatch(name)
	if m == nil {
		return TargetVersion{}, false
	}
	v, err := Parse(name[len("geant4-v"):])
	if err != nil {
		return TargetVersion{}, false
	}
	return v, true
}

// ParseVersionHeader reads G4VERSION_MAJOR, _MINOR and _PATCH from a
// G4Version.hh file. All three must be present.
func ParseVersionHeader(path string) (TargetVersion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TargetVersion{}, err
	}

	parts := make(map[string]uint64, 3)
	for _, m := range headerDefine.FindAllStringSubmatch(string(data), -1) {
		n, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			continue
		}
		parts[m[1]] = n
	}
	for _, key := range []string{"MAJOR", "MINOR", "PATCH"} {
		if _, ok := parts[key]; !ok {
			return TargetVersion{}, &ResolverError{
				Type:    ErrTypeParsing,
				Source:  "local",
				Message: fmt.Sprintf("%s has no G4VERSION_%s", path, key),
			}
		}
	}
	return FromParts(parts["MAJOR"], parts["MINOR"], parts["PATCH"]), nil
}

var errHeaderFound = errors.New("found")

// FindVersionHeader walks sourceDir and returns the first G4Version.hh.
func FindVersionHeader(sourceDir string) (string, bool) {
	var found string
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == VersionHeaderName {
			found = path
			return errHeaderFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errHeaderFound) {
		return "", false
	}
	return found, found != ""
}

// DiscoverLocal lists the releases that already have a non-empty source
// directory under root, newest first. Empty directories are left over from
// a failed extraction and are not resumable. A missing root yields nothing.
func DiscoverLocal(root string) ([]TargetVersion, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace %s: %w", root, err)
	}

	var found []TargetVersion
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		v, ok := FromSourceDirName(e.Name())
		if !ok {
			continue
		}
		if !hasEntries(filepath.Join(root, e.Name())) {
			continue
		}
		found = append(found, v)
	}
	return SortDescending(found), nil
}

// hasEntries reports whether dir can be read and holds at least one entry.
func hasEntries(dir string) bool {
	f, err := os.Open(dir)
	if err != nil {
		return false
	}
	defer f.Close()
	names, _ := f.Readdirnames(1)
	return len(names) > 0
}
