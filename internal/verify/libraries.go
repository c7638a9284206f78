package verify

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// LibraryProblem is a category of broken installed library.
type LibraryProblem int

const (
	// ProblemUnreadable means the file could not be opened.
	ProblemUnreadable LibraryProblem = iota
	// ProblemInvalidFormat means the file is not ELF at all.
	ProblemInvalidFormat
	// ProblemNotShared means the file is ELF but not a shared object.
	ProblemNotShared
	// ProblemWrongArch means the library targets another machine.
	ProblemWrongArch
	// ProblemTruncated means the file ends early, usually an interrupted install.
	ProblemTruncated
)

func (p LibraryProblem) String() string {
	switch p {
	case ProblemUnreadable:
		return "unreadable"
	case ProblemInvalidFormat:
		return "invalid format"
	case ProblemNotShared:
		return "not a shared library"
	case ProblemWrongArch:
		return "wrong architecture"
	case ProblemTruncated:
		return "truncated"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// LibraryError describes one installed library that failed validation.
type LibraryError struct {
	Problem LibraryProblem
	Path    string
	Err     error
}

func (e *LibraryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", filepath.Base(e.Path), e.Problem, e.Err)
	}
	return fmt.Sprintf("%s: %s", filepath.Base(e.Path), e.Problem)
}

func (e *LibraryError) Unwrap() error { return e.Err }

// FindLibraries lists the installed Geant4 shared libraries (libG4*.so)
// under lib and lib64 of installPath.
func FindLibraries(installPath string) []string {
	var libs []string
	for _, dir := range []string{"lib", "lib64"} {
		matches, _ := filepath.Glob(filepath.Join(installPath, dir, "libG4*.so"))
		libs = append(libs, matches...)
	}
	sort.Strings(libs)
	return libs
}

// ValidateLibrary checks that path is an ELF shared object for the running
// architecture.
func ValidateLibrary(path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &LibraryError{Problem: ProblemInvalidFormat, Path: path, Err: fmt.Errorf("parser panic: %v", r)}
		}
	}()

	f, err := elf.Open(path)
	if err != nil {
		return categorizeELFError(path, err)
	}
	defer func() { _ = f.Close() }()

	if f.Type != elf.ET_DYN {
		return &LibraryError{Problem: ProblemNotShared, Path: path, Err: fmt.Errorf("file is %s", elfTypeName(f.Type))}
	}
	if want := elfMachine(runtime.GOARCH); want != elf.EM_NONE && f.Machine != want {
		return &LibraryError{Problem: ProblemWrongArch, Path: path, Err: fmt.Errorf("library is %s, expected %s", f.Machine, want)}
	}
	return nil
}

func elfMachine(goarch string) elf.Machine {
	switch goarch {
	case "amd64":
		return elf.EM_X86_64
	case "arm64":
		return elf.EM_AARCH64
	case "386":
		return elf.EM_386
	case "arm":
		return elf.EM_ARM
	default:
		return elf.EM_NONE
	}
}

func elfTypeName(t elf.Type) string {
	switch t {
	case elf.ET_REL:
		return "a relocatable object"
	case elf.ET_EXEC:
		return "an executable"
	case elf.ET_CORE:
		return "a core dump"
	default:
		return fmt.Sprintf("ELF type %d", t)
	}
}

func categorizeELFError(path string, err error) *LibraryError {
	switch {
	case strings.Contains(err.Error(), "bad magic"):
		return &LibraryError{Problem: ProblemInvalidFormat, Path: path, Err: err}
	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		return &LibraryError{Problem: ProblemTruncated, Path: path, Err: err}
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return &LibraryError{Problem: ProblemUnreadable, Path: path, Err: err}
	default:
		return &LibraryError{Problem: ProblemInvalidFormat, Path: path, Err: err}
	}
}
