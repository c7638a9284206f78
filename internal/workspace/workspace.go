// Package workspace derives the on-disk layout of an install from the
// workspace root and the selected release.
//
// For release 11.3.2 under root R:
//
//	R/geant4-v11.3.2.tar.gz    archive
//	R/geant4-v11.3.2           extracted source
//	R/geant4-v11.3.2-build     build directory
//	R/geant4-v11.3.2-install   install prefix
package workspace

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tsukumogami/g4install/internal/version"
)

// Workspace is a pure function of the root and the release; nothing is
// created until EnsureRoot is called.
type Workspace struct {
	Root    string
	Version version.TargetVersion
}

// New validates its inputs and returns the layout for v under root.
func New(root string, v version.TargetVersion) (*Workspace, error) {
	if v.IsZero() {
		return nil, errors.New("workspace requires a selected version")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	return &Workspace{Root: abs, Version: v}, nil
}

// Name is the shared stem, e.g. "geant4-v11.3.2".
func (w *Workspace) Name() string { return "geant4-" + w.Version.Tag() }

func (w *Workspace) ArchiveName() string  { return w.Name() + ".tar.gz" }
func (w *Workspace) BuildDirName() string { return w.Name() + "-build" }

func (w *Workspace) ArchivePath() string { return filepath.Join(w.Root, w.ArchiveName()) }
func (w *Workspace) SourceDir() string   { return filepath.Join(w.Root, w.Name()) }
func (w *Workspace) BuildDir() string    { return filepath.Join(w.Root, w.BuildDirName()) }

// InstallPath is the prefix handed to CMake and checked by verification.
func (w *Workspace) InstallPath() string { return filepath.Join(w.Root, w.Name()+"-install") }

// InstructionsPath is where the configuration guide is written.
func (w *Workspace) InstructionsPath() string {
	return filepath.Join(w.BuildDir(), InstructionsFileName)
}

// InstructionsFileName is the generated configuration guide.
const InstructionsFileName = "geant4_install_instructions.txt"

// EnsureRoot creates the workspace root if needed.
func (w *Workspace) EnsureRoot() error {
	if err := os.MkdirAll(w.Root, 0755); err != nil {
		return fmt.Errorf("failed to create workspace %s: %w", w.Root, err)
	}
	return nil
}

// Exists reports whether path exists (following symlinks).
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsEmptyDir reports whether path is missing or an empty directory. A
// regular file at path is an error.
func IsEmptyDir(path string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s exists and is not a directory", path)
	}
	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}
