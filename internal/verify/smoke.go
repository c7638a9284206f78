package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tsukumogami/g4install/internal/shell"
	"github.com/tsukumogami/g4install/internal/workspace"
)

// ExampleDirName is the copy of example B1 made in the home directory.
const ExampleDirName = "geant4-example-B1"

// ExampleMacro is the batch macro shipped with B1. The build copies it next
// to the executable.
const ExampleMacro = "exampleB1.in"

// ExampleSource is where an install keeps basic example B1.
func ExampleSource(install string) string {
	return filepath.Join(install, "share", "Geant4", "examples", "basic", "B1")
}

// runExampleB1 copies B1 to a writable place, builds it against install
// and runs it with the environment script sourced. Without a terminal the
// example runs its batch macro instead of the interactive UI session.
func (s *Stage) runExampleB1(ctx context.Context, install, home string, cores int) error {
	console := s.Session.Console
	if cores <= 0 {
		cores = 1
	}
	src := ExampleSource(install)
	dst := filepath.Join(home, ExampleDirName)
	buildDir := filepath.Join(dst, "build")

	console.Info("Copying Example B1 to a writable directory...")
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("failed to remove previous copy: %w", err)
	}
	if err := workspace.CopyDir(src, dst); err != nil {
		return fmt.Errorf("failed to copy example: %w", err)
	}
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", buildDir, err)
	}

	run := "./exampleB1"
	if !s.Session.Mode.ReadsInput() {
		run += " " + ExampleMacro
	}

	steps := []struct {
		cmd         shell.Command
		description string
	}{
		{shell.Cmd("cmake", "-DGeant4_DIR="+filepath.Join(install, "lib", "cmake", "Geant4"), ".."), "Configuring Example B1"},
		{shell.Cmd("make", "-j"+strconv.Itoa(cores)), "Building Example B1"},
		{shell.Cmd("bash", "-c", "source "+filepath.Join(install, "bin", "geant4.sh")+" && "+run), "Running Example B1"},
	}
	for _, step := range steps {
		cmd := step.cmd.In(buildDir)
		console.Infof("Running command: %s (%s)", cmd, step.description)
		if err := s.Runner.RunInteractive(ctx, cmd); err != nil {
			return fmt.Errorf("%s: %w", step.description, err)
		}
	}
	return nil
}
