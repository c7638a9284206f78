package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tsukumogami/g4install/internal/prompt"
	"github.com/tsukumogami/g4install/internal/shell"
)

// Writable reports whether the current user may create entries in path.
// A missing path is judged by its nearest existing ancestor.
func Writable(path string) bool {
	for {
		err := canWrite(path)
		if err == nil {
			return true
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return false
		}
		parent := filepath.Dir(path)
		if parent == path {
			return false
		}
		path = parent
	}
}

// EnsureWritable checks the workspace root and, if it is not writable,
// offers to take ownership of it with "sudo chown -R $USER:$USER".
func (w *Workspace) EnsureWritable(ctx context.Context, session *prompt.Session, runner shell.Runner) error {
	if Writable(w.Root) {
		return nil
	}

	session.Console.Warnf("Write permission denied for %s.", w.Root)
	user := os.Getenv("USER")
	if user == "" {
		return fmt.Errorf("workspace %s is not writable and $USER is unset", w.Root)
	}

	ok, err := session.Confirm(ctx, fmt.Sprintf("Change ownership of %s to %s?", w.Root, user), true)
	if err != nil {
		return err
	}
	if !ok {
		return prompt.ErrAborted
	}

	cmd := shell.Cmd("chown", "-R", user+":"+user, w.Root).AsRoot()
	session.Console.Infof("Running command: %s", cmd)
	if err := runner.RunInteractive(ctx, cmd); err != nil {
		return fmt.Errorf("failed to change ownership of %s: %w", w.Root, err)
	}
	session.Console.Successf("Ownership of %s successfully changed.", w.Root)
	return nil
}
