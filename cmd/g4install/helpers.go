package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tsukumogami/g4install/internal/errmsg"
	"github.com/tsukumogami/g4install/internal/progress"
)

// stderr is where errors are reported; tests replace it.
var stderr io.Writer = os.Stderr

// printError prints an error to stderr with suggestions if available.
func printError(err error, ctx *errmsg.ErrorContext) {
	msg := errmsg.Format(err, ctx)
	fmt.Fprintf(stderr, "Error: %s", msg)
	if !strings.HasSuffix(msg, "\n") {
		fmt.Fprintln(stderr)
	}
}

// reportError prints err the way its kind calls for and returns the exit
// code. An abort is a cancellation and is not printed as an error.
func reportError(err error) int {
	code := exitCodeFor(err)
	if code == ExitAborted {
		fmt.Fprintln(stderr, "Installation aborted. Existing files were left in place.")
		return code
	}
	printError(err, &errmsg.ErrorContext{Release: installFlags.release, Workspace: installFlags.workspace})
	return code
}

// colorEnabled reports whether console tags should be coloured.
func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return progress.ShouldShowProgress()
}

// newSpinner returns a stderr spinner on a terminal, and nil when output is
// redirected or --quiet is set.
func newSpinner() *progress.Spinner {
	if quietFlag || !progress.ShouldShowProgress() {
		return nil
	}
	return progress.NewSpinner(os.Stderr)
}
