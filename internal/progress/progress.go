// Package progress renders transfer progress and spinners when attached to
// a terminal, and stays silent otherwise.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// IsTerminalFunc reports whether a file descriptor is a terminal.
// Tests override it.
var IsTerminalFunc = term.IsTerminal

// ShouldShowProgress reports whether stdout is a terminal.
func ShouldShowProgress() bool {
	return IsTerminalFunc(int(os.Stdout.Fd()))
}

// StdinIsTerminal reports whether stdin is a terminal, i.e. whether an
// operator can answer prompts.
func StdinIsTerminal() bool {
	return IsTerminalFunc(int(os.Stdin.Fd()))
}

// NewBytesBar returns a byte-count progress bar. total <= 0 renders an
// indeterminate spinner. A disabled bar accepts writes and prints nothing.
func NewBytesBar(total int64, description string, out io.Writer, enabled bool) *progressbar.ProgressBar {
	if total <= 0 {
		total = -1
	}
	if !enabled {
		return progressbar.DefaultBytesSilent(total, description)
	}
	if out == nil {
		out = os.Stderr
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// FormatBytes formats a byte count as 1.5MB, 640KB, 12B.
func FormatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case b >= GB:
		return fmt.Sprintf("%.1fGB", float64(b)/GB)
	case b >= MB:
		return fmt.Sprintf("%.1fMB", float64(b)/MB)
	case b >= KB:
		return fmt.Sprintf("%.1fKB", float64(b)/KB)
	default:
		return fmt.Sprintf("%dB", b)
	}
}
