// Package ui renders operator-facing console messages with a bracketed tag
// ([INFO], [SUCCESS], [WARNING], [ERROR], [ACTION REQUIRED]).
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Tag colours follow the ANSI palette so they adapt to the terminal theme.
var (
	infoColor    = lipgloss.Color("6") // cyan
	successColor = lipgloss.Color("2") // green
	warningColor = lipgloss.Color("3") // yellow
	errorColor   = lipgloss.Color("1") // red
	actionColor  = lipgloss.Color("5") // magenta
)

// Console writes tagged messages. It is safe for concurrent use.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
	quiet bool

	info, success, warning, errStyle, action lipgloss.Style
}

// Options configures a Console.
type Options struct {
	// Color enables ANSI styling of tags.
	Color bool

	// Quiet suppresses [INFO] and [SUCCESS] lines. Warnings, errors and
	// action prompts are always shown.
	Quiet bool
}

// NewConsole creates a Console writing to out.
func NewConsole(out io.Writer, opts Options) *Console {
	if out == nil {
		out = os.Stdout
	}
	r := lipgloss.NewRenderer(out)
	return &Console{
		out:      out,
		color:    opts.Color,
		quiet:    opts.Quiet,
		info:     r.NewStyle().Foreground(infoColor),
		success:  r.NewStyle().Foreground(successColor),
		warning:  r.NewStyle().Foreground(warningColor),
		errStyle: r.NewStyle().Foreground(errorColor).Bold(true),
		action:   r.NewStyle().Foreground(actionColor).Bold(true),
	}
}

// Discard returns a Console that writes nothing.
func Discard() *Console {
	return NewConsole(io.Discard, Options{})
}

// Writer returns the underlying output, for inline document display.
func (c *Console) Writer() io.Writer {
	return c.out
}

func (c *Console) emit(style lipgloss.Style, tag, msg string) {
	label := "[" + tag + "]"
	if c.color {
		label = style.Render(label)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s %s\n", label, msg)
}

func (c *Console) Info(msg string) {
	if !c.quiet {
		c.emit(c.info, "INFO", msg)
	}
}

func (c *Console) Success(msg string) {
	if !c.quiet {
		c.emit(c.success, "SUCCESS", msg)
	}
}

func (c *Console) Warn(msg string)   { c.emit(c.warning, "WARNING", msg) }
func (c *Console) Error(msg string)  { c.emit(c.errStyle, "ERROR", msg) }
func (c *Console) Action(msg string) { c.emit(c.action, "ACTION REQUIRED", msg) }

func (c *Console) Infof(format string, args ...any)    { c.Info(fmt.Sprintf(format, args...)) }
func (c *Console) Successf(format string, args ...any) { c.Success(fmt.Sprintf(format, args...)) }
func (c *Console) Warnf(format string, args ...any)    { c.Warn(fmt.Sprintf(format, args...)) }
func (c *Console) Errorf(format string, args ...any)   { c.Error(fmt.Sprintf(format, args...)) }
func (c *Console) Actionf(format string, args ...any)  { c.Action(fmt.Sprintf(format, args...)) }

// Println writes an untagged line, e.g. a menu entry.
func (c *Console) Println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}
