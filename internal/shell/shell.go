// Package shell runs external commands for the install stages, either with
// captured output or attached to the operator's terminal.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/tsukumogami/g4install/internal/log"
)

// maxCapturedOutput bounds how much output an interactive command keeps for
// its CommandError; only the tail is kept.
const maxCapturedOutput = 64 * 1024

// Command describes one external process.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env entries are appended to the current environment.
	Env []string
	// Sudo runs the command through sudo unless the process is already root.
	Sudo bool
}

// Cmd builds a Command from a program name and arguments.
func Cmd(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// Line builds a Command that runs a shell line with bash (or sh when bash
// is missing). Used for install commands such as "apt update && apt install".
func Line(line string) Command {
	return Command{Name: getShell(), Args: []string{"-c", line}}
}

// In returns a copy of c running in dir.
func (c Command) In(dir string) Command {
	c.Dir = dir
	return c
}

// AsRoot returns a copy of c that runs under sudo.
func (c Command) AsRoot() Command {
	c.Sudo = true
	return c
}

// String renders the command as an operator would type it.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+2)
	if c.Sudo {
		parts = append(parts, "sudo")
	}
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'&|;$") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// CommandError reports a command that could not start or exited non-zero.
// Output holds the captured output (the tail, for interactive commands).
type CommandError struct {
	Cmd      string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("command failed with exit code %d: %s", e.ExitCode, e.Cmd)
	}
	return fmt.Sprintf("command failed: %s: %v", e.Cmd, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Runner executes commands. Stages depend on this interface so tests can
// substitute a fake.
type Runner interface {
	// Run executes cmd with stdin detached and returns its combined output.
	Run(ctx context.Context, cmd Command) ([]byte, error)
	// RunInteractive attaches cmd to the terminal, for ccmake, sudo
	// password prompts and long builds whose progress the operator watches.
	RunInteractive(ctx context.Context, cmd Command) error
	// LookPath reports where an executable is found on PATH.
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger

	// Geteuid is consulted to skip sudo when already root.
	Geteuid func() int
}

// NewExecRunner returns a runner attached to the process's standard streams.
func NewExecRunner(logger log.Logger) *ExecRunner {
	return &ExecRunner{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Logger:  log.OrDefault(logger),
		Geteuid: os.Geteuid,
	}
}

func (r *ExecRunner) build(ctx context.Context, c Command) *exec.Cmd {
	name, args := c.Name, c.Args
	if c.Sudo && (r.Geteuid == nil || r.Geteuid() != 0) {
		name, args = "sudo", append([]string{c.Name}, c.Args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, c Command) ([]byte, error) {
	logger := log.OrDefault(r.Logger)
	logger.Debug("exec", "cmd", c.String(), "dir", c.Dir)

	cmd := r.build(ctx, c)
	out, err := cmd.CombinedOutput()
	if err != nil {
		logger.Debug("exec failed", "cmd", c.String(), "error", err)
		return out, commandError(c, out, err)
	}
	return out, nil
}

// RunInteractive implements Runner. Output is streamed to the terminal and
// its tail is kept for the error report.
func (r *ExecRunner) RunInteractive(ctx context.Context, c Command) error {
	logger := log.OrDefault(r.Logger)
	logger.Debug("exec interactive", "cmd", c.String(), "dir", c.Dir)

	tail := &tailBuffer{max: maxCapturedOutput}
	cmd := r.build(ctx, c)
	cmd.Stdin = r.Stdin
	cmd.Stdout = io.MultiWriter(orDiscard(r.Stdout), tail)
	cmd.Stderr = io.MultiWriter(orDiscard(r.Stderr), tail)

	if err := cmd.Run(); err != nil {
		logger.Debug("exec failed", "cmd", c.String(), "error", err)
		return commandError(c, tail.Bytes(), err)
	}
	return nil
}

// LookPath implements Runner.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func commandError(c Command, out []byte, err error) *CommandError {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &CommandError{
		Cmd:      c.String(),
		ExitCode: code,
		Output:   string(bytes.TrimRight(out, "\n")),
		Err:      err,
	}
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// getShell returns the preferred shell, falling back to /bin/sh if bash is not available
func getShell() string {
	for _, sh := range []string{"/bin/bash", "/usr/bin/bash"} {
		if _, err := os.Stat(sh); err == nil {
			return sh
		}
	}
	return "/bin/sh"
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]byte(nil), t.buf...)
}
