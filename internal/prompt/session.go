package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tsukumogami/g4install/internal/log"
	"github.com/tsukumogami/g4install/internal/ui"
)

// Session carries the run mode together with the prompter and console used
// to ask questions. Stages receive it in their constructors.
type Session struct {
	Mode     RunMode
	Prompter Prompter
	Console  *ui.Console
	Logger   log.Logger
}

// NewSession builds a Session. NonInteractive sessions never consult p.
func NewSession(mode RunMode, p Prompter, console *ui.Console, logger log.Logger) *Session {
	if mode == NonInteractive || p == nil {
		p = NilPrompter{}
	}
	if console == nil {
		console = ui.Discard()
	}
	return &Session{Mode: mode, Prompter: p, Console: console, Logger: log.OrDefault(logger)}
}

func (s *Session) invalid() {
	s.Console.Warn("Invalid input. Try again.")
}

// Confirm asks a yes/no question. An empty answer takes defaultYes. Modes
// other than Interactive answer yes without asking.
func (s *Session) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	if s.Mode.AutoConfirm() {
		s.Logger.Debug("auto-confirmed", "question", question, "mode", s.Mode)
		return true, nil
	}

	suffix := " [y/N]: "
	if defaultYes {
		suffix = " [Y/n]: "
	}
	for {
		answer, err := s.Prompter.Ask(ctx, question+suffix)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		s.invalid()
	}
}

// WaitForEnter blocks until the operator presses Enter. Only Interactive
// sessions wait.
func (s *Session) WaitForEnter(ctx context.Context, message string) error {
	if s.Mode != Interactive {
		return nil
	}
	_, err := s.Prompter.Ask(ctx, message)
	return err
}

// Choose asks for a 1-based choice among count options and returns the
// zero-based index. Input outside 1..count is re-prompted. NonInteractive
// sessions return fallback.
func (s *Session) Choose(ctx context.Context, question string, count, fallback int) (int, error) {
	if count <= 0 {
		return 0, fmt.Errorf("nothing to choose from")
	}
	if !s.Mode.ReadsInput() {
		if fallback < 0 || fallback >= count {
			return 0, ErrNoDefault
		}
		return fallback, nil
	}

	for {
		answer, err := s.Prompter.Ask(ctx, fmt.Sprintf("%s (1-%d): ", question, count))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(answer))
		if err == nil && n >= 1 && n <= count {
			return n - 1, nil
		}
		s.invalid()
	}
}

// ParsePositiveInt accepts base-10 integers greater than zero.
func ParsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}

// PositiveInt asks until a positive integer is entered; nothing is coerced.
// NonInteractive sessions return fallback, or ErrNoDefault when fallback is
// not positive.
func (s *Session) PositiveInt(ctx context.Context, question string, fallback int) (int, error) {
	if !s.Mode.ReadsInput() {
		if fallback <= 0 {
			return 0, ErrNoDefault
		}
		return fallback, nil
	}

	for {
		answer, err := s.Prompter.Ask(ctx, question)
		if err != nil {
			return 0, err
		}
		n, err := ParsePositiveInt(answer)
		if err == nil {
			return n, nil
		}
		s.Logger.Debug("rejected integer input", "input", answer, "error", err)
		s.invalid()
	}
}

// ContinueOrAbort asks "[C]ontinue or [A]bort?" and reports whether to
// continue. Modes other than Interactive continue without asking.
func (s *Session) ContinueOrAbort(ctx context.Context) (bool, error) {
	if s.Mode.AutoConfirm() {
		return true, nil
	}
	for {
		answer, err := s.Prompter.Ask(ctx, "Do you want to [C]ontinue or [A]bort? [c/a] ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "c", "continue":
			return true, nil
		case "a", "abort":
			return false, nil
		}
		s.invalid()
	}
}
