// Package prompt implements operator interaction: the run mode, blocking
// line prompts, yes/no confirmation, numbered selection, positive integer
// input, and the three-way stage decision used at filesystem checkpoints.
package prompt

import (
	"errors"
	"fmt"
)

// RunMode decides how prompts are answered. It is passed explicitly to
// every stage.
type RunMode int

const (
	// Interactive reads every answer from the operator.
	Interactive RunMode = iota

	// AssumeYes answers confirmations and stage decisions automatically
	// but still asks for values (release choice, core count) that have
	// no supplied default.
	AssumeYes

	// NonInteractive never reads input. Confirmations are granted, stage
	// decisions resume existing state, and values come from defaults.
	NonInteractive
)

func (m RunMode) String() string {
	switch m {
	case Interactive:
		return "interactive"
	case AssumeYes:
		return "assume-yes"
	case NonInteractive:
		return "non-interactive"
	default:
		return fmt.Sprintf("RunMode(%d)", int(m))
	}
}

// AutoConfirm reports whether yes/no questions are answered without input.
func (m RunMode) AutoConfirm() bool {
	return m != Interactive
}

// ReadsInput reports whether the mode may block on operator input.
func (m RunMode) ReadsInput() bool {
	return m != NonInteractive
}

// ModeFromFlags maps the CLI flags to a RunMode. --non-interactive wins
// over --yes.
func ModeFromFlags(assumeYes, nonInteractive bool) RunMode {
	switch {
	case nonInteractive:
		return NonInteractive
	case assumeYes:
		return AssumeYes
	default:
		return Interactive
	}
}

// ErrAborted signals that the operator chose to stop the run. It is a
// cancellation, not a failure.
var ErrAborted = errors.New("aborted by operator")

// ErrNoInput is returned when input ends before an answer is given.
var ErrNoInput = errors.New("no operator input available")

// ErrNoDefault is returned in NonInteractive mode when a value has no
// supplied default.
var ErrNoDefault = errors.New("no default available in non-interactive mode")
