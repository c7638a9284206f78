package prompt

import (
	"context"
	"fmt"
	"strings"
)

// Decision is the operator's answer when a stage finds existing state.
type Decision int

const (
	// ProceedFresh discards the existing state and recreates it.
	ProceedFresh Decision = iota + 1
	// ResumeExisting keeps the existing state and continues with it.
	ResumeExisting
	// Abort stops the run and leaves everything untouched.
	Abort
)

func (d Decision) String() string {
	switch d {
	case ProceedFresh:
		return "proceed-fresh"
	case ResumeExisting:
		return "resume-existing"
	case Abort:
		return "abort"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// DecisionPrompt names the three choices for one checkpoint. Labels must
// start with distinct letters; the first letter is the shortcut.
type DecisionPrompt struct {
	Subject string // what was found, e.g. "geant4-v11.3.2.tar.gz already exists."
	Fresh   string // e.g. "Redownload"
	Resume  string // e.g. "Skip"
	Abort   string // e.g. "Abort"
}

// ArchiveDecision labels the checkpoint for an archive that is already present.
func ArchiveDecision(name string) DecisionPrompt {
	return DecisionPrompt{
		Subject: fmt.Sprintf("%s already exists.", name),
		Fresh:   "Redownload",
		Resume:  "Skip",
		Abort:   "Abort",
	}
}

// BuildDirDecision labels the checkpoint for a non-empty build directory.
func BuildDirDecision(name string) DecisionPrompt {
	return DecisionPrompt{
		Subject: fmt.Sprintf("Build directory '%s' is not empty.", name),
		Fresh:   "Clear",
		Resume:  "Skip",
		Abort:   "Abort",
	}
}

func (p DecisionPrompt) options() []struct {
	label    string
	decision Decision
} {
	return []struct {
		label    string
		decision Decision
	}{
		{p.Fresh, ProceedFresh},
		{p.Resume, ResumeExisting},
		{p.Abort, Abort},
	}
}

// Question renders e.g. "Do you want to [R]edownload, [S]kip, or [A]bort? (R/S/A): ".
func (p DecisionPrompt) Question() string {
	var labels, keys []string
	for _, o := range p.options() {
		labels = append(labels, "["+strings.ToUpper(o.label[:1])+"]"+o.label[1:])
		keys = append(keys, strings.ToUpper(o.label[:1]))
	}
	return fmt.Sprintf("Do you want to %s, %s, or %s? (%s): ",
		labels[0], labels[1], labels[2], strings.Join(keys, "/"))
}

// Parse maps an answer (shortcut letter or full label, any case) to a Decision.
func (p DecisionPrompt) Parse(answer string) (Decision, bool) {
	a := strings.ToLower(strings.TrimSpace(answer))
	if a == "" {
		return 0, false
	}
	for _, o := range p.options() {
		l := strings.ToLower(o.label)
		if a == l || a == l[:1] {
			return o.decision, true
		}
	}
	return 0, false
}

// Decide shows the subject and asks until a valid choice is made. Without
// an operator the existing state is resumed, which never destroys data.
func (s *Session) Decide(ctx context.Context, p DecisionPrompt) (Decision, error) {
	s.Console.Warn(p.Subject)
	if s.Mode != Interactive {
		s.Console.Infof("Keeping existing state (%s mode).", s.Mode)
		return ResumeExisting, nil
	}

	for {
		answer, err := s.Prompter.Ask(ctx, p.Question())
		if err != nil {
			return 0, err
		}
		if d, ok := p.Parse(answer); ok {
			s.Logger.Debug("stage decision", "subject", p.Subject, "decision", d)
			return d, nil
		}
		s.invalid()
	}
}
