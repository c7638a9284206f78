package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Prompter asks a single question and returns the answer line without its
// trailing newline.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

// TerminalPrompter reads answers from In (os.Stdin) and writes questions to
// Out (os.Stdout). A read abandoned by context cancellation is handed to
// the next Ask, so at most one read is ever outstanding on In.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	mu      sync.Mutex
	reader  *bufio.Reader
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// Ask implements Prompter.
func (p *TerminalPrompter) Ask(ctx context.Context, question string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	if p.reader == nil {
		in := p.In
		if in == nil {
			in = os.Stdin
		}
		p.reader = bufio.NewReader(in)
	}

	fmt.Fprint(out, question)

	if p.pending == nil {
		ch := make(chan lineResult, 1)
		p.pending = ch
		go func() {
			line, err := p.reader.ReadString('\n')
			if err == io.EOF && line != "" {
				err = nil
			}
			ch <- lineResult{line: strings.TrimRight(line, "\r\n"), err: err}
		}()
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.pending:
		p.pending = nil
		if r.err == io.EOF {
			return "", ErrNoInput
		}
		if r.err != nil {
			return "", fmt.Errorf("reading answer: %w", r.err)
		}
		return r.line, nil
	}
}

// ScriptedPrompter replays canned answers. It records every question asked.
type ScriptedPrompter struct {
	Answers   []string
	Questions []string
}

// Ask implements Prompter. Running out of answers yields ErrNoInput.
func (p *ScriptedPrompter) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.Questions = append(p.Questions, question)
	if len(p.Answers) == 0 {
		return "", ErrNoInput
	}
	answer := p.Answers[0]
	p.Answers = p.Answers[1:]
	return answer, nil
}

// NilPrompter fails every question. It guards NonInteractive runs against
// accidental reads.
type NilPrompter struct{}

// Ask implements Prompter.
func (NilPrompter) Ask(context.Context, string) (string, error) {
	return "", ErrNoInput
}
