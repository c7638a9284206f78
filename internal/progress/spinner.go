package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

const spinnerInterval = 100 * time.Millisecond

// Spinner animates a message while a request is in flight. Without a
// terminal it prints the message once.
type Spinner struct {
	mu      sync.Mutex
	output  io.Writer
	message string
	isTTY   bool
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewSpinner creates a spinner writing to output (os.Stderr when nil).
func NewSpinner(output io.Writer) *Spinner {
	if output == nil {
		output = os.Stderr
	}
	return &Spinner{output: output, isTTY: ShouldShowProgress()}
}

// Start shows message. Calling Start on a running spinner only replaces
// the message. A nil spinner does nothing.
func (s *Spinner) Start(message string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	if s.running {
		return
	}
	if !s.isTTY {
		fmt.Fprintln(s.output, message)
		return
	}
	s.running = true
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.animate(s.done)
}

// Stop halts the animation and clears the line. finalMessage, when
// non-empty, is printed in its place.
func (s *Spinner) Stop(finalMessage string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	wasRunning := s.running
	if wasRunning {
		s.running = false
		close(s.done)
	}
	s.mu.Unlock()
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if wasRunning {
		fmt.Fprintf(s.output, "\r%s\r", strings.Repeat(" ", 80))
	}
	if finalMessage != "" {
		fmt.Fprintln(s.output, finalMessage)
	}
}

func (s *Spinner) animate(done <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			line := fmt.Sprintf("\r%s %s", spinnerFrames[frame%len(spinnerFrames)], s.message)
			if len(line) < 80 {
				line += strings.Repeat(" ", 80-len(line))
			}
			fmt.Fprint(s.output, line)
			s.mu.Unlock()
		}
	}
}
