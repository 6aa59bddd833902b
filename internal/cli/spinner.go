package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerTick = 80 * time.Millisecond

// spinner animates a one-line status while a render runs. It stops on its
// own when ctx is cancelled, so an interrupted render leaves a clean line.
type spinner struct {
	w      io.Writer
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	message string
	width   int // widest line drawn, for clearing

	once    sync.Once
	stopped chan struct{}
}

// startSpinner draws message on w until Stop or ctx is done.
func startSpinner(parent context.Context, w io.Writer, message string) *spinner {
	ctx, cancel := context.WithCancel(parent)
	s := &spinner{w: w, parent: parent, ctx: ctx, cancel: cancel, message: message, stopped: make(chan struct{})}
	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	s.width = max(s.width, len(s.message)+2)
	fmt.Fprintf(s.w, "\r%s", line)
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// Set replaces the message shown from the next frame on.
func (s *spinner) Set(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop ends the animation and clears the line. It may be called repeatedly.
func (s *spinner) Stop() {
	s.once.Do(s.cancel)
	<-s.stopped
}

// Fail stops the spinner and reports message as an error.
func (s *spinner) Fail(message string) {
	s.Stop()
	printError("%s", message)
}

// Interrupted reports whether the caller's context ended the spinner.
func (s *spinner) Interrupted() bool { return s.parent.Err() != nil }
