package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerShowsPhases(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "Laying out trace.xml...")
	time.Sleep(3 * spinnerTick)
	s.Set("Writing svg, dot...")
	time.Sleep(3 * spinnerTick)
	s.Stop()

	got := out.String()
	for _, want := range []string{"Laying out trace.xml...", "Writing svg, dot..."} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q lacks %q", got, want)
		}
	}
	if !strings.HasSuffix(got, "\r") {
		t.Error("Stop should clear the status line")
	}
	if s.Interrupted() {
		t.Error("Stop is not an interrupt")
	}
}

func TestSpinnerInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := startSpinner(ctx, &syncBuffer{}, "Laying out model.xml...")
	cancel()
	s.Stop()
	if !s.Interrupted() {
		t.Error("cancelled render should count as interrupted")
	}
}

func TestSpinnerStopTwice(t *testing.T) {
	s := startSpinner(context.Background(), &syncBuffer{}, "Rendering...")
	s.Stop()
	s.Stop()
}
