package transition

import (
	"context"
	"sync"
	"time"
)

// State is the state of an [Animator].
type State int

const (
	Idle State = iota
	Animating
)

func (s State) String() string {
	if s == Animating {
		return "animating"
	}
	return "idle"
}

// Animator serializes transitions: at most one frame is in flight and work
// arriving meanwhile is rejected, not queued.
type Animator struct {
	mu       sync.Mutex
	state    State
	seq      uint64
	started  time.Time
	duration time.Duration
}

// NewAnimator returns an idle animator. A non-positive duration selects
// DefaultDuration.
func NewAnimator(d time.Duration) *Animator {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Animator{duration: d}
}

// Duration returns the length of one transition.
func (a *Animator) Duration() time.Duration { return a.duration }

// Begin moves Idle to Animating. It reports false when a frame is already
// in flight.
func (a *Animator) Begin() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Animating {
		return false
	}
	a.state = Animating
	a.seq++
	a.started = time.Now()
	return true
}

// Finisher returns a done func bound to the frame begun last. Calling it
// after a later Begin has no effect.
func (a *Animator) Finisher() func() {
	a.mu.Lock()
	seq := a.seq
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		if a.seq == seq {
			a.state = Idle
		}
		a.mu.Unlock()
	}
}

// End returns the animator to Idle.
func (a *Animator) End() {
	a.mu.Lock()
	a.state = Idle
	a.mu.Unlock()
}

// State returns the current state.
func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Busy reports whether a frame is in flight.
func (a *Animator) Busy() bool { return a.State() == Animating }

// Elapsed returns how long the current frame has been playing.
func (a *Animator) Elapsed() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != Animating {
		return 0
	}
	return time.Since(a.started)
}

// Renderer draws frames. It must call done exactly once when the frame has
// finished playing, possibly before Render returns.
type Renderer interface {
	Render(ctx context.Context, f Frame, done func()) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, f Frame, done func()) error

// Render calls fn.
func (fn RendererFunc) Render(ctx context.Context, f Frame, done func()) error {
	return fn(ctx, f, done)
}

// Immediate is a renderer that draws nothing and finishes at once.
var Immediate Renderer = RendererFunc(func(_ context.Context, _ Frame, done func()) error {
	done()
	return nil
})

// Manual is a renderer that keeps the frame in flight until the caller
// reports completion, typically when a remote client has finished the
// animation.
var Manual Renderer = RendererFunc(func(context.Context, Frame, func()) error { return nil })

// Timed returns a renderer that finishes each frame after its duration.
func Timed() Renderer {
	return RendererFunc(func(_ context.Context, f Frame, done func()) error {
		time.AfterFunc(f.Duration, done)
		return nil
	})
}
