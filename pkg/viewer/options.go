package viewer

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/prooftower/pkg/layout"
	"github.com/matzehuels/prooftower/pkg/transition"
)

// Outcome is the result of a view operation.
type Outcome int

const (
	// Applied means state changed and a frame was drawn.
	Applied Outcome = iota
	// Rejected means a precondition did not hold. State is unchanged.
	Rejected
	// Busy means a frame was in flight. State is unchanged.
	Busy
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Rejected:
		return "rejected"
	case Busy:
		return "busy"
	}
	return "unknown"
}

// Options configures a view.
type Options struct {
	Layout   layout.Options
	Magic    bool
	Duration time.Duration
	// Renderer receives every frame. Nil draws nothing and finishes at once.
	Renderer transition.Renderer
	Logger   *log.Logger
}

func (o Options) withDefaults() Options {
	o.Layout = o.Layout.WithDefaults()
	if o.Duration <= 0 {
		o.Duration = transition.DefaultDuration
	}
	if o.Renderer == nil {
		o.Renderer = transition.Immediate
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}
