package layout

import (
	"fmt"

	"github.com/matzehuels/prooftower/pkg/proof"
)

// Mode selects the layout algorithm.
type Mode string

const (
	ModeTree   Mode = "tree"
	ModeLinear Mode = "linear"
)

// ParseMode validates a mode name. The empty string selects ModeTree.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeTree:
		return ModeTree, nil
	case ModeLinear:
		return ModeLinear, nil
	}
	return "", fmt.Errorf("unknown layout mode %q (want tree or linear)", s)
}

// Defaults applied by Options.WithDefaults for zero fields.
const (
	DefaultWidth      = 1200.0
	DefaultHeight     = 800.0
	DefaultCharWidth  = 8.0
	DefaultLineHeight = 16.0
	DefaultPadding    = 8.0
	DefaultLevelGap   = 40.0
	DefaultRuleOffset = 16.0
)

// LabelFunc returns the text displayed for a node.
type LabelFunc func(n *proof.HNode) string

// DefaultLabel renders a node in its stored display format.
func DefaultLabel(n *proof.HNode) string { return n.Node.Label(n.Format) }

// Options configures a layout run.
type Options struct {
	Mode Mode `json:"mode"`

	// AllowOverlap fits a tree layout into Width×Height instead of spacing
	// nodes by their size.
	AllowOverlap bool `json:"allowOverlap,omitempty"`
	// Compact ranks rules as list entries of their own in linear mode.
	Compact bool `json:"compact,omitempty"`
	// DistancePriority ranks by reversed breadth-first order in linear mode.
	DistancePriority bool `json:"distancePriority,omitempty"`
	// BottomRoot places the conclusion on the last row in linear mode.
	BottomRoot bool `json:"bottomRoot,omitempty"`

	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	CharWidth  float64 `json:"charWidth,omitempty"`
	LineHeight float64 `json:"lineHeight,omitempty"`
	Padding    float64 `json:"padding,omitempty"`
	LevelGap   float64 `json:"levelGap,omitempty"`
	RuleOffset float64 `json:"ruleOffset,omitempty"`

	Label LabelFunc `json:"-"`
}

// WithDefaults returns a copy of o with zero fields set to their defaults.
func (o Options) WithDefaults() Options {
	if o.Mode == "" {
		o.Mode = ModeTree
	}
	def := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	def(&o.Width, DefaultWidth)
	def(&o.Height, DefaultHeight)
	def(&o.CharWidth, DefaultCharWidth)
	def(&o.LineHeight, DefaultLineHeight)
	def(&o.Padding, DefaultPadding)
	def(&o.LevelGap, DefaultLevelGap)
	def(&o.RuleOffset, DefaultRuleOffset)
	if o.Label == nil {
		o.Label = DefaultLabel
	}
	return o
}

// Validate reports invalid option combinations.
func (o Options) Validate() error {
	if _, err := ParseMode(string(o.Mode)); err != nil {
		return err
	}
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("viewport must not be negative (got %gx%g)", o.Width, o.Height)
	}
	return nil
}
