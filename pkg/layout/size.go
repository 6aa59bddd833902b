package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/prooftower/pkg/proof"
)

// Size computes Width and Height for every visible node, children first.
func Size(h *proof.Hierarchy, opts Options) {
	opts = opts.WithDefaults()
	nodes := h.Descendants()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		n.Width, n.Height = measure(opts.Label(n), opts)
	}
}

func measure(label string, opts Options) (w, h float64) {
	lines := strings.Split(label, "\n")
	longest := 0
	for _, l := range lines {
		longest = max(longest, utf8.RuneCountInString(l))
	}
	w = float64(longest)*opts.CharWidth + 2*opts.Padding
	h = float64(len(lines))*opts.LineHeight + 2*opts.Padding
	return w, h
}

// Bounds is the bounding box of a layout.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

func bounds(h *proof.Hierarchy) Bounds {
	nodes := h.Descendants()
	if len(nodes) == 0 {
		return Bounds{}
	}
	first := nodes[0]
	b := Bounds{
		MinX: first.X - first.Width/2, MaxX: first.X + first.Width/2,
		MinY: first.Y - first.Height/2, MaxY: first.Y + first.Height/2,
	}
	for _, n := range nodes[1:] {
		b.MinX = min(b.MinX, n.X-n.Width/2)
		b.MaxX = max(b.MaxX, n.X+n.Width/2)
		b.MinY = min(b.MinY, n.Y-n.Height/2)
		b.MaxY = max(b.MaxY, n.Y+n.Height/2)
	}
	return b
}

// Apply sizes the visible nodes of h and positions them with the layout
// selected by opts.Mode.
func Apply(h *proof.Hierarchy, opts Options) Bounds {
	opts = opts.WithDefaults()
	Size(h, opts)
	if opts.Mode == ModeLinear {
		return Linear(h, opts)
	}
	return Tree(h, opts)
}
