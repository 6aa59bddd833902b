package magic

import (
	"strconv"
	"sync/atomic"

	"github.com/matzehuels/prooftower/pkg/proof"
)

// MagicElement is the element text carried by every magic box.
const MagicElement = "Magic Rule"

// Synthesizer mints magic boxes and edges with fresh ids.
// It is safe for concurrent use.
type Synthesizer struct {
	boxes atomic.Uint64
	edges atomic.Uint64
}

// NewSynthesizer returns a synthesizer whose counters start at zero.
func NewSynthesizer() *Synthesizer { return &Synthesizer{} }

// NewMagicBox returns a magic box node with an id not handed out before.
func (s *Synthesizer) NewMagicBox() proof.Node {
	n := s.boxes.Add(1) - 1
	return proof.Node{
		ID:      "M" + strconv.FormatUint(n, 10),
		Type:    proof.TypeMagic,
		Element: MagicElement,
		Labels:  proof.Labels{Default: MagicElement},
	}
}

// NewEdge returns an edge from source to target with an id not handed out
// before.
func (s *Synthesizer) NewEdge(source, target string) proof.Edge {
	n := s.edges.Add(1) - 1
	return proof.Edge{
		ID:     "MNE" + strconv.FormatUint(n, 10),
		Source: source,
		Target: target,
	}
}
