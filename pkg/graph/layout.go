package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/prooftower/pkg/layout"
	"github.com/matzehuels/prooftower/pkg/proof"
	"github.com/matzehuels/prooftower/pkg/transition"
)

// =============================================================================
// Layout - Unified Visualization Format
// =============================================================================

// Layout is the unified serialization format for both views.
//
// This is a discriminated union type - check Kind to determine which
// fields are populated:
//
//	Proof ("proof"):
//	  - Nodes: positioned boxes, Edges: premise → supported node
//	  - Mode: "tree" or "linear", Magic: magic navigation flag
//	  - Frame: the transition that produced this layout, if any
//
//	Model ("model"):
//	  - DOT: Graphviz DOT string for rendering
//	  - Groups: expanded groups drawn as clusters
//
// Shared fields (both types):
//   - Width, Height: frame dimensions
//   - Nodes, Edges: structure
type Layout struct {
	// Discriminator
	Kind string `json:"kind"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Nodes  []Node  `json:"nodes,omitempty"`
	Edges  []Edge  `json:"edges,omitempty"`
	Groups []Group `json:"groups,omitempty"`

	// Proof-specific
	Mode  string            `json:"mode,omitempty"`
	Magic bool              `json:"magic,omitempty"`
	Frame *transition.Frame `json:"frame,omitempty"`

	// Model-specific
	DOT string `json:"dot,omitempty"`
}

// IsProof returns true if this is a proof layout.
func (l *Layout) IsProof() bool { return l.Kind == KindProof }

// IsModel returns true if this is a model layout.
func (l *Layout) IsModel() bool { return l.Kind == KindModel }

// ProofLayout exports a laid-out hierarchy. The node positions are taken as
// they are; call layout.Apply first.
func ProofLayout(h *proof.Hierarchy, b layout.Bounds, opts layout.Options, magic bool) Layout {
	g := FromHierarchy(h, opts.Label)
	return Layout{
		Kind:   KindProof,
		Width:  b.Width(),
		Height: b.Height(),
		Nodes:  g.Nodes,
		Edges:  g.Edges,
		Mode:   string(opts.WithDefaults().Mode),
		Magic:  magic,
	}
}

// ModelLayout wraps a snapshot graph and its DOT description.
func ModelLayout(g Graph, dot string) Layout {
	return Layout{
		Kind:   KindModel,
		Nodes:  g.Nodes,
		Edges:  g.Edges,
		Groups: g.Groups,
		DOT:    dot,
	}
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates that required fields are present for the kind.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	if l.Kind == "" {
		l.Kind = KindProof
	}

	switch {
	case l.IsProof() && len(l.Nodes) == 0:
		return Layout{}, fmt.Errorf("proof layout must contain nodes")
	case l.IsModel() && l.DOT == "" && len(l.Nodes) == 0:
		return Layout{}, fmt.Errorf("model layout must contain nodes or a DOT string")
	case !l.IsProof() && !l.IsModel():
		return Layout{}, fmt.Errorf("unknown layout kind %q", l.Kind)
	}

	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
