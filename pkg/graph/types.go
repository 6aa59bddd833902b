package graph

import (
	"encoding/json"
	"slices"

	"github.com/matzehuels/prooftower/pkg/counterexample"
	"github.com/matzehuels/prooftower/pkg/layout"
	"github.com/matzehuels/prooftower/pkg/proof"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// View kinds.
const (
	KindProof = "proof"
	KindModel = "model"
)

// Vertex kinds of counterexample graphs. Proof nodes use their proof.NodeType.
const (
	KindVertex = "node"
	KindGroup  = "group"
)

// =============================================================================
// Graph - Node-Link Serialization
// =============================================================================

// Graph is the canonical serialization format for both views.
type Graph struct {
	Nodes  []Node  `json:"nodes"`
	Edges  []Edge  `json:"edges"`
	Groups []Group `json:"groups,omitempty"`
}

// Node is the unified node type for all serialization contexts.
type Node struct {
	ID      string `json:"id"`
	Label   string `json:"label,omitempty"` // Display label (defaults to ID)
	Kind    string `json:"kind,omitempty"`
	Element string `json:"element,omitempty"`
	Parent  string `json:"parent,omitempty"` // supported proof node or containing group

	Collapsed bool `json:"collapsed,omitempty"`
	Synthetic bool `json:"synthetic,omitempty"`
	// HiddenNeighbors marks model vertices next to hidden nodes.
	HiddenNeighbors bool `json:"hidden_neighbors,omitempty"`

	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	Meta map[string]any `json:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// IsGroup reports whether n is a collapsed group proxy.
func (n *Node) IsGroup() bool { return n.Kind == KindGroup }

// Edge is a directed edge. Model edges carry their merged role labels.
type Edge struct {
	ID     string   `json:"id,omitempty"`
	From   string   `json:"from"`
	To     string   `json:"to"`
	Labels []string `json:"labels,omitempty"`
	Kind   string   `json:"kind,omitempty"`
}

// Group is an expanded counterexample group.
type Group struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Leaves []string `json:"leaves"`
	Groups []string `json:"groups,omitempty"`
}

// =============================================================================
// Hierarchy / Snapshot → Graph Conversion
// =============================================================================

// FromHierarchy converts the visible part of h. Nodes come in pre-order,
// edges in link order. A nil label uses [layout.DefaultLabel].
func FromHierarchy(h *proof.Hierarchy, label layout.LabelFunc) Graph {
	if label == nil {
		label = layout.DefaultLabel
	}
	nodes := h.Descendants()
	out := Graph{Nodes: make([]Node, 0, len(nodes))}
	for _, n := range nodes {
		out.Nodes = append(out.Nodes, nodeFromHierarchy(n, label))
	}
	for _, l := range h.Links() {
		child, _ := h.Node(l.Target)
		out.Edges = append(out.Edges, Edge{ID: child.EdgeID, From: l.Target, To: l.Source})
	}
	return out
}

func nodeFromHierarchy(n *proof.HNode, label layout.LabelFunc) Node {
	node := Node{
		ID:        n.ID,
		Label:     label(n),
		Kind:      string(n.Node.Type),
		Element:   n.Node.Element,
		Parent:    n.Parent,
		Collapsed: n.IsCollapsed(),
		Synthetic: n.Node.Type.IsSynthetic(),
		X:         n.X,
		Y:         n.Y,
		Width:     n.Width,
		Height:    n.Height,
	}
	meta := map[string]any{}
	if n.Format != "" {
		meta["format"] = string(n.Format)
	}
	if n.Node.SubProof != "" {
		meta["sub_proof"] = n.Node.SubProof
	}
	if n.Node.Data != nil {
		meta["constraints"] = len(n.Node.Data.Constraints)
	}
	if len(meta) > 0 {
		node.Meta = meta
	}
	return node
}

// FromSnapshot converts a counterexample snapshot.
func FromSnapshot(s *counterexample.Snapshot) Graph {
	out := Graph{
		Nodes: make([]Node, 0, len(s.Nodes)),
		Edges: make([]Edge, 0, len(s.Edges)),
	}
	for _, v := range s.Nodes {
		out.Nodes = append(out.Nodes, nodeFromVertex(v))
	}
	for _, e := range s.Edges {
		out.Edges = append(out.Edges, Edge{
			ID:     e.ID,
			From:   e.Source,
			To:     e.Target,
			Labels: slices.Clone(e.Labels),
			Kind:   e.Kind.String(),
		})
	}
	for _, g := range s.Groups {
		out.Groups = append(out.Groups, Group{
			ID:     g.ID,
			Label:  g.Label,
			Leaves: slices.Clone(g.Leaves),
			Groups: slices.Clone(g.Groups),
		})
	}
	return out
}

func nodeFromVertex(v counterexample.Vertex) Node {
	node := Node{
		ID:              v.ID,
		Label:           v.Label,
		Element:         v.Element,
		Parent:          v.Group,
		HiddenNeighbors: v.IndicateHiddenNode,
	}
	if v.Kind == counterexample.VertexGroup {
		node.Kind = KindGroup
		node.Collapsed = true
		node.Meta = map[string]any{"leaves": slices.Clone(v.Leaves)}
		return node
	}
	node.Kind = KindVertex
	if v.ImportantLabel != "" {
		node.Meta = map[string]any{"important_label": v.ImportantLabel}
	}
	return node
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}
