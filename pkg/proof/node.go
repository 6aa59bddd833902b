package proof

import (
	"fmt"
	"regexp"
	"slices"
)

// NodeType classifies a proof node.
type NodeType string

const (
	TypeAxiom  NodeType = "axiom"  // a logical statement
	TypeRule   NodeType = "rule"   // an inference step deriving an axiom
	TypeMagic  NodeType = "mrule"  // synthetic box hiding folded proof structure
	TypeKRule  NodeType = "krule"  // a rule contributed by an external reasoner
	TypeCDRule NodeType = "cdrule" // a rule over numeric constraints
	TypeRest   NodeType = "rest"   // synthetic stand-in for the rest of a proof
)

// IsRule reports whether nodes of this type are inference steps.
func (t NodeType) IsRule() bool {
	switch t {
	case TypeRule, TypeMagic, TypeKRule, TypeCDRule:
		return true
	}
	return false
}

// IsSynthetic reports whether nodes of this type are minted by the viewer.
func (t NodeType) IsSynthetic() bool { return t == TypeMagic || t == TypeRest }

// Format is the display format chosen for a node's label.
// The core stores and round-trips it but never interprets it.
type Format string

const (
	FormatOriginal  Format = "original"
	FormatShortened Format = "shortened"
	FormatTextual   Format = "textual"
)

// ParseFormat validates a format name. The empty string selects
// FormatOriginal.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatOriginal:
		return FormatOriginal, nil
	case FormatShortened, FormatTextual:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown format %q (want original, shortened or textual)", s)
}

// Labels holds the display variants of a node's element.
type Labels struct {
	Default         string `json:"default"`
	NaturalLanguage string `json:"naturalLanguage,omitempty"`
}

// Node is a proof trace record.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Element  string   `json:"element"`
	Labels   Labels   `json:"labels"`
	SubProof string   `json:"subProof,omitempty"`
	// Rule is the id of the rule node that derived this axiom, if any.
	Rule string   `json:"rule,omitempty"`
	Data *Payload `json:"data,omitempty"`
}

// Label returns the text shown for the node in the given format.
func (n Node) Label(f Format) string {
	if f == FormatTextual && n.Labels.NaturalLanguage != "" {
		return n.Labels.NaturalLanguage
	}
	if n.Labels.Default != "" {
		return n.Labels.Default
	}
	return n.Element
}

// Edge connects a premise to the node it supports.
// An empty Target marks the root anchor.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// IsAnchor reports whether e is the root anchor edge.
func (e Edge) IsAnchor() bool { return e.Target == "" }

// EdgeList is the flat form of a proof: a node arena plus edges in order.
type EdgeList struct {
	Nodes map[string]Node `json:"nodes"`
	Edges []Edge          `json:"edges"`
}

// NewEdgeList returns an empty edge list.
func NewEdgeList() EdgeList {
	return EdgeList{Nodes: make(map[string]Node)}
}

// Add records n and appends an edge from n to target.
func (l *EdgeList) Add(n Node, edgeID, target string) {
	if l.Nodes == nil {
		l.Nodes = make(map[string]Node)
	}
	l.Nodes[n.ID] = n
	l.Edges = append(l.Edges, Edge{ID: edgeID, Source: n.ID, Target: target})
}

// Clone returns a deep copy of the node arena and edge slice.
func (l EdgeList) Clone() EdgeList {
	nodes := make(map[string]Node, len(l.Nodes))
	for id, n := range l.Nodes {
		nodes[id] = n
	}
	return EdgeList{Nodes: nodes, Edges: slices.Clone(l.Edges)}
}

// Anchor returns the root anchor edge, if exactly one exists.
func (l EdgeList) Anchor() (Edge, bool) {
	var found Edge
	n := 0
	for _, e := range l.Edges {
		if e.IsAnchor() {
			found = e
			n++
		}
	}
	return found, n == 1
}

var syntheticID = regexp.MustCompile(`^(M\d+|MNE\d+|r0)$`)

// RestID is the id of the synthetic rest-of-proof node.
const RestID = "r0"

// IsSyntheticID reports whether id lies in the namespace reserved for
// magic boxes, magic edges and the rest-of-proof node.
func IsSyntheticID(id string) bool { return syntheticID.MatchString(id) }
