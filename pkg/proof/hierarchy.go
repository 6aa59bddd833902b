package proof

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrNoRoot is returned by [Stratify] when no edge has an empty target.
	ErrNoRoot = errors.New("no root anchor edge")

	// ErrMultipleRoots is returned by [Stratify] when more than one edge has
	// an empty target.
	ErrMultipleRoots = errors.New("multiple root anchor edges")

	// ErrMissingParent is returned by [Stratify] when an edge targets an id
	// that is not the source of any edge.
	ErrMissingParent = errors.New("dangling edge target")

	// ErrDuplicateID is returned by [Stratify] when two edges share a source.
	ErrDuplicateID = errors.New("duplicate node id")

	// ErrUnknownNode is returned when an id has no record in the node arena
	// or no entry in the hierarchy.
	ErrUnknownNode = errors.New("unknown node")

	// ErrCycle is returned by [Stratify] when some nodes are not reachable
	// from the root because their parent chain loops.
	ErrCycle = errors.New("cycle in proof structure")
)

// HNode is a node of a [Hierarchy]. Cross references are ids into the arena.
type HNode struct {
	ID     string
	Node   Node
	EdgeID string // id of the edge linking this node to Parent
	Parent string // empty for the root

	Children []string // visible children
	All      []string // every child, kept while collapsed
	Depth    int

	Format Format

	Width, Height float64
	X, Y          float64

	// X0, Y0 hold the position drawn in the previous frame.
	// HasPrev is false until a position has been stashed or inherited.
	X0, Y0  float64
	HasPrev bool
}

// IsCollapsed reports whether the node hides children it owns.
func (n *HNode) IsCollapsed() bool { return len(n.Children) == 0 && len(n.All) > 0 }

// IsLeaf reports whether the node has no children at all.
func (n *HNode) IsLeaf() bool { return len(n.All) == 0 }

// Link is a visible parent-child pair.
type Link struct {
	Source string // parent
	Target string // child
}

// Key returns the join key of the link.
func (l Link) Key() string { return l.Source + "->" + l.Target }

// Hierarchy is a rooted tree stored as an arena of [HNode] keyed by id.
//
// The zero value is not usable; build one with [Stratify].
type Hierarchy struct {
	root  string
	nodes map[string]*HNode
	order []string // stratification order
}

// Stratify builds a hierarchy from an edge list. Children keep the order in
// which their edges appear in l.Edges.
func Stratify(l EdgeList) (*Hierarchy, error) {
	var anchors []Edge
	bySource := make(map[string]Edge, len(l.Edges))
	for _, e := range l.Edges {
		if _, dup := bySource[e.Source]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, e.Source)
		}
		bySource[e.Source] = e
		if e.IsAnchor() {
			anchors = append(anchors, e)
		}
	}
	switch {
	case len(anchors) == 0:
		return nil, ErrNoRoot
	case len(anchors) > 1:
		return nil, fmt.Errorf("%w: %q and %q", ErrMultipleRoots, anchors[0].Source, anchors[1].Source)
	}

	h := &Hierarchy{
		root:  anchors[0].Source,
		nodes: make(map[string]*HNode, len(l.Edges)),
		order: make([]string, 0, len(l.Edges)),
	}
	for _, e := range l.Edges {
		rec, ok := l.Nodes[e.Source]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNode, e.Source)
		}
		if !e.IsAnchor() {
			if _, ok := bySource[e.Target]; !ok {
				return nil, fmt.Errorf("%w: %q -> %q", ErrMissingParent, e.Source, e.Target)
			}
		}
		h.nodes[e.Source] = &HNode{
			ID:     e.Source,
			Node:   rec,
			EdgeID: e.ID,
			Parent: e.Target,
			Format: FormatOriginal,
		}
		h.order = append(h.order, e.Source)
	}
	for _, id := range h.order {
		n := h.nodes[id]
		if n.Parent == "" {
			continue
		}
		p := h.nodes[n.Parent]
		p.All = append(p.All, id)
	}

	reached := 0
	stack := []string{h.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := h.nodes[id]
		n.Children = slices.Clone(n.All)
		reached++
		for _, c := range n.All {
			h.nodes[c].Depth = n.Depth + 1
			stack = append(stack, c)
		}
	}
	if reached != len(h.nodes) {
		return nil, fmt.Errorf("%w: %d of %d nodes unreachable", ErrCycle, len(h.nodes)-reached, len(h.nodes))
	}
	return h, nil
}

// Clone returns a copy whose nodes can be changed without touching h.
// Node payloads are shared.
func (h *Hierarchy) Clone() *Hierarchy {
	c := &Hierarchy{
		root:  h.root,
		nodes: make(map[string]*HNode, len(h.nodes)),
		order: slices.Clone(h.order),
	}
	for id, n := range h.nodes {
		cp := *n
		cp.Children = slices.Clone(n.Children)
		cp.All = slices.Clone(n.All)
		c.nodes[id] = &cp
	}
	return c
}

// Root returns the root node.
func (h *Hierarchy) Root() *HNode { return h.nodes[h.root] }

// Node returns the node with the given id.
func (h *Hierarchy) Node(id string) (*HNode, bool) {
	n, ok := h.nodes[id]
	return n, ok
}

// Len returns the number of nodes, visible or not.
func (h *Hierarchy) Len() int { return len(h.nodes) }

// Parent returns the parent of id, or nil for the root or unknown ids.
func (h *Hierarchy) Parent(id string) *HNode {
	n, ok := h.nodes[id]
	if !ok || n.Parent == "" {
		return nil
	}
	return h.nodes[n.Parent]
}

// Descendants returns the visible nodes in pre-order starting at the root.
func (h *Hierarchy) Descendants() []*HNode {
	return h.walk(h.root, func(n *HNode) []string { return n.Children })
}

// AllNodes returns every node in pre-order, including collapsed subtrees.
func (h *Hierarchy) AllNodes() []*HNode {
	return h.walk(h.root, func(n *HNode) []string { return n.All })
}

// Subtree returns every node under id (inclusive) in pre-order.
func (h *Hierarchy) Subtree(id string) []*HNode {
	if _, ok := h.nodes[id]; !ok {
		return nil
	}
	return h.walk(id, func(n *HNode) []string { return n.All })
}

func (h *Hierarchy) walk(start string, next func(*HNode) []string) []*HNode {
	out := make([]*HNode, 0, len(h.nodes))
	stack := []string{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := h.nodes[id]
		out = append(out, n)
		kids := next(n)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

// Links returns the visible parent-child pairs in pre-order.
func (h *Hierarchy) Links() []Link {
	var out []Link
	for _, n := range h.Descendants() {
		for _, c := range n.Children {
			out = append(out, Link{Source: n.ID, Target: c})
		}
	}
	return out
}

// Edges flattens the hierarchy back into an edge list, anchor first.
func (h *Hierarchy) Edges() EdgeList {
	l := NewEdgeList()
	for _, n := range h.AllNodes() {
		l.Add(n.Node, n.EdgeID, n.Parent)
	}
	return l
}

// IsAncestor reports whether anc lies on the parent chain of id, or equals it.
func (h *Hierarchy) IsAncestor(anc, id string) bool {
	for cur := id; cur != ""; {
		if cur == anc {
			return true
		}
		n, ok := h.nodes[cur]
		if !ok {
			return false
		}
		cur = n.Parent
	}
	return false
}

// Collapse hides the children of id.
func (h *Hierarchy) Collapse(id string) error {
	n, ok := h.nodes[id]
	if !ok {
		return fmt.Errorf("collapse %q: %w", id, ErrUnknownNode)
	}
	n.Children = nil
	return nil
}

// Expand restores every child of id.
func (h *Hierarchy) Expand(id string) error {
	n, ok := h.nodes[id]
	if !ok {
		return fmt.Errorf("expand %q: %w", id, ErrUnknownNode)
	}
	n.Children = slices.Clone(n.All)
	return nil
}

// Toggle collapses an expanded node or expands a collapsed one.
// Leaves are left untouched.
func (h *Hierarchy) Toggle(id string) error {
	n, ok := h.nodes[id]
	if !ok {
		return fmt.Errorf("toggle %q: %w", id, ErrUnknownNode)
	}
	if n.IsCollapsed() {
		return h.Expand(id)
	}
	return h.Collapse(id)
}

// SetFormat records the display format of id.
func (h *Hierarchy) SetFormat(id string, f Format) error {
	n, ok := h.nodes[id]
	if !ok {
		return fmt.Errorf("set format %q: %w", id, ErrUnknownNode)
	}
	n.Format = f
	return nil
}

// Stash records the current positions as the previous-frame positions.
func (h *Hierarchy) Stash() {
	for _, n := range h.nodes {
		n.X0, n.Y0 = n.X, n.Y
		n.HasPrev = true
	}
}
