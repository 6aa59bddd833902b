package counterexample

import (
	"fmt"
	"slices"
)

// VertexKind tags a snapshot vertex.
type VertexKind int

const (
	VertexNode VertexKind = iota
	VertexGroup
)

func (k VertexKind) String() string {
	if k == VertexGroup {
		return "group"
	}
	return "node"
}

// Vertex is a node or collapsed-group proxy in a snapshot.
type Vertex struct {
	Kind    VertexKind `json:"kind"`
	ID      string     `json:"id"`
	Label   string     `json:"label"`
	Element string     `json:"element,omitempty"`

	// Node vertices.
	ImportantLabel     string `json:"importantLabel,omitempty"`
	InsideGroup        bool   `json:"insideGroup,omitempty"`
	Group              string `json:"group,omitempty"`
	IndicateHiddenNode bool   `json:"indicateHiddenNode,omitempty"`

	// Group vertices: every leaf the proxy stands for.
	Leaves []string `json:"leaves,omitempty"`
}

// GroupView is an expanded group as seen by the layout: its direct
// vertices and expanded subgroups.
type GroupView struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Leaves []string `json:"leaves"`
	Groups []string `json:"groups"`
}

// ResolvedEdge is an edge with both endpoints looked up.
type ResolvedEdge struct {
	Edge   Edge
	Source *Vertex
	Target *Vertex
}

// Flags adjust snapshot construction.
type Flags struct {
	// IgnoreVisibility includes hidden nodes.
	IgnoreVisibility bool
}

// Snapshot is a renderable projection of [Data].
type Snapshot struct {
	Nodes  []Vertex    `json:"nodes"`
	Edges  []Edge      `json:"edges"`
	Groups []GroupView `json:"groups"`

	EdgesWithNodeObject []ResolvedEdge `json:"-"`
	Search              *SearchGraph   `json:"-"`

	index map[string]int
}

// Vertex returns the vertex with the given id.
func (s *Snapshot) Vertex(id string) (*Vertex, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return &s.Nodes[i], true
}

// builder carries the transient per-node flags of one projection.
type builder struct {
	data    *Data
	flags   Flags
	snap    *Snapshot
	claimed map[string]string // node -> collapsed group proxy
	placed  map[string]bool   // node already emitted
	ignored map[string]bool
}

// BuildSnapshot projects d through its current visibility and grouping.
func BuildSnapshot(d *Data, flags Flags) (*Snapshot, error) {
	b := &builder{
		data:    d,
		flags:   flags,
		snap:    &Snapshot{index: make(map[string]int)},
		claimed: make(map[string]string),
		placed:  make(map[string]bool),
		ignored: make(map[string]bool),
	}
	for _, id := range d.topGroups {
		b.descend(id, "")
	}
	for _, id := range d.nodeOrder {
		if b.claimed[id] != "" || b.placed[id] {
			continue
		}
		b.place(d.nodes[id], "")
	}

	var edges []Edge
	for _, e := range d.edges {
		sg, tg := b.claimed[e.Source], b.claimed[e.Target]
		switch {
		case sg != "" && tg != "":
			continue
		case sg != "":
			if b.ignored[e.Target] {
				b.mark(sg)
				continue
			}
			edges = append(edges, Edge{ID: e.ID, Source: sg, Target: e.Target, Labels: slices.Clone(e.Labels), Kind: EdgeGroup})
		case tg != "":
			if b.ignored[e.Source] {
				b.mark(tg)
				continue
			}
			edges = append(edges, Edge{ID: e.ID, Source: e.Source, Target: tg, Labels: slices.Clone(e.Labels), Kind: EdgeGroup})
		case b.ignored[e.Source] || b.ignored[e.Target]:
			if !b.ignored[e.Source] {
				b.mark(e.Source)
			}
			if !b.ignored[e.Target] {
				b.mark(e.Target)
			}
		default:
			edges = append(edges, Edge{ID: e.ID, Source: e.Source, Target: e.Target, Labels: slices.Clone(e.Labels), Kind: EdgeReal})
		}
	}
	b.snap.Edges = FixEdges(edges)

	for _, e := range b.snap.Edges {
		src, ok := b.snap.Vertex(e.Source)
		if !ok {
			return nil, fmt.Errorf("edge %q: %w: %q", e.ID, ErrUnknownNode, e.Source)
		}
		tgt, ok := b.snap.Vertex(e.Target)
		if !ok {
			return nil, fmt.Errorf("edge %q: %w: %q", e.ID, ErrUnknownNode, e.Target)
		}
		b.snap.EdgesWithNodeObject = append(b.snap.EdgesWithNodeObject, ResolvedEdge{Edge: e, Source: src, Target: tgt})
	}
	b.snap.Search = newSearchGraph(b.snap.Edges, d.edges, b.ignored, b.claimed)
	return b.snap, nil
}

// descend emits group id and returns the vertex id that stands for it in
// its parent: the proxy id when collapsed, "" when expanded.
func (b *builder) descend(id, parent string) string {
	g := b.data.groups[id]
	if !g.Expanded {
		v := Vertex{Kind: VertexGroup, ID: g.ID, Label: g.Label, Element: g.Element, Group: parent}
		for _, leaf := range b.data.Leaves(id) {
			b.claimed[leaf] = g.ID
			v.Leaves = append(v.Leaves, leaf)
		}
		b.add(v)
		return g.ID
	}

	view := GroupView{ID: g.ID, Label: g.Label}
	for _, leaf := range g.Leaves {
		if b.place(b.data.nodes[leaf], g.ID) {
			view.Leaves = append(view.Leaves, leaf)
		}
	}
	for _, sub := range g.Groups {
		if proxy := b.descend(sub, g.ID); proxy != "" {
			view.Leaves = append(view.Leaves, proxy)
		} else {
			view.Groups = append(view.Groups, sub)
		}
	}
	b.snap.Groups = append(b.snap.Groups, view)
	return ""
}

// place emits n unless it is hidden, and reports whether it was emitted.
func (b *builder) place(n *Node, group string) bool {
	b.placed[n.ID] = true
	if !n.Visible && !b.flags.IgnoreVisibility {
		b.ignored[n.ID] = true
		return false
	}
	b.add(Vertex{
		Kind:           VertexNode,
		ID:             n.ID,
		Label:          n.Label,
		Element:        n.Element,
		ImportantLabel: n.ImportantLabel,
		InsideGroup:    group != "",
		Group:          group,
	})
	return true
}

func (b *builder) add(v Vertex) {
	b.snap.index[v.ID] = len(b.snap.Nodes)
	b.snap.Nodes = append(b.snap.Nodes, v)
}

func (b *builder) mark(id string) {
	if v, ok := b.snap.Vertex(id); ok {
		v.IndicateHiddenNode = true
	}
}

// FixEdges merges edges sharing the same ordered (source, target) pair.
// The first edge of each pair keeps its id and kind and collects the
// union of all labels in order of appearance.
func FixEdges(edges []Edge) []Edge {
	type pair struct{ s, t string }
	at := make(map[pair]int, len(edges))
	var out []Edge
	for _, e := range edges {
		k := pair{e.Source, e.Target}
		i, ok := at[k]
		if !ok {
			at[k] = len(out)
			e.Labels = uniq(nil, e.Labels)
			out = append(out, e)
			continue
		}
		out[i].Labels = uniq(out[i].Labels, e.Labels)
	}
	return out
}

func uniq(into, add []string) []string {
	for _, l := range add {
		if !slices.Contains(into, l) {
			into = append(into, l)
		}
	}
	return into
}
