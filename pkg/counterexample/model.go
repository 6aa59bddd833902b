package counterexample

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

var (
	// ErrUnknownNode is returned when a node id is not part of the model.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownGroup is returned when a group id is not part of the model.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrDuplicateID is returned when a node or group id is reused.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrMixedParents is returned by [Data.Group] when the members do not
	// share a parent group.
	ErrMixedParents = errors.New("members belong to different groups")
)

// Node is a model element in the ground truth.
type Node struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Element string `json:"element"`
	Visible bool   `json:"visible"`
	// Group is the id of the group directly containing the node.
	Group string `json:"group,omitempty"`
	// ImportantLabel is the representative label from the concept mapping.
	ImportantLabel string `json:"importantLabel,omitempty"`
}

// EdgeKind distinguishes model edges from edges synthesized for groups.
type EdgeKind int

const (
	EdgeReal EdgeKind = iota
	EdgeGroup
)

func (k EdgeKind) String() string {
	if k == EdgeGroup {
		return "group"
	}
	return "real"
}

// Edge is a directed, labelled relation between two vertices.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Labels []string `json:"labels"`
	Kind   EdgeKind `json:"kind"`
}

// Group gathers nodes and subgroups under one collapsible vertex.
type Group struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Element  string   `json:"element"`
	Leaves   []string `json:"leaves"`
	Groups   []string `json:"groups"`
	Expanded bool     `json:"expanded"`
	Parent   string   `json:"parent,omitempty"`
}

// Data is the ground truth of a counterexample model. Cross references are
// ids into its arenas.
type Data struct {
	nodes     map[string]*Node
	nodeOrder []string
	edges     []Edge
	groups    map[string]*Group
	topGroups []string
	nextGroup int

	// Mapper maps concept labels to their representative label.
	Mapper map[string]string
}

// NewData returns an empty model.
func NewData() *Data {
	return &Data{
		nodes:  make(map[string]*Node),
		groups: make(map[string]*Group),
		Mapper: make(map[string]string),
	}
}

// AddNode adds a node. ImportantLabel is filled from the mapper when unset.
func (d *Data) AddNode(n Node) error {
	if _, dup := d.nodes[n.ID]; dup || d.groups[n.ID] != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateID, n.ID)
	}
	if n.ImportantLabel == "" {
		n.ImportantLabel = d.Mapper[n.Label]
	}
	d.nodes[n.ID] = &n
	d.nodeOrder = append(d.nodeOrder, n.ID)
	return nil
}

// AddEdge adds an edge between two known nodes.
func (d *Data) AddEdge(e Edge) error {
	for _, id := range []string{e.Source, e.Target} {
		if _, ok := d.nodes[id]; !ok {
			return fmt.Errorf("edge %q: %w: %q", e.ID, ErrUnknownNode, id)
		}
	}
	if e.ID == "" {
		e.ID = "e" + strconv.Itoa(len(d.edges))
	}
	e.Kind = EdgeReal
	e.Labels = slices.Clone(e.Labels)
	d.edges = append(d.edges, e)
	return nil
}

// ApplyMapper sets every node's ImportantLabel from m.
func (d *Data) ApplyMapper(m map[string]string) {
	d.Mapper = m
	for _, n := range d.nodes {
		n.ImportantLabel = m[n.Label]
	}
}

// Node returns the node with the given id.
func (d *Data) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Group returns the group with the given id.
func (d *Data) Group(id string) (*Group, bool) {
	g, ok := d.groups[id]
	return g, ok
}

// Nodes returns every node in insertion order.
func (d *Data) Nodes() []*Node {
	out := make([]*Node, len(d.nodeOrder))
	for i, id := range d.nodeOrder {
		out[i] = d.nodes[id]
	}
	return out
}

// Edges returns a copy of the model edges.
func (d *Data) Edges() []Edge { return slices.Clone(d.edges) }

// TopGroups returns the ids of groups without a parent group.
func (d *Data) TopGroups() []string { return slices.Clone(d.topGroups) }

// Leaves returns every node id below group id, depth first.
func (d *Data) Leaves(id string) []string {
	g, ok := d.groups[id]
	if !ok {
		return nil
	}
	out := slices.Clone(g.Leaves)
	for _, sub := range g.Groups {
		out = append(out, d.Leaves(sub)...)
	}
	return out
}

// Subgroups returns every group id below group id, depth first.
func (d *Data) Subgroups(id string) []string {
	g, ok := d.groups[id]
	if !ok {
		return nil
	}
	var out []string
	for _, sub := range g.Groups {
		out = append(out, sub)
		out = append(out, d.Subgroups(sub)...)
	}
	return out
}

func (d *Data) newGroupID() string {
	for {
		id := "g" + strconv.Itoa(d.nextGroup)
		d.nextGroup++
		if d.groups[id] == nil && d.nodes[id] == nil {
			return id
		}
	}
}

// parentOf returns the group containing member, which may be a node or a
// group id.
func (d *Data) parentOf(member string) (string, error) {
	if n, ok := d.nodes[member]; ok {
		return n.Group, nil
	}
	if g, ok := d.groups[member]; ok {
		return g.Parent, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNode, member)
}

// insertGroup links g below its parent and stamps its members.
func (d *Data) insertGroup(g *Group) {
	d.groups[g.ID] = g
	if g.Parent == "" {
		d.topGroups = append(d.topGroups, g.ID)
	} else {
		p := d.groups[g.Parent]
		p.Groups = append(p.Groups, g.ID)
	}
	for _, id := range g.Leaves {
		d.nodes[id].Group = g.ID
	}
	for _, id := range g.Groups {
		d.groups[id].Parent = g.ID
	}
}

// detach removes member from the child lists of its parent.
func (d *Data) detach(member, parent string) {
	drop := func(ids []string) []string {
		return slices.DeleteFunc(ids, func(s string) bool { return s == member })
	}
	if parent == "" {
		d.topGroups = drop(d.topGroups)
		return
	}
	p := d.groups[parent]
	p.Leaves = drop(p.Leaves)
	p.Groups = drop(p.Groups)
}

// AddGroup creates a group from members (node or group ids) sharing the
// same parent, and returns it.
func (d *Data) AddGroup(label string, members []string) (*Group, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("group %q: no members", label)
	}
	parent, err := d.parentOf(members[0])
	if err != nil {
		return nil, err
	}
	g := &Group{ID: d.newGroupID(), Label: label, Element: label, Parent: parent}
	for _, m := range members {
		p, err := d.parentOf(m)
		if err != nil {
			return nil, err
		}
		if p != parent {
			return nil, fmt.Errorf("%w: %q", ErrMixedParents, m)
		}
		if _, ok := d.nodes[m]; ok {
			g.Leaves = append(g.Leaves, m)
		} else {
			g.Groups = append(g.Groups, m)
		}
	}
	for _, m := range members {
		d.detach(m, parent)
	}
	d.insertGroup(g)
	return g, nil
}

// RemoveGroup dissolves group id, moving its members to its parent.
func (d *Data) RemoveGroup(id string) (*Group, error) {
	g, ok := d.groups[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, id)
	}
	removed := *g
	removed.Leaves = slices.Clone(g.Leaves)
	removed.Groups = slices.Clone(g.Groups)

	d.detach(id, g.Parent)
	for _, leaf := range g.Leaves {
		d.nodes[leaf].Group = g.Parent
		if g.Parent != "" {
			p := d.groups[g.Parent]
			p.Leaves = append(p.Leaves, leaf)
		}
	}
	for _, sub := range g.Groups {
		d.groups[sub].Parent = g.Parent
		if g.Parent == "" {
			d.topGroups = append(d.topGroups, sub)
		} else {
			p := d.groups[g.Parent]
			p.Groups = append(p.Groups, sub)
		}
	}
	delete(d.groups, id)
	return &removed, nil
}

// restoreGroup re-creates a group removed by RemoveGroup.
func (d *Data) restoreGroup(g Group) {
	g.Leaves = slices.Clone(g.Leaves)
	g.Groups = slices.Clone(g.Groups)
	for _, m := range g.Leaves {
		d.detach(m, g.Parent)
	}
	for _, m := range g.Groups {
		d.detach(m, g.Parent)
	}
	d.insertGroup(&g)
}

// addGroupWithID inserts a fully specified group, used by ingestion and undo.
func (d *Data) addGroupWithID(g Group) error {
	if d.groups[g.ID] != nil || d.nodes[g.ID] != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateID, g.ID)
	}
	for _, m := range g.Leaves {
		if _, ok := d.nodes[m]; !ok {
			return fmt.Errorf("group %q: %w: %q", g.ID, ErrUnknownNode, m)
		}
	}
	for _, m := range g.Groups {
		if _, ok := d.groups[m]; !ok {
			return fmt.Errorf("group %q: %w: %q", g.ID, ErrUnknownGroup, m)
		}
	}
	d.restoreGroup(g)
	return nil
}

// DefineGroup adds a group with a caller-chosen id over existing members.
func (d *Data) DefineGroup(g Group) error {
	g.Leaves = slices.Clone(g.Leaves)
	g.Groups = slices.Clone(g.Groups)
	return d.addGroupWithID(g)
}
