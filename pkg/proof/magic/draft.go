package magic

import (
	"slices"

	"github.com/matzehuels/prooftower/pkg/proof"
)

// draft is a scratch copy of a hierarchy that rewrites edit before it is
// emitted as a new edge list.
type draft struct {
	orig  *original
	synth *Synthesizer

	root   string
	nodes  map[string]proof.Node
	kids   map[string][]string
	parent map[string]string
	edge   map[string]string
	was    map[string]string // parent before the rewrite
}

func newDraft(o *original, s *Synthesizer) *draft {
	return &draft{
		orig:   o,
		synth:  s,
		nodes:  make(map[string]proof.Node),
		kids:   make(map[string][]string),
		parent: make(map[string]string),
		edge:   make(map[string]string),
		was:    make(map[string]string),
	}
}

func draftOf(cur *proof.Hierarchy, o *original, s *Synthesizer) *draft {
	d := newDraft(o, s)
	d.root = cur.Root().ID
	for _, n := range cur.AllNodes() {
		d.nodes[n.ID] = n.Node
		d.kids[n.ID] = slices.Clone(n.All)
		d.parent[n.ID] = n.Parent
		d.was[n.ID] = n.Parent
		d.edge[n.ID] = n.EdgeID
	}
	return d
}

func (d *draft) has(id string) bool {
	_, ok := d.nodes[id]
	return ok
}

// addOriginal copies the record of id from the original proof.
func (d *draft) addOriginal(id string) {
	if d.has(id) {
		return
	}
	if n, ok := d.orig.node(id); ok {
		d.nodes[id] = n
	}
}

// link hangs child below parent, detaching it from any previous parent.
func (d *draft) link(parent, child string) {
	d.unlink(child)
	d.parent[child] = parent
	d.kids[parent] = append(d.kids[parent], child)

	switch {
	case d.orig.parent(child) == parent:
		n, _ := d.orig.h.Node(child)
		d.edge[child] = n.EdgeID
	case d.was[child] == parent && d.edge[child] != "":
	default:
		d.edge[child] = d.synth.NewEdge(child, parent).ID
	}
}

func (d *draft) unlink(child string) {
	p := d.parent[child]
	if p == "" {
		return
	}
	d.kids[p] = slices.DeleteFunc(d.kids[p], func(id string) bool { return id == child })
	d.parent[child] = ""
}

// remove deletes id alone. Its children stay in the draft, detached.
func (d *draft) remove(id string) {
	d.unlink(id)
	for _, c := range d.kids[id] {
		d.parent[c] = ""
	}
	delete(d.kids, id)
	delete(d.nodes, id)
}

// attach derives axiom a from frontier, whose members are already in the
// draft. The real rule is used when frontier matches its non-tautological
// premises. Otherwise a non-empty frontier is placed below a magic box: box
// when it names one, a freshly minted box when it is zero. attach returns
// the id hung below a, or "" when nothing was attached.
func (d *draft) attach(a string, frontier []string, box proof.Node) string {
	o := d.orig
	if !o.magicNeeded(a, frontier) {
		return d.reveal(a)
	}
	if !o.newMagicNeeded(a, frontier) {
		return ""
	}
	if box.ID == "" {
		box = d.synth.NewMagicBox()
	}
	d.nodes[box.ID] = box
	d.link(a, box.ID)
	sorted := slices.Clone(frontier)
	o.sort(sorted)
	for _, f := range sorted {
		d.link(box.ID, f)
	}
	return box.ID
}

// reveal hangs the real rule deriving a below it, followed by all of its
// premises. A premise shown without a derivation gets the one it has in
// the original proof when that needs no frontier: a tautology or an
// assertion. reveal returns the rule id.
func (d *draft) reveal(a string) string {
	r := d.orig.rule(a)
	d.addOriginal(r)
	d.link(a, r)
	for _, p := range d.orig.premises(r) {
		d.addOriginal(p)
		if len(d.kids[p]) == 0 {
			d.attach(p, nil, proof.Node{})
		}
		d.link(r, p)
	}
	return r
}

// emit flattens the draft into an edge list in parent-before-children order.
func (d *draft) emit() proof.EdgeList {
	l := proof.NewEdgeList()
	stack := []string{d.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		l.Add(d.nodes[id], d.edge[id], d.parent[id])
		kids := d.kids[id]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return l
}
