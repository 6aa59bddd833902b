package magic

import (
	"fmt"
	"slices"

	"github.com/matzehuels/prooftower/pkg/proof"
)

// Op names a structural rewrite.
type Op string

const (
	OpPullUp   Op = "pull-up"
	OpPushUp   Op = "push-up"
	OpPullDown Op = "pull-down"
	OpPushDown Op = "push-down"
)

// Ops lists every rewrite in a stable order.
var Ops = []Op{OpPullUp, OpPushUp, OpPullDown, OpPushDown}

// ParseOp converts a rewrite name into an [Op].
func ParseOp(s string) (Op, error) {
	op := Op(s)
	if !slices.Contains(Ops, op) {
		return "", fmt.Errorf("unknown rewrite %q", s)
	}
	return op, nil
}

// Result describes a successful rewrite.
type Result struct {
	Op Op
	// Source is the id of the node transitions should start from and
	// return to.
	Source string
}

// Rewrite is the signature shared by the four rewrites.
type Rewrite func(focus string, cur, orig *proof.Hierarchy, s *Synthesizer) (proof.EdgeList, Result, bool)

// Lookup returns the rewrite implementing op.
func Lookup(op Op) (Rewrite, bool) {
	switch op {
	case OpPullUp:
		return PullUp, true
	case OpPushUp:
		return PushUp, true
	case OpPullDown:
		return PullDown, true
	case OpPushDown:
		return PushDown, true
	}
	return nil, false
}

// Initial returns the opening magic view of orig: the conclusion above a
// single step to its frontier leaves. A rest-of-proof root keeps its direct
// children and the view starts below them.
func Initial(orig *proof.Hierarchy, s *Synthesizer) proof.EdgeList {
	o := newOriginal(orig)
	d := newDraft(o, s)
	root := orig.Root()
	d.root = root.ID
	d.nodes[root.ID] = root.Node
	d.edge[root.ID] = root.EdgeID

	starts := []string{root.ID}
	if root.Node.Type == proof.TypeRest {
		starts = nil
		for _, c := range root.All {
			d.addOriginal(c)
			d.link(root.ID, c)
			starts = append(starts, c)
		}
	}
	for _, a := range starts {
		leaves := o.leaves(a)
		for _, l := range leaves {
			d.addOriginal(l)
		}
		d.attach(a, leaves, proof.Node{})
	}
	return d.emit()
}

// PullUp reveals the inference step that derives the conclusion of focus.
// focus must hang below a magic box. The step's conclusion joins the box's
// frontier in place of the premises now shown; the box dissolves when its
// frontier becomes the premises of the real rule above it.
func PullUp(focus string, cur, orig *proof.Hierarchy, s *Synthesizer) (proof.EdgeList, Result, bool) {
	box := cur.Parent(focus)
	if box == nil || box.Node.Type != proof.TypeMagic {
		return proof.EdgeList{}, Result{}, false
	}
	top := cur.Parent(box.ID)
	if top == nil {
		return proof.EdgeList{}, Result{}, false
	}
	o := newOriginal(orig)
	r := o.parent(focus)
	b := o.parent(r)
	if r == "" || b == "" || !orig.IsAncestor(top.ID, b) {
		return proof.EdgeList{}, Result{}, false
	}

	frontier := box.All
	d := draftOf(cur, o, s)
	covered := make(map[string]bool, len(frontier))
	premises := o.premises(r)
	for _, p := range premises {
		if slices.Contains(frontier, p) {
			covered[p] = true
			continue
		}
		sub := o.within(frontier, p)
		for _, x := range sub {
			covered[x] = true
		}
		d.addOriginal(p)
		if o.newMagicNeeded(p, sub) {
			d.attach(p, sub, proof.Node{})
		} else if len(sub) > 0 {
			d.reveal(p)
		}
	}

	var rest []string
	for _, x := range frontier {
		if !covered[x] {
			rest = append(rest, x)
		}
	}
	if b == top.ID && len(rest) > 0 {
		return proof.EdgeList{}, Result{}, false
	}

	d.addOriginal(b)
	d.reveal(b)
	d.remove(box.ID)
	if b != top.ID {
		d.attach(top.ID, append(rest, b), box.Node)
	}
	return d.emit(), Result{Op: OpPullUp, Source: focus}, true
}

// PushUp folds the inference step above focus into a magic box. focus must
// have a parent step, children and grandchildren. The new frontier is made of
// focus's siblings and grandchildren, tautologies excluded.
func PushUp(focus string, cur, orig *proof.Hierarchy, s *Synthesizer) (proof.EdgeList, Result, bool) {
	n, ok := cur.Node(focus)
	if !ok {
		return proof.EdgeList{}, Result{}, false
	}
	step := cur.Parent(focus)
	if step == nil || !step.Node.Type.IsRule() || len(n.All) == 0 {
		return proof.EdgeList{}, Result{}, false
	}
	top := cur.Parent(step.ID)
	if top == nil {
		return proof.EdgeList{}, Result{}, false
	}
	o := newOriginal(orig)

	var frontier, grand []string
	for _, sib := range step.All {
		if sib != focus && !o.isTautology(sib) {
			frontier = append(frontier, sib)
		}
	}
	for _, c := range n.All {
		cn, _ := cur.Node(c)
		grand = append(grand, cn.All...)
	}
	if len(grand) == 0 {
		return proof.EdgeList{}, Result{}, false
	}
	for _, g := range grand {
		if !o.isTautology(g) {
			frontier = append(frontier, g)
		}
	}
	if len(frontier) == 0 {
		return proof.EdgeList{}, Result{}, false
	}

	d := draftOf(cur, o, s)
	d.remove(step.ID)
	d.remove(focus)
	for _, c := range n.All {
		d.remove(c)
	}
	placed := d.attach(top.ID, frontier, proof.Node{})
	return d.emit(), Result{Op: OpPushUp, Source: placed}, true
}

// PullDown replaces the magic box below focus by the real rule deriving
// focus. Each premise that is not already on the frontier gets the step
// matching the part of the frontier below it.
func PullDown(focus string, cur, orig *proof.Hierarchy, s *Synthesizer) (proof.EdgeList, Result, bool) {
	n, ok := cur.Node(focus)
	if !ok {
		return proof.EdgeList{}, Result{}, false
	}
	var box *proof.HNode
	for _, c := range n.All {
		if cn, _ := cur.Node(c); cn.Node.Type == proof.TypeMagic {
			box = cn
			break
		}
	}
	o := newOriginal(orig)
	r := o.rule(focus)
	if box == nil || r == "" {
		return proof.EdgeList{}, Result{}, false
	}

	frontier := box.All
	d := draftOf(cur, o, s)
	covered := make(map[string]bool, len(frontier))
	premises := o.premises(r)
	for _, p := range premises {
		if slices.Contains(frontier, p) {
			covered[p] = true
			continue
		}
		sub := o.within(frontier, p)
		for _, x := range sub {
			covered[x] = true
		}
		d.addOriginal(p)
		d.attach(p, sub, proof.Node{})
	}
	for _, x := range frontier {
		if !covered[x] {
			return proof.EdgeList{}, Result{}, false
		}
	}

	d.remove(box.ID)
	d.reveal(focus)
	return d.emit(), Result{Op: OpPullDown, Source: focus}, true
}

// PushDown folds the real rule below focus, and the steps below its
// premises, into a magic box. Tautological premises are dropped from the
// frontier.
func PushDown(focus string, cur, orig *proof.Hierarchy, s *Synthesizer) (proof.EdgeList, Result, bool) {
	n, ok := cur.Node(focus)
	if !ok || len(n.All) == 0 {
		return proof.EdgeList{}, Result{}, false
	}
	step, _ := cur.Node(n.All[0])
	if !step.Node.Type.IsRule() || step.Node.Type == proof.TypeMagic || len(step.All) == 0 {
		return proof.EdgeList{}, Result{}, false
	}
	o := newOriginal(orig)

	var frontier, folded []string
	for _, p := range step.All {
		if o.isTautology(p) {
			continue
		}
		pn, _ := cur.Node(p)
		if pn.IsLeaf() || o.isLeaf(p) {
			// an asserted leaf goes below the box without its assertion
			frontier = append(frontier, p)
			folded = append(folded, pn.All...)
			continue
		}
		folded = append(folded, p)
		for _, q := range pn.All {
			qn, _ := cur.Node(q)
			folded = append(folded, q)
			for _, g := range qn.All {
				if !o.isTautology(g) {
					frontier = append(frontier, g)
				}
			}
		}
	}
	if len(frontier) == 0 || !o.magicNeeded(focus, frontier) {
		return proof.EdgeList{}, Result{}, false
	}

	d := draftOf(cur, o, s)
	d.remove(step.ID)
	for _, id := range folded {
		d.remove(id)
	}
	d.attach(focus, frontier, proof.Node{})
	return d.emit(), Result{Op: OpPushDown, Source: focus}, true
}
