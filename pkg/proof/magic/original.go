package magic

import (
	"slices"
	"strings"

	"github.com/matzehuels/prooftower/pkg/proof"
)

// original answers structural questions about the unmodified proof.
type original struct {
	h    *proof.Hierarchy
	rank map[string]int // pre-order position
}

func newOriginal(h *proof.Hierarchy) *original {
	all := h.AllNodes()
	rank := make(map[string]int, len(all))
	for i, n := range all {
		rank[n.ID] = i
	}
	return &original{h: h, rank: rank}
}

func (o *original) node(id string) (proof.Node, bool) {
	n, ok := o.h.Node(id)
	if !ok {
		return proof.Node{}, false
	}
	return n.Node, true
}

func (o *original) parent(id string) string {
	if p := o.h.Parent(id); p != nil {
		return p.ID
	}
	return ""
}

// rule returns the rule deriving axiom a, or "" for underived axioms.
func (o *original) rule(a string) string {
	n, ok := o.h.Node(a)
	if !ok {
		return ""
	}
	for _, c := range n.All {
		if cn, _ := o.h.Node(c); cn.Node.Type.IsRule() {
			return c
		}
	}
	return ""
}

func (o *original) premises(r string) []string {
	n, ok := o.h.Node(r)
	if !ok {
		return nil
	}
	return n.All
}

// isTautology reports whether a is derived by a rule without premises.
// Asserted axioms are derived the same way but count as ordinary leaves.
func (o *original) isTautology(a string) bool {
	r := o.rule(a)
	if r == "" || len(o.premises(r)) > 0 {
		return false
	}
	rn, _ := o.node(r)
	return !strings.Contains(strings.ToLower(rn.Element), "asserted")
}

// isLeaf reports whether a is a frontier leaf: an axiom that is either
// underived or asserted.
func (o *original) isLeaf(a string) bool {
	n, ok := o.h.Node(a)
	if !ok || n.Node.Type.IsRule() {
		return false
	}
	r := o.rule(a)
	if r == "" {
		return true
	}
	return len(o.premises(r)) == 0 && !o.isTautology(a)
}

// leaves returns the frontier leaves strictly below a, in pre-order.
func (o *original) leaves(a string) []string {
	var out []string
	for _, n := range o.h.Subtree(a) {
		if n.ID != a && o.isLeaf(n.ID) {
			out = append(out, n.ID)
		}
	}
	return out
}

// below reports whether id lies strictly below anc.
func (o *original) below(id, anc string) bool {
	return id != anc && o.h.IsAncestor(anc, id)
}

// within returns the members of set lying strictly below anc.
func (o *original) within(set []string, anc string) []string {
	var out []string
	for _, s := range set {
		if o.below(s, anc) {
			out = append(out, s)
		}
	}
	return out
}

// sort orders ids by their position in the original proof.
func (o *original) sort(ids []string) {
	slices.SortStableFunc(ids, func(a, b string) int { return o.rank[a] - o.rank[b] })
}

// derivedBy reports whether set equals the non-tautological premises of
// the rule deriving a.
func (o *original) derivedBy(a string, set []string) bool {
	r := o.rule(a)
	if r == "" {
		return false
	}
	var want []string
	for _, p := range o.premises(r) {
		if !o.isTautology(p) {
			want = append(want, p)
		}
	}
	return sameSet(want, set)
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	in := make(map[string]bool, len(a))
	for _, x := range a {
		in[x] = true
	}
	for _, x := range b {
		if !in[x] {
			return false
		}
	}
	return true
}

// magicNeeded reports whether axiom a still needs a magic box above
// frontier, rather than the real rule of the original proof.
func (o *original) magicNeeded(a string, frontier []string) bool {
	return !o.derivedBy(a, frontier)
}

// newMagicNeeded reports whether a newly revealed premise must hide the
// given frontier behind a new magic box. An empty frontier never needs one.
func (o *original) newMagicNeeded(premise string, frontier []string) bool {
	return len(frontier) > 0 && o.magicNeeded(premise, frontier)
}
