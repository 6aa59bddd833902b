package layout

import (
	"slices"

	"github.com/matzehuels/prooftower/pkg/proof"
)

// Linear positions the visible nodes of h as an ordered list of rows.
// Sizes must already be computed.
func Linear(h *proof.Hierarchy, opts Options) Bounds {
	opts = opts.WithDefaults()
	Tree(h, opts)

	eligible := func(n *proof.HNode) bool {
		return opts.Compact || !n.Node.Type.IsRule()
	}
	var ranked []*proof.HNode
	if opts.DistancePriority {
		ranked = breadthFirst(h, eligible)
		slices.Reverse(ranked)
	} else {
		ranked = postOrder(h, eligible)
	}

	var rowH float64
	for _, n := range ranked {
		rowH = max(rowH, n.Height)
	}
	rowH += opts.LevelGap

	count := len(ranked)
	for i, n := range ranked {
		row := count - 1 - i
		if opts.BottomRoot {
			row = i
		}
		n.X = n.Width / 2
		n.Y = float64(row) * rowH
	}
	if opts.Compact {
		return bounds(h)
	}

	nudge := rowH / 2
	if opts.BottomRoot {
		nudge = -nudge
	}
	for _, n := range h.Descendants() {
		if !n.Node.Type.IsRule() {
			continue
		}
		p := h.Parent(n.ID)
		if p == nil {
			continue
		}
		n.X = p.X + p.Width/2 + opts.RuleOffset + n.Width/2
		n.Y = p.Y + nudge
	}
	return bounds(h)
}

func postOrder(h *proof.Hierarchy, keep func(*proof.HNode) bool) []*proof.HNode {
	var out []*proof.HNode
	var visit func(n *proof.HNode)
	visit = func(n *proof.HNode) {
		for _, c := range n.Children {
			cn, _ := h.Node(c)
			visit(cn)
		}
		if keep(n) {
			out = append(out, n)
		}
	}
	visit(h.Root())
	return out
}

func breadthFirst(h *proof.Hierarchy, keep func(*proof.HNode) bool) []*proof.HNode {
	var out []*proof.HNode
	queue := []*proof.HNode{h.Root()}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if keep(n) {
			out = append(out, n)
		}
		for _, c := range n.Children {
			cn, _ := h.Node(c)
			queue = append(queue, cn)
		}
	}
	return out
}
