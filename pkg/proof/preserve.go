package proof

// Preserve carries identity-bound state from prev into next.
//
// Every node of next that also exists in prev keeps its display format and
// collapse state. When positions is true the previous-frame position is also
// copied. A node that is new to next takes its position from a vanished
// neighbour, checked in this order:
//
//  1. the former parent of one of its children, if that parent is gone
//  2. a former child of its parent that is gone
//  3. its parent's previous position
//
// A nil prev leaves next untouched.
func Preserve(prev, next *Hierarchy, positions bool) {
	if prev == nil || next == nil {
		return
	}
	for _, id := range next.order {
		n := next.nodes[id]
		old, ok := prev.nodes[id]
		if !ok {
			continue
		}
		n.Format = old.Format
		if old.IsCollapsed() && len(n.All) > 0 {
			n.Children = nil
		}
		if positions && old.HasPrev {
			n.X0, n.Y0, n.HasPrev = old.X0, old.Y0, true
		}
	}
	if !positions {
		return
	}
	for _, id := range next.order {
		n := next.nodes[id]
		if _, ok := prev.nodes[id]; ok {
			continue
		}
		if src := inheritFrom(prev, next, n); src != nil && src.HasPrev {
			n.X0, n.Y0, n.HasPrev = src.X0, src.Y0, true
		}
	}
}

func inheritFrom(prev, next *Hierarchy, n *HNode) *HNode {
	for _, c := range n.All {
		old, ok := prev.nodes[c]
		if !ok || old.Parent == "" {
			continue
		}
		if _, alive := next.nodes[old.Parent]; !alive {
			return prev.nodes[old.Parent]
		}
	}
	if n.Parent == "" {
		return nil
	}
	oldParent, ok := prev.nodes[n.Parent]
	if !ok {
		return nil
	}
	for _, c := range oldParent.All {
		if _, alive := next.nodes[c]; !alive {
			return prev.nodes[c]
		}
	}
	return oldParent
}
