package magic

import "github.com/matzehuels/prooftower/pkg/proof"

// OrderStructure reorders edges so that every parent precedes its children,
// following a depth-first walk from the root anchor. Edges that the walk
// does not reach are appended in their original order so that
// [proof.Stratify] can still report them.
func OrderStructure(l proof.EdgeList) proof.EdgeList {
	byTarget := make(map[string][]int, len(l.Edges))
	var anchors []int
	for i, e := range l.Edges {
		if e.IsAnchor() {
			anchors = append(anchors, i)
			continue
		}
		byTarget[e.Target] = append(byTarget[e.Target], i)
	}

	out := proof.EdgeList{Nodes: l.Nodes, Edges: make([]proof.Edge, 0, len(l.Edges))}
	seen := make([]bool, len(l.Edges))
	visited := make(map[string]bool)
	stack := make([]int, 0, len(l.Edges))
	for i := len(anchors) - 1; i >= 0; i-- {
		stack = append(stack, anchors[i])
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[i] {
			continue
		}
		seen[i] = true
		e := l.Edges[i]
		out.Edges = append(out.Edges, e)
		if visited[e.Source] {
			continue
		}
		visited[e.Source] = true
		kids := byTarget[e.Source]
		for j := len(kids) - 1; j >= 0; j-- {
			stack = append(stack, kids[j])
		}
	}
	for i, e := range l.Edges {
		if !seen[i] {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}
