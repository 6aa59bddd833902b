package counterexample

// SearchGraph is an undirected adjacency over a snapshot's edges plus the
// model edges touching hidden nodes. A node folded into a collapsed group
// is represented by the group's vertex.
type SearchGraph struct {
	adj    map[string][]string
	hidden map[string]bool
}

func newSearchGraph(visible, model []Edge, hidden map[string]bool, proxy map[string]string) *SearchGraph {
	g := &SearchGraph{adj: make(map[string][]string), hidden: hidden}
	vertex := func(id string) string {
		if p := proxy[id]; p != "" {
			return p
		}
		return id
	}
	for _, e := range visible {
		g.connect(e.Source, e.Target)
	}
	for _, e := range model {
		if hidden[e.Source] || hidden[e.Target] {
			g.connect(vertex(e.Source), vertex(e.Target))
		}
	}
	return g
}

func (g *SearchGraph) connect(a, b string) {
	g.adj[a] = append(g.adj[a], b)
	if a != b {
		g.adj[b] = append(g.adj[b], a)
	}
}

// Neighbors returns the vertices adjacent to id.
func (g *SearchGraph) Neighbors(id string) []string { return g.adj[id] }

// IsHidden reports whether id was left out of the snapshot as hidden.
func (g *SearchGraph) IsHidden(id string) bool { return g.hidden[id] }

// SearchReachableHiddenNodes returns every hidden node reachable from
// `from` through hidden nodes only, in discovery order. Visible nodes end
// the search along their branch.
func (g *SearchGraph) SearchReachableHiddenNodes(from string) []string {
	visited := map[string]bool{from: true}
	var out []string
	stack := g.push(nil, from, visited)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, id)
		stack = g.push(stack, id, visited)
	}
	return out
}

// push adds the unvisited hidden neighbours of id so that they pop in
// adjacency order.
func (g *SearchGraph) push(stack []string, id string, visited map[string]bool) []string {
	nb := g.adj[id]
	for i := len(nb) - 1; i >= 0; i-- {
		n := nb[i]
		if visited[n] || !g.hidden[n] {
			continue
		}
		visited[n] = true
		stack = append(stack, n)
	}
	return stack
}
