package transition

import (
	"slices"
	"time"

	"github.com/matzehuels/prooftower/pkg/proof"
)

// DefaultDuration is the length of one transition.
const DefaultDuration = 750 * time.Millisecond

// Phase is the role of an element in a transition.
type Phase int

const (
	Enter Phase = iota
	Update
	Exit
)

func (p Phase) String() string {
	switch p {
	case Enter:
		return "enter"
	case Update:
		return "update"
	case Exit:
		return "exit"
	}
	return "unknown"
}

// NodeState is the drawn state of a node.
type NodeState struct {
	ID      string         `json:"id"`
	Type    proof.NodeType `json:"type"`
	Label   string         `json:"label"`
	X       float64        `json:"x"`
	Y       float64        `json:"y"`
	Width   float64        `json:"width"`
	Height  float64        `json:"height"`
	Opacity float64        `json:"opacity"`
	Scale   float64        `json:"scale"`
	// Collapsed marks nodes whose children are hidden.
	Collapsed bool `json:"collapsed,omitempty"`
}

func (s NodeState) at(p Point) NodeState {
	s.X, s.Y = p.X, p.Y
	return s
}

func (s NodeState) hidden() NodeState {
	s.Opacity, s.Scale = 0, 0
	return s
}

// LinkState is the drawn state of a link.
type LinkState struct {
	Key     string  `json:"key"`
	Source  string  `json:"source"` // parent
	Target  string  `json:"target"` // child
	Path    Path    `json:"path"`
	Opacity float64 `json:"opacity"`
}

// Scene is everything drawn by the last frame.
type Scene struct {
	Nodes map[string]NodeState `json:"nodes"`
	Links map[string]LinkState `json:"links"`
}

// NodeTransition animates one node.
type NodeTransition struct {
	ID    string    `json:"id"`
	Phase Phase     `json:"phase"`
	From  NodeState `json:"from"`
	To    NodeState `json:"to"`
}

// LinkTransition animates one link.
type LinkTransition struct {
	Key   string    `json:"key"`
	Phase Phase     `json:"phase"`
	From  LinkState `json:"from"`
	To    LinkState `json:"to"`
}

// Frame is one transition between two scenes.
type Frame struct {
	Source   string           `json:"source"`
	Duration time.Duration    `json:"duration"`
	Nodes    []NodeTransition `json:"nodes"`
	Links    []LinkTransition `json:"links"`
}

// Count returns the number of nodes in phase p.
func (f Frame) Count(p Phase) int {
	n := 0
	for _, t := range f.Nodes {
		if t.Phase == p {
			n++
		}
	}
	return n
}

// NodeIDs returns the ids of the nodes in phase p, in frame order.
func (f Frame) NodeIDs(p Phase) []string {
	var out []string
	for _, t := range f.Nodes {
		if t.Phase == p {
			out = append(out, t.ID)
		}
	}
	return out
}

// Next returns the scene left behind once the frame has played.
func (f Frame) Next() Scene {
	s := Scene{
		Nodes: make(map[string]NodeState, len(f.Nodes)),
		Links: make(map[string]LinkState, len(f.Links)),
	}
	for _, t := range f.Nodes {
		if t.Phase != Exit {
			s.Nodes[t.ID] = t.To
		}
	}
	for _, t := range f.Links {
		if t.Phase != Exit {
			s.Links[t.Key] = t.To
		}
	}
	return s
}

// Options configures Diff.
type Options struct {
	Duration time.Duration
	Label    func(n *proof.HNode) string
}

// Diff compares prev with the laid-out hierarchy h. source is the id of the
// node the user acted on; it may be empty or name a node that no longer
// exists.
func Diff(prev Scene, h *proof.Hierarchy, source string, opts Options) Frame {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Label == nil {
		opts.Label = func(n *proof.HNode) string { return n.Node.Label(n.Format) }
	}
	from, to := anchors(prev, h, source)

	f := Frame{Source: source, Duration: opts.Duration}
	visible := h.Descendants()
	next := make(map[string]NodeState, len(visible))
	for _, n := range visible {
		st := NodeState{
			ID: n.ID, Type: n.Node.Type, Label: opts.Label(n),
			X: n.X, Y: n.Y, Width: n.Width, Height: n.Height,
			Opacity: 1, Scale: 1, Collapsed: n.IsCollapsed(),
		}
		next[n.ID] = st
		if old, ok := prev.Nodes[n.ID]; ok {
			f.Nodes = append(f.Nodes, NodeTransition{ID: n.ID, Phase: Update, From: old, To: st})
			continue
		}
		start := from
		if n.HasPrev {
			start = Point{X: n.X0, Y: n.Y0}
		}
		f.Nodes = append(f.Nodes, NodeTransition{ID: n.ID, Phase: Enter, From: st.at(start).hidden(), To: st})
	}
	for _, id := range sortedKeys(prev.Nodes) {
		if _, ok := next[id]; ok {
			continue
		}
		old := prev.Nodes[id]
		f.Nodes = append(f.Nodes, NodeTransition{ID: id, Phase: Exit, From: old, To: old.at(to).hidden()})
	}

	seen := make(map[string]bool)
	for _, l := range h.Links() {
		key := l.Key()
		seen[key] = true
		st := LinkState{Key: key, Source: l.Source, Target: l.Target, Path: LinkPath(next[l.Source], next[l.Target]), Opacity: 1}
		if old, ok := prev.Links[key]; ok {
			f.Links = append(f.Links, LinkTransition{Key: key, Phase: Update, From: old, To: st})
			continue
		}
		start := st
		start.Path = pointPath(from)
		start.Opacity = 0
		f.Links = append(f.Links, LinkTransition{Key: key, Phase: Enter, From: start, To: st})
	}
	for _, key := range sortedKeys(prev.Links) {
		if seen[key] {
			continue
		}
		old := prev.Links[key]
		end := old
		end.Path = pointPath(to)
		end.Opacity = 0
		f.Links = append(f.Links, LinkTransition{Key: key, Phase: Exit, From: old, To: end})
	}
	return f
}

// anchors resolves the interaction source into the point entering elements
// start from and the point exiting elements travel to.
func anchors(prev Scene, h *proof.Hierarchy, source string) (from, to Point) {
	root := h.Root()
	switch {
	case source == "":
	case hasNode(prev, source):
		st := prev.Nodes[source]
		from = Point{X: st.X, Y: st.Y}
		if n, ok := h.Node(source); ok {
			return from, Point{X: n.X, Y: n.Y}
		}
		return from, from
	default:
		if n, ok := h.Node(source); ok {
			if n.HasPrev {
				from = Point{X: n.X0, Y: n.Y0}
			} else {
				from = Point{X: n.X, Y: n.Y}
			}
			return from, Point{X: n.X, Y: n.Y}
		}
	}
	if st, ok := prev.Nodes[root.ID]; ok {
		from = Point{X: st.X, Y: st.Y}
	} else {
		from = Point{X: root.X, Y: root.Y}
	}
	return from, Point{X: root.X, Y: root.Y}
}

func hasNode(s Scene, id string) bool {
	_, ok := s.Nodes[id]
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
