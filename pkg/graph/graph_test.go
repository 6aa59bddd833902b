package graph

import (
	"bytes"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/prooftower/pkg/counterexample"
	"github.com/matzehuels/prooftower/pkg/layout"
	"github.com/matzehuels/prooftower/pkg/proof"
)

func smallHierarchy(t *testing.T) *proof.Hierarchy {
	t.Helper()
	l := proof.NewEdgeList()
	l.Add(proof.Node{ID: "c", Type: proof.TypeAxiom, Element: "A ⊑ C"}, "root", "")
	l.Add(proof.Node{ID: "r", Type: proof.TypeRule, Element: "Composition"}, "e0", "c")
	l.Add(proof.Node{ID: "p1", Type: proof.TypeAxiom, Element: "A ⊑ B"}, "e1", "r")
	l.Add(proof.Node{ID: "p2", Type: proof.TypeAxiom, Element: "B ⊑ C"}, "e2", "r")
	h, err := proof.Stratify(l)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func ids(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestFromHierarchy(t *testing.T) {
	h := smallHierarchy(t)
	g := FromHierarchy(h, nil)

	if got, want := ids(g.Nodes), []string{"c", "r", "p1", "p2"}; !slices.Equal(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
	want := []Edge{{ID: "e0", From: "r", To: "c"}, {ID: "e1", From: "p1", To: "r"}, {ID: "e2", From: "p2", To: "r"}}
	if len(g.Edges) != len(want) {
		t.Fatalf("edges = %+v, want %+v", g.Edges, want)
	}
	for i := range want {
		if g.Edges[i].ID != want[i].ID || g.Edges[i].From != want[i].From || g.Edges[i].To != want[i].To {
			t.Errorf("edge %d = %+v, want %+v", i, g.Edges[i], want[i])
		}
	}
	if g.Nodes[1].Kind != "rule" || g.Nodes[1].Label != "Composition" || g.Nodes[1].Parent != "c" {
		t.Errorf("rule node = %+v", g.Nodes[1])
	}

	if err := h.Collapse("r"); err != nil {
		t.Fatal(err)
	}
	g = FromHierarchy(h, func(n *proof.HNode) string { return "#" + n.ID })
	if got := ids(g.Nodes); !slices.Equal(got, []string{"c", "r"}) {
		t.Errorf("collapsed nodes = %v", got)
	}
	if !g.Nodes[1].Collapsed || g.Nodes[1].Label != "#r" {
		t.Errorf("collapsed r = %+v", g.Nodes[1])
	}
}

func TestProofLayout(t *testing.T) {
	h := smallHierarchy(t)
	opts := layout.Options{}
	b := layout.Apply(h, opts)
	l := ProofLayout(h, b, opts, true)
	if !l.IsProof() || l.Mode != "tree" || !l.Magic {
		t.Errorf("layout = %+v", l)
	}
	if l.Width <= 0 || l.Height <= 0 {
		t.Errorf("size = %vx%v", l.Width, l.Height)
	}
	for _, n := range l.Nodes {
		if n.Width <= 0 || n.Height <= 0 {
			t.Errorf("node %s has no size", n.ID)
		}
	}

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if !slices.Equal(ids(back.Nodes), ids(l.Nodes)) || back.Width != l.Width {
		t.Errorf("round trip = %+v", back)
	}
}

func TestUnmarshalLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"bad json", `{`},
		{"empty proof", `{"kind":"proof"}`},
		{"empty model", `{"kind":"model"}`},
		{"unknown kind", `{"kind":"tree","nodes":[{"id":"a"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalLayout([]byte(tt.in)); err == nil {
				t.Error("expected error")
			}
		})
	}
	l, err := UnmarshalLayout([]byte(`{"nodes":[{"id":"a"}]}`))
	if err != nil || !l.IsProof() {
		t.Errorf("default kind = %q, %v", l.Kind, err)
	}
}

func TestFromSnapshot(t *testing.T) {
	d := counterexample.NewData()
	d.ApplyMapper(map[string]string{"Person": "Human"})
	for _, id := range []string{"a", "b", "c"} {
		if err := d.AddNode(counterexample.Node{ID: id, Label: "Person", Visible: id != "c"}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []counterexample.Edge{
		{Source: "a", Target: "b", Labels: []string{"knows"}},
		{Source: "a", Target: "b", Labels: []string{"likes"}},
		{Source: "b", Target: "c", Labels: []string{"owns"}},
	} {
		if err := d.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	s, err := counterexample.BuildSnapshot(d, counterexample.Flags{})
	if err != nil {
		t.Fatal(err)
	}

	g := FromSnapshot(s)
	if got := ids(g.Nodes); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("nodes = %v", got)
	}
	if len(g.Edges) != 1 || !slices.Equal(g.Edges[0].Labels, []string{"knows", "likes"}) || g.Edges[0].Kind != "real" {
		t.Errorf("edges = %+v", g.Edges)
	}
	if !g.Nodes[1].HiddenNeighbors || g.Nodes[0].HiddenNeighbors {
		t.Errorf("hidden neighbors = %v %v, want false true", g.Nodes[0].HiddenNeighbors, g.Nodes[1].HiddenNeighbors)
	}
	if g.Nodes[0].Meta["important_label"] != "Human" {
		t.Errorf("meta = %v", g.Nodes[0].Meta)
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	g := FromHierarchy(smallHierarchy(t), nil)
	path := filepath.Join(t.TempDir(), "proof.json")
	if err := WriteGraphFile(g, path); err != nil {
		t.Fatal(err)
	}
	back, err := ReadGraphFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ids(back.Nodes), ids(g.Nodes)) || len(back.Edges) != len(g.Edges) {
		t.Errorf("round trip = %+v", back)
	}

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteGraph(parsed, &buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Error("re-encoding changed the output")
	}
}
