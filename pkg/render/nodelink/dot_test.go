package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/prooftower/pkg/graph"
)

func TestToDOTProof(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "c", Label: "A ⊑ C", Kind: "axiom"},
			{ID: "M1", Label: "", Kind: "mrule", Synthetic: true},
			{ID: "r", Label: "Composition", Kind: "rule", Collapsed: true},
		},
		Edges: []graph.Edge{{From: "M1", To: "c"}, {From: "r", To: "c"}},
	}
	dot := ToDOT(g, Options{})

	for _, want := range []string{
		"rankdir=BT;",
		`"c" [label="A ⊑ C"];`,
		`"M1" [label="M1", shape=ellipse, style="rounded,filled,dashed", fillcolor=lightyellow];`,
		`"r" [label="Composition", shape=ellipse, fillcolor=lightgrey];`,
		`"M1" -> "c";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTModel(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "a", Label: "Person", Kind: "node", Parent: "g0"},
			{ID: "b", Label: "Dog", Kind: "node", Parent: "g1", HiddenNeighbors: true},
			{ID: "c", Label: "Cat", Kind: "node"},
		},
		Edges: []graph.Edge{{From: "a", To: "c", Labels: []string{"owns", "likes"}}},
		Groups: []graph.Group{
			{ID: "g0", Label: "outer", Leaves: []string{"a"}, Groups: []string{"g1"}},
			{ID: "g1", Label: "inner", Leaves: []string{"b"}},
		},
	}
	dot := ToDOT(g, Options{Direction: "LR"})

	for _, want := range []string{
		"rankdir=LR;",
		`subgraph "cluster_g0" {`,
		`    subgraph "cluster_g1" {`,
		`      "b" [label="Dog", peripheries=2];`,
		`"a" -> "c" [label="owns, likes"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Count(dot, `"a" [label=`) != 1 {
		t.Errorf("node a written more than once:\n%s", dot)
	}
	if strings.Index(dot, "cluster_g1") < strings.Index(dot, "cluster_g0") {
		t.Error("nested cluster must follow its parent")
	}
}

func TestFmtLabelDetailed(t *testing.T) {
	n := graph.Node{ID: "r", Label: "R", Element: "Composition", Meta: map[string]any{"format": "textual", "constraints": 2}}
	got := fmtLabel(n, true)
	want := "R\nComposition\nconstraints: 2\nformat: textual"
	if got != want {
		t.Errorf("fmtLabel = %q, want %q", got, want)
	}
	if fmtLabel(n, false) != "R" {
		t.Errorf("plain label = %q", fmtLabel(n, false))
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox = %q, want %q", got, want)
	}
	plain := []byte("<svg></svg>")
	if string(normalizeViewBox(plain)) != "<svg></svg>" {
		t.Error("svg without viewBox must be unchanged")
	}
}
