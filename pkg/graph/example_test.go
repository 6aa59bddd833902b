package graph_test

import (
	"fmt"

	"github.com/matzehuels/prooftower/pkg/graph"
	"github.com/matzehuels/prooftower/pkg/proof"
)

func ExampleFromHierarchy() {
	l := proof.NewEdgeList()
	l.Add(proof.Node{ID: "c", Type: proof.TypeAxiom, Element: "A ⊑ C"}, "root", "")
	l.Add(proof.Node{ID: "r", Type: proof.TypeRule, Element: "Composition"}, "e0", "c")
	l.Add(proof.Node{ID: "p", Type: proof.TypeAxiom, Element: "A ⊑ B"}, "e1", "r")
	h, err := proof.Stratify(l)
	if err != nil {
		fmt.Println(err)
		return
	}

	g := graph.FromHierarchy(h, nil)
	for _, n := range g.Nodes {
		fmt.Printf("%s (%s) %s\n", n.ID, n.Kind, n.DisplayLabel())
	}
	for _, e := range g.Edges {
		fmt.Printf("%s -> %s\n", e.From, e.To)
	}
	// Output:
	// c (axiom) A ⊑ C
	// r (rule) Composition
	// p (axiom) A ⊑ B
	// r -> c
	// p -> r
}

func ExampleUnmarshalLayout() {
	l, err := graph.UnmarshalLayout([]byte(`{"kind":"model","dot":"digraph {}"}`))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(l.IsModel(), l.DOT)
	// Output: true digraph {}
}
