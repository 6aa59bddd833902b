package proof

import "testing"

func TestPreserveCopiesState(t *testing.T) {
	prev, _ := Stratify(sampleProof())
	_ = prev.Collapse("a1")
	_ = prev.SetFormat("c", FormatTextual)
	for _, n := range prev.AllNodes() {
		n.X, n.Y = float64(len(n.ID)), float64(n.Depth)
	}
	prev.Stash()

	next, _ := Stratify(sampleProof())
	Preserve(prev, next, true)

	if a1, _ := next.Node("a1"); !a1.IsCollapsed() {
		t.Error("a1 should stay collapsed")
	}
	if c, _ := next.Node("c"); c.Format != FormatTextual {
		t.Errorf("format = %q, want textual", c.Format)
	}
	if l1, _ := next.Node("l1"); !l1.HasPrev || l1.Y0 != 4 {
		t.Errorf("l1 position = (%v, %v) prev=%v", l1.X0, l1.Y0, l1.HasPrev)
	}
}

func TestPreserveWithoutPositions(t *testing.T) {
	prev, _ := Stratify(sampleProof())
	prev.Stash()
	next, _ := Stratify(sampleProof())
	Preserve(prev, next, false)
	for _, n := range next.AllNodes() {
		if n.HasPrev {
			t.Fatalf("%s inherited a position", n.ID)
		}
	}
}

func TestPreserveInheritsVanishedParent(t *testing.T) {
	prev, _ := Stratify(sampleProof())
	r2, _ := prev.Node("r2")
	r2.X, r2.Y = 42, 7
	prev.Stash()

	// r2 is replaced by a magic box M0 above the same premises.
	l := NewEdgeList()
	l.Add(Node{ID: "c", Type: TypeAxiom}, "ec", "")
	l.Add(Node{ID: "r1", Type: TypeRule}, "er1", "c")
	l.Add(Node{ID: "a1", Type: TypeAxiom}, "ea1", "r1")
	l.Add(Node{ID: "a2", Type: TypeAxiom}, "ea2", "r1")
	l.Add(Node{ID: "M0", Type: TypeMagic}, "MNE0", "a1")
	l.Add(Node{ID: "l1", Type: TypeAxiom}, "MNE1", "M0")
	l.Add(Node{ID: "l2", Type: TypeAxiom}, "MNE2", "M0")
	next, err := Stratify(l)
	if err != nil {
		t.Fatal(err)
	}
	Preserve(prev, next, true)

	m, _ := next.Node("M0")
	if !m.HasPrev || m.X0 != 42 || m.Y0 != 7 {
		t.Errorf("M0 position = (%v, %v), want (42, 7)", m.X0, m.Y0)
	}
}

func TestPreserveInheritsVanishedSibling(t *testing.T) {
	prev, _ := Stratify(sampleProof())
	a2, _ := prev.Node("a2")
	a2.X, a2.Y = 9, 3
	prev.Stash()

	l := NewEdgeList()
	l.Add(Node{ID: "c", Type: TypeAxiom}, "ec", "")
	l.Add(Node{ID: "r1", Type: TypeRule}, "er1", "c")
	l.Add(Node{ID: "a1", Type: TypeAxiom}, "ea1", "r1")
	l.Add(Node{ID: "x", Type: TypeAxiom}, "ex", "r1")
	next, _ := Stratify(l)
	Preserve(prev, next, true)

	x, _ := next.Node("x")
	if x.X0 != 9 || x.Y0 != 3 {
		t.Errorf("x position = (%v, %v), want (9, 3)", x.X0, x.Y0)
	}
}

func TestPreserveNilPrev(t *testing.T) {
	next, _ := Stratify(sampleProof())
	Preserve(nil, next, true)
	if next.Root().HasPrev {
		t.Error("nil prev must leave next untouched")
	}
}
