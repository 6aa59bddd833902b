package magic

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"testing"

	"github.com/matzehuels/prooftower/pkg/proof"
)

// testProof builds
//
//	c <- rc <- {a, x}
//	a <- ra <- {b, y, t}
//	b <- rb <- {l1, l2}
//	t <- rt            (tautology)
func testProof(t *testing.T) *proof.Hierarchy {
	t.Helper()
	l := proof.NewEdgeList()
	add := func(id string, typ proof.NodeType, target string) {
		l.Add(proof.Node{ID: id, Type: typ, Element: id}, "e_"+id, target)
	}
	add("c", proof.TypeAxiom, "")
	add("rc", proof.TypeRule, "c")
	add("a", proof.TypeAxiom, "rc")
	add("ra", proof.TypeRule, "a")
	add("b", proof.TypeAxiom, "ra")
	add("rb", proof.TypeRule, "b")
	add("l1", proof.TypeAxiom, "rb")
	add("l2", proof.TypeAxiom, "rb")
	add("y", proof.TypeAxiom, "ra")
	add("t", proof.TypeAxiom, "ra")
	add("rt", proof.TypeRule, "t")
	add("x", proof.TypeAxiom, "rc")
	h, err := proof.Stratify(l)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func build(t *testing.T, l proof.EdgeList) *proof.Hierarchy {
	t.Helper()
	h, err := proof.Stratify(OrderStructure(l))
	if err != nil {
		t.Fatalf("Stratify: %v", err)
	}
	return h
}

// shape renders a hierarchy as "parent:child,child;" groups in pre-order,
// with magic boxes written as "*".
func shape(h *proof.Hierarchy) string {
	name := func(id string) string {
		if n, _ := h.Node(id); n.Node.Type == proof.TypeMagic {
			return "*"
		}
		return id
	}
	var b strings.Builder
	for _, n := range h.AllNodes() {
		if len(n.All) == 0 {
			continue
		}
		kids := make([]string, len(n.All))
		for i, c := range n.All {
			kids[i] = name(c)
		}
		fmt.Fprintf(&b, "%s:%s;", name(n.ID), strings.Join(kids, ","))
	}
	return b.String()
}

func relation(h *proof.Hierarchy) []string {
	var out []string
	for _, n := range h.AllNodes() {
		out = append(out, n.Parent+">"+n.ID)
	}
	sort.Strings(out)
	return out
}

func TestInitial(t *testing.T) {
	orig := testProof(t)
	h := build(t, Initial(orig, NewSynthesizer()))
	if got, want := shape(h), "c:*;*:l1,l2,y,x;"; got != want {
		t.Errorf("Initial = %s, want %s", got, want)
	}
}

func TestInitialCollapsesToRealRule(t *testing.T) {
	l := proof.NewEdgeList()
	l.Add(proof.Node{ID: "c", Type: proof.TypeAxiom}, "e0", "")
	l.Add(proof.Node{ID: "r", Type: proof.TypeRule}, "e1", "c")
	l.Add(proof.Node{ID: "p1", Type: proof.TypeAxiom}, "e2", "r")
	l.Add(proof.Node{ID: "p2", Type: proof.TypeAxiom}, "e3", "r")
	orig, _ := proof.Stratify(l)

	h := build(t, Initial(orig, NewSynthesizer()))
	if h.Len() != 4 {
		t.Fatalf("initial view has %d nodes, want 4", h.Len())
	}
	if got := shape(h); got != "c:r;r:p1,p2;" {
		t.Errorf("shape = %s", got)
	}
}

func TestPullUpSequence(t *testing.T) {
	orig := testProof(t)
	s := NewSynthesizer()
	h := build(t, Initial(orig, s))

	steps := []struct {
		focus string
		want  string
	}{
		{"l1", "c:*;*:b,y,x;b:rb;rb:l1,l2;"},
		{"b", "c:rc;rc:a,x;a:ra;ra:b,y,t;b:rb;rb:l1,l2;t:rt;"},
	}
	for _, st := range steps {
		l, res, ok := PullUp(st.focus, h, orig, s)
		if !ok {
			t.Fatalf("PullUp(%s) not applied", st.focus)
		}
		if res.Source != st.focus || res.Op != OpPullUp {
			t.Errorf("result = %+v", res)
		}
		h = build(t, l)
		if got := shape(h); got != st.want {
			t.Errorf("after PullUp(%s) = %s, want %s", st.focus, got, st.want)
		}
	}
	if !slices.Equal(relation(h), relation(orig)) {
		t.Errorf("fully pulled view differs from the original proof")
	}
	for _, n := range h.AllNodes() {
		o, _ := orig.Node(n.ID)
		if n.EdgeID != o.EdgeID {
			t.Errorf("%s: edge id %q, want original %q", n.ID, n.EdgeID, o.EdgeID)
		}
	}
}

func TestPushUpPullUpReversible(t *testing.T) {
	orig := testProof(t)
	s := NewSynthesizer()
	before := orig

	l, res, ok := PushUp("b", before, orig, s)
	if !ok {
		t.Fatal("PushUp(b) not applied")
	}
	mid := build(t, l)
	if got, want := shape(mid), "c:rc;rc:a,x;a:*;*:l1,l2,y;"; got != want {
		t.Fatalf("after PushUp = %s, want %s", got, want)
	}
	if box, _ := mid.Node(res.Source); box.Node.Type != proof.TypeMagic {
		t.Errorf("source %q should be the new box", res.Source)
	}

	l, _, ok = PullUp("l1", mid, orig, s)
	if !ok {
		t.Fatal("PullUp(l1) not applied")
	}
	after := build(t, l)
	if !slices.Equal(relation(after), relation(before)) {
		t.Errorf("relation after round trip:\n%v\nwant\n%v", relation(after), relation(before))
	}
}

func TestPullDownPushDown(t *testing.T) {
	orig := testProof(t)
	s := NewSynthesizer()
	h := build(t, Initial(orig, s))

	l, _, ok := PullDown("c", h, orig, s)
	if !ok {
		t.Fatal("PullDown(c) not applied")
	}
	h = build(t, l)
	if got, want := shape(h), "c:rc;rc:a,x;a:*;*:l1,l2,y;"; got != want {
		t.Fatalf("after PullDown(c) = %s, want %s", got, want)
	}

	l, _, ok = PullDown("a", h, orig, s)
	if !ok {
		t.Fatal("PullDown(a) not applied")
	}
	h = build(t, l)
	if got, want := shape(h), "c:rc;rc:a,x;a:ra;ra:b,y,t;b:rb;rb:l1,l2;t:rt;"; got != want {
		t.Fatalf("after PullDown(a) = %s, want %s", got, want)
	}

	l, _, ok = PushDown("a", h, orig, s)
	if !ok {
		t.Fatal("PushDown(a) not applied")
	}
	h = build(t, l)
	if got, want := shape(h), "c:rc;rc:a,x;a:*;*:l1,l2,y;"; got != want {
		t.Fatalf("after PushDown(a) = %s, want %s", got, want)
	}

	l, _, ok = PushDown("c", h, orig, s)
	if !ok {
		t.Fatal("PushDown(c) not applied")
	}
	h = build(t, l)
	if got, want := shape(h), "c:*;*:l1,l2,y,x;"; got != want {
		t.Errorf("after PushDown(c) = %s, want %s", got, want)
	}
}

func TestPreconditions(t *testing.T) {
	orig := testProof(t)
	s := NewSynthesizer()
	magicView := build(t, Initial(orig, s))

	tests := []struct {
		name  string
		fn    Rewrite
		focus string
		cur   *proof.Hierarchy
	}{
		{"pull up below real rule", PullUp, "b", orig},
		{"pull up root", PullUp, "c", magicView},
		{"pull up unknown", PullUp, "zz", magicView},
		{"push up leaf", PushUp, "l1", orig},
		{"push up root", PushUp, "c", orig},
		{"push up without grandchildren", PushUp, "t", orig},
		{"pull down without box", PullDown, "a", orig},
		{"pull down leaf", PullDown, "l1", magicView},
		{"push down box", PushDown, "c", magicView},
		{"push down leaf", PushDown, "x", orig},
		{"push down unchanged", PushDown, "b", orig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := s.boxes.Load()
			if _, _, ok := tt.fn(tt.focus, tt.cur, orig, s); ok {
				t.Errorf("rewrite applied, want no-op")
			}
			if s.boxes.Load() != before {
				t.Errorf("no-op minted a magic box")
			}
		})
	}
}

func TestMagicNeeded(t *testing.T) {
	o := newOriginal(testProof(t))
	if o.magicNeeded("a", []string{"y", "b"}) {
		t.Error("{b, y} are the non-tautological premises of ra")
	}
	if !o.magicNeeded("a", []string{"l1", "l2", "y"}) {
		t.Error("{l1, l2, y} needs a box")
	}
	if o.newMagicNeeded("t", nil) {
		t.Error("empty frontier never needs a box")
	}
	if !o.newMagicNeeded("c", []string{"l1", "x"}) {
		t.Error("partial frontier needs a box")
	}
}

// assertedProof builds
//
//	c <- rc <- {a, s}
//	a <- ra <- {l1, s2}
//	s <- rs             (asserted)
//	s2 <- rs2           (asserted)
func assertedProof(t *testing.T) *proof.Hierarchy {
	t.Helper()
	l := proof.NewEdgeList()
	add := func(id, element string, typ proof.NodeType, target string) {
		l.Add(proof.Node{ID: id, Type: typ, Element: element}, "e_"+id, target)
	}
	add("c", "c", proof.TypeAxiom, "")
	add("rc", "rc", proof.TypeRule, "c")
	add("a", "a", proof.TypeAxiom, "rc")
	add("ra", "ra", proof.TypeRule, "a")
	add("l1", "l1", proof.TypeAxiom, "ra")
	add("s2", "s2", proof.TypeAxiom, "ra")
	add("rs2", "Asserted", proof.TypeRule, "s2")
	add("s", "s", proof.TypeAxiom, "rc")
	add("rs", "Asserted Conclusion", proof.TypeRule, "s")
	h, err := proof.Stratify(l)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

// pullAll applies pull-up and pull-down anywhere until neither applies.
func pullAll(t *testing.T, h, orig *proof.Hierarchy, s *Synthesizer) *proof.Hierarchy {
	t.Helper()
	for range 100 {
		applied := false
		for _, n := range h.AllNodes() {
			for _, fn := range []Rewrite{PullUp, PullDown} {
				if l, _, ok := fn(n.ID, h, orig, s); ok {
					h = build(t, l)
					applied = true
					break
				}
			}
			if applied {
				break
			}
		}
		if !applied {
			return h
		}
	}
	t.Fatal("pulling did not reach a fixpoint")
	return nil
}

func TestAssertedLeaves(t *testing.T) {
	orig := assertedProof(t)
	s := NewSynthesizer()
	full := "c:rc;rc:a,s;a:ra;ra:l1,s2;s2:rs2;s:rs;"

	h := build(t, Initial(orig, s))
	if got, want := shape(h), "c:*;*:l1,s2,s;"; got != want {
		t.Fatalf("Initial = %s, want %s", got, want)
	}

	l, _, ok := PullUp("l1", h, orig, s)
	if !ok {
		t.Fatal("PullUp(l1) not applied")
	}
	h = build(t, l)
	if got := shape(h); got != full {
		t.Errorf("after PullUp(l1) = %s, want %s", got, full)
	}

	l, _, ok = PushDown("c", h, orig, s)
	if !ok {
		t.Fatal("PushDown(c) not applied")
	}
	h = build(t, l)
	if got, want := shape(h), "c:*;*:l1,s2,s;s2:rs2;"; got != want {
		t.Fatalf("after PushDown(c) = %s, want %s", got, want)
	}

	l, _, ok = PullDown("c", h, orig, s)
	if !ok {
		t.Fatal("PullDown(c) not applied")
	}
	h = build(t, l)
	if got := shape(h); got != full {
		t.Errorf("after PullDown(c) = %s, want %s", got, full)
	}
}

func TestPullAllRestoresProof(t *testing.T) {
	tests := []struct {
		name string
		orig func(*testing.T) *proof.Hierarchy
		push []string
	}{
		{"tautology", testProof, nil},
		{"tautology pushed", testProof, []string{"b", "a"}},
		{"asserted", assertedProof, nil},
		{"asserted pushed", assertedProof, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := tt.orig(t)
			s := NewSynthesizer()
			h := orig
			for _, id := range tt.push {
				if l, _, ok := PushUp(id, h, orig, s); ok {
					h = build(t, l)
				} else if l, _, ok := PushDown(id, h, orig, s); ok {
					h = build(t, l)
				}
			}
			if len(tt.push) == 0 {
				h = build(t, Initial(orig, s))
			}
			h = pullAll(t, h, orig, s)
			if !slices.Equal(relation(h), relation(orig)) {
				t.Errorf("pulled view:\n%v\nwant\n%v", relation(h), relation(orig))
			}
		})
	}
}

func TestSynthesizerUnique(t *testing.T) {
	orig := testProof(t)
	s := NewSynthesizer()
	seen := map[string]bool{}
	for _, n := range orig.AllNodes() {
		seen[n.ID] = true
		seen[n.EdgeID] = true
	}
	for i := 0; i < 50; i++ {
		for _, id := range []string{s.NewMagicBox().ID, s.NewEdge("a", "b").ID} {
			if seen[id] {
				t.Fatalf("id %q minted twice", id)
			}
			if !proof.IsSyntheticID(id) {
				t.Fatalf("id %q outside the synthetic namespace", id)
			}
			seen[id] = true
		}
	}
}

func TestOrderStructure(t *testing.T) {
	l := proof.NewEdgeList()
	for _, id := range []string{"a", "b", "c", "d"} {
		l.Nodes[id] = proof.Node{ID: id}
	}
	l.Edges = []proof.Edge{
		{ID: "3", Source: "d", Target: "b"},
		{ID: "2", Source: "c", Target: "a"},
		{ID: "1", Source: "b", Target: "a"},
		{ID: "0", Source: "a"},
		{ID: "x", Source: "z", Target: "q"},
	}
	got := OrderStructure(l)
	var order []string
	for _, e := range got.Edges {
		order = append(order, e.ID)
	}
	if want := []string{"0", "2", "1", "3", "x"}; !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestParseOp(t *testing.T) {
	for _, op := range Ops {
		got, err := ParseOp(string(op))
		if err != nil || got != op {
			t.Errorf("ParseOp(%q) = %q, %v", op, got, err)
		}
		if _, ok := Lookup(op); !ok {
			t.Errorf("Lookup(%q) failed", op)
		}
	}
	if _, err := ParseOp("sideways"); err == nil {
		t.Error("ParseOp(sideways) should fail")
	}
}
