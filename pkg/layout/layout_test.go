package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/prooftower/pkg/proof"
)

// sample builds c <- r1 <- {a1, a2}, a1 <- r2 <- {l1, l2}.
func sample(t *testing.T) *proof.Hierarchy {
	t.Helper()
	l := proof.NewEdgeList()
	add := func(id, label string, typ proof.NodeType, target string) {
		l.Add(proof.Node{ID: id, Type: typ, Element: label, Labels: proof.Labels{Default: label}}, "e"+id, target)
	}
	add("c", "conclusion", proof.TypeAxiom, "")
	add("r1", "R1", proof.TypeRule, "c")
	add("a1", "first", proof.TypeAxiom, "r1")
	add("a2", "second\npremise", proof.TypeAxiom, "r1")
	add("r2", "R2", proof.TypeRule, "a1")
	add("l1", "x", proof.TypeAxiom, "r2")
	add("l2", "y", proof.TypeAxiom, "r2")
	h, err := proof.Stratify(l)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func node(h *proof.Hierarchy, id string) *proof.HNode {
	n, _ := h.Node(id)
	return n
}

func TestSize(t *testing.T) {
	h := sample(t)
	opts := Options{CharWidth: 10, LineHeight: 20, Padding: 5}
	Size(h, opts)

	tests := []struct {
		id   string
		w, h float64
	}{
		{"c", 10*10 + 10, 20 + 10},
		{"a2", 7*10 + 10, 2*20 + 10},
		{"l1", 1*10 + 10, 20 + 10},
	}
	for _, tt := range tests {
		n := node(h, tt.id)
		if n.Width != tt.w || n.Height != tt.h {
			t.Errorf("%s: size = %vx%v, want %vx%v", tt.id, n.Width, n.Height, tt.w, tt.h)
		}
	}
}

func TestSizeSkipsCollapsed(t *testing.T) {
	h := sample(t)
	_ = h.Collapse("a1")
	Size(h, Options{})
	if node(h, "l1").Width != 0 {
		t.Error("hidden nodes must not be sized")
	}
	if node(h, "a1").Width == 0 {
		t.Error("collapsed node itself must be sized")
	}
}

func TestTreeNoOverlap(t *testing.T) {
	h := sample(t)
	Apply(h, Options{Mode: ModeTree})

	byDepth := map[int][]*proof.HNode{}
	for _, n := range h.Descendants() {
		byDepth[n.Depth] = append(byDepth[n.Depth], n)
		if math.IsNaN(n.X) || math.IsNaN(n.Y) {
			t.Fatalf("%s has NaN position", n.ID)
		}
	}
	for depth, row := range byDepth {
		for i := 1; i < len(row); i++ {
			a, b := row[i-1], row[i]
			if a.X+a.Width/2 > b.X-b.Width/2 {
				t.Errorf("depth %d: %s and %s overlap", depth, a.ID, b.ID)
			}
		}
	}
	if c, r1 := node(h, "c"), node(h, "r1"); c.Y >= r1.Y {
		t.Errorf("root should be above its rule (%v >= %v)", c.Y, r1.Y)
	}
}

func TestTreeParentCentered(t *testing.T) {
	h := sample(t)
	Apply(h, Options{})
	r2, l1, l2 := node(h, "r2"), node(h, "l1"), node(h, "l2")
	if mid := (l1.X + l2.X) / 2; math.Abs(r2.X-mid) > 1e-9 {
		t.Errorf("r2.X = %v, want midpoint %v", r2.X, mid)
	}
}

func TestTreeAllowOverlapFits(t *testing.T) {
	h := sample(t)
	Apply(h, Options{AllowOverlap: true, Width: 300, Height: 200})
	for _, n := range h.Descendants() {
		if n.X < 0 || n.X > 300 {
			t.Errorf("%s: x = %v outside viewport", n.ID, n.X)
		}
		if n.Y < 0 || n.Y > 200 {
			t.Errorf("%s: y = %v outside viewport", n.ID, n.Y)
		}
	}
	if got := node(h, "l1").Y; got != 200 {
		t.Errorf("deepest level y = %v, want 200", got)
	}
}

func TestTreeSingleNode(t *testing.T) {
	l := proof.NewEdgeList()
	l.Add(proof.Node{ID: "only", Type: proof.TypeAxiom, Element: "only"}, "e", "")
	h, _ := proof.Stratify(l)
	b := Apply(h, Options{AllowOverlap: true})
	if n := h.Root(); math.IsNaN(n.X) || math.IsNaN(n.Y) {
		t.Fatal("NaN position for a single node")
	}
	if b.Width() <= 0 {
		t.Errorf("bounds width = %v", b.Width())
	}
}

func rowOf(h *proof.Hierarchy, id string) float64 { return node(h, id).Y }

func TestLinearPostOrder(t *testing.T) {
	h := sample(t)
	Apply(h, Options{Mode: ModeLinear, BottomRoot: true})

	// post-order over axioms: l1 l2 a1 a2 c
	order := []string{"l1", "l2", "a1", "a2", "c"}
	for i := 1; i < len(order); i++ {
		if rowOf(h, order[i-1]) >= rowOf(h, order[i]) {
			t.Errorf("%s should be above %s", order[i-1], order[i])
		}
	}
	c, r1 := node(h, "c"), node(h, "r1")
	if r1.X <= c.X+c.Width/2 {
		t.Errorf("rule should sit right of its axiom: r1.X=%v c.right=%v", r1.X, c.X+c.Width/2)
	}
	if r1.Y >= c.Y {
		t.Errorf("with bottomRoot the rule is nudged upward: r1.Y=%v c.Y=%v", r1.Y, c.Y)
	}
}

func TestLinearTopRoot(t *testing.T) {
	h := sample(t)
	Apply(h, Options{Mode: ModeLinear})
	if rowOf(h, "c") != 0 {
		t.Errorf("root row = %v, want 0", rowOf(h, "c"))
	}
	if rowOf(h, "l1") <= rowOf(h, "a1") {
		t.Error("premises should be listed below conclusions")
	}
}

func TestLinearDistancePriority(t *testing.T) {
	h := sample(t)
	Apply(h, Options{Mode: ModeLinear, DistancePriority: true, BottomRoot: true})
	// reversed BFS over axioms: l2 l1 a2 a1 c
	order := []string{"l2", "l1", "a2", "a1", "c"}
	for i := 1; i < len(order); i++ {
		if rowOf(h, order[i-1]) >= rowOf(h, order[i]) {
			t.Errorf("%s should be above %s", order[i-1], order[i])
		}
	}
}

func TestLinearCompact(t *testing.T) {
	h := sample(t)
	Apply(h, Options{Mode: ModeLinear, Compact: true})
	rows := map[float64]string{}
	for _, n := range h.Descendants() {
		if other, dup := rows[n.Y]; dup {
			t.Errorf("%s and %s share a row", n.ID, other)
		}
		rows[n.Y] = n.ID
	}
	if len(rows) != 7 {
		t.Errorf("got %d rows, want 7", len(rows))
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeTree, false},
		{"tree", ModeTree, false},
		{"linear", ModeLinear, false},
		{"radial", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}
