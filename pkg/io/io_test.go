package io

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/prooftower/pkg/errors"
	"github.com/matzehuels/prooftower/pkg/proof"
)

const smallTrace = `<?xml version="1.0"?>
<graphml>
  <graph id="proof">
    <node id="c"><data key="type">axiom</data><data key="element">A ⊑ C</data><data key="nLElement">Every A is a C</data></node>
    <node id="r"><data key="type">cdrule</data><data key="element">Numeric</data>
      <data key="op">
        <ref constraintID="q1" type="premise" coe="2"/>
        <inequation id="q1" op="&lt;=" bound="4"><term var="x" coef="2"/></inequation>
        <equation id="q2" bound="1"><term var="y" coef="1"/></equation>
      </data>
    </node>
    <node id="p1"><data key="type">axiom</data><data key="element">A ⊑ B</data></node>
    <node id="p2"><data key="type">axiom</data><data key="element">B ⊑ C</data></node>
    <edge id="e0" source="r" target="c"/>
    <edge id="e1" source="p1" target="r"/>
    <edge id="e2" source="p2" target="r"/>
  </graph>
</graphml>`

func TestReadProof(t *testing.T) {
	l, err := ReadProof(strings.NewReader(smallTrace))
	if err != nil {
		t.Fatalf("ReadProof: %v", err)
	}
	if len(l.Nodes) != 4 {
		t.Fatalf("nodes = %d, want 4", len(l.Nodes))
	}
	anchor, ok := l.Anchor()
	if !ok || anchor.Source != "c" || anchor.ID != RootEdgeID {
		t.Errorf("anchor = %+v, %v; want c/%s", anchor, ok, RootEdgeID)
	}
	var got []string
	for _, e := range l.Edges {
		got = append(got, e.Source+">"+e.Target)
	}
	want := []string{"c>", "r>c", "p1>r", "p2>r"}
	if !slices.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}

	c := l.Nodes["c"]
	if c.Labels.NaturalLanguage != "Every A is a C" || c.Label(proof.FormatTextual) != "Every A is a C" {
		t.Errorf("c labels = %+v", c.Labels)
	}
	r := l.Nodes["r"]
	if r.Type != proof.TypeCDRule || r.Data == nil {
		t.Fatalf("r = %+v, want cdrule with payload", r)
	}
	if len(r.Data.Constraints) != 2 || len(r.Data.Refs) != 1 {
		t.Fatalf("payload = %+v", r.Data)
	}
	eq, ineq := r.Data.Constraints[0], r.Data.Constraints[1]
	if eq.Kind != proof.KindEquation || eq.ID != "q2" {
		t.Errorf("first constraint = %+v, want equation q2", eq)
	}
	if ineq.Kind != proof.KindInequation || ineq.Op != "<=" || ineq.Bound != 4 || ineq.Terms[0].Coef != 2 {
		t.Errorf("inequation = %+v", ineq)
	}
	if r.Data.Refs[0].Coe != 2 {
		t.Errorf("ref = %+v", r.Data.Refs[0])
	}
}

func TestReadProofBareGraph(t *testing.T) {
	in := `<graph><node id="a"/><node id="b"/><edge source="b" target="a"/></graph>`
	l, err := ReadProof(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadProof: %v", err)
	}
	if len(l.Edges) != 2 || l.Edges[1].ID != "e0" {
		t.Errorf("edges = %+v", l.Edges)
	}
	if l.Nodes["a"].Type != proof.TypeAxiom {
		t.Errorf("default type = %q, want axiom", l.Nodes["a"].Type)
	}
}

func TestReadProofErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not xml", "{"},
		{"no graph", `<graphml></graphml>`},
		{"synthetic id", `<graph><node id="M1"/></graph>`},
		{"duplicate id", `<graph><node id="a"/><node id="a"/></graph>`},
		{"unknown target", `<graph><node id="a"/><edge source="a" target="x"/></graph>`},
		{"two roots", `<graph><node id="a"/><node id="b"/></graph>`},
		{"two targets", `<graph><node id="a"/><node id="b"/><node id="c"/><edge source="c" target="a"/><edge source="c" target="b"/></graph>`},
		{"cycle", `<graph><node id="a"/><node id="b"/><node id="c"/><edge source="a" target="b"/><edge source="b" target="a"/></graph>`},
		{"bad type", `<graph><node id="a"><data key="type">mrule</data></node></graph>`},
		{"synthetic edge id", `<graph><node id="c"/><node id="r"/><edge id="MNE0" source="r" target="c"/></graph>`},
		{"synthetic rest edge id", `<graph><node id="c"/><node id="r"/><edge id="r0" source="r" target="c"/></graph>`},
		{"duplicate edge id", `<graph><node id="c"/><node id="r"/><node id="p"/><edge id="e" source="r" target="c"/><edge id="e" source="p" target="r"/></graph>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadProof(strings.NewReader(tt.in))
			if !errors.Is(err, errors.ErrCodeInvalidTrace) {
				t.Errorf("err = %v, want INVALID_TRACE", err)
			}
		})
	}
}

func TestReadProofMintsFreeEdgeIDs(t *testing.T) {
	in := `<graph>
  <node id="c"/><node id="r"><data key="type">rule</data></node><node id="p"/><node id="q"/>
  <edge id="root" source="r" target="c"/>
  <edge id="e2" source="p" target="r"/>
  <edge source="q" target="r"/>
</graph>`
	l, err := ReadProof(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, e := range l.Edges {
		if seen[e.ID] {
			t.Errorf("edge id %q used twice", e.ID)
		}
		seen[e.ID] = true
	}
	if got := l.Edges[0]; !got.IsAnchor() || got.ID != "root_1" {
		t.Errorf("anchor = %+v, want id root_1", got)
	}
	if got := l.Edges[3].ID; got != "e2_1" {
		t.Errorf("unnamed edge id = %q, want e2_1", got)
	}
}

func TestWriteProofRoundTrip(t *testing.T) {
	l, err := ReadProof(strings.NewReader(smallTrace))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteProof(&buf, l); err != nil {
		t.Fatalf("WriteProof: %v", err)
	}
	back, err := ReadProof(&buf)
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if !slices.Equal(back.Edges, l.Edges) {
		t.Errorf("edges = %+v, want %+v", back.Edges, l.Edges)
	}
	if back.Nodes["r"].Data == nil || len(back.Nodes["r"].Data.Constraints) != 2 {
		t.Errorf("payload lost: %+v", back.Nodes["r"])
	}
}

const smallModel = `<graphml><graph>
  <node id="a"><data key="label">Person</data><data key="element">a</data></node>
  <node id="b"><data key="label">Dog</data><data key="element">b</data><data key="hidden">true</data></node>
  <edge source="a" target="b"><data key="label">owns</data><data key="label">likes</data></edge>
</graph></graphml>`

func TestReadModel(t *testing.T) {
	d, err := ReadModel(strings.NewReader(smallModel))
	if err != nil {
		t.Fatalf("ReadModel: %v", err)
	}
	a, _ := d.Node("a")
	b, _ := d.Node("b")
	if !a.Visible || b.Visible {
		t.Errorf("visibility a=%v b=%v, want true false", a.Visible, b.Visible)
	}
	edges := d.Edges()
	if len(edges) != 1 || !slices.Equal(edges[0].Labels, []string{"owns", "likes"}) {
		t.Errorf("edges = %+v", edges)
	}

	_, err = ReadModel(strings.NewReader(`<graph><node id="a"/><edge source="a" target="z"/></graph>`))
	if !errors.Is(err, errors.ErrCodeInvalidModel) {
		t.Errorf("unknown endpoint err = %v, want INVALID_MODEL", err)
	}
}

func TestReadMapper(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"Person":"Human"}`, "Human"},
		{"wrapped", `{"Concept2Representative":{"Person":"Agent"}}`, "Agent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ReadMapper(strings.NewReader(tt.in))
			if err != nil {
				t.Fatal(err)
			}
			if m["Person"] != tt.want {
				t.Errorf("Person = %q, want %q", m["Person"], tt.want)
			}
		})
	}
	if _, err := ReadMapper(strings.NewReader(`{"a":1}`)); !errors.Is(err, errors.ErrCodeInvalidModel) {
		t.Errorf("err = %v, want INVALID_MODEL", err)
	}
}

func TestLoadCounterexample(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "result.model.xml")
	mapper := filepath.Join(dir, "mapper.json")
	if err := os.WriteFile(model, []byte(smallModel), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(mapper, []byte(`{"Concept2Representative":{"Person":"Human"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadCounterexample(context.Background(), model, mapper)
	if err != nil {
		t.Fatalf("LoadCounterexample: %v", err)
	}
	a, _ := d.Node("a")
	if a.ImportantLabel != "Human" {
		t.Errorf("ImportantLabel = %q, want Human", a.ImportantLabel)
	}

	if _, err := LoadCounterexample(context.Background(), model, ""); err != nil {
		t.Errorf("without mapper: %v", err)
	}
	_, err = LoadCounterexample(context.Background(), filepath.Join(dir, "missing.xml"), mapper)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}
