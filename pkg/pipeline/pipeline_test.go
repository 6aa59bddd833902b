package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/prooftower/pkg/cache"
	"github.com/matzehuels/prooftower/pkg/errors"
	"github.com/matzehuels/prooftower/pkg/graph"
	"github.com/matzehuels/prooftower/pkg/layout"
)

const trace = `<graphml><graph>
  <node id="c"><data key="type">axiom</data><data key="element">A ⊑ C</data></node>
  <node id="r"><data key="type">rule</data><data key="element">Composition</data></node>
  <node id="p1"><data key="type">axiom</data><data key="element">A ⊑ B</data></node>
  <node id="p2"><data key="type">axiom</data><data key="element">B ⊑ C</data></node>
  <edge id="e0" source="r" target="c"/>
  <edge id="e1" source="p1" target="r"/>
  <edge id="e2" source="p2" target="r"/>
</graph></graphml>`

const model = `<graph>
  <node id="a"><data key="label">Person</data></node>
  <node id="b"><data key="label">Dog</data></node>
  <edge source="a" target="b"><data key="label">owns</data></edge>
</graph>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"json", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"proof defaults", Options{Input: "x.xml"}, false},
		{"model", Options{Kind: "model", Input: "m.xml", Mapper: "m.json"}, false},
		{"missing input", Options{}, true},
		{"bad kind", Options{Kind: "tree", Input: "x"}, true},
		{"mapper on proof", Options{Input: "x", Mapper: "m.json"}, true},
		{"bad mode", Options{Input: "x", Layout: layout.Options{Mode: "radial"}}, true},
		{"bad format", Options{Input: "x", Formats: []string{"pdf"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(tt.opts.Formats) == 0 || tt.opts.Logger == nil || tt.opts.Layout.Mode == "" {
				t.Errorf("defaults not applied: %+v", tt.opts)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	o := Options{Detailed: true}
	if got := o.ArtifactKeyOpts("dot").Format; got != "dot+detailed" {
		t.Errorf("detailed format key = %q", got)
	}
	o.Detailed = false
	if got := o.ArtifactKeyOpts("dot").Format; got != "dot" {
		t.Errorf("format key = %q", got)
	}
}

func TestExecuteProof(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := Options{Input: writeFile(t, "proof.xml", trace), Formats: []string{"json", "dot"}}
	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.NodeCount != 4 || len(res.Layout.Nodes) != 4 {
		t.Errorf("nodes = %d/%d, want 4", res.Stats.NodeCount, len(res.Layout.Nodes))
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("first run hit the cache: %+v", res.CacheInfo)
	}
	if !strings.Contains(string(res.Artifacts["dot"]), `"p1" -> "r";`) {
		t.Errorf("dot artifact = %s", res.Artifacts["dot"])
	}
	l, err := graph.UnmarshalLayout(res.Artifacts["json"])
	if err != nil || !l.IsProof() {
		t.Errorf("json artifact: %v %+v", err, l)
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run missed the cache: %+v", again.CacheInfo)
	}

	opts.Refresh = true
	fresh, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheInfo.LayoutHit {
		t.Error("refresh must skip the layout cache")
	}
}

func TestExecuteProofFocus(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := Options{Input: writeFile(t, "proof.xml", trace), Formats: []string{"json"}, Focus: "r"}
	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	var sawRest bool
	for _, n := range res.Layout.Nodes {
		if n.ID == "r0" {
			sawRest = true
		}
	}
	if !sawRest {
		t.Errorf("focused layout has no rest-of-proof node: %+v", res.Layout.Nodes)
	}
}

func TestExecuteModel(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := Options{
		Kind:    graph.KindModel,
		Input:   writeFile(t, "model.xml", model),
		Mapper:  writeFile(t, "mapper.json", `{"Person":"Human"}`),
		Formats: []string{"dot"},
	}
	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Layout.IsModel() || res.Layout.DOT == "" {
		t.Fatalf("layout = %+v", res.Layout)
	}
	dot := string(res.Artifacts["dot"])
	if !strings.Contains(dot, "rankdir=LR;") || !strings.Contains(dot, `"a" -> "b" [label="owns"];`) {
		t.Errorf("dot = %s", dot)
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{Input: filepath.Join(t.TempDir(), "missing.xml")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v, want FILE_NOT_FOUND", err)
	}

	bad := writeFile(t, "bad.xml", `<graph><node id="a"/><node id="b"/></graph>`)
	_, err = r.Execute(context.Background(), Options{Input: bad, Formats: []string{"json"}})
	if !errors.Is(err, errors.ErrCodeInvalidTrace) {
		t.Errorf("two roots err = %v, want INVALID_TRACE", err)
	}
}
