package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/prooftower/pkg/graph"
	"github.com/matzehuels/prooftower/pkg/proof"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the element and metadata in node labels.
	// When false, only the display label is shown.
	Detailed bool
	// Direction is the Graphviz rankdir. Empty means "BT".
	Direction string
}

// ToDOT converts a graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(g graph.Graph, opts Options) string {
	dir := opts.Direction
	if dir == "" {
		dir = "BT"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	byID := make(map[string]graph.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	written := make(map[string]bool, len(g.Nodes))

	children := make(map[string]bool)
	for _, grp := range g.Groups {
		for _, sub := range grp.Groups {
			children[sub] = true
		}
	}
	groups := make(map[string]graph.Group, len(g.Groups))
	for _, grp := range g.Groups {
		groups[grp.ID] = grp
	}
	for _, grp := range g.Groups {
		if !children[grp.ID] {
			writeCluster(&buf, grp, groups, byID, written, opts, "  ")
		}
	}

	for _, n := range g.Nodes {
		if written[n.ID] {
			continue
		}
		writeNode(&buf, n, opts, "  ")
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if len(e.Labels) > 0 {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, strings.Join(e.Labels, ", "))
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeCluster(buf *bytes.Buffer, grp graph.Group, groups map[string]graph.Group, byID map[string]graph.Node, written map[string]bool, opts Options, indent string) {
	fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+grp.ID)
	fmt.Fprintf(buf, "%s  label=%q;\n", indent, grp.Label)
	fmt.Fprintf(buf, "%s  style=\"rounded,dashed\";\n", indent)
	for _, id := range grp.Leaves {
		n, ok := byID[id]
		if !ok || written[id] {
			continue
		}
		writeNode(buf, n, opts, indent+"  ")
		written[id] = true
	}
	for _, id := range grp.Groups {
		if sub, ok := groups[id]; ok {
			writeCluster(buf, sub, groups, byID, written, opts, indent+"  ")
		}
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

func writeNode(buf *bytes.Buffer, n graph.Node, opts Options, indent string) {
	label := fmtLabel(n, opts.Detailed)
	fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.ID, strings.Join(fmtAttrs(n, label), ", "))
}

func fmtLabel(n graph.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed {
		return label
	}

	var parts []string
	if n.Element != "" && n.Element != label {
		parts = append(parts, n.Element)
	}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n graph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if proof.NodeType(n.Kind).IsRule() {
		attrs = append(attrs, "shape=ellipse")
	}
	switch {
	case n.Synthetic:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightyellow")
	case n.Collapsed:
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	if n.HiddenNeighbors {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
