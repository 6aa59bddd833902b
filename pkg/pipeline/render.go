package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/prooftower/pkg/graph"
	"github.com/matzehuels/prooftower/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = graph.MarshalLayout(l)
		case FormatDOT:
			data = []byte(ToDOT(l, opts))
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, ToDOT(l, opts))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// ToDOT returns the DOT description of l. Model layouts reuse their stored
// DOT unless a detailed diagram is requested.
func ToDOT(l graph.Layout, opts Options) string {
	if l.IsModel() {
		if l.DOT != "" && !opts.Detailed {
			return l.DOT
		}
		g := graph.Graph{Nodes: l.Nodes, Edges: l.Edges, Groups: l.Groups}
		return nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed, Direction: modelDirection})
	}

	dir := ""
	if opts.Layout.BottomRoot {
		dir = "TB"
	}
	g := graph.Graph{Nodes: l.Nodes, Edges: l.Edges}
	return nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed, Direction: dir})
}
