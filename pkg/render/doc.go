// Package render groups the output renderers of prooftower.
//
// The [nodelink] subpackage renders proof trees and counterexample
// snapshots as Graphviz node-link diagrams:
//
//	dot := nodelink.ToDOT(graph.FromHierarchy(h, nil), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/prooftower/pkg/render/nodelink
package render
