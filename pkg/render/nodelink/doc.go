// Package nodelink renders proof trees and counterexample snapshots as
// node-link diagrams.
//
// # Overview
//
// Both views serialize to a [graph.Graph]; this package turns one into
// Graphviz DOT and renders DOT to SVG in-process.
//
// # Usage
//
//	dot := nodelink.ToDOT(graph.FromSnapshot(snap), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include the element and metadata
//   - Direction: rank direction; defaults to BT so proof conclusions sit on
//     top of their premises
//
// # DOT Format
//
// Rule nodes are drawn as ellipses, axioms as rounded boxes. Magic boxes
// and the rest-of-proof node are dashed; collapsed nodes and collapsed
// groups are filled grey. Expanded counterexample groups become clusters
// and merged edge labels are joined with ", ".
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for SVG rendering.
//
// [graph.Graph]: github.com/matzehuels/prooftower/pkg/graph.Graph
package nodelink
