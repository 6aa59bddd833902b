// Package graph provides serialization types for proof views and
// counterexample snapshots.
//
// This package defines the canonical wire format for prooftower's view
// data, used for JSON files, API responses and caching.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Graph], [Layout]: Serialization types (this package)
//   - pkg/proof.Hierarchy: Internal proof tree with positions
//   - pkg/counterexample.Snapshot: Internal counterexample projection
//
// Use [FromHierarchy], [FromSnapshot] and [ProofLayout] to convert into
// this package.
//
// # Core Types
//
//   - [Graph]: Node-link format shared by both views
//   - [Layout]: Positioned proof tree or DOT-described model graph
//   - [Node], [Edge], [Group]: Shared structural types
//
// # Graph Serialization
//
// Graphs use a simple node-link JSON format. Proof edges run from a premise
// to the node it supports:
//
//	{
//	  "nodes": [{"id": "c", "kind": "axiom"}, {"id": "r", "kind": "rule"}],
//	  "edges": [{"id": "e0", "from": "r", "to": "c"}]
//	}
//
// Common operations:
//
//	g := graph.FromHierarchy(h, nil)         // Hierarchy → Graph
//	data, _ := graph.MarshalGraph(g)         // Graph → []byte
//	parsed, _ := graph.UnmarshalGraph(data)  // []byte → Graph
//
// # Layout Serialization
//
// Layouts are discriminated by Kind:
//
//	layout, _ := graph.UnmarshalLayout(data)
//	if layout.IsProof() {
//	    // Use layout.Nodes for positioned boxes
//	} else {
//	    // Use layout.DOT for Graphviz rendering
//	}
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
