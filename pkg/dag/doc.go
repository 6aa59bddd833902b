// Package dag provides the directed acyclic graph that proof traces are
// checked against before they are stratified into a hierarchy.
//
// # Overview
//
// A proof trace read from disk is a flat list of nodes and edges. Before it
// can be turned into a tree, ingestion needs answers to a few structural
// questions: does every edge connect known nodes, does the trace contain a
// cycle, and which node is the final conclusion. This package answers them
// on a plain adjacency structure that knows nothing about proofs.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [DAG.AddNode] and edges with
// [DAG.AddEdge]. Edges point from a premise toward the node it supports:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "premise"})
//	g.AddNode(dag.Node{ID: "rule"})
//	g.AddEdge(dag.Edge{From: "premise", To: "rule"})
//
// [DAG.Sinks] returns the nodes without outgoing edges; a well-formed proof
// has exactly one, its conclusion. [DAG.Validate] reports dangling edges and
// cycles.
//
// # Concurrency
//
// A DAG is not safe for concurrent mutation. Concurrent reads are safe once
// construction is complete.
package dag
