// Package proof provides the data model for proof traces and the hierarchy
// that turns a flat edge list into a rooted, collapsible tree.
//
// # Overview
//
// A proof trace is a set of [Node] records connected by [Edge] records. Edges
// point from a premise toward the rule or axiom it supports, so the final
// conclusion is the only node without an outgoing edge. A synthetic anchor
// edge with an empty target marks that conclusion as the root.
//
// [Stratify] converts an [EdgeList] into a [Hierarchy]: an arena of [HNode]
// values keyed by node id. Every HNode remembers two child lists:
//
//   - Children: the children currently visible
//   - All: every child, retained while collapsed
//
// [Hierarchy.Collapse] and [Hierarchy.Expand] only move entries between
// those two lists, so Children is always a subset of All. Structural
// rewrites never mutate a hierarchy in place; they emit a new edge list which
// is stratified again.
//
// # Identity Preservation
//
// Node ids are stable across rewrites. After a new hierarchy is built,
// [Preserve] copies the collapse state and the previous screen position of
// every node that also existed in the previous hierarchy. Nodes without a
// counterpart inherit the position of a vanished neighbour so transitions
// start from a sensible place.
//
// # Synthetic Nodes
//
// Magic boxes ("M" + n), their edges ("MNE" + n) and the rest-of-proof node
// "r0" are minted by this module, never read from a trace. [IsSyntheticID]
// reports whether an id belongs to that namespace so ingestion can reject
// traces that would collide with it.
package proof
