// Package counterexample maintains the graph behind the counterexample
// viewer and projects it into renderable snapshots.
//
// # Ground Truth and Snapshots
//
// [Data] is the ground truth: every node, edge and group of the model along
// with per-node visibility and per-group expansion flags. It is the only
// thing user actions mutate. [BuildSnapshot] projects it into a [Snapshot]
// in which collapsed groups are replaced by proxy vertices, hidden nodes are
// dropped and edges are remapped accordingly. A snapshot is rebuilt after
// every change and never edited.
//
// Vertices and edges are tagged variants ([VertexKind], [EdgeKind]) rather
// than separate types.
//
// # Hidden Neighbours
//
// Every snapshot carries a [SearchGraph] over both the visible edges and the
// edges touching hidden nodes, so that
// [SearchGraph.SearchReachableHiddenNodes] can reveal a whole chain of
// hidden nodes connected to a visible one.
//
// # Undo
//
// Mutations are expressed as [Task] values with Do and Undo halves and run
// through a [TaskStack].
package counterexample
