// Package magic implements magic navigation: an alternative view of a proof
// in which unexplored parts are folded into synthetic "magic boxes".
//
// # Model
//
// The original proof alternates axiom and rule levels. In the magic view an
// axiom a may hang above a magic box whose children form a frontier of a's
// original subtree: a set of axioms below a such that every
// non-tautological leaf under a lies under exactly one of them. A
// tautology is an axiom derived by a rule without premises.
//
// Four rewrites move the frontier one inference step at a time:
//
//   - [PullUp] reveals the step that derives a frontier node's conclusion
//   - [PushUp] folds the step above a node back into a box
//   - [PullDown] replaces a box by the real rule of its conclusion
//   - [PushDown] folds the real rule below an axiom into a box
//
// Each rewrite is a pure function of the focus node, the current hierarchy
// and the original hierarchy. It returns a new [proof.EdgeList] and leaves
// both hierarchies untouched. When a precondition does not hold the rewrite
// reports ok=false and returns nothing.
//
// Whenever a frontier coincides with the premises of a real rule, the box
// is dropped in favour of that rule. A revealed rule shows every premise
// with the derivation it has in the original proof when that derivation
// needs no frontier, so asserted axioms below a real rule carry their
// assertion while those on a frontier do not.
//
// # Identifiers
//
// A [Synthesizer] mints box ids "M0", "M1", ... and edge ids "MNE0",
// "MNE1", ... from counters that never reset. Edges that exist in the
// original proof keep their original ids.
package magic
