// Package layout positions the visible nodes of a proof hierarchy.
//
// # Sizing
//
// [Size] derives every visible node's box from its label: the longest line
// times a fixed character width, and the line count times a fixed line
// height, both plus padding. Collapsed subtrees are skipped.
//
// # Tree Mode
//
// [Tree] is a tidy tree layout (Buchheim, Jünger and Leipert's linear-time
// variant of Walker's algorithm). Siblings are separated by
//
//	(widthA + widthB) / 2 / maxWidth + 0.03
//
// in units of the widest node, so spacing stays proportional whatever the
// absolute label widths are. With AllowOverlap set, the layout is scaled to
// fit the configured viewport instead.
//
// # Linear Mode
//
// [Linear] flattens the proof into an ordered list. It runs the tree layout
// for depths, ranks the eligible nodes by depth-first post-order (or by
// reversed breadth-first order when DistancePriority is set) and maps ranks
// to evenly spaced rows. Outside compact mode only axioms are ranked and
// each rule is drawn beside the axiom it derives.
package layout
