// Package transition computes animatable differences between two drawn
// frames of a proof hierarchy.
//
// [Diff] joins the previous [Scene] and a freshly laid out hierarchy by
// node id (links by "parent->child") and sorts every element into one of
// three disjoint phases: entering, updating or exiting. Entering elements
// start at the interaction source, the node the user acted on, and exiting
// elements travel toward it while fading out.
//
// Drawing a [Frame] is left to a [Renderer]. The [Animator] is the
// Idle/Animating state machine that rejects new work while a frame is in
// flight.
package transition
