// Package viewer holds the interactive state of one open proof or model.
//
// A [ProofView] owns the original proof, the hierarchy currently shown, the
// magic-box synthesizer, the layout options and the animator. Every
// operation runs the same update cycle:
//
//	edge list → OrderStructure → Stratify → Preserve → layout.Apply
//	          → transition.Diff → Renderer → Stash
//
// A [ModelView] does the same for a counterexample model: run a task on the
// ground truth, rebuild the snapshot, hand it to the renderer.
//
// # Busy Gate
//
// Each view has one [transition.Animator]. While a frame is in flight every
// operation returns [Busy] without touching state; nothing is queued. The
// renderer reports the end of a frame through its done callback, or the
// caller does through TransitionEnd when the frame plays remotely.
//
// # Outcomes
//
// Operations return an [Outcome] and an error. Unmet preconditions are not
// errors: they yield [Rejected]. Errors are reserved for unknown ids and
// renderer failures, and carry codes from pkg/errors.
package viewer
