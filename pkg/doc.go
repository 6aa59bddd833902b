// Package pkg provides the core libraries for Prooftower proof and
// counterexample visualization.
//
// # Overview
//
// Prooftower lays out description-logic proofs as trees whose conclusion
// rests on the rules and premises that derive it. A proof can be browsed in
// full or condensed into a magic-box view that hides folded structure behind
// synthetic nodes and is unfolded one rewrite at a time. Counterexample
// models are projected into node-link graphs whose nodes can be hidden and
// grouped with undo and redo.
//
// # Architecture
//
// The typical data flow for a proof:
//
//	trace.xml
//	    ↓
//	[io] package (decode, validate as a DAG)
//	    ↓
//	[proof] package (stratify into a hierarchy; [proof/magic] rewrites)
//	    ↓
//	[layout] package (tree or linear positions)
//	    ↓
//	[viewer] package (interactive state, [transition] frames)
//	    ↓
//	[graph] + [render/nodelink] (JSON, DOT, SVG)
//
// Counterexamples take the same route through [counterexample] instead of
// [proof] and [layout].
//
// # Quick Start
//
//	list, _ := io.ImportProof("trace.xml")
//	v, _ := viewer.NewProofView(ctx, list, viewer.Options{Magic: true})
//	v.Rewrite(ctx, magic.OpPullUp, "l1")
//	st := v.State()
//	l := graph.ProofLayout(st.Hierarchy, st.Bounds, st.Layout, st.Magic)
//
// # Main Packages
//
// ## Domain
//
// [proof] - Proof nodes, edge lists and the collapsible hierarchy.
//
// [proof/magic] - Magic-box synthesis and the pull/push rewrites.
//
// [layout] - Tree and linear placement of a hierarchy.
//
// [counterexample] - Snapshot builder over visibility, groups and mappers.
//
// [transition] - Enter, update and exit frames between two drawn states.
//
// [viewer] - Proof and model views that serialize operations and drive
// transitions.
//
// ## Serialization and Output
//
// [io] - Trace, model and mapper readers, plus the trace writer.
//
// [graph] - JSON node-link layouts of proofs and snapshots.
//
// [render/nodelink] - Graphviz DOT export and SVG rendering.
//
// [pipeline] - The load, layout and render pipeline used by the CLI and the
// HTTP export endpoints.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches for layouts and artifacts.
//
// [session] - Stores for views opened over HTTP.
//
// [server] - The chi HTTP API.
//
// [notify] - Websocket client for highlight and repair requests.
//
// [watch] - Debounced file watching for live reloads.
//
// [config] - The TOML configuration file.
//
// [observability] - Hooks for metrics, with a Prometheus implementation.
//
// [errors] - Coded errors and input validation.
//
// [dag] - Directed acyclic graph used to validate traces.
//
// [io]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/io
// [proof]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/proof
// [proof/magic]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/proof/magic
// [layout]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/layout
// [viewer]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/viewer
// [transition]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/transition
// [graph]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/graph
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/render/nodelink
// [counterexample]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/counterexample
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/session
// [server]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/server
// [notify]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/notify
// [watch]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/watch
// [config]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/errors
// [dag]: https://pkg.go.dev/github.com/matzehuels/prooftower/pkg/dag
package pkg
