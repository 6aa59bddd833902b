package pipeline

import (
	"context"

	"github.com/matzehuels/prooftower/pkg/counterexample"
	"github.com/matzehuels/prooftower/pkg/errors"
	"github.com/matzehuels/prooftower/pkg/graph"
	"github.com/matzehuels/prooftower/pkg/proof"
	"github.com/matzehuels/prooftower/pkg/render/nodelink"
	"github.com/matzehuels/prooftower/pkg/viewer"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout builds the view for in and serializes it.
func GenerateLayout(ctx context.Context, in *Input, opts Options) (graph.Layout, error) {
	if in.Model != nil {
		return generateModelLayout(ctx, in.Model, opts)
	}
	return generateProofLayout(ctx, in.Proof, opts)
}

// generateProofLayout runs one draw of a proof view: the same cycle an
// interactive session starts with, optionally narrowed to a sub-proof.
func generateProofLayout(ctx context.Context, l proof.EdgeList, opts Options) (graph.Layout, error) {
	v, err := viewer.NewProofView(ctx, l, viewer.Options{
		Layout: opts.Layout,
		Magic:  opts.Magic,
		Logger: opts.Logger,
	})
	if err != nil {
		return graph.Layout{}, err
	}
	if opts.Focus != "" {
		if _, err := v.FocusSubProof(ctx, opts.Focus); err != nil {
			return graph.Layout{}, err
		}
	}
	st := v.State()
	return graph.ProofLayout(st.Hierarchy, st.Bounds, st.Layout, st.Magic), nil
}

// generateModelLayout projects the model and describes it as DOT. Graphviz
// positions model graphs; there is no tidy layout for them.
func generateModelLayout(ctx context.Context, d *counterexample.Data, opts Options) (graph.Layout, error) {
	m, err := viewer.NewModelView(ctx, d, viewer.ModelOptions{
		Flags:  counterexample.Flags{IgnoreVisibility: opts.IgnoreVisibility},
		Logger: opts.Logger,
	})
	if err != nil {
		return graph.Layout{}, errors.Wrap(errors.ErrCodeInvalidModel, err, "build snapshot")
	}
	return SnapshotLayout(m.Snapshot()), nil
}

// SnapshotLayout projects a model snapshot and describes it as DOT.
func SnapshotLayout(s *counterexample.Snapshot) graph.Layout {
	g := graph.FromSnapshot(s)
	return graph.ModelLayout(g, nodelink.ToDOT(g, nodelink.Options{Direction: modelDirection}))
}

const modelDirection = "LR"
