package viewer

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/prooftower/pkg/counterexample"
	"github.com/matzehuels/prooftower/pkg/errors"
	"github.com/matzehuels/prooftower/pkg/observability"
	"github.com/matzehuels/prooftower/pkg/transition"
)

// SnapshotRenderer draws snapshots. It must call done exactly once when
// the snapshot has finished animating.
type SnapshotRenderer interface {
	RenderSnapshot(ctx context.Context, s *counterexample.Snapshot, done func()) error
}

// SnapshotRendererFunc adapts a function to the SnapshotRenderer interface.
type SnapshotRendererFunc func(ctx context.Context, s *counterexample.Snapshot, done func()) error

// RenderSnapshot calls fn.
func (fn SnapshotRendererFunc) RenderSnapshot(ctx context.Context, s *counterexample.Snapshot, done func()) error {
	return fn(ctx, s, done)
}

// ImmediateSnapshot draws nothing and finishes at once.
var ImmediateSnapshot SnapshotRenderer = SnapshotRendererFunc(func(_ context.Context, _ *counterexample.Snapshot, done func()) error {
	done()
	return nil
})

// ModelOptions configures a ModelView.
type ModelOptions struct {
	Flags    counterexample.Flags
	History  int
	Renderer SnapshotRenderer
	Logger   *log.Logger
}

// ModelView is one open counterexample model.
type ModelView struct {
	mu sync.Mutex

	data     *counterexample.Data
	tasks    *counterexample.TaskStack
	flags    counterexample.Flags
	snap     *counterexample.Snapshot
	anim     *transition.Animator
	renderer SnapshotRenderer
	logger   *log.Logger
}

// NewModelView builds the first snapshot of d and draws it.
func NewModelView(ctx context.Context, d *counterexample.Data, opts ModelOptions) (*ModelView, error) {
	if opts.Renderer == nil {
		opts.Renderer = ImmediateSnapshot
	}
	if opts.Logger == nil {
		opts.Logger = Options{}.withDefaults().Logger
	}
	m := &ModelView{
		data:     d,
		tasks:    counterexample.NewTaskStack(opts.History),
		flags:    opts.Flags,
		anim:     transition.NewAnimator(0),
		renderer: opts.Renderer,
		logger:   opts.Logger,
	}
	if err := m.rebuild(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ModelView) rebuild(ctx context.Context) error {
	snap, err := counterexample.BuildSnapshot(m.data, m.flags)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidModel, err, "build snapshot")
	}
	m.snap = snap
	if !m.anim.Begin() {
		return errors.New(errors.ErrCodeBusy, "transition in flight")
	}
	if err := m.renderer.RenderSnapshot(ctx, snap, m.anim.Finisher()); err != nil {
		m.anim.End()
		return errors.Wrap(errors.ErrCodeInternal, err, "render snapshot")
	}
	return nil
}

func (m *ModelView) gate(ctx context.Context, op string) bool {
	if m.anim.Busy() {
		m.logger.Debug("dropped while animating", "op", op)
		observability.View().OnBusy(ctx, op)
		return false
	}
	return true
}

// modelError maps counterexample errors to coded errors.
func modelError(err error) error {
	switch {
	case stderrors.Is(err, counterexample.ErrUnknownNode):
		return errors.Wrap(errors.ErrCodeNodeNotFound, err, "model")
	case stderrors.Is(err, counterexample.ErrUnknownGroup):
		return errors.Wrap(errors.ErrCodeGroupNotFound, err, "model")
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "model")
}

// run executes t on the task stack and redraws.
func (m *ModelView) run(ctx context.Context, op string, t counterexample.Task) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.gate(ctx, op) {
		return Busy, nil
	}
	err := m.tasks.Run(t)
	observability.View().OnTask(ctx, op, err)
	if err != nil {
		return Rejected, modelError(err)
	}
	m.logger.Debug("model task", "task", t.Name)
	return Applied, m.rebuild(ctx)
}

// Hide hides the given nodes.
func (m *ModelView) Hide(ctx context.Context, ids []string) (Outcome, error) {
	return m.run(ctx, "hide", counterexample.HideTask(m.data, ids))
}

// Show shows the given nodes.
func (m *ModelView) Show(ctx context.Context, ids []string) (Outcome, error) {
	return m.run(ctx, "show", counterexample.ShowTask(m.data, ids))
}

// Group gathers members under a new collapsed group.
func (m *ModelView) Group(ctx context.Context, label string, members []string) (Outcome, error) {
	return m.run(ctx, "group", counterexample.GroupTask(m.data, label, members))
}

// Ungroup dissolves group id.
func (m *ModelView) Ungroup(ctx context.Context, id string) (Outcome, error) {
	return m.run(ctx, "ungroup", counterexample.UngroupTask(m.data, id))
}

// ToggleGroup expands or collapses group id.
func (m *ModelView) ToggleGroup(ctx context.Context, id string) (Outcome, error) {
	return m.run(ctx, "toggle-group", counterexample.ToggleGroupTask(m.data, id))
}

// ShowReachableHidden shows every hidden node reachable from the visible
// vertex id through hidden nodes. It is rejected when nothing is hidden
// behind id.
func (m *ModelView) ShowReachableHidden(ctx context.Context, id string) (Outcome, error) {
	m.mu.Lock()
	snap := m.snap
	m.mu.Unlock()
	if _, ok := snap.Vertex(id); !ok {
		return Rejected, errors.New(errors.ErrCodeNodeNotFound, "no vertex %q in snapshot", id)
	}
	if len(snap.Search.SearchReachableHiddenNodes(id)) == 0 {
		return Rejected, nil
	}
	return m.run(ctx, "show-reachable", counterexample.ShowReachableHiddenTask(m.data, snap, id))
}

// SetMapper replaces the representative-label mapping and redraws.
func (m *ModelView) SetMapper(ctx context.Context, mapper map[string]string) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.gate(ctx, "set-mapper") {
		return Busy, nil
	}
	m.data.ApplyMapper(mapper)
	return Applied, m.rebuild(ctx)
}

// SetIgnoreVisibility includes or excludes hidden nodes from snapshots.
func (m *ModelView) SetIgnoreVisibility(ctx context.Context, on bool) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.gate(ctx, "ignore-visibility") {
		return Busy, nil
	}
	m.flags.IgnoreVisibility = on
	return Applied, m.rebuild(ctx)
}

// Undo reverts the last task.
func (m *ModelView) Undo(ctx context.Context) (Outcome, error) {
	return m.step(ctx, "undo", m.tasks.Undo)
}

// Redo re-applies the last undone task.
func (m *ModelView) Redo(ctx context.Context) (Outcome, error) {
	return m.step(ctx, "redo", m.tasks.Redo)
}

func (m *ModelView) step(ctx context.Context, op string, fn func() (bool, error)) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.gate(ctx, op) {
		return Busy, nil
	}
	ok, err := fn()
	observability.View().OnTask(ctx, op, err)
	if err != nil {
		return Rejected, modelError(err)
	}
	if !ok {
		return Rejected, nil
	}
	return Applied, m.rebuild(ctx)
}

// TransitionEnd marks the snapshot in flight as finished.
func (m *ModelView) TransitionEnd() { m.anim.End() }

// Snapshot returns the last snapshot built.
func (m *ModelView) Snapshot() *counterexample.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Data returns the ground truth of the view.
func (m *ModelView) Data() *counterexample.Data { return m.data }

// CanUndo reports whether Undo has work to do.
func (m *ModelView) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasks.CanUndo()
}

// CanRedo reports whether Redo has work to do.
func (m *ModelView) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasks.CanRedo()
}

// Busy reports whether a snapshot is in flight.
func (m *ModelView) Busy() bool { return m.anim.Busy() }
