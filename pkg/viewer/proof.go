package viewer

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/prooftower/pkg/errors"
	"github.com/matzehuels/prooftower/pkg/layout"
	"github.com/matzehuels/prooftower/pkg/observability"
	"github.com/matzehuels/prooftower/pkg/proof"
	"github.com/matzehuels/prooftower/pkg/proof/magic"
	"github.com/matzehuels/prooftower/pkg/transition"
)

// ProofView is one open proof.
type ProofView struct {
	mu sync.Mutex

	full  proof.EdgeList   // as loaded
	orig  *proof.Hierarchy // full, or a focused sub-proof of it
	cur   *proof.Hierarchy
	synth *magic.Synthesizer
	magic bool

	layout   layout.Options
	bounds   layout.Bounds
	anim     *transition.Animator
	renderer transition.Renderer
	scene    transition.Scene
	frame    transition.Frame
	logger   *log.Logger
}

// NewProofView stratifies list and draws the first frame.
func NewProofView(ctx context.Context, list proof.EdgeList, opts Options) (*ProofView, error) {
	opts = opts.withDefaults()
	if err := opts.Layout.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "layout options")
	}
	orig, err := proof.Stratify(list)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTrace, err, "stratify proof")
	}
	v := &ProofView{
		full:     list.Clone(),
		orig:     orig,
		synth:    magic.NewSynthesizer(),
		magic:    opts.Magic,
		layout:   opts.Layout,
		anim:     transition.NewAnimator(opts.Duration),
		renderer: opts.Renderer,
		logger:   opts.Logger,
	}
	next, err := v.start(nil)
	if err != nil {
		return nil, err
	}
	v.logger.Debug("proof view opened", "nodes", orig.Len(), "magic", v.magic)
	if err := v.draw(ctx, next, ""); err != nil {
		return nil, err
	}
	return v, nil
}

// start builds the opening hierarchy of orig for the current mode and
// carries state over from prev.
func (v *ProofView) start(prev *proof.Hierarchy) (*proof.Hierarchy, error) {
	list := v.orig.Edges()
	if v.magic {
		list = magic.Initial(v.orig, v.synth)
	}
	next, err := proof.Stratify(magic.OrderStructure(list))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "stratify view")
	}
	proof.Preserve(prev, next, v.magic)
	return next, nil
}

// draw lays out next, diffs it against the last scene and hands the frame
// to the renderer. next must not be shared: it becomes the shown hierarchy
// only once the renderer accepted the frame, and is never written again.
// The caller holds v.mu and has checked that the animator is idle.
func (v *ProofView) draw(ctx context.Context, next *proof.Hierarchy, source string) error {
	bounds := layout.Apply(next, v.layout)
	f := transition.Diff(v.scene, next, source, transition.Options{
		Duration: v.anim.Duration(),
		Label:    v.layout.Label,
	})
	next.Stash()

	if !v.anim.Begin() {
		return errors.New(errors.ErrCodeBusy, "transition in flight")
	}
	if err := v.renderer.Render(ctx, f, v.anim.Finisher()); err != nil {
		v.anim.End()
		return errors.Wrap(errors.ErrCodeInternal, err, "render frame")
	}
	v.cur, v.bounds = next, bounds
	v.scene, v.frame = f.Next(), f
	observability.View().OnDraw(ctx, f.Count(transition.Enter), f.Count(transition.Update), f.Count(transition.Exit))
	return nil
}

// gate reports whether op may run, logging and counting it when not.
func (v *ProofView) gate(ctx context.Context, op string) bool {
	if v.anim.Busy() {
		v.logger.Debug("dropped while animating", "op", op)
		observability.View().OnBusy(ctx, op)
		return false
	}
	return true
}

func (v *ProofView) lookup(id string) error {
	if _, ok := v.cur.Node(id); !ok {
		return errors.New(errors.ErrCodeNodeNotFound, "no node %q in view", id)
	}
	return nil
}

// Toggle collapses or expands id. Leaves are rejected.
func (v *ProofView) Toggle(ctx context.Context, id string) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.gate(ctx, "toggle") {
		return Busy, nil
	}
	if err := v.lookup(id); err != nil {
		return Rejected, err
	}
	n, _ := v.cur.Node(id)
	if n.IsLeaf() {
		observability.View().OnRewrite(ctx, "toggle", false, 0)
		return Rejected, nil
	}
	start := time.Now()
	next := v.cur.Clone()
	_ = next.Toggle(id)
	if err := v.draw(ctx, next, id); err != nil {
		return Rejected, err
	}
	observability.View().OnRewrite(ctx, "toggle", true, time.Since(start))
	v.logger.Debug("toggled", "node", id, "collapsed", !n.IsCollapsed())
	return Applied, nil
}

// PullUp applies [magic.PullUp] at id.
func (v *ProofView) PullUp(ctx context.Context, id string) (Outcome, error) {
	return v.Rewrite(ctx, magic.OpPullUp, id)
}

// PushUp applies [magic.PushUp] at id.
func (v *ProofView) PushUp(ctx context.Context, id string) (Outcome, error) {
	return v.Rewrite(ctx, magic.OpPushUp, id)
}

// PullDown applies [magic.PullDown] at id.
func (v *ProofView) PullDown(ctx context.Context, id string) (Outcome, error) {
	return v.Rewrite(ctx, magic.OpPullDown, id)
}

// PushDown applies [magic.PushDown] at id.
func (v *ProofView) PushDown(ctx context.Context, id string) (Outcome, error) {
	return v.Rewrite(ctx, magic.OpPushDown, id)
}

// Rewrite applies a structural rewrite at id. Rewrites only apply in magic
// mode; outside it they are rejected.
func (v *ProofView) Rewrite(ctx context.Context, op magic.Op, id string) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.gate(ctx, string(op)) {
		return Busy, nil
	}
	if err := v.lookup(id); err != nil {
		return Rejected, err
	}
	fn, ok := magic.Lookup(op)
	if !ok {
		return Rejected, errors.New(errors.ErrCodeInvalidInput, "unknown rewrite %q", op)
	}
	if !v.magic {
		v.logger.Debug("rewrite outside magic mode", "op", op, "node", id)
		observability.View().OnRewrite(ctx, string(op), false, 0)
		return Rejected, nil
	}

	start := time.Now()
	list, res, ok := fn(id, v.cur, v.orig, v.synth)
	if !ok {
		v.logger.Debug("rewrite precondition failed", "op", op, "node", id)
		observability.View().OnRewrite(ctx, string(op), false, 0)
		return Rejected, nil
	}
	next, err := proof.Stratify(magic.OrderStructure(list))
	if err != nil {
		return Rejected, errors.Wrap(errors.ErrCodeInternal, err, "%s at %q", op, id)
	}
	proof.Preserve(v.cur, next, true)
	if err := v.draw(ctx, next, res.Source); err != nil {
		return Rejected, err
	}
	observability.View().OnRewrite(ctx, string(op), true, time.Since(start))
	v.logger.Debug("rewrite applied", "op", op, "node", id, "source", res.Source, "nodes", next.Len())
	return Applied, nil
}

// SetMagic switches between the full proof and the magic view, which
// starts over from its opening state.
func (v *ProofView) SetMagic(ctx context.Context, on bool) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.gate(ctx, "set-magic") {
		return Busy, nil
	}
	if on == v.magic {
		return Rejected, nil
	}
	v.magic = on
	next, err := v.start(v.cur)
	if err == nil {
		err = v.draw(ctx, next, next.Root().ID)
	}
	if err != nil {
		v.magic = !on
		return Rejected, err
	}
	return Applied, nil
}

// SetLayout replaces the layout options and redraws.
func (v *ProofView) SetLayout(ctx context.Context, opts layout.Options) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.gate(ctx, "set-layout") {
		return Busy, nil
	}
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return Rejected, errors.Wrap(errors.ErrCodeInvalidLayout, err, "layout options")
	}
	prev := v.layout
	v.layout = opts
	if err := v.draw(ctx, v.cur.Clone(), v.cur.Root().ID); err != nil {
		v.layout = prev
		return Rejected, err
	}
	return Applied, nil
}

// SetFormat records the display format of id and redraws.
func (v *ProofView) SetFormat(ctx context.Context, id string, f proof.Format) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.gate(ctx, "set-format") {
		return Busy, nil
	}
	next := v.cur.Clone()
	if err := next.SetFormat(id, f); err != nil {
		return Rejected, errors.Wrap(errors.ErrCodeNodeNotFound, err, "set format")
	}
	if err := v.draw(ctx, next, id); err != nil {
		return Rejected, err
	}
	return Applied, nil
}

// FocusSubProof restricts the view to the sub-proof rooted at id, below a
// rest-of-proof node. id refers to the proof as loaded.
func (v *ProofView) FocusSubProof(ctx context.Context, id string) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.gate(ctx, "focus") {
		return Busy, nil
	}
	list, err := proof.FocusSubProof(v.full, id)
	if err != nil {
		if stderrors.Is(err, proof.ErrUnknownNode) {
			return Rejected, errors.Wrap(errors.ErrCodeNodeNotFound, err, "focus")
		}
		return Rejected, errors.Wrap(errors.ErrCodeInternal, err, "focus")
	}
	return v.restart(ctx, list)
}

// Reset returns to the proof as loaded, in the current mode.
func (v *ProofView) Reset(ctx context.Context) (Outcome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.gate(ctx, "reset") {
		return Busy, nil
	}
	return v.restart(ctx, v.full)
}

func (v *ProofView) restart(ctx context.Context, list proof.EdgeList) (Outcome, error) {
	orig, err := proof.Stratify(list)
	if err != nil {
		return Rejected, errors.Wrap(errors.ErrCodeInternal, err, "stratify")
	}
	prev := v.orig
	v.orig = orig
	next, err := v.start(v.cur)
	if err == nil {
		err = v.draw(ctx, next, next.Root().ID)
	}
	if err != nil {
		v.orig = prev
		return Rejected, err
	}
	return Applied, nil
}

// TransitionEnd marks the frame in flight as finished. Renderers that play
// frames elsewhere rely on the caller to report the end.
func (v *ProofView) TransitionEnd() { v.anim.End() }

// ShowConstraints feeds the numeric payload of id to w.
func (v *ProofView) ShowConstraints(id string, w proof.Widget) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.lookup(id); err != nil {
		return err
	}
	n, _ := v.cur.Node(id)
	if n.Node.Data == nil {
		return errors.New(errors.ErrCodeInvalidInput, "node %q carries no constraints", id)
	}
	return w.Update(n.Node.Data.Records())
}

// Hierarchy returns the hierarchy currently shown. Every applied operation
// replaces it and the view never writes to it again; callers must not
// mutate it.
func (v *ProofView) Hierarchy() *proof.Hierarchy {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Original returns the proof the view navigates.
func (v *ProofView) Original() *proof.Hierarchy {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.orig
}

// Frame returns the last frame drawn.
func (v *ProofView) Frame() transition.Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frame
}

// Bounds returns the extent of the last layout.
func (v *ProofView) Bounds() layout.Bounds {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bounds
}

// Layout returns the layout options in use.
func (v *ProofView) Layout() layout.Options {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout
}

// Magic reports whether the magic view is active.
func (v *ProofView) Magic() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.magic
}

// Busy reports whether a frame is in flight.
func (v *ProofView) Busy() bool { return v.anim.Busy() }

// State is a consistent read of a proof view.
type State struct {
	Hierarchy *proof.Hierarchy
	Bounds    layout.Bounds
	Layout    layout.Options
	Magic     bool
	Frame     transition.Frame
}

// State returns everything the last draw produced under one lock.
func (v *ProofView) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return State{
		Hierarchy: v.cur,
		Bounds:    v.bounds,
		Layout:    v.layout,
		Magic:     v.magic,
		Frame:     v.frame,
	}
}
