package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/prooftower/pkg/errors"
	"github.com/matzehuels/prooftower/pkg/graph"
	pio "github.com/matzehuels/prooftower/pkg/io"
	"github.com/matzehuels/prooftower/pkg/layout"
	"github.com/matzehuels/prooftower/pkg/pipeline"
	"github.com/matzehuels/prooftower/pkg/proof"
	"github.com/matzehuels/prooftower/pkg/proof/magic"
	"github.com/matzehuels/prooftower/pkg/session"
	"github.com/matzehuels/prooftower/pkg/viewer"
)

// opToggle is the one proof operation that is not a magic rewrite.
const opToggle = "toggle"

type proofResponse struct {
	ID      string       `json:"id"`
	Outcome string       `json:"outcome,omitempty"`
	View    graph.Layout `json:"view"`
}

// proofBody exports v with the frame the client should animate.
func proofBody(id string, v *viewer.ProofView, outcome string) proofResponse {
	st := v.State()
	l := graph.ProofLayout(st.Hierarchy, st.Bounds, st.Layout, st.Magic)
	f := st.Frame
	l.Frame = &f
	return proofResponse{ID: id, Outcome: outcome, View: l}
}

func openProofFile(ctx context.Context, path string, opts viewer.Options) (*viewer.ProofView, error) {
	list, err := pio.ImportProof(path)
	if err != nil {
		return nil, err
	}
	return viewer.NewProofView(ctx, list, opts)
}

// proofOptions applies the ?magic= and ?mode= overrides of an upload.
func (s *Server) proofOptions(r *http.Request) (viewer.Options, error) {
	opts := s.opts.View
	q := r.URL.Query()
	if v := q.Get("magic"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "magic=%q", v)
		}
		opts.Magic = on
	}
	if v := q.Get("mode"); v != "" {
		mode, err := layout.ParseMode(v)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidLayout, err, "mode=%q", v)
		}
		opts.Layout.Mode = mode
	}
	return opts, nil
}

func (s *Server) createProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts, err := s.proofOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var v *viewer.ProofView
	var src string
	if rel := r.URL.Query().Get("path"); rel != "" {
		if src, err = s.resolve(rel); err == nil {
			v, err = openProofFile(ctx, src, opts)
		}
	} else {
		var list proof.EdgeList
		if list, err = pio.ReadProof(http.MaxBytesReader(w, r.Body, s.opts.MaxUpload)); err == nil {
			v, err = viewer.NewProofView(ctx, list, opts)
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := session.NewProof(v, s.opts.SessionTTL)
	sess.Source = src
	if err := s.store.Set(ctx, sess); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "store view"))
		return
	}
	if src != "" {
		s.track(sess.ID, sourceFiles{kind: session.KindProof, input: src})
	}
	s.logger.Info("proof opened", "view", sess.ID, "nodes", v.Original().Len(), "magic", opts.Magic)
	writeJSON(w, http.StatusCreated, proofBody(sess.ID, v, ""))
}

func (s *Server) getProof(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r, session.KindProof)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proofBody(sess.ID, sess.Proof, ""))
}

// proofOp runs fn against the proof view of the request and answers with
// the outcome and the new layout.
func (s *Server) proofOp(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, v *viewer.ProofView) (viewer.Outcome, error)) {
	sess, err := s.session(r, session.KindProof)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := fn(r.Context(), sess.Proof)
	s.writeOutcome(w, r, out, err, func(outcome string) any {
		return proofBody(sess.ID, sess.Proof, outcome)
	})
}

func (s *Server) rewrite(w http.ResponseWriter, r *http.Request) {
	node, err := param(r, "node")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := chi.URLParam(r, "op")
	if name == opToggle {
		s.proofOp(w, r, func(ctx context.Context, v *viewer.ProofView) (viewer.Outcome, error) {
			return v.Toggle(ctx, node)
		})
		return
	}
	op, err := magic.ParseOp(name)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeNotFound, err, "no operation %q", name))
		return
	}
	s.proofOp(w, r, func(ctx context.Context, v *viewer.ProofView) (viewer.Outcome, error) {
		return v.Rewrite(ctx, op, node)
	})
}

func (s *Server) endProof(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r, session.KindProof)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.Proof.TransitionEnd()
	writeJSON(w, http.StatusOK, proofBody(sess.ID, sess.Proof, ""))
}

func (s *Server) resetProof(w http.ResponseWriter, r *http.Request) {
	s.proofOp(w, r, func(ctx context.Context, v *viewer.ProofView) (viewer.Outcome, error) {
		return v.Reset(ctx)
	})
}

func (s *Server) focusProof(w http.ResponseWriter, r *http.Request) {
	node, err := param(r, "node")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.proofOp(w, r, func(ctx context.Context, v *viewer.ProofView) (viewer.Outcome, error) {
		return v.FocusSubProof(ctx, node)
	})
}

func (s *Server) setMagic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.proofOp(w, r, func(ctx context.Context, v *viewer.ProofView) (viewer.Outcome, error) {
		return v.SetMagic(ctx, req.Enabled)
	})
}

func (s *Server) setLayout(w http.ResponseWriter, r *http.Request) {
	var opts layout.Options
	if err := decodeJSON(r, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.proofOp(w, r, func(ctx context.Context, v *viewer.ProofView) (viewer.Outcome, error) {
		opts.Label = v.Layout().Label
		return v.SetLayout(ctx, opts)
	})
}

func (s *Server) setFormat(w http.ResponseWriter, r *http.Request) {
	node, err := param(r, "node")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Format string `json:"format"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := proof.ParseFormat(req.Format)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "format"))
		return
	}
	s.proofOp(w, r, func(ctx context.Context, v *viewer.ProofView) (viewer.Outcome, error) {
		return v.SetFormat(ctx, node, f)
	})
}

// recordWidget collects the records fed to it for a JSON answer.
type recordWidget struct {
	records []proof.Record
}

func (w *recordWidget) Update(records []proof.Record) error {
	w.records = records
	return nil
}

func (w *recordWidget) Selection() []proof.Record { return w.records }

func (w *recordWidget) Destroy() { w.records = nil }

func (s *Server) constraints(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r, session.KindProof)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	node, err := param(r, "node")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	widget := &recordWidget{}
	if err := sess.Proof.ShowConstraints(node, widget); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"node": node, "records": widget.Selection()})
}

type notifyKind int

const (
	notifyHighlight notifyKind = iota
	notifyRepair
)

// notify forwards the axiom of a node to the notifier and returns at once.
func (s *Server) notify(kind notifyKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Notifier == nil {
			s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no notify URL configured"))
			return
		}
		sess, err := s.session(r, session.KindProof)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		node, err := param(r, "node")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		n, ok := sess.Proof.Hierarchy().Node(node)
		if !ok {
			s.writeError(w, r, errors.New(errors.ErrCodeNodeNotFound, "no node %q in view", node))
			return
		}
		if n.Node.Type != proof.TypeAxiom {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "node %q is not an axiom", node))
			return
		}
		axiom := n.Node.Element
		if axiom == "" {
			axiom = n.Node.Labels.Default
		}
		if kind == notifyRepair {
			s.opts.Notifier.Repair(sess.ID, axiom)
		} else {
			s.opts.Notifier.Highlight(sess.ID, axiom)
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
	}
}

// exportProof renders the current view in ?format= (json, dot, svg) or
// writes the proof as loaded back as a trace (xml).
func (s *Server) exportProof(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r, session.KindProof)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := exportFormat(r)
	if format == formatXML {
		w.Header().Set("Content-Type", contentTypes[formatXML])
		if err := pio.WriteProof(w, sess.Proof.Original().Edges()); err != nil {
			s.logger.Error("export failed", "view", sess.ID, "err", err)
		}
		return
	}
	st := sess.Proof.State()
	l := graph.ProofLayout(st.Hierarchy, st.Bounds, st.Layout, st.Magic)
	s.export(w, r, l, pipeline.Options{Layout: st.Layout}, format)
}

const formatXML = "xml"

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	formatXML:           "application/xml",
}

func exportFormat(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return pipeline.FormatJSON
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, l graph.Layout, opts pipeline.Options, format string) {
	if !pipeline.ValidFormats[format] {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format))
		return
	}
	opts.Formats = []string{format}
	opts.Detailed = r.URL.Query().Get("detailed") == "true"
	artifacts, err := pipeline.Render(r.Context(), l, opts)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format))
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	_, _ = w.Write(artifacts[format])
}
