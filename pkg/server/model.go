package server

import (
	"context"
	"net/http"

	"github.com/matzehuels/prooftower/pkg/counterexample"
	"github.com/matzehuels/prooftower/pkg/errors"
	"github.com/matzehuels/prooftower/pkg/graph"
	pio "github.com/matzehuels/prooftower/pkg/io"
	"github.com/matzehuels/prooftower/pkg/pipeline"
	"github.com/matzehuels/prooftower/pkg/session"
	"github.com/matzehuels/prooftower/pkg/viewer"
)

type modelResponse struct {
	ID      string       `json:"id"`
	Outcome string       `json:"outcome,omitempty"`
	View    graph.Layout `json:"view"`
	CanUndo bool         `json:"canUndo"`
	CanRedo bool         `json:"canRedo"`
}

func modelBody(id string, m *viewer.ModelView, outcome string) modelResponse {
	return modelResponse{
		ID:      id,
		Outcome: outcome,
		View:    pipeline.SnapshotLayout(m.Snapshot()),
		CanUndo: m.CanUndo(),
		CanRedo: m.CanRedo(),
	}
}

func (s *Server) modelOptions() viewer.ModelOptions {
	return viewer.ModelOptions{Logger: s.logger}
}

func (s *Server) openModelFiles(ctx context.Context, model, mapper string) (*viewer.ModelView, error) {
	d, err := pio.LoadCounterexample(ctx, model, mapper)
	if err != nil {
		return nil, err
	}
	return viewer.NewModelView(ctx, d, s.modelOptions())
}

// createModel opens a model from the request body, or from ?path= with an
// optional ?mapper= next to it.
func (s *Server) createModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var (
		m   *viewer.ModelView
		src sourceFiles
		err error
	)
	if rel := q.Get("path"); rel != "" {
		src.kind = session.KindModel
		if src.input, err = s.resolve(rel); err == nil {
			if rel := q.Get("mapper"); rel != "" {
				src.mapper, err = s.resolve(rel)
			}
		}
		if err == nil {
			m, err = s.openModelFiles(ctx, src.input, src.mapper)
		}
	} else {
		var d *counterexample.Data
		if d, err = pio.ReadModel(http.MaxBytesReader(w, r.Body, s.opts.MaxUpload)); err == nil {
			m, err = viewer.NewModelView(ctx, d, s.modelOptions())
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := session.NewModel(m, s.opts.SessionTTL)
	sess.Source = src.input
	if err := s.store.Set(ctx, sess); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "store view"))
		return
	}
	if src.input != "" {
		s.track(sess.ID, src)
	}
	s.logger.Info("model opened", "view", sess.ID, "nodes", len(m.Data().Nodes()))
	writeJSON(w, http.StatusCreated, modelBody(sess.ID, m, ""))
}

func (s *Server) getModel(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r, session.KindModel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, modelBody(sess.ID, sess.Model, ""))
}

func (s *Server) modelOp(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, m *viewer.ModelView) (viewer.Outcome, error)) {
	sess, err := s.session(r, session.KindModel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := fn(r.Context(), sess.Model)
	s.writeOutcome(w, r, out, err, func(outcome string) any {
		return modelBody(sess.ID, sess.Model, outcome)
	})
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

func (req idsRequest) validate() error {
	if len(req.IDs) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no node ids given")
	}
	for _, id := range req.IDs {
		if err := errors.ValidateID("node", id); err != nil {
			return err
		}
	}
	return nil
}

// visibility hides or shows the nodes named in the request body.
func (s *Server) visibility(w http.ResponseWriter, r *http.Request, visible bool) {
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.modelOp(w, r, func(ctx context.Context, m *viewer.ModelView) (viewer.Outcome, error) {
		if visible {
			return m.Show(ctx, req.IDs)
		}
		return m.Hide(ctx, req.IDs)
	})
}

func (s *Server) hide(w http.ResponseWriter, r *http.Request) { s.visibility(w, r, false) }

func (s *Server) show(w http.ResponseWriter, r *http.Request) { s.visibility(w, r, true) }

func (s *Server) group(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label   string   `json:"label"`
		Members []string `json:"members"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := (idsRequest{IDs: req.Members}).validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.modelOp(w, r, func(ctx context.Context, m *viewer.ModelView) (viewer.Outcome, error) {
		return m.Group(ctx, req.Label, req.Members)
	})
}

func (s *Server) ungroup(w http.ResponseWriter, r *http.Request) {
	id, err := param(r, "group")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.modelOp(w, r, func(ctx context.Context, m *viewer.ModelView) (viewer.Outcome, error) {
		return m.Ungroup(ctx, id)
	})
}

func (s *Server) toggleGroup(w http.ResponseWriter, r *http.Request) {
	id, err := param(r, "group")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.modelOp(w, r, func(ctx context.Context, m *viewer.ModelView) (viewer.Outcome, error) {
		return m.ToggleGroup(ctx, id)
	})
}

func (s *Server) reveal(w http.ResponseWriter, r *http.Request) {
	id, err := param(r, "node")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.modelOp(w, r, func(ctx context.Context, m *viewer.ModelView) (viewer.Outcome, error) {
		return m.ShowReachableHidden(ctx, id)
	})
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	s.modelOp(w, r, func(ctx context.Context, m *viewer.ModelView) (viewer.Outcome, error) {
		return m.Undo(ctx)
	})
}

func (s *Server) redo(w http.ResponseWriter, r *http.Request) {
	s.modelOp(w, r, func(ctx context.Context, m *viewer.ModelView) (viewer.Outcome, error) {
		return m.Redo(ctx)
	})
}

func (s *Server) endModel(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r, session.KindModel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.Model.TransitionEnd()
	writeJSON(w, http.StatusOK, modelBody(sess.ID, sess.Model, ""))
}

// setMapper accepts a mapper document in either of the forms ReadMapper
// reads.
func (s *Server) setMapper(w http.ResponseWriter, r *http.Request) {
	mapper, err := pio.ReadMapper(http.MaxBytesReader(w, r.Body, s.opts.MaxUpload))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.modelOp(w, r, func(ctx context.Context, m *viewer.ModelView) (viewer.Outcome, error) {
		return m.SetMapper(ctx, mapper)
	})
}

func (s *Server) setVisibility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ignore bool `json:"ignore"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.modelOp(w, r, func(ctx context.Context, m *viewer.ModelView) (viewer.Outcome, error) {
		return m.SetIgnoreVisibility(ctx, req.Ignore)
	})
}

func (s *Server) exportModel(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r, session.KindModel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l := pipeline.SnapshotLayout(sess.Model.Snapshot())
	s.export(w, r, l, pipeline.Options{Kind: graph.KindModel}, exportFormat(r))
}
