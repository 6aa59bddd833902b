// Package server exposes proof and counterexample views over HTTP.
//
// Every uploaded trace or model becomes a session holding a live view. The
// browser front-end drives the view with one request per interaction and
// receives the resulting layout, including the transition frame it should
// animate. While a frame plays the view is busy and further interactions
// answer 409 Conflict with code BUSY; the front-end reports the end of an
// animation with POST .../end, and frames also finish on their own after
// their duration.
//
// # Routes
//
//	POST   /api/proofs                         upload a trace (body or ?path=)
//	GET    /api/proofs/{id}                    current layout
//	POST   /api/proofs/{id}/{op}/{node}        toggle, pull-up, push-up, pull-down, push-down
//	POST   /api/proofs/{id}/end                transition finished
//	POST   /api/proofs/{id}/highlight/{node}   push a highlight request
//	POST   /api/proofs/{id}/repair/{node}      push a repair request
//	POST   /api/models                         upload a model (body or ?path=)
//	POST   /api/models/{id}/hide               hide nodes
//	POST   /api/models/{id}/groups             group nodes
//	POST   /api/models/{id}/undo               undo the last task
//	GET    /metrics                            Prometheus metrics
//
// See the route table in [Server.Handler] for the complete list.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/prooftower/pkg/errors"
	"github.com/matzehuels/prooftower/pkg/observability"
	"github.com/matzehuels/prooftower/pkg/session"
	"github.com/matzehuels/prooftower/pkg/transition"
	"github.com/matzehuels/prooftower/pkg/viewer"
)

// DefaultMaxUpload bounds uploaded trace and model documents.
const DefaultMaxUpload = 32 << 20

// shutdownTimeout bounds graceful shutdown in ListenAndServe.
const shutdownTimeout = 5 * time.Second

// Notifier receives highlight and repair requests. *notify.Client
// implements it.
type Notifier interface {
	Highlight(session, axiom string)
	Repair(session, axiom string)
}

// Options configures a [Server].
type Options struct {
	// Store holds the sessions. Nil selects a fresh in-memory store.
	Store      session.Store
	SessionTTL time.Duration

	// View configures every proof view opened. A nil renderer selects
	// transition.Timed so that a client that never reports the end of a
	// frame cannot lock its view.
	View viewer.Options

	// Notifier receives highlight and repair requests. Nil answers those
	// routes with 501.
	Notifier Notifier

	// Root is the directory ?path= uploads resolve against. Empty disables
	// them.
	Root string

	// Metrics is mounted on /metrics when set.
	Metrics http.Handler

	MaxUpload int64
	Logger    *log.Logger
}

// Server is the HTTP front of the view engine.
type Server struct {
	opts   Options
	store  session.Store
	logger *log.Logger
	router *chi.Mux

	mu      sync.Mutex
	sources map[string]sourceFiles // session id → files it was opened from
}

// sourceFiles are the files behind a session opened with ?path=.
type sourceFiles struct {
	kind   session.Kind
	input  string
	mapper string
}

// New returns a server with its routes registered.
func New(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = session.NewMemoryStore()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}
	if opts.View.Renderer == nil {
		opts.View.Renderer = transition.Timed()
	}
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = DefaultMaxUpload
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.View.Logger == nil {
		opts.View.Logger = opts.Logger
	}
	s := &Server{
		opts:    opts,
		store:   opts.Store,
		logger:  opts.Logger,
		sources: make(map[string]sourceFiles),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics)
	}

	r.Route("/api/proofs", func(r chi.Router) {
		r.Post("/", s.createProof)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getProof)
			r.Delete("/", s.deleteView)
			r.Get("/export", s.exportProof)
			r.Post("/end", s.endProof)
			r.Post("/reset", s.resetProof)
			r.Put("/magic", s.setMagic)
			r.Put("/layout", s.setLayout)
			r.Put("/format/{node}", s.setFormat)
			r.Post("/focus/{node}", s.focusProof)
			r.Get("/constraints/{node}", s.constraints)
			r.Post("/highlight/{node}", s.notify(notifyHighlight))
			r.Post("/repair/{node}", s.notify(notifyRepair))
			r.Post("/{op}/{node}", s.rewrite)
		})
	})

	r.Route("/api/models", func(r chi.Router) {
		r.Post("/", s.createModel)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getModel)
			r.Delete("/", s.deleteView)
			r.Get("/export", s.exportModel)
			r.Post("/end", s.endModel)
			r.Post("/hide", s.hide)
			r.Post("/show", s.show)
			r.Post("/groups", s.group)
			r.Delete("/groups/{group}", s.ungroup)
			r.Post("/groups/{group}/toggle", s.toggleGroup)
			r.Post("/reveal/{node}", s.reveal)
			r.Post("/undo", s.undo)
			r.Post("/redo", s.redo)
			r.Put("/mapper", s.setMapper)
			r.Put("/visibility", s.setVisibility)
		})
	})
	return r
}

// instrument reports every request to the HTTP hooks and the debug log.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		observability.HTTP().OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(ctx); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnResponse(ctx, r.Method, route, status, d)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status,
			"duration", d, "request_id", middleware.GetReqID(ctx))
	})
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) session(r *http.Request, kind session.Kind) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID("view", id); err != nil {
		return nil, err
	}
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		if stderrors.Is(err, session.ErrNotFound) || stderrors.Is(err, session.ErrExpired) {
			return nil, errors.Wrap(errors.ErrCodeViewNotFound, err, "no view %q", id)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load view %q", id)
	}
	if sess.Kind != kind {
		return nil, errors.New(errors.ErrCodeViewNotFound, "view %q is not a %s view", id, kind)
	}
	return sess, nil
}

func (s *Server) deleteView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "delete view %q", id))
		return
	}
	s.mu.Lock()
	delete(s.sources, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// resolve maps a ?path= query to a file under Root.
func (s *Server) resolve(rel string) (string, error) {
	if s.opts.Root == "" {
		return "", errors.New(errors.ErrCodeUnsupported, "no input directory configured")
	}
	if err := errors.ValidatePath(rel); err != nil {
		return "", err
	}
	return filepath.Join(s.opts.Root, filepath.FromSlash(rel)), nil
}

func (s *Server) track(id string, src sourceFiles) {
	s.mu.Lock()
	s.sources[id] = src
	s.mu.Unlock()
}

// Reload reopens every session whose input or mapper is among paths. The
// reopened view keeps the session id; its interaction state starts over.
func (s *Server) Reload(ctx context.Context, paths []string) {
	changed := make(map[string]bool, len(paths))
	for _, p := range paths {
		changed[filepath.Clean(p)] = true
	}
	s.mu.Lock()
	due := make(map[string]sourceFiles)
	for id, src := range s.sources {
		if changed[src.input] || (src.mapper != "" && changed[src.mapper]) {
			due[id] = src
		}
	}
	s.mu.Unlock()

	for id, src := range due {
		if err := s.reopen(ctx, id, src); err != nil {
			if errors.Is(err, errors.ErrCodeViewNotFound) {
				s.mu.Lock()
				delete(s.sources, id)
				s.mu.Unlock()
				continue
			}
			s.logger.Warn("reload failed", "view", id, "path", src.input, "err", err)
			continue
		}
		s.logger.Info("reloaded", "view", id, "path", src.input)
	}
}

func (s *Server) reopen(ctx context.Context, id string, src sourceFiles) error {
	old, err := s.store.Get(ctx, id)
	if err != nil {
		return errors.Wrap(errors.ErrCodeViewNotFound, err, "no view %q", id)
	}
	var next *session.Session
	switch src.kind {
	case session.KindProof:
		opts := s.opts.View
		st := old.Proof.State()
		opts.Layout, opts.Magic = st.Layout, st.Magic
		v, err := openProofFile(ctx, src.input, opts)
		if err != nil {
			return err
		}
		next = session.NewProof(v, old.TTL)
	case session.KindModel:
		m, err := s.openModelFiles(ctx, src.input, src.mapper)
		if err != nil {
			return err
		}
		next = session.NewModel(m, old.TTL)
	}
	next.ID, next.CreatedAt, next.Source = old.ID, old.CreatedAt, old.Source
	return s.store.Set(ctx, next)
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: errorBody{Code: string(code), Message: errors.UserMessage(err)}})
}

// writeOutcome answers a view operation. Busy views answer 409 so the
// client can retry after its animation.
func (s *Server) writeOutcome(w http.ResponseWriter, r *http.Request, out viewer.Outcome, err error, body func(outcome string) any) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if out == viewer.Busy {
		s.writeError(w, r, errors.New(errors.ErrCodeBusy, "a transition is in flight"))
		return
	}
	writeJSON(w, http.StatusOK, body(out.String()))
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

// param returns a validated URL parameter.
func param(r *http.Request, name string) (string, error) {
	v := chi.URLParam(r, name)
	if err := errors.ValidateID(name, v); err != nil {
		return "", err
	}
	return v, nil
}
