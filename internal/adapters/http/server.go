// Package http exposes the workflow engine over a REST API.
//
// Workflows are persisted through a ports.WorkflowStore; every request
// loads the stored graph into an engine, applies the operation and, for
// mutations, saves the resulting snapshot back. Validation therefore
// happens on every request and a workflow in the store is always
// structurally valid.
package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ostryzhko/flowpath"
	"github.com/ostryzhko/flowpath/pkg/ports"
)

// Server handles workflow API requests over a backing store.
type Server struct {
	store   ports.WorkflowStore
	logger  *slog.Logger
	metrics *apiMetrics
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewHandler builds the API router on top of the given store.
func NewHandler(store ports.WorkflowStore, opts ...Option) http.Handler {
	s := &Server{
		store:   store,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newAPIMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.middleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Route("/workflows", func(r chi.Router) {
		r.Get("/", s.listWorkflows)
		r.Post("/", s.createWorkflow)

		r.Route("/{workflowID}", func(r chi.Router) {
			r.Get("/", s.getWorkflow)
			r.Delete("/", s.deleteWorkflow)
			r.Get("/route", s.getRoute)
			r.Get("/route_string", s.getRouteString)

			r.Route("/nodes", func(r chi.Router) {
				r.Get("/", s.listNodes)
				r.Post("/", s.createNode)
				r.Get("/{nodeID}", s.getNode)
				r.Patch("/{nodeID}", s.updateNode)
				r.Delete("/{nodeID}", s.deleteNode)
			})

			r.Route("/edges", func(r chi.Router) {
				r.Get("/", s.listEdges)
				r.Post("/", s.createEdge)
				r.Get("/{from}/{to}", s.getEdge)
				r.Patch("/{from}/{to}", s.updateEdge)
				r.Delete("/{from}/{to}", s.deleteEdge)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loadWorkflow fetches a stored workflow and spins up an engine for it.
func (s *Server) loadWorkflow(ctx context.Context, r *http.Request) (*ports.Workflow, *flowpath.Engine, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "workflowID"))
	if err != nil {
		return nil, nil, ports.NotFoundWorkflow(-1)
	}
	wf, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	eng, err := flowpath.Load(wf.GraphData)
	if err != nil {
		return nil, nil, err
	}
	return wf, eng, nil
}

// saveWorkflow writes the engine's current graph back to the store.
func (s *Server) saveWorkflow(ctx context.Context, wf *ports.Workflow, eng *flowpath.Engine) error {
	wf.GraphData = eng.Snapshot()
	return s.store.Save(ctx, wf)
}

func urlParamInt(r *http.Request, key string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, key))
	return n, err == nil
}
