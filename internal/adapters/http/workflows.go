package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ostryzhko/flowpath"
	"github.com/ostryzhko/flowpath/pkg/domain"
	"github.com/ostryzhko/flowpath/pkg/ports"
)

type createWorkflowRequest struct {
	GraphData *domain.Snapshot `json:"graph_data"`
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workflows)
}

func (s *Server) createWorkflow(w http.ResponseWriter, r *http.Request) {
	var req createWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body.")
		return
	}
	snapshot := domain.EmptySnapshot()
	if req.GraphData != nil {
		snapshot = *req.GraphData
	}

	normalized, err := flowpath.ValidateSnapshot(snapshot)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	wf, err := s.store.Create(r.Context(), normalized)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wf)
}

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, _, err := s.loadWorkflow(r.Context(), r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func (s *Server) deleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "workflowID")
	if !ok {
		s.writeError(w, r, ports.NotFoundWorkflow(-1))
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getRoute(w http.ResponseWriter, r *http.Request) {
	_, eng, err := s.loadWorkflow(r.Context(), r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, ok := eng.StartNodeID(); !ok {
		badRequest(w, "No start node found")
		return
	}
	path, err := eng.Path()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, path)
}

func (s *Server) getRouteString(w http.ResponseWriter, r *http.Request) {
	_, eng, err := s.loadWorkflow(r.Context(), r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, ok := eng.StartNodeID(); !ok {
		badRequest(w, "No start node found")
		return
	}
	nodes, err := eng.PathNodes()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(RouteString(nodes)))
}

// RouteString renders a resolved path as a human-readable chain of node
// descriptions.
func RouteString(nodes []domain.Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, n.String())
	}
	return "The path to end:\n" + strings.Join(parts, " -> ")
}
