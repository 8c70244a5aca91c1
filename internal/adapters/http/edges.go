package http

import (
	"encoding/json"
	"net/http"

	"github.com/ostryzhko/flowpath/pkg/domain"
)

type edgePayload struct {
	InNodeID  int     `json:"in_node_id"`
	OutNodeID int     `json:"out_node_id"`
	Condition *string `json:"condition,omitempty"`
}

func edgeJSON(e domain.Edge) edgePayload {
	from, to := e.Endpoints()
	out := edgePayload{InNodeID: from, OutNodeID: to}
	if ce, ok := e.(domain.ConditionEdge); ok {
		label := string(ce.Condition)
		out.Condition = &label
	}
	return out
}

func (p edgePayload) attrs() domain.Attrs {
	attrs := domain.Attrs{}
	if p.Condition != nil {
		attrs["condition"] = *p.Condition
	}
	return attrs
}

// edgeParams reads the {from}/{to} pair off the URL.
func edgeParams(r *http.Request) (int, int, bool) {
	from, okFrom := urlParamInt(r, "from")
	to, okTo := urlParamInt(r, "to")
	return from, to, okFrom && okTo
}

func (s *Server) listEdges(w http.ResponseWriter, r *http.Request) {
	_, eng, err := s.loadWorkflow(r.Context(), r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	edges := eng.Edges()
	out := make([]edgePayload, 0, len(edges))
	for _, e := range edges {
		out = append(out, edgeJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createEdge(w http.ResponseWriter, r *http.Request) {
	wf, eng, err := s.loadWorkflow(r.Context(), r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var payload edgePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		badRequest(w, "Invalid request body.")
		return
	}
	if _, err := eng.Edge(payload.InNodeID, payload.OutNodeID); err == nil {
		badRequest(w, "Already exists.")
		return
	}
	edge, err := eng.AddEdge(payload.InNodeID, payload.OutNodeID, payload.attrs())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.saveWorkflow(r.Context(), wf, eng); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, edgeJSON(edge))
}

func (s *Server) getEdge(w http.ResponseWriter, r *http.Request) {
	_, eng, err := s.loadWorkflow(r.Context(), r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	from, to, ok := edgeParams(r)
	if !ok {
		s.writeError(w, r, domain.NotFoundEdge(-1, -1))
		return
	}
	edge, err := eng.Edge(from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, edgeJSON(edge))
}

func (s *Server) updateEdge(w http.ResponseWriter, r *http.Request) {
	wf, eng, err := s.loadWorkflow(r.Context(), r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	from, to, ok := edgeParams(r)
	if !ok {
		s.writeError(w, r, domain.NotFoundEdge(-1, -1))
		return
	}
	var attrs domain.Attrs
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		badRequest(w, "Invalid request body.")
		return
	}
	if attrs == nil {
		attrs = domain.Attrs{}
	}
	edge, err := eng.UpdateEdge(from, to, attrs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.saveWorkflow(r.Context(), wf, eng); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, edgeJSON(edge))
}

func (s *Server) deleteEdge(w http.ResponseWriter, r *http.Request) {
	wf, eng, err := s.loadWorkflow(r.Context(), r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	from, to, ok := edgeParams(r)
	if !ok {
		s.writeError(w, r, domain.NotFoundEdge(-1, -1))
		return
	}
	if err := eng.RemoveEdge(from, to); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.saveWorkflow(r.Context(), wf, eng); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
