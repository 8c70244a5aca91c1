package http

import (
	"encoding/json"
	"net/http"

	"github.com/ostryzhko/flowpath/pkg/domain"
)

// nodeJSON flattens a typed node into the wire shape: the variant
// attributes plus the id.
func nodeJSON(n domain.Node) map[string]any {
	m := n.Attrs().Clone()
	m["id"] = n.NodeID()
	return m
}

// decodeNodeBody reads the node payload: a required "type" discriminator,
// an optional "id" and the per-type attributes.
func decodeNodeBody(r *http.Request) (domain.NodeType, int, map[string]any, error) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", 0, nil, &domain.NodeValidationError{NodeID: domain.AutoID, Reason: "Invalid request body."}
	}
	rawType, ok := body["type"].(string)
	if !ok {
		return "", 0, nil, &domain.NodeValidationError{NodeID: domain.AutoID, Reason: "Node payload must carry a type."}
	}
	id := domain.AutoID
	if rawID, ok := body["id"]; ok {
		n, ok := jsonInt(rawID)
		if !ok {
			return "", 0, nil, &domain.NodeValidationError{NodeID: domain.AutoID, Reason: "Node id must be an integer."}
		}
		id = n
	}
	return domain.NodeType(rawType), id, body, nil
}

func jsonInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case int:
		return n, true
	}
	return 0, false
}

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request) {
	_, eng, err := s.loadWorkflow(r.Context(), r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	nodes, err := eng.Nodes()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeJSON(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createNode(w http.ResponseWriter, r *http.Request) {
	wf, eng, err := s.loadWorkflow(r.Context(), r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	typ, id, attrs, err := decodeNodeBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	node, err := domain.NewNode(typ, id, attrs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	added, err := eng.AddNode(node)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.saveWorkflow(r.Context(), wf, eng); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, nodeJSON(added))
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	_, eng, err := s.loadWorkflow(r.Context(), r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, ok := urlParamInt(r, "nodeID")
	if !ok {
		s.writeError(w, r, domain.NotFoundNode(-1))
		return
	}
	node, err := eng.Node(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nodeJSON(node))
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	wf, eng, err := s.loadWorkflow(r.Context(), r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, ok := urlParamInt(r, "nodeID")
	if !ok {
		s.writeError(w, r, domain.NotFoundNode(-1))
		return
	}
	existing, err := eng.Node(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var attrs map[string]any
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		badRequest(w, "Invalid request body.")
		return
	}
	if declared, ok := attrs["type"].(string); ok && domain.NodeType(declared) != existing.Type() {
		s.writeError(w, r, &domain.NodeValidationError{NodeID: id, Reason: "node type cannot be changed"})
		return
	}
	node, err := domain.NewNode(existing.Type(), id, attrs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := eng.UpdateNode(node)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.saveWorkflow(r.Context(), wf, eng); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nodeJSON(updated))
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	wf, eng, err := s.loadWorkflow(r.Context(), r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, ok := urlParamInt(r, "nodeID")
	if !ok {
		s.writeError(w, r, domain.NotFoundNode(-1))
		return
	}
	if err := eng.RemoveNode(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.saveWorkflow(r.Context(), wf, eng); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
