package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ostryzhko/flowpath/pkg/domain"
)

// errorBody mirrors the {"detail": ...} error shape of the API.
type errorBody struct {
	Detail string `json:"detail"`
}

// writeError maps core error kinds to HTTP responses: lookup misses to 404,
// validation failures to 400, no-op updates to 304, unresolvable paths to
// 404 and loops to 422. This mapping is transport policy; the core only
// produces the typed errors.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound *domain.NotFoundError
		nodeErr  *domain.NodeValidationError
		edgeErr  *domain.EdgeValidationError
		graphErr *domain.GraphValidationError
	)

	switch {
	case errors.Is(err, domain.ErrNotChanged):
		w.WriteHeader(http.StatusNotModified)
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorBody{Detail: err.Error()})
	case errors.Is(err, domain.ErrNoPath):
		writeJSON(w, http.StatusNotFound, errorBody{Detail: "No path found"})
	case errors.Is(err, domain.ErrLoop):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: err.Error()})
	case errors.As(err, &nodeErr), errors.As(err, &edgeErr), errors.As(err, &graphErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: err.Error()})
	default:
		s.logger.Error("internal error", "err", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Detail: detail})
}
