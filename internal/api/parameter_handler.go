package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/labframe/labframe/internal/store"
)

const (
	defaultHistoryLimit = 25
	maxHistoryLimit     = 200
)

// ParameterHandler serves parameter definition and history queries.
type ParameterHandler struct {
	store store.Store
}

// NewParameterHandler creates a parameter handler.
func NewParameterHandler(s store.Store) *ParameterHandler {
	return &ParameterHandler{store: s}
}

// ListDefinitions handles GET /api/v1/parameters/definitions
func (h *ParameterHandler) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	project, ok := resolveProject(w, r, h.store)
	if !ok {
		return
	}

	defs, err := h.store.ListParameterDefinitions(r.Context(), project)
	if handleDBError(w, r, err, "Parameter definitions") {
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"data":  defs,
		"total": len(defs),
	})
}

// History handles GET /api/v1/parameters/{name}/history
func (h *ParameterHandler) History(w http.ResponseWriter, r *http.Request) {
	project, ok := resolveProject(w, r, h.store)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > maxHistoryLimit {
			sendError(w, r, http.StatusBadRequest, "INVALID_LIMIT", "limit must be between 1 and 200", v)
			return
		}
		limit = parsed
	}

	values, err := h.store.ParameterHistory(r.Context(), project, name, limit)
	if handleDBError(w, r, err, "Parameter") {
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"data":  values,
		"total": len(values),
	})
}

// UniqueValues handles GET /api/v1/parameters/{name}/values
func (h *ParameterHandler) UniqueValues(w http.ResponseWriter, r *http.Request) {
	project, ok := resolveProject(w, r, h.store)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")

	values, err := h.store.ParameterUniqueValues(r.Context(), project, name)
	if handleDBError(w, r, err, "Parameter") {
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"data":  values,
		"total": len(values),
	})
}
