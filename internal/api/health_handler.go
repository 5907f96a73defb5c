package api

import (
	"context"
	"net/http"
	"time"
)

// Pinger is the slice of the database pool the readiness probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db Pinger
}

// HealthResponse is the probe response body.
type HealthResponse struct {
	Status string `json:"status"`
}

// NewHealthHandler creates a health handler backed by the given pool.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health reports process liveness.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready reports readiness: the database must answer a ping.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			sendError(w, r, http.StatusServiceUnavailable, "NOT_READY", "Database unreachable", nil)
			return
		}
	}

	sendJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
