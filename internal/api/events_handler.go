package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labframe/labframe/internal/notify"
	"github.com/labframe/labframe/internal/store"
)

// EventsHandler streams change notifications to clients over Server-Sent
// Events. Each connection is one session: subscribe to the hub, emit a
// connected frame, then relay queued notifications interleaved with
// heartbeats until the client goes away.
type EventsHandler struct {
	store     store.Store
	hub       *notify.Hub
	detectors *notify.DetectorRegistry
	heartbeat time.Duration
	logger    *slog.Logger
}

// NewEventsHandler creates the stream handler. heartbeat bounds how long an
// idle stream stays silent before a keep-alive comment frame is written.
func NewEventsHandler(s store.Store, hub *notify.Hub, detectors *notify.DetectorRegistry, heartbeat time.Duration, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		store:     s,
		hub:       hub,
		detectors: detectors,
		heartbeat: heartbeat,
		logger:    logger.With("component", "events"),
	}
}

// Stream handles GET /api/v1/events/database-changes
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	project, ok := resolveProject(w, r, h.store)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		sendError(w, r, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "Response writer does not support streaming", nil)
		return
	}

	// Opening a stream registers the project with the poll loop; no separate
	// registration call exists.
	h.detectors.Ensure(project)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Disable nginx buffering so frames reach the client immediately.
	w.Header().Set("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe(project)
	defer h.hub.Unsubscribe(sub)

	h.logger.Debug("stream opened", "project", project, "remote", r.RemoteAddr)
	defer h.logger.Debug("stream closed", "project", project, "remote", r.RemoteAddr)

	connected, err := json.Marshal(notify.Connected())
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", connected)
	flusher.Flush()

	idle := time.NewTimer(h.heartbeat)
	defer idle.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case msg, ok := <-sub.Events():
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()

		case <-idle.C:
			// Keep-alive comment frame; defeats intermediary idle timeouts
			// and lets a dead connection surface promptly.
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}

		// The idle window restarts after every frame, not per connection.
		if !idle.Stop() {
			select {
			case <-idle.C:
			default:
			}
		}
		idle.Reset(h.heartbeat)
	}
}
