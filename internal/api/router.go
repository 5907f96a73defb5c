package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labframe/labframe/internal/auth"
	"github.com/labframe/labframe/internal/config"
	"github.com/labframe/labframe/internal/middleware"
	"github.com/labframe/labframe/internal/notify"
	"github.com/labframe/labframe/internal/store"
)

// NewRouter creates and configures the API router. Reads and the event
// stream are public; mutating routes require a Bearer JWT.
func NewRouter(
	cfg *config.Config,
	authService *auth.Service,
	logger *slog.Logger,
	pool *pgxpool.Pool,
	dataStore store.Store,
	hub *notify.Hub,
	detectors *notify.DetectorRegistry,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	if cfg.CORS.Enabled {
		r.Use(middleware.CORS(
			cfg.CORS.AllowedOrigins,
			cfg.CORS.AllowedMethods,
			cfg.CORS.AllowedHeaders,
			cfg.CORS.MaxAgeSeconds,
		))
	}

	healthHandler := NewHealthHandler(pool)
	authHandler := NewAuthHandler(authService)
	sampleHandler := NewSampleHandler(dataStore)
	parameterHandler := NewParameterHandler(dataStore)
	projectHandler := NewProjectHandler(dataStore)
	eventsHandler := NewEventsHandler(dataStore, hub, detectors, cfg.Notify.GetHeartbeatInterval(), logger)

	// Public routes (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", authHandler.Login)

		// Change-notification stream; EventSource clients cannot set an
		// Authorization header, so the stream stays public like health.
		r.Get("/events/database-changes", eventsHandler.Stream)

		// Public reads
		r.Get("/samples", sampleHandler.List)
		r.Get("/samples/{id}", sampleHandler.Get)
		r.Get("/samples/{id}/parameters", sampleHandler.ListParameters)
		r.Get("/parameters/definitions", parameterHandler.ListDefinitions)
		r.Get("/parameters/{name}/history", parameterHandler.History)
		r.Get("/parameters/{name}/values", parameterHandler.UniqueValues)
		r.Get("/projects", projectHandler.List)
		r.Get("/projects/active", projectHandler.GetActive)

		// Protected writes (require JWT)
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(authService))

			r.Post("/samples", sampleHandler.Create)
			r.Delete("/samples/{id}", sampleHandler.Delete)
			r.Post("/samples/{id}/parameters", sampleHandler.RecordParameters)

			r.Post("/projects", projectHandler.Create)
			r.Patch("/projects/{name}", projectHandler.Rename)
			r.Delete("/projects/{name}", projectHandler.Delete)
			r.Post("/projects/active", projectHandler.SetActive)
		})
	})

	return r
}
