package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/pico-bridge/internal/connection"
	"github.com/nerrad567/pico-bridge/internal/panel"
)

// brokerCheckTimeout bounds the broker check in the health endpoint.
const brokerCheckTimeout = 2 * time.Second

// Broker states reported by the health endpoint.
const (
	brokerConnected   = "connected"
	brokerNotDialed   = "not_dialed"
	brokerUnavailable = "unavailable"
	brokerAbsent      = "absent"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleOpenSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", s.handleCloseSession)
				r.Get("/page", s.handleRenderPage)
				r.Post("/widgets/{key}", s.handleChangeWidget)
				r.Get("/regions/{region}", s.handleGetRegion)
			})
		})

		// WebSocket (session ID validated in handler)
		r.Get("/ws", s.handleWebSocket)
	})

	// Dashboard UI (embedded via go:embed, or served from disk in dev mode)
	r.Handle("/*", panel.Handler(s.cfg.WebDir))

	return r
}

// handleHealth returns the server health status.
// The server stays healthy without a broker; the broker field reports it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"broker":  s.brokerState(r.Context()),
	})
}

// brokerState maps the connection manager's health to a short label.
func (s *Server) brokerState(ctx context.Context) string {
	if s.broker == nil {
		return brokerAbsent
	}

	ctx, cancel := context.WithTimeout(ctx, brokerCheckTimeout)
	defer cancel()

	err := s.broker.HealthCheck(ctx)
	switch {
	case err == nil:
		return brokerConnected
	case errors.Is(err, connection.ErrNotDialed):
		return brokerNotDialed
	default:
		return brokerUnavailable
	}
}
