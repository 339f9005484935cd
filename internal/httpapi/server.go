// Package httpapi exposes the daemon's operational surface of spec.md §6:
// health and metrics endpoints served over chi.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kubemq-io/mq-bridge/internal/observability"
	"github.com/kubemq-io/mq-bridge/internal/supervisor"
)

// Server is the chi-routed HTTP surface of spec.md §6.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	logger     observability.Logger
}

// New builds a Server listening on addr, wiring /health, /health/{name},
// /metrics and /metrics/{name} against sup.
func New(addr string, sup *supervisor.Supervisor, logger observability.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(requestIDMiddleware())

	handlers := &handlers{sup: sup, logger: logger}
	router.Get("/health", handlers.health)
	router.Get("/health/{name}", handlers.healthByName)
	router.Handle("/metrics", promhttp.HandlerFor(sup.Gatherer(), promhttp.HandlerOpts{}))
	router.Get("/metrics/{name}", handlers.metricsByName)

	return &Server{
		logger: logger,
		router: router,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handler returns the server's routed http.Handler, for tests that want to
// drive it with httptest without binding a real listener.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks serving HTTP until the server is shut down. It
// returns nil on a clean Shutdown, where net/http's own ListenAndServe
// returns http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
