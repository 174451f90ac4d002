// Package server exposes the question-answering service over HTTP.
package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP router.
func NewRouter(ask *AskHandler, health *HealthHandler, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", health.ServeHTTP)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ask", ask.ServeHTTP)
	})

	return r
}
