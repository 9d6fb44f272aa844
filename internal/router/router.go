// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chain of the node
// graph API.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kontentsource/internal/handlers"
	"kontentsource/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and routes wired up. gatherer serves /metrics.
func New(api *handlers.API, gatherer prometheus.Gatherer, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Logger(logger))

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/schema", api.Schema)
		r.Get("/load-runs", api.LoadRuns)
		r.Get("/item-links/{id}", api.ItemLink)

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", api.Collections)
			r.Get("/{typeName}/nodes", api.Nodes)
			r.Get("/{typeName}/nodes/{id}", api.Node)
			r.Get("/{typeName}/nodes/{id}/fields/{field}", api.Field)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
