// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chain, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"kontentsource/internal/handlers"
	"kontentsource/internal/metrics"
	"kontentsource/internal/node"
	"kontentsource/internal/store"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()

	st := store.NewMemory()
	c, err := st.AddCollection(ctx, "Article")
	if err != nil {
		t.Fatalf("add collection: %v", err)
	}
	n := node.New()
	n.Set("id", "a1")
	if _, err := c.Insert(ctx, n); err != nil {
		t.Fatalf("insert: %v", err)
	}

	reg := prometheus.NewRegistry()
	metrics.New(reg).NodeInserted("Article")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(handlers.NewAPI(st, nil, "ItemLink", logger), reg, logger)
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestRoutes(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/health", http.StatusOK, `"ok"`},
		{"/metrics", http.StatusOK, "kontentsource_nodes_inserted_total"},
		{"/api/collections", http.StatusOK, `"typeName":"Article"`},
		{"/api/collections/Article/nodes", http.StatusOK, `"id":"a1"`},
		{"/api/collections/Article/nodes/a1", http.StatusOK, `"id":"a1"`},
		{"/api/collections/Article/nodes/a1/fields/id", http.StatusOK, `"value":"a1"`},
		{"/api/schema", http.StatusOK, "[]"},
		{"/api/item-links/a1", http.StatusNotFound, "error"},
		{"/api/load-runs", http.StatusNotFound, "error"},
		{"/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body %q does not contain %q", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/collections/", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rr.Code)
	}
}
