// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers serves the loaded node graph as read-only JSON.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kontentsource/internal/node"
	"kontentsource/internal/schema"
	"kontentsource/internal/store"
)

const defaultRecentRuns = 20

// API groups the handlers of the node graph API.
type API struct {
	store            store.Store
	loadRuns         *store.LoadRunStore
	itemLinkTypeName string
	logger           *slog.Logger
}

// NewAPI creates a new API handler group. loadRuns may be nil when the
// store is not backed by a database.
func NewAPI(st store.Store, loadRuns *store.LoadRunStore, itemLinkTypeName string, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		store:            st,
		loadRuns:         loadRuns,
		itemLinkTypeName: itemLinkTypeName,
		logger:           logger.With("component", "api"),
	}
}

// collectionSummary describes one collection in the collections listing.
type collectionSummary struct {
	TypeName   string            `json:"typeName"`
	Count      int               `json:"count"`
	References []store.Reference `json:"references"`
	Fields     []string          `json:"fields,omitempty"`
}

// Collections lists every collection with its node count and references.
func (a *API) Collections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	names, err := a.store.Collections(ctx)
	if err != nil {
		a.serverError(w, "list collections failed", err)
		return
	}

	out := make([]collectionSummary, 0, len(names))
	for _, name := range names {
		c, err := a.store.Collection(ctx, name)
		if err != nil {
			a.serverError(w, "find collection failed", err)
			return
		}
		if c == nil {
			continue
		}
		count, err := c.Count(ctx)
		if err != nil {
			a.serverError(w, "count nodes failed", err)
			return
		}
		refs, err := c.References(ctx)
		if err != nil {
			a.serverError(w, "list references failed", err)
			return
		}
		out = append(out, collectionSummary{TypeName: name, Count: count, References: refs})
	}

	writeJSON(w, http.StatusOK, out)
}

// Schema lists the registered object types.
func (a *API) Schema(w http.ResponseWriter, r *http.Request) {
	types, err := a.store.SchemaTypes(r.Context())
	if err != nil {
		a.serverError(w, "list schema types failed", err)
		return
	}
	if types == nil {
		types = []schema.ObjectType{}
	}
	writeJSON(w, http.StatusOK, types)
}

// Nodes lists the nodes of a collection in insertion order. The optional
// offset and limit query parameters page through the list.
func (a *API) Nodes(w http.ResponseWriter, r *http.Request) {
	c, ok := a.collection(w, r)
	if !ok {
		return
	}

	offset, limit, msg := pageParams(r.URL.Query())
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	nodes, err := c.Nodes(r.Context())
	if err != nil {
		a.serverError(w, "list nodes failed", err)
		return
	}

	total := len(nodes)
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, nodes[offset:end])
}

// Node returns one node of a collection.
func (a *API) Node(w http.ResponseWriter, r *http.Request) {
	c, ok := a.collection(w, r)
	if !ok {
		return
	}
	n, ok := a.findNode(w, r, c)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Field resolves one field of a node. Query parameters are passed as
// arguments to computed fields, e.g. an asset url with ?width=100.
func (a *API) Field(w http.ResponseWriter, r *http.Request) {
	c, ok := a.collection(w, r)
	if !ok {
		return
	}
	n, ok := a.findNode(w, r, c)
	if !ok {
		return
	}

	field := chi.URLParam(r, "field")
	if msg := validateField(field); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var args schema.Args
	if declared, ok := c.SchemaField(field); ok {
		raw := make(map[string]string)
		for k, v := range r.URL.Query() {
			if len(v) > 0 {
				raw[k] = v[0]
			}
		}
		var err error
		if args, err = schema.ParseArgs(declared.Args, raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	v, err := c.ResolveField(r.Context(), n.ID(), field, args)
	if errors.Is(err, store.ErrUnknownField) {
		writeError(w, http.StatusNotFound, "Field not found.")
		return
	}
	if err != nil {
		a.serverError(w, "resolve field failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"field": field, "value": v})
}

// ItemLink returns the link target of a content item, used to resolve item
// link placeholders in rich text.
func (a *API) ItemLink(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if msg := validateID(id); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	c, err := a.store.Collection(r.Context(), a.itemLinkTypeName)
	if err != nil {
		a.serverError(w, "find item link collection failed", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Item link not found.")
		return
	}

	n, err := c.FindByID(r.Context(), id)
	if err != nil {
		a.serverError(w, "find item link failed", err)
		return
	}
	if n == nil {
		writeError(w, http.StatusNotFound, "Item link not found.")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// LoadRuns lists the most recent load runs.
func (a *API) LoadRuns(w http.ResponseWriter, r *http.Request) {
	if a.loadRuns == nil {
		writeError(w, http.StatusNotFound, "Load runs are only recorded by database stores.")
		return
	}

	limit := defaultRecentRuns
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 || v > maxListLimit {
			writeError(w, http.StatusBadRequest, "Invalid limit.")
			return
		}
		limit = v
	}

	runs, err := a.loadRuns.Recent(r.Context(), limit)
	if err != nil {
		a.serverError(w, "list load runs failed", err)
		return
	}
	if runs == nil {
		runs = []store.LoadRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// collection resolves the {typeName} parameter, writing an error response
// when it is invalid or unknown.
func (a *API) collection(w http.ResponseWriter, r *http.Request) (store.Collection, bool) {
	typeName := chi.URLParam(r, "typeName")
	if msg := validateTypeName(typeName); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return nil, false
	}

	c, err := a.store.Collection(r.Context(), typeName)
	if err != nil {
		a.serverError(w, "find collection failed", err)
		return nil, false
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Collection not found.")
		return nil, false
	}
	return c, true
}

func (a *API) findNode(w http.ResponseWriter, r *http.Request, c store.Collection) (*node.Node, bool) {
	id := pathParam(r, "id")
	if msg := validateID(id); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return nil, false
	}

	n, err := c.FindByID(r.Context(), id)
	if err != nil {
		a.serverError(w, "find node failed", err)
		return nil, false
	}
	if n == nil {
		writeError(w, http.StatusNotFound, "Node not found.")
		return nil, false
	}
	return n, true
}

func (a *API) serverError(w http.ResponseWriter, msg string, err error) {
	a.logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error.")
}

// pathParam returns an unescaped route parameter. Asset ids are URLs and
// arrive percent-encoded.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func pageParams(q url.Values) (offset, limit int, msg string) {
	if s := q.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return 0, 0, "Invalid offset."
		}
		offset = v
	}
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 || v > maxListLimit {
			return 0, 0, "Invalid limit."
		}
		limit = v
	}
	return offset, limit, ""
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
