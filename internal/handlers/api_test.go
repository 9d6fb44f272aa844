// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kontentsource/internal/asset"
	"kontentsource/internal/database"
	"kontentsource/internal/node"
	"kontentsource/internal/store"
)

const cupURL = "https://assets.example.com/cup.png"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newNode(fields ...any) *node.Node {
	n := node.New()
	for i := 0; i+1 < len(fields); i += 2 {
		n.Set(fields[i].(string), fields[i+1])
	}
	return n
}

// seedStore builds a small graph: two articles referencing an asset, and
// their item links.
func seedStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()

	articles, err := st.AddCollection(ctx, "Article")
	require.NoError(t, err)
	require.NoError(t, articles.AddReference(ctx, "hero", "Asset"))
	for _, id := range []string{"a1", "a2", "a3"} {
		_, err := articles.Insert(ctx, newNode("id", id, "name", "Post "+id, "hero", []string{cupURL}))
		require.NoError(t, err)
	}

	assetType, resolvers := asset.Schema("Asset")
	require.NoError(t, st.AddSchemaTypes(ctx, assetType))
	assets, err := st.AddCollection(ctx, "Asset")
	require.NoError(t, err)
	for name, r := range resolvers {
		assets.DeclareSchemaField(name, r)
	}
	_, err = assets.Insert(ctx, newNode("id", cupURL, "url", cupURL, "type", "image/png"))
	require.NoError(t, err)

	links, err := st.AddCollection(ctx, "ItemLink")
	require.NoError(t, err)
	_, err = links.Insert(ctx, newNode("id", "a1", "typeName", "Article", "path", "/article/post-a1"))
	require.NoError(t, err)

	return st
}

func newTestRouter(api *API) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/collections", api.Collections)
	r.Get("/api/schema", api.Schema)
	r.Get("/api/collections/{typeName}/nodes", api.Nodes)
	r.Get("/api/collections/{typeName}/nodes/{id}", api.Node)
	r.Get("/api/collections/{typeName}/nodes/{id}/fields/{field}", api.Field)
	r.Get("/api/item-links/{id}", api.ItemLink)
	r.Get("/api/load-runs", api.LoadRuns)
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestAPI_Collections(t *testing.T) {
	h := newTestRouter(NewAPI(seedStore(t), nil, "ItemLink", testLogger()))

	rr := get(t, h, "/api/collections")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	got := decode[[]collectionSummary](t, rr)
	require.Len(t, got, 3)
	assert.Equal(t, "Article", got[0].TypeName)
	assert.Equal(t, 3, got[0].Count)
	assert.Equal(t, []store.Reference{{Field: "hero", TypeName: "Asset"}}, got[0].References)
	assert.Equal(t, "Asset", got[1].TypeName)
	assert.Equal(t, "ItemLink", got[2].TypeName)
}

// staleStore lists a collection that is gone by the time it is looked up.
type staleStore struct {
	store.Store
}

func (s staleStore) Collections(ctx context.Context) ([]string, error) {
	names, err := s.Store.Collections(ctx)
	return append(names, "Removed"), err
}

func TestAPI_CollectionsSkipsRemoved(t *testing.T) {
	h := newTestRouter(NewAPI(staleStore{seedStore(t)}, nil, "ItemLink", testLogger()))

	rr := get(t, h, "/api/collections")
	require.Equal(t, http.StatusOK, rr.Code)

	got := decode[[]collectionSummary](t, rr)
	require.Len(t, got, 3)
	assert.Equal(t, "ItemLink", got[2].TypeName)
}

func TestAPI_Schema(t *testing.T) {
	h := newTestRouter(NewAPI(seedStore(t), nil, "ItemLink", testLogger()))

	rr := get(t, h, "/api/schema")
	require.Equal(t, http.StatusOK, rr.Code)

	got := decode[[]map[string]any](t, rr)
	require.Len(t, got, 1)
	assert.Equal(t, "Asset", got[0]["name"])
}

func TestAPI_Nodes(t *testing.T) {
	h := newTestRouter(NewAPI(seedStore(t), nil, "ItemLink", testLogger()))

	t.Run("all", func(t *testing.T) {
		rr := get(t, h, "/api/collections/Article/nodes")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "3", rr.Header().Get("X-Total-Count"))

		got := decode[[]map[string]any](t, rr)
		require.Len(t, got, 3)
		assert.Equal(t, "a1", got[0]["id"])
	})

	t.Run("paged", func(t *testing.T) {
		rr := get(t, h, "/api/collections/Article/nodes?offset=1&limit=1")
		require.Equal(t, http.StatusOK, rr.Code)

		got := decode[[]map[string]any](t, rr)
		require.Len(t, got, 1)
		assert.Equal(t, "a2", got[0]["id"])
	})

	t.Run("offset past end", func(t *testing.T) {
		rr := get(t, h, "/api/collections/Article/nodes?offset=10")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})

	t.Run("invalid limit", func(t *testing.T) {
		rr := get(t, h, "/api/collections/Article/nodes?limit=-1")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown collection", func(t *testing.T) {
		rr := get(t, h, "/api/collections/Missing/nodes")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAPI_Node(t *testing.T) {
	h := newTestRouter(NewAPI(seedStore(t), nil, "ItemLink", testLogger()))

	rr := get(t, h, "/api/collections/Article/nodes/a2")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":"a2","name":"Post a2","hero":["`+cupURL+`"]}`, rr.Body.String())

	rr = get(t, h, "/api/collections/Asset/nodes/"+url.PathEscape(cupURL))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, cupURL, decode[map[string]any](t, rr)["id"])

	rr = get(t, h, "/api/collections/Article/nodes/zz")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_Field(t *testing.T) {
	h := newTestRouter(NewAPI(seedStore(t), nil, "ItemLink", testLogger()))
	base := "/api/collections/Asset/nodes/" + url.PathEscape(cupURL) + "/fields/"

	t.Run("computed with args", func(t *testing.T) {
		rr := get(t, h, base+"url?width=100&automaticFormat=true&format=webp")
		require.Equal(t, http.StatusOK, rr.Code)
		got := decode[map[string]any](t, rr)
		assert.Equal(t, cupURL+"?w=100&auto=format&fm=webp", got["value"])
	})

	t.Run("stored field", func(t *testing.T) {
		rr := get(t, h, base+"type")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "image/png", decode[map[string]any](t, rr)["value"])
	})

	t.Run("invalid argument", func(t *testing.T) {
		rr := get(t, h, base+"url?width=wide")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "width")
	})

	t.Run("unknown field", func(t *testing.T) {
		rr := get(t, h, base+"colour")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAPI_ItemLink(t *testing.T) {
	h := newTestRouter(NewAPI(seedStore(t), nil, "ItemLink", testLogger()))

	rr := get(t, h, "/api/item-links/a1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":"a1","typeName":"Article","path":"/article/post-a1"}`, rr.Body.String())

	rr = get(t, h, "/api/item-links/a2")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	empty := newTestRouter(NewAPI(store.NewMemory(), nil, "ItemLink", testLogger()))
	rr = get(t, empty, "/api/item-links/a1")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_LoadRuns(t *testing.T) {
	t.Run("without database", func(t *testing.T) {
		h := newTestRouter(NewAPI(store.NewMemory(), nil, "ItemLink", testLogger()))
		rr := get(t, h, "/api/load-runs")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("sqlite", func(t *testing.T) {
		ctx := context.Background()
		db, err := database.Connect(database.SQLite, filepath.Join(t.TempDir(), "api.db"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		require.NoError(t, database.Migrate(db, database.SQLite))

		runs := store.NewLoadRunStore(db, database.SQLite)
		id, err := runs.Start(ctx)
		require.NoError(t, err)
		runs.Finish(ctx, id, 12, nil)

		h := newTestRouter(NewAPI(store.NewSQL(db, database.SQLite), runs, "ItemLink", testLogger()))

		rr := get(t, h, "/api/load-runs")
		require.Equal(t, http.StatusOK, rr.Code)
		got := decode[[]store.LoadRun](t, rr)
		require.Len(t, got, 1)
		assert.Equal(t, id, got[0].ID)
		assert.Equal(t, store.RunSucceeded, got[0].Status)
		assert.Equal(t, 12, got[0].Nodes)

		rr = get(t, h, "/api/load-runs?limit=0")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
