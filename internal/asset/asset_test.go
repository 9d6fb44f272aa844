// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package asset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kontentsource/internal/delivery"
	"kontentsource/internal/node"
	"kontentsource/internal/schema"
)

func ptr[T any](v T) *T { return &v }

func TestProject(t *testing.T) {
	a := delivery.Asset{
		Name:  "cup.png",
		Type:  "image/png",
		Size:  2048,
		URL:   "https://assets.example.com/p/cup.png",
		Width: ptr(640),
	}

	n := Project(a)
	assert.Equal(t, a.URL, n.ID)
	assert.Equal(t, "cup.png", n.Name)
	assert.Nil(t, n.Height)

	// Same URL from another item resolves to the same identity.
	other := a
	other.Description = ptr("a cup")
	assert.Equal(t, n.ID, Project(other).ID)
}

func TestFromImage(t *testing.T) {
	n := FromImage(delivery.Image{
		ImageID: "x",
		URL:     "https://assets.example.com/p/photo.jpg",
		Width:   ptr(10),
		Height:  ptr(20),
	})

	assert.Equal(t, "https://assets.example.com/p/photo.jpg", n.ID)
	assert.Equal(t, "photo.jpg", n.Name)
	assert.Equal(t, "image/jpeg", n.Type)
	assert.Equal(t, 20, *n.Height)
}

func TestNode_ToNode(t *testing.T) {
	rec := Project(delivery.Asset{Name: "a.gif", Type: "image/gif", Size: 1, URL: "https://a/a.gif"}).ToNode()

	assert.Equal(t, []string{"id", "url", "name", "description", "type", "size", "width", "height"}, rec.Keys())
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":"https://a/a.gif","url":"https://a/a.gif","name":"a.gif","description":null,"type":"image/gif","size":1,"width":null,"height":null}`,
		string(b))
}

func TestBuildURL(t *testing.T) {
	const base = "https://assets.example.com/p/cup.png"

	tests := []struct {
		name string
		mime string
		opts URLOptions
		want string
	}{
		{
			name: "no options",
			mime: "image/png",
			want: base,
		},
		{
			name: "size",
			mime: "image/png",
			opts: URLOptions{Width: ptr(100), Height: ptr(50)},
			want: base + "?w=100&h=50",
		},
		{
			name: "automatic format",
			mime: "IMAGE/JPEG",
			opts: URLOptions{AutomaticFormat: ptr(true)},
			want: base + "?auto=format&fm=jpg",
		},
		{
			name: "automatic format on unsupported mime",
			mime: "image/svg+xml",
			opts: URLOptions{AutomaticFormat: ptr(true)},
			want: base,
		},
		{
			name: "automatic format disabled",
			mime: "image/png",
			opts: URLOptions{AutomaticFormat: ptr(false)},
			want: base,
		},
		{
			name: "explicit format wins",
			mime: "image/png",
			opts: URLOptions{Width: ptr(100), AutomaticFormat: ptr(true), Format: ptr("webp")},
			want: base + "?w=100&auto=format&fm=webp",
		},
		{
			name: "format alias",
			mime: "image/png",
			opts: URLOptions{Format: ptr("PJPEG")},
			want: base + "?fm=pjpg",
		},
		{
			name: "unknown format ignored",
			mime: "image/png",
			opts: URLOptions{Format: ptr("bmp")},
			want: base,
		},
		{
			name: "compression quality dpr",
			mime: "image/png",
			opts: URLOptions{Lossless: ptr(false), Quality: ptr(80), DPR: ptr(2)},
			want: base + "?lossless=false&q=80&dpr=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildURL(base, tt.mime, tt.opts))
		})
	}
}

func TestBuildURL_ExistingQuery(t *testing.T) {
	assert.Equal(t, "https://a/x.png?v=2&w=10", BuildURL("https://a/x.png?v=2", "image/png", URLOptions{Width: ptr(10)}))
}

func TestSchema_URLResolver(t *testing.T) {
	typ, resolvers := Schema("Asset")
	assert.Equal(t, "Asset", typ.Name)
	assert.Equal(t, []string{"Node"}, typ.Interfaces)

	urlField, ok := resolvers["url"]
	require.True(t, ok)
	require.Len(t, urlField.Args, 7)

	args, err := schema.ParseArgs(urlField.Args, map[string]string{
		"width":           "100",
		"automaticFormat": "true",
		"format":          "webp",
	})
	require.NoError(t, err)

	rec := node.New()
	rec.Set("url", "https://a/x.png")
	rec.Set("type", "image/png")

	got, err := urlField.Resolve(rec, args)
	require.NoError(t, err)
	assert.Equal(t, "https://a/x.png?w=100&auto=format&fm=webp", got)
}
