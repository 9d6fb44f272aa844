// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package route

import "testing"

func fields(m map[string]any) func(string) (any, bool) {
	return func(name string) (any, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	if got := Default("blog_post"); got != "/blog-post/:slug" {
		t.Errorf("Default(blog_post) = %q, want %q", got, "/blog-post/:slug")
	}
}

func TestLookup(t *testing.T) {
	routes := map[string]string{"article": "/articles/:slug", "empty": ""}

	if got := Lookup(routes, "article"); got != "/articles/:slug" {
		t.Errorf("configured route: got %q", got)
	}
	if got := Lookup(routes, "empty"); got != "/empty/:slug" {
		t.Errorf("empty template should fall back to default, got %q", got)
	}
	if got := Lookup(nil, "page"); got != "/page/:slug" {
		t.Errorf("nil routes should fall back to default, got %q", got)
	}
}

func TestPath(t *testing.T) {
	tests := []struct {
		name   string
		tmpl   string
		fields map[string]any
		want   string
	}{
		{
			name:   "slug placeholder",
			tmpl:   "/blog/:slug",
			fields: map[string]any{"slug": "hello-world"},
			want:   "/blog/hello-world",
		},
		{
			name:   "nested taxonomy slug kept whole",
			tmpl:   "/topics/:slug",
			fields: map[string]any{"slug": "coffee/arabica"},
			want:   "/topics/coffee/arabica",
		},
		{
			name:   "other fields slugified",
			tmpl:   "/:category/:slug",
			fields: map[string]any{"category": "Hot Drinks", "slug": "latte"},
			want:   "/hot-drinks/latte",
		},
		{
			name:   "missing field dropped",
			tmpl:   "/blog/:year/:slug",
			fields: map[string]any{"slug": "latte"},
			want:   "/blog/latte",
		},
		{
			name:   "nil slug",
			tmpl:   "/blog/:slug",
			fields: map[string]any{"slug": nil},
			want:   "/blog",
		},
		{
			name:   "numeric field",
			tmpl:   "/archive/:year",
			fields: map[string]any{"year": 2026},
			want:   "/archive/2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Path(tt.tmpl, fields(tt.fields)); got != tt.want {
				t.Errorf("Path(%q) = %q, want %q", tt.tmpl, got, tt.want)
			}
		})
	}
}
