// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package route turns route templates such as "/blog/:slug" into node paths.
// A template is a slash separated list of segments; a segment starting with
// ":" is a placeholder filled from the node field of the same name.
package route

import (
	"fmt"
	"strings"

	"kontentsource/internal/slug"
)

// Default returns the route used when no template is configured for a
// codename: the slugified codename followed by the node slug.
// Example: "blog_post" → "/blog-post/:slug"
func Default(codename string) string {
	return "/" + slug.Generate(codename) + "/:slug"
}

// Lookup resolves the template for a codename, falling back to Default.
func Lookup(routes map[string]string, codename string) string {
	if tmpl, ok := routes[codename]; ok && tmpl != "" {
		return tmpl
	}
	return Default(codename)
}

// Path fills a template with field values. The "slug" and "id" placeholders
// are inserted as-is (slugs may already contain "/" for nested terms); any
// other value is slugified. Placeholders whose field is missing or nil are
// dropped along with their segment.
func Path(tmpl string, field func(name string) (any, bool)) string {
	segments := strings.Split(strings.Trim(tmpl, "/"), "/")
	parts := make([]string, 0, len(segments))

	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if !strings.HasPrefix(seg, ":") {
			parts = append(parts, seg)
			continue
		}

		name := strings.TrimPrefix(seg, ":")
		v, ok := field(name)
		if !ok || v == nil {
			continue
		}

		s := stringify(v)
		if name != "slug" && name != "id" {
			s = slug.Generate(s)
		}
		if s == "" {
			continue
		}
		parts = append(parts, s)
	}

	return "/" + strings.Join(parts, "/")
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
