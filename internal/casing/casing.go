// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package casing converts upstream codenames (snake_case identifiers such as
// "blog_post" or "date_time") into the identifier styles used by the node
// graph: camelCase field names, PascalCase type names and kebab-case
// component tags.
package casing

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// Camel returns the camelCase form used for node field names.
// Example: "hero_image" → "heroImage"
func Camel(s string) string {
	return strcase.ToLowerCamel(strings.TrimSpace(s))
}

// Pascal returns the PascalCase form used for collection type names.
// Example: "blog_post" → "BlogPost"
func Pascal(s string) string {
	return strcase.ToCamel(strings.TrimSpace(s))
}

// Kebab returns the kebab-case form used for placeholder component tags.
// Example: "item_link" → "item-link"
func Kebab(s string) string {
	return strcase.ToKebab(strings.TrimSpace(s))
}
