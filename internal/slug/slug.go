// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from item names and
// codenames.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// lowerUpper matches a lowercase letter or digit followed by an uppercase letter.
	lowerUpper = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	// upperRun splits an acronym from a following capitalized word ("HTMLPage").
	upperRun = regexp.MustCompile(`([A-Z]+)([A-Z][a-z0-9])`)
	// nonAlphanumeric matches runs of anything that isn't a lowercase letter or digit.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
)

// Generate creates a URL-friendly slug from the given string. Diacritics are
// stripped, camelCase words are split, and every run of other characters
// collapses into a single hyphen.
// Example: "Hello, World! 2026" → "hello-world-2026", "blog_post" → "blog-post"
func Generate(s string) string {
	result := stripDiacritics(strings.TrimSpace(s))
	result = strings.ReplaceAll(result, "&", " and ")
	result = upperRun.ReplaceAllString(result, "$1-$2")
	result = lowerUpper.ReplaceAllString(result, "$1-$2")
	result = strings.ToLower(result)
	result = strings.NewReplacer("'", "", "’", "").Replace(result)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// stripDiacritics decomposes the string and drops combining marks, so
// "Café" becomes "Cafe".
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
