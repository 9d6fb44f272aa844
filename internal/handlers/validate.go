// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for path parameters.
const (
	maxTypeNameLen = 200
	maxIDLen       = 2048 // asset ids are URLs
	maxFieldLen    = 200
	maxListLimit   = 1000
)

// validateTypeName checks a collection type name and returns the first
// error found.
func validateTypeName(typeName string) string {
	if typeName == "" {
		return "Type name is required."
	}
	if utf8.RuneCountInString(typeName) > maxTypeNameLen {
		return "Type name is too long (max 200 characters)."
	}
	if strings.ContainsAny(typeName, " /") {
		return "Type name must not contain spaces or slashes."
	}
	return ""
}

// validateID checks a node id.
func validateID(id string) string {
	if strings.TrimSpace(id) == "" {
		return "Node id is required."
	}
	if utf8.RuneCountInString(id) > maxIDLen {
		return "Node id is too long (max 2048 characters)."
	}
	return ""
}

// validateField checks a field name.
func validateField(field string) string {
	if field == "" {
		return "Field name is required."
	}
	if utf8.RuneCountInString(field) > maxFieldLen {
		return "Field name is too long (max 200 characters)."
	}
	return ""
}
