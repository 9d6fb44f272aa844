// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package schema describes the types registered alongside node collections:
// object types with scalar fields, and field resolvers that compute a value
// from a stored node and a set of nullable arguments.
package schema

import (
	"fmt"
	"strconv"

	"kontentsource/internal/node"
)

// Scalar type names understood by argument parsing.
const (
	Int     = "Int"
	Boolean = "Boolean"
	String  = "String"
)

// Field is a named, typed field on an object type.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ObjectType describes the shape of nodes in one collection.
type ObjectType struct {
	Name       string   `json:"name"`
	Interfaces []string `json:"interfaces,omitempty"`
	Fields     []Field  `json:"fields"`
}

// Arg declares one nullable resolver argument.
type Arg struct {
	Name string
	Type string
}

// Args holds the arguments supplied to a resolver. An absent key is unset.
type Args map[string]any

// ResolveFunc computes a field value for a node.
type ResolveFunc func(n *node.Node, args Args) (any, error)

// FieldResolver is a computed field declared on a collection.
type FieldResolver struct {
	Args    []Arg
	Resolve ResolveFunc
}

// Int returns an integer argument and whether it was supplied.
func (a Args) Int(name string) (int, bool) {
	switch v := a[name].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Bool returns a boolean argument and whether it was supplied.
func (a Args) Bool(name string) (bool, bool) {
	v, ok := a[name].(bool)
	return v, ok
}

// String returns a string argument and whether it was supplied.
func (a Args) String(name string) (string, bool) {
	v, ok := a[name].(string)
	return v, ok
}

// ParseArgs converts raw string arguments (e.g. query parameters) into typed
// Args according to the declared argument list. Undeclared names are ignored;
// empty values are treated as unset.
func ParseArgs(declared []Arg, raw map[string]string) (Args, error) {
	args := make(Args, len(declared))
	for _, d := range declared {
		s, ok := raw[d.Name]
		if !ok || s == "" {
			continue
		}
		switch d.Type {
		case Int:
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("argument %s: %q is not an Int", d.Name, s)
			}
			args[d.Name] = v
		case Boolean:
			v, err := strconv.ParseBool(s)
			if err != nil {
				return nil, fmt.Errorf("argument %s: %q is not a Boolean", d.Name, s)
			}
			args[d.Name] = v
		default:
			args[d.Name] = s
		}
	}
	return args, nil
}
