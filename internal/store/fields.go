// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"
	"sync"

	"kontentsource/internal/node"
	"kontentsource/internal/schema"
)

// fieldSet holds the computed fields declared on one collection.
type fieldSet struct {
	mu     sync.RWMutex
	fields map[string]schema.FieldResolver
}

func newFieldSet() *fieldSet {
	return &fieldSet{fields: make(map[string]schema.FieldResolver)}
}

func (s *fieldSet) declare(name string, r schema.FieldResolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields[name] = r
}

func (s *fieldSet) get(name string) (schema.FieldResolver, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.fields[name]
	return r, ok
}

// resolve computes a declared field, falling back to the stored value.
func (s *fieldSet) resolve(n *node.Node, field string, args schema.Args) (any, error) {
	if r, ok := s.get(field); ok && r.Resolve != nil {
		v, err := r.Resolve(n, args)
		if err != nil {
			return nil, fmt.Errorf("resolve field %s: %w", field, err)
		}
		return v, nil
	}
	if v, ok := n.Get(field); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
}
