// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"kontentsource/internal/node"
	"kontentsource/internal/schema"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	types       map[string]schema.ObjectType
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]*memoryCollection),
		types:       make(map[string]schema.ObjectType),
	}
}

// Collection returns the collection for typeName, or nil if absent.
func (m *Memory) Collection(_ context.Context, typeName string) (Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[typeName]
	if !ok {
		return nil, nil
	}
	return c, nil
}

// AddCollection creates a collection.
func (m *Memory) AddCollection(_ context.Context, typeName string) (Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[typeName]; ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionExists, typeName)
	}
	c := &memoryCollection{
		typeName: typeName,
		nodes:    make(map[string]*node.Node),
		refs:     make(map[string]string),
		fields:   newFieldSet(),
	}
	m.collections[typeName] = c
	return c, nil
}

// Collections returns all type names sorted by name.
func (m *Memory) Collections(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// AddSchemaTypes registers object types, replacing types with the same name.
func (m *Memory) AddSchemaTypes(_ context.Context, types ...schema.ObjectType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range types {
		m.types[t.Name] = t
	}
	return nil
}

// SchemaTypes returns the registered types sorted by name.
func (m *Memory) SchemaTypes(_ context.Context) ([]schema.ObjectType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schema.ObjectType, 0, len(m.types))
	for _, t := range m.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memoryCollection struct {
	typeName string
	fields   *fieldSet

	mu       sync.RWMutex
	nodes    map[string]*node.Node
	order    []string
	refs     map[string]string
	refOrder []string
}

func (c *memoryCollection) TypeName() string {
	return c.typeName
}

func (c *memoryCollection) FindByID(_ context.Context, id string) (*node.Node, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nodes[id], nil
}

func (c *memoryCollection) Insert(_ context.Context, n *node.Node) (*node.Node, error) {
	id := n.ID()
	if id == "" {
		return nil, ErrMissingID
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.nodes[id]; ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrDuplicateID, c.typeName, id)
	}
	c.nodes[id] = n
	c.order = append(c.order, id)
	return n, nil
}

func (c *memoryCollection) AddReference(_ context.Context, field, typeName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.refs[field]; ok {
		if existing != typeName {
			return fmt.Errorf("%w: %s.%s is %s, not %s", ErrReferenceConflict, c.typeName, field, existing, typeName)
		}
		return nil
	}
	c.refs[field] = typeName
	c.refOrder = append(c.refOrder, field)
	return nil
}

func (c *memoryCollection) References(_ context.Context) ([]Reference, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	refs := make([]Reference, 0, len(c.refOrder))
	for _, f := range c.refOrder {
		refs = append(refs, Reference{Field: f, TypeName: c.refs[f]})
	}
	return refs, nil
}

func (c *memoryCollection) DeclareSchemaField(name string, r schema.FieldResolver) {
	c.fields.declare(name, r)
}

func (c *memoryCollection) SchemaField(name string) (schema.FieldResolver, bool) {
	return c.fields.get(name)
}

func (c *memoryCollection) ResolveField(ctx context.Context, id, field string, args schema.Args) (any, error) {
	n, err := c.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	return c.fields.resolve(n, field, args)
}

func (c *memoryCollection) Count(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order), nil
}

func (c *memoryCollection) Nodes(_ context.Context) ([]*node.Node, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*node.Node, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.nodes[id])
	}
	return out, nil
}
