// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store holds the node graph produced by ingestion: typed
// collections of nodes keyed by id, the reference fields linking
// collections, registered schema types and computed schema fields. Memory
// keeps the graph in process; SQL persists it through database/sql.
package store

import (
	"context"
	"errors"

	"kontentsource/internal/node"
	"kontentsource/internal/schema"
)

var (
	// ErrDuplicateID is returned by Insert when the collection already holds
	// a node with the same id.
	ErrDuplicateID = errors.New("store: node id already exists")
	// ErrReferenceConflict is returned by AddReference when the field is
	// already declared with a different target type. Reference fields are
	// single-typed.
	ErrReferenceConflict = errors.New("store: reference field already targets another type")
	// ErrCollectionExists is returned by AddCollection for a known type name.
	ErrCollectionExists = errors.New("store: collection already exists")
	// ErrUnknownField is returned by ResolveField for a field the node does
	// not have and no resolver declares.
	ErrUnknownField = errors.New("store: unknown field")
	// ErrMissingID is returned by Insert for a node without an id.
	ErrMissingID = errors.New("store: node has no id")
)

// Reference is a field whose values are ids of nodes in another collection.
type Reference struct {
	Field    string `json:"field"`
	TypeName string `json:"typeName"`
}

// Collection is a typed, id-keyed set of nodes.
type Collection interface {
	TypeName() string
	// FindByID returns the node with the given id, or nil if absent.
	FindByID(ctx context.Context, id string) (*node.Node, error)
	// Insert adds a node. It returns ErrDuplicateID if the id is taken.
	Insert(ctx context.Context, n *node.Node) (*node.Node, error)
	// AddReference declares field as a reference to typeName. Declaring the
	// same reference again is a no-op.
	AddReference(ctx context.Context, field, typeName string) error
	References(ctx context.Context) ([]Reference, error)
	// DeclareSchemaField registers a computed field.
	DeclareSchemaField(name string, r schema.FieldResolver)
	// SchemaField returns a computed field declared on the collection.
	SchemaField(name string) (schema.FieldResolver, bool)
	// ResolveField returns a field value of the node with the given id,
	// computing declared fields with args.
	ResolveField(ctx context.Context, id, field string, args schema.Args) (any, error)
	Count(ctx context.Context) (int, error)
	// Nodes returns all nodes in insertion order.
	Nodes(ctx context.Context) ([]*node.Node, error)
}

// Store is a set of collections plus registered schema types.
type Store interface {
	// Collection returns the collection for typeName, or nil if absent.
	Collection(ctx context.Context, typeName string) (Collection, error)
	AddCollection(ctx context.Context, typeName string) (Collection, error)
	// Collections returns all type names sorted by name.
	Collections(ctx context.Context) ([]string, error)
	AddSchemaTypes(ctx context.Context, types ...schema.ObjectType) error
	// SchemaTypes returns the registered types sorted by name.
	SchemaTypes(ctx context.Context) ([]schema.ObjectType, error)
}
