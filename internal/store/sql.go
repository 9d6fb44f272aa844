// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"kontentsource/internal/database"
	"kontentsource/internal/node"
	"kontentsource/internal/schema"
)

// SQL is a Store persisted in a database migrated by package database.
// Nodes are stored as ordered JSON documents. Computed fields are code and
// live only in the process that declared them.
type SQL struct {
	db     *sql.DB
	driver string

	mu     sync.Mutex
	fields map[string]*fieldSet
}

// NewSQL creates a SQL store on a migrated database.
func NewSQL(db *sql.DB, driver string) *SQL {
	return &SQL{db: db, driver: driver, fields: make(map[string]*fieldSet)}
}

func (s *SQL) rebind(q string) string {
	return database.Rebind(s.driver, q)
}

func (s *SQL) collection(typeName string) *sqlCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	fs, ok := s.fields[typeName]
	if !ok {
		fs = newFieldSet()
		s.fields[typeName] = fs
	}
	return &sqlCollection{store: s, typeName: typeName, fields: fs}
}

// Collection returns the collection for typeName. Returns nil if not found.
func (s *SQL) Collection(ctx context.Context, typeName string) (Collection, error) {
	var name string
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT type_name FROM collections WHERE type_name = ?
	`), typeName).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find collection: %w", err)
	}
	return s.collection(name), nil
}

// AddCollection creates a collection.
func (s *SQL) AddCollection(ctx context.Context, typeName string) (Collection, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO collections (type_name, created_at)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`), typeName, time.Now().UTC().Format(timestampLayout))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCollectionExists, typeName)
	}
	return s.collection(typeName), nil
}

// Collections returns all type names sorted by name.
func (s *SQL) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type_name FROM collections ORDER BY type_name`)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AddSchemaTypes registers object types, replacing types with the same name.
func (s *SQL) AddSchemaTypes(ctx context.Context, types ...schema.ObjectType) error {
	for _, t := range types {
		def, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode schema type %s: %w", t.Name, err)
		}
		_, err = s.db.ExecContext(ctx, s.rebind(`
			INSERT INTO schema_types (name, definition)
			VALUES (?, ?)
			ON CONFLICT (name) DO UPDATE SET definition = excluded.definition
		`), t.Name, string(def))
		if err != nil {
			return fmt.Errorf("add schema type %s: %w", t.Name, err)
		}
	}
	return nil
}

// SchemaTypes returns the registered types sorted by name.
func (s *SQL) SchemaTypes(ctx context.Context) ([]schema.ObjectType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT definition FROM schema_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list schema types: %w", err)
	}
	defer rows.Close()

	var types []schema.ObjectType
	for rows.Next() {
		var def string
		if err := rows.Scan(&def); err != nil {
			return nil, fmt.Errorf("scan schema type: %w", err)
		}
		var t schema.ObjectType
		if err := json.Unmarshal([]byte(def), &t); err != nil {
			return nil, fmt.Errorf("decode schema type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

type sqlCollection struct {
	store    *SQL
	typeName string
	fields   *fieldSet
}

func (c *sqlCollection) TypeName() string {
	return c.typeName
}

func (c *sqlCollection) FindByID(ctx context.Context, id string) (*node.Node, error) {
	var data string
	err := c.store.db.QueryRowContext(ctx, c.store.rebind(`
		SELECT data FROM nodes WHERE type_name = ? AND id = ?
	`), c.typeName, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find node by id: %w", err)
	}

	n := node.New()
	if err := n.UnmarshalJSON([]byte(data)); err != nil {
		return nil, fmt.Errorf("decode node %s/%s: %w", c.typeName, id, err)
	}
	return n, nil
}

func (c *sqlCollection) Insert(ctx context.Context, n *node.Node) (*node.Node, error) {
	id := n.ID()
	if id == "" {
		return nil, ErrMissingID
	}

	data, err := n.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode node %s/%s: %w", c.typeName, id, err)
	}

	res, err := c.store.db.ExecContext(ctx, c.store.rebind(`
		INSERT INTO nodes (type_name, id, position, data)
		VALUES (?, ?, (SELECT COUNT(*) FROM nodes WHERE type_name = ?), ?)
		ON CONFLICT DO NOTHING
	`), c.typeName, id, c.typeName, string(data))
	if err != nil {
		return nil, fmt.Errorf("insert node: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrDuplicateID, c.typeName, id)
	}
	return n, nil
}

func (c *sqlCollection) AddReference(ctx context.Context, field, typeName string) error {
	var existing string
	err := c.store.db.QueryRowContext(ctx, c.store.rebind(`
		SELECT target_type FROM node_references WHERE type_name = ? AND field = ?
	`), c.typeName, field).Scan(&existing)
	switch {
	case err == nil:
		if existing != typeName {
			return fmt.Errorf("%w: %s.%s is %s, not %s", ErrReferenceConflict, c.typeName, field, existing, typeName)
		}
		return nil
	case err != sql.ErrNoRows:
		return fmt.Errorf("find reference: %w", err)
	}

	_, err = c.store.db.ExecContext(ctx, c.store.rebind(`
		INSERT INTO node_references (type_name, field, target_type)
		VALUES (?, ?, ?)
	`), c.typeName, field, typeName)
	if err != nil {
		return fmt.Errorf("add reference: %w", err)
	}
	return nil
}

func (c *sqlCollection) References(ctx context.Context) ([]Reference, error) {
	rows, err := c.store.db.QueryContext(ctx, c.store.rebind(`
		SELECT field, target_type FROM node_references
		WHERE type_name = ?
		ORDER BY field
	`), c.typeName)
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer rows.Close()

	var refs []Reference
	for rows.Next() {
		var r Reference
		if err := rows.Scan(&r.Field, &r.TypeName); err != nil {
			return nil, fmt.Errorf("scan reference: %w", err)
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

func (c *sqlCollection) DeclareSchemaField(name string, r schema.FieldResolver) {
	c.fields.declare(name, r)
}

func (c *sqlCollection) SchemaField(name string) (schema.FieldResolver, bool) {
	return c.fields.get(name)
}

func (c *sqlCollection) ResolveField(ctx context.Context, id, field string, args schema.Args) (any, error) {
	n, err := c.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	return c.fields.resolve(n, field, args)
}

func (c *sqlCollection) Count(ctx context.Context) (int, error) {
	var count int
	err := c.store.db.QueryRowContext(ctx, c.store.rebind(`
		SELECT COUNT(*) FROM nodes WHERE type_name = ?
	`), c.typeName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	return count, nil
}

func (c *sqlCollection) Nodes(ctx context.Context) ([]*node.Node, error) {
	rows, err := c.store.db.QueryContext(ctx, c.store.rebind(`
		SELECT data FROM nodes WHERE type_name = ? ORDER BY position
	`), c.typeName)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*node.Node
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		n := node.New()
		if err := n.UnmarshalJSON([]byte(data)); err != nil {
			return nil, fmt.Errorf("decode node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}
