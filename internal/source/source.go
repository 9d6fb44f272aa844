// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package source loads a project's content into a node store. A load
// fetches the content type catalog, registers a content item factory per
// type, inserts taxonomy terms, and then inserts the items of every type
// together with their linked items, assets and item links.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"kontentsource/internal/asset"
	"kontentsource/internal/content"
	"kontentsource/internal/delivery"
	"kontentsource/internal/metrics"
	"kontentsource/internal/node"
	"kontentsource/internal/schema"
	"kontentsource/internal/store"
	"kontentsource/internal/taxonomy"
)

var (
	// ErrMixedLinkedItemTypes is returned under PolicyReject when a linked
	// items field references items of more than one type.
	ErrMixedLinkedItemTypes = errors.New("source: linked items field references more than one type")
	// ErrNoTypeResolver is returned when a fetched item was not wrapped by a
	// content item factory.
	ErrNoTypeResolver = errors.New("source: no type resolver for content type")
)

// LinkedItemPolicy decides what happens when a linked items field or a
// reference field would point at more than one collection type.
type LinkedItemPolicy string

const (
	// PolicyFirst keeps the first type, logs a warning and counts an anomaly.
	PolicyFirst LinkedItemPolicy = "first"
	// PolicyReject fails the load.
	PolicyReject LinkedItemPolicy = "reject"
)

// Delivery is the part of the delivery client a load needs.
type Delivery interface {
	ListContentTypes(ctx context.Context) ([]delivery.ContentType, error)
	ListItems(ctx context.Context, typeCodename string, depth int) (*delivery.ItemsResponse, error)
	ListTaxonomyGroups(ctx context.Context) ([]delivery.TaxonomyGroup, error)
	RegisterTypeResolver(codename string, factory delivery.ItemFactory)
}

// Options configures a Source.
type Options struct {
	// Depth is the number of linked item levels fetched with each item.
	// Zero fetches items without their linked items.
	Depth            int
	LinkedItemPolicy LinkedItemPolicy

	Content  *content.Factory
	Taxonomy *taxonomy.Factory
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Source loads content into a store. A Source is not safe for concurrent
// loads.
type Source struct {
	client   Delivery
	opts     Options
	content  *content.Factory
	taxonomy *taxonomy.Factory
	logger   *slog.Logger
	tracer   trace.Tracer

	collections map[string]store.Collection
	inserted    int
}

// New creates a Source.
func New(client Delivery, opts Options) *Source {
	if opts.LinkedItemPolicy == "" {
		opts.LinkedItemPolicy = PolicyFirst
	}
	if opts.Content == nil {
		opts.Content = content.NewFactory(content.Options{Metrics: opts.Metrics, Logger: opts.Logger})
	}
	if opts.Taxonomy == nil {
		opts.Taxonomy = taxonomy.NewFactory("Taxonomy", nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Source{
		client:   client,
		opts:     opts,
		content:  opts.Content,
		taxonomy: opts.Taxonomy,
		logger:   logger.With("component", "source"),
		tracer:   otel.Tracer("kontentsource/source"),
	}
}

// Inserted returns the number of nodes inserted by the last Load.
func (s *Source) Inserted() int {
	return s.inserted
}

// Load runs the ingestion pipeline against st. Steps run strictly in
// order; a fetch failure aborts the load and leaves already inserted nodes
// in place.
func (s *Source) Load(ctx context.Context, st store.Store) error {
	ctx, span := s.tracer.Start(ctx, "source.Load")
	defer span.End()

	s.collections = make(map[string]store.Collection)
	s.inserted = 0

	s.logger.Info("loading content")

	types, err := s.client.ListContentTypes(ctx)
	if err != nil {
		return fmt.Errorf("fetch content types: %w", err)
	}

	s.registerTypeResolvers(types)

	// Taxonomy terms first: content items reference them from taxonomy fields.
	if err := s.addTaxonomyGroupNodes(ctx, st); err != nil {
		return err
	}

	for _, ct := range types {
		if err := s.addContentNodes(ctx, st, ct); err != nil {
			return err
		}
	}

	s.logger.Info("content loaded", "content_types", len(types), "nodes", s.inserted)
	return nil
}

// DeclareFields declares the computed fields of collections that already
// exist in st, for serving a store loaded by another process.
func (s *Source) DeclareFields(ctx context.Context, st store.Store) error {
	c, err := st.Collection(ctx, s.content.AssetTypeName())
	if err != nil {
		return fmt.Errorf("find asset collection: %w", err)
	}
	if c == nil {
		return nil
	}
	_, fields := assetSchema(s.content.AssetTypeName())
	for name, r := range fields {
		c.DeclareSchemaField(name, r)
	}
	return nil
}

func (s *Source) registerTypeResolvers(types []delivery.ContentType) {
	for _, ct := range types {
		s.logger.Debug("adding type resolver", "content_type", ct.System.Codename)
		s.client.RegisterTypeResolver(ct.System.Codename, s.content.ItemFactory(ct))
	}
}

// schemaFunc returns the object types to register with a new collection and
// the computed fields to declare on it.
type schemaFunc func() ([]schema.ObjectType, map[string]schema.FieldResolver)

// collection returns the collection for typeName, creating it and
// registering its schema on first use. Collections are memoized per load.
func (s *Source) collection(ctx context.Context, st store.Store, typeName string, schemaFn schemaFunc) (store.Collection, error) {
	if c, ok := s.collections[typeName]; ok {
		return c, nil
	}

	types, fields := schemaFn()

	c, err := st.Collection(ctx, typeName)
	if err != nil {
		return nil, fmt.Errorf("find collection %s: %w", typeName, err)
	}
	if c == nil {
		s.logger.Info("creating collection", "type_name", typeName)
		if len(types) > 0 {
			if err := st.AddSchemaTypes(ctx, types...); err != nil {
				return nil, fmt.Errorf("add schema for %s: %w", typeName, err)
			}
		}
		if c, err = st.AddCollection(ctx, typeName); err != nil {
			return nil, fmt.Errorf("create collection %s: %w", typeName, err)
		}
	}

	for name, r := range fields {
		c.DeclareSchemaField(name, r)
	}
	s.collections[typeName] = c
	return c, nil
}

// addReference declares a reference field. A field already pointing at
// another type is handled by the linked item policy.
func (s *Source) addReference(ctx context.Context, c store.Collection, field, typeName string) error {
	err := c.AddReference(ctx, field, typeName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrReferenceConflict) || s.opts.LinkedItemPolicy == PolicyReject {
		return fmt.Errorf("add reference %s.%s: %w", c.TypeName(), field, err)
	}
	s.opts.Metrics.Anomaly(metrics.AnomalyReferenceConflict)
	s.logger.Warn("reference field already targets another type, keeping the first",
		"collection", c.TypeName(), "field", field, "type_name", typeName, "error", err)
	return nil
}

// insertNew inserts n unless a node with the same id already exists, and
// returns the stored node.
func (s *Source) insertNew(ctx context.Context, c store.Collection, n *node.Node) (*node.Node, error) {
	existing, err := c.FindByID(ctx, n.ID())
	if err != nil {
		return nil, fmt.Errorf("find %s/%s: %w", c.TypeName(), n.ID(), err)
	}
	if existing != nil {
		s.opts.Metrics.NodeSkipped(c.TypeName())
		return existing, nil
	}

	inserted, err := c.Insert(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("insert %s/%s: %w", c.TypeName(), n.ID(), err)
	}
	s.inserted++
	s.opts.Metrics.NodeInserted(c.TypeName())
	return inserted, nil
}

func (s *Source) addContentNodes(ctx context.Context, st store.Store, ct delivery.ContentType) error {
	codename := ct.System.Codename

	ctx, span := s.tracer.Start(ctx, "source.addContentNodes",
		trace.WithAttributes(attribute.String("content_type", codename)))
	defer span.End()

	resp, err := s.client.ListItems(ctx, codename, s.opts.Depth)
	if err != nil {
		return fmt.Errorf("fetch items of type %s: %w", codename, err)
	}

	if len(resp.Items) == 0 {
		s.logger.Info("no content items found", "content_type", codename)
		return nil
	}

	// Linked items first so the items referencing them find them present.
	// This also inserts rich text components, which are only available as
	// linked items.
	if len(resp.LinkedItems) > 0 {
		s.logger.Info("adding linked items", "content_type", codename, "count", len(resp.LinkedItems))
		if err := s.addContentItemNodes(ctx, st, resp.LinkedItems); err != nil {
			return err
		}
	}

	s.logger.Info("adding content items", "content_type", codename, "count", len(resp.Items))
	return s.addContentItemNodes(ctx, st, resp.Items)
}

func (s *Source) addContentItemNodes(ctx context.Context, st store.Store, items []delivery.TypedItem) error {
	for _, typed := range items {
		it, ok := typed.(*content.Item)
		if !ok {
			raw := typed.Raw()
			return fmt.Errorf("%w: %s (item %s)", ErrNoTypeResolver, raw.System.Type, raw.System.Codename)
		}

		n, err := it.CreateNode()
		if err != nil {
			return fmt.Errorf("create node: %w", err)
		}

		c, err := s.collection(ctx, st, n.TypeName(), func() ([]schema.ObjectType, map[string]schema.FieldResolver) {
			return []schema.ObjectType{contentSchema(n.TypeName())}, nil
		})
		if err != nil {
			return err
		}

		if _, err := s.insertContentNode(ctx, st, c, it, n); err != nil {
			return err
		}
	}
	return nil
}

// insertContentNode inserts a resolved item and everything it references.
// An item already present is returned as stored; its references are not
// wired again.
func (s *Source) insertContentNode(ctx context.Context, st store.Store, c store.Collection, it *content.Item, n *content.ResolvedNode) (*node.Node, error) {
	existing, err := c.FindByID(ctx, n.ID())
	if err != nil {
		return nil, fmt.Errorf("find %s/%s: %w", c.TypeName(), n.ID(), err)
	}
	if existing != nil {
		s.logger.Debug("node already inserted", "type_name", c.TypeName(), "id", n.ID())
		s.opts.Metrics.NodeSkipped(c.TypeName())
		return existing, nil
	}

	if err := s.wireLinkedItems(ctx, c, n); err != nil {
		return nil, err
	}

	for _, f := range n.TaxonomyFields {
		if err := s.addReference(ctx, c, f.FieldName, s.taxonomy.TypeName(f.TaxonomyGroup)); err != nil {
			return nil, err
		}
	}

	if len(n.AssetFields) > 0 || len(n.RichTextFields) > 0 {
		if err := s.insertAssets(ctx, st, c, n); err != nil {
			return nil, err
		}
	}

	var path string
	if !n.IsComponent() {
		path = s.content.Path(it.Codename(), n)
		n.Item.Set(content.PathField, path)
	}

	inserted, err := s.insertNew(ctx, c, n.Item)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("inserted content node", "type_name", c.TypeName(), "id", n.ID())

	if n.IsComponent() {
		return inserted, nil
	}

	links, err := s.collection(ctx, st, s.content.ItemLinkTypeName(), func() ([]schema.ObjectType, map[string]schema.FieldResolver) {
		return []schema.ObjectType{itemLinkSchema(s.content.ItemLinkTypeName())}, nil
	})
	if err != nil {
		return nil, err
	}

	link := node.New()
	link.Set("id", n.ID())
	link.Set("typeName", n.TypeName())
	link.Set("path", path)
	if _, err := s.insertNew(ctx, links, link); err != nil {
		return nil, err
	}

	return inserted, nil
}

func (s *Source) wireLinkedItems(ctx context.Context, c store.Collection, n *content.ResolvedNode) error {
	for _, f := range n.LinkedItemFields {
		if len(f.LinkedItems) == 0 {
			continue
		}

		types := f.TypeNames()
		if len(types) > 1 {
			if s.opts.LinkedItemPolicy == PolicyReject {
				return fmt.Errorf("%w: %s.%s references %v", ErrMixedLinkedItemTypes, c.TypeName(), f.FieldName, types)
			}
			s.opts.Metrics.Anomaly(metrics.AnomalyMixedLinkedTypes)
			s.logger.Warn("linked items field references more than one type, using the first",
				"type_name", c.TypeName(), "id", n.ID(), "field", f.FieldName, "types", types)
		}

		if err := s.addReference(ctx, c, f.FieldName, types[0]); err != nil {
			return err
		}
	}
	return nil
}

// insertAssets wires asset fields to the shared asset collection and
// inserts every asset and embedded rich text image not yet present.
func (s *Source) insertAssets(ctx context.Context, st store.Store, c store.Collection, n *content.ResolvedNode) error {
	typeName := s.content.AssetTypeName()
	assets, err := s.collection(ctx, st, typeName, func() ([]schema.ObjectType, map[string]schema.FieldResolver) {
		return assetSchema(typeName)
	})
	if err != nil {
		return err
	}

	for _, f := range n.AssetFields {
		if err := s.addReference(ctx, c, f.FieldName, typeName); err != nil {
			return err
		}
		for _, a := range f.Assets {
			if _, err := s.insertNew(ctx, assets, a.ToNode()); err != nil {
				return err
			}
		}
	}

	for _, f := range n.RichTextFields {
		for _, img := range f.Images {
			if _, err := s.insertNew(ctx, assets, img.ToNode()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Source) addTaxonomyGroupNodes(ctx context.Context, st store.Store) error {
	ctx, span := s.tracer.Start(ctx, "source.addTaxonomyGroupNodes")
	defer span.End()

	groups, err := s.client.ListTaxonomyGroups(ctx)
	if err != nil {
		return fmt.Errorf("fetch taxonomy groups: %w", err)
	}

	for _, g := range groups {
		group := s.taxonomy.Build(g)
		typeName := s.taxonomy.TypeName(group.Codename)

		c, err := s.collection(ctx, st, typeName, func() ([]schema.ObjectType, map[string]schema.FieldResolver) {
			return []schema.ObjectType{s.taxonomy.Schema(group.Codename)}, nil
		})
		if err != nil {
			return err
		}

		if err := s.addReference(ctx, c, "terms", typeName); err != nil {
			return err
		}

		s.logger.Info("adding taxonomy terms", "group", group.Codename)
		err = group.Walk(func(t taxonomy.Term) error {
			_, err := s.insertNew(ctx, c, t.ToNode())
			return err
		})
		if err != nil {
			return fmt.Errorf("add taxonomy group %s: %w", group.Codename, err)
		}
	}
	return nil
}

func contentSchema(typeName string) schema.ObjectType {
	return schema.ObjectType{
		Name:       typeName,
		Interfaces: []string{"Node"},
		Fields: []schema.Field{
			{Name: "name", Type: schema.String},
			{Name: "codename", Type: schema.String},
			{Name: "languageCode", Type: schema.String},
			{Name: "type", Type: schema.String},
			{Name: "typeName", Type: schema.String},
			{Name: "isComponent", Type: schema.Boolean},
			{Name: "date", Type: schema.String},
			{Name: "slug", Type: schema.String},
			{Name: "path", Type: schema.String},
		},
	}
}

func itemLinkSchema(typeName string) schema.ObjectType {
	return schema.ObjectType{
		Name:       typeName,
		Interfaces: []string{"Node"},
		Fields: []schema.Field{
			{Name: "typeName", Type: schema.String},
			{Name: "path", Type: schema.String},
		},
	}
}

func assetSchema(typeName string) ([]schema.ObjectType, map[string]schema.FieldResolver) {
	t, fields := asset.Schema(typeName)
	return []schema.ObjectType{t}, fields
}
