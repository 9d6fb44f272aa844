// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content resolves raw content items into node records. Each element
// becomes a field through a resolver chosen first by field name, then by
// element type, falling back to copying the raw value.
package content

import (
	"log/slog"
	"sync"

	"kontentsource/internal/casing"
	"kontentsource/internal/delivery"
	"kontentsource/internal/metrics"
	"kontentsource/internal/richtext"
	"kontentsource/internal/route"
)

// Field is the element being resolved and the field name it resolves to.
type Field struct {
	Name    string
	Element *delivery.Element
}

// FieldResolver writes a field onto a node. Custom resolvers registered on a
// Factory take precedence over the element type's resolver.
type FieldResolver func(n *ResolvedNode, f Field) error

// Options configures a Factory.
type Options struct {
	TypeNamePrefix   string
	AssetTypeName    string
	ItemLinkTypeName string
	// Routes maps content type codenames to route templates.
	Routes map[string]string

	Transformer *richtext.Transformer
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Factory creates content items for the content types of a project.
type Factory struct {
	opts   Options
	logger *slog.Logger

	mu        sync.RWMutex
	overrides map[string]map[string]FieldResolver
}

// NewFactory creates a Factory.
func NewFactory(opts Options) *Factory {
	if opts.AssetTypeName == "" {
		opts.AssetTypeName = "Asset"
	}
	if opts.ItemLinkTypeName == "" {
		opts.ItemLinkTypeName = "ItemLink"
	}
	if opts.Transformer == nil {
		opts.Transformer, _ = richtext.New(richtext.Options{})
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		opts:      opts,
		logger:    logger.With("component", "content"),
		overrides: make(map[string]map[string]FieldResolver),
	}
}

// TypeName returns the collection type name of a content type.
// Example: "blog_post" → prefix + "BlogPost"
func (f *Factory) TypeName(codename string) string {
	return f.opts.TypeNamePrefix + casing.Pascal(codename)
}

// AssetTypeName returns the type name of the shared asset collection.
func (f *Factory) AssetTypeName() string {
	return f.opts.AssetTypeName
}

// ItemLinkTypeName returns the type name of the item link collection.
func (f *Factory) ItemLinkTypeName() string {
	return f.opts.ItemLinkTypeName
}

// Route returns the route template of a content type.
func (f *Factory) Route(codename string) string {
	return route.Lookup(f.opts.Routes, codename)
}

// Path returns the route path of a resolved node of the given content type.
func (f *Factory) Path(codename string, n *ResolvedNode) string {
	return route.Path(f.Route(codename), n.Item.Get)
}

// RegisterFieldResolver overrides how one field of a content type is
// resolved. fieldName is the camelCase field name.
func (f *Factory) RegisterFieldResolver(typeCodename, fieldName string, fn FieldResolver) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.overrides[typeCodename] == nil {
		f.overrides[typeCodename] = make(map[string]FieldResolver)
	}
	f.overrides[typeCodename][fieldName] = fn
}

func (f *Factory) override(typeCodename, fieldName string) (FieldResolver, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	fn, ok := f.overrides[typeCodename][fieldName]
	return fn, ok
}

// NewItem wraps a raw item of the given content type.
func (f *Factory) NewItem(ct delivery.ContentType, raw *delivery.Item) *Item {
	return &Item{
		raw:      raw,
		codename: ct.System.Codename,
		typeName: f.TypeName(ct.System.Codename),
		factory:  f,
	}
}

// ItemFactory returns the delivery type resolver for a content type.
func (f *Factory) ItemFactory(ct delivery.ContentType) delivery.ItemFactory {
	return func(raw *delivery.Item) delivery.TypedItem {
		return f.NewItem(ct, raw)
	}
}
