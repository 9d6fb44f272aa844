// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"kontentsource/internal/asset"
	"kontentsource/internal/casing"
	"kontentsource/internal/delivery"
	"kontentsource/internal/metrics"
	"kontentsource/internal/node"
	"kontentsource/internal/slug"
)

// Item is a content item bound to its content type.
type Item struct {
	raw      *delivery.Item
	codename string
	typeName string
	factory  *Factory
}

// Raw returns the underlying delivery item.
func (it *Item) Raw() *delivery.Item {
	return it.raw
}

// Codename returns the content type codename of the item.
func (it *Item) Codename() string {
	return it.codename
}

// TypeName returns the collection type name of the item.
func (it *Item) TypeName() string {
	return it.typeName
}

type typeResolver func(it *Item, n *ResolvedNode, f Field) error

// typeResolvers is keyed by the camelCase element type.
var typeResolvers = map[string]typeResolver{
	"number":         (*Item).resolveNumber,
	"dateTime":       (*Item).resolveDateTime,
	"richText":       (*Item).resolveRichText,
	"modularContent": (*Item).resolveModularContent,
	"taxonomy":       (*Item).resolveTaxonomy,
	"asset":          (*Item).resolveAsset,
	"urlSlug":        (*Item).resolveURLSlug,
	"multipleChoice": (*Item).resolveMultipleChoice,
}

// CreateNode resolves the item into a node record. System fields come
// first, followed by one field per element in element order.
func (it *Item) CreateNode() (*ResolvedNode, error) {
	n := it.initNode()

	for _, el := range it.raw.Elements {
		f := Field{Name: casing.Camel(el.Codename), Element: el}

		if fn, ok := it.factory.override(it.codename, f.Name); ok {
			if err := fn(n, f); err != nil {
				return nil, fmt.Errorf("resolve field %s of %s: %w", f.Name, it.raw.System.Codename, err)
			}
			continue
		}

		resolve, ok := typeResolvers[casing.Camel(string(el.Type))]
		if !ok {
			resolve = (*Item).resolveDefault
		}
		if err := resolve(it, n, f); err != nil {
			return nil, fmt.Errorf("resolve field %s of %s: %w", f.Name, it.raw.System.Codename, err)
		}
	}

	return n, nil
}

// initNode writes the system fields. An item whose id equals its name is an
// inline rich text component and gets no slug.
func (it *Item) initNode() *ResolvedNode {
	sys := it.raw.System
	isComponent := sys.ID == sys.Name

	var defaultSlug any
	if !isComponent {
		defaultSlug = slug.Generate(sys.Name)
	}

	rec := node.New()
	rec.Set("id", sys.ID)
	rec.Set("name", sys.Name)
	rec.Set("codename", sys.Codename)
	rec.Set("languageCode", sys.Language)
	rec.Set("type", sys.Type)
	rec.Set("typeName", it.typeName)
	rec.Set("isComponent", isComponent)
	rec.Set("date", ParseTimestamp(sys.LastModified))
	rec.Set("slug", defaultSlug)

	return &ResolvedNode{Item: rec}
}

func (it *Item) anomaly(kind, msg string, args ...any) {
	it.factory.opts.Metrics.Anomaly(kind)
	it.factory.logger.Warn(msg, append([]any{"item", it.raw.System.Codename}, args...)...)
}

func (it *Item) resolveNumber(n *ResolvedNode, f Field) error {
	if f.Element.IsNull() {
		n.AddField(f.Name, nil)
		return nil
	}

	raw := strings.TrimSpace(string(f.Element.Value))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(f.Element.Value, &s); err != nil {
			return fmt.Errorf("decode number: %w", err)
		}
		raw = strings.TrimSpace(s)
	}

	if num, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(num, 0) {
		n.AddField(f.Name, num)
		return nil
	}

	it.anomaly(metrics.AnomalyInvalidNumber, "number element is not numeric",
		"field", f.Name, "value", string(f.Element.Value))
	n.AddField(f.Name, math.NaN())
	return nil
}

func (it *Item) resolveDateTime(n *ResolvedNode, f Field) error {
	if f.Element.IsNull() {
		n.AddField(f.Name, nil)
		return nil
	}

	ts := ParseTimestamp(f.Element.Text())
	if !ts.Valid {
		it.anomaly(metrics.AnomalyInvalidDate, "date_time element is not a valid timestamp",
			"field", f.Name, "value", string(f.Element.Value))
	}
	n.AddField(f.Name, ts)
	return nil
}

func (it *Item) resolveRichText(n *ResolvedNode, f Field) error {
	t := it.factory.opts.Transformer

	var resolvers delivery.RichTextResolvers
	if t.CanTransformComponents() {
		resolvers.Item = func(linked *delivery.Item) string {
			return t.ComponentPlaceholder(linked.System.ID, linked.System.Type)
		}
	}
	if t.CanTransformLinks() {
		resolvers.Link = func(link delivery.Link, text string) string {
			return t.LinkPlaceholder(link.ID, text)
		}
	}

	resolved, err := f.Element.ResolveHTML(resolvers)
	if err != nil {
		return err
	}
	html, err := t.Transform(resolved)
	if err != nil {
		return fmt.Errorf("transform rich text: %w", err)
	}

	field := RichTextField{FieldName: f.Name}
	for _, img := range f.Element.Images {
		a := asset.FromImage(img)
		field.Images = append(field.Images, a)
		field.AssetIDs = append(field.AssetIDs, a.ID)
	}

	field.FieldName = n.AddField(f.Name, html)
	n.RichTextFields = append(n.RichTextFields, field)
	return nil
}

func (it *Item) resolveModularContent(n *ResolvedNode, f Field) error {
	field := LinkedItemField{}
	ids := make([]string, 0, len(f.Element.LinkedItems))

	for _, linked := range f.Element.LinkedItems {
		ids = append(ids, linked.System.ID)
		field.LinkedItems = append(field.LinkedItems, LinkedItem{
			ID:       linked.System.ID,
			Codename: linked.System.Codename,
			TypeName: it.factory.TypeName(linked.System.Type),
		})
	}

	if codenames, err := f.Element.ItemCodenames(); err == nil && len(codenames) > len(ids) {
		it.factory.opts.Metrics.Anomaly(metrics.AnomalyMissingLinkedItem)
		it.factory.logger.Debug("linked items missing from response",
			"item", it.raw.System.Codename, "field", f.Name,
			"referenced", len(codenames), "resolved", len(ids))
	}

	field.FieldName = n.AddField(f.Name, ids)
	n.LinkedItemFields = append(n.LinkedItemFields, field)
	return nil
}

func (it *Item) resolveTaxonomy(n *ResolvedNode, f Field) error {
	terms, err := f.Element.Terms()
	if err != nil {
		return err
	}

	codenames := make([]string, 0, len(terms))
	for _, t := range terms {
		codenames = append(codenames, t.Codename)
	}

	name := n.AddField(f.Name, codenames)
	n.TaxonomyFields = append(n.TaxonomyFields, TaxonomyField{
		FieldName:     name,
		TaxonomyGroup: f.Element.TaxonomyGroup,
	})
	return nil
}

func (it *Item) resolveAsset(n *ResolvedNode, f Field) error {
	raw, err := f.Element.Assets()
	if err != nil {
		return err
	}

	field := AssetField{Assets: make([]asset.Node, 0, len(raw))}
	ids := make([]string, 0, len(raw))
	for _, a := range raw {
		projected := asset.Project(a)
		field.Assets = append(field.Assets, projected)
		ids = append(ids, projected.ID)
	}

	field.FieldName = n.AddField(f.Name, ids)
	n.AssetFields = append(n.AssetFields, field)
	return nil
}

// resolveURLSlug replaces the name-derived slug. A URL slug element without
// a value keeps the default, and components never get a slug.
func (it *Item) resolveURLSlug(n *ResolvedNode, f Field) error {
	if n.IsComponent() {
		return nil
	}
	if s := f.Element.Text(); s != "" {
		n.Item.Set("slug", s)
	}
	return nil
}

func (it *Item) resolveMultipleChoice(n *ResolvedNode, f Field) error {
	opts, err := f.Element.Options()
	if err != nil {
		return err
	}

	codenames := make([]string, 0, len(opts))
	for _, o := range opts {
		codenames = append(codenames, o.Codename)
	}
	n.AddField(f.Name, codenames)
	return nil
}

func (it *Item) resolveDefault(n *ResolvedNode, f Field) error {
	v, err := f.Element.Any()
	if err != nil {
		return err
	}
	n.AddField(f.Name, v)
	return nil
}
