// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package taxonomy builds term trees with hierarchical slugs from taxonomy
// groups.
package taxonomy

import (
	"kontentsource/internal/casing"
	"kontentsource/internal/delivery"
	"kontentsource/internal/node"
	"kontentsource/internal/route"
	"kontentsource/internal/schema"
	"kontentsource/internal/slug"
)

// Term is one node of a built taxonomy tree. Slug joins the slugs of all
// ancestors with "/".
type Term struct {
	ID    string
	Name  string
	Slug  string
	Path  string
	Terms []Term
}

// Group is a built taxonomy group.
type Group struct {
	Codename string
	Name     string
	Terms    []Term
}

// Build converts a taxonomy group into a term tree, keeping upstream order.
// Term paths are filled from routeTemplate; an empty template leaves them
// empty.
func Build(g delivery.TaxonomyGroup, routeTemplate string) Group {
	return Group{
		Codename: g.System.Codename,
		Name:     g.System.Name,
		Terms:    buildTerms(g.Terms, "", routeTemplate),
	}
}

func buildTerms(terms []delivery.TaxonomyTerm, parentSlug, routeTemplate string) []Term {
	if len(terms) == 0 {
		return nil
	}

	out := make([]Term, 0, len(terms))
	for _, t := range terms {
		s := slug.Generate(t.Codename)
		if parentSlug != "" {
			s = parentSlug + "/" + s
		}

		term := Term{
			ID:    t.Codename,
			Name:  t.Name,
			Slug:  s,
			Terms: buildTerms(t.Terms, s, routeTemplate),
		}
		if routeTemplate != "" {
			term.Path = route.Path(routeTemplate, term.field)
		}
		out = append(out, term)
	}
	return out
}

func (t Term) field(name string) (any, bool) {
	switch name {
	case "id":
		return t.ID, true
	case "name":
		return t.Name, true
	case "slug":
		return t.Slug, true
	}
	return nil, false
}

// Walk visits every term depth-first, parents before their children. It
// stops at the first error.
func (g Group) Walk(fn func(Term) error) error {
	return walk(g.Terms, fn)
}

func walk(terms []Term, fn func(Term) error) error {
	for _, t := range terms {
		if err := fn(t); err != nil {
			return err
		}
		if err := walk(t.Terms, fn); err != nil {
			return err
		}
	}
	return nil
}

// ChildIDs returns the ids of the direct children of a term.
func (t Term) ChildIDs() []string {
	ids := make([]string, 0, len(t.Terms))
	for _, c := range t.Terms {
		ids = append(ids, c.ID)
	}
	return ids
}

// ToNode returns the node record of a term. The terms field holds child
// term ids and is declared as a reference to the group's own collection.
func (t Term) ToNode() *node.Node {
	rec := node.New()
	rec.Set("id", t.ID)
	rec.Set("name", t.Name)
	rec.Set("slug", t.Slug)
	if t.Path != "" {
		rec.Set("path", t.Path)
	}
	rec.Set("terms", t.ChildIDs())
	return rec
}

// Factory names taxonomy collections and resolves their routes.
type Factory struct {
	prefix string
	routes map[string]string
}

// NewFactory creates a Factory. routes maps group codenames to route
// templates.
func NewFactory(prefix string, routes map[string]string) *Factory {
	return &Factory{prefix: prefix, routes: routes}
}

// TypeName returns the collection type name of a taxonomy group.
// Example: "product_category" with prefix "Taxonomy" → "TaxonomyProductCategory"
func (f *Factory) TypeName(codename string) string {
	return f.prefix + casing.Pascal(codename)
}

// Route returns the route template for a taxonomy group.
func (f *Factory) Route(codename string) string {
	return route.Lookup(f.routes, codename)
}

// Build builds a group using its configured route.
func (f *Factory) Build(g delivery.TaxonomyGroup) Group {
	return Build(g, f.Route(g.System.Codename))
}

// Schema returns the object type of a taxonomy group collection.
func (f *Factory) Schema(codename string) schema.ObjectType {
	return schema.ObjectType{
		Name:       f.TypeName(codename),
		Interfaces: []string{"Node"},
		Fields: []schema.Field{
			{Name: "name", Type: schema.String},
			{Name: "slug", Type: schema.String},
			{Name: "path", Type: schema.String},
		},
	}
}
