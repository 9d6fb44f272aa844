// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"strconv"

	"kontentsource/internal/asset"
	"kontentsource/internal/node"
)

// LinkedItem identifies an item referenced by a linked items element.
type LinkedItem struct {
	ID       string
	Codename string
	TypeName string
}

// LinkedItemField records a linked items field for reference wiring.
type LinkedItemField struct {
	FieldName   string
	LinkedItems []LinkedItem
}

// TypeNames returns the distinct type names of the linked items in first
// seen order.
func (f LinkedItemField) TypeNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, li := range f.LinkedItems {
		if seen[li.TypeName] {
			continue
		}
		seen[li.TypeName] = true
		names = append(names, li.TypeName)
	}
	return names
}

// TaxonomyField records a taxonomy field and the group its terms belong to.
type TaxonomyField struct {
	FieldName     string
	TaxonomyGroup string
}

// AssetField records an asset field with its projected assets.
type AssetField struct {
	FieldName string
	Assets    []asset.Node
}

// RichTextField records a rich text field with the images embedded in it.
// AssetIDs lists the image asset ids in the order the images appear.
type RichTextField struct {
	FieldName string
	AssetIDs  []string
	Images    []asset.Node
}

// ResolvedNode is the result of resolving one content item: the flat node
// record plus the metadata needed to wire references. Only Item is stored.
type ResolvedNode struct {
	Item *node.Node

	AssetFields      []AssetField
	LinkedItemFields []LinkedItemField
	TaxonomyFields   []TaxonomyField
	RichTextFields   []RichTextField
}

// PathField holds the node path. It is set after resolution, so elements
// never take it.
const PathField = "path"

// AddField sets a field under a name not yet used on the node, appending 1,
// 2, ... to name until it is free, and returns the name used.
func (n *ResolvedNode) AddField(name string, value any) string {
	field := name
	for i := 1; n.Item.Has(field) || field == PathField; i++ {
		field = name + strconv.Itoa(i)
	}
	n.Item.Set(field, value)
	return field
}

// ID returns the node id.
func (n *ResolvedNode) ID() string {
	return n.Item.ID()
}

// TypeName returns the collection type name of the node.
func (n *ResolvedNode) TypeName() string {
	return n.Item.String("typeName")
}

// IsComponent reports whether the node is an inline rich text component.
func (n *ResolvedNode) IsComponent() bool {
	return n.Item.Bool("isComponent")
}
