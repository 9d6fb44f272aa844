// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package delivery is the client for the headless CMS Delivery API. It
// fetches content types, content items (with their nested linked items) and
// taxonomy groups, decodes them while keeping upstream element order, and
// wraps fetched items in the typed representation registered per content type.
package delivery

import (
	"encoding/json"
	"fmt"
)

// ElementType is the declared type of a content item element.
type ElementType string

const (
	ElementText           ElementType = "text"
	ElementNumber         ElementType = "number"
	ElementDateTime       ElementType = "date_time"
	ElementRichText       ElementType = "rich_text"
	ElementAsset          ElementType = "asset"
	ElementModularContent ElementType = "modular_content"
	ElementTaxonomy       ElementType = "taxonomy"
	ElementURLSlug        ElementType = "url_slug"
	ElementMultipleChoice ElementType = "multiple_choice"
	ElementCustom         ElementType = "custom"
)

// System holds the identity metadata shared by items, types and taxonomies.
type System struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Codename     string `json:"codename"`
	Language     string `json:"language,omitempty"`
	Type         string `json:"type,omitempty"`
	Collection   string `json:"collection,omitempty"`
	LastModified string `json:"last_modified"`
}

// Item is a raw content item as returned by the Delivery API. Elements are
// kept in document order.
type Item struct {
	System   System
	Elements []*Element

	byCodename map[string]*Element
}

// Raw returns the item itself, so an unwrapped *Item satisfies TypedItem.
func (i *Item) Raw() *Item {
	return i
}

// Element returns the element with the given codename, or nil.
func (i *Item) Element(codename string) *Element {
	return i.byCodename[codename]
}

// Element is one typed value on a content item.
type Element struct {
	Codename      string
	Type          ElementType
	Name          string
	Value         json.RawMessage
	TaxonomyGroup string

	// Rich text only.
	Images         []Image
	Links          map[string]Link
	ModularContent []string

	// LinkedItems holds the items referenced by a modular_content element or
	// embedded in rich text, in reference order. Items beyond the requested
	// depth are absent.
	LinkedItems []*Item
}

// IsNull reports whether the element has no value.
func (e *Element) IsNull() bool {
	return len(e.Value) == 0 || string(e.Value) == "null"
}

// Text returns a string value, or "" if the value is not a JSON string.
func (e *Element) Text() string {
	var s string
	if err := json.Unmarshal(e.Value, &s); err != nil {
		return ""
	}
	return s
}

// Any decodes the value into generic JSON types.
func (e *Element) Any() (any, error) {
	if e.IsNull() {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(e.Value, &v); err != nil {
		return nil, fmt.Errorf("decode element %s: %w", e.Codename, err)
	}
	return v, nil
}

// Assets decodes an asset element value.
func (e *Element) Assets() ([]Asset, error) {
	var assets []Asset
	if err := e.decode(&assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// Terms decodes a taxonomy element value.
func (e *Element) Terms() ([]TaxonomyTerm, error) {
	var terms []TaxonomyTerm
	if err := e.decode(&terms); err != nil {
		return nil, err
	}
	return terms, nil
}

// Options decodes a multiple choice element value.
func (e *Element) Options() ([]Option, error) {
	var opts []Option
	if err := e.decode(&opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// ItemCodenames decodes a modular_content element value.
func (e *Element) ItemCodenames() ([]string, error) {
	var codenames []string
	if err := e.decode(&codenames); err != nil {
		return nil, err
	}
	return codenames, nil
}

func (e *Element) decode(v any) error {
	if e.IsNull() {
		return nil
	}
	if err := json.Unmarshal(e.Value, v); err != nil {
		return fmt.Errorf("decode element %s: %w", e.Codename, err)
	}
	return nil
}

// Asset is one entry of an asset element.
type Asset struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Type        string  `json:"type"`
	Size        int64   `json:"size"`
	URL         string  `json:"url"`
	Width       *int    `json:"width"`
	Height      *int    `json:"height"`
}

// Image is an image embedded in rich text.
type Image struct {
	ImageID     string  `json:"image_id"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	Width       *int    `json:"width"`
	Height      *int    `json:"height"`
}

// Link is a content item link embedded in rich text.
type Link struct {
	ID       string `json:"-"`
	Type     string `json:"type"`
	Codename string `json:"codename"`
	URLSlug  string `json:"url_slug"`
}

// Option is a selected multiple choice option.
type Option struct {
	Name     string `json:"name"`
	Codename string `json:"codename"`
}

// TaxonomyTerm is a term in a taxonomy group or a selected term on an item.
type TaxonomyTerm struct {
	Name     string         `json:"name"`
	Codename string         `json:"codename"`
	Terms    []TaxonomyTerm `json:"terms"`
}

// TaxonomyGroup is a named hierarchy of terms.
type TaxonomyGroup struct {
	System System         `json:"system"`
	Terms  []TaxonomyTerm `json:"terms"`
}

// ContentTypeElement describes one element of a content type.
type ContentTypeElement struct {
	Codename string
	Type     ElementType
	Name     string
}

// ContentType is a content type descriptor from the type catalog.
type ContentType struct {
	System   System
	Elements []ContentTypeElement
}

// TypedItem is the per-type representation of a fetched item, produced by
// the ItemFactory registered for its content type.
type TypedItem interface {
	Raw() *Item
}

// ItemFactory wraps a raw item of one content type.
type ItemFactory func(raw *Item) TypedItem

// ItemsResponse is the result of listing the items of one content type.
type ItemsResponse struct {
	Items       []TypedItem
	LinkedItems []TypedItem

	linkedByCodename map[string]TypedItem
}

// linkedItem returns the linked item with the given codename.
func (r *ItemsResponse) linkedItem(codename string) (TypedItem, bool) {
	it, ok := r.linkedByCodename[codename]
	return it, ok
}

// NewItemsResponse builds a response from already wrapped items. Linked
// items are indexed by codename.
func NewItemsResponse(items, linked []TypedItem) *ItemsResponse {
	resp := &ItemsResponse{
		Items:            items,
		LinkedItems:      linked,
		linkedByCodename: make(map[string]TypedItem, len(linked)),
	}
	for _, it := range linked {
		resp.linkedByCodename[it.Raw().System.Codename] = it
	}
	return resp
}
