// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package delivery

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// rawElement mirrors the JSON shape of an element apart from the ordered
// images map, which is read separately.
type rawElement struct {
	Type           ElementType     `json:"type"`
	Name           string          `json:"name"`
	Value          json.RawMessage `json:"value"`
	TaxonomyGroup  string          `json:"taxonomy_group"`
	Links          map[string]Link `json:"links"`
	ModularContent []string        `json:"modular_content"`
}

// UnmarshalJSON decodes an item keeping the document order of its elements.
func (i *Item) UnmarshalJSON(data []byte) error {
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return errors.New("item: expected JSON object")
	}

	if err := json.Unmarshal([]byte(doc.Get("system").Raw), &i.System); err != nil {
		return fmt.Errorf("decode item system: %w", err)
	}

	i.Elements = nil
	i.byCodename = make(map[string]*Element)

	var decodeErr error
	doc.Get("elements").ForEach(func(key, value gjson.Result) bool {
		el, err := decodeElement(key.String(), value)
		if err != nil {
			decodeErr = fmt.Errorf("item %s: %w", i.System.Codename, err)
			return false
		}
		i.Elements = append(i.Elements, el)
		i.byCodename[el.Codename] = el
		return true
	})
	return decodeErr
}

func decodeElement(codename string, value gjson.Result) (*Element, error) {
	var raw rawElement
	if err := json.Unmarshal([]byte(value.Raw), &raw); err != nil {
		return nil, fmt.Errorf("decode element %s: %w", codename, err)
	}

	el := &Element{
		Codename:       codename,
		Type:           raw.Type,
		Name:           raw.Name,
		Value:          raw.Value,
		TaxonomyGroup:  raw.TaxonomyGroup,
		Links:          raw.Links,
		ModularContent: raw.ModularContent,
	}

	for id, l := range el.Links {
		l.ID = id
		el.Links[id] = l
	}

	var imgErr error
	value.Get("images").ForEach(func(_, img gjson.Result) bool {
		var im Image
		if err := json.Unmarshal([]byte(img.Raw), &im); err != nil {
			imgErr = fmt.Errorf("decode image in element %s: %w", codename, err)
			return false
		}
		el.Images = append(el.Images, im)
		return true
	})
	if imgErr != nil {
		return nil, imgErr
	}

	return el, nil
}

// UnmarshalJSON decodes a content type keeping element order.
func (ct *ContentType) UnmarshalJSON(data []byte) error {
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return errors.New("content type: expected JSON object")
	}

	if err := json.Unmarshal([]byte(doc.Get("system").Raw), &ct.System); err != nil {
		return fmt.Errorf("decode content type system: %w", err)
	}

	ct.Elements = nil
	doc.Get("elements").ForEach(func(key, value gjson.Result) bool {
		ct.Elements = append(ct.Elements, ContentTypeElement{
			Codename: key.String(),
			Type:     ElementType(value.Get("type").String()),
			Name:     value.Get("name").String(),
		})
		return true
	})
	return nil
}

// itemPage is one decoded page of an items listing.
type itemPage struct {
	items    []*Item
	modular  []*Item
	nextPage string
}

func decodeItemPage(body []byte) (*itemPage, error) {
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, errors.New("items response: expected JSON object")
	}

	page := &itemPage{nextPage: doc.Get("pagination.next_page").String()}

	var err error
	doc.Get("items").ForEach(func(_, value gjson.Result) bool {
		it := &Item{}
		if err = json.Unmarshal([]byte(value.Raw), it); err != nil {
			return false
		}
		page.items = append(page.items, it)
		return true
	})
	if err != nil {
		return nil, err
	}

	doc.Get("modular_content").ForEach(func(_, value gjson.Result) bool {
		it := &Item{}
		if err = json.Unmarshal([]byte(value.Raw), it); err != nil {
			return false
		}
		page.modular = append(page.modular, it)
		return true
	})
	if err != nil {
		return nil, err
	}

	return page, nil
}

// attachLinkedItems points every modular_content and rich text element at the
// linked items it references. Codenames missing from the lookup (deeper than
// the requested depth) are skipped and returned for logging.
func attachLinkedItems(items []*Item, lookup map[string]*Item) []string {
	var missing []string
	for _, it := range items {
		for _, el := range it.Elements {
			var codenames []string
			switch el.Type {
			case ElementModularContent:
				codenames, _ = el.ItemCodenames()
			case ElementRichText:
				codenames = el.ModularContent
			default:
				continue
			}

			el.LinkedItems = el.LinkedItems[:0]
			for _, cn := range codenames {
				linked, ok := lookup[cn]
				if !ok {
					missing = append(missing, cn)
					continue
				}
				el.LinkedItems = append(el.LinkedItems, linked)
			}
		}
	}
	return missing
}
