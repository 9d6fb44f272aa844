// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package delivery

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// objectSelector matches the placeholders the Delivery API leaves in rich text
// for linked items and inline components.
const objectSelector = `object[type="application/kenticocloud"][data-type="item"]`

// RichTextResolvers are the per-item callbacks used to substitute embedded
// items and item links while resolving rich text. A nil callback leaves the
// corresponding placeholders untouched.
type RichTextResolvers struct {
	// Item renders an embedded linked item or component. The result is wrapped
	// in a <p data-type="item"> marker element.
	Item func(item *Item) string
	// Link renders an anchor pointing at another content item. text is the
	// anchor's inner HTML.
	Link func(link Link, text string) string
}

// ResolveHTML substitutes the embedded item and link placeholders of a rich
// text element using the given resolvers and returns the resulting HTML.
func (e *Element) ResolveHTML(r RichTextResolvers) (string, error) {
	raw := e.Text()
	if r.Item == nil && r.Link == nil {
		return raw, nil
	}
	if strings.TrimSpace(raw) == "" {
		return raw, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse rich text %s: %w", e.Codename, err)
	}
	body := doc.Find("body")

	if r.Item != nil {
		linked := make(map[string]*Item, len(e.LinkedItems))
		for _, it := range e.LinkedItems {
			linked[it.System.Codename] = it
		}

		body.Find(objectSelector).Each(func(_ int, s *goquery.Selection) {
			codename := s.AttrOr("data-codename", "")
			it, ok := linked[codename]
			if !ok {
				return
			}
			s.ReplaceWithHtml(fmt.Sprintf(`<p data-type="item" data-rel="%s" data-codename="%s">%s</p>`,
				html.EscapeString(s.AttrOr("data-rel", "link")),
				html.EscapeString(codename),
				r.Item(it),
			))
		})
	}

	if r.Link != nil {
		body.Find("a[data-item-id]").Each(func(_ int, s *goquery.Selection) {
			id := s.AttrOr("data-item-id", "")
			link, ok := e.Links[id]
			if !ok {
				link = Link{ID: id}
			}
			text, _ := s.Html()
			s.ReplaceWithHtml(r.Link(link, text))
		})
	}

	out, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("render rich text %s: %w", e.Codename, err)
	}
	return out, nil
}
