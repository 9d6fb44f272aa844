// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package richtext rewrites rich text HTML into markup the node graph can
// render: links to content items and embedded assets become placeholder
// components that reference a node, and inline component wrappers are
// unwrapped so components render as nested structures.
package richtext

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"kontentsource/internal/casing"
)

// Node types referenced by placeholders.
const (
	NodeTypeItemLink = "item_link"
	NodeTypeAsset    = "asset"
)

// Options configures the transformer. An empty value disables the stage that
// depends on it; an empty WrapperCSSClass disables the whole transform.
type Options struct {
	WrapperCSSClass       string
	ComponentNamePrefix   string
	ItemLinkSelector      string
	ItemLinkComponentName string
	ComponentSelector     string
	AssetSelector         string
	AssetComponentName    string
}

// DefaultOptions returns the options matching the markup produced by the
// delivery client.
func DefaultOptions() Options {
	return Options{
		WrapperCSSClass:       "rich-text",
		ItemLinkSelector:      "a[data-item-id]",
		ItemLinkComponentName: "item-link",
		ComponentSelector:     `p[data-type="item"]`,
		AssetSelector:         "figure[data-asset-id]",
		AssetComponentName:    "asset",
	}
}

// Transformer rewrites rich text HTML. It is immutable and safe for
// concurrent use.
type Transformer struct {
	opts Options
}

// New validates the configured selectors and returns a Transformer.
func New(opts Options) (*Transformer, error) {
	for name, sel := range map[string]string{
		"item link selector": opts.ItemLinkSelector,
		"component selector": opts.ComponentSelector,
		"asset selector":     opts.AssetSelector,
	} {
		if sel == "" {
			continue
		}
		if _, err := cascadia.Parse(sel); err != nil {
			return nil, fmt.Errorf("richtext: invalid %s %q: %w", name, sel, err)
		}
	}
	return &Transformer{opts: opts}, nil
}

// CanTransformRichText reports whether rich text is transformed at all.
func (t *Transformer) CanTransformRichText() bool {
	return t.opts.WrapperCSSClass != ""
}

// CanTransformLinks reports whether item links are rewritten.
func (t *Transformer) CanTransformLinks() bool {
	return t.CanTransformRichText() &&
		t.opts.ItemLinkSelector != "" &&
		t.opts.ItemLinkComponentName != ""
}

// CanTransformComponents reports whether component wrappers are unwrapped.
func (t *Transformer) CanTransformComponents() bool {
	return t.CanTransformRichText() && t.opts.ComponentSelector != ""
}

// CanTransformAssets reports whether embedded images are rewritten.
func (t *Transformer) CanTransformAssets() bool {
	return t.CanTransformRichText() &&
		t.opts.AssetSelector != "" &&
		t.opts.AssetComponentName != ""
}

// Transform rewrites resolved rich text HTML. HTML without any text content
// (such as a lone empty paragraph) yields "".
func (t *Transformer) Transform(src string) (string, error) {
	if !t.CanTransformRichText() {
		return src, nil
	}

	wrapped := fmt.Sprintf(`<div class="%s">%s</div>`, html.EscapeString(t.opts.WrapperCSSClass), src)
	root, err := html.Parse(strings.NewReader(wrapped))
	if err != nil {
		return "", fmt.Errorf("parse rich text: %w", err)
	}

	wrapper := goquery.NewDocumentFromNode(root).Find("body").Children().First()
	if strings.TrimSpace(wrapper.Text()) == "" {
		return "", nil
	}

	t.transformItemLinks(wrapper)
	t.transformComponents(wrapper)
	t.transformAssets(wrapper)

	out, err := wrapper.Html()
	if err != nil {
		return "", fmt.Errorf("render rich text: %w", err)
	}
	return out, nil
}

func (t *Transformer) transformItemLinks(root *goquery.Selection) {
	if !t.CanTransformLinks() {
		return
	}
	root.Find(t.opts.ItemLinkSelector).Each(func(_ int, s *goquery.Selection) {
		id := s.AttrOr("data-item-id", "")
		text, _ := s.Html()
		s.ReplaceWithHtml(t.LinkPlaceholder(id, text))
	})
}

func (t *Transformer) transformComponents(root *goquery.Selection) {
	if !t.CanTransformComponents() {
		return
	}
	root.Find(t.opts.ComponentSelector).Each(func(_ int, s *goquery.Selection) {
		inner, _ := s.Html()
		s.ReplaceWithHtml(inner)
	})
}

// transformAssets rewrites asset containers holding an image. Other assets
// are left as they are: the only node identity available for an embedded
// asset is its image URL.
func (t *Transformer) transformAssets(root *goquery.Selection) {
	if !t.CanTransformAssets() {
		return
	}
	root.Find(t.opts.AssetSelector).Each(func(_ int, s *goquery.Selection) {
		img := s.Find("img")
		if img.Length() == 0 {
			return
		}
		src := img.First().AttrOr("src", "")
		s.ReplaceWithHtml(t.AssetPlaceholder(src))
	})
}

// ComponentName returns the placeholder tag for a codename, including the
// configured prefix.
func (t *Transformer) ComponentName(codename string) string {
	if t.opts.ComponentNamePrefix != "" {
		codename = t.opts.ComponentNamePrefix + "-" + codename
	}
	return casing.Kebab(codename)
}

// ComponentPlaceholder renders an embedded content item of the given content
// type as a component referencing its node.
func (t *Transformer) ComponentPlaceholder(id, typeCodename string) string {
	return placeholder(t.ComponentName(typeCodename), typeCodename, id, "")
}

// LinkPlaceholder renders a link to a content item, keeping text as the
// link body.
func (t *Transformer) LinkPlaceholder(id, text string) string {
	return placeholder(t.ComponentName(t.opts.ItemLinkComponentName), NodeTypeItemLink, id, text)
}

// AssetPlaceholder renders an embedded asset referencing its node id.
func (t *Transformer) AssetPlaceholder(id string) string {
	return placeholder(t.ComponentName(t.opts.AssetComponentName), NodeTypeAsset, id, "")
}

func placeholder(tag, nodeType, id, inner string) string {
	return fmt.Sprintf(`<%s data-node-type="%s" data-node-id="%s">%s</%s>`,
		tag, html.EscapeString(nodeType), html.EscapeString(id), inner, tag)
}
