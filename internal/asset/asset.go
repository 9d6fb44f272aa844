// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package asset projects Delivery API assets into asset nodes and builds
// image transformation URLs for them.
package asset

import (
	"mime"
	"net/url"
	"path"
	"strconv"
	"strings"

	"kontentsource/internal/delivery"
	"kontentsource/internal/node"
	"kontentsource/internal/schema"
)

// Node is the stored shape of an asset.
type Node struct {
	ID          string
	URL         string
	Name        string
	Description *string
	Type        string
	Size        int64
	Width       *int
	Height      *int
}

// Identity returns the node id of an asset. The Delivery API exposes no
// stable asset id, so an asset is identified by its URL; an asset that moves
// to a new URL becomes a different node.
func Identity(a delivery.Asset) string {
	return a.URL
}

// Project converts a raw asset into an asset node.
func Project(a delivery.Asset) Node {
	return Node{
		ID:          Identity(a),
		URL:         a.URL,
		Name:        a.Name,
		Description: a.Description,
		Type:        a.Type,
		Size:        a.Size,
		Width:       a.Width,
		Height:      a.Height,
	}
}

// FromImage converts an image embedded in rich text into an asset node. Rich
// text metadata carries no file name, MIME type or size, so name and type are
// derived from the URL path and size is left at zero.
func FromImage(img delivery.Image) Node {
	a := delivery.Asset{
		Description: img.Description,
		URL:         img.URL,
		Width:       img.Width,
		Height:      img.Height,
	}
	if u, err := url.Parse(img.URL); err == nil {
		a.Name = path.Base(u.Path)
		if t := mime.TypeByExtension(path.Ext(u.Path)); t != "" {
			a.Type = strings.SplitN(t, ";", 2)[0]
		}
	}
	return Project(a)
}

// ToNode returns the node record stored in the asset collection.
func (n Node) ToNode() *node.Node {
	rec := node.New()
	rec.Set("id", n.ID)
	rec.Set("url", n.URL)
	rec.Set("name", n.Name)
	rec.Set("description", n.Description)
	rec.Set("type", n.Type)
	rec.Set("size", n.Size)
	rec.Set("width", n.Width)
	rec.Set("height", n.Height)
	return rec
}

// URLOptions selects image transformations. Nil fields are left at the
// service default.
type URLOptions struct {
	Width           *int
	Height          *int
	AutomaticFormat *bool
	Format          *string
	Lossless        *bool
	Quality         *int
	DPR             *int
}

// automaticFormats maps MIME types to the fallback format used with
// auto=format.
var automaticFormats = map[string]string{
	"image/gif":  "gif",
	"image/jpeg": "jpg",
	"image/png":  "png",
}

// formats maps accepted format names to the fm parameter value.
var formats = map[string]string{
	"gif":   "gif",
	"jpg":   "jpg",
	"jpeg":  "jpg",
	"pjpg":  "pjpg",
	"pjpeg": "pjpg",
	"png":   "png",
	"png8":  "png8",
	"webp":  "webp",
}

// BuildURL returns the asset URL with the requested transformations applied
// as query parameters. Transformations are applied in a fixed order and a
// later fm parameter replaces an earlier one, so an explicit format overrides
// the automatic format fallback.
func BuildURL(rawURL, mimeType string, opts URLOptions) string {
	var q params

	if opts.Width != nil {
		q.set("w", strconv.Itoa(*opts.Width))
	}
	if opts.Height != nil {
		q.set("h", strconv.Itoa(*opts.Height))
	}
	if opts.AutomaticFormat != nil && *opts.AutomaticFormat {
		if fm, ok := automaticFormats[strings.ToLower(mimeType)]; ok {
			q.set("auto", "format")
			q.set("fm", fm)
		}
	}
	if opts.Format != nil {
		if fm, ok := formats[strings.ToLower(*opts.Format)]; ok {
			q.set("fm", fm)
		}
	}
	if opts.Lossless != nil {
		q.set("lossless", strconv.FormatBool(*opts.Lossless))
	}
	if opts.Quality != nil {
		q.set("q", strconv.Itoa(*opts.Quality))
	}
	if opts.DPR != nil {
		q.set("dpr", strconv.Itoa(*opts.DPR))
	}

	if len(q) == 0 {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + q.encode()
}

// params is an ordered query string where setting an existing key replaces
// its value in place.
type params []param

type param struct{ key, value string }

func (p *params) set(key, value string) {
	for i := range *p {
		if (*p)[i].key == key {
			(*p)[i].value = value
			return
		}
	}
	*p = append(*p, param{key, value})
}

func (p params) encode() string {
	parts := make([]string, len(p))
	for i, kv := range p {
		parts[i] = url.QueryEscape(kv.key) + "=" + url.QueryEscape(kv.value)
	}
	return strings.Join(parts, "&")
}

// URL argument names accepted by the url field resolver.
const (
	ArgWidth           = "width"
	ArgHeight          = "height"
	ArgAutomaticFormat = "automaticFormat"
	ArgFormat          = "format"
	ArgLossless        = "lossless"
	ArgQuality         = "quality"
	ArgDPR             = "dpr"
)

// OptionsFromArgs converts resolver arguments to URLOptions.
func OptionsFromArgs(args schema.Args) URLOptions {
	var opts URLOptions
	if v, ok := args.Int(ArgWidth); ok {
		opts.Width = &v
	}
	if v, ok := args.Int(ArgHeight); ok {
		opts.Height = &v
	}
	if v, ok := args.Bool(ArgAutomaticFormat); ok {
		opts.AutomaticFormat = &v
	}
	if v, ok := args.String(ArgFormat); ok {
		opts.Format = &v
	}
	if v, ok := args.Bool(ArgLossless); ok {
		opts.Lossless = &v
	}
	if v, ok := args.Int(ArgQuality); ok {
		opts.Quality = &v
	}
	if v, ok := args.Int(ArgDPR); ok {
		opts.DPR = &v
	}
	return opts
}

// Schema returns the object type of the asset collection and its computed
// fields.
func Schema(typeName string) (schema.ObjectType, map[string]schema.FieldResolver) {
	t := schema.ObjectType{
		Name:       typeName,
		Interfaces: []string{"Node"},
		Fields: []schema.Field{
			{Name: "name", Type: schema.String},
			{Name: "description", Type: schema.String},
			{Name: "type", Type: schema.String},
			{Name: "size", Type: schema.Int},
			{Name: "url", Type: schema.String},
			{Name: "width", Type: schema.Int},
			{Name: "height", Type: schema.Int},
		},
	}

	resolvers := map[string]schema.FieldResolver{
		"url": {
			Args: []schema.Arg{
				{Name: ArgWidth, Type: schema.Int},
				{Name: ArgHeight, Type: schema.Int},
				{Name: ArgAutomaticFormat, Type: schema.Boolean},
				{Name: ArgFormat, Type: schema.String},
				{Name: ArgLossless, Type: schema.Boolean},
				{Name: ArgQuality, Type: schema.Int},
				{Name: ArgDPR, Type: schema.Int},
			},
			Resolve: func(n *node.Node, args schema.Args) (any, error) {
				return BuildURL(n.String("url"), n.String("type"), OptionsFromArgs(args)), nil
			},
		},
	}
	return t, resolvers
}
