// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransformer(t *testing.T, mutate func(*Options)) *Transformer {
	t.Helper()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	tr, err := New(opts)
	require.NoError(t, err)
	return tr
}

func TestTransform(t *testing.T) {
	tr := newTransformer(t, nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty paragraph",
			in:   "<p><br></p>",
			want: "",
		},
		{
			name: "plain text",
			in:   "<p>Hello <strong>world</strong></p>",
			want: "<p>Hello <strong>world</strong></p>",
		},
		{
			name: "item link",
			in:   `<p>Read <a data-item-id="i1" href="">this <em>guide</em></a></p>`,
			want: `<p>Read <item-link data-node-type="item_link" data-node-id="i1">this <em>guide</em></item-link></p>`,
		},
		{
			name: "component wrapper is unwrapped",
			in:   `<p data-type="item" data-rel="component" data-codename="q1"><quote data-node-type="quote" data-node-id="c1"></quote></p><p>after</p>`,
			want: `<quote data-node-type="quote" data-node-id="c1"></quote><p>after</p>`,
		},
		{
			name: "image asset",
			in:   `<figure data-asset-id="x" data-image-id="x"><img src="https://assets.example.com/a.png" alt=""></figure><p>caption</p>`,
			want: `<asset data-node-type="asset" data-node-id="https://assets.example.com/a.png"></asset><p>caption</p>`,
		},
		{
			name: "asset without image is kept",
			in:   `<figure data-asset-id="x"><figcaption>file</figcaption></figure>`,
			want: `<figure data-asset-id="x"><figcaption>file</figcaption></figure>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.Transform(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransform_LinksInsideComponents(t *testing.T) {
	tr := newTransformer(t, nil)

	got, err := tr.Transform(`<p data-type="item" data-codename="c"><a data-item-id="i2" href="">go</a></p>`)
	require.NoError(t, err)
	assert.Equal(t, `<item-link data-node-type="item_link" data-node-id="i2">go</item-link>`, got)
}

func TestTransform_Disabled(t *testing.T) {
	tr := newTransformer(t, func(o *Options) { o.WrapperCSSClass = "" })

	in := `<p><a data-item-id="i1" href="">x</a></p>`
	got, err := tr.Transform(in)
	require.NoError(t, err)
	assert.Equal(t, in, got)
	assert.False(t, tr.CanTransformLinks())
	assert.False(t, tr.CanTransformComponents())
	assert.False(t, tr.CanTransformAssets())
}

func TestTransform_DisabledStages(t *testing.T) {
	tr := newTransformer(t, func(o *Options) {
		o.ItemLinkSelector = ""
		o.AssetComponentName = ""
	})
	assert.True(t, tr.CanTransformRichText())
	assert.False(t, tr.CanTransformLinks())
	assert.True(t, tr.CanTransformComponents())
	assert.False(t, tr.CanTransformAssets())

	in := `<p><a data-item-id="i1" href="">x</a></p><figure data-asset-id="x"><img src="https://a.example.com/i.png"/></figure>`
	got, err := tr.Transform(in)
	require.NoError(t, err)
	assert.Equal(t, `<p><a data-item-id="i1" href="">x</a></p><figure data-asset-id="x"><img src="https://a.example.com/i.png"/></figure>`, got)
}

func TestComponentName(t *testing.T) {
	tr := newTransformer(t, nil)
	assert.Equal(t, "blog-post", tr.ComponentName("blog_post"))

	prefixed := newTransformer(t, func(o *Options) { o.ComponentNamePrefix = "kc" })
	assert.Equal(t, "kc-blog-post", prefixed.ComponentName("blog_post"))
	assert.Equal(t,
		`<kc-item-link data-node-type="item_link" data-node-id="i1">text</kc-item-link>`,
		prefixed.LinkPlaceholder("i1", "text"))
	assert.Equal(t,
		`<kc-asset data-node-type="asset" data-node-id="https://a/b.png"></kc-asset>`,
		prefixed.AssetPlaceholder("https://a/b.png"))
}

func TestComponentPlaceholder(t *testing.T) {
	tr := newTransformer(t, nil)
	assert.Equal(t,
		`<call-to-action data-node-type="call_to_action" data-node-id="c1"></call-to-action>`,
		tr.ComponentPlaceholder("c1", "call_to_action"))
}

func TestNew_InvalidSelector(t *testing.T) {
	opts := DefaultOptions()
	opts.ComponentSelector = "p["
	_, err := New(opts)
	assert.Error(t, err)
}
