// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package node provides the flat, insertion-ordered field record that every
// collection in the node graph stores. Field order is kept so serialized
// nodes are deterministic and match the order fields were resolved in.
package node

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
)

// Node is an ordered mapping of field name to value. The zero value is an
// empty node ready to use.
type Node struct {
	keys   []string
	values map[string]any
}

// New creates an empty node.
func New() *Node {
	return &Node{values: make(map[string]any)}
}

// Set assigns a field. Existing fields keep their position.
func (n *Node) Set(key string, value any) {
	if n.values == nil {
		n.values = make(map[string]any)
	}
	if _, ok := n.values[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.values[key] = value
}

// Get returns a field value and whether the field exists.
func (n *Node) Get(key string) (any, bool) {
	v, ok := n.values[key]
	return v, ok
}

// Has reports whether the field exists, even when its value is nil.
func (n *Node) Has(key string) bool {
	_, ok := n.values[key]
	return ok
}

// String returns a field as a string, or "" when missing or not a string.
func (n *Node) String(key string) string {
	switch v := n.values[key].(type) {
	case string:
		return v
	case *string:
		if v != nil {
			return *v
		}
	}
	return ""
}

// Bool returns a field as a bool, or false when missing or not a bool.
func (n *Node) Bool(key string) bool {
	b, _ := n.values[key].(bool)
	return b
}

// ID returns the "id" field.
func (n *Node) ID() string {
	return n.String("id")
}

// Keys returns the field names in insertion order.
func (n *Node) Keys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// MarshalJSON writes fields in insertion order. Non-finite floats (a number
// element that failed to parse) are written as null since JSON has no NaN.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range n.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := marshalValue(n.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping the document's field order.
func (n *Node) UnmarshalJSON(data []byte) error {
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return errors.New("node: expected JSON object")
	}

	n.keys = nil
	n.values = make(map[string]any)

	var decodeErr error
	result.ForEach(func(key, value gjson.Result) bool {
		var v any
		if err := json.Unmarshal([]byte(value.Raw), &v); err != nil {
			decodeErr = fmt.Errorf("decode field %s: %w", key.String(), err)
			return false
		}
		n.Set(key.String(), v)
		return true
	})
	return decodeErr
}

func marshalValue(v any) ([]byte, error) {
	switch f := v.(type) {
	case float64:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return []byte("null"), nil
		}
	case float32:
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return []byte("null"), nil
		}
	}
	return json.Marshal(v)
}
