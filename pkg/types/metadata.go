// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// ScalarKind discriminates the Scalar union.
type ScalarKind int

const (
	KindString ScalarKind = iota
	KindBool

	// KindRaw is any other JSON value read from a notebook (number, null,
	// array, object), kept as compact JSON text.
	KindRaw
)

// Scalar is a metadata value: a string, a boolean, or a raw JSON value
// carried through from a notebook. The zero value is the empty string.
type Scalar struct {
	kind ScalarKind
	str  string
	b    bool
}

// StringValue returns a string Scalar.
func StringValue(s string) Scalar {
	return Scalar{kind: KindString, str: s}
}

// BoolValue returns a boolean Scalar.
func BoolValue(b bool) Scalar {
	return Scalar{kind: KindBool, b: b}
}

// RawValue returns a Scalar holding the JSON text raw verbatim.
func RawValue(raw string) Scalar {
	return Scalar{kind: KindRaw, str: raw}
}

// Kind returns which member of the union s holds.
func (s Scalar) Kind() ScalarKind { return s.kind }

// Bool returns the boolean value and whether s is a Bool.
func (s Scalar) Bool() (bool, bool) {
	return s.b, s.kind == KindBool
}

// Raw returns the JSON text and whether s is a raw value.
func (s Scalar) Raw() (string, bool) {
	return s.str, s.kind == KindRaw
}

// String renders s as a metadata token value: Bool as True/False,
// String as itself, a raw value as its JSON text and null as "".
func (s Scalar) String() string {
	switch s.kind {
	case KindBool:
		if s.b {
			return "True"
		}
		return "False"
	case KindRaw:
		if s.str == "null" {
			return ""
		}
	}
	return s.str
}

// Interface returns s as a bool, a string or a json.RawMessage, for encoders.
func (s Scalar) Interface() any {
	switch s.kind {
	case KindBool:
		return s.b
	case KindRaw:
		return json.RawMessage(s.str)
	}
	return s.str
}

// Metadata is a string-keyed map of Scalars that remembers insertion order.
// The zero value is an empty map ready to use.
type Metadata struct {
	keys   []string
	values map[string]Scalar
}

// NewMetadata builds Metadata from entries, in order.
func NewMetadata(entries ...Entry) Metadata {
	var m Metadata
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Entry is one key/value pair of Metadata.
type Entry struct {
	Key   string
	Value Scalar
}

// Set stores v under k. An existing key keeps its position.
func (m *Metadata) Set(k string, v Scalar) {
	if m.values == nil {
		m.values = make(map[string]Scalar)
	}
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Get returns the value stored under k.
func (m Metadata) Get(k string) (Scalar, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Len returns the number of entries.
func (m Metadata) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Entries returns the entries in insertion order.
func (m Metadata) Entries() []Entry {
	out := make([]Entry, len(m.keys))
	for i, k := range m.keys {
		out[i] = Entry{Key: k, Value: m.values[k]}
	}
	return out
}

// Clone returns an independent copy of m.
func (m Metadata) Clone() Metadata {
	var c Metadata
	for _, k := range m.keys {
		c.Set(k, m.values[k])
	}
	return c
}

// Equal reports whether m and o hold the same entries in the same order.
func (m Metadata) Equal(o Metadata) bool {
	if len(m.keys) != len(o.keys) {
		return false
	}
	for i, k := range m.keys {
		if o.keys[i] != k || m.values[k] != o.values[k] {
			return false
		}
	}
	return true
}
