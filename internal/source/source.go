// SPDX-License-Identifier: Apache-2.0

// Package source loads named configuration origins (YAML resources, the
// environment, process properties) into flat mappings from dotted keys to
// shape-tagged values. A Source is immutable once loaded; precedence between
// sources is the resolver's concern.
package source

import (
	"strings"

	"github.com/waterfallconf/waterfall/internal/secrets"
)

// Value is one configuration value. Its shape — scalar, list, or encrypted
// scalar — is decided once at load time, not re-detected on every read.
type Value struct {
	// Scalar holds the value for single-valued keys. For encrypted values it
	// holds the base64 payload with the cipher(...) wrapper already stripped.
	Scalar string

	// List holds the elements of a multivalued key, in document order.
	List []string

	// IsList distinguishes an empty list from an empty scalar.
	IsList bool

	// Encrypted marks a scalar that followed the cipher(<base64>) convention.
	Encrypted bool
}

// NewScalar tags raw as either a plain or an encrypted scalar.
func NewScalar(raw string) Value {
	if payload, ok := secrets.ParseMarker(raw); ok {
		return Value{Scalar: payload, Encrypted: true}
	}
	return Value{Scalar: raw}
}

// NewList builds a multivalued Value. Cipher markers inside list elements
// are deliberately left untouched: encrypted lists are unsupported.
func NewList(items []string) Value {
	return Value{List: items, IsList: true}
}

// Source is one origin of configuration data: a name for diagnostics and a
// flat mapping from dotted-path keys to values.
type Source struct {
	name   string
	values map[string]Value
}

// New wraps an already-flattened mapping in a Source.
func New(name string, values map[string]Value) Source {
	return Source{name: name, values: values}
}

// Empty returns a Source that defines no keys.
func Empty(name string) Source {
	return Source{name: name}
}

// Name returns the source's identity, used in logs only.
func (s Source) Name() string {
	return s.name
}

// Lookup returns the value for key and whether the source defines it.
func (s Source) Lookup(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// HasSubtree reports whether the source defines at least one key underneath
// the given subtree name. A scalar stored at exactly that name does not make
// a subtree.
func (s Source) HasSubtree(name string) bool {
	prefix := name + "."
	for key := range s.values {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// Len returns the number of keys the source defines.
func (s Source) Len() int {
	return len(s.values)
}
