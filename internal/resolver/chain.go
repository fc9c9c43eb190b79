// SPDX-License-Identifier: Apache-2.0

// Package resolver turns an ordered set of configuration sources into one
// effective view: the first layer to define a key wins and lower layers are
// consulted only for keys every higher layer is missing. A layer may be
// re-rooted under a subtree, which is how profile scoping is expressed.
package resolver

import "github.com/waterfallconf/waterfall/internal/source"

// Layer is one link of a fallback chain: a source plus the key prefix every
// lookup against it is re-rooted under ("" for no re-rooting).
type Layer struct {
	src    source.Source
	prefix string
}

// At wraps a source as a plain, un-rooted layer.
func At(src source.Source) Layer {
	return Layer{src: src}
}

// Rerooted wraps a source so that lookups for key are answered from
// subtree.key, scoping the layer to that subtree.
func Rerooted(src source.Source, subtree string) Layer {
	return Layer{src: src, prefix: subtree + "."}
}

// Chain is an immutable first-wins fallback chain over layers.
type Chain struct {
	layers []Layer
}

// New builds a chain from layers in decreasing priority order.
func New(layers ...Layer) Chain {
	return Chain{layers: layers}
}

// Lookup walks the chain in priority order and returns the value from the
// first layer that defines key. Deterministic given identical inputs; no
// side effects.
func (c Chain) Lookup(key string) (source.Value, bool) {
	for _, layer := range c.layers {
		if v, ok := layer.src.Lookup(layer.prefix + key); ok {
			return v, true
		}
	}
	return source.Value{}, false
}

// Scalar is a convenience for reading single-valued plain keys, used for
// meta-configuration discovery. Lists and encrypted values do not qualify.
func (c Chain) Scalar(key string) (string, bool) {
	v, ok := c.Lookup(key)
	if !ok || v.IsList || v.Encrypted {
		return "", false
	}
	return v.Scalar, true
}
