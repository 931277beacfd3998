// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Suppressed marks a layer that a conditional cross-layer rule removed
// from a combination. It renders as "00" and contributes no trait.
const Suppressed = 0

// Combination holds one trait index per layer, in layer order.
type Combination []int

// Key returns the fixed-width trait-index string: each index zero-padded
// to two digits, concatenated in layer order (e.g. [1 3 12] -> "010312").
// The key identifies a combination within a run.
func (c Combination) Key() string {
	var b strings.Builder
	b.Grow(2 * len(c))
	for _, v := range c {
		fmt.Fprintf(&b, "%02d", v)
	}
	return b.String()
}

// Clone returns a copy of c that does not share its backing array.
func (c Combination) Clone() Combination {
	out := make(Combination, len(c))
	copy(out, c)
	return out
}

// LayerTrait is one (trait_type, value) entry of an artifact, kept in
// layer order.
type LayerTrait struct {
	TraitType string `json:"trait_type" yaml:"trait_type"`
	Value     string `json:"value" yaml:"value"`
}

// ResolveTraits maps a combination to its trait values. Layers whose index
// is suppressed or exceeds the layer's file count are omitted.
func ResolveTraits(layers []Layer, c Combination) []LayerTrait {
	traits := make([]LayerTrait, 0, len(c))
	for i, idx := range c {
		if i >= len(layers) {
			break
		}
		value, ok := layers[i].TraitValue(idx)
		if !ok {
			continue
		}
		traits = append(traits, LayerTrait{TraitType: layers[i].Name, Value: value})
	}
	return traits
}
