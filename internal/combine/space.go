// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package combine enumerates the Cartesian product of per-layer trait
// indices and selects combinations that survive an exclusion set.
package combine

import (
	"iter"
	"math"
	"slices"

	"github.com/pdiddy/collection-engine/internal/exclusion"
	"github.com/pdiddy/collection-engine/pkg/types"
)

// Space is the full combination space of a set of layers.
type Space struct {
	// Counts holds the trait count of each layer, in layer order.
	Counts []int
}

// NewSpace returns the space spanned by layers.
func NewSpace(layers []types.Layer) Space {
	return Space{Counts: types.TraitCounts(layers)}
}

// Size returns the product of all trait counts. A space with no layers,
// or with an empty layer, has size 0. A product beyond math.MaxInt
// saturates at math.MaxInt.
func (s Space) Size() int {
	if len(s.Counts) == 0 || slices.ContainsFunc(s.Counts, func(c int) bool { return c <= 0 }) {
		return 0
	}
	size := 1
	for _, c := range s.Counts {
		if size > math.MaxInt/c {
			return math.MaxInt
		}
		size *= c
	}
	return size
}

// All yields every combination in row-major order: the first layer is
// outermost and the last layer varies fastest. Each yielded combination
// is a fresh slice the caller may keep.
func (s Space) All() iter.Seq[types.Combination] {
	return func(yield func(types.Combination) bool) {
		if s.Size() == 0 {
			return
		}
		cur := make(types.Combination, len(s.Counts))
		for i := range cur {
			cur[i] = 1
		}
		for {
			if !yield(cur.Clone()) {
				return
			}
			// Odometer increment from the last layer.
			i := len(cur) - 1
			for ; i >= 0; i-- {
				if cur[i] < s.Counts[i] {
					cur[i]++
					break
				}
				cur[i] = 1
			}
			if i < 0 {
				return
			}
		}
	}
}

// Valid yields the normalized combinations that survive set, in the same
// order as All. A nil set allows everything.
func (s Space) Valid(set *exclusion.Set) iter.Seq[types.Combination] {
	return func(yield func(types.Combination) bool) {
		for c := range s.All() {
			if set == nil {
				if !yield(c) {
					return
				}
				continue
			}
			n, ok := set.Allow(c)
			if !ok {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

// Count returns the exact number of valid combinations: the adjusted
// maximum collection size.
func (s Space) Count(set *exclusion.Set) int {
	if set == nil || set.Empty() {
		return s.Size()
	}
	n := 0
	for range s.Valid(set) {
		n++
	}
	return n
}
