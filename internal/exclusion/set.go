// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package exclusion parses exclusion rules and decides whether a
// combination of trait indices is allowed.
//
// A Set holds two kinds of constraint. Banned pairs (layer ordinal, trait
// index) invalidate any combination that contains them. Suppressions
// remove a target layer from every combination in which another layer
// holds a given trait; the suppressed layer renders as empty.
package exclusion

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/pdiddy/collection-engine/pkg/types"
)

// Pair identifies one trait of one layer. Both fields are 1-based.
type Pair struct {
	Layer int `json:"layer" yaml:"layer"`
	Trait int `json:"trait" yaml:"trait"`
}

// String formats the pair as "(layer, trait)".
func (p Pair) String() string {
	return fmt.Sprintf("(%d, %d)", p.Layer, p.Trait)
}

// Suppression hides layer Target whenever layer WhenLayer holds trait
// WhenTrait. All fields are 1-based.
type Suppression struct {
	Target    int `json:"target" yaml:"target"`
	WhenLayer int `json:"when_layer" yaml:"when_layer"`
	WhenTrait int `json:"when_trait" yaml:"when_trait"`
}

// Set is a collection of banned pairs and suppressions. The zero value is
// not usable; call NewSet.
type Set struct {
	pairs        map[Pair]struct{}
	suppressions []Suppression
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{pairs: make(map[Pair]struct{})}
}

// Add bans a pair. Adding the same pair twice has no effect.
func (s *Set) Add(p Pair) {
	s.pairs[p] = struct{}{}
}

// Suppress records a suppression. Duplicates are ignored. It returns
// false, recording nothing, when sup would make a layer depend on itself
// through a chain of suppressions.
func (s *Set) Suppress(sup Suppression) bool {
	if slices.Contains(s.suppressions, sup) {
		return true
	}
	if sup.Target == sup.WhenLayer || s.dependsOn(sup.WhenLayer, sup.Target) {
		return false
	}
	s.suppressions = append(s.suppressions, sup)
	return true
}

// dependsOn reports whether the visibility of layer from is decided, directly
// or through other suppressions, by the value of layer on.
func (s *Set) dependsOn(from, on int) bool {
	visited := map[int]bool{}
	stack := []int{from}
	for len(stack) > 0 {
		l := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[l] {
			continue
		}
		visited[l] = true
		for _, sup := range s.suppressions {
			if sup.Target != l {
				continue
			}
			if sup.WhenLayer == on {
				return true
			}
			stack = append(stack, sup.WhenLayer)
		}
	}
	return false
}

// Contains reports whether p is banned.
func (s *Set) Contains(p Pair) bool {
	_, ok := s.pairs[p]
	return ok
}

// Len returns the number of banned pairs.
func (s *Set) Len() int {
	return len(s.pairs)
}

// Empty reports whether the set holds no pairs and no suppressions.
func (s *Set) Empty() bool {
	return len(s.pairs) == 0 && len(s.suppressions) == 0
}

// Pairs returns the banned pairs sorted by layer, then trait.
func (s *Set) Pairs() []Pair {
	out := make([]Pair, 0, len(s.pairs))
	for p := range s.pairs {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Pair) int {
		return cmp.Or(cmp.Compare(a.Layer, b.Layer), cmp.Compare(a.Trait, b.Trait))
	})
	return out
}

// Suppressions returns the recorded suppressions in insertion order.
func (s *Set) Suppressions() []Suppression {
	return slices.Clone(s.suppressions)
}

// Excludes reports whether c contains a banned pair. Suppressed layers
// never match.
func (s *Set) Excludes(c types.Combination) bool {
	for i, trait := range c {
		if trait == types.Suppressed {
			continue
		}
		if s.Contains(Pair{Layer: i + 1, Trait: trait}) {
			return true
		}
	}
	return false
}

// hidden returns, per layer of c, whether a suppression removes it. A
// suppression fires when its trigger layer holds the trigger trait and is
// itself visible, so a hidden layer never hides another one. Suppress
// keeps the rules acyclic, which makes the result independent of the raw
// values held by hidden layers.
func (s *Set) hidden(c types.Combination) []bool {
	const (
		unknown = iota
		visible
		gone
	)
	state := make([]int, len(c))
	var resolve func(l int) bool
	resolve = func(l int) bool {
		switch state[l] {
		case visible:
			return false
		case gone:
			return true
		}
		state[l] = visible
		for _, sup := range s.suppressions {
			t, w := sup.Target-1, sup.WhenLayer-1
			if t != l || w < 0 || w >= len(c) {
				continue
			}
			if c[w] == sup.WhenTrait && !resolve(w) {
				state[l] = gone
				return true
			}
		}
		return false
	}

	out := make([]bool, len(c))
	for l := range c {
		out[l] = resolve(l)
	}
	return out
}

// Normalize returns a copy of c with every hidden layer set to Suppressed.
func (s *Set) Normalize(c types.Combination) types.Combination {
	out := c.Clone()
	if len(s.suppressions) == 0 {
		return out
	}
	for l, h := range s.hidden(c) {
		if h {
			out[l] = types.Suppressed
		}
	}
	return out
}

// Canonical reports whether c is the representative of its suppression
// group: every layer hidden in c holds trait 1. Raw combinations that
// differ only in hidden layers normalize to the same value, and only the
// canonical one is kept.
func (s *Set) Canonical(c types.Combination) bool {
	if len(s.suppressions) == 0 {
		return true
	}
	for l, h := range s.hidden(c) {
		if h && c[l] != 1 {
			return false
		}
	}
	return true
}

// Allow reports whether the raw combination c survives the set and, if
// so, returns its normalized form.
func (s *Set) Allow(c types.Combination) (types.Combination, bool) {
	if !s.Canonical(c) {
		return nil, false
	}
	n := s.Normalize(c)
	if s.Excludes(n) {
		return nil, false
	}
	return n, true
}
