// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the collection-engine
// pipeline: layers and traits discovered on disk, combinations of trait
// indices, and the marketplace metadata records written for each artifact.
package types

// Trait is one file inside a layer directory.
type Trait struct {
	// Index is the 1-based position in the layer's sorted file listing.
	Index int `json:"index" yaml:"index"`

	// Value is the file's base name without extension (e.g. "red").
	Value string `json:"value" yaml:"value"`

	// File is the file name inside the layer directory (e.g. "red.png").
	File string `json:"file" yaml:"file"`
}

// Layer is a named, ordered set of trait files backed by a directory
// named "<order> <name>".
type Layer struct {
	// Dir is the directory name (e.g. "2 Background").
	Dir string `json:"dir" yaml:"dir"`

	// Ordinal is the 1-based position of the layer after sorting.
	Ordinal int `json:"ordinal" yaml:"ordinal"`

	// Order is the numeric token parsed from the directory name.
	Order int `json:"order" yaml:"order"`

	// Name is the label after the ordinal, used as the trait type.
	Name string `json:"name" yaml:"name"`

	// Traits lists the layer's trait files in sorted order.
	Traits []Trait `json:"traits" yaml:"traits"`
}

// TraitCount returns the number of traits in the layer.
func (l Layer) TraitCount() int {
	return len(l.Traits)
}

// TraitValue returns the value of the trait at the 1-based index i.
// The second return value is false when i is outside [1, TraitCount].
func (l Layer) TraitValue(i int) (string, bool) {
	if i < 1 || i > len(l.Traits) {
		return "", false
	}
	return l.Traits[i-1].Value, true
}

// TraitIndex resolves a trait value to its 1-based index, or 0 when no
// trait in the layer has that value.
func (l Layer) TraitIndex(value string) int {
	for _, t := range l.Traits {
		if t.Value == value {
			return t.Index
		}
	}
	return 0
}

// TraitCounts returns the trait count of each layer in order.
func TraitCounts(layers []Layer) []int {
	counts := make([]int, len(layers))
	for i, l := range layers {
		counts[i] = l.TraitCount()
	}
	return counts
}
