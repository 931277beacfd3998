// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLayers() []Layer {
	return []Layer{
		{Ordinal: 1, Name: "Background", Traits: []Trait{{Index: 1, Value: "day"}, {Index: 2, Value: "night"}}},
		{Ordinal: 2, Name: "Body", Traits: []Trait{{Index: 1, Value: "blue"}, {Index: 2, Value: "green"}, {Index: 3, Value: "red"}}},
	}
}

func TestCombinationKey(t *testing.T) {
	tests := []struct {
		name string
		c    Combination
		want string
	}{
		{"single layer", Combination{1}, "01"},
		{"three layers", Combination{1, 3, 12}, "010312"},
		{"suppressed layer", Combination{2, Suppressed, 1}, "020001"},
		{"empty", Combination{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Key())
		})
	}
}

func TestCombinationClone(t *testing.T) {
	c := Combination{1, 2}
	d := c.Clone()
	d[0] = 9
	assert.Equal(t, 1, c[0])
}

func TestLayerTraitLookup(t *testing.T) {
	l := sampleLayers()[1]

	v, ok := l.TraitValue(3)
	assert.True(t, ok)
	assert.Equal(t, "red", v)

	_, ok = l.TraitValue(4)
	assert.False(t, ok)
	_, ok = l.TraitValue(0)
	assert.False(t, ok)

	assert.Equal(t, 3, l.TraitIndex("red"))
	assert.Equal(t, 0, l.TraitIndex("purple"))
	assert.Equal(t, []int{2, 3}, TraitCounts(sampleLayers()))
}

func TestResolveTraitsOmitsMissing(t *testing.T) {
	layers := sampleLayers()

	got := ResolveTraits(layers, Combination{2, 3})
	assert.Equal(t, []LayerTrait{
		{TraitType: "Background", Value: "night"},
		{TraitType: "Body", Value: "red"},
	}, got)

	got = ResolveTraits(layers, Combination{Suppressed, 7})
	assert.Empty(t, got)
}

func TestDMAttributesKeepLayerOrder(t *testing.T) {
	attrs := DMAttributes{
		{TraitType: "Zeta", Value: "z"},
		{TraitType: "Alpha", Value: "a"},
		{TraitType: "Mid \"quoted\"", Value: "m"},
	}
	data, err := json.Marshal(attrs)
	require.NoError(t, err)
	assert.Equal(t, `{"Zeta":"z","Alpha":"a","Mid \"quoted\"":"m"}`, string(data))

	empty, err := json.Marshal(DMAttributes{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}

func TestWithDefaults(t *testing.T) {
	cfg := GeneratorConfig{OutputDir: "out"}.WithDefaults()
	assert.Equal(t, ".", cfg.Layers.Dir)
	assert.Equal(t, []string{".*"}, cfg.Layers.IgnoreTraits)
	assert.Equal(t, "i0", cfg.ContentSuffix)
	assert.Equal(t, CrossLayerConditional, cfg.CrossLayer)
	assert.Equal(t, ModeExhaustive, cfg.Mode)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "marketmetadata", cfg.MetadataDir)
}
