// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/collection-engine/internal/combine"
	"github.com/pdiddy/collection-engine/internal/exclusion"
	"github.com/pdiddy/collection-engine/internal/layers"
	"github.com/pdiddy/collection-engine/pkg/types"
)

// Plan is the combination space of a layer directory together with the
// exclusion rules that apply to it.
type Plan struct {
	Layers     []types.Layer
	Space      combine.Space
	Exclusions *exclusion.Set
}

// Discover scans the configured layer directory and returns a plan with no
// exclusions.
func Discover(cfg types.LayerConfig, logger *zap.Logger) (*Plan, error) {
	found, err := layers.Discover(cfg.Dir, cfg.IgnoreTraits, logger)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Layers:     found,
		Space:      combine.NewSpace(found),
		Exclusions: exclusion.NewSet(),
	}, nil
}

// Prepare discovers layers and parses the configured exclusion rules.
func Prepare(cfg types.GeneratorConfig, logger *zap.Logger) (*Plan, error) {
	cfg = cfg.WithDefaults()
	p, err := Discover(cfg.Layers, logger)
	if err != nil {
		return nil, err
	}
	p.SetExclusions(cfg.Exclusions, cfg.CrossLayer, logger)
	return p, nil
}

// SetExclusions replaces the plan's exclusion set with the parsed rules.
func (p *Plan) SetExclusions(rules string, mode types.CrossLayerMode, logger *zap.Logger) {
	p.Exclusions = exclusion.Parse(rules, p.Layers, mode, logger)
}

// FullSize returns the size of the unfiltered combination space.
func (p *Plan) FullSize() int {
	return p.Space.Size()
}

// AdjustedMax returns the number of combinations that survive the
// exclusion rules.
func (p *Plan) AdjustedMax() int {
	return p.Space.Count(p.Exclusions)
}

// WriteLayers prints the discovered layers and the full space size.
func (p *Plan) WriteLayers(w io.Writer) {
	fmt.Fprintln(w, "Layer directories and trait counts:")
	for _, l := range p.Layers {
		fmt.Fprintf(w, "Layer %d: %s -> %d traits\n", l.Ordinal, l.Dir, l.TraitCount())
	}
	fmt.Fprintf(w, "The maximum possible collection size is %d.\n", p.FullSize())
}

// WriteExclusions prints the parsed rules and the adjusted maximum.
func (p *Plan) WriteExclusions(w io.Writer) {
	pairs := p.Exclusions.Pairs()
	labels := make([]string, len(pairs))
	for i, pair := range pairs {
		labels[i] = pair.String()
	}
	fmt.Fprintf(w, "Exclusions: [%s]\n", strings.Join(labels, ", "))
	fmt.Fprintf(w, "Number of excluded traits: %d\n", len(pairs))
	for _, s := range p.Exclusions.Suppressions() {
		fmt.Fprintf(w, "Layer %d is left empty when layer %d is %s\n",
			s.Target, s.WhenLayer, p.traitName(s.WhenLayer, s.WhenTrait))
	}
	fmt.Fprintf(w, "The adjusted maximum possible collection size is %d.\n", p.AdjustedMax())
}

func (p *Plan) traitName(layer, trait int) string {
	if layer < 1 || layer > len(p.Layers) {
		return fmt.Sprintf("#%d", trait)
	}
	if v, ok := p.Layers[layer-1].TraitValue(trait); ok {
		return v
	}
	return fmt.Sprintf("#%d", trait)
}
