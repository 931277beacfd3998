// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package exclusion

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/collection-engine/pkg/types"
)

// Parse reads a comma-delimited rule list into a Set. Each rule is one of:
//
//	<layer> <trait>               ban one trait of one layer
//	<layer> <other> <trait>       cross-layer rule, see types.CrossLayerMode
//
// Layers are referenced by 1-based ordinal and traits by value (the file
// name without extension). Malformed or unresolvable rules are skipped
// with a warning; Parse never fails.
func Parse(input string, layers []types.Layer, mode types.CrossLayerMode, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := parser{layers: layers, mode: mode, logger: logger, set: NewSet()}

	for _, entry := range strings.Split(input, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Fields(entry)
		switch len(parts) {
		case 2:
			p.direct(entry, parts[0], parts[1])
		case 3:
			p.crossLayer(entry, parts[0], parts[1], parts[2])
		default:
			logger.Warn("invalid exclusion format", zap.String("rule", entry))
		}
	}
	return p.set
}

type parser struct {
	layers []types.Layer
	mode   types.CrossLayerMode
	logger *zap.Logger
	set    *Set
}

// ordinal parses a 1-based layer reference and checks its range.
func (p *parser) ordinal(rule, token string) (int, bool) {
	if !isDigits(token) {
		p.logger.Warn("invalid layer number", zap.String("rule", rule), zap.String("layer", token))
		return 0, false
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 1 || n > len(p.layers) {
		p.logger.Warn("layer number out of range",
			zap.String("rule", rule), zap.String("layer", token), zap.Int("layers", len(p.layers)))
		return 0, false
	}
	return n, true
}

// trait resolves a trait value within a layer.
func (p *parser) trait(rule string, layer int, value string) (int, bool) {
	idx := p.layers[layer-1].TraitIndex(value)
	if idx == 0 {
		p.logger.Warn("trait not found",
			zap.String("rule", rule), zap.String("layer", p.layers[layer-1].Dir), zap.String("trait", value))
		return 0, false
	}
	return idx, true
}

func (p *parser) direct(rule, layerTok, traitName string) {
	layer, ok := p.ordinal(rule, layerTok)
	if !ok {
		return
	}
	idx, ok := p.trait(rule, layer, traitName)
	if !ok {
		return
	}
	p.set.Add(Pair{Layer: layer, Trait: idx})
}

func (p *parser) crossLayer(rule, targetTok, whenTok, traitName string) {
	target, ok := p.ordinal(rule, targetTok)
	if !ok {
		return
	}
	when, ok := p.ordinal(rule, whenTok)
	if !ok {
		return
	}
	idx, ok := p.trait(rule, when, traitName)
	if !ok {
		return
	}

	if p.mode == types.CrossLayerLegacy {
		for i := 1; i <= p.layers[target-1].TraitCount(); i++ {
			p.set.Add(Pair{Layer: target, Trait: i})
		}
		p.set.Add(Pair{Layer: when, Trait: idx})
		return
	}

	if target == when {
		p.logger.Warn("cross-layer rule references the same layer twice", zap.String("rule", rule))
		return
	}
	if !p.set.Suppress(Suppression{Target: target, WhenLayer: when, WhenTrait: idx}) {
		p.logger.Warn("cross-layer rule forms a cycle with earlier rules", zap.String("rule", rule))
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
