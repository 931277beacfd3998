// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package market builds the marketplace metadata records written for each
// artifact and persists them as OW.json and DM.json.
package market

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/collection-engine/internal/render"
	"github.com/pdiddy/collection-engine/pkg/types"
)

// File names written into the metadata directory.
const (
	OWFile = "OW.json"
	DMFile = "DM.json"
)

// OW builds the OW schema record for artifact index.
func OW(collection string, index int, traits []types.LayerTrait) types.OWRecord {
	attrs := make([]types.LayerTrait, len(traits))
	copy(attrs, traits)
	return types.OWRecord{
		ID: "",
		Meta: types.OWMeta{
			Name:       render.Title(collection, index),
			Attributes: attrs,
		},
	}
}

// DM builds the DM schema record for artifact index.
func DM(collection string, index int, traits []types.LayerTrait) types.DMRecord {
	attrs := make(types.DMAttributes, len(traits))
	copy(attrs, traits)
	return types.DMRecord{
		InscriptionID: "",
		Name:          render.Title(collection, index),
		Attributes:    attrs,
	}
}

// Collector accumulates both record lists in generation order.
type Collector struct {
	OW []types.OWRecord
	DM []types.DMRecord
}

// Add appends the records for one artifact.
func (c *Collector) Add(collection string, index int, traits []types.LayerTrait) {
	c.OW = append(c.OW, OW(collection, index, traits))
	c.DM = append(c.DM, DM(collection, index, traits))
}

// Len returns the number of artifacts collected.
func (c *Collector) Len() int {
	return len(c.OW)
}

// WriteFiles writes OW.json and DM.json into dir with two-space indentation.
// Empty collections are written as empty arrays.
func (c *Collector) WriteFiles(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating metadata directory: %w", err)
	}
	ow := c.OW
	if ow == nil {
		ow = []types.OWRecord{}
	}
	dm := c.DM
	if dm == nil {
		dm = []types.DMRecord{}
	}
	if err := writeJSON(filepath.Join(dir, OWFile), ow); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, DMFile), dm)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
