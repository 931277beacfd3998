// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/collection-engine/internal/exclusion"
	"github.com/pdiddy/collection-engine/internal/manifest"
	"github.com/pdiddy/collection-engine/pkg/types"
)

// ReportFile is the run report written next to OW.json and DM.json.
const ReportFile = "run.yaml"

// Report is the on-disk summary of a generation run. It records enough to
// reproduce the run: the layers seen, the rules applied, and the seed.
type Report struct {
	RunID      string               `yaml:"run_id"`
	Collection string               `yaml:"collection"`
	Mode       types.SelectionMode  `yaml:"mode"`
	Seed       uint64               `yaml:"seed,omitempty"`
	CrossLayer types.CrossLayerMode `yaml:"cross_layer"`
	Rules      string               `yaml:"rules,omitempty"`
	Layers     []ReportLayer        `yaml:"layers"`
	Exclusions ReportExclusions     `yaml:"exclusions"`
	Sizes      ReportSizes          `yaml:"sizes"`
	StartedAt  time.Time            `yaml:"started_at"`
	FinishedAt time.Time            `yaml:"finished_at"`
}

// ReportLayer summarizes one layer.
type ReportLayer struct {
	Ordinal int    `yaml:"ordinal"`
	Dir     string `yaml:"dir"`
	Traits  int    `yaml:"traits"`
}

// ReportExclusions lists the parsed exclusion rules.
type ReportExclusions struct {
	Pairs        []exclusion.Pair        `yaml:"pairs,omitempty"`
	Suppressions []exclusion.Suppression `yaml:"suppressions,omitempty"`
}

// ReportSizes records the combination counts of the run.
type ReportSizes struct {
	Full        int `yaml:"full"`
	AdjustedMax int `yaml:"adjusted_max"`
	Generated   int `yaml:"generated"`
	Resumed     int `yaml:"resumed,omitempty"`
}

func newReport(run manifest.Run, plan *Plan, summary Summary, finished time.Time) Report {
	r := Report{
		RunID:      run.ID,
		Collection: run.Collection,
		Mode:       run.Mode,
		CrossLayer: run.Config.CrossLayer,
		Rules:      run.Config.Exclusions,
		Exclusions: ReportExclusions{
			Pairs:        plan.Exclusions.Pairs(),
			Suppressions: plan.Exclusions.Suppressions(),
		},
		Sizes: ReportSizes{
			Full:        plan.FullSize(),
			AdjustedMax: plan.AdjustedMax(),
			Generated:   summary.Generated,
			Resumed:     summary.Resumed,
		},
		StartedAt:  run.StartedAt.UTC(),
		FinishedAt: finished.UTC(),
	}
	if run.Mode == types.ModeRandom {
		r.Seed = run.Seed
	}
	for _, l := range plan.Layers {
		r.Layers = append(r.Layers, ReportLayer{Ordinal: l.Ordinal, Dir: l.Dir, Traits: l.TraitCount()})
	}
	return r
}

// WriteReport saves a run report as YAML.
func WriteReport(path string, r Report) error {
	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("marshaling run report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run report: %w", err)
	}
	return nil
}

// ReadReport loads a run report written by WriteReport.
func ReadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("reading run report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("parsing run report: %w", err)
	}
	return r, nil
}

// WriteSummary prints a one-line description of the run.
func (r Report) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "Last run %s (%s, %s): %d of %d combinations generated.\n",
		r.RunID, r.Collection, r.Mode, r.Sizes.Generated+r.Sizes.Resumed, r.Sizes.AdjustedMax)
}
