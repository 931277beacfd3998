// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate runs the collection generator: it selects trait
// combinations, renders one document per combination, records every
// artifact in the run manifest, and writes the marketplace metadata.
package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/collection-engine/internal/combine"
	"github.com/pdiddy/collection-engine/internal/manifest"
	"github.com/pdiddy/collection-engine/internal/market"
	"github.com/pdiddy/collection-engine/internal/render"
	"github.com/pdiddy/collection-engine/pkg/types"
)

// ErrRunFinished is returned when a resume is requested but the latest
// run already completed.
var ErrRunFinished = errors.New("latest run already finished")

// Summary holds the outcome of a generation run.
type Summary struct {
	RunID       string
	Generated   int
	Resumed     int
	Duplicates  int
	OutputDir   string
	MetadataDir string
}

// Total returns the number of artifacts in the collection, including
// those carried over from an interrupted run.
func (s Summary) Total() int {
	return s.Generated + s.Resumed
}

// Paths resolves the template, output, and metadata locations of cfg.
// Relative paths are taken relative to the layer directory.
func Paths(cfg types.GeneratorConfig) (template, output, metadata string) {
	cfg = cfg.WithDefaults()
	return resolve(cfg.Layers.Dir, cfg.TemplatePath),
		resolve(cfg.Layers.Dir, cfg.OutputDir),
		resolve(cfg.Layers.Dir, cfg.MetadataDir)
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Run generates the collection described by cfg. Progress is written to w
// and diagnostics to logger. With cfg.Resume set, the latest unfinished
// run in the manifest is continued using its stored configuration.
func Run(ctx context.Context, cfg types.GeneratorConfig, logger *zap.Logger, w io.Writer) (Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.WithDefaults()
	tmplPath, outputDir, metadataDir := Paths(cfg)

	openStore := manifest.Open
	if cfg.Resume {
		openStore = manifest.OpenExisting
	}
	store, err := openStore(metadataDir)
	if err != nil {
		return Summary{}, err
	}
	defer store.Close()

	run, prior, resumed, err := startRun(ctx, store, cfg)
	if err != nil {
		return Summary{}, err
	}
	cfg = run.Config
	if resumed {
		tmplPath, outputDir, _ = Paths(cfg)
	}

	if !render.ValidContentID(cfg.ContentID, cfg.ContentSuffix) {
		return Summary{}, fmt.Errorf("content identifier %q must end with %q", cfg.ContentID, cfg.ContentSuffix)
	}

	tmpl, fromFile, err := render.Load(tmplPath)
	if err != nil {
		return Summary{}, err
	}
	if !fromFile {
		logger.Info("template not found, using built-in skeleton", zap.String("path", tmplPath))
	}

	plan, err := Prepare(cfg, logger)
	if err != nil {
		return Summary{}, err
	}

	var rng *rand.Rand
	if cfg.Mode == types.ModeRandom {
		rng = combine.NewRand(run.Seed)
	}
	selected, err := combine.Select(plan.Space, plan.Exclusions, cfg.Size, cfg.Mode, rng)
	if err != nil {
		return Summary{}, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating output directory: %w", err)
	}

	if !resumed {
		if err := store.Begin(ctx, run); err != nil {
			return Summary{}, err
		}
	}

	summary := Summary{
		RunID:       run.ID,
		Resumed:     len(prior),
		OutputDir:   outputDir,
		MetadataDir: metadataDir,
	}

	var collector market.Collector
	emitted := make(map[string]bool, len(prior))
	index := 1
	for _, e := range prior {
		collector.Add(cfg.CollectionName, e.Index, e.Traits)
		emitted[e.Key] = true
		index = e.Index + 1
	}

	seen := make(map[string]bool, len(selected))

	for _, c := range selected {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		key := c.Key()
		if seen[key] {
			summary.Duplicates++
			logger.Warn("skipping duplicate combination", zap.String("key", key))
			continue
		}
		seen[key] = true
		if emitted[key] {
			continue
		}

		traits := types.ResolveTraits(plan.Layers, c)
		fmt.Fprintf(w, "Generating file #%d with traits: %s\n", index, formatTraits(traits))

		docCtx := render.Context{
			Title:      render.Title(cfg.CollectionName, index),
			Width:      cfg.Canvas.Width,
			Height:     cfg.Canvas.Height,
			ContentID:  cfg.ContentID,
			TraitIndex: key,
		}
		path, err := render.WriteDocument(outputDir, index, tmpl, docCtx)
		if err != nil {
			return summary, fmt.Errorf("writing artifact %d: %w", index, err)
		}

		entry := manifest.Entry{
			Index:  index,
			Key:    key,
			Name:   docCtx.Title,
			Traits: traits,
			File:   filepath.Base(path),
		}
		// The document is on disk; record it even if ctx was cancelled meanwhile.
		if err := store.Record(context.WithoutCancel(ctx), run.ID, entry); err != nil {
			return summary, err
		}
		collector.Add(cfg.CollectionName, index, traits)
		summary.Generated++
		index++
	}

	if err := collector.WriteFiles(metadataDir); err != nil {
		return summary, err
	}
	if err := store.Finish(ctx, run.ID); err != nil {
		return summary, err
	}

	report := newReport(run, plan, summary, time.Now())
	if err := WriteReport(filepath.Join(metadataDir, ReportFile), report); err != nil {
		logger.Warn("run report write failed", zap.Error(err))
	}

	fmt.Fprintf(w, "Generated %d HTML files in the '%s' directory.\n", summary.Total(), outputDir)
	fmt.Fprintf(w, "Generated %s and %s in the '%s' directory.\n", market.OWFile, market.DMFile, metadataDir)
	return summary, nil
}

// startRun returns the run to execute. A fresh run gets a new ID and, in
// random mode, a seed. A resumed run comes from the manifest together with
// the artifacts it already wrote.
func startRun(ctx context.Context, store *manifest.Store, cfg types.GeneratorConfig) (run manifest.Run, prior []manifest.Entry, resumed bool, err error) {
	if !cfg.Resume {
		seed := cfg.Seed
		if cfg.Mode == types.ModeRandom && seed == 0 {
			seed = rand.Uint64()
		}
		stored := cfg
		stored.Seed = seed
		return manifest.Run{
			ID:         uuid.NewString(),
			Collection: cfg.CollectionName,
			Mode:       cfg.Mode,
			Seed:       seed,
			Config:     stored,
			StartedAt:  time.Now(),
		}, nil, false, nil
	}

	run, err = store.LatestRun(ctx)
	if err != nil {
		return manifest.Run{}, nil, false, err
	}
	if run.Finished() {
		return manifest.Run{}, nil, false, fmt.Errorf("%w: %s", ErrRunFinished, run.ID)
	}
	prior, err = store.Artifacts(ctx, run.ID)
	if err != nil {
		return manifest.Run{}, nil, false, err
	}
	run.Config.Seed = run.Seed
	run.Config = run.Config.WithDefaults()
	return run, prior, true, nil
}

func formatTraits(traits []types.LayerTrait) string {
	parts := make([]string, len(traits))
	for i, t := range traits {
		parts[i] = t.TraitType + "=" + t.Value
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
