// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/collection-engine/internal/manifest"
	"github.com/pdiddy/collection-engine/internal/market"
)

// Rebuild rewrites OW.json and DM.json in metadataDir from the latest run
// recorded in the manifest. It works for finished and interrupted runs
// alike and returns the number of records written.
func Rebuild(ctx context.Context, metadataDir string, w io.Writer) (int, error) {
	store, err := manifest.OpenExisting(metadataDir)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	run, err := store.LatestRun(ctx)
	if err != nil {
		return 0, err
	}
	entries, err := store.Artifacts(ctx, run.ID)
	if err != nil {
		return 0, err
	}

	var collector market.Collector
	for _, e := range entries {
		collector.Add(run.Collection, e.Index, e.Traits)
	}
	if err := collector.WriteFiles(metadataDir); err != nil {
		return 0, err
	}

	state := "finished"
	if !run.Finished() {
		state = "interrupted"
	}
	fmt.Fprintf(w, "Rebuilt %s and %s from %s run %s (%d artifacts).\n",
		market.OWFile, market.DMFile, state, run.ID, collector.Len())
	return collector.Len(), nil
}
