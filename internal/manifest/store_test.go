// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/collection-engine/pkg/types"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "marketmetadata")
	store, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dir
}

func sampleRun(id string, started time.Time) Run {
	return Run{
		ID:         id,
		Collection: "Pixel Cats",
		Mode:       types.ModeRandom,
		Seed:       1<<63 + 5,
		Config: types.GeneratorConfig{
			CollectionName: "Pixel Cats",
			Exclusions:     "2 red",
			Size:           10,
		},
		StartedAt: started,
	}
}

func TestOpenCreatesSchema(t *testing.T) {
	store, dir := testStore(t)

	_, err := os.Stat(filepath.Join(dir, DBFile))
	require.NoError(t, err)

	for _, table := range []string{"runs", "artifacts"} {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s", table)
	}
}

func TestLatestRunEmpty(t *testing.T) {
	store, _ := testStore(t)
	_, err := store.LatestRun(context.Background())
	require.ErrorIs(t, err, ErrNoRun)
}

func TestOpenExisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "meta")
	_, err := OpenExisting(dir)
	require.ErrorIs(t, err, ErrNoRun)
	assert.NoDirExists(t, dir)

	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = OpenExisting(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	store, _ := testStore(t)

	older := sampleRun("run-1", time.Now().Add(-time.Hour))
	newer := sampleRun("run-2", time.Now())
	require.NoError(t, store.Begin(ctx, older))
	require.NoError(t, store.Begin(ctx, newer))

	latest, err := store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", latest.ID)
	assert.Equal(t, "Pixel Cats", latest.Collection)
	assert.Equal(t, types.ModeRandom, latest.Mode)
	assert.Equal(t, uint64(1<<63+5), latest.Seed, "seeds above MaxInt64 round-trip")
	assert.Equal(t, "2 red", latest.Config.Exclusions)
	assert.False(t, latest.Finished())

	require.NoError(t, store.Finish(ctx, "run-2"))
	latest, err = store.LatestRun(ctx)
	require.NoError(t, err)
	assert.True(t, latest.Finished())

	require.ErrorIs(t, store.Finish(ctx, "missing"), ErrNoRun)
}

func TestRecordAndArtifacts(t *testing.T) {
	ctx := context.Background()
	store, _ := testStore(t)
	require.NoError(t, store.Begin(ctx, sampleRun("run-1", time.Now())))

	second := Entry{Index: 2, Key: "0201", Name: "Pixel Cats #2", File: "00002.html",
		Traits: []types.LayerTrait{{TraitType: "Background", Value: "night"}}}
	first := Entry{Index: 1, Key: "0101", Name: "Pixel Cats #1", File: "00001.html",
		Traits: []types.LayerTrait{{TraitType: "Background", Value: "day"}, {TraitType: "Body", Value: "blue"}}}
	require.NoError(t, store.Record(ctx, "run-1", second))
	require.NoError(t, store.Record(ctx, "run-1", first))

	entries, err := store.Artifacts(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first, entries[0])
	assert.Equal(t, second, entries[1])

	dup := first
	dup.Index = 3
	err = store.Record(ctx, "run-1", dup)
	require.Error(t, err, "a trait key is recorded at most once per run")

	none, err := store.Artifacts(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "meta")

	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Begin(ctx, sampleRun("run-1", time.Now())))
	require.NoError(t, store.Close())

	store, err = Open(dir)
	require.NoError(t, err)
	defer store.Close()
	run, err := store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
}
