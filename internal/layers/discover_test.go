// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeLayer(t *testing.T, root, dir string, files ...string) {
	t.Helper()
	path := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(path, 0o755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(path, f), []byte("x"), 0o644))
	}
}

func TestParseDirName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantOrder int
		wantLabel string
		wantOK    bool
	}{
		{"simple", "1 Background", 1, "Background", true},
		{"multi word label", "02 Eye Color", 2, "Eye Color", true},
		{"large ordinal", "10 Hat", 10, "Hat", true},
		{"no label", "3", 0, "", false},
		{"no delimiter", "3Hat", 0, "", false},
		{"non numeric", "Hat 3", 0, "", false},
		{"empty", "", 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, label, ok := ParseDirName(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantOrder, order)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}

func TestDiscoverSortsByParsedOrdinal(t *testing.T) {
	root := t.TempDir()
	writeLayer(t, root, "10 Hat", "cap.png", "crown.png")
	writeLayer(t, root, "2 Body", "blue.png", "green.png", "red.png")
	writeLayer(t, root, "1 Background", "night.png")

	layers, err := Discover(root, nil, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, layers, 3)

	assert.Equal(t, "1 Background", layers[0].Dir)
	assert.Equal(t, "2 Body", layers[1].Dir)
	assert.Equal(t, "10 Hat", layers[2].Dir, "lexicographic order would put 10 before 2")

	for i, l := range layers {
		assert.Equal(t, i+1, l.Ordinal)
	}
	assert.Equal(t, "Body", layers[1].Name)
	assert.Equal(t, 3, layers[1].TraitCount())
}

func TestDiscoverTraitsSortedAndIndexed(t *testing.T) {
	root := t.TempDir()
	writeLayer(t, root, "1 Color", "red.png", "blue.png", "green.jpg")

	layers, err := Discover(root, nil, zap.NewNop())
	require.NoError(t, err)

	traits := layers[0].Traits
	require.Len(t, traits, 3)
	assert.Equal(t, "blue", traits[0].Value)
	assert.Equal(t, 1, traits[0].Index)
	assert.Equal(t, "green", traits[1].Value)
	assert.Equal(t, "green.jpg", traits[1].File)
	assert.Equal(t, "red", traits[2].Value)
	assert.Equal(t, 3, traits[2].Index)
}

func TestDiscoverSkipsInvalidNames(t *testing.T) {
	root := t.TempDir()
	writeLayer(t, root, "1 Background", "a.png")
	writeLayer(t, root, "2", "b.png")
	writeLayer(t, root, "collection")
	writeLayer(t, root, "3Hat", "c.png")

	core, logs := observer.New(zapcore.WarnLevel)
	layers, err := Discover(root, nil, zap.New(core))
	require.NoError(t, err)

	require.Len(t, layers, 1)
	assert.Equal(t, "1 Background", layers[0].Dir)
	assert.Equal(t, 2, logs.FilterMessage("skipping invalid layer directory name").Len())
}

func TestDiscoverIgnoresFilesAndSubdirs(t *testing.T) {
	root := t.TempDir()
	writeLayer(t, root, "1 Background", "a.png", "b.png", ".DS_Store", "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(root, "1 Background", "nested"), 0o755))

	layers, err := Discover(root, []string{".*", "*.txt"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, layers[0].TraitCount())

	layers, err = Discover(root, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 4, layers[0].TraitCount(), "without ignore globs every regular file is a trait")
}

func TestDiscoverFollowsSymlinkedTraits(t *testing.T) {
	root := t.TempDir()
	shared := filepath.Join(root, "shared")
	writeLayer(t, root, "shared", "gold.png")
	writeLayer(t, root, "1 Hat", "cap.png")
	require.NoError(t, os.Symlink(filepath.Join(shared, "gold.png"), filepath.Join(root, "1 Hat", "crown.png")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing.png"), filepath.Join(root, "1 Hat", "broken.png")))
	require.NoError(t, os.Symlink(shared, filepath.Join(root, "1 Hat", "linkdir")))

	layers, err := Discover(root, nil, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, layers, 1)

	traits := layers[0].Traits
	require.Len(t, traits, 2, "dangling links and links to directories are not traits")
	assert.Equal(t, "cap", traits[0].Value)
	assert.Equal(t, "crown", traits[1].Value)
	assert.Equal(t, 2, traits[1].Index)
}

func TestDiscoverInvalidIgnorePattern(t *testing.T) {
	root := t.TempDir()
	writeLayer(t, root, "1 Background", "a.png")

	_, err := Discover(root, []string{"[unclosed"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ignore pattern")
}

func TestDiscoverNoLayers(t *testing.T) {
	root := t.TempDir()
	writeLayer(t, root, "collection")

	_, err := Discover(root, nil, nil)
	require.ErrorIs(t, err, ErrNoLayers)
}

func TestDiscoverMissingDirectory(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), nil, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoLayers)
}
