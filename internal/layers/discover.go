// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layers discovers trait layers in a working directory. A layer is
// a subdirectory named "<ordinal> <label>"; every regular file inside it is
// one trait.
package layers

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/pdiddy/collection-engine/pkg/types"
)

// ErrNoLayers is returned when a directory holds no valid layer directories.
var ErrNoLayers = errors.New("no layer directories found")

// layerDirPattern matches "<digits><whitespace><label>".
var layerDirPattern = regexp.MustCompile(`^(\d+)\s+(\S.*)$`)

// ParseDirName splits a layer directory name into its numeric order and
// label. ok is false when the name does not follow "<ordinal> <label>".
func ParseDirName(name string) (order int, label string, ok bool) {
	m := layerDirPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, "", false
	}
	order, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return order, strings.TrimSpace(m[2]), true
}

// Discover scans dir for layer directories and returns them sorted by
// their parsed ordinal (directory name breaks ties), with Ordinal set to
// the 1-based position. Directories that do not match the naming contract
// are skipped with a warning. Files whose names match any ignore glob are
// not counted as traits.
func Discover(dir string, ignore []string, logger *zap.Logger) ([]types.Layer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, pattern := range ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading layer directory %s: %w", dir, err)
	}

	var layers []types.Layer
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		order, label, ok := ParseDirName(name)
		if !ok {
			// Only numbered names are candidates; plain directories such as
			// the output directories are silently ignored.
			if startsWithDigit(name) {
				logger.Warn("skipping invalid layer directory name", zap.String("dir", name))
			}
			continue
		}

		traits, err := listTraits(filepath.Join(dir, name), ignore)
		if err != nil {
			return nil, err
		}
		layers = append(layers, types.Layer{
			Dir:    name,
			Order:  order,
			Name:   label,
			Traits: traits,
		})
	}

	if len(layers) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoLayers, dir)
	}

	slices.SortStableFunc(layers, func(a, b types.Layer) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), strings.Compare(a.Dir, b.Dir))
	})
	for i := range layers {
		layers[i].Ordinal = i + 1
		logger.Debug("discovered layer",
			zap.Int("ordinal", layers[i].Ordinal),
			zap.String("dir", layers[i].Dir),
			zap.Int("traits", layers[i].TraitCount()))
	}
	return layers, nil
}

// listTraits returns the regular files of a layer directory, including
// symlinks to regular files, sorted by name and numbered from 1.
func listTraits(dir string, ignore []string) ([]types.Trait, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading layer %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !isFile(dir, entry) {
			continue
		}
		if ignored(entry.Name(), ignore) {
			continue
		}
		files = append(files, entry.Name())
	}
	slices.Sort(files)

	traits := make([]types.Trait, len(files))
	for i, f := range files {
		traits[i] = types.Trait{
			Index: i + 1,
			Value: strings.TrimSuffix(f, filepath.Ext(f)),
			File:  f,
		}
	}
	return traits, nil
}

// isFile reports whether entry is a regular file, following symlinks.
func isFile(dir string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}

func ignored(name string, patterns []string) bool {
	for _, p := range patterns {
		if match, _ := doublestar.Match(p, name); match {
			return true
		}
	}
	return false
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
