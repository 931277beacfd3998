// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/collection-engine/internal/generate"
	"github.com/pdiddy/collection-engine/pkg/types"
)

var layersCmd = &cobra.Command{
	Use:   "layers [dir]",
	Short: "List layer directories, trait counts, and the combination space size",
	Long: `Layers prints the discovered layer directories with their trait counts and
the size of the full combination space. When exclusions are configured the
adjusted maximum is printed too, and when the metadata directory holds a run
report the last run is summarized.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := types.GeneratorConfig{
			Layers: types.LayerConfig{
				Dir:          viper.GetString("layers.dir"),
				IgnoreTraits: viper.GetStringSlice("layers.ignore_traits"),
			},
			MetadataDir: viper.GetString("metadata_dir"),
		}
		if len(args) == 1 {
			cfg.Layers.Dir = args[0]
		}
		cfg = cfg.WithDefaults()

		out := cmd.OutOrStdout()
		plan, err := generate.Discover(cfg.Layers, logger)
		if err != nil {
			return err
		}
		plan.WriteLayers(out)

		if rules := viper.GetString("exclusions"); rules != "" {
			plan.SetExclusions(rules, types.CrossLayerMode(viper.GetString("cross_layer")), logger)
			plan.WriteExclusions(out)
		}

		_, _, metadataDir := generate.Paths(cfg)
		report, err := generate.ReadReport(filepath.Join(metadataDir, generate.ReportFile))
		switch {
		case err == nil:
			report.WriteSummary(out)
		case !errors.Is(err, fs.ErrNotExist):
			logger.Warn("run report unreadable", zap.Error(err))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(layersCmd)
}
