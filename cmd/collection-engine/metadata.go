// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/collection-engine/internal/generate"
	"github.com/pdiddy/collection-engine/internal/pngmeta"
	"github.com/pdiddy/collection-engine/pkg/types"
)

const (
	defaultImage  = "stitched_image.png"
	defaultOutput = "metadata.json"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Work with collection metadata",
}

var metadataExtractCmd = &cobra.Command{
	Use:   "extract [image] [output]",
	Short: "Copy the JSON metadata embedded in a PNG into a file",
	Long: `Extract reads the text chunk named by --key (default "Metadata") from a PNG
image and writes its JSON content, indented by two spaces, to the output
file. The image defaults to stitched_image.png and the output to
metadata.json.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := types.ExtractorConfig{
			ImagePath:  defaultImage,
			OutputPath: defaultOutput,
			Key:        viper.GetString("extract.key"),
		}
		if len(args) > 0 {
			cfg.ImagePath = args[0]
		}
		if len(args) > 1 {
			cfg.OutputPath = args[1]
		}
		_, err := pngmeta.Extract(cfg.ImagePath, cfg.OutputPath, cfg.Key, cmd.OutOrStdout())
		return err
	},
}

var metadataRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rewrite OW.json and DM.json from the run manifest",
	Long: `Rebuild reads the latest run recorded in the metadata directory's manifest
and rewrites OW.json and DM.json from the artifacts it lists. Use it after an
interrupted generate run to get metadata matching the documents on disk.
Pass the same --layers-dir and --metadata-dir as the generate run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := types.GeneratorConfig{
			Layers:      types.LayerConfig{Dir: viper.GetString("layers.dir")},
			MetadataDir: viper.GetString("metadata_dir"),
		}.WithDefaults()
		_, _, metadataDir := generate.Paths(cfg)
		_, err := generate.Rebuild(cmd.Context(), metadataDir, cmd.OutOrStdout())
		return err
	},
}

func init() {
	metadataExtractCmd.Flags().String("key", pngmeta.DefaultKey, "PNG text chunk keyword holding the metadata")
	_ = viper.BindPFlag("extract.key", metadataExtractCmd.Flags().Lookup("key"))

	metadataCmd.AddCommand(metadataExtractCmd)
	metadataCmd.AddCommand(metadataRebuildCmd)
	rootCmd.AddCommand(metadataCmd)
}
