// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the collection-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/collection-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger receives diagnostics (skipped layers, rejected rules). It is
// replaced in PersistentPreRunE once flags are parsed.
var logger = zap.NewNop()

// rootCmd is the base command for the collection-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "collection-engine",
	Short: "Generate HTML artwork collections from layered traits",
	Long: `collection-engine builds generative artwork collections from directories of
pre-sliced trait layers. Each layer is a directory named "<ordinal> <label>";
every file inside is one trait.

The generate command combines one trait per layer, applies exclusion rules,
renders one HTML document per combination into collection/, and writes
marketplace metadata (OW.json, DM.json) into marketmetadata/.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./collection-engine.yaml or ~/.config/collection-engine/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug diagnostics")
	rootCmd.PersistentFlags().String("layers-dir", ".", "directory holding the \"<ordinal> <label>\" layer directories; relative output paths resolve against it")
	rootCmd.PersistentFlags().String("metadata-dir", types.DefaultMetadataDir, "directory for OW.json, DM.json, and the run manifest")
	_ = viper.BindPFlag("layers.dir", rootCmd.PersistentFlags().Lookup("layers-dir"))
	_ = viper.BindPFlag("metadata_dir", rootCmd.PersistentFlags().Lookup("metadata-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("collection-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "collection-engine"))
		}
	}

	viper.SetEnvPrefix("COLLECTION_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the console logger used for diagnostics on stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.EncoderConfig.TimeKey = ""
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return l, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
