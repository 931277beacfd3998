// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/collection-engine/internal/generate"
	"github.com/pdiddy/collection-engine/internal/prompt"
	"github.com/pdiddy/collection-engine/internal/render"
	"github.com/pdiddy/collection-engine/pkg/types"
)

const exclusionHelp = `Enter exclusions as comma-separated rules:
  "<layer> <trait>"          never use <trait> in layer <layer>
  "<layer> <layer> <trait>"  leave the first layer empty when the second holds <trait>
Example: 2 red, 3 1 night (press Enter for none)`

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a collection of HTML artworks and marketplace metadata",
	Long: `Generate discovers the layer directories, asks for any value not supplied by
flags, config, or environment, and writes one HTML document per trait
combination into the output directory together with OW.json and DM.json.

Size "max" walks every valid combination in order. A number draws that many
distinct combinations at random; pass --seed to make the draw reproducible.
An interrupted run is continued with --resume.`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringSlice("ignore", []string{".*"}, "glob patterns of files in layer directories that are not traits")
	f.String("name", "", "collection name")
	f.String("width", "", "canvas width in pixels")
	f.String("height", "", "canvas height in pixels")
	f.String("content-id", "", "inscription ID of the shared rendering script")
	f.String("content-suffix", types.DefaultContentSuffix, "required suffix of the content ID")
	f.String("exclusions", "", "comma-separated exclusion rules")
	f.String("cross-layer", string(types.CrossLayerConditional), "three-token rule semantics: conditional or legacy")
	f.String("size", "", `"max" for every valid combination or a number for a random sample`)
	f.Uint64("seed", 0, "random seed (0 picks one and records it)")
	f.String("template", types.DefaultTemplatePath, "HTML template path")
	f.String("output-dir", types.DefaultOutputDir, "directory for generated documents")
	f.Bool("resume", false, "continue the latest unfinished run")
	f.BoolP("yes", "y", false, "skip the confirmation prompt")

	for key, flag := range map[string]string{
		"layers.ignore_traits": "ignore",
		"collection_name":      "name",
		"canvas.width":         "width",
		"canvas.height":        "height",
		"content_id":           "content-id",
		"content_suffix":       "content-suffix",
		"exclusions":           "exclusions",
		"cross_layer":          "cross-layer",
		"size":                 "size",
		"seed":                 "seed",
		"template_path":        "template",
		"output_dir":           "output-dir",
		"resume":               "resume",
		"yes":                  "yes",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(generateCmd)
}

// answers records which generator settings were supplied up front and so
// must not be asked for.
type answers struct {
	exclusions bool
	size       bool
	confirmed  bool
}

func generatorConfig() (types.GeneratorConfig, answers, error) {
	cfg := types.GeneratorConfig{
		Layers: types.LayerConfig{
			Dir:          viper.GetString("layers.dir"),
			IgnoreTraits: viper.GetStringSlice("layers.ignore_traits"),
		},
		Canvas: types.CanvasConfig{
			Width:  viper.GetString("canvas.width"),
			Height: viper.GetString("canvas.height"),
		},
		CollectionName: viper.GetString("collection_name"),
		ContentID:      viper.GetString("content_id"),
		ContentSuffix:  viper.GetString("content_suffix"),
		Exclusions:     viper.GetString("exclusions"),
		CrossLayer:     types.CrossLayerMode(viper.GetString("cross_layer")),
		Seed:           viper.GetUint64("seed"),
		TemplatePath:   viper.GetString("template_path"),
		OutputDir:      viper.GetString("output_dir"),
		MetadataDir:    viper.GetString("metadata_dir"),
		Resume:         viper.GetBool("resume"),
	}
	a := answers{
		exclusions: viper.IsSet("exclusions"),
		confirmed:  viper.GetBool("yes"),
	}

	switch cfg.CrossLayer {
	case types.CrossLayerConditional, types.CrossLayerLegacy:
	default:
		return cfg, a, fmt.Errorf("unknown cross-layer mode %q", cfg.CrossLayer)
	}

	if s := viper.GetString("size"); s != "" {
		mode, n, err := parseSize(s)
		if err != nil {
			return cfg, a, fmt.Errorf("--size: %w", err)
		}
		cfg.Mode, cfg.Size = mode, n
		a.size = true
	}
	return cfg, a, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, a, err := generatorConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	if !cfg.Resume {
		p := prompt.New(cmd.InOrStdin(), out)
		var proceed bool
		cfg, proceed, err = collect(p, out, cfg, a, logger)
		if err != nil {
			return err
		}
		if !proceed {
			fmt.Fprintln(out, "Generation cancelled.")
			return nil
		}
	}

	summary, err := generate.Run(ctx, cfg, logger, out)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintf(out, "Interrupted after %d new files; continue with 'generate --resume --layers-dir %s' or run 'metadata rebuild --layers-dir %s'.\n",
			summary.Generated, cfg.Layers.Dir, cfg.Layers.Dir)
	}
	return err
}

// collect asks for every setting not already answered and prints the
// layer and exclusion summaries along the way. It returns false when the
// user declines to continue.
func collect(p *prompt.Prompter, out io.Writer, cfg types.GeneratorConfig, a answers, logger *zap.Logger) (types.GeneratorConfig, bool, error) {
	var err error
	cfg = cfg.WithDefaults()

	if cfg.CollectionName == "" {
		if cfg.CollectionName, err = p.AskUntil("Enter the collection name: ", nonEmpty); err != nil {
			return cfg, false, err
		}
	}
	if cfg.Canvas.Height == "" {
		if cfg.Canvas.Height, err = p.AskUntil("Enter the canvas height: ", positiveInt); err != nil {
			return cfg, false, err
		}
	}
	if cfg.Canvas.Width == "" {
		if cfg.Canvas.Width, err = p.AskUntil("Enter the canvas width: ", positiveInt); err != nil {
			return cfg, false, err
		}
	}
	if !render.ValidContentID(cfg.ContentID, cfg.ContentSuffix) {
		if cfg.ContentID != "" {
			fmt.Fprintln(out, contentIDError(cfg.ContentSuffix))
		}
		validate := func(s string) error {
			if !render.ValidContentID(s, cfg.ContentSuffix) {
				return errors.New(contentIDError(cfg.ContentSuffix))
			}
			return nil
		}
		if cfg.ContentID, err = p.AskUntil("Enter the inscription ID: ", validate); err != nil {
			return cfg, false, err
		}
	}

	plan, err := generate.Discover(cfg.Layers, logger)
	if err != nil {
		return cfg, false, err
	}
	plan.WriteLayers(out)

	if !a.exclusions {
		fmt.Fprintln(out, exclusionHelp)
		if cfg.Exclusions, err = p.Ask("Enter exclusions: "); err != nil {
			return cfg, false, err
		}
	}
	plan.SetExclusions(cfg.Exclusions, cfg.CrossLayer, logger)
	plan.WriteExclusions(out)

	if !a.confirmed {
		ok, err := p.Confirm("Do you want to continue? (y/n): ")
		if err != nil {
			return cfg, false, err
		}
		if !ok {
			return cfg, false, nil
		}
	}

	if !a.size {
		question := fmt.Sprintf("How many would you like to generate? (Enter 'max' for %d or a custom number): ", plan.AdjustedMax())
		answer, err := p.AskUntil(question, func(s string) error {
			_, _, err := parseSize(s)
			return err
		})
		if err != nil {
			return cfg, false, err
		}
		cfg.Mode, cfg.Size, _ = parseSize(answer)
	}
	return cfg, true, nil
}

// parseSize interprets a size answer: "max" selects every valid combination
// in order, a positive integer a random sample of that many.
func parseSize(s string) (types.SelectionMode, int, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "max") {
		return types.ModeExhaustive, 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return "", 0, fmt.Errorf("please enter 'max' or a positive number, got %q", s)
	}
	return types.ModeRandom, n, nil
}

func contentIDError(suffix string) string {
	return fmt.Sprintf("Invalid inscription ID. It must end with '%s'.", suffix)
}

func nonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("a value is required")
	}
	return nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("please enter a positive whole number, got %q", s)
	}
	return nil
}
