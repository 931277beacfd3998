// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SelectionMode chooses how combinations are picked from the valid space.
type SelectionMode string

const (
	// ModeExhaustive takes the first N valid combinations in row-major order.
	ModeExhaustive SelectionMode = "exhaustive"

	// ModeRandom shuffles the valid combinations and takes the first N.
	ModeRandom SelectionMode = "random"
)

// CrossLayerMode selects the meaning of the three-token exclusion rule
// "<X> <Y> <trait>".
type CrossLayerMode string

const (
	// CrossLayerConditional suppresses layer X only in combinations where
	// layer Y holds the named trait.
	CrossLayerConditional CrossLayerMode = "conditional"

	// CrossLayerLegacy bans every trait of layer X and the named trait of
	// layer Y outright.
	CrossLayerLegacy CrossLayerMode = "legacy"
)

// LayerConfig holds settings for discovering layer directories.
type LayerConfig struct {
	// Dir is the working directory containing "<ordinal> <label>" layers.
	Dir string `json:"dir" yaml:"dir"`

	// IgnoreTraits lists doublestar globs for files that are not traits
	// (default [".*"]).
	IgnoreTraits []string `json:"ignore_traits" yaml:"ignore_traits"`
}

// CanvasConfig holds the pixel dimensions substituted into the template.
// Values are kept as strings and substituted verbatim.
type CanvasConfig struct {
	Width  string `json:"width" yaml:"width"`
	Height string `json:"height" yaml:"height"`
}

// GeneratorConfig holds settings for the collection generator.
type GeneratorConfig struct {
	Layers LayerConfig  `json:"layers" yaml:"layers"`
	Canvas CanvasConfig `json:"canvas" yaml:"canvas"`

	// CollectionName prefixes every display name ("<name> #<i>").
	CollectionName string `json:"collection_name" yaml:"collection_name"`

	// ContentID is the external content identifier referenced by every
	// document. It must end with ContentSuffix.
	ContentID string `json:"content_id" yaml:"content_id"`

	// ContentSuffix is the required ContentID suffix (default "i0").
	ContentSuffix string `json:"content_suffix" yaml:"content_suffix"`

	// Exclusions is the comma-delimited exclusion rule list.
	Exclusions string `json:"exclusions" yaml:"exclusions"`

	// CrossLayer selects the three-token rule semantics (default conditional).
	CrossLayer CrossLayerMode `json:"cross_layer" yaml:"cross_layer"`

	// Mode selects exhaustive or random selection.
	Mode SelectionMode `json:"mode" yaml:"mode"`

	// Size is the number of artifacts to generate. Zero means the adjusted
	// maximum.
	Size int `json:"size" yaml:"size"`

	// Seed seeds the random source in random mode. Zero picks a seed.
	Seed uint64 `json:"seed" yaml:"seed"`

	// TemplatePath is the HTML template file (default "index.html").
	TemplatePath string `json:"template_path" yaml:"template_path"`

	// OutputDir receives the rendered documents (default "collection").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MetadataDir receives OW.json, DM.json, run.yaml, and the manifest
	// (default "marketmetadata").
	MetadataDir string `json:"metadata_dir" yaml:"metadata_dir"`

	// Resume continues the latest unfinished run recorded in the manifest.
	Resume bool `json:"resume" yaml:"resume"`
}

// ExtractorConfig holds settings for the image metadata extractor.
type ExtractorConfig struct {
	// ImagePath is the source PNG (default "stitched_image.png").
	ImagePath string `json:"image_path" yaml:"image_path"`

	// OutputPath is the destination JSON file (default "metadata.json").
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Key is the text chunk keyword holding the JSON (default "Metadata").
	Key string `json:"key" yaml:"key"`
}

// Default values applied by GeneratorConfig.WithDefaults.
const (
	DefaultContentSuffix = "i0"
	DefaultTemplatePath  = "index.html"
	DefaultOutputDir     = "collection"
	DefaultMetadataDir   = "marketmetadata"
)

// WithDefaults returns a copy of cfg with empty fields set to their defaults.
func (cfg GeneratorConfig) WithDefaults() GeneratorConfig {
	if cfg.Layers.Dir == "" {
		cfg.Layers.Dir = "."
	}
	if cfg.Layers.IgnoreTraits == nil {
		cfg.Layers.IgnoreTraits = []string{".*"}
	}
	if cfg.ContentSuffix == "" {
		cfg.ContentSuffix = DefaultContentSuffix
	}
	if cfg.CrossLayer == "" {
		cfg.CrossLayer = CrossLayerConditional
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeExhaustive
	}
	if cfg.TemplatePath == "" {
		cfg.TemplatePath = DefaultTemplatePath
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.MetadataDir == "" {
		cfg.MetadataDir = DefaultMetadataDir
	}
	return cfg
}
