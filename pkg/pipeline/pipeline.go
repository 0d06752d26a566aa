// Package pipeline provides the generate → render pipeline for scatter.
//
// The CLI and the HTTP server both go through this package, so defaults,
// validation and caching behave the same at every entry point.
//
// # Architecture
//
// The pipeline has two stages plus an editing path:
//
//  1. Generate: draw a composition from a seed and options, then apply the
//     background
//  2. Render: produce artifacts in the requested formats (SVG, JSON, PNG,
//     PDF, preview)
//  3. Edit: recover a composition from a rendered SVG, apply edit ops and
//     render it again
//
// Generation is deterministic, so compositions are cached under a key
// derived from the normalized options. Artifacts are cached by composition
// hash and format.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Config:  generate.Config{Seed: generate.Seed(42)},
//	    Formats: []string{"svg", "png"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Editing a rendered document:
//
//	result, err := runner.Edit(ctx, svg, edit.Op{Op: edit.OpMove, Shape: "shape-1", X: 10, Y: 20})
package pipeline

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scatter/pkg/cache"
	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/codec"
	"github.com/matzehuels/scatter/pkg/core/edit"
	"github.com/matzehuels/scatter/pkg/core/generate"
	"github.com/matzehuels/scatter/pkg/core/render/sink"
	"github.com/matzehuels/scatter/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultScale is the raster density for PNG and preview output.
const DefaultScale = 2.0

// Format constants for output formats.
const (
	FormatSVG     = "svg"
	FormatJSON    = "json"
	FormatPNG     = "png"
	FormatPDF     = "pdf"
	FormatPreview = "preview"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:     true,
	FormatJSON:    true,
	FormatPNG:     true,
	FormatPDF:     true,
	FormatPreview: true,
}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatSVG:     "image/svg+xml",
	FormatJSON:    "application/json",
	FormatPNG:     "image/png",
	FormatPDF:     "application/pdf",
	FormatPreview: "image/png",
}

// Extension returns the file extension for format, including the dot.
func Extension(format string) string {
	if format == FormatPreview {
		return ".png"
	}
	return "." + format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run. It is decoded from
// API request bodies and from the CLI settings file.
type Options struct {
	generate.Config

	// Background is applied after generation. Nil leaves the canvas white.
	Background *codec.BackgroundJSON `json:"background,omitempty" toml:"background,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty" toml:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty" toml:"scale,omitzero"`
	Native  bool     `json:"native,omitempty" toml:"native,omitempty"` // PNG via the built-in rasterizer

	// Refresh bypasses the composition cache lookup.
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Composition is the generated (or edited) composition.
	Composition art.Composition

	// Hash is the content hash of the composition's JSON form.
	Hash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ShapeCount   int
	GenerateTime time.Duration
	EditTime     time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GenerateHit bool // Whether the composition came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, json, png, pdf, preview)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePatterns checks that every name is a known pattern.
func ValidatePatterns(names []string) error {
	for _, name := range names {
		if !art.IsPattern(name) {
			return errors.New(errors.ErrCodeInvalidPattern,
				"unknown pattern %q (must be one of: %s)", name, strings.Join(art.Patterns, ", "))
		}
	}
	return nil
}

// ValidatePlacement checks that p names a placement mode. Empty is allowed.
func ValidatePlacement(p generate.Placement) error {
	switch p {
	case "", generate.PlacementSpread, generate.PlacementBounded:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid placement: %q (must be spread or bounded)", p)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults for the
// full pipeline. Numeric generator settings are never rejected; generate
// clamps them. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.SetGenerateDefaults()
	o.validated = true
	return nil
}

// ValidateForGenerate checks the generator and background settings.
func (o *Options) ValidateForGenerate() error {
	if err := ValidatePatterns(o.Patterns); err != nil {
		return err
	}
	for _, c := range o.Colors {
		if err := errors.ValidateColor(c); err != nil {
			return err
		}
	}
	if err := ValidatePlacement(o.Placement); err != nil {
		return err
	}
	if _, err := o.background(); err != nil {
		return err
	}
	return nil
}

// SetGenerateDefaults normalizes the generator config. It resolves the seed,
// so the options name exactly one composition afterwards.
func (o *Options) SetGenerateDefaults() {
	o.Config = o.Config.WithDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender sets render defaults and checks formats and scale.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 || math.IsNaN(o.Scale) || math.IsInf(o.Scale, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid scale: %v", o.Scale)
	}
	return nil
}

// background resolves the Background option into the value applied after
// generation. A missing color falls back to sink.DefaultBackground.
func (o *Options) background() (*art.Background, error) {
	if o.Background == nil {
		return nil, nil
	}
	bg := o.Background.Background()
	if bg.Color == "" {
		bg.Color = sink.DefaultBackground
	}
	var scratch art.Composition
	if err := edit.SetBackground(&scratch, bg); err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	return scratch.Background, nil
}

// CompositionKeyOpts returns cache key options for generation. Call after
// SetGenerateDefaults so equivalent options share a key.
func (o *Options) CompositionKeyOpts() cache.CompositionKeyOpts {
	bg, _ := o.background()
	return cache.CompositionKeyOpts{
		Config:     o.Config,
		Background: bg,
	}
}

// ArtifactKeyOpts returns cache key options for rendering one format.
// Scale and Native only take part where they change the output.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatPNG:
		opts.Scale = o.Scale
		opts.Native = o.Native
	case FormatPreview:
		opts.Scale = o.Scale
	}
	return opts
}
