package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/codec"
	"github.com/matzehuels/scatter/pkg/core/generate"
	pkgio "github.com/matzehuels/scatter/pkg/io"
	"github.com/matzehuels/scatter/pkg/pipeline"
	"github.com/matzehuels/scatter/pkg/store"
)

// generateFlags holds the command-line flags for the generate command.
// Generator and background flags only take effect when given; otherwise the
// settings file (and then the generator defaults) decide.
type generateFlags struct {
	width, height    int
	shapes           int
	seed             uint32
	minSize, maxSize int
	minTexture       float64
	maxTexture       float64
	spread           float64
	rotation         bool
	patterns         []string
	colors           []string
	stamps           string // stamp pool file
	placement        string

	bgColor   string
	bgTexture string
	bgPattern string
	bgInk     string
	bgScale   float64
	bgStamps  string // stamp pool file; the first stamp is used

	formats string
	output  string
	scale   float64
	native  bool
	noCache bool
	refresh bool
	save    bool
	store   string
	name    string
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate a composition",
		Long: `Generate a seeded composition and write it as SVG, JSON, PNG, PDF or a
native PNG preview.

The same seed and options always produce the same composition. Without
--seed a seed is drawn from the clock and reported, so a result can be
reproduced later. Flags override the [generate] section of the settings
file; --save writes the effective options back to it.

The SVG embeds the full composition, so it can be edited with 'scatter edit'
or 'scatter tui' and re-rendered with 'scatter render'.`,
		Example: `  scatter generate --seed 42
  scatter generate --seed 7 --width 800 --height 800 --patterns dots,stripes -f svg,png
  scatter generate --stamps pool.json --placement bounded -o art.svg
  scatter generate --bg-color "#101820" --bg-texture pattern --bg-pattern hatch --bg-ink "#ffffff"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			opts := settings.Generate
			if err := f.apply(cmd.Flags(), &opts); err != nil {
				return err
			}
			chosen := opts
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			if err := c.runGenerate(cmd.Context(), opts, &f); err != nil {
				return err
			}
			if f.save {
				settings.Generate = chosen
				settings.Generate.Formats = nil
				if err := saveSettings(settings); err != nil {
					return err
				}
				printDetail("Saved options to settings")
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.width, "width", generate.DefaultWidth, "canvas width")
	fl.IntVar(&f.height, "height", generate.DefaultHeight, "canvas height")
	fl.IntVarP(&f.shapes, "shapes", "n", generate.DefaultShapeCount, "base shape count (30% more are added as decoration)")
	fl.Uint32VarP(&f.seed, "seed", "s", 0, "random seed (default: derived from the clock)")
	fl.IntVar(&f.minSize, "min-size", generate.DefaultMinSize, "minimum shape size")
	fl.IntVar(&f.maxSize, "max-size", generate.DefaultMaxSize, "maximum shape size")
	fl.Float64Var(&f.minTexture, "min-texture-scale", generate.DefaultMinTextureScale, "minimum pattern scale")
	fl.Float64Var(&f.maxTexture, "max-texture-scale", generate.DefaultMaxTextureScale, "maximum pattern scale")
	fl.Float64Var(&f.spread, "spread", generate.DefaultSpread, "placement extent (1 fills the canvas)")
	fl.BoolVar(&f.rotation, "rotation", true, "draw random rotations")
	fl.StringSliceVar(&f.patterns, "patterns", nil, "pattern pool: "+strings.Join(art.Patterns, ", "))
	fl.StringSliceVar(&f.colors, "colors", nil, "color pool (comma-separated)")
	fl.StringVar(&f.stamps, "stamps", "", "stamp pool file; every shape becomes a stamp")
	fl.StringVar(&f.placement, "placement", "", "placement: spread (default), bounded")

	fl.StringVar(&f.bgColor, "bg-color", "", "background color")
	fl.StringVar(&f.bgTexture, "bg-texture", "", "background texture: solid, pattern, stamp")
	fl.StringVar(&f.bgPattern, "bg-pattern", "", "background pattern (with --bg-texture pattern)")
	fl.StringVar(&f.bgInk, "bg-ink", "", "color of the background motif")
	fl.Float64Var(&f.bgScale, "bg-texture-scale", 1, "background motif scale")
	fl.StringVar(&f.bgStamps, "bg-stamp", "", "stamp pool file for the background motif (with --bg-texture stamp)")

	fl.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), json, png, pdf, preview (comma-separated)")
	fl.StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	fl.Float64Var(&f.scale, "scale", pipeline.DefaultScale, "raster scale for png and preview")
	fl.BoolVar(&f.native, "native", false, "rasterize png with the built-in renderer instead of rsvg-convert")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fl.BoolVar(&f.refresh, "refresh", false, "regenerate even when the composition is cached")
	fl.BoolVar(&f.save, "save", false, "save the generator options to the settings file")
	fl.StringVar(&f.store, "store", "", "also store the SVG in a document store (e.g. scatter.db, mongodb://...)")
	fl.StringVar(&f.name, "name", "", "document name (with --store)")

	return cmd
}

// apply copies every flag the user set onto opts.
func (f *generateFlags) apply(fs *pflag.FlagSet, opts *pipeline.Options) error {
	changed := fs.Changed
	cfg := &opts.Config

	if changed("width") {
		cfg.Width = f.width
	}
	if changed("height") {
		cfg.Height = f.height
	}
	if changed("shapes") {
		cfg.ShapeCount = f.shapes
	}
	if changed("seed") {
		cfg.Seed = generate.Seed(f.seed)
	}
	if changed("min-size") {
		cfg.MinSize = f.minSize
	}
	if changed("max-size") {
		cfg.MaxSize = f.maxSize
	}
	if changed("min-texture-scale") {
		cfg.MinTextureScale = f.minTexture
	}
	if changed("max-texture-scale") {
		cfg.MaxTextureScale = f.maxTexture
	}
	if changed("spread") {
		cfg.Spread = f.spread
	}
	if changed("rotation") {
		cfg.RandomRotation = generate.Bool(f.rotation)
	}
	if changed("patterns") {
		cfg.Patterns = f.patterns
	}
	if changed("colors") {
		cfg.Colors = f.colors
	}
	if changed("placement") {
		cfg.Placement = generate.Placement(f.placement)
	}
	if f.stamps != "" {
		stamps, err := pkgio.ImportStamps(f.stamps)
		if err != nil {
			return err
		}
		cfg.Stamps = stamps
	}

	if err := f.applyBackground(fs, opts); err != nil {
		return err
	}

	opts.Formats = parseFormats(f.formats)
	if changed("scale") {
		opts.Scale = f.scale
	}
	if changed("native") {
		opts.Native = f.native
	}
	opts.Refresh = f.refresh
	return nil
}

// applyBackground builds the background from the --bg-* flags on top of
// the one from the settings file.
func (f *generateFlags) applyBackground(fs *pflag.FlagSet, opts *pipeline.Options) error {
	touched := false
	for _, name := range []string{"bg-color", "bg-texture", "bg-pattern", "bg-ink", "bg-texture-scale", "bg-stamp"} {
		touched = touched || fs.Changed(name)
	}
	if !touched {
		return nil
	}

	bg := codec.BackgroundJSON{}
	if opts.Background != nil {
		bg = *opts.Background
	}
	if fs.Changed("bg-color") {
		bg.Color = f.bgColor
	}
	if fs.Changed("bg-texture") {
		bg.Texture = art.Texture(f.bgTexture)
	}
	if fs.Changed("bg-pattern") {
		bg.Pattern = f.bgPattern
	}
	if fs.Changed("bg-ink") {
		bg.Ink = f.bgInk
	}
	if fs.Changed("bg-texture-scale") {
		scale := f.bgScale
		bg.TextureScale = &scale
	}
	if f.bgStamps != "" {
		stamps, err := pkgio.ImportStamps(f.bgStamps)
		if err != nil {
			return err
		}
		if len(stamps) == 0 {
			return fmt.Errorf("stamp pool %s is empty", f.bgStamps)
		}
		st := stamps[0]
		bg.Path, bg.StampWidth, bg.StampHeight, bg.Resolution = st.Path, st.Width, st.Height, st.Resolution
	}
	opts.Background = &bg
	return nil
}

// runGenerate executes the pipeline and writes the requested artifacts.
func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, f *generateFlags) error {
	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	seed := opts.Config.Seed

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating seed %d...", *seed))
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	comp := res.Composition
	if err := writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   opts.Formats,
		input:     fmt.Sprintf("scatter-%d", comp.Meta.Seed),
		output:    f.output,
	}); err != nil {
		return err
	}
	printStats(comp, res.CacheInfo.GenerateHit)
	printKeyValue("Seed", StyleNumber.Render(fmt.Sprint(comp.Meta.Seed)))

	if f.store != "" {
		id, err := storeDocument(ctx, f.store, f.name, res)
		if err != nil {
			return err
		}
		printKeyValue("Document", StyleHighlight.Render(id))
	}
	return nil
}

// storeDocument saves the SVG artifact to the store described by dsn.
func storeDocument(ctx context.Context, dsn, name string, res *pipeline.Result) (string, error) {
	svg, ok := res.Artifacts[pipeline.FormatSVG]
	if !ok {
		return "", fmt.Errorf("--store needs the svg format")
	}
	st, err := store.Open(ctx, dsn)
	if err != nil {
		return "", fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	meta := res.Composition.Meta
	doc := &store.Document{
		Name:       name,
		SVG:        svg,
		Seed:       meta.Seed,
		Width:      meta.Width,
		Height:     meta.Height,
		ShapeCount: len(res.Composition.Shapes),
	}
	done := timed(ctx, "store", "dsn", dsn, "bytes", len(svg))
	err = store.Instrument(st).Put(ctx, doc)
	done(err)
	if err != nil {
		return "", err
	}
	return doc.ID, nil
}
