package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/scatter/pkg/io"
	"github.com/matzehuels/scatter/pkg/pipeline"
)

// renderCommand creates the render command for re-rendering a saved
// composition.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:     "render [file]",
		Aliases: []string{"export"},
		Short:   "Render a saved composition to other formats",
		Long: `Render a saved composition to other formats.

The input is an SVG written by scatter (its embedded state is decoded) or a
composition JSON file. Rendering is deterministic, so re-rendering an SVG
to SVG reproduces it byte for byte.

Results are cached locally for faster subsequent runs.`,
		Example: `  scatter render art.svg -f png --scale 3
  scatter render art.svg -f json,pdf -o out/art
  scatter export art.json -f preview`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, png, pdf, preview (comma-separated)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "raster scale for png and preview")
	cmd.Flags().BoolVar(&opts.Native, "native", false, "rasterize png with the built-in renderer instead of rsvg-convert")

	return cmd
}

// runRender loads the composition and renders it.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	comp, err := pkgio.ImportComposition(input)
	if err != nil {
		return fmt.Errorf("load composition %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, comp, opts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if err := writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
	}); err != nil {
		return err
	}
	printStats(comp, cacheHit)
	return nil
}

// artifactWriteParams describes rendered artifacts to write.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string // names outputs when output is empty
	output    string
}

// writeArtifacts writes each format in order and prints its path.
func writeArtifacts(p artifactWriteParams) error {
	paths := outputPaths(p.output, p.input, p.formats)
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("no %s artifact rendered", format)
		}
		if err := pkgio.WriteFile(paths[format], data); err != nil {
			return err
		}
		printFile(paths[format])
	}
	return nil
}
