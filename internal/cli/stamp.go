package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/stamp"
	"github.com/matzehuels/scatter/pkg/errors"
	"github.com/matzehuels/scatter/pkg/httputil"
	pkgio "github.com/matzehuels/scatter/pkg/io"
)

// stampCommand creates the stamp command for tracing images into a stamp
// pool.
func (c *CLI) stampCommand() *cobra.Command {
	var (
		opts       stamp.Options
		output     string
		cols, rows int
		appendPool bool
	)

	cmd := &cobra.Command{
		Use:   "stamp [image...]",
		Short: "Trace images into a stamp pool",
		Long: `Trace the ink of PNG, JPEG, GIF, BMP or WebP images into vector stamps.

Dark opaque pixels are ink by default; --invert selects light pixels and
--alpha selects every opaque pixel. A sprite sheet can be split into a grid
of stamps with --cols and --rows. The resulting pool file is accepted by
'scatter generate --stamps'.

Images may also be http(s) URLs; downloads are cached for a day.`,
		Example: `  scatter stamp leaf.png -o pool.json
  scatter stamp sheet.png --cols 4 --rows 2 --resolution 4 -o pool.json
  scatter stamp star.png --append -o pool.json
  scatter stamp https://example.com/sprites.png --cols 8 -o pool.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pool []art.Stamp
			if appendPool {
				existing, err := pkgio.ImportStamps(output)
				if err != nil && !errors.IsNotFound(err) {
					return err
				}
				pool = existing
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Tracing...")
			spinner.Start()
			traced := make([]int, len(args))
			for i, path := range args {
				spinner.Update(fmt.Sprintf("Tracing %s (%d/%d)...", path, i+1, len(args)))
				stamps, err := traceFile(cmd.Context(), path, opts, cols, rows)
				if err != nil {
					spinner.StopWithError("Tracing failed")
					return fmt.Errorf("%s: %w", path, err)
				}
				traced[i] = len(stamps)
				pool = append(pool, stamps...)
			}
			spinner.StopWithSuccess(fmt.Sprintf("Traced %d image(s)", len(args)))
			for i, path := range args {
				printDetail("%s: %d stamp(s)", path, traced[i])
			}

			if err := pkgio.ExportStamps(pool, output); err != nil {
				return err
			}
			printSuccess("Wrote %d stamp(s)", len(pool))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "stamps.json", "stamp pool file")
	cmd.Flags().BoolVar(&appendPool, "append", false, "add to an existing pool instead of replacing it")
	cmd.Flags().IntVar(&opts.Resolution, "resolution", 1, "downsampling divisor")
	cmd.Flags().Uint8Var(&opts.Threshold, "threshold", stamp.DefaultThreshold, "luminance threshold (0-255)")
	cmd.Flags().BoolVar(&opts.Invert, "invert", false, "treat light pixels as ink")
	cmd.Flags().BoolVar(&opts.Alpha, "alpha", false, "treat every opaque pixel as ink")
	cmd.Flags().IntVar(&cols, "cols", 1, "sprite sheet columns")
	cmd.Flags().IntVar(&rows, "rows", 1, "sprite sheet rows")

	return cmd
}

// traceFile decodes the image at path (a file or URL) and traces it, as a
// sheet when cols or rows exceed one.
func traceFile(ctx context.Context, path string, opts stamp.Options, cols, rows int) (stamps []art.Stamp, err error) {
	done := timed(ctx, "trace", "source", path, "resolution", opts.Resolution)
	defer func() { done(err) }()

	r, err := openImage(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	img, _, err := stamp.Decode(r)
	if err != nil {
		return nil, err
	}
	if cols > 1 || rows > 1 {
		return stamp.FromSheet(img, max(cols, 1), max(rows, 1), opts)
	}
	st, err := stamp.FromImage(img, opts)
	if err != nil {
		return nil, err
	}
	return []art.Stamp{st}, nil
}

func openImage(ctx context.Context, path string) (io.ReadCloser, error) {
	if httputil.IsURL(path) {
		f, err := httputil.NewFetcher("", httputil.DefaultTTL)
		if err != nil {
			return nil, err
		}
		data, err := f.Fetch(ctx, path)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	return f, nil
}
