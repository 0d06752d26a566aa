package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/codec"
	"github.com/matzehuels/scatter/pkg/core/edit"
	"github.com/matzehuels/scatter/pkg/core/generate"
	"github.com/matzehuels/scatter/pkg/errors"
	pkgio "github.com/matzehuels/scatter/pkg/io"
)

// editCommand creates the edit command with one subcommand per operation.
// Every subcommand rewrites FILE in place unless --output is given.
func (c *CLI) editCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit shapes of a saved composition",
		Long: `Edit shapes of a saved composition.

The composition is decoded from the SVG (or JSON) file, changed and written
back. Shape ids are listed by 'scatter inspect'.`,
		Example: `  scatter edit move art.svg shape-3 400 120
  scatter edit rotate art.svg shape-3 45
  scatter edit front art.svg shape-3
  scatter edit reseed art.svg 2 --seed 99
  scatter edit apply art.svg ops.json -o edited.svg`,
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "", "write the result here instead of overwriting the input")

	run := func(build func(args []string) ([]edit.Op, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ops, err := build(args[1:])
			if err != nil {
				return err
			}
			return runEdit(args[0], output, ops...)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "move FILE SHAPE X Y",
		Short: "Move a shape's center to X, Y",
		Args:  cobra.ExactArgs(4),
		RunE: run(func(a []string) ([]edit.Op, error) {
			x, y, err := parsePair(a[1], a[2])
			return []edit.Op{{Op: edit.OpMove, Shape: a[0], X: x, Y: y}}, err
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "nudge FILE SHAPE DX DY",
		Short: "Move a shape by DX, DY",
		Args:  cobra.ExactArgs(4),
		RunE: run(func(a []string) ([]edit.Op, error) {
			dx, dy, err := parsePair(a[1], a[2])
			return []edit.Op{{Op: edit.OpNudge, Shape: a[0], DX: dx, DY: dy}}, err
		}),
	})

	var relative bool
	rotate := &cobra.Command{
		Use:   "rotate FILE SHAPE DEGREES",
		Short: "Set (or with --by, change) a shape's rotation",
		Args:  cobra.ExactArgs(3),
		RunE: run(func(a []string) ([]edit.Op, error) {
			deg, err := parseFloat("degrees", a[1])
			if relative {
				return []edit.Op{{Op: edit.OpRotateBy, Shape: a[0], Degrees: deg}}, err
			}
			return []edit.Op{{Op: edit.OpRotate, Shape: a[0], Degrees: deg}}, err
		}),
	}
	rotate.Flags().BoolVar(&relative, "by", false, "rotate relative to the current angle")
	cmd.AddCommand(rotate)

	cmd.AddCommand(&cobra.Command{
		Use:   "scale FILE SHAPE FACTOR",
		Short: "Multiply a shape's size",
		Args:  cobra.ExactArgs(3),
		RunE: run(func(a []string) ([]edit.Op, error) {
			f, err := parseFloat("factor", a[1])
			return []edit.Op{{Op: edit.OpScale, Shape: a[0], Factor: f}}, err
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "resize FILE SHAPE SIZE",
		Short: "Set a shape's size",
		Args:  cobra.ExactArgs(3),
		RunE: run(func(a []string) ([]edit.Op, error) {
			size, err := parseFloat("size", a[1])
			return []edit.Op{{Op: edit.OpResize, Shape: a[0], Size: size}}, err
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "recolor FILE SHAPE COLOR",
		Short: "Change a shape's color",
		Args:  cobra.ExactArgs(3),
		RunE: run(func(a []string) ([]edit.Op, error) {
			return []edit.Op{{Op: edit.OpRecolor, Shape: a[0], Color: a[1]}}, nil
		}),
	})

	var textureScale float64
	pattern := &cobra.Command{
		Use:   "pattern FILE SHAPE PATTERN",
		Short: "Change a shape's fill pattern",
		Args:  cobra.ExactArgs(3),
		RunE: run(func(a []string) ([]edit.Op, error) {
			return []edit.Op{{Op: edit.OpPattern, Shape: a[0], Pattern: a[1], TextureScale: textureScale}}, nil
		}),
	}
	pattern.Flags().Float64Var(&textureScale, "texture-scale", 0, "pattern scale (default: keep the current one)")
	cmd.AddCommand(pattern)

	cmd.AddCommand(&cobra.Command{
		Use:   "layer FILE SHAPE LAYER",
		Short: "Move a shape to another layer (1-5 or stamps)",
		Args:  cobra.ExactArgs(3),
		RunE: run(func(a []string) ([]edit.Op, error) {
			l, err := art.ParseLayer(a[1])
			if err != nil {
				return nil, errors.New(errors.ErrCodeInvalidLayer, "%v", err)
			}
			return []edit.Op{{Op: edit.OpLayer, Shape: a[0], Layer: &l}}, nil
		}),
	})

	for _, simple := range []struct {
		kind  edit.OpKind
		short string
	}{
		{edit.OpDelete, "Remove a shape"},
		{edit.OpFront, "Paint a shape above all others"},
		{edit.OpBack, "Paint a shape below all others"},
	} {
		kind := simple.kind
		cmd.AddCommand(&cobra.Command{
			Use:   string(kind) + " FILE SHAPE",
			Short: simple.short,
			Args:  cobra.ExactArgs(2),
			RunE: run(func(a []string) ([]edit.Op, error) {
				return []edit.Op{{Op: kind, Shape: a[0]}}, nil
			}),
		})
	}

	var seed uint32
	reseed := &cobra.Command{
		Use:   "reseed FILE LAYER",
		Short: "Regenerate the shapes of one layer from a new seed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := art.ParseLayer(args[1])
			if err != nil {
				return errors.New(errors.ErrCodeInvalidLayer, "%v", err)
			}
			op := edit.Op{Op: edit.OpReseed, Layer: &l}
			if cmd.Flags().Changed("seed") {
				op.Seed = generate.Seed(seed)
			}
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			cfg := settings.Generate.Config
			op.Config = &cfg
			return runEdit(args[0], output, op)
		},
	}
	reseed.Flags().Uint32VarP(&seed, "seed", "s", 0, "new seed (default: derived from the clock)")
	cmd.AddCommand(reseed)

	cmd.AddCommand(c.editBackgroundCommand(&output))

	cmd.AddCommand(&cobra.Command{
		Use:   "apply FILE OPS.json",
		Short: "Apply a JSON list of edit operations",
		Long: `Apply a JSON list of edit operations, e.g.

  [{"op": "move", "shape": "shape-1", "x": 10, "y": 20},
   {"op": "rotate-by", "shape": "shape-1", "degrees": 15}]

Either every operation applies or the file is left unchanged.`,
		Args: cobra.ExactArgs(2),
		RunE: run(func(a []string) ([]edit.Op, error) {
			return readOps(a[0])
		}),
	})

	return cmd
}

// editBackgroundCommand sets or clears the canvas background.
func (c *CLI) editBackgroundCommand(output *string) *cobra.Command {
	var (
		bg     codec.BackgroundJSON
		scale  float64
		remove bool
	)
	cmd := &cobra.Command{
		Use:   "background FILE",
		Short: "Set or clear the canvas background",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remove {
				return runEdit(args[0], *output, edit.Op{Op: edit.OpClearBackground})
			}
			if cmd.Flags().Changed("texture-scale") {
				bg.TextureScale = &scale
			}
			return runEdit(args[0], *output, edit.Op{Op: edit.OpBackground, Background: &bg})
		},
	}
	cmd.Flags().StringVar(&bg.Color, "color", "", "background color")
	cmd.Flags().StringVar((*string)(&bg.Texture), "texture", "", "texture: solid, pattern, stamp")
	cmd.Flags().StringVar(&bg.Pattern, "pattern", "", "pattern name (with --texture pattern)")
	cmd.Flags().StringVar(&bg.Ink, "ink", "", "color of the pattern or stamp motif")
	cmd.Flags().Float64Var(&scale, "texture-scale", 1, "motif scale")
	cmd.Flags().BoolVar(&remove, "clear", false, "remove the background")
	return cmd
}

// runEdit applies ops to the composition in path and writes the result to
// output, or back to path.
func runEdit(path, output string, ops ...edit.Op) error {
	comp, err := pkgio.ImportComposition(path)
	if err != nil {
		return err
	}
	if err := edit.ApplyAll(&comp, ops...); err != nil {
		return err
	}
	if output == "" {
		output = path
	}
	if err := pkgio.ExportComposition(comp, output); err != nil {
		return err
	}
	printSuccess("Applied %d edit(s)", len(ops))
	printFile(output)
	return nil
}

// readOps reads a JSON array of edit operations.
func readOps(path string) ([]edit.Op, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read ops %s", path)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var ops []edit.Op
	if err := dec.Decode(&ops); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse ops %s: %v", path, err)
	}
	return ops, nil
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", name, s)
	}
	return v, nil
}

func parsePair(a, b string) (float64, float64, error) {
	x, err := parseFloat("x", a)
	if err != nil {
		return 0, 0, err
	}
	y, err := parseFloat("y", b)
	return x, y, err
}
