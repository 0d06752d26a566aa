package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/codec"
	pkgio "github.com/matzehuels/scatter/pkg/io"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		asJSON bool
		layer  string
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the shapes of a saved composition",
		Long: `Show the metadata and shapes of a saved composition.

Shapes are listed in paint order (back to front). Use --json for the full
composition in its wire format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := pkgio.ImportComposition(args[0])
			if err != nil {
				return err
			}
			if layer != "" {
				l, err := art.ParseLayer(layer)
				if err != nil {
					return err
				}
				comp.Shapes = slices.DeleteFunc(comp.Shapes, func(s art.Shape) bool { return s.Layer != l })
			}
			if asJSON {
				enc := json.NewEncoder(c.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(codec.FromComposition(comp))
			}
			printComposition(c.Out, comp)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the composition as JSON")
	cmd.Flags().StringVar(&layer, "layer", "", "only show one layer (1-5 or stamps)")

	return cmd
}

// printComposition writes a metadata summary and a shape table to w.
func printComposition(w io.Writer, comp art.Composition) {
	m := comp.Meta
	fmt.Fprintln(w, StyleTitle.Render("Composition"))
	fmt.Fprintf(w, "%s %s\n", StyleDim.Render("seed      "), StyleNumber.Render(strconv.FormatUint(uint64(m.Seed), 10)))
	fmt.Fprintf(w, "%s %s\n", StyleDim.Render("canvas    "), StyleValue.Render(fmt.Sprintf("%d x %d", m.Width, m.Height)))
	fmt.Fprintf(w, "%s %s\n", StyleDim.Render("shapes    "), StyleValue.Render(strconv.Itoa(len(comp.Shapes))))
	if len(comp.Shapes) > 0 {
		fmt.Fprintf(w, "%s %s\n", StyleDim.Render("layers    "), StyleValue.Render(layerSummary(comp)))
	}
	if bg := comp.Background; bg != nil {
		desc := swatch(bg.Color)
		if bg.Texture != "" && bg.Texture != art.TextureSolid {
			desc += " " + string(bg.Texture)
			if bg.Pattern != "" {
				desc += " " + bg.Pattern
			}
		}
		fmt.Fprintf(w, "%s %s\n", StyleDim.Render("background"), StyleValue.Render(desc))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, shapeTable(comp.Shapes, -1))
}

// shapeTable renders shapes as a bordered table. The row at cursor (if any)
// is highlighted.
func shapeTable(shapes []art.Shape, cursor int) string {
	rows := make([][]string, len(shapes))
	for i, s := range shapes {
		pattern := s.Pattern
		if s.Kind() == art.KindStamp {
			pattern = "-"
		}
		rows[i] = []string{
			s.ID,
			string(s.Kind()),
			s.Layer.String(),
			fmt.Sprintf("%.1f, %.1f", s.X, s.Y),
			fmt.Sprintf("%.1f", s.Size),
			fmt.Sprintf("%.0f°", s.Rotation),
			s.Color,
			pattern,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Kind", "Layer", "Position", "Size", "Rot", "Color", "Pattern").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case row == cursor:
				return cell.Foreground(colorCyan).Bold(true)
			case col == 6 && row >= 0 && row < len(shapes):
				return cell.Foreground(lipgloss.Color(shapes[row].Color))
			default:
				return cell.Foreground(colorWhite)
			}
		}).
		Render()
}
