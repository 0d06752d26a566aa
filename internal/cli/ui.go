package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/scatter/pkg/core/art"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconSwatch  = "■"
)

// statusOut receives status lines. Command results go to CLI.Out.
var statusOut io.Writer = os.Stdout

// =============================================================================
// Status Output
// =============================================================================

func printLine(s string) {
	fmt.Fprintln(statusOut, s)
}

func printSuccess(format string, args ...any) {
	printLine(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printLine(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printLine(StyleWarning.Render(iconWarning + " " + fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	printLine("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written file path.
func printFile(path string) {
	printLine("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	printLine(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Composition Summaries
// =============================================================================

// printStats prints a one-line summary of c, e.g.
// "104 shapes · 5 layers · fresh".
func printStats(c art.Composition, cached bool) {
	counts := layerCounts(c)
	parts := []string{fmt.Sprintf("%d shapes", len(c.Shapes))}
	if n := len(counts) - min(counts[art.StampLayer], 1); n > 0 {
		parts = append(parts, fmt.Sprintf("%d layers", n))
	}
	if n := counts[art.StampLayer]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d stamps", n))
	}

	status := StyleDim.Render("fresh")
	if cached {
		status = styleCached.Render("cached")
	}
	printLine("  " + StyleDim.Render(strings.Join(parts, " · ")) + StyleDim.Render(" · ") + status)
}

// layerCounts returns the number of shapes on each layer present in c.
func layerCounts(c art.Composition) map[art.Layer]int {
	counts := make(map[art.Layer]int)
	for _, s := range c.Shapes {
		counts[s.Layer]++
	}
	return counts
}

// layerSummary lists the shape count per layer in layer order, e.g.
// "1:20 2:21 3:19 stamps:4".
func layerSummary(c art.Composition) string {
	counts := layerCounts(c)
	layers := make([]art.Layer, 0, len(counts))
	for l := range counts {
		layers = append(layers, l)
	}
	slices.SortFunc(layers, func(a, b art.Layer) int {
		// The stamp layer sorts last.
		if a == art.StampLayer || b == art.StampLayer {
			return int(b) - int(a)
		}
		return int(a) - int(b)
	})

	parts := make([]string, len(layers))
	for i, l := range layers {
		parts[i] = fmt.Sprintf("%s:%d", l, counts[l])
	}
	return strings.Join(parts, " ")
}

// swatch renders a colored block followed by the color value.
func swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(iconSwatch) + " " + color
}
