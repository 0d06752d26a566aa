// Package pattern builds the repeating SVG tiles used to texture shapes and
// canvas backgrounds.
//
// All geometry derives from a base cell of [BaseCell] user-space units
// multiplied by the texture scale:
//
//	hatch         one line per cell, tile rotated 45°
//	cross-hatch   both cell diagonals, no rotation
//	dots          one centered dot of radius 0.8 × scale
//	checkerboard  2×2 cells, two opposite cells filled
//	stripes       one filled stripe half a cell wide
//
// Line patterns stroke at 0.5 × scale. "solid" has no tile; callers fill with
// the flat color instead. Tiles are emitted with patternUnits="userSpaceOnUse",
// so doubling the scale doubles every emitted dimension.
package pattern

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/scatter/pkg/core/art"
)

const (
	// BaseCell is the tile edge at texture scale 1.
	BaseCell = 4.0

	// StrokeRatio is the line width relative to the texture scale.
	StrokeRatio = 0.5

	// DotRatio is the dot radius relative to the texture scale.
	DotRatio = 0.8

	// ReferenceSize is the stamp size at which a stamp's texture scale is
	// used unchanged. Larger stamps get proportionally finer texture.
	ReferenceSize = 50.0

	// StampSpacing is the stamp background cell relative to the stamp extent.
	StampSpacing = 1.5
)

// Tile is one <pattern> definition.
type Tile struct {
	ID      string
	Pattern string
	Scale   float64

	// Ink colors the motif. Base, when set, fills the tile underneath it.
	Ink  string
	Base string

	// Stamp is the motif of stamp tiles; Pattern is ignored when set.
	Stamp *art.Stamp
}

// New returns a tile for a named pattern. It reports false for "solid" and
// unknown names; those fill with the flat color.
func New(id, name string, scale float64, ink string) (Tile, bool) {
	if name == art.PatternSolid || !art.IsPattern(name) {
		return Tile{}, false
	}
	return Tile{ID: id, Pattern: name, Scale: normalizeScale(scale), Ink: ink}, true
}

// ForShape returns the fill tile of a shape. Stamp shapes have their scale
// adjusted by ReferenceSize / max(size, 1).
func ForShape(id string, s art.Shape) (Tile, bool) {
	return New(id, s.Pattern, EffectiveScale(s), s.Color)
}

// EffectiveScale returns the texture scale a shape's tile is drawn at.
func EffectiveScale(s art.Shape) float64 {
	scale := normalizeScale(s.TextureScale)
	if s.Kind() == art.KindStamp {
		scale *= ReferenceSize / math.Max(s.Size, 1)
	}
	return scale
}

// ForBackground returns the tile filling a textured background. The
// background color becomes the tile base and Ink (falling back to a dark
// default) draws the motif.
func ForBackground(id string, bg art.Background) (Tile, bool) {
	if !bg.Textured() {
		return Tile{}, false
	}
	ink := bg.Ink
	if ink == "" {
		ink = DefaultInk
	}
	t := Tile{ID: id, Scale: normalizeScale(bg.TextureScale), Ink: ink, Base: bg.Color}
	if bg.Texture == art.TextureStamp {
		st := *bg.Stamp
		t.Stamp = &st
		return t, true
	}
	t.Pattern = bg.Pattern
	return t, art.IsPattern(bg.Pattern)
}

// DefaultInk draws background motifs when none is configured.
const DefaultInk = "#1d3557"

func normalizeScale(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 1
	}
	return v
}

// Cell is the base cell edge of the tile.
func (t Tile) Cell() float64 { return BaseCell * t.Scale }

// Stroke is the line width of line patterns.
func (t Tile) Stroke() float64 { return StrokeRatio * t.Scale }

// Size returns the emitted tile width and height.
func (t Tile) Size() (w, h float64) {
	if t.Stamp != nil {
		c := t.Stamp.Extent() * t.Scale * StampSpacing
		return c, c
	}
	c := t.Cell()
	if t.Pattern == art.PatternCheckerboard {
		return 2 * c, 2 * c
	}
	return c, c
}

// Fill returns the paint reference for the tile.
func (t Tile) Fill() string { return "url(#" + t.ID + ")" }

// Render writes the <pattern> element.
func (t Tile) Render(buf *bytes.Buffer) {
	w, h := t.Size()
	fmt.Fprintf(buf, `    <pattern id="%s" patternUnits="userSpaceOnUse" width="%s" height="%s"`,
		escape(t.ID), num(w), num(h))
	if t.Stamp == nil && t.Pattern == art.PatternHatch {
		buf.WriteString(` patternTransform="rotate(45)"`)
	}
	buf.WriteString(">\n")

	if t.Base != "" {
		fmt.Fprintf(buf, `      <rect width="%s" height="%s" fill="%s"/>`+"\n", num(w), num(h), escape(t.Base))
	}
	if t.Stamp != nil {
		t.renderStamp(buf, w)
	} else {
		t.renderMotif(buf)
	}
	buf.WriteString("    </pattern>\n")
}

func (t Tile) renderMotif(buf *bytes.Buffer) {
	c, sw, ink := num(t.Cell()), num(t.Stroke()), escape(t.Ink)
	switch t.Pattern {
	case art.PatternHatch:
		fmt.Fprintf(buf, `      <line x1="0" y1="0" x2="0" y2="%s" stroke="%s" stroke-width="%s"/>`+"\n", c, ink, sw)
	case art.PatternCrossHatch:
		fmt.Fprintf(buf, `      <line x1="0" y1="0" x2="%s" y2="%s" stroke="%s" stroke-width="%s"/>`+"\n", c, c, ink, sw)
		fmt.Fprintf(buf, `      <line x1="%s" y1="0" x2="0" y2="%s" stroke="%s" stroke-width="%s"/>`+"\n", c, c, ink, sw)
	case art.PatternDots:
		half := num(t.Cell() / 2)
		fmt.Fprintf(buf, `      <circle cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n", half, half, num(DotRatio*t.Scale), ink)
	case art.PatternCheckerboard:
		fmt.Fprintf(buf, `      <rect x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n", c, c, ink)
		fmt.Fprintf(buf, `      <rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n", c, c, c, c, ink)
	case art.PatternStripes:
		fmt.Fprintf(buf, `      <rect x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n", num(t.Cell()/2), c, ink)
	}
}

func (t Tile) renderStamp(buf *bytes.Buffer, cell float64) {
	st := t.Stamp
	fmt.Fprintf(buf, `      <path d="%s" fill="%s" transform="translate(%s, %s) scale(%s) translate(%s, %s)"/>`+"\n",
		escape(st.Path), escape(t.Ink),
		num(cell/2), num(cell/2), num(t.Scale),
		num(-st.Width/2), num(-st.Height/2))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
