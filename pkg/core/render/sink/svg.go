package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/codec"
	"github.com/matzehuels/scatter/pkg/core/render/pattern"
)

const (
	// BackgroundPatternID is the id of the background tile definition.
	BackgroundPatternID = "scatter-bg"

	// DefaultBackground fills canvases without a background spec.
	DefaultBackground = "#ffffff"
)

// PatternID returns the tile id of the shape at index i.
func PatternID(i int) string { return "pattern-" + strconv.Itoa(i) }

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	viewBox  string
	metadata bool
	selected string
}

// WithViewBox overrides the current viewBox, e.g. to keep a zoomed view.
// The base viewBox attribute always records the native canvas.
func WithViewBox(vb string) SVGOption { return func(r *svgRenderer) { r.viewBox = vb } }

// WithoutMetadata omits the embedded state, producing a plain export.
func WithoutMetadata() SVGOption { return func(r *svgRenderer) { r.metadata = false } }

// WithSelection marks the group of shape id with the "selected" class.
func WithSelection(id string) SVGOption { return func(r *svgRenderer) { r.selected = id } }

// RenderSVG serializes c as a self-contained SVG document with its state
// embedded. It never fails; a stamp without a path renders an empty group.
func RenderSVG(c art.Composition, opts ...SVGOption) []byte {
	r := svgRenderer{metadata: true}
	for _, opt := range opts {
		opt(&r)
	}

	base := c.Meta.ViewBox()
	viewBox := base
	if r.viewBox != "" {
		viewBox = r.viewBox
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="%s" data-base-viewbox="%s">`+"\n",
		c.Meta.Width, c.Meta.Height, escape(viewBox), base)

	if r.metadata {
		renderMetadata(&buf, c)
	}

	bgFill := renderDefs(&buf, c)
	fmt.Fprintf(&buf, `  <rect class="background" x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n",
		c.Meta.Width, c.Meta.Height, bgFill)

	for i, s := range c.Shapes {
		renderShape(&buf, i, s, s.ID != "" && s.ID == r.selected)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderMetadata(buf *bytes.Buffer, c art.Composition) {
	payload, err := codec.Encode(c)
	if err != nil {
		// Non-finite numbers do not encode.
		payload = ""
	}
	fmt.Fprintf(buf, `  <metadata id="%s">%s</metadata>`+"\n", codec.MetadataID, payload)
}

// renderDefs writes the tile definitions and returns the background fill.
func renderDefs(buf *bytes.Buffer, c art.Composition) string {
	bgFill := DefaultBackground
	var tiles []pattern.Tile

	if c.Background != nil {
		if c.Background.Color != "" {
			bgFill = escape(c.Background.Color)
		}
		if t, ok := pattern.ForBackground(BackgroundPatternID, *c.Background); ok {
			tiles = append(tiles, t)
			bgFill = t.Fill()
		}
	}
	for i, s := range c.Shapes {
		if t, ok := pattern.ForShape(PatternID(i), s); ok {
			tiles = append(tiles, t)
		}
	}

	if len(tiles) == 0 {
		return bgFill
	}
	buf.WriteString("  <defs>\n")
	for _, t := range tiles {
		t.Render(buf)
	}
	buf.WriteString("  </defs>\n")
	return bgFill
}

func renderShape(buf *bytes.Buffer, i int, s art.Shape, selected bool) {
	class := "shape"
	if selected {
		class += " selected"
	}
	fmt.Fprintf(buf, `  <g class="%s" data-shape-id="%s" data-layer="%s" data-x="%s" data-y="%s" data-rotation="%s" transform="translate(%s, %s) rotate(%s)">`,
		class, escape(s.ID), s.Layer, num(s.X), num(s.Y), num(s.Rotation),
		num(s.X), num(s.Y), num(s.Rotation))

	fill := escape(s.Color)
	if _, ok := pattern.ForShape(PatternID(i), s); ok {
		fill = "url(#" + PatternID(i) + ")"
	}

	switch form := s.Form.(type) {
	case art.Circle:
		fmt.Fprintf(buf, `<circle r="%s" cx="0" cy="0" fill="%s"/>`, num(s.Size/2), fill)
	case art.Stamp:
		if form.Valid() {
			k := s.Size / form.Extent()
			fmt.Fprintf(buf, `<path d="%s" fill="%s" transform="scale(%s) translate(%s, %s)"/>`,
				escape(form.Path), fill, num(k), num(-form.Width/2), num(-form.Height/2))
		}
	default:
		half := num(-s.Size / 2)
		fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`,
			half, half, num(s.Size), num(s.Size), fill)
	}
	buf.WriteString("</g>\n")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
