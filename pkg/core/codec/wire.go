package codec

import (
	"encoding/json"

	"github.com/matzehuels/scatter/pkg/core/art"
)

// Document is the JSON form of a composition, as embedded in rendered SVGs
// and served by the API.
type Document struct {
	Meta       MetaJSON        `json:"meta"`
	Shapes     []ShapeJSON     `json:"shapes"`
	Background *BackgroundJSON `json:"background,omitempty"`

	// Pre-meta payloads kept these at the top level.
	LegacySeed   *uint32 `json:"seed,omitempty"`
	LegacyWidth  int     `json:"width,omitempty"`
	LegacyHeight int     `json:"height,omitempty"`
}

type MetaJSON struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Seed       uint32 `json:"seed"`
	ShapeCount int    `json:"shapeCount"`
	Placement  string `json:"placement,omitempty"`
}

// ShapeJSON is the flat record of one shape. Stamp fields are only present
// for stamp shapes. Optional fields are pointers so that a missing value
// can be told apart from zero.
type ShapeJSON struct {
	ID           string     `json:"id"`
	Kind         art.Kind   `json:"kind,omitempty"`
	Type         art.Kind   `json:"type,omitempty"`
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	Size         float64    `json:"size"`
	Color        string     `json:"color"`
	Pattern      string     `json:"pattern,omitempty"`
	Rotation     float64    `json:"rotation"`
	Layer        *art.Layer `json:"layer,omitempty"`
	TextureScale *float64   `json:"textureScale,omitempty"`

	Path        string  `json:"path,omitempty"`
	StampWidth  float64 `json:"stampWidth,omitempty"`
	StampHeight float64 `json:"stampHeight,omitempty"`
	Resolution  float64 `json:"resolution,omitempty"`
}

// BackgroundJSON is the wire form of [art.Background]. Its toml tags let
// the CLI settings file carry a default background.
type BackgroundJSON struct {
	Color        string      `json:"color" toml:"color"`
	Texture      art.Texture `json:"texture,omitempty" toml:"texture,omitempty"`
	Pattern      string      `json:"pattern,omitempty" toml:"pattern,omitempty"`
	TextureScale *float64    `json:"textureScale,omitempty" toml:"texture_scale,omitempty"`
	Ink          string      `json:"ink,omitempty" toml:"ink,omitempty"`
	Path         string      `json:"path,omitempty" toml:"path,omitempty"`
	StampWidth   float64     `json:"stampWidth,omitempty" toml:"stamp_width,omitzero"`
	StampHeight  float64     `json:"stampHeight,omitempty" toml:"stamp_height,omitzero"`
	Resolution   float64     `json:"resolution,omitempty" toml:"resolution,omitzero"`
}

// FromComposition converts a composition to its wire form.
func FromComposition(c art.Composition) Document {
	doc := Document{
		Meta: MetaJSON{
			Width:      c.Meta.Width,
			Height:     c.Meta.Height,
			Seed:       c.Meta.Seed,
			ShapeCount: c.Meta.ShapeCount,
			Placement:  c.Meta.Placement,
		},
		Shapes: make([]ShapeJSON, len(c.Shapes)),
	}
	for i, s := range c.Shapes {
		doc.Shapes[i] = shapeToJSON(s)
	}
	if c.Background != nil {
		doc.Background = backgroundToJSON(*c.Background)
	}
	return doc
}

func shapeToJSON(s art.Shape) ShapeJSON {
	layer := s.Layer
	scale := s.TextureScale
	out := ShapeJSON{
		ID:           s.ID,
		Kind:         s.Kind(),
		X:            s.X,
		Y:            s.Y,
		Size:         s.Size,
		Color:        s.Color,
		Pattern:      s.Pattern,
		Rotation:     s.Rotation,
		Layer:        &layer,
		TextureScale: &scale,
	}
	if st, ok := s.Stamp(); ok {
		out.Path = st.Path
		out.StampWidth = st.Width
		out.StampHeight = st.Height
		out.Resolution = st.Resolution
	}
	return out
}

func backgroundToJSON(bg art.Background) *BackgroundJSON {
	scale := bg.TextureScale
	out := &BackgroundJSON{
		Color:        bg.Color,
		Texture:      bg.Texture,
		Pattern:      bg.Pattern,
		TextureScale: &scale,
		Ink:          bg.Ink,
	}
	if bg.Stamp != nil {
		out.Path = bg.Stamp.Path
		out.StampWidth = bg.Stamp.Width
		out.StampHeight = bg.Stamp.Height
		out.Resolution = bg.Stamp.Resolution
	}
	return out
}

// Composition converts the wire form back, filling defaults for fields
// older payloads did not carry.
func (d Document) Composition() art.Composition {
	meta := art.Meta{
		Width:      d.Meta.Width,
		Height:     d.Meta.Height,
		Seed:       d.Meta.Seed,
		ShapeCount: d.Meta.ShapeCount,
		Placement:  d.Meta.Placement,
	}
	if meta.Width == 0 {
		meta.Width = d.LegacyWidth
	}
	if meta.Height == 0 {
		meta.Height = d.LegacyHeight
	}
	if meta.Seed == 0 && d.LegacySeed != nil {
		meta.Seed = *d.LegacySeed
	}

	c := art.Composition{Meta: meta, Shapes: make([]art.Shape, len(d.Shapes))}
	for i, s := range d.Shapes {
		c.Shapes[i] = s.Shape()
	}
	if c.Meta.ShapeCount == 0 {
		c.Meta.ShapeCount = len(c.Shapes)
	}
	if d.Background != nil {
		bg := d.Background.Background()
		c.Background = &bg
	}
	return c
}

// Shape converts the record, filling defaults for missing fields.
func (s ShapeJSON) Shape() art.Shape {
	kind := s.Kind
	if kind == "" {
		kind = s.Type
	}

	var form art.Form
	switch kind {
	case art.KindCircle:
		form = art.Circle{}
	case art.KindStamp:
		form = art.Stamp{Path: s.Path, Width: s.StampWidth, Height: s.StampHeight, Resolution: s.Resolution}
	default:
		form = art.Rect{}
	}

	out := art.Shape{
		ID:           s.ID,
		Form:         form,
		X:            s.X,
		Y:            s.Y,
		Size:         s.Size,
		Color:        s.Color,
		Pattern:      s.Pattern,
		Rotation:     s.Rotation,
		Layer:        art.MinLayer,
		TextureScale: 1,
	}
	if out.Pattern == "" {
		out.Pattern = art.PatternSolid
	}
	if s.Layer != nil && (*s.Layer == art.StampLayer || s.Layer.Numeric()) {
		out.Layer = *s.Layer
	}
	if s.TextureScale != nil {
		out.TextureScale = *s.TextureScale
	}
	return out
}

// Background converts the record, filling defaults for missing fields.
func (b BackgroundJSON) Background() art.Background {
	out := art.Background{
		Color:        b.Color,
		Texture:      b.Texture,
		Pattern:      b.Pattern,
		TextureScale: 1,
		Ink:          b.Ink,
	}
	if out.Texture == "" {
		out.Texture = art.TextureSolid
	}
	if b.TextureScale != nil {
		out.TextureScale = *b.TextureScale
	}
	if b.Path != "" {
		out.Stamp = &art.Stamp{Path: b.Path, Width: b.StampWidth, Height: b.StampHeight, Resolution: b.Resolution}
	}
	return out
}

// MarshalJSON encodes a composition in its wire form.
func MarshalJSON(c art.Composition) ([]byte, error) {
	return json.Marshal(FromComposition(c))
}

// MarshalIndent is MarshalJSON with indentation, for files and terminals.
func MarshalIndent(c art.Composition) ([]byte, error) {
	return json.MarshalIndent(FromComposition(c), "", "  ")
}

// UnmarshalJSON decodes a composition from its wire form.
func UnmarshalJSON(data []byte) (art.Composition, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return art.Composition{}, err
	}
	return doc.Composition(), nil
}
