package art

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Kind names the geometric variant of a shape.
type Kind string

const (
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindStamp  Kind = "stamp"
)

// Pattern names understood by the renderer.
const (
	PatternSolid        = "solid"
	PatternHatch        = "hatch"
	PatternCrossHatch   = "cross-hatch"
	PatternDots         = "dots"
	PatternCheckerboard = "checkerboard"
	PatternStripes      = "stripes"
)

// Patterns lists every pattern name in canonical order.
var Patterns = []string{
	PatternSolid,
	PatternHatch,
	PatternCrossHatch,
	PatternDots,
	PatternCheckerboard,
	PatternStripes,
}

// IsPattern reports whether name is a known pattern.
func IsPattern(name string) bool {
	return slices.Contains(Patterns, name)
}

// Form is the geometric variant of a shape: [Rect], [Circle] or [Stamp].
type Form interface {
	Kind() Kind
}

// Rect is a centered square.
type Rect struct{}

// Circle is a centered circle.
type Circle struct{}

// Stamp is a vector path extracted from a bitmap.
//
// Path is expressed in a local space of Width x Height units. Resolution is
// the divisor the source bitmap was downsampled by; zero means the path was
// not downsampled.
type Stamp struct {
	Path       string  `json:"path" toml:"path"`
	Width      float64 `json:"width" toml:"width"`
	Height     float64 `json:"height" toml:"height"`
	Resolution float64 `json:"resolution,omitempty" toml:"resolution,omitzero"`
}

func (Rect) Kind() Kind   { return KindRect }
func (Circle) Kind() Kind { return KindCircle }
func (Stamp) Kind() Kind  { return KindStamp }

// Extent returns the larger local dimension, never less than 1.
func (s Stamp) Extent() float64 {
	return max(s.Width, s.Height, 1)
}

// NativeSize is the canvas size at which one path unit maps back to one
// source bitmap pixel.
func (s Stamp) NativeSize() float64 {
	res := s.Resolution
	if res <= 0 {
		res = 1
	}
	return s.Extent() * res
}

// Valid reports whether the stamp has something to draw.
func (s Stamp) Valid() bool {
	return s.Path != "" && s.Width > 0 && s.Height > 0
}

// FormOf returns the form for a kind name. Unknown names yield a [Rect].
func FormOf(k Kind) Form {
	switch k {
	case KindCircle:
		return Circle{}
	case KindStamp:
		return Stamp{}
	default:
		return Rect{}
	}
}

// =============================================================================
// Layers
// =============================================================================

// Layer identifies the layer a shape belongs to. Numeric layers run from
// [MinLayer] to [MaxLayer]; [StampLayer] is the dedicated stamp layer.
type Layer int

const (
	MinLayer Layer = 1
	MaxLayer Layer = 5

	// StampLayer holds hand-placed stamps.
	StampLayer Layer = -1
)

const stampLayerName = "stamps"

// String returns "stamps" for the stamp layer and the number otherwise.
func (l Layer) String() string {
	if l == StampLayer {
		return stampLayerName
	}
	return strconv.Itoa(int(l))
}

// Numeric reports whether l is one of the numeric layers.
func (l Layer) Numeric() bool {
	return l >= MinLayer && l <= MaxLayer
}

// ParseLayer parses "stamps" or a layer number.
func ParseLayer(s string) (Layer, error) {
	if s == stampLayerName {
		return StampLayer, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid layer %q", s)
	}
	l := Layer(n)
	if !l.Numeric() {
		return 0, fmt.Errorf("layer %d out of range [%d, %d]", n, MinLayer, MaxLayer)
	}
	return l, nil
}

// MarshalJSON encodes numeric layers as numbers and the stamp layer as "stamps".
func (l Layer) MarshalJSON() ([]byte, error) {
	if l == StampLayer {
		return json.Marshal(stampLayerName)
	}
	return json.Marshal(int(l))
}

// UnmarshalJSON accepts a number, a numeric string or "stamps".
func (l *Layer) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*l = Layer(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("layer: %w", err)
	}
	if s == stampLayerName {
		*l = StampLayer
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid layer %q", s)
	}
	*l = Layer(n)
	return nil
}

// =============================================================================
// Shapes
// =============================================================================

// Shape is the atomic visual unit of a composition.
type Shape struct {
	ID           string
	Form         Form
	X, Y         float64
	Size         float64
	Color        string
	Pattern      string
	Rotation     float64
	Layer        Layer
	TextureScale float64
}

// Kind returns the kind of the shape's form. A nil form reads as a rect.
func (s Shape) Kind() Kind {
	if s.Form == nil {
		return KindRect
	}
	return s.Form.Kind()
}

// Stamp returns the stamp geometry if the shape is a stamp.
func (s Shape) Stamp() (Stamp, bool) {
	st, ok := s.Form.(Stamp)
	return st, ok
}

// Radius returns half the shape size.
func (s Shape) Radius() float64 {
	return s.Size / 2
}

// NormalizeRotation wraps degrees into [0, 360).
func NormalizeRotation(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	return r
}

// =============================================================================
// Background
// =============================================================================

// Texture selects how the background is filled.
type Texture string

const (
	TextureSolid   Texture = "solid"
	TexturePattern Texture = "pattern"
	TextureStamp   Texture = "stamp"
)

// Background describes the canvas fill behind all shapes.
//
// Color fills the canvas. For textured backgrounds the motif (pattern lines
// or repeated stamp) is drawn in Ink over that color.
type Background struct {
	Color        string
	Texture      Texture
	Pattern      string
	TextureScale float64
	Ink          string
	Stamp        *Stamp
}

// Textured reports whether the background needs a tile definition.
func (b Background) Textured() bool {
	switch b.Texture {
	case TexturePattern:
		return b.Pattern != "" && b.Pattern != PatternSolid
	case TextureStamp:
		return b.Stamp != nil && b.Stamp.Valid()
	}
	return false
}

// =============================================================================
// Composition
// =============================================================================

// Meta holds the canvas parameters a composition was generated with.
type Meta struct {
	Width      int
	Height     int
	Seed       uint32
	ShapeCount int

	// Placement is "bounded" for compositions generated fully inside the
	// canvas. Empty means the default spread placement.
	Placement string
}

// ViewBox returns the canvas's native viewBox string.
func (m Meta) ViewBox() string {
	return fmt.Sprintf("0 0 %d %d", m.Width, m.Height)
}

// Composition is the aggregate produced by the generator and decoded from
// rendered documents.
type Composition struct {
	Meta       Meta
	Shapes     []Shape
	Background *Background
}

// Clone returns a deep copy that shares no slices or pointers with c.
func (c Composition) Clone() Composition {
	out := Composition{
		Meta:   c.Meta,
		Shapes: slices.Clone(c.Shapes),
	}
	if c.Background != nil {
		bg := *c.Background
		if bg.Stamp != nil {
			st := *bg.Stamp
			bg.Stamp = &st
		}
		out.Background = &bg
	}
	return out
}

// Layer returns the indices of all shapes on layer l, in paint order.
func (c Composition) Layer(l Layer) []int {
	var idx []int
	for i, s := range c.Shapes {
		if s.Layer == l {
			idx = append(idx, i)
		}
	}
	return idx
}

// LayerCounts returns how many shapes sit on each layer.
func (c Composition) LayerCounts() map[Layer]int {
	counts := make(map[Layer]int)
	for _, s := range c.Shapes {
		counts[s.Layer]++
	}
	return counts
}
