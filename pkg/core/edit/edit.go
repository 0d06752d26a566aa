// Package edit mutates decoded compositions in place.
//
// Every operation addresses shapes by id. Ids are unique by convention only;
// when two shapes share an id the first one in paint order is used.
// Operations that fail leave the composition unchanged and return a coded
// error from [github.com/matzehuels/scatter/pkg/errors].
//
// A typical editing round trip:
//
//	c := codec.Decode(svg)
//	if c == nil {
//		// no recoverable state
//	}
//	if err := edit.Move(c, "shape-248492", 10, 20); err != nil {
//		return err
//	}
//	svg = sink.RenderSVG(*c)
package edit

import (
	"math"
	"slices"
	"strconv"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/generate"
	"github.com/matzehuels/scatter/pkg/errors"
)

// MinSize is the smallest size Scale shrinks a shape to.
const MinSize = 1.0

// DefaultStampColor fills stamps added without a color.
const DefaultStampColor = "#1d3557"

// Find returns the index of the first shape with id.
func Find(c *art.Composition, id string) (int, bool) {
	i := slices.IndexFunc(c.Shapes, func(s art.Shape) bool { return s.ID == id })
	return i, i >= 0
}

func lookup(c *art.Composition, id string) (*art.Shape, error) {
	i, ok := Find(c, id)
	if !ok {
		return nil, errors.New(errors.ErrCodeShapeNotFound, "no shape with id %q", id)
	}
	return &c.Shapes[i], nil
}

func finite(vs ...float64) error {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "value must be a finite number")
		}
	}
	return nil
}

// Move places the shape's center at (x, y).
func Move(c *art.Composition, id string, x, y float64) error {
	if err := finite(x, y); err != nil {
		return err
	}
	s, err := lookup(c, id)
	if err != nil {
		return err
	}
	s.X, s.Y = x, y
	return nil
}

// Nudge moves the shape by (dx, dy).
func Nudge(c *art.Composition, id string, dx, dy float64) error {
	if err := finite(dx, dy); err != nil {
		return err
	}
	s, err := lookup(c, id)
	if err != nil {
		return err
	}
	s.X += dx
	s.Y += dy
	return nil
}

// Rotate sets the absolute rotation in degrees, wrapped into [0, 360).
func Rotate(c *art.Composition, id string, deg float64) error {
	if err := finite(deg); err != nil {
		return err
	}
	s, err := lookup(c, id)
	if err != nil {
		return err
	}
	s.Rotation = art.NormalizeRotation(deg)
	return nil
}

// RotateBy adds delta degrees to the current rotation.
func RotateBy(c *art.Composition, id string, delta float64) error {
	if err := finite(delta); err != nil {
		return err
	}
	s, err := lookup(c, id)
	if err != nil {
		return err
	}
	s.Rotation = art.NormalizeRotation(s.Rotation + delta)
	return nil
}

// Scale multiplies the shape size by factor. The result never drops below
// MinSize.
func Scale(c *art.Composition, id string, factor float64) error {
	if err := finite(factor); err != nil {
		return err
	}
	if factor <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale factor must be positive, got %g", factor)
	}
	s, err := lookup(c, id)
	if err != nil {
		return err
	}
	s.Size = math.Max(s.Size*factor, MinSize)
	return nil
}

// Resize sets the shape size.
func Resize(c *art.Composition, id string, size float64) error {
	if err := finite(size); err != nil {
		return err
	}
	if size < MinSize {
		return errors.New(errors.ErrCodeInvalidInput, "size must be at least %g, got %g", MinSize, size)
	}
	s, err := lookup(c, id)
	if err != nil {
		return err
	}
	s.Size = size
	return nil
}

// Recolor sets the fill color.
func Recolor(c *art.Composition, id, color string) error {
	if err := errors.ValidateColor(color); err != nil {
		return err
	}
	s, err := lookup(c, id)
	if err != nil {
		return err
	}
	s.Color = color
	return nil
}

// SetPattern sets the fill pattern. A non-positive scale keeps the current
// texture scale.
func SetPattern(c *art.Composition, id, name string, scale float64) error {
	if !art.IsPattern(name) {
		return errors.New(errors.ErrCodeInvalidPattern, "unknown pattern %q", name)
	}
	if err := finite(scale); err != nil {
		return err
	}
	s, err := lookup(c, id)
	if err != nil {
		return err
	}
	s.Pattern = name
	if scale > 0 {
		s.TextureScale = scale
	}
	return nil
}

// Delete removes the shape.
func Delete(c *art.Composition, id string) error {
	i, ok := Find(c, id)
	if !ok {
		return errors.New(errors.ErrCodeShapeNotFound, "no shape with id %q", id)
	}
	c.Shapes = slices.Delete(c.Shapes, i, i+1)
	return nil
}

// BringToFront moves the shape to the end of the paint order.
func BringToFront(c *art.Composition, id string) error {
	i, ok := Find(c, id)
	if !ok {
		return errors.New(errors.ErrCodeShapeNotFound, "no shape with id %q", id)
	}
	s := c.Shapes[i]
	c.Shapes = append(slices.Delete(c.Shapes, i, i+1), s)
	return nil
}

// SendToBack moves the shape to the start of the paint order.
func SendToBack(c *art.Composition, id string) error {
	i, ok := Find(c, id)
	if !ok {
		return errors.New(errors.ErrCodeShapeNotFound, "no shape with id %q", id)
	}
	s := c.Shapes[i]
	c.Shapes = slices.Insert(slices.Delete(c.Shapes, i, i+1), 0, s)
	return nil
}

// SetLayer moves the shape onto layer.
func SetLayer(c *art.Composition, id string, layer art.Layer) error {
	if !layer.Numeric() && layer != art.StampLayer {
		return errors.New(errors.ErrCodeInvalidLayer, "invalid layer %d", int(layer))
	}
	s, err := lookup(c, id)
	if err != nil {
		return err
	}
	s.Layer = layer
	return nil
}

// NextID returns the first "shape-N" id, counting up from the shape count,
// that no shape in c uses.
func NextID(c *art.Composition) string {
	used := make(map[string]struct{}, len(c.Shapes))
	for _, s := range c.Shapes {
		used[s.ID] = struct{}{}
	}
	for n := len(c.Shapes) + 1; ; n++ {
		id := "shape-" + strconv.Itoa(n)
		if _, ok := used[id]; !ok {
			return id
		}
	}
}

// Add appends s and returns the shape as stored.
//
// An empty id is replaced by NextID; a zero layer is assigned round-robin
// over the numeric layers by current shape count; an empty pattern becomes
// solid and a non-positive texture scale becomes 1. A nil form is a rect.
func Add(c *art.Composition, s art.Shape) (art.Shape, error) {
	if s.ID == "" {
		s.ID = NextID(c)
	} else if err := errors.ValidateShapeID(s.ID); err != nil {
		return art.Shape{}, err
	}
	if err := finite(s.X, s.Y, s.Size, s.Rotation, s.TextureScale); err != nil {
		return art.Shape{}, err
	}
	if s.Size < MinSize {
		return art.Shape{}, errors.New(errors.ErrCodeInvalidInput, "size must be at least %g, got %g", MinSize, s.Size)
	}
	if err := errors.ValidateColor(s.Color); err != nil {
		return art.Shape{}, err
	}
	if s.Pattern == "" {
		s.Pattern = art.PatternSolid
	}
	if !art.IsPattern(s.Pattern) {
		return art.Shape{}, errors.New(errors.ErrCodeInvalidPattern, "unknown pattern %q", s.Pattern)
	}
	switch {
	case s.Layer == 0:
		s.Layer = art.Layer(len(c.Shapes)%int(art.MaxLayer)) + art.MinLayer
	case !s.Layer.Numeric() && s.Layer != art.StampLayer:
		return art.Shape{}, errors.New(errors.ErrCodeInvalidLayer, "invalid layer %d", int(s.Layer))
	}
	if s.Form == nil {
		s.Form = art.Rect{}
	}
	if st, ok := s.Stamp(); ok && !st.Valid() {
		return art.Shape{}, errors.New(errors.ErrCodeInvalidInput, "stamp needs a path and positive dimensions")
	}
	if s.TextureScale <= 0 {
		s.TextureScale = 1
	}
	s.Rotation = art.NormalizeRotation(s.Rotation)

	c.Shapes = append(c.Shapes, s)
	return s, nil
}

// AddStamp places st centered at (x, y) on the stamps layer at its native
// size, so one path unit covers one source pixel.
func AddStamp(c *art.Composition, st art.Stamp, x, y float64, color string) (art.Shape, error) {
	if !st.Valid() {
		return art.Shape{}, errors.New(errors.ErrCodeInvalidInput, "stamp needs a path and positive dimensions")
	}
	if color == "" {
		color = DefaultStampColor
	}
	return Add(c, art.Shape{
		Form:         st,
		X:            x,
		Y:            y,
		Size:         st.NativeSize(),
		Color:        color,
		Pattern:      art.PatternSolid,
		Layer:        art.StampLayer,
		TextureScale: 1,
	})
}

// SetBackground replaces the background.
//
// An empty texture means solid. Pattern textures need a known pattern name
// and stamp textures a drawable stamp. A non-positive texture scale becomes 1.
func SetBackground(c *art.Composition, bg art.Background) error {
	if err := errors.ValidateColor(bg.Color); err != nil {
		return err
	}
	if bg.Ink != "" {
		if err := errors.ValidateColor(bg.Ink); err != nil {
			return err
		}
	}
	if err := finite(bg.TextureScale); err != nil {
		return err
	}

	switch bg.Texture {
	case "", art.TextureSolid:
		bg.Texture = art.TextureSolid
	case art.TexturePattern:
		if !art.IsPattern(bg.Pattern) {
			return errors.New(errors.ErrCodeInvalidPattern, "unknown pattern %q", bg.Pattern)
		}
	case art.TextureStamp:
		if bg.Stamp == nil || !bg.Stamp.Valid() {
			return errors.New(errors.ErrCodeInvalidInput, "stamp background needs a stamp with a path")
		}
		st := *bg.Stamp
		bg.Stamp = &st
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown texture %q", bg.Texture)
	}
	if bg.TextureScale <= 0 {
		bg.TextureScale = 1
	}

	c.Background = &bg
	return nil
}

// ClearBackground removes the background; renderers fall back to white.
func ClearBackground(c *art.Composition) {
	c.Background = nil
}

// ReseedLayer replaces the shapes of one numeric layer with the shapes a
// fresh generation from seed puts on that layer. Other layers, including the
// stamps layer, keep their shapes and paint order; the new shapes paint on
// top. The canvas size comes from c.
func ReseedLayer(c *art.Composition, layer art.Layer, seed uint32, cfg generate.Config) error {
	if !layer.Numeric() {
		return errors.New(errors.ErrCodeInvalidLayer, "only layers %d to %d can be reseeded", art.MinLayer, art.MaxLayer)
	}
	fresh := generate.RegenerateLayer(c.Meta, layer, seed, cfg)
	c.Shapes = append(slices.DeleteFunc(c.Shapes, func(s art.Shape) bool { return s.Layer == layer }), fresh...)
	return nil
}
