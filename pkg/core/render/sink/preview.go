package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/gogpu/gg"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/render/pattern"
	"github.com/matzehuels/scatter/pkg/core/stamp"
)

// MaxPreviewSide bounds the longer side of a preview image in pixels.
const MaxPreviewSide = 4096

// PreviewOption configures native raster previews.
type PreviewOption func(*previewRenderer)

type previewRenderer struct {
	scale float64

	dc  *gg.Context
	err error // first rasterizer failure
}

// WithPreviewScale sets the pixel density (default 1). The result is capped
// at MaxPreviewSide pixels on the longer side.
func WithPreviewScale(s float64) PreviewOption {
	return func(r *previewRenderer) { r.scale = s }
}

// RenderPreview rasterizes c to PNG without external tools. Patterns and
// stamps are drawn with the same geometry as the SVG.
func RenderPreview(c art.Composition, opts ...PreviewOption) ([]byte, error) {
	r := previewRenderer{scale: 1}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 || math.IsNaN(r.scale) || math.IsInf(r.scale, 0) {
		r.scale = 1
	}

	w, h := float64(max(c.Meta.Width, 1)), float64(max(c.Meta.Height, 1))
	if longest := math.Max(w, h) * r.scale; longest > MaxPreviewSide {
		r.scale = MaxPreviewSide / math.Max(w, h)
	}

	r.dc = gg.NewContext(int(math.Ceil(w*r.scale)), int(math.Ceil(h*r.scale)))
	defer r.dc.Close()
	r.dc.Scale(r.scale, r.scale)

	r.drawBackground(c, w, h)
	for _, s := range c.Shapes {
		r.drawShape(s)
	}
	if r.err != nil {
		return nil, fmt.Errorf("rasterize preview: %w", r.err)
	}

	var buf bytes.Buffer
	if err := r.dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fill and stroke paint the current path. Drawing continues after a
// failure; RenderPreview reports the first one.
func (r *previewRenderer) fill()   { r.keep(r.dc.Fill()) }
func (r *previewRenderer) stroke() { r.keep(r.dc.Stroke()) }

func (r *previewRenderer) keep(err error) {
	if err != nil && r.err == nil {
		r.err = err
	}
}

func (r *previewRenderer) drawBackground(c art.Composition, w, h float64) {
	dc := r.dc
	dc.SetHexColor(DefaultBackground)
	if c.Background != nil && c.Background.Color != "" {
		dc.SetHexColor(c.Background.Color)
	}
	dc.DrawRectangle(0, 0, w, h)
	r.fill()

	if c.Background == nil {
		return
	}
	t, ok := pattern.ForBackground(BackgroundPatternID, *c.Background)
	if !ok {
		return
	}
	dc.DrawRectangle(0, 0, w, h)
	dc.Clip()
	r.tile(t, 0, 0, w, h)
	dc.ResetClip()
}

func (r *previewRenderer) drawShape(s art.Shape) {
	dc := r.dc
	dc.Push()
	defer dc.Pop()

	dc.Translate(s.X, s.Y)
	dc.Rotate(s.Rotation * math.Pi / 180)

	half := s.Size / 2
	outline := func() bool {
		switch form := s.Form.(type) {
		case art.Circle:
			dc.DrawCircle(0, 0, half)
		case art.Stamp:
			if !form.Valid() {
				return false
			}
			polys, err := stamp.ParsePath(form.Path)
			if err != nil {
				return false
			}
			k := s.Size / form.Extent()
			for _, poly := range polys {
				for i, p := range poly {
					x, y := (p.X-form.Width/2)*k, (p.Y-form.Height/2)*k
					if i == 0 {
						dc.MoveTo(x, y)
					} else {
						dc.LineTo(x, y)
					}
				}
				dc.ClosePath()
			}
		default:
			dc.DrawRectangle(-half, -half, s.Size, s.Size)
		}
		return true
	}

	t, patterned := pattern.ForShape("", s)
	if !patterned {
		if outline() {
			dc.SetHexColor(s.Color)
			r.fill()
		}
		return
	}

	if !outline() {
		return
	}
	dc.Clip()
	if st, ok := s.Stamp(); ok {
		// Stamp tiles live in the path's scaled space.
		t.Scale *= s.Size / st.Extent()
	}
	r.tile(t, -half, -half, half, half)
	dc.ResetClip()
}

// tile repeats the motif of t over the rectangle [x0, x1] x [y0, y1].
func (r *previewRenderer) tile(t pattern.Tile, x0, y0, x1, y1 float64) {
	dc := r.dc
	tw, th := t.Size()
	if tw <= 0 || th <= 0 {
		return
	}
	if t.Base != "" {
		dc.SetHexColor(t.Base)
		dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
		r.fill()
	}
	dc.SetHexColor(t.Ink)
	dc.SetLineWidth(t.Stroke())

	if t.Pattern == art.PatternHatch {
		dc.Push()
		cx, cy := (x0+x1)/2, (y0+y1)/2
		reach := math.Hypot(x1-x0, y1-y0) / 2
		dc.Translate(cx, cy)
		dc.Rotate(math.Pi / 4)
		for x := -reach; x <= reach; x += tw {
			dc.DrawLine(x, -reach, x, reach)
		}
		r.stroke()
		dc.Pop()
		return
	}

	var polys [][]stamp.Point
	if t.Stamp != nil {
		var err error
		if polys, err = stamp.ParsePath(t.Stamp.Path); err != nil {
			return
		}
	}

	startX := math.Floor(x0/tw) * tw
	startY := math.Floor(y0/th) * th
	for ty := startY; ty < y1; ty += th {
		for tx := startX; tx < x1; tx += tw {
			motif(dc, t, polys, tx, ty)
		}
	}
	if t.Stamp == nil && t.Pattern == art.PatternCrossHatch {
		r.stroke()
		return
	}
	r.fill()
}

// motif adds one tile's worth of path at (x, y).
func motif(dc *gg.Context, t pattern.Tile, polys [][]stamp.Point, x, y float64) {
	if t.Stamp != nil {
		tw, _ := t.Size()
		for _, poly := range polys {
			for i, p := range poly {
				px := x + tw/2 + (p.X-t.Stamp.Width/2)*t.Scale
				py := y + tw/2 + (p.Y-t.Stamp.Height/2)*t.Scale
				if i == 0 {
					dc.MoveTo(px, py)
				} else {
					dc.LineTo(px, py)
				}
			}
			dc.ClosePath()
		}
		return
	}

	c := t.Cell()
	switch t.Pattern {
	case art.PatternCrossHatch:
		dc.DrawLine(x, y, x+c, y+c)
		dc.DrawLine(x+c, y, x, y+c)
	case art.PatternDots:
		dc.DrawCircle(x+c/2, y+c/2, pattern.DotRatio*t.Scale)
	case art.PatternCheckerboard:
		dc.DrawRectangle(x, y, c, c)
		dc.DrawRectangle(x+c, y+c, c, c)
	case art.PatternStripes:
		dc.DrawRectangle(x, y, c/2, c)
	}
}
