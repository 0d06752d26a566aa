package sink

import (
	"context"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/render"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
	native  bool
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithNative skips librsvg and always uses the built-in rasterizer.
func WithNative() PNGOption {
	return func(r *pngRenderer) { r.native = true }
}

// RenderPNG renders the composition as PNG via SVG conversion. When
// rsvg-convert is not installed it falls back to [RenderPreview].
func RenderPNG(ctx context.Context, c art.Composition, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if r.native || !render.RasterizerAvailable() {
		return RenderPreview(c, WithPreviewScale(r.scale))
	}
	svg := RenderSVG(c, r.svgOpts...)
	return render.ToPNG(ctx, svg, r.scale)
}
