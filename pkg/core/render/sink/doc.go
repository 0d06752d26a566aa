// Package sink provides output format renderers for compositions.
//
// # Overview
//
// A "sink" transforms an [art.Composition] into a final output format:
//
//   - SVG: self-describing vector document with embedded state
//   - JSON: the composition's wire form
//   - PNG: raster image (librsvg when installed, otherwise built in)
//   - PDF: print-ready output (requires rsvg-convert)
//   - Preview: raster image drawn natively with gogpu/gg
//
// # SVG Output
//
// [RenderSVG] produces a document laid out as:
//
//	<svg width=W height=H viewBox="0 0 W H" data-base-viewbox="0 0 W H">
//	  <metadata id="scatter-state">…</metadata>
//	  <defs> background tile, pattern-{i} per patterned shape </defs>
//	  <rect class="background" …/>
//	  <g class="shape" data-shape-id data-layer data-x data-y data-rotation
//	     transform="translate(x, y) rotate(r)">…</g>
//	</svg>
//
// Shapes paint in slice order. Pattern ids are keyed to the shape index, so
// they are regenerated identically on every render. data-base-viewbox
// always records the native canvas even when [WithViewBox] zooms the view.
//
// # PDF and PNG Output
//
// [RenderPDF] and [RenderPNG] generate SVG first, then convert via
// [render.ToPDF] and [render.ToPNG]:
//
//	pdf, err := sink.RenderPDF(ctx, comp)
//	png, err := sink.RenderPNG(ctx, comp, sink.WithScale(2))
//
// These use librsvg when it is installed:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// Without it, PNG export falls back to [RenderPreview]; PDF export fails
// with ErrCodeRasterizerUnavailable.
//
// [art.Composition]: github.com/matzehuels/scatter/pkg/core/art.Composition
// [render.ToPDF]: github.com/matzehuels/scatter/pkg/core/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/scatter/pkg/core/render.ToPNG
package sink
