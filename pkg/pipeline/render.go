package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/render/sink"
)

// Render generates output artifacts for c in every format of opts.Formats.
// It does not touch any cache; see Runner.Render for the cached variant.
func Render(ctx context.Context, c art.Composition, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, c, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat renders a single format. opts must already carry render
// defaults.
func RenderFormat(ctx context.Context, c art.Composition, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return sink.RenderSVG(c), nil
	case FormatJSON:
		return sink.RenderJSON(c)
	case FormatPNG:
		pngOpts := []sink.PNGOption{sink.WithScale(opts.Scale)}
		if opts.Native {
			pngOpts = append(pngOpts, sink.WithNative())
		}
		return sink.RenderPNG(ctx, c, pngOpts...)
	case FormatPDF:
		return sink.RenderPDF(ctx, c)
	case FormatPreview:
		return sink.RenderPreview(c, sink.WithPreviewScale(opts.Scale))
	default:
		return nil, ValidateFormat(format)
	}
}
