// Package pkg provides the core libraries for Scatter, a seeded procedural
// art generator.
//
// # Overview
//
// Scatter places rectangles, circles and traced stamps on a canvas from a
// 32-bit seed. Every rendered SVG embeds the full composition, so a file can
// be decoded, edited and re-rendered without the original options. The pkg
// directory is organized into three areas:
//
//  1. [core] - Domain logic (random stream, generation, rendering, codec,
//     stamps, edits)
//  2. [pipeline] - Orchestration (generate → render) with caching, used by
//     the CLI and the HTTP API
//  3. Infrastructure - [cache], [store], [io], [httputil], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	seed + generate.Config
//	         ↓
//	    [core/generate] (xorshift stream → shapes on five layers)
//	         ↓
//	    art.Composition ←── [core/edit] (move, rotate, recolor, reseed...)
//	         ↓
//	    [core/render/sink] (SVG with embedded state, JSON, PNG, PDF, preview)
//	         ↓
//	    [core/codec] (decode the state back out of an SVG)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/scatter/pkg/core/codec"
//	    "github.com/matzehuels/scatter/pkg/core/edit"
//	    "github.com/matzehuels/scatter/pkg/core/generate"
//	    "github.com/matzehuels/scatter/pkg/core/render/sink"
//	)
//
//	// 1. Generate
//	c := generate.Generate(generate.Config{Seed: generate.Seed(42)})
//
//	// 2. Render
//	svg := sink.RenderSVG(c)
//
//	// 3. Decode and edit later
//	back := codec.Decode(svg)
//	_ = edit.Rotate(back, back.Shapes[0].ID, 45)
//
// # Main Packages
//
// [core/rng] - Deterministic xorshift32 stream. The same seed always yields
// the same composition.
//
// [core/generate] - Shape placement, sizes, colors, patterns and layer
// assignment. Also regenerates a single layer from a new seed.
//
// [core/render/pattern] - SVG tile definitions for the fill patterns.
//
// [core/render/sink] - Output formats. PNG and PDF use rsvg-convert; the
// preview and native PNG rasterize with gogpu/gg.
//
// [core/codec] - The base64(urlencode(JSON)) metadata carried in every SVG.
//
// [core/stamp] - Bitmap tracing into vector stamps and sprite sheet slicing.
//
// [core/edit] - Composition edits, individually or as an atomic batch.
//
// [cache] - Composition and artifact caching (file, Redis, none).
//
// [store] - Document persistence (memory, SQLite, MongoDB).
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/core/...               # Domain logic only
//	go test -run Example ./pkg/...       # Examples only
//
// [core]: https://pkg.go.dev/github.com/matzehuels/scatter/pkg/core
// [core/rng]: https://pkg.go.dev/github.com/matzehuels/scatter/pkg/core/rng
// [core/generate]: https://pkg.go.dev/github.com/matzehuels/scatter/pkg/core/generate
// [core/render/pattern]: https://pkg.go.dev/github.com/matzehuels/scatter/pkg/core/render/pattern
// [core/render/sink]: https://pkg.go.dev/github.com/matzehuels/scatter/pkg/core/render/sink
// [core/codec]: https://pkg.go.dev/github.com/matzehuels/scatter/pkg/core/codec
// [core/stamp]: https://pkg.go.dev/github.com/matzehuels/scatter/pkg/core/stamp
// [core/edit]: https://pkg.go.dev/github.com/matzehuels/scatter/pkg/core/edit
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/scatter/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/scatter/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/scatter/pkg/store
// [io]: https://pkg.go.dev/github.com/matzehuels/scatter/pkg/io
// [httputil]: https://pkg.go.dev/github.com/matzehuels/scatter/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/scatter/pkg/observability
package pkg
