package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scatter/pkg/cache"
	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/codec"
	"github.com/matzehuels/scatter/pkg/core/edit"
	"github.com/matzehuels/scatter/pkg/core/generate"
	"github.com/matzehuels/scatter/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete generate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Generate
	genStart := time.Now()
	comp, genHit, err := r.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Composition = comp
	result.Stats.GenerateTime = time.Since(genStart)
	result.Stats.ShapeCount = len(comp.Shapes)
	result.CacheInfo.GenerateHit = genHit

	r.Logger.Info("generated composition",
		"seed", comp.Meta.Seed,
		"shapes", len(comp.Shapes),
		"cached", genHit,
		"duration", result.Stats.GenerateTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, comp, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Hash = Hash(comp)
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateWithCacheInfo produces the composition for opts, consulting the
// cache unless opts.Refresh is set, and reports whether it was a cache hit.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (art.Composition, bool, error) {
	if err := opts.ValidateForGenerate(); err != nil {
		return art.Composition{}, false, err
	}
	opts.SetGenerateDefaults()

	cacheKey := r.Keyer.CompositionKey(opts.CompositionKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if c, err := codec.UnmarshalJSON(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "composition")
				return c, true, nil
			}
		}
	}
	observability.Cache().OnCacheMiss(ctx, "composition")

	seed := *opts.Seed
	observability.Pipeline().OnGenerateStart(ctx, seed, opts.ShapeCount)
	start := time.Now()

	c := generate.Generate(opts.Config)
	bg, err := opts.background()
	if err != nil {
		return art.Composition{}, false, err
	}
	if bg != nil {
		c.Background = bg
	}
	observability.Pipeline().OnGenerateComplete(ctx, seed, len(c.Shapes), time.Since(start))

	// Cache the result
	if data, err := codec.MarshalJSON(c); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.CompositionTTL); err != nil {
			r.Logger.Debug("cache set failed", "key", cacheKey, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "composition", len(data))
		}
	}

	return c, false, nil
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, opts Options) (art.Composition, error) {
	c, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return c, err
}

// RenderWithCacheInfo renders c in every requested format. Formats found
// in the cache are reused; the rest are rendered and stored. The bool is
// true when every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, c art.Composition, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hash := Hash(c)
	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	observability.Pipeline().OnRenderStart(ctx, missing)
	start := time.Now()
	var renderErr error
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, missing, time.Since(start), renderErr)
	}()

	for _, format := range missing {
		data, err := RenderFormat(ctx, c, format, opts)
		if err != nil {
			renderErr = fmt.Errorf("render %s: %w", format, err)
			return nil, false, renderErr
		}
		artifacts[format] = data

		cacheKey := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.ArtifactTTL); err != nil {
			r.Logger.Debug("cache set failed", "key", cacheKey, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, c art.Composition, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, c, opts)
	return artifacts, err
}

// Decode recovers the composition embedded in a rendered SVG. Unlike
// codec.Decode it reports why nothing could be recovered.
func (r *Runner) Decode(svg []byte) (art.Composition, error) {
	c, err := codec.Parse(svg)
	if err != nil {
		return art.Composition{}, err
	}
	return *c, nil
}

// Edit recovers the composition from svg, applies ops in order and renders
// the result as SVG. Either every op applies or none does.
func (r *Runner) Edit(ctx context.Context, svg []byte, ops ...edit.Op) (*Result, error) {
	start := time.Now()
	c, err := r.Decode(svg)
	if err == nil {
		err = edit.ApplyAll(&c, ops...)
	}
	elapsed := time.Since(start)
	observability.Pipeline().OnEditComplete(ctx, len(ops), elapsed, err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("applied edits", "ops", len(ops), "shapes", len(c.Shapes), "duration", elapsed)

	renderStart := time.Now()
	out, _, err := r.RenderWithCacheInfo(ctx, c, Options{Formats: []string{FormatSVG}})
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return &Result{
		Composition: c,
		Hash:        Hash(c),
		Artifacts:   out,
		Stats: Stats{
			ShapeCount: len(c.Shapes),
			EditTime:   elapsed,
			RenderTime: time.Since(renderStart),
		},
	}, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// Hash returns the content hash of c's JSON form. Equal compositions have
// equal hashes.
func Hash(c art.Composition) string {
	data, err := codec.MarshalJSON(c)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
