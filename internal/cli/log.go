// Package cli implements the scatter command-line interface.
//
// This package provides commands for generating compositions, re-rendering
// and editing saved ones, tracing stamps from images and serving the HTTP
// API. The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Generate a composition and write SVG, JSON, PNG or PDF
//   - render: Re-render a saved SVG or JSON composition to other formats
//   - inspect: List the shapes of a saved composition
//   - edit: Move, rotate, scale, recolor, reorder or reseed saved shapes
//   - tui: Edit a saved composition interactively
//   - stamp: Trace images into a stamp pool
//   - serve: Run the HTTP API
//   - cache, config: Manage the artifact cache and the settings file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/matzehuels/scatter/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scatter/pkg/observability"
)

// newLogger returns the CLI logger: timestamps as "15:04:05.00", filtered
// at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default outside of a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// timed starts a debug timer for step on the context logger. The returned
// func logs the elapsed time and err, if any; keyvals are attached to both
// lines.
//
//	done := timed(ctx, "trace", "file", path)
//	stamps, err := traceFile(...)
//	done(err)
func timed(ctx context.Context, step string, keyvals ...any) func(error) {
	l := loggerFromContext(ctx).With(keyvals...)
	start := time.Now()
	l.Debug(step + " start")
	return func(err error) {
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			l.Debug(step+" failed", "elapsed", elapsed, "error", err)
			return
		}
		l.Debug(step+" done", "elapsed", elapsed)
	}
}

// =============================================================================
// Debug hooks
// =============================================================================

// debugHooks logs every observability event at debug level.
type debugHooks struct {
	logger *log.Logger
}

// registerDebugHooks routes pipeline, cache and store events to logger.
func registerDebugHooks(logger *log.Logger) {
	h := debugHooks{logger: logger}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetStoreHooks(h)
}

func (h debugHooks) OnGenerateStart(_ context.Context, seed uint32, shapeCount int) {
	h.logger.Debug("generate start", "seed", seed, "shape_count", shapeCount)
}

func (h debugHooks) OnGenerateComplete(_ context.Context, seed uint32, shapes int, d time.Duration) {
	h.logger.Debug("generate complete", "seed", seed, "shapes", shapes, "duration", d)
}

func (h debugHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h debugHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render complete", "formats", formats, "duration", d, "error", err)
}

func (h debugHooks) OnEditComplete(_ context.Context, ops int, d time.Duration, err error) {
	h.logger.Debug("edit complete", "ops", ops, "duration", d, "error", err)
}

func (h debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h debugHooks) OnStoreOp(_ context.Context, op string, d time.Duration, err error) {
	h.logger.Debug("store", "op", op, "duration", d, "error", err)
}
