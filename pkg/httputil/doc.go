// Package httputil fetches remote resources for the CLI.
//
// # Overview
//
// Stamp sources may be given as http(s) URLs instead of local files. This
// package provides the pieces behind that:
//
//   - [Fetcher]: GET with retries and an on-disk response cache
//   - [Cache]: file-based byte cache with a time-to-live
//   - [Retry]: retry with exponential backoff for transient failures
//
// # Caching
//
// Responses are cached under $XDG_CACHE_HOME/scatter/http with a default
// TTL of 24 hours, so tracing the same remote sprite sheet twice only
// downloads it once:
//
//	f, err := httputil.NewFetcher("", httputil.DefaultTTL)
//	data, err := f.Fetch(ctx, "https://example.com/leaf.png")
//
// # Retry
//
// Network errors and 5xx responses are retried three times with a doubling
// delay. Other statuses fail immediately with FETCH_FAILED, and 404 with
// FILE_NOT_FOUND.
package httputil
