// Package cache stores generated compositions and rendered artifacts.
//
// Generation is deterministic: the same options and seed always produce the
// same composition, so results can be cached under a key derived from the
// options alone. Rendered artifacts (PNG, PDF, previews) are keyed by the
// composition's content hash plus the render options.
//
// # Backends
//
//   - [FileCache]: sharded JSON files under the user cache directory (CLI)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: stores nothing (--no-cache, tests)
//
// [Open] picks a backend from a spec string such as "redis://localhost:6379/0".
package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Default lifetimes.
const (
	// CompositionTTL bounds how long generated compositions are kept.
	CompositionTTL = 30 * 24 * time.Hour

	// ArtifactTTL bounds how long rendered artifacts are kept.
	ArtifactTTL = 7 * 24 * time.Hour
)

// DefaultDir returns the directory FileCache uses when none is given:
// $XDG_CACHE_HOME/scatter, falling back to the OS cache directory.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "scatter"), nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "scatter"), nil
}

// Open returns the cache described by spec:
//
//	""  or "file"         FileCache in DefaultDir
//	"none" or "off"       NullCache
//	"redis://..."         RedisCache
//	anything else         FileCache rooted at that directory
func Open(ctx context.Context, spec string) (Cache, error) {
	switch {
	case spec == "none" || spec == "off":
		return NewNullCache(), nil
	case strings.HasPrefix(spec, "redis://"), strings.HasPrefix(spec, "rediss://"):
		c, err := NewRedisCache(ctx, spec)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	dir := spec
	if dir == "" || dir == "file" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	c, err := NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return c, nil
}
