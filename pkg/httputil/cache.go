package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"

	pkgio "github.com/matzehuels/scatter/pkg/io"
)

// ErrExpired is returned by [Cache.Get] when an entry exists but has
// outlived the cache's TTL. The stale bytes are still returned so callers
// can fall back to them when a refresh fails.
var ErrExpired = errors.New("cache entry expired")

// Cache stores raw byte entries as files named by the SHA-256 of their key.
//
// Entries expire by modification time; a TTL of 0 never expires. Several
// Cache values (even in different processes) may share a directory since
// every write is an atomic rename.
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// NewCache creates a Cache in dir, or in DefaultDir when dir is empty.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// DefaultDir returns $XDG_CACHE_HOME/scatter/http, falling back to the
// user cache directory.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		d, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		base = d
	}
	return filepath.Join(base, "scatter", "http"), nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the entry lifetime. Zero means entries never expire.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the entry for key.
//
//   - (data, true, nil): fresh hit
//   - (nil, false, nil): miss
//   - (data, false, ErrExpired): stale entry
//   - (nil, false, err): I/O failure
func (c *Cache) Get(key string) ([]byte, bool, error) {
	path := c.keyPath(c.prefix + key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return data, false, ErrExpired
	}
	return data, true, nil
}

// Set stores data under key, refreshing its TTL.
func (c *Cache) Set(key string, data []byte) error {
	return pkgio.WriteFile(c.keyPath(c.prefix+key), data)
}

// Namespace returns a view of c that prefixes every key with prefix.
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{dir: c.dir, ttl: c.ttl, prefix: c.prefix + prefix}
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
