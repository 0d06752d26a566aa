package httputil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCacheGetSet(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set("https://example.com/a.png", []byte("png bytes")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	data, ok, err := c.Get("https://example.com/a.png")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v; want hit", ok, err)
	}
	if string(data) != "png bytes" {
		t.Errorf("Get() = %q", data)
	}
}

func TestCacheMiss(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	data, ok, err := c.Get("missing")
	if err != nil || ok || data != nil {
		t.Errorf("Get(missing) = %q, %v, %v", data, ok, err)
	}
}

func TestCacheExpiration(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	if err := c.Set("key", []byte("stale")); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(c.keyPath("key"), old, old); err != nil {
		t.Fatal(err)
	}

	data, ok, err := c.Get("key")
	if !errors.Is(err, ErrExpired) {
		t.Errorf("err = %v, want ErrExpired", err)
	}
	if ok {
		t.Error("expired entry reported as fresh")
	}
	if string(data) != "stale" {
		t.Errorf("stale data = %q", data)
	}
}

func TestCacheNoTTL(t *testing.T) {
	c, _ := NewCache(t.TempDir(), 0)
	_ = c.Set("key", []byte("v"))
	old := time.Now().Add(-24 * 365 * time.Hour)
	_ = os.Chtimes(c.keyPath("key"), old, old)

	if _, ok, err := c.Get("key"); !ok || err != nil {
		t.Errorf("TTL 0 should never expire: %v, %v", ok, err)
	}
}

func TestCacheKeyStability(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	if c.keyPath("test") != c.keyPath("test") {
		t.Error("path should be deterministic")
	}
	if c.keyPath("test") == c.keyPath("other") {
		t.Error("different keys should produce different paths")
	}
}

func TestNewCacheDefaultDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	c, err := NewCache("", time.Hour)
	if err != nil {
		t.Fatalf("NewCache() failed: %v", err)
	}
	want := filepath.Join(dir, "scatter", "http")
	if c.Dir() != want {
		t.Errorf("Dir() = %s, want %s", c.Dir(), want)
	}
	if c.TTL() != time.Hour {
		t.Errorf("TTL() = %v", c.TTL())
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

func TestCacheNamespace(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	a := c.Namespace("a:")
	b := c.Namespace("b:")

	_ = a.Set("k", []byte("from a"))
	_ = b.Set("k", []byte("from b"))

	got, _, _ := a.Get("k")
	if string(got) != "from a" {
		t.Errorf("a.Get = %q", got)
	}
	got, _, _ = c.Namespace("a:").Namespace("").Get("k")
	if string(got) != "from a" {
		t.Errorf("chained namespace = %q", got)
	}
	if _, ok, _ := c.Get("k"); ok {
		t.Error("unprefixed key should miss")
	}
	got, _, _ = c.Get("a:k")
	if string(got) != "from a" {
		t.Errorf("prefix should be part of the key: %q", got)
	}
}
