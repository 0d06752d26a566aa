package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/scatter/pkg/buildinfo"
	"github.com/matzehuels/scatter/pkg/errors"
)

const (
	// DefaultTTL is how long fetched responses stay fresh.
	DefaultTTL = 24 * time.Hour

	// MaxBytes caps a fetched body.
	MaxBytes = 32 << 20

	defaultAttempts = 3
	defaultDelay    = time.Second
	defaultTimeout  = 30 * time.Second
)

// IsURL reports whether s names an http or https resource.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetcher downloads resources over HTTP, retrying transient failures and
// caching bodies on disk.
type Fetcher struct {
	http     *http.Client
	cache    *Cache
	attempts int
	delay    time.Duration
}

// NewFetcher creates a Fetcher caching in dir (DefaultDir when empty).
func NewFetcher(dir string, ttl time.Duration) (*Fetcher, error) {
	c, err := NewCache(dir, ttl)
	if err != nil {
		return nil, err
	}
	return &Fetcher{
		http:     &http.Client{Timeout: defaultTimeout},
		cache:    c.Namespace("get:"),
		attempts: defaultAttempts,
		delay:    defaultDelay,
	}, nil
}

// Fetch returns the body at url. A fresh cached copy is returned without a
// request; a stale one is used only when the refresh fails.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	cached, ok, cacheErr := f.cache.Get(url)
	if ok {
		return cached, nil
	}

	var body []byte
	err := Retry(ctx, f.attempts, f.delay, func() error {
		b, err := f.get(ctx, url)
		body = b
		return err
	})
	if err != nil {
		if cacheErr == ErrExpired && cached != nil {
			return cached, nil
		}
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeFetchFailed, err, "fetch %s: %v", url, err)
	}
	_ = f.cache.Set(url, body)
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid url %q", url)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(url, resp.StatusCode); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBytes+1))
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	if len(data) > MaxBytes {
		return nil, errors.New(errors.ErrCodeFetchFailed, "fetch %s: body exceeds %d bytes", url, MaxBytes)
	}
	return data, nil
}

func checkStatus(url string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeFileNotFound, "fetch %s: not found", url)
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("status %d", code)}
	default:
		return errors.New(errors.ErrCodeFetchFailed, "fetch %s: status %d", url, code)
	}
}
