package store

import (
	"context"
	"time"

	"github.com/matzehuels/scatter/pkg/observability"
)

// instrumented reports every operation of the wrapped store to the
// registered observability.StoreHooks.
type instrumented struct {
	Store
}

// Instrument wraps s so each call is reported through observability.Store().
func Instrument(s Store) Store {
	if _, ok := s.(instrumented); ok {
		return s
	}
	return instrumented{s}
}

func (s instrumented) Get(ctx context.Context, id string) (*Document, error) {
	start := time.Now()
	d, err := s.Store.Get(ctx, id)
	observability.Store().OnStoreOp(ctx, "get", time.Since(start), err)
	return d, err
}

func (s instrumented) Put(ctx context.Context, doc *Document) error {
	start := time.Now()
	err := s.Store.Put(ctx, doc)
	observability.Store().OnStoreOp(ctx, "put", time.Since(start), err)
	return err
}

func (s instrumented) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.Store.Delete(ctx, id)
	observability.Store().OnStoreOp(ctx, "delete", time.Since(start), err)
	return err
}

func (s instrumented) List(ctx context.Context, limit int) ([]Document, error) {
	start := time.Now()
	docs, err := s.Store.List(ctx, limit)
	observability.Store().OnStoreOp(ctx, "list", time.Since(start), err)
	return docs, err
}
