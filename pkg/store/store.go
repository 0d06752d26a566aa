// Package store persists rendered documents.
//
// A document is a rendered SVG plus a few fields lifted out of its embedded
// state for listing. The SVG is the source of truth: reopening a document
// means decoding the composition back out of it.
//
// Backends:
//   - [MemoryStore]: process-local, for tests and the default server
//   - [SQLiteStore]: a local database file (github.com/ncruces/go-sqlite3)
//   - [MongoStore]: a shared MongoDB collection for server deployments
//
// [Open] picks one from a DSN:
//
//	store, err := store.Open(ctx, "file:/home/me/.local/share/scatter/docs.db")
//	store, err := store.Open(ctx, "mongodb://localhost:27017/scatter")
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/scatter/pkg/errors"
)

// ErrNotFound is returned (wrapped) when a document does not exist.
var ErrNotFound = errors.New(errors.ErrCodeDocumentNotFound, "document not found")

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

// Document is a stored rendering.
type Document struct {
	ID         string    `json:"id" bson:"_id"`
	Name       string    `json:"name,omitempty" bson:"name,omitempty"`
	SVG        []byte    `json:"-" bson:"svg,omitempty"`
	Seed       uint32    `json:"seed" bson:"seed"`
	Width      int       `json:"width" bson:"width"`
	Height     int       `json:"height" bson:"height"`
	ShapeCount int       `json:"shapeCount" bson:"shape_count"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updated_at"`
}

// Store is implemented by every backend. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns the document with id, or an error wrapping ErrNotFound.
	Get(ctx context.Context, id string) (*Document, error)

	// Put inserts or replaces doc. An empty ID is filled with NewID;
	// CreatedAt is kept from an existing document and UpdatedAt is set to now.
	Put(ctx context.Context, doc *Document) error

	// Delete removes the document with id, or returns an error wrapping
	// ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List returns up to limit documents, most recently updated first,
	// without their SVG bodies. A non-positive limit means DefaultListLimit.
	List(ctx context.Context, limit int) ([]Document, error)

	// Close releases the backend's resources.
	Close() error
}

// NewID returns a fresh document id.
func NewID() string {
	return uuid.NewString()
}

// Open returns the store described by dsn:
//
//	"" or "memory"              MemoryStore
//	"file:PATH" or "*.db"        SQLiteStore
//	"mongodb://..."              MongoStore (database from the URI path,
//	                             default "scatter")
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case dsn == "" || dsn == "memory":
		return NewMemoryStore(), nil
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		s, err := NewMongoStore(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case strings.HasPrefix(dsn, "file:"), strings.HasSuffix(dsn, ".db"):
		s, err := OpenSQLite(ctx, strings.TrimPrefix(dsn, "file:"))
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported store %q", dsn)
}

// notFound wraps ErrNotFound with the id.
func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func listLimit(n int) int {
	if n <= 0 {
		return DefaultListLimit
	}
	return n
}

// stamp fills ID and timestamps before a write.
func stamp(doc *Document, existing *Document, now time.Time) {
	if doc.ID == "" {
		doc.ID = NewID()
	}
	switch {
	case existing != nil:
		doc.CreatedAt = existing.CreatedAt
	case doc.CreatedAt.IsZero():
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
}
