package store

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/scatter/pkg/errors"
	"github.com/matzehuels/scatter/pkg/observability"
)

// clock returns a now func that advances one second per call.
func clock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	mem := NewMemoryStore()
	mem.now = clock()

	lite, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "nested", "docs.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	lite.now = clock()
	t.Cleanup(func() { lite.Close() })

	out := map[string]Store{"memory": mem, "sqlite": lite}

	if uri := os.Getenv("SCATTER_TEST_MONGO"); uri != "" {
		m, err := NewMongoStore(ctx, uri)
		if err != nil {
			t.Fatalf("NewMongoStore: %v", err)
		}
		m.now = clock()
		_, _ = m.coll.DeleteMany(ctx, map[string]any{})
		t.Cleanup(func() { m.Close() })
		out["mongo"] = m
	}
	return out
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			doc := &Document{Name: "first", SVG: []byte("<svg/>"), Seed: 42, Width: 10, Height: 20, ShapeCount: 3}
			if err := s.Put(ctx, doc); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if doc.ID == "" {
				t.Fatal("Put did not assign an id")
			}
			if doc.CreatedAt.IsZero() || !doc.CreatedAt.Equal(doc.UpdatedAt) {
				t.Errorf("timestamps = %v, %v", doc.CreatedAt, doc.UpdatedAt)
			}

			got, err := s.Get(ctx, doc.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got.SVG) != "<svg/>" || got.Seed != 42 || got.Width != 10 || got.Height != 20 || got.ShapeCount != 3 || got.Name != "first" {
				t.Errorf("Get = %+v", got)
			}
			if !got.CreatedAt.Equal(doc.CreatedAt) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, doc.CreatedAt)
			}

			created := doc.CreatedAt
			update := &Document{ID: doc.ID, Name: "renamed", SVG: []byte("<svg></svg>"), Seed: 7}
			if err := s.Put(ctx, update); err != nil {
				t.Fatalf("Put update: %v", err)
			}
			got, err = s.Get(ctx, doc.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got.Name != "renamed" || string(got.SVG) != "<svg></svg>" || got.Seed != 7 {
				t.Errorf("updated = %+v", got)
			}
			if !got.CreatedAt.Equal(created) {
				t.Errorf("CreatedAt changed on update: %v -> %v", created, got.CreatedAt)
			}
			if !got.UpdatedAt.After(created) {
				t.Errorf("UpdatedAt not advanced: %v", got.UpdatedAt)
			}

			if err := s.Delete(ctx, doc.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, doc.ID); !stderrors.Is(err, ErrNotFound) {
				t.Errorf("Get after delete: %v", err)
			}
			if err := s.Delete(ctx, doc.ID); !errors.Is(err, errors.ErrCodeDocumentNotFound) {
				t.Errorf("second Delete: %v", err)
			}
		})
	}
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var ids []string
			for i := range 3 {
				doc := &Document{SVG: []byte("<svg/>"), Seed: uint32(i)}
				if err := s.Put(ctx, doc); err != nil {
					t.Fatal(err)
				}
				ids = append(ids, doc.ID)
			}

			docs, err := s.List(ctx, 0)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(docs) != 3 {
				t.Fatalf("List returned %d documents, want 3", len(docs))
			}
			for i, d := range docs {
				if want := ids[len(ids)-1-i]; d.ID != want {
					t.Errorf("docs[%d] = %s, want %s (newest first)", i, d.ID, want)
				}
				if d.SVG != nil {
					t.Errorf("docs[%d] carries its SVG body", i)
				}
			}

			docs, err = s.List(ctx, 2)
			if err != nil {
				t.Fatal(err)
			}
			if len(docs) != 2 {
				t.Errorf("List(2) returned %d documents", len(docs))
			}
		})
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	doc := &Document{SVG: []byte("abc")}
	if err := s.Put(ctx, doc); err != nil {
		t.Fatal(err)
	}
	doc.SVG[0] = 'x'
	got, _ := s.Get(ctx, doc.ID)
	if string(got.SVG) != "abc" {
		t.Errorf("stored SVG aliased the caller's slice: %q", got.SVG)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Open(\"\") = %T", s)
	}

	s, err = Open(ctx, "file:"+filepath.Join(t.TempDir(), "x.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("Open(file:) = %T", s)
	}

	if _, err := Open(ctx, "postgres://nope"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Open(postgres) error = %v", err)
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Error("NewID returned the same id twice")
	}
	if len(a) != 36 {
		t.Errorf("NewID = %q, want a UUID", a)
	}
}

type countingHooks struct{ ops []string }

func (h *countingHooks) OnStoreOp(_ context.Context, op string, _ time.Duration, _ error) {
	h.ops = append(h.ops, op)
}

func TestInstrument(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	s := Instrument(NewMemoryStore())
	if Instrument(s) != s {
		t.Error("Instrument wrapped an instrumented store twice")
	}
	doc := &Document{SVG: []byte("<svg/>")}
	_ = s.Put(ctx, doc)
	_, _ = s.Get(ctx, doc.ID)
	_, _ = s.List(ctx, 0)
	_ = s.Delete(ctx, doc.ID)
	_ = s.Close()

	want := []string{"put", "get", "list", "delete"}
	if strings.Join(hooks.ops, ",") != strings.Join(want, ",") {
		t.Errorf("ops = %v, want %v", hooks.ops, want)
	}
}
