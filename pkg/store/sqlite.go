package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ============================================================
// SQLite Store
// ============================================================

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id          TEXT PRIMARY KEY,
    name        TEXT    NOT NULL DEFAULT '',
    svg         BLOB    NOT NULL,
    seed        INTEGER NOT NULL,
    width       INTEGER NOT NULL,
    height      INTEGER NOT NULL,
    shape_count INTEGER NOT NULL,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_updated ON documents (updated_at DESC);
`

// SQLiteStore keeps documents in a single SQLite file. Timestamps are
// stored as Unix nanoseconds.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, now: time.Now}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, name, svg, seed, width, height, shape_count, created_at, updated_at
        FROM documents
        WHERE id = ?
    `, id)

	var (
		d                Document
		created, updated int64
	)
	if err := row.Scan(&d.ID, &d.Name, &d.SVG, &d.Seed, &d.Width, &d.Height, &d.ShapeCount, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, err
	}
	d.CreatedAt, d.UpdatedAt = time.Unix(0, created).UTC(), time.Unix(0, updated).UTC()
	return &d, nil
}

func (s *SQLiteStore) Put(ctx context.Context, doc *Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existing *Document
	if doc.ID != "" {
		var created int64
		err := tx.QueryRowContext(ctx, `SELECT created_at FROM documents WHERE id = ?`, doc.ID).Scan(&created)
		switch {
		case err == nil:
			existing = &Document{CreatedAt: time.Unix(0, created).UTC()}
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}
	}
	stamp(doc, existing, s.now().UTC())

	svg := doc.SVG
	if svg == nil {
		svg = []byte{}
	}
	_, err = tx.ExecContext(ctx, `
        INSERT INTO documents (id, name, svg, seed, width, height, shape_count, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET
            name = excluded.name,
            svg = excluded.svg,
            seed = excluded.seed,
            width = excluded.width,
            height = excluded.height,
            shape_count = excluded.shape_count,
            updated_at = excluded.updated_at
    `, doc.ID, doc.Name, svg, int64(doc.Seed), doc.Width, doc.Height, doc.ShapeCount,
		doc.CreatedAt.UnixNano(), doc.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, seed, width, height, shape_count, created_at, updated_at
        FROM documents
        ORDER BY updated_at DESC, id
        LIMIT ?
    `, listLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			d                Document
			created, updated int64
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.Seed, &d.Width, &d.Height, &d.ShapeCount, &created, &updated); err != nil {
			return nil, err
		}
		d.CreatedAt, d.UpdatedAt = time.Unix(0, created).UTC(), time.Unix(0, updated).UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
