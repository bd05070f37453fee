// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a SQLite record of fetched chapters: the URL, the
// HTTP status and size of each download, and whether it was converted.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/chapter-images/pkg/types"
)

// Store manages the ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path, creating its parent directory
// and the schema if they do not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS chapters (
		idx INTEGER PRIMARY KEY,
		source_url TEXT NOT NULL,
		vector_path TEXT NOT NULL,
		raster_path TEXT NOT NULL,
		status_code INTEGER,
		bytes INTEGER,
		converted INTEGER NOT NULL DEFAULT 0,
		fetched_at TEXT
	)`)
	return err
}

// Record inserts or replaces the row for ch.Index.
func (s *Store) Record(ctx context.Context, ch types.Chapter) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO chapters
		(idx, source_url, vector_path, raster_path, status_code, bytes, converted, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(idx) DO UPDATE SET
			source_url = excluded.source_url,
			vector_path = excluded.vector_path,
			raster_path = excluded.raster_path,
			status_code = excluded.status_code,
			bytes = excluded.bytes,
			converted = excluded.converted,
			fetched_at = excluded.fetched_at`,
		ch.Index, ch.SourceURL, ch.VectorPath, ch.RasterPath,
		ch.StatusCode, ch.Bytes, ch.Converted, ch.FetchedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording chapter %d: %w", ch.Index, err)
	}
	return nil
}

// List returns every recorded chapter ordered by index.
func (s *Store) List(ctx context.Context) ([]types.Chapter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT idx, source_url, vector_path, raster_path,
		status_code, bytes, converted, fetched_at FROM chapters ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var out []types.Chapter
	for rows.Next() {
		var (
			ch        types.Chapter
			fetchedAt string
		)
		if err := rows.Scan(&ch.Index, &ch.SourceURL, &ch.VectorPath, &ch.RasterPath,
			&ch.StatusCode, &ch.Bytes, &ch.Converted, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, fetchedAt); err == nil {
			ch.FetchedAt = t
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// ExportYAML writes every recorded chapter to w as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	chapters, err := s.List(ctx)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(chapters); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}
