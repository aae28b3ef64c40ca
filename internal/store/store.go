// Package store caches extraction results in SQLite so unchanged documents
// are not parsed twice. Keys are opaque to the store; callers combine the
// document's content hash with the parser settings it was read under.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS outline_cache (
	cache_key    TEXT PRIMARY KEY,
	filename     TEXT NOT NULL,
	title        TEXT NOT NULL,
	result_json  TEXT NOT NULL,
	created_at   INTEGER NOT NULL
);`

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// Store is a result cache backed by one SQLite database.
type Store struct {
	db *sql.DB
}

// Record is one cached result.
type Record struct {
	Key       string
	Filename  string
	Result    outline.Result
	CreatedAt time.Time
}

// Open opens or creates the cache at path. ":memory:" gives a private
// in-memory cache.
func Open(path string) (*Store, error) {
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if path == memoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the cached record for key, or nil if there is none.
func (s *Store) Get(ctx context.Context, key string) (*Record, error) {
	var (
		rec       Record
		raw       string
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT cache_key, filename, result_json, created_at FROM outline_cache WHERE cache_key = ?`,
		key,
	).Scan(&rec.Key, &rec.Filename, &raw, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get outline %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), &rec.Result); err != nil {
		return nil, fmt.Errorf("decode outline %s: %w", key, err)
	}
	if rec.Result.Outline == nil {
		rec.Result.Outline = []outline.Entry{}
	}
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &rec, nil
}

// Put stores r under key, replacing any earlier result.
func (s *Store) Put(ctx context.Context, key, filename string, r outline.Result) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode outline: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO outline_cache (cache_key, filename, title, result_json, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			filename = excluded.filename,
			title = excluded.title,
			result_json = excluded.result_json,
			created_at = excluded.created_at`,
		key, filename, r.Title, string(raw), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("put outline %s: %w", key, err)
	}
	return nil
}

// Count returns the number of cached results.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outline_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count outlines: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
