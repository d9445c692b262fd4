package pubsite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite manifest of processed image sets. It lets a later
// build reuse variant files written by an earlier one.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures its
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets parallel image workers read while one writes; busy_timeout
	// makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS derivatives (
    key TEXT PRIMARY KEY,
    source_hash TEXT NOT NULL,
    layout_hash TEXT NOT NULL,
    manifest TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS derivatives_source ON derivatives (source_hash);
`)
	return err
}

// GetDerivative returns the stored set for key, or ErrNotFound.
func (s *Store) GetDerivative(key string) (*ImageVariantSet, error) {
	var manifest string
	err := s.db.QueryRow(`SELECT manifest FROM derivatives WHERE key = ?`, key).Scan(&manifest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var set ImageVariantSet
	if err := json.Unmarshal([]byte(manifest), &set); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", key, err)
	}
	return &set, nil
}

// SaveDerivative upserts a set under its key.
func (s *Store) SaveDerivative(set *ImageVariantSet) error {
	manifest, err := json.Marshal(set)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO derivatives (key, source_hash, layout_hash, manifest, created_at) VALUES (?, ?, ?, ?, ?)`,
		set.Key, set.SourceHash, set.LayoutHash, string(manifest), time.Now().UTC().Format(time.RFC3339))
	return err
}

// DeleteDerivative removes a set by key.
func (s *Store) DeleteDerivative(key string) error {
	_, err := s.db.Exec(`DELETE FROM derivatives WHERE key = ?`, key)
	return err
}

// CountDerivatives returns the number of stored sets.
func (s *Store) CountDerivatives() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM derivatives`).Scan(&n)
	return n, err
}

// Prune deletes every set whose key is not in keep and returns what it removed,
// so the caller can clean up the variant files.
func (s *Store) Prune(keep map[string]struct{}) ([]*ImageVariantSet, error) {
	rows, err := s.db.Query(`SELECT key, manifest FROM derivatives`)
	if err != nil {
		return nil, err
	}
	var stale []*ImageVariantSet
	for rows.Next() {
		var key, manifest string
		if err := rows.Scan(&key, &manifest); err != nil {
			rows.Close()
			return nil, err
		}
		if _, ok := keep[key]; ok {
			continue
		}
		set := &ImageVariantSet{Key: key}
		_ = json.Unmarshal([]byte(manifest), set) // a corrupt row is still deleted
		stale = append(stale, set)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, set := range stale {
		if err := s.DeleteDerivative(set.Key); err != nil {
			return nil, err
		}
	}
	return stale, nil
}
