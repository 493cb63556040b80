package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Oxyrus/virtualtourist/internal/storage"
)

// Store is a SQLite-backed implementation of the storage.Store interface.
type Store struct {
	db        *sql.DB
	locations *locationRepository
	photos    *photoRepository
}

// Open initialises (or opens) a SQLite database located at the provided path.
// The directory is created if it does not already exist. The returned Store is
// safe for concurrent use.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path must not be empty")
	}

	if err := ensureDir(path); err != nil {
		return nil, fmt.Errorf("sqlite: ensure directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := configure(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := bootstrap(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:        db,
		locations: &locationRepository{db: db},
		photos:    &photoRepository{db: db},
	}, nil
}

// Locations returns the location repository.
func (s *Store) Locations() storage.Locations {
	return s.locations
}

// Photos returns the photo repository.
func (s *Store) Photos() storage.Photos {
	return s.photos
}

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func configure(db *sql.DB) error {
	stmts := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA journal_mode = WAL;",
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("sqlite: configure: %w", err)
		}
	}

	return nil
}

func bootstrap(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS locations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			latitude REAL NOT NULL CHECK (latitude BETWEEN -90 AND 90),
			longitude REAL NOT NULL CHECK (longitude BETWEEN -180 AND 180),
			title TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS photos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			location_id INTEGER,
			remote_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			image_path TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY(location_id) REFERENCES locations(id) ON DELETE SET NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_photos_location_id ON photos(location_id);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_photos_location_remote ON photos(location_id, remote_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("sqlite: bootstrap: %w", err)
		}
	}

	return nil
}

var _ storage.Store = (*Store)(nil)
