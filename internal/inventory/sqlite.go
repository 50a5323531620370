// Package inventory keeps a local record of every materialized file, so
// past fetches can be inspected without touching the archive.
package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"goesfetch/internal/goes"
	"goesfetch/internal/inventory/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteInventory implements the Inventory interface using SQLite.
type SQLiteInventory struct {
	db   *sql.DB
	path string
}

// NewSQLiteInventory opens the inventory database at path and brings its
// schema up to date. path can be a file path or ":memory:" for an
// in-memory database.
func NewSQLiteInventory(path string) (*SQLiteInventory, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating inventory database: %w", err)
	}
	return &SQLiteInventory{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for tools and tests that need a properly configured SQLite connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Record inserts one download outcome.
func (s *SQLiteInventory) Record(ctx context.Context, session string, res goes.DownloadResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO downloads (session, object_key, satellite, product, local_path, bytes, scan_start, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session,
		res.Record.Key,
		string(res.Record.Satellite),
		res.Record.Product,
		res.LocalPath,
		res.Bytes,
		res.Record.Start.UTC(),
		string(res.Status),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording download: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first.
func (s *SQLiteInventory) List(ctx context.Context, limit int) ([]goes.InventoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session, object_key, satellite, product, local_path, bytes, scan_start, status, created_at
		FROM downloads
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing downloads: %w", err)
	}
	defer rows.Close()

	var entries []goes.InventoryEntry
	for rows.Next() {
		var e goes.InventoryEntry
		if err := rows.Scan(&e.ID, &e.Session, &e.Key, &e.Satellite, &e.Product,
			&e.LocalPath, &e.Bytes, &e.ScanStart, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning download row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading download rows: %w", err)
	}
	return entries, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteInventory) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteInventory) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteInventory implements the Inventory interface
var _ goes.Inventory = (*SQLiteInventory)(nil)
