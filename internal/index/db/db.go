// Package db opens the DuckDB caption database.
package db

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/wethinkt/go-pikeru/internal/config"
)

// ErrNoRows is returned when a query expects a row but none is found.
var ErrNoRows = sql.ErrNoRows

// DefaultPath is where the caption database lives unless configured.
func DefaultPath() string {
	return filepath.Join(config.CacheDir(), "index.duckdb")
}

//go:embed schema/init.sql
var initSQL string

// DB is an open caption database.
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	if _, err := db.Exec(initSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := harden(db); err != nil {
		return nil, err
	}
	return &DB{DB: db, path: path}, nil
}

// OpenReadOnly opens an existing database without write access. DuckDB
// refuses this while another process holds the database read-write, so
// callers fall back to asking the running portal over HTTP.
func OpenReadOnly(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("caption database: %w", err)
	}
	db, err := sql.Open("duckdb", path+"?access_mode=READ_ONLY")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb (read-only): %w", err)
	}
	if err := harden(db); err != nil {
		return nil, err
	}
	return &DB{DB: db, path: path}, nil
}

// harden turns off file and network access from SQL.
func harden(db *sql.DB) error {
	if _, err := db.Exec("SET enable_external_access=false"); err != nil {
		db.Close()
		return fmt.Errorf("failed to set security settings: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}
