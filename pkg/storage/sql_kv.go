package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"       // SQLite database/sql driver
	_ "github.com/rqlite/gorqlite/stdlib" // rqlite database/sql driver
)

const kvSchema = `
	CREATE TABLE IF NOT EXISTS fayol_kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)
`

// SQLKV is a KVStore kept in a single SQL table. It runs on a local SQLite
// file or on an rqlite cluster.
type SQLKV struct {
	db *sql.DB
}

var _ KVStore = (*SQLKV)(nil)

// OpenSQLiteKV opens (or creates) a SQLite database at path.
func OpenSQLiteKV(ctx context.Context, path string) (*SQLKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	return newSQLKV(ctx, db)
}

// OpenRQLiteKV connects to an rqlite node, e.g. "http://localhost:4001".
func OpenRQLiteKV(ctx context.Context, dsn string) (*SQLKV, error) {
	db, err := sql.Open("rqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open RQLite SQL connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(10 * time.Second)
	return newSQLKV(ctx, db)
}

// NewSQLKV uses an already opened database.
func NewSQLKV(ctx context.Context, db *sql.DB) (*SQLKV, error) {
	return newSQLKV(ctx, db)
}

func newSQLKV(ctx context.Context, db *sql.DB) (*SQLKV, error) {
	if _, err := db.ExecContext(ctx, kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}
	return &SQLKV{db: db}, nil
}

func (s *SQLKV) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM fayol_kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query key: %w", err)
	}
	return value, nil
}

func (s *SQLKV) SetValue(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO fayol_kv (key, value, updated_at) VALUES (?, ?, ?)",
		key, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}
	return nil
}

func (s *SQLKV) DeleteValue(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM fayol_kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLKV) Close() error {
	return s.db.Close()
}
