package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Rrens/qorix-chat/internal/domain"
	_ "modernc.org/sqlite"
)

// KVStore implements domain.KVStore on a local SQLite file
type KVStore struct {
	db   *sql.DB
	path string
}

// Open opens (and creates) the SQLite database file
func Open(ctx context.Context, path string) (*KVStore, error) {
	if err := EnsureDir(path); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// One writer at a time keeps SQLite away from SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	return &KVStore{db: db, path: path}, nil
}

// EnsureDir creates the directory holding the database file
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("database file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// MigrationURL returns the golang-migrate URL of this database
func MigrationURL(path string) string {
	return "sqlite://" + path
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *KVStore) Close() error {
	return s.db.Close()
}
