package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/Rrens/qorix-chat/internal/config"
	"github.com/Rrens/qorix-chat/internal/domain"
)

// KVStore implements domain.KVStore on a MySQL table
type KVStore struct {
	db *sql.DB
}

// Open connects to MySQL and verifies the connection
func Open(ctx context.Context, cfg config.DatabaseConfig) (*KVStore, error) {
	db, err := sql.Open("mysql", cfg.MySQLDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	return &KVStore{db: db}, nil
}

// MigrationURL returns the golang-migrate URL for the database
func MigrationURL(cfg config.DatabaseConfig) string {
	return "mysql://" + cfg.MySQLDSN() + "&multiStatements=true"
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT `value` FROM kv_store WHERE `key` = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv_store (`key`, `value`) VALUES (?, ?) ON DUPLICATE KEY UPDATE `value` = VALUES(`value`)",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_store WHERE `key` = ?", key); err != nil {
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
