// Package migrations holds the embedded schema of the SQL key/value backends
// and runs it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

//go:embed postgres/*.sql mysql/*.sql sqlite/*.sql
var files embed.FS

// Dialects with embedded migrations
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

func newMigrate(dialect, databaseURL string) (*migrate.Migrate, error) {
	src, err := iofs.New(files, dialect)
	if err != nil {
		return nil, fmt.Errorf("no migrations for dialect %q: %w", dialect, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// Up applies all pending migrations
func Up(dialect, databaseURL string) error {
	m, err := newMigrate(dialect, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug().Str("dialect", dialect).Msg("database migration: no changes")
			return nil
		}
		return fmt.Errorf("failed to run migrate up: %w", err)
	}

	log.Info().Str("dialect", dialect).Msg("database migration: success")
	return nil
}

// Down rolls back every migration
func Down(dialect, databaseURL string) error {
	m, err := newMigrate(dialect, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrate down: %w", err)
	}
	return nil
}
