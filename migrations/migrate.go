// Package migrations embeds the schema of both database backends and
// applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedMigrations embed.FS

var dialects = map[string]goose.Dialect{
	"postgres": goose.DialectPostgres,
	"sqlite":   goose.DialectSQLite3,
}

// Migrate applies every pending migration of dialect ("postgres" or
// "sqlite") and returns the schema version reached.
func Migrate(ctx context.Context, db *sql.DB, dialect string) (int64, error) {
	if db == nil {
		return 0, errors.New("migration error: db is nil")
	}
	gd, ok := dialects[dialect]
	if !ok {
		return 0, fmt.Errorf("migration error: unknown dialect %q", dialect)
	}

	scripts, err := fs.Sub(embedMigrations, dialect)
	if err != nil {
		return 0, fmt.Errorf("migration error: %w", err)
	}
	provider, err := goose.NewProvider(gd, db, scripts)
	if err != nil {
		return 0, fmt.Errorf("migration error: %w", err)
	}

	if _, err = provider.Up(ctx); err != nil {
		return 0, fmt.Errorf("migration error: %w", err)
	}
	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("migration error reading version: %w", err)
	}
	return version, nil
}
