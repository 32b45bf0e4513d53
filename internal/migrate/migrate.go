// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mcoot/omnigram/migrations"
)

// Dialect names a supported SQL database
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// Up runs all pending migrations for the dialect against db
func Up(ctx context.Context, db *sql.DB, dialect Dialect) error {
	fsys, err := migrationFS(dialect)
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.Dialect(dialect), db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// UpDSN opens a short-lived pgx connection and migrates the Postgres schema
func UpDSN(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return Up(ctx, db, Postgres)
}

func migrationFS(dialect Dialect) (fs.FS, error) {
	switch dialect {
	case Postgres:
		return fs.Sub(migrations.Postgres, "postgres")
	case SQLite:
		return fs.Sub(migrations.SQLite, "sqlite")
	default:
		return nil, fmt.Errorf("unsupported migration dialect %q", dialect)
	}
}
