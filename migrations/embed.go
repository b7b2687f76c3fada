// Package migrations embeds the SQL migration files so they can be applied
// by the goose programmatic API at server start and in tests.
// Postgres and SQLite each have their own directory of migrations.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Up applies every pending migration for dialect to db and returns the
// number of migrations applied. Only DialectPostgres and DialectSQLite3 are
// supported.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect) (int, error) {
	var dir string
	switch dialect {
	case goose.DialectPostgres:
		dir = "postgres"
	case goose.DialectSQLite3:
		dir = "sqlite"
	default:
		return 0, fmt.Errorf("migrations.Up: unsupported dialect %q", dialect)
	}

	fsys, err := fs.Sub(FS, dir)
	if err != nil {
		return 0, fmt.Errorf("migrations.Up: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("migrations.Up: create provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrations.Up: %w", err)
	}
	return len(results), nil
}
