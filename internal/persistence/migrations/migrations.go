// Package migrations embeds the schema for every supported store and applies it
// with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Dialect selects the embedded migration set.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) goose() (goose.Dialect, error) {
	switch d {
	case SQLite:
		return goose.DialectSQLite3, nil
	case Postgres:
		return goose.DialectPostgres, nil
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %q", string(d))
	}
}

// FS returns the migration files for the dialect.
func FS(d Dialect) (fs.FS, error) {
	if _, err := d.goose(); err != nil {
		return nil, err
	}
	return fs.Sub(files, string(d))
}

func provider(db *sql.DB, d Dialect) (*goose.Provider, error) {
	dialect, err := d.goose()
	if err != nil {
		return nil, err
	}
	fsys, err := FS(d)
	if err != nil {
		return nil, err
	}
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("migrations: create provider: %w", err)
	}
	return p, nil
}

// Up applies every pending migration and returns the resulting schema version.
func Up(ctx context.Context, db *sql.DB, d Dialect) (int64, error) {
	p, err := provider(db, d)
	if err != nil {
		return 0, err
	}
	if _, err := p.Up(ctx); err != nil {
		return 0, fmt.Errorf("migrations: apply %s: %w", d, err)
	}
	return p.GetDBVersion(ctx)
}

// Version reports the schema version currently recorded in the database.
func Version(ctx context.Context, db *sql.DB, d Dialect) (int64, error) {
	p, err := provider(db, d)
	if err != nil {
		return 0, err
	}
	version, err := p.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrations: read version: %w", err)
	}
	return version, nil
}
