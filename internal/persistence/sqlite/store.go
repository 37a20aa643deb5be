// Package sqlite implements the persistence contracts on an embedded SQLite
// database through modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/migrations"
)

// Store implements persistence.Store on SQLite.
type Store struct {
	db *sql.DB
}

var _ persistence.Store = (*Store)(nil)

// Open opens the database described by cfg.
func Open(cfg Config) (*Store, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// New wraps an existing handle. The caller is responsible for pragmas.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate applies the embedded schema and returns the resulting version.
func (s *Store) Migrate(ctx context.Context) (int64, error) {
	return migrations.Up(ctx, s.db, migrations.SQLite)
}

// Ping tests the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return t, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullableString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func scanNullTime(field string, v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := parseTime(field, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
