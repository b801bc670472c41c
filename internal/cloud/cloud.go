// Package cloud is the multi-device row store: one aggregate progress row
// per learner identity plus an append-only study history table. It runs on
// PostgreSQL in production and on SQLite in tests.
package cloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	// PostgreSQL driver.
	_ "github.com/lib/pq"
	// SQLite driver for local and test deployments.
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no aggregate row exists for an identity.
var ErrNotFound = errors.New("not found")

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB wraps the row store connection.
type DB struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the row store and creates missing tables. driver is
// "postgres" or "sqlite".
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	switch driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// SQLite doesn't support multiple writers.
		db.SetMaxOpenConns(1)
	}

	d := &DB{db: db, driver: driver}
	if err := d.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) migrate(ctx context.Context) error {
	jsonType, tsType := "JSONB", "TIMESTAMPTZ"
	if d.driver == "sqlite" {
		jsonType, tsType = "TEXT", "TIMESTAMP"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS study_progress (
			user_id            TEXT PRIMARY KEY,
			completed_chapters ` + jsonType + ` NOT NULL,
			review_dates       ` + jsonType + ` NOT NULL,
			review_levels      ` + jsonType + ` NOT NULL,
			quiz_scores        ` + jsonType + ` NOT NULL,
			updated_at         ` + tsType + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS study_history (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			date       ` + tsType + ` NOT NULL,
			book_title TEXT NOT NULL,
			chapter_id INTEGER NOT NULL,
			success    BOOLEAN NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS study_history_user_date ON study_history (user_id, date)`,
	}
	for _, s := range stmts {
		if _, err := d.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
