// Package sqlstore implements the credential and task stores on a relational
// database through bun. SQLite (modernc.org/sqlite, no cgo) is the supported
// dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		username        TEXT    NOT NULL UNIQUE,
		email           TEXT    NOT NULL UNIQUE,
		first_name      TEXT    NOT NULL DEFAULT '',
		last_name       TEXT    NOT NULL DEFAULT '',
		hashed_password TEXT    NOT NULL,
		is_active       BOOLEAN NOT NULL,
		role            TEXT    NOT NULL,
		phone_number    TEXT    NOT NULL DEFAULT '',
		created_at      TIMESTAMP NOT NULL,
		updated_at      TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT    NOT NULL,
		description TEXT    NOT NULL DEFAULT '',
		priority    INTEGER NOT NULL,
		completed   BOOLEAN NOT NULL,
		owner_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_owner_id ON tasks(owner_id)`,
}

// Open connects to the SQLite database at dsn and applies the schema.
// ":memory:" gives a private in-process database.
func Open(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single writer; also keeps an in-memory database alive on one connection.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	pragmas := []string{"PRAGMA foreign_keys = ON"}
	if !strings.Contains(dsn, ":memory:") {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range append(pragmas, schema...) {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// Pinger adapts a database to the readiness probe.
func Pinger(db *bun.DB) func(ctx context.Context) error {
	return db.PingContext
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlitelib.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
