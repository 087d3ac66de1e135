package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger_rows (
    collection TEXT    NOT NULL,
    position   INTEGER NOT NULL,
    cells      TEXT    NOT NULL DEFAULT '[]',
    PRIMARY KEY (collection, position)
);
`

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// Open opens the database at dataSourceName (":memory:" works for tests)
// and creates the schema if needed.
func Open(ctx context.Context, dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite has a single writer, and every connection to
	// ":memory:" would otherwise see its own empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db}, nil
}
