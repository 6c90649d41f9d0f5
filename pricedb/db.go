// Package pricedb reads historical close prices and corporate actions from a SQLite database.
//
// The database is filled by other tools; this package only reads it.
package pricedb

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Schema creates the tables read by DB.
//
// Dates are ISO 8601 days, prices are decimal strings, and details is the JSON payload of the
// corporate action.
const Schema = `
CREATE TABLE IF NOT EXISTS historical_prices (
	symbol TEXT NOT NULL,
	date   TEXT NOT NULL,
	close  TEXT NOT NULL,
	PRIMARY KEY (symbol, date)
);
CREATE TABLE IF NOT EXISTS corporate_actions (
	id      TEXT PRIMARY KEY,
	type    TEXT NOT NULL,
	symbol  TEXT NOT NULL,
	date    TEXT NOT NULL,
	isin    TEXT,
	details TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS corporate_actions_symbol_date ON corporate_actions (symbol, date);
`

// DB reads prices and corporate actions.
type DB struct {
	conn *sql.DB
	log  zerolog.Logger
}

// Open opens the database at path in read-only mode.
func Open(path string, log zerolog.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open price database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open price database %s: %w", path, err)
	}
	return New(conn, log), nil
}

// New wraps an open connection.
func New(conn *sql.DB, log zerolog.Logger) *DB {
	return &DB{conn: conn, log: log.With().Str("component", "pricedb").Logger()}
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// in returns the placeholders and arguments of an IN clause on symbols.
func in(symbols []string) (string, []any) {
	args := make([]any, len(symbols))
	for i, s := range symbols {
		args[i] = s
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?,", len(symbols)), ",") + ")", args
}
