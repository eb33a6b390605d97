package db

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	mode TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	state TEXT NOT NULL,
	board TEXT NOT NULL,
	turn TEXT NOT NULL,
	winner TEXT NOT NULL,
	line TEXT,
	version INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions (updated_at);`

// LocalConnect opens the SQLite database at dbPath.
func LocalConnect(ctx context.Context, dbPath string) (*sqlx.DB, error) {
	pool, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database connection: %w", err)
	}
	// SQLite serializes writers anyway.
	pool.SetMaxOpenConns(1)
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping local database: %w", err)
	}
	slog.InfoContext(ctx, "Connected to local database", "db.path", dbPath)
	return pool, nil
}

// InitializeSchema creates the sessions table if it doesn't exist.
func InitializeSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, sessionSchema); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	slog.InfoContext(ctx, "Session schema verified")
	return nil
}
