package db

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const scoresSchema = `
CREATE TABLE IF NOT EXISTS scores (
	score_key TEXT PRIMARY KEY,
	x_wins INTEGER NOT NULL DEFAULT 0,
	o_wins INTEGER NOT NULL DEFAULT 0,
	draws INTEGER NOT NULL DEFAULT 0
);`

// SQLiteConnect opens the SQLite database at dbPath and makes sure the schema exists.
func SQLiteConnect(ctx context.Context, dbPath string) (*sqlx.DB, error) {
	pool, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	pool.SetMaxOpenConns(1)

	if err := InitializeSchema(ctx, pool); err != nil {
		_ = pool.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "Connected to sqlite database and verified schema", "db.path", dbPath)
	return pool, nil
}

// InitializeSchema creates the tables used by the score store.
func InitializeSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, scoresSchema); err != nil {
		return fmt.Errorf("failed to create scores table: %w", err)
	}
	return nil
}
