package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConnect opens a connection pool for dsn and makes sure the schema
// exists.
func PostgresConnect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, scoresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create scores table: %w", err)
	}

	slog.InfoContext(ctx, "Connected to postgres and verified schema")
	return pool, nil
}
