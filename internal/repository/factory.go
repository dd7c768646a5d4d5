package repository

import (
	"context"
	"ctchen222/tictactoe/internal/config"
	"ctchen222/tictactoe/internal/db"
	"fmt"
)

// OpenScoreRepository builds the score store selected by cfg.Store. The
// returned close function releases its connection.
func OpenScoreRepository(ctx context.Context, cfg config.Scores) (ScoreRepository, func() error, error) {
	switch cfg.Store {
	case "", "memory":
		return NewMemoryScoreRepository(), func() error { return nil }, nil
	case "sqlite":
		pool, err := db.SQLiteConnect(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteScoreRepository(pool), pool.Close, nil
	case "redis":
		rdb, err := db.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return NewScoreRepository(rdb), rdb.Close, nil
	case "postgres":
		pool, err := db.PostgresConnect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresScoreRepository(pool), func() error { pool.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown score store %q", cfg.Store)
	}
}
