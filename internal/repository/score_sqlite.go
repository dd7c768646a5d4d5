package repository

import (
	"context"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/score"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type sqliteScoreRepository struct {
	db *sqlx.DB
}

// NewSQLiteScoreRepository creates a ScoreRepository backed by the scores table.
func NewSQLiteScoreRepository(db *sqlx.DB) ScoreRepository {
	return &sqliteScoreRepository{db: db}
}

func (r *sqliteScoreRepository) Get(ctx context.Context, key string) (score.Scores, error) {
	ctx, span := tracer.Start(ctx, "SQLiteScoreRepository.Get", trace.WithAttributes(attribute.String("scores.key", key)))
	defer span.End()

	return r.get(ctx, r.db, key)
}

func (r *sqliteScoreRepository) get(ctx context.Context, q sqlx.QueryerContext, key string) (score.Scores, error) {
	var s score.Scores
	query := `SELECT x_wins, o_wins, draws FROM scores WHERE score_key = ?`
	if err := sqlx.GetContext(ctx, q, &s, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return score.Scores{}, nil // No games recorded yet
		}
		return score.Scores{}, fmt.Errorf("failed to get scores: %w", err)
	}
	return s, nil
}

func (r *sqliteScoreRepository) Increment(ctx context.Context, key string, outcome game.Outcome) (score.Scores, error) {
	ctx, span := tracer.Start(ctx, "SQLiteScoreRepository.Increment", trace.WithAttributes(attribute.String("scores.key", key)))
	defer span.End()

	field, err := outcomeField(outcome)
	if err != nil {
		return score.Scores{}, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return score.Scores{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// field comes from outcomeField, never from user input.
	query := fmt.Sprintf(`INSERT INTO scores (score_key, %[1]s) VALUES (?, 1)
		ON CONFLICT(score_key) DO UPDATE SET %[1]s = %[1]s + 1`, field)
	if _, err := tx.ExecContext(ctx, query, key); err != nil {
		return score.Scores{}, fmt.Errorf("failed to increment scores: %w", err)
	}

	s, err := r.get(ctx, tx, key)
	if err != nil {
		return score.Scores{}, err
	}
	if err := tx.Commit(); err != nil {
		return score.Scores{}, fmt.Errorf("failed to commit scores: %w", err)
	}
	return s, nil
}

func (r *sqliteScoreRepository) Delete(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "SQLiteScoreRepository.Delete", trace.WithAttributes(attribute.String("scores.key", key)))
	defer span.End()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM scores WHERE score_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete scores: %w", err)
	}
	return nil
}
