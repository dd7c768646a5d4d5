package repository

import (
	"context"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/score"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type postgresScoreRepository struct {
	db *pgxpool.Pool
}

// NewPostgresScoreRepository creates a ScoreRepository backed by the scores
// table of a PostgreSQL database.
func NewPostgresScoreRepository(db *pgxpool.Pool) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

func (r *postgresScoreRepository) Get(ctx context.Context, key string) (score.Scores, error) {
	ctx, span := tracer.Start(ctx, "PostgresScoreRepository.Get", trace.WithAttributes(attribute.String("scores.key", key)))
	defer span.End()

	var s score.Scores
	err := r.db.QueryRow(ctx, `SELECT x_wins, o_wins, draws FROM scores WHERE score_key = $1`, key).
		Scan(&s.XWins, &s.OWins, &s.Draws)
	if errors.Is(err, pgx.ErrNoRows) {
		return score.Scores{}, nil
	}
	if err != nil {
		return score.Scores{}, fmt.Errorf("failed to get scores: %w", err)
	}
	return s, nil
}

// Increment upserts and reads back the tally in one statement.
func (r *postgresScoreRepository) Increment(ctx context.Context, key string, outcome game.Outcome) (score.Scores, error) {
	ctx, span := tracer.Start(ctx, "PostgresScoreRepository.Increment", trace.WithAttributes(attribute.String("scores.key", key)))
	defer span.End()

	field, err := outcomeField(outcome)
	if err != nil {
		return score.Scores{}, err
	}

	// field comes from outcomeField, never from user input.
	query := fmt.Sprintf(`INSERT INTO scores (score_key, %[1]s) VALUES ($1, 1)
		ON CONFLICT (score_key) DO UPDATE SET %[1]s = scores.%[1]s + 1
		RETURNING x_wins, o_wins, draws`, field)

	var s score.Scores
	if err := r.db.QueryRow(ctx, query, key).Scan(&s.XWins, &s.OWins, &s.Draws); err != nil {
		return score.Scores{}, fmt.Errorf("failed to increment scores: %w", err)
	}
	return s, nil
}

func (r *postgresScoreRepository) Delete(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "PostgresScoreRepository.Delete", trace.WithAttributes(attribute.String("scores.key", key)))
	defer span.End()

	if _, err := r.db.Exec(ctx, `DELETE FROM scores WHERE score_key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete scores: %w", err)
	}
	return nil
}
