package repository

import (
	"context"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/score"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=score_repository.go -destination=mocks/mock_score_repository.go -package=mocks

var tracer = otel.Tracer("repository.score")

const (
	fieldXWins = "x_wins"
	fieldOWins = "o_wins"
	fieldDraws = "draws"
)

// ScoreRepository defines the interface for scoreboard operations.
type ScoreRepository interface {
	Get(ctx context.Context, key string) (score.Scores, error)
	Increment(ctx context.Context, key string, outcome game.Outcome) (score.Scores, error)
	Delete(ctx context.Context, key string) error
}

// outcomeField maps a finished game to the counter it increments.
func outcomeField(outcome game.Outcome) (string, error) {
	switch {
	case outcome.Status == game.StatusDraw:
		return fieldDraws, nil
	case outcome.Status == game.StatusWon && outcome.Winner == game.PlayerX:
		return fieldXWins, nil
	case outcome.Status == game.StatusWon && outcome.Winner == game.PlayerO:
		return fieldOWins, nil
	default:
		return "", fmt.Errorf("cannot record unfinished game (status %q)", outcome.Status)
	}
}

type redisScoreRepository struct {
	rdb *redis.Client
}

// NewScoreRepository creates a new Redis-based ScoreRepository.
func NewScoreRepository(rdb *redis.Client) ScoreRepository {
	return &redisScoreRepository{rdb: rdb}
}

func scoresKey(key string) string {
	return fmt.Sprintf("scores:%s", key)
}

// Get reads the tally stored under key. A missing hash is an empty tally.
func (r *redisScoreRepository) Get(ctx context.Context, key string) (score.Scores, error) {
	ctx, span := tracer.Start(ctx, "ScoreRepository.Get", trace.WithAttributes(attribute.String("scores.key", key)))
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, scoresKey(key)).Result()
	if err != nil {
		return score.Scores{}, fmt.Errorf("failed to get scores from redis: %w", err)
	}
	return scoresFromHash(data)
}

// Increment bumps the counter matching outcome in a single transaction.
func (r *redisScoreRepository) Increment(ctx context.Context, key string, outcome game.Outcome) (score.Scores, error) {
	ctx, span := tracer.Start(ctx, "ScoreRepository.Increment", trace.WithAttributes(attribute.String("scores.key", key)))
	defer span.End()

	field, err := outcomeField(outcome)
	if err != nil {
		return score.Scores{}, err
	}

	pipe := r.rdb.TxPipeline()
	pipe.HIncrBy(ctx, scoresKey(key), field, 1)
	all := pipe.HGetAll(ctx, scoresKey(key))
	if _, err := pipe.Exec(ctx); err != nil {
		return score.Scores{}, fmt.Errorf("failed to increment scores in redis: %w", err)
	}
	return scoresFromHash(all.Val())
}

func (r *redisScoreRepository) Delete(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "ScoreRepository.Delete", trace.WithAttributes(attribute.String("scores.key", key)))
	defer span.End()

	return r.rdb.Del(ctx, scoresKey(key)).Err()
}

func scoresFromHash(data map[string]string) (score.Scores, error) {
	var s score.Scores
	for field, dst := range map[string]*int{fieldXWins: &s.XWins, fieldOWins: &s.OWins, fieldDraws: &s.Draws} {
		raw, ok := data[field]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return score.Scores{}, fmt.Errorf("invalid %s value %q: %w", field, raw, err)
		}
		*dst = n
	}
	return s, nil
}
