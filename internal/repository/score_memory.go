package repository

import (
	"context"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/score"
	"sync"
)

type memoryScoreRepository struct {
	mu     sync.Mutex
	scores map[string]score.Scores
}

// NewMemoryScoreRepository keeps scores for the lifetime of the process.
func NewMemoryScoreRepository() ScoreRepository {
	return &memoryScoreRepository{scores: make(map[string]score.Scores)}
}

func (r *memoryScoreRepository) Get(_ context.Context, key string) (score.Scores, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scores[key], nil
}

func (r *memoryScoreRepository) Increment(_ context.Context, key string, outcome game.Outcome) (score.Scores, error) {
	if _, err := outcomeField(outcome); err != nil {
		return score.Scores{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.scores[key]
	s.Apply(outcome)
	r.scores[key] = s
	return s, nil
}

func (r *memoryScoreRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scores, key)
	return nil
}
