package repository

import (
	"context"
	"ctchen222/tictactoe/internal/config"
	"ctchen222/tictactoe/internal/db"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/score"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	xWins = game.Outcome{Status: game.StatusWon, Winner: game.PlayerX}
	oWins = game.Outcome{Status: game.StatusWon, Winner: game.PlayerO}
	draw  = game.Outcome{Status: game.StatusDraw}
)

// testScoreRepository exercises the behaviour every store must share.
func testScoreRepository(t *testing.T, repo ScoreRepository) {
	ctx := context.Background()

	t.Run("missing key is an empty tally", func(t *testing.T) {
		s, err := repo.Get(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, score.Scores{}, s)
	})

	t.Run("increments the matching counter", func(t *testing.T) {
		for _, o := range []game.Outcome{xWins, xWins, oWins, draw} {
			_, err := repo.Increment(ctx, "board-1", o)
			require.NoError(t, err)
		}
		s, err := repo.Increment(ctx, "board-1", draw)
		require.NoError(t, err)
		assert.Equal(t, score.Scores{XWins: 2, OWins: 1, Draws: 2}, s)

		got, err := repo.Get(ctx, "board-1")
		require.NoError(t, err)
		assert.Equal(t, s, got)
	})

	t.Run("keys are independent", func(t *testing.T) {
		_, err := repo.Increment(ctx, "board-2", oWins)
		require.NoError(t, err)

		s, err := repo.Get(ctx, "board-2")
		require.NoError(t, err)
		assert.Equal(t, score.Scores{OWins: 1}, s)
	})

	t.Run("rejects unfinished games", func(t *testing.T) {
		_, err := repo.Increment(ctx, "board-3", game.Outcome{Status: game.StatusInProgress})
		assert.Error(t, err)

		s, err := repo.Get(ctx, "board-3")
		require.NoError(t, err)
		assert.Equal(t, score.Scores{}, s)
	})

	t.Run("delete clears the tally", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "board-1"))
		s, err := repo.Get(ctx, "board-1")
		require.NoError(t, err)
		assert.Equal(t, score.Scores{}, s)
	})
}

func TestMemoryScoreRepository(t *testing.T) {
	testScoreRepository(t, NewMemoryScoreRepository())
}

func TestSQLiteScoreRepository(t *testing.T) {
	pool, err := db.SQLiteConnect(context.Background(), filepath.Join(t.TempDir(), "scores.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	testScoreRepository(t, NewSQLiteScoreRepository(pool))
}

func TestRedisScoreRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	rdb, err := db.NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	testScoreRepository(t, NewScoreRepository(rdb))
}

func TestPostgresScoreRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "tictactoe",
				"POSTGRES_PASSWORD": "tictactoe",
				"POSTGRES_DB":       "scores",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	repo, closeFn, err := OpenScoreRepository(ctx, config.Scores{
		Store:       "postgres",
		PostgresDSN: fmt.Sprintf("postgres://tictactoe:tictactoe@%s:%s/scores?sslmode=disable", host, port.Port()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	testScoreRepository(t, repo)
}

func TestOpenScoreRepository(t *testing.T) {
	ctx := context.Background()

	repo, closeFn, err := OpenScoreRepository(ctx, config.Scores{Store: "memory"})
	require.NoError(t, err)
	assert.NoError(t, closeFn())
	assert.NotNil(t, repo)

	repo, closeFn, err = OpenScoreRepository(ctx, config.Scores{
		Store:      "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "scores.db"),
	})
	require.NoError(t, err)
	_, err = repo.Increment(ctx, "k", xWins)
	assert.NoError(t, err)
	assert.NoError(t, closeFn())

	_, _, err = OpenScoreRepository(ctx, config.Scores{Store: "mongo"})
	assert.Error(t, err)
}
