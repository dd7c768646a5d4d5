package main

import (
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/config"
	"ctchen222/tictactoe/internal/game"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionOptions(t *testing.T) {
	cfg := &config.Config{
		Game:     config.Game{Size: 4, First: "o"},
		Opponent: config.Opponent{Mode: "bot", Difficulty: "hard", Mark: "X"},
		Scores:   config.Scores{Key: "local"},
	}

	opts, err := sessionOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, opts.Size)
	assert.Equal(t, game.PlayerO, opts.StartingMark)
	assert.Equal(t, "local", opts.ScoreKey)
	require.NotNil(t, opts.Bot)
	assert.Equal(t, bot.Hard, opts.Bot.Difficulty())
	assert.Equal(t, game.PlayerX, opts.BotMark)
}

func TestSessionOptions_HumanRandomStart(t *testing.T) {
	cfg := &config.Config{
		Game:     config.Game{Size: 3, First: "random"},
		Opponent: config.Opponent{Mode: "human", Difficulty: "easy", Mark: "O"},
	}

	opts, err := sessionOptions(cfg)
	require.NoError(t, err)
	assert.Nil(t, opts.Bot)
	assert.True(t, opts.StartingMark.Valid())
}

func TestSessionOptions_Invalid(t *testing.T) {
	cfg := &config.Config{
		Game:     config.Game{Size: 3, First: "X"},
		Opponent: config.Opponent{Mode: "bot", Difficulty: "impossible", Mark: "O"},
	}
	_, err := sessionOptions(cfg)
	assert.Error(t, err)
}
