package main

import (
	"context"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/config"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/logger"
	"ctchen222/tictactoe/internal/repository"
	"ctchen222/tictactoe/internal/session"
	"ctchen222/tictactoe/internal/telemetry"
	"ctchen222/tictactoe/internal/terminal"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		size       = flag.Int("size", 0, "board size (3-9)")
		opponent   = flag.String("opponent", "", "human or bot")
		difficulty = flag.String("difficulty", "", "bot difficulty: easy, medium or hard")
		botMark    = flag.String("bot-mark", "", "mark played by the bot: X or O")
		first      = flag.String("first", "", "starting mark: X, O or random")
		replay     = flag.Bool("replay", false, "offer another game after each result")
	)
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *size != 0 {
		cfg.Game.Size = *size
	}
	if *opponent != "" {
		cfg.Opponent.Mode = *opponent
	}
	if *difficulty != "" {
		cfg.Opponent.Difficulty = *difficulty
	}
	if *botMark != "" {
		cfg.Opponent.Mark = *botMark
	}
	if *first != "" {
		cfg.Game.First = *first
	}
	if *replay {
		cfg.Terminal.Replay = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	// Stdout belongs to the game.
	logger.Init(logger.Options{Level: cfg.LogLevel, Output: os.Stderr, Otel: cfg.Telemetry.Enabled})

	scores, closeScores, err := repository.OpenScoreRepository(ctx, cfg.Scores)
	if err != nil {
		return fmt.Errorf("failed to open score store: %w", err)
	}
	defer func() {
		if err := closeScores(); err != nil {
			slog.Error("Error closing score store", "error", err)
		}
	}()

	opts, err := sessionOptions(cfg)
	if err != nil {
		return err
	}
	opts.Scores = scores
	s, err := session.New(opts)
	if err != nil {
		return err
	}

	slog.Debug("Starting terminal game", "game.size", opts.Size, "opponent.mode", cfg.Opponent.Mode)
	return terminal.New(s, terminal.Options{In: os.Stdin, Out: os.Stdout, Color: cfg.Terminal.Color, Replay: cfg.Terminal.Replay}).Run(ctx)
}

func sessionOptions(cfg *config.Config) (session.Options, error) {
	opts := session.Options{Size: cfg.Game.Size, ScoreKey: cfg.Scores.Key}

	if cfg.Game.First == "random" {
		opts.StartingMark = game.RandomMark()
	} else {
		mark, err := game.ParseMark(cfg.Game.First)
		if err != nil {
			return opts, err
		}
		opts.StartingMark = mark
	}

	if cfg.Opponent.Mode == "bot" {
		d, err := bot.ParseDifficulty(cfg.Opponent.Difficulty)
		if err != nil {
			return opts, err
		}
		mark, err := game.ParseMark(cfg.Opponent.Mark)
		if err != nil {
			return opts, err
		}
		opts.Bot = bot.New(d)
		opts.BotMark = mark
	}
	return opts, nil
}
