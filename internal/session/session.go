package session

import (
	"context"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/player"
	"ctchen222/tictactoe/internal/repository"
	"ctchen222/tictactoe/internal/score"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("session")
	meter  = otel.Meter("session")
)

var (
	ErrNotBotTurn  = errors.New("it is not the computer's turn")
	ErrNotYourTurn = errors.New("not your turn")
)

// Options configures a new Session.
type Options struct {
	Size         int
	StartingMark game.PlayerMark
	// Names overrides the default player names.
	Names map[game.PlayerMark]string
	// Bot plays BotMark. A nil Bot means both players are human.
	Bot     *bot.Bot
	BotMark game.PlayerMark
	// Scores defaults to an in-memory store.
	Scores   repository.ScoreRepository
	ScoreKey string
}

// State is a point-in-time copy of the game.
type State struct {
	Size    int                 `json:"size"`
	Board   [][]game.PlayerMark `json:"board"`
	Turn    game.PlayerMark     `json:"turn"`
	Outcome game.Outcome        `json:"outcome"`
	Moves   int                 `json:"moves"`
}

func (st State) String() string {
	return game.Render(st.Board, nil)
}

// Session owns one engine together with its players, optional bot and
// scoreboard. All methods are safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	engine   *game.Engine
	players  map[game.PlayerMark]*player.Player
	bot      *bot.Bot
	scores   repository.ScoreRepository
	scoreKey string

	moveCounter metric.Int64Counter
	gameCounter metric.Int64Counter
}

func New(opts Options) (*Session, error) {
	if opts.Size == 0 {
		opts.Size = game.DefaultSize
	}
	if opts.StartingMark == game.None {
		opts.StartingMark = game.PlayerX
	}
	engine, err := game.NewEngine(game.WithSize(opts.Size), game.WithStartingMark(opts.StartingMark))
	if err != nil {
		return nil, err
	}

	s := &Session{
		engine:   engine,
		players:  make(map[game.PlayerMark]*player.Player, 2),
		bot:      opts.Bot,
		scores:   opts.Scores,
		scoreKey: opts.ScoreKey,
	}
	if s.scores == nil {
		s.scores = repository.NewMemoryScoreRepository()
	}
	if s.scoreKey == "" {
		s.scoreKey = "default"
	}

	if opts.Bot != nil && !opts.BotMark.Valid() {
		return nil, fmt.Errorf("bot mark: %w", game.ErrInvalidMark)
	}
	for _, mark := range []game.PlayerMark{game.PlayerX, game.PlayerO} {
		if opts.Bot != nil && mark == opts.BotMark {
			s.players[mark] = player.NewBotPlayer(mark)
		} else {
			s.players[mark] = player.NewPlayer(opts.Names[mark], mark)
		}
		if name := opts.Names[mark]; name != "" {
			s.players[mark].Name = name
		}
	}

	if s.moveCounter, err = meter.Int64Counter("tictactoe.moves",
		metric.WithDescription("Placement attempts by result")); err != nil {
		return nil, fmt.Errorf("failed to create move counter: %w", err)
	}
	if s.gameCounter, err = meter.Int64Counter("tictactoe.games.finished",
		metric.WithDescription("Finished games by outcome")); err != nil {
		return nil, fmt.Errorf("failed to create game counter: %w", err)
	}

	return s, nil
}

// Place applies the current player's mark at (row, col).
func (s *Session) Place(ctx context.Context, row, col int) (game.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.place(ctx, row, col)
}

// PlaceAs is Place for a caller holding mark. It fails with ErrNotYourTurn
// while the game is running and the turn belongs to the other mark.
func (s *Session) PlaceAs(ctx context.Context, mark game.PlayerMark, row, col int) (game.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.engine.Outcome().Terminal() && s.engine.Turn() != mark {
		return game.Result{}, fmt.Errorf("%s: %w", mark, ErrNotYourTurn)
	}
	return s.place(ctx, row, col)
}

// PlayBot lets the computer choose and place a move through the same path as a
// human placement.
func (s *Session) PlayBot(ctx context.Context) (game.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.Outcome().Terminal() {
		return game.Result{}, fmt.Errorf("bot move: %w", game.ErrGameOver)
	}
	if !s.isBotTurn() {
		return game.Result{}, ErrNotBotTurn
	}

	row, col := s.bot.NextMove(s.engine.Board(), s.engine.Turn())
	slog.DebugContext(ctx, "Bot chose move", "bot.difficulty", s.bot.Difficulty(), "move.row", row, "move.col", col)
	return s.place(ctx, row, col)
}

func (s *Session) place(ctx context.Context, row, col int) (game.Result, error) {
	ctx, span := tracer.Start(ctx, "session.Place", trace.WithAttributes(
		attribute.String("game.turn", string(s.engine.Turn())),
		attribute.Int("move.row", row),
		attribute.Int("move.col", col),
	))
	defer span.End()

	res, err := s.engine.Place(row, col)
	if err != nil {
		reason := rejectReason(err)
		s.moveCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", reason)))
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid move")
		slog.DebugContext(ctx, "Move rejected", "move.row", row, "move.col", col, "reason", reason)
		return game.Result{}, err
	}

	s.moveCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "accepted")))
	span.SetAttributes(attribute.Bool("move.valid", true), attribute.String("game.status", string(res.Outcome.Status)))
	slog.DebugContext(ctx, "Mark placed", "move.mark", res.Mark, "move.row", row, "move.col", col)

	if res.Outcome.Terminal() {
		s.finish(ctx, res.Outcome)
	}
	return res, nil
}

// finish records a finished game. A failing score store is logged but never
// undoes the move.
func (s *Session) finish(ctx context.Context, outcome game.Outcome) {
	s.gameCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("game.status", string(outcome.Status)),
		attribute.String("game.winner", string(outcome.Winner)),
	))
	slog.InfoContext(ctx, "Game finished", "game.status", outcome.Status, "game.winner", outcome.Winner, "game.moves", s.engine.Moves())

	if _, err := s.scores.Increment(ctx, s.scoreKey, outcome); err != nil {
		slog.ErrorContext(ctx, "Failed to record score", "scores.key", s.scoreKey, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
	}
}

// Reset starts a new game on the same board; scores are kept.
func (s *Session) Reset(ctx context.Context) {
	_, span := tracer.Start(ctx, "session.Reset")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Reset()
	slog.InfoContext(ctx, "Game reset", "game.turn", s.engine.Turn())
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Size:    s.engine.Size(),
		Board:   s.engine.Board(),
		Turn:    s.engine.Turn(),
		Outcome: s.engine.Outcome(),
		Moves:   s.engine.Moves(),
	}
}

// CurrentPlayer returns the player whose turn it is.
func (s *Session) CurrentPlayer() player.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.players[s.engine.Turn()]
}

// Player returns the player holding mark.
func (s *Session) Player(mark game.PlayerMark) (player.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[mark]
	if !ok {
		return player.Player{}, false
	}
	return *p, true
}

// IsBotTurn reports whether the next move belongs to the computer.
func (s *Session) IsBotTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isBotTurn()
}

func (s *Session) isBotTurn() bool {
	return s.bot != nil && !s.engine.Outcome().Terminal() && s.players[s.engine.Turn()].IsBot
}

func (s *Session) Scores(ctx context.Context) (score.Scores, error) {
	return s.scores.Get(ctx, s.scoreKey)
}

// ResetScores drops the tally of this session's score key.
func (s *Session) ResetScores(ctx context.Context) error {
	return s.scores.Delete(ctx, s.scoreKey)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, game.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, game.ErrCellOccupied):
		return "cell_occupied"
	case errors.Is(err, game.ErrGameOver):
		return "game_over"
	default:
		return "error"
	}
}
