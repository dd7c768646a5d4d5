package service

import (
	"context"
	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/repository"
	"ctchen222/tictactoe/internal/score"
	"ctchen222/tictactoe/internal/session"
	"ctchen222/tictactoe/pkg/proto"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("service.game")

var (
	ErrGameNotFound = errors.New("game not found")
	ErrInvalidToken = errors.New("invalid seat token")
)

const (
	seatTokenTTL  = 24 * time.Hour
	subscriberBuf = 16
	// finishedTTL is how long a decided game without watchers stays around
	// for a reset or a last look at the board.
	finishedTTL = 15 * time.Minute
)

// GameService defines the board server's game operations.
type GameService interface {
	Create(ctx context.Context, req *models.CreateGameRequest) (*models.CreateGameResponse, error)
	Get(ctx context.Context, id string) (proto.GameState, error)
	Move(ctx context.Context, id, token string, row, col int) (proto.GameState, error)
	Reset(ctx context.Context, id, token string) (proto.GameState, error)
	Scores(ctx context.Context, id string) (score.Scores, error)
	// Seat returns the mark a token was issued for.
	Seat(id, token string) (game.PlayerMark, error)
	// Subscribe registers a receiver of encoded update messages. The current
	// state is queued right away. The returned func unsubscribes and closes the
	// channel.
	Subscribe(ctx context.Context, id string) (chan []byte, func(), error)
	// Janitor evicts abandoned games every interval until ctx is done.
	Janitor(ctx context.Context, interval time.Duration)
}

// SeatClaims are the claims of a seat token. Subject holds the game ID.
type SeatClaims struct {
	Mark game.PlayerMark `json:"mark"`
	jwt.RegisteredClaims
}

type table struct {
	session *session.Session
	// expires is when the seat tokens run out. No one can play after that.
	expires time.Time

	mu          sync.Mutex
	subscribers map[chan []byte]struct{}
	lastActive  time.Time
}

// touch records activity. t.mu must be held.
func (t *table) touch(now time.Time) {
	t.lastActive = now
}

// abandoned reports whether nobody can still use the table. t.mu must be held.
func (t *table) abandoned(now time.Time) bool {
	if len(t.subscribers) > 0 {
		return false
	}
	if !now.Before(t.expires) {
		return true
	}
	return t.session.Snapshot().Outcome.Terminal() && now.Sub(t.lastActive) >= finishedTTL
}

type gameService struct {
	scores repository.ScoreRepository
	secret []byte
	now    func() time.Time

	mu     sync.RWMutex
	tables map[string]*table
}

// NewGameService creates a GameService keeping games in memory and their
// tallies in scores. Seat tokens are signed with secret.
func NewGameService(scores repository.ScoreRepository, secret []byte) GameService {
	return &gameService{
		scores: scores,
		secret: secret,
		now:    time.Now,
		tables: make(map[string]*table),
	}
}

func (s *gameService) Create(ctx context.Context, req *models.CreateGameRequest) (*models.CreateGameResponse, error) {
	id := uuid.New().String()
	ctx, span := tracer.Start(ctx, "service.CreateGame", trace.WithAttributes(
		attribute.String("game.id", id),
		attribute.String("game.opponent", req.Opponent),
	))
	defer span.End()

	opts := session.Options{Size: req.Size, Scores: s.scores, ScoreKey: id}
	switch first := strings.ToLower(req.First); first {
	case "", "random":
		opts.StartingMark = game.RandomMark()
	default:
		mark, err := game.ParseMark(first)
		if err != nil {
			return nil, err
		}
		opts.StartingMark = mark
	}
	if req.Opponent == "bot" {
		d := bot.Easy
		if req.Difficulty != "" {
			var err error
			if d, err = bot.ParseDifficulty(req.Difficulty); err != nil {
				return nil, err
			}
		}
		opts.Bot = bot.New(d)
		opts.BotMark = game.PlayerO
		if req.BotMark != "" {
			var err error
			if opts.BotMark, err = game.ParseMark(req.BotMark); err != nil {
				return nil, err
			}
		}
	}

	sess, err := session.New(opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create session")
		return nil, err
	}
	now := s.now()
	t := &table{
		session:     sess,
		expires:     now.Add(seatTokenTTL),
		subscribers: make(map[chan []byte]struct{}),
		lastActive:  now,
	}

	seats := make(map[game.PlayerMark]string, 2)
	for _, mark := range []game.PlayerMark{game.PlayerX, game.PlayerO} {
		if p, _ := sess.Player(mark); p.IsBot {
			continue
		}
		token, err := s.issueSeat(id, mark, now)
		if err != nil {
			return nil, err
		}
		seats[mark] = token
	}

	s.mu.Lock()
	s.tables[id] = t
	s.mu.Unlock()

	if err := s.botReply(ctx, t); err != nil {
		return nil, err
	}

	state, err := s.state(ctx, id, t)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Game created", "game.id", id, "game.size", state.Size, "game.turn", state.Turn)
	return &models.CreateGameResponse{ID: id, State: state, Seats: seats}, nil
}

func (s *gameService) Get(ctx context.Context, id string) (proto.GameState, error) {
	t, err := s.table(id)
	if err != nil {
		return proto.GameState{}, err
	}
	return s.state(ctx, id, t)
}

func (s *gameService) Move(ctx context.Context, id, token string, row, col int) (proto.GameState, error) {
	ctx, span := tracer.Start(ctx, "service.Move", trace.WithAttributes(
		attribute.String("game.id", id),
		attribute.Int("move.row", row),
		attribute.Int("move.col", col),
	))
	defer span.End()

	t, err := s.table(id)
	if err != nil {
		return proto.GameState{}, err
	}
	mark, err := s.Seat(id, token)
	if err != nil {
		return proto.GameState{}, err
	}

	if _, err := t.session.PlaceAs(ctx, mark, row, col); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Move rejected")
		return proto.GameState{}, err
	}
	if err := s.botReply(ctx, t); err != nil {
		return proto.GameState{}, err
	}
	return s.publish(ctx, id, t)
}

func (s *gameService) Reset(ctx context.Context, id, token string) (proto.GameState, error) {
	t, err := s.table(id)
	if err != nil {
		return proto.GameState{}, err
	}
	if _, err := s.Seat(id, token); err != nil {
		return proto.GameState{}, err
	}

	t.session.Reset(ctx)
	if err := s.botReply(ctx, t); err != nil {
		return proto.GameState{}, err
	}
	return s.publish(ctx, id, t)
}

func (s *gameService) Scores(ctx context.Context, id string) (score.Scores, error) {
	t, err := s.table(id)
	if err != nil {
		return score.Scores{}, err
	}
	return t.session.Scores(ctx)
}

func (s *gameService) Seat(id, token string) (game.PlayerMark, error) {
	claims := &SeatClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject(id))
	if err != nil {
		return game.None, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !claims.Mark.Valid() {
		return game.None, ErrInvalidToken
	}
	return claims.Mark, nil
}

func (s *gameService) Subscribe(ctx context.Context, id string) (chan []byte, func(), error) {
	t, err := s.table(id)
	if err != nil {
		return nil, nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	data, _, err := s.encodeState(ctx, id, t)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan []byte, subscriberBuf)
	ch <- data
	t.subscribers[ch] = struct{}{}
	t.touch(s.now())

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subscribers, ch)
			close(ch)
			t.touch(s.now())
			t.mu.Unlock()
		})
	}
	return ch, unsubscribe, nil
}

func (s *gameService) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				slog.InfoContext(ctx, "Evicted abandoned games", "games.evicted", n)
			}
		}
	}
}

// sweep drops every abandoned table and returns how many went.
func (s *gameService) sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, t := range s.tables {
		t.mu.Lock()
		if t.abandoned(now) {
			delete(s.tables, id)
			evicted++
		}
		t.mu.Unlock()
	}
	return evicted
}

// botReply plays the computer's move when it is due.
func (s *gameService) botReply(ctx context.Context, t *table) error {
	if !t.session.IsBotTurn() {
		return nil
	}
	_, err := t.session.PlayBot(ctx)
	if errors.Is(err, session.ErrNotBotTurn) || errors.Is(err, game.ErrGameOver) {
		// Another request got there first.
		return nil
	}
	return err
}

// publish pushes the current state to every subscriber and returns it.
// Subscribers that cannot keep up miss the update. The snapshot is taken under
// t.mu so subscribers see updates in the order the game changed.
func (s *gameService) publish(ctx context.Context, id string, t *table) (proto.GameState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch(s.now())

	data, state, err := s.encodeState(ctx, id, t)
	if err != nil {
		return state, err
	}
	for ch := range t.subscribers {
		select {
		case ch <- data:
		default:
			slog.WarnContext(ctx, "Dropping update for slow subscriber", "game.id", id)
		}
	}
	return state, nil
}

func (s *gameService) encodeState(ctx context.Context, id string, t *table) ([]byte, proto.GameState, error) {
	state, err := s.state(ctx, id, t)
	if err != nil {
		return nil, state, err
	}
	data, err := json.Marshal(proto.ServerToClientMessage{Type: proto.TypeUpdate, Game: &state})
	return data, state, err
}

func (s *gameService) state(ctx context.Context, id string, t *table) (proto.GameState, error) {
	snap := t.session.Snapshot()
	scores, err := t.session.Scores(ctx)
	if err != nil {
		return proto.GameState{}, fmt.Errorf("failed to load scores: %w", err)
	}
	return proto.GameState{
		ID:     id,
		Size:   snap.Size,
		Board:  snap.Board,
		Turn:   snap.Turn,
		Status: snap.Outcome.Status,
		Winner: snap.Outcome.Winner,
		Moves:  snap.Moves,
		Scores: scores,
	}, nil
}

func (s *gameService) table(id string) (*table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrGameNotFound)
	}
	return t, nil
}

func (s *gameService) issueSeat(id string, mark game.PlayerMark, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SeatClaims{
		Mark: mark,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(seatTokenTTL)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign seat token: %w", err)
	}
	return signed, nil
}
