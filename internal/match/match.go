package match

import (
	"context"
	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/game"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Ticket is one seat of a game created for a matched pair.
type Ticket struct {
	GameID string          `json:"game_id"`
	Mark   game.PlayerMark `json:"mark"`
	Token  string          `json:"token"`
}

// CreateFunc starts a two-player game for a matched pair.
type CreateFunc func(ctx context.Context) (*models.CreateGameResponse, error)

type waiter struct {
	ID    string
	reply chan result
}

type result struct {
	ticket Ticket
	err    error
}

// MatchManager pairs anonymous players in arrival order.
type MatchManager struct {
	mu               sync.Mutex
	waitingPlayers   []*waiter
	addPlayerChan    chan *waiter
	removePlayerChan chan string
	done             chan struct{}
	create           CreateFunc
}

func NewMatchManager(create CreateFunc) *MatchManager {
	return &MatchManager{
		waitingPlayers:   make([]*waiter, 0),
		addPlayerChan:    make(chan *waiter, 1),
		removePlayerChan: make(chan string),
		done:             make(chan struct{}),
		create:           create,
	}
}

// Run processes joins and cancellations until ctx is done.
func (m *MatchManager) Run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case w := <-m.addPlayerChan:
			m.mu.Lock()
			m.waitingPlayers = append(m.waitingPlayers, w)
			m.mu.Unlock()
			m.tryMatchPlayers(ctx)

		case id := <-m.removePlayerChan:
			m.mu.Lock()
			for i, w := range m.waitingPlayers {
				if w.ID == id {
					m.waitingPlayers = append(m.waitingPlayers[:i], m.waitingPlayers[i+1:]...)
					slog.DebugContext(ctx, "Matchmaker: player removed from waiting list", "player.id", id)
					break
				}
			}
			m.mu.Unlock()

		case <-ctx.Done():
			return
		}
	}
}

// Join waits until another player joins and returns this player's seat. The
// first of a pair plays X.
func (m *MatchManager) Join(ctx context.Context) (Ticket, error) {
	w := &waiter{ID: uuid.New().String(), reply: make(chan result, 1)}

	select {
	case m.addPlayerChan <- w:
	case <-m.done:
		return Ticket{}, context.Canceled
	case <-ctx.Done():
		return Ticket{}, ctx.Err()
	}

	select {
	case res := <-w.reply:
		return res.ticket, res.err
	case <-ctx.Done():
		m.removePlayer(w.ID)
		// The pair may have formed before the removal was processed.
		select {
		case res := <-w.reply:
			if res.err == nil {
				return res.ticket, nil
			}
		default:
		}
		return Ticket{}, ctx.Err()
	}
}

func (m *MatchManager) removePlayer(id string) {
	select {
	case m.removePlayerChan <- id:
	case <-m.done:
	}
}

// Waiting returns the number of unmatched players.
func (m *MatchManager) Waiting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waitingPlayers)
}

func (m *MatchManager) tryMatchPlayers(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.waitingPlayers) >= 2 {
		player1 := m.waitingPlayers[0]
		player2 := m.waitingPlayers[1]
		m.waitingPlayers = m.waitingPlayers[2:]

		resp, err := m.create(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Matchmaker: failed to create game", "error", err)
			player1.reply <- result{err: err}
			player2.reply <- result{err: err}
			continue
		}

		player1.reply <- result{ticket: Ticket{GameID: resp.ID, Mark: game.PlayerX, Token: resp.Seats[game.PlayerX]}}
		player2.reply <- result{ticket: Ticket{GameID: resp.ID, Mark: game.PlayerO, Token: resp.Seats[game.PlayerO]}}
		slog.InfoContext(ctx, "Matchmaker: matched players", "game.id", resp.ID, "player.x", player1.ID, "player.o", player2.ID)
	}
}
