package player

import (
	"ctchen222/tictactoe/internal/game"
	"fmt"
)

// Player is one of the two participants of a game.
type Player struct {
	Name  string
	Mark  game.PlayerMark
	IsBot bool
}

// NewPlayer creates a human player. An empty name falls back to DefaultName.
func NewPlayer(name string, mark game.PlayerMark) *Player {
	if name == "" {
		name = DefaultName(mark)
	}
	return &Player{Name: name, Mark: mark}
}

// NewBotPlayer creates a computer-controlled player.
func NewBotPlayer(mark game.PlayerMark) *Player {
	return &Player{Name: fmt.Sprintf("Computer %s", mark), Mark: mark, IsBot: true}
}

func DefaultName(mark game.PlayerMark) string {
	return fmt.Sprintf("Player %s", mark)
}
