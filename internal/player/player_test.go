package player

import (
	"ctchen222/tictactoe/internal/game"
	"testing"
)

func TestNewPlayer(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		mark     game.PlayerMark
		wantName string
	}{
		{"Named", "Alice", game.PlayerX, "Alice"},
		{"Default X", "", game.PlayerX, "Player X"},
		{"Default O", "", game.PlayerO, "Player O"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayer(tt.in, tt.mark)
			if p.Name != tt.wantName || p.Mark != tt.mark || p.IsBot {
				t.Errorf("NewPlayer(%q, %q) = %+v", tt.in, tt.mark, *p)
			}
		})
	}
}

func TestNewBotPlayer(t *testing.T) {
	p := NewBotPlayer(game.PlayerO)
	if !p.IsBot || p.Name != "Computer O" || p.Mark != game.PlayerO {
		t.Errorf("NewBotPlayer(O) = %+v", *p)
	}
}
