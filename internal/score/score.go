package score

import (
	"ctchen222/tictactoe/internal/game"
	"fmt"
)

// Scores tallies finished games.
type Scores struct {
	XWins int `json:"x_wins" db:"x_wins"`
	OWins int `json:"o_wins" db:"o_wins"`
	Draws int `json:"draws" db:"draws"`
}

// Apply adds a finished game to the tally. In-progress outcomes are ignored.
func (s *Scores) Apply(outcome game.Outcome) {
	switch {
	case outcome.Status == game.StatusDraw:
		s.Draws++
	case outcome.Status == game.StatusWon && outcome.Winner == game.PlayerX:
		s.XWins++
	case outcome.Status == game.StatusWon && outcome.Winner == game.PlayerO:
		s.OWins++
	}
}

// Wins returns the number of games won by mark.
func (s Scores) Wins(mark game.PlayerMark) int {
	switch mark {
	case game.PlayerX:
		return s.XWins
	case game.PlayerO:
		return s.OWins
	default:
		return 0
	}
}

func (s Scores) Total() int {
	return s.XWins + s.OWins + s.Draws
}

func (s Scores) String() string {
	return fmt.Sprintf("Score: X %d | O %d | Draws %d", s.XWins, s.OWins, s.Draws)
}
