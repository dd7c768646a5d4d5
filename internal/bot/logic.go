package bot

import (
	"ctchen222/tictactoe/internal/game"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Difficulty selects the move strategy of a bot.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty accepts easy, medium or hard in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", fmt.Errorf("unknown bot difficulty %q", s)
	}
}

// Bot picks moves for a computer-controlled player.
type Bot struct {
	difficulty Difficulty
	rng        *rand.Rand
}

type Option func(*Bot)

// WithRand makes the bot's random choices reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(b *Bot) { b.rng = rng }
}

func New(difficulty Difficulty, opts ...Option) *Bot {
	b := &Bot{
		difficulty: difficulty,
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bot) Difficulty() Difficulty { return b.difficulty }

// NextMove determines the bot's next move based on its difficulty.
// It returns (-1, -1) when the board has no empty cell.
func (b *Bot) NextMove(board [][]game.PlayerMark, botMark game.PlayerMark) (row, col int) {
	switch b.difficulty {
	case Easy:
		return b.easyMove(board)
	case Medium:
		return b.mediumMove(board, botMark)
	default:
		return b.hardMove(board, botMark)
	}
}

// easyMove makes a uniformly random move.
func (b *Bot) easyMove(board [][]game.PlayerMark) (row, col int) {
	return b.pick(game.EmptyCells(board))
}

// mediumMove will win if it can, block if it must, otherwise move randomly.
func (b *Bot) mediumMove(board [][]game.PlayerMark, botMark game.PlayerMark) (row, col int) {
	if r, c, ok := findWinningMove(board, botMark); ok {
		return r, c
	}
	if r, c, ok := findWinningMove(board, botMark.Opponent()); ok {
		return r, c
	}
	return b.easyMove(board)
}

// hardMove: win, block, centre, corner, then anything left.
func (b *Bot) hardMove(board [][]game.PlayerMark, botMark game.PlayerMark) (row, col int) {
	if r, c, ok := findWinningMove(board, botMark); ok {
		return r, c
	}
	if r, c, ok := findWinningMove(board, botMark.Opponent()); ok {
		return r, c
	}

	n := len(board)
	if n == 0 {
		return -1, -1
	}
	if n%2 == 1 && board[n/2][n/2] == game.None {
		return n / 2, n / 2
	}

	var corners [][2]int
	for _, corner := range [][2]int{{0, 0}, {0, n - 1}, {n - 1, 0}, {n - 1, n - 1}} {
		if board[corner[0]][corner[1]] == game.None {
			corners = append(corners, corner)
		}
	}
	if len(corners) > 0 {
		return b.pick(corners)
	}

	return b.easyMove(board)
}

func (b *Bot) pick(cells [][2]int) (row, col int) {
	if len(cells) == 0 {
		return -1, -1
	}
	cell := cells[b.rng.IntN(len(cells))]
	return cell[0], cell[1]
}

// findWinningMove looks for a line where mark holds every cell but one and the
// remaining cell is empty.
func findWinningMove(board [][]game.PlayerMark, mark game.PlayerMark) (row, col int, found bool) {
	for _, line := range game.Lines(len(board)) {
		owned := 0
		empty := [2]int{-1, -1}
		empties := 0
		for _, pos := range line {
			switch board[pos[0]][pos[1]] {
			case mark:
				owned++
			case game.None:
				empties++
				empty = pos
			}
		}
		if owned == len(line)-1 && empties == 1 {
			return empty[0], empty[1], true
		}
	}
	return -1, -1, false
}
