package game

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Lines returns every winning line of an n×n board: rows, then columns, then
// the main diagonal and the anti-diagonal.
func Lines(n int) [][][2]int {
	if n <= 0 {
		return nil
	}
	lines := make([][][2]int, 0, 2*n+2)
	for r := range n {
		line := make([][2]int, n)
		for c := range n {
			line[c] = [2]int{r, c}
		}
		lines = append(lines, line)
	}
	for c := range n {
		line := make([][2]int, n)
		for r := range n {
			line[r] = [2]int{r, c}
		}
		lines = append(lines, line)
	}
	diag := make([][2]int, n)
	anti := make([][2]int, n)
	for i := range n {
		diag[i] = [2]int{i, i}
		anti[i] = [2]int{i, n - 1 - i}
	}
	return append(lines, diag, anti)
}

// CheckWinner returns the mark owning a complete line, or None.
func CheckWinner(board [][]PlayerMark) PlayerMark {
	for _, line := range Lines(len(board)) {
		if mark := lineOwner(board, line); mark != None {
			return mark
		}
	}
	return None
}

// IsBoardFull reports whether no cell is empty.
func IsBoardFull(board [][]PlayerMark) bool {
	for _, row := range board {
		for _, cell := range row {
			if cell == None {
				return false
			}
		}
	}
	return true
}

// Evaluate classifies a board. Wins are checked before fullness, so a full
// board with a complete line is a win, never a draw. A board without cells is
// in progress.
func Evaluate(board [][]PlayerMark) Outcome {
	if len(board) == 0 {
		return Outcome{Status: StatusInProgress}
	}
	if winner := CheckWinner(board); winner != None {
		return Outcome{Status: StatusWon, Winner: winner}
	}
	if IsBoardFull(board) {
		return Outcome{Status: StatusDraw}
	}
	return Outcome{Status: StatusInProgress}
}

// EmptyCells lists the free positions of board in row-major order.
func EmptyCells(board [][]PlayerMark) [][2]int {
	var cells [][2]int
	for r, row := range board {
		for c, cell := range row {
			if cell == None {
				cells = append(cells, [2]int{r, c})
			}
		}
	}
	return cells
}

func lineOwner(board [][]PlayerMark, line [][2]int) PlayerMark {
	if len(line) == 0 {
		return None
	}
	first := board[line[0][0]][line[0][1]]
	if first == None {
		return None
	}
	for _, pos := range line[1:] {
		if board[pos[0]][pos[1]] != first {
			return None
		}
	}
	return first
}

// ParseMark accepts "X" or "O" in any case.
func ParseMark(s string) (PlayerMark, error) {
	m := PlayerMark(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return None, fmt.Errorf("%w: %q", ErrInvalidMark, s)
	}
	return m, nil
}

// RandomMark picks X or O with equal probability.
func RandomMark() PlayerMark {
	if rand.IntN(2) == 0 {
		return PlayerX
	}
	return PlayerO
}
