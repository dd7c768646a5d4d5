package game

import (
	"errors"
	"fmt"
	"strings"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

// Status is the terminal classification of a board.
type Status string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Game statuses
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDraw       Status = "draw"

	// Board sizes
	DefaultSize = 3
	MinSize     = 3
	MaxSize     = 9
)

var (
	ErrOutOfBounds  = errors.New("position out of bounds")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrGameOver     = errors.New("game already finished")
	ErrInvalidSize  = errors.New("invalid board size")
	ErrInvalidMark  = errors.New("invalid player mark")
)

// Opponent returns the other mark. None has no opponent.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return None
	}
}

// Valid reports whether m is one of the two player marks.
func (m PlayerMark) Valid() bool {
	return m == PlayerX || m == PlayerO
}

// Outcome is derived from the board after every placement.
type Outcome struct {
	Status Status     `json:"status"`
	Winner PlayerMark `json:"winner,omitempty"`
}

// Terminal reports whether no further placements are accepted.
func (o Outcome) Terminal() bool {
	return o.Status == StatusWon || o.Status == StatusDraw
}

// Result describes a successful placement.
type Result struct {
	Mark    PlayerMark
	Row     int
	Col     int
	Outcome Outcome
}

// Engine holds the board and the turn marker of a single game.
// It is not safe for concurrent use.
type Engine struct {
	size    int
	board   [][]PlayerMark
	start   PlayerMark
	turn    PlayerMark
	outcome Outcome
	moves   int
}

type Option func(*Engine)

// WithSize sets the board dimension N.
func WithSize(n int) Option {
	return func(e *Engine) { e.size = n }
}

// WithStartingMark sets the mark that moves first, after construction and after every reset.
func WithStartingMark(m PlayerMark) Option {
	return func(e *Engine) { e.start = m }
}

func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{size: DefaultSize, start: PlayerX}
	for _, opt := range opts {
		opt(e)
	}
	if e.size < MinSize || e.size > MaxSize {
		return nil, fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidSize, e.size, MinSize, MaxSize)
	}
	if !e.start.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMark, e.start)
	}
	e.board = make([][]PlayerMark, e.size)
	for i := range e.board {
		e.board[i] = make([]PlayerMark, e.size)
	}
	e.Reset()
	return e, nil
}

// Place writes the current turn's mark at (row, col) and evaluates the board.
// A rejected move never changes the board, the turn or the outcome.
func (e *Engine) Place(row, col int) (Result, error) {
	if e.outcome.Terminal() {
		return Result{}, fmt.Errorf("place (%d, %d): %w", row, col, ErrGameOver)
	}
	if !e.inBounds(row, col) {
		return Result{}, fmt.Errorf("place (%d, %d): %w", row, col, ErrOutOfBounds)
	}
	if e.board[row][col] != None {
		return Result{}, fmt.Errorf("place (%d, %d): %w", row, col, ErrCellOccupied)
	}

	mark := e.turn
	e.board[row][col] = mark
	e.moves++

	e.outcome = Evaluate(e.board)
	if !e.outcome.Terminal() {
		e.turn = mark.Opponent()
	}

	return Result{Mark: mark, Row: row, Col: col, Outcome: e.outcome}, nil
}

// Reset clears the board and restores the starting mark.
func (e *Engine) Reset() {
	for r := range e.board {
		for c := range e.board[r] {
			e.board[r][c] = None
		}
	}
	e.turn = e.start
	e.outcome = Outcome{Status: StatusInProgress}
	e.moves = 0
}

func (e *Engine) Size() int                { return e.size }
func (e *Engine) Turn() PlayerMark         { return e.turn }
func (e *Engine) StartingMark() PlayerMark { return e.start }
func (e *Engine) Outcome() Outcome         { return e.outcome }

// Moves returns the number of successful placements since the last reset.
func (e *Engine) Moves() int { return e.moves }

// Cell returns the mark at (row, col).
func (e *Engine) Cell(row, col int) (PlayerMark, error) {
	if !e.inBounds(row, col) {
		return None, fmt.Errorf("cell (%d, %d): %w", row, col, ErrOutOfBounds)
	}
	return e.board[row][col], nil
}

// Board returns a copy of the grid.
func (e *Engine) Board() [][]PlayerMark {
	board := make([][]PlayerMark, e.size)
	for i := range e.board {
		board[i] = make([]PlayerMark, e.size)
		copy(board[i], e.board[i])
	}
	return board
}

// EmptyCells lists the free positions in row-major order.
func (e *Engine) EmptyCells() [][2]int {
	return EmptyCells(e.board)
}

// String renders the grid as space-separated marks, '.' for empty cells, one row per line.
func (e *Engine) String() string {
	return Render(e.board, nil)
}

func (e *Engine) inBounds(row, col int) bool {
	return row >= 0 && row < e.size && col >= 0 && col < e.size
}

// Render formats a board. style, when non-nil, decorates every non-empty mark.
func Render(board [][]PlayerMark, style func(PlayerMark) string) string {
	var sb strings.Builder
	for _, row := range board {
		for c, cell := range row {
			if c > 0 {
				sb.WriteByte(' ')
			}
			switch {
			case cell == None:
				sb.WriteByte('.')
			case style != nil:
				sb.WriteString(style(cell))
			default:
				sb.WriteString(string(cell))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
