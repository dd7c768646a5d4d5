package bot

import (
	"ctchen222/tictactoe/internal/game"
	"math/rand/v2"
	"testing"
)

const (
	X = game.PlayerX
	O = game.PlayerO
	E = game.None
)

// moveIn is a helper function to check if a move is in a list of expected moves.
func moveIn(move [2]int, list [][2]int) bool {
	for _, item := range list {
		if item == move {
			return true
		}
	}
	return false
}

func seeded(d Difficulty) *Bot {
	return New(d, WithRand(rand.New(rand.NewPCG(7, 11))))
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{"easy": Easy, "MEDIUM": Medium, " hard ": Hard} {
		got, err := ParseDifficulty(in)
		if err != nil || got != want {
			t.Errorf("ParseDifficulty(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseDifficulty("impossible"); err == nil {
		t.Error("ParseDifficulty(impossible) expected an error")
	}
}

func TestFindWinningMove(t *testing.T) {
	tests := []struct {
		name             string
		board            [][]game.PlayerMark
		mark             game.PlayerMark
		wantRow, wantCol int
		wantFound        bool
	}{
		{
			name:    "No winning move - empty board",
			board:   [][]game.PlayerMark{{E, E, E}, {E, E, E}, {E, E, E}},
			mark:    X,
			wantRow: -1, wantCol: -1, wantFound: false,
		},
		{
			name:    "X can win - first row",
			board:   [][]game.PlayerMark{{X, X, E}, {O, O, E}, {E, E, E}},
			mark:    X,
			wantRow: 0, wantCol: 2, wantFound: true,
		},
		{
			name:    "O can win - second column",
			board:   [][]game.PlayerMark{{X, O, E}, {X, O, E}, {E, E, E}},
			mark:    O,
			wantRow: 2, wantCol: 1, wantFound: true,
		},
		{
			name:    "X can win - main diagonal",
			board:   [][]game.PlayerMark{{X, E, E}, {E, X, E}, {E, E, E}},
			mark:    X,
			wantRow: 2, wantCol: 2, wantFound: true,
		},
		{
			name:    "O can win - anti-diagonal",
			board:   [][]game.PlayerMark{{E, E, O}, {E, O, E}, {E, E, E}},
			mark:    O,
			wantRow: 2, wantCol: 0, wantFound: true,
		},
		{
			name:    "Blocked line is not a winning move",
			board:   [][]game.PlayerMark{{X, X, O}, {E, E, E}, {E, E, E}},
			mark:    X,
			wantRow: -1, wantCol: -1, wantFound: false,
		},
		{
			name:    "Full board, no win possible",
			board:   [][]game.PlayerMark{{X, O, X}, {O, X, O}, {O, X, O}},
			mark:    X,
			wantRow: -1, wantCol: -1, wantFound: false,
		},
		{
			name: "X can win - 4x4 third row",
			board: [][]game.PlayerMark{
				{O, E, E, E},
				{E, O, E, E},
				{X, X, E, X},
				{E, E, E, E},
			},
			mark:    X,
			wantRow: 2, wantCol: 2, wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, col, found := findWinningMove(tt.board, tt.mark)
			if found != tt.wantFound || row != tt.wantRow || col != tt.wantCol {
				t.Errorf("findWinningMove() got (%d, %d, %v), want (%d, %d, %v)", row, col, found, tt.wantRow, tt.wantCol, tt.wantFound)
			}
		})
	}
}

func TestEasyMove(t *testing.T) {
	b := seeded(Easy)

	t.Run("Only one spot left", func(t *testing.T) {
		board := [][]game.PlayerMark{{X, O, X}, {O, X, O}, {X, E, O}}
		row, col := b.NextMove(board, O)
		if row != 2 || col != 1 {
			t.Errorf("easy bot should pick the only available spot (2,1), but got (%d, %d)", row, col)
		}
	})

	t.Run("Picks every empty cell eventually", func(t *testing.T) {
		board := [][]game.PlayerMark{{X, E, E}, {E, O, E}, {E, E, E}}
		empty := game.EmptyCells(board)
		seen := make(map[[2]int]bool)
		for i := 0; i < 500; i++ {
			row, col := b.NextMove(board, X)
			move := [2]int{row, col}
			if !moveIn(move, empty) {
				t.Fatalf("easy bot returned an occupied or invalid move (%d, %d)", row, col)
			}
			seen[move] = true
		}
		if len(seen) != len(empty) {
			t.Errorf("easy bot chose %d distinct cells out of %d", len(seen), len(empty))
		}
	})

	t.Run("Full board", func(t *testing.T) {
		board := [][]game.PlayerMark{{X, O, X}, {O, X, O}, {X, O, X}}
		row, col := b.NextMove(board, X)
		if row != -1 || col != -1 {
			t.Errorf("easy bot on a full board should return (-1, -1), but got (%d, %d)", row, col)
		}
	})
}

func TestMediumMove(t *testing.T) {
	tests := []struct {
		name             string
		board            [][]game.PlayerMark
		botMark          game.PlayerMark
		wantRow, wantCol int
	}{
		{
			name:    "Bot can win",
			board:   [][]game.PlayerMark{{X, X, E}, {O, E, E}, {E, E, E}},
			botMark: X,
			wantRow: 0, wantCol: 2,
		},
		{
			name:    "Bot must block opponent",
			board:   [][]game.PlayerMark{{O, O, E}, {X, E, E}, {E, E, E}},
			botMark: X,
			wantRow: 0, wantCol: 2,
		},
		{
			name:    "Win beats block",
			board:   [][]game.PlayerMark{{O, O, E}, {X, X, E}, {E, E, E}},
			botMark: X,
			wantRow: 1, wantCol: 2,
		},
		{
			name:    "No immediate win or block, random move",
			board:   [][]game.PlayerMark{{X, E, E}, {E, O, E}, {E, E, E}},
			botMark: X,
			wantRow: -1, wantCol: -1,
		},
		{
			name:    "Full board",
			board:   [][]game.PlayerMark{{X, O, X}, {O, X, O}, {X, O, X}},
			botMark: X,
			wantRow: -1, wantCol: -1,
		},
	}

	b := seeded(Medium)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, col := b.NextMove(tt.board, tt.botMark)
			if tt.wantRow == -1 && tt.wantCol == -1 {
				if row != -1 && tt.board[row][col] != E {
					t.Errorf("medium bot returned a non-empty spot (%d, %d) for random move", row, col)
				}
				if row == -1 && !game.IsBoardFull(tt.board) {
					t.Errorf("medium bot gave up on a board with empty cells")
				}
			} else if row != tt.wantRow || col != tt.wantCol {
				t.Errorf("medium bot got (%d, %d), want (%d, %d)", row, col, tt.wantRow, tt.wantCol)
			}
		})
	}
}

func TestHardMove(t *testing.T) {
	corners := [][2]int{{0, 0}, {0, 2}, {2, 0}, {2, 2}}
	b := seeded(Hard)

	t.Run("Bot can win", func(t *testing.T) {
		row, col := b.NextMove([][]game.PlayerMark{{X, X, E}, {O, O, E}, {E, E, E}}, X)
		if row != 0 || col != 2 {
			t.Errorf("hard bot got (%d, %d), want (0, 2)", row, col)
		}
	})

	t.Run("Take center", func(t *testing.T) {
		row, col := b.NextMove([][]game.PlayerMark{{O, E, E}, {E, E, E}, {E, E, E}}, X)
		if row != 1 || col != 1 {
			t.Errorf("hard bot got (%d, %d), want (1, 1)", row, col)
		}
	})

	t.Run("Take corner", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			row, col := b.NextMove([][]game.PlayerMark{{E, E, E}, {E, O, E}, {E, E, E}}, X)
			if !moveIn([2]int{row, col}, corners) {
				t.Fatalf("hard bot got (%d, %d), want a corner", row, col)
			}
		}
	})

	t.Run("Only sides left", func(t *testing.T) {
		board := [][]game.PlayerMark{{X, E, O}, {E, O, E}, {X, E, O}}
		row, col := b.NextMove(board, X)
		if !moveIn([2]int{row, col}, [][2]int{{0, 1}, {1, 0}, {1, 2}, {2, 1}}) {
			t.Errorf("hard bot got (%d, %d), want a side", row, col)
		}
	})

	t.Run("Full board", func(t *testing.T) {
		row, col := b.NextMove([][]game.PlayerMark{{X, O, X}, {O, X, O}, {X, O, X}}, X)
		if row != -1 || col != -1 {
			t.Errorf("hard bot on a full board should return (-1, -1), but got (%d, %d)", row, col)
		}
	})

	t.Run("No cells", func(t *testing.T) {
		for _, d := range []Difficulty{Easy, Medium, Hard} {
			row, col := seeded(d).NextMove([][]game.PlayerMark{}, X)
			if row != -1 || col != -1 {
				t.Errorf("%s bot on an empty board should return (-1, -1), but got (%d, %d)", d, row, col)
			}
		}
	})
}

func TestBotPlaysThroughEngine(t *testing.T) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		t.Run(string(d), func(t *testing.T) {
			e, err := game.NewEngine(game.WithSize(4))
			if err != nil {
				t.Fatal(err)
			}
			b := seeded(d)
			for !e.Outcome().Terminal() {
				row, col := b.NextMove(e.Board(), e.Turn())
				if _, err := e.Place(row, col); err != nil {
					t.Fatalf("bot move (%d, %d) rejected: %v", row, col, err)
				}
			}
		})
	}
}
