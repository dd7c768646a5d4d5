package terminal

import (
	"bytes"
	"context"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/session"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, opts session.Options, input string) string {
	t.Helper()
	s, err := session.New(opts)
	require.NoError(t, err)

	var out bytes.Buffer
	g := New(s, Options{In: strings.NewReader(input), Out: &out, Color: "never"})
	require.NoError(t, g.Run(context.Background()))
	return out.String()
}

func TestRun_XWinsTopRow(t *testing.T) {
	out := run(t, session.Options{}, "0 0\n1 0\n0 1\n1 1\n0 2\n")

	assert.True(t, strings.HasPrefix(out, "Welcome to Tic-Tac-Toe!\n"))
	assert.Contains(t, out, "Player X's turn. Enter your move (row and column):")
	assert.Contains(t, out, "Player O's turn. Enter your move (row and column):")
	assert.Contains(t, out, "X X X\nO O .\n. . .\nPlayer X wins!\n")
	assert.Contains(t, out, "Score: X 1 | O 0 | Draws 0")
	assert.NotContains(t, out, "Play again?")
}

func TestRun_Draw(t *testing.T) {
	out := run(t, session.Options{}, "0 0\n0 1\n0 2\n1 1\n1 0\n1 2\n2 1\n2 0\n2 2\n")

	assert.Contains(t, out, "X O X\nX O O\nO X X\nIt's a draw!\n")
	assert.Contains(t, out, "Score: X 0 | O 0 | Draws 1")
}

func TestRun_InvalidInput(t *testing.T) {
	out := run(t, session.Options{}, "hello\n3 0\n1\n0 0 0\n-1 2\nq\n")

	assert.Equal(t, 5, strings.Count(out, "Invalid input. Please enter row and column numbers between 0 and 2."))
	assert.Equal(t, 6, strings.Count(out, "Player X's turn."))
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
}

func TestRun_OccupiedCell(t *testing.T) {
	out := run(t, session.Options{}, "1 1\n1 1\nq\n")

	assert.Contains(t, out, "Cell is already occupied\n")
	// O is still to move after the rejected placement.
	assert.Equal(t, 2, strings.Count(out, "Player O's turn."))
}

func TestRun_Restart(t *testing.T) {
	out := run(t, session.Options{}, "0 0\nr\nq\n")

	assert.Contains(t, out, "Game restarted.\n. . .\n. . .\n. . .\nPlayer X's turn.")
}

func TestRun_EndOfInput(t *testing.T) {
	out := run(t, session.Options{}, "0 0\n")

	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
	assert.NotContains(t, out, "wins!")
}

func TestRun_CustomNamesAndSize(t *testing.T) {
	names := map[game.PlayerMark]string{game.PlayerX: "Alice", game.PlayerO: "Bob"}
	out := run(t, session.Options{Size: 4, Names: names}, "4 4\n0 0\n1 0\n0 1\n1 1\n0 2\n1 2\n0 3\n")

	assert.Contains(t, out, "between 0 and 3.")
	assert.Contains(t, out, "Bob's turn.")
	assert.Contains(t, out, "Alice wins!\n")
}

func TestRun_AgainstBot(t *testing.T) {
	b := bot.New(bot.Hard, bot.WithRand(rand.New(rand.NewPCG(1, 2))))
	input := strings.Repeat("0 0\n0 1\n0 2\n1 0\n1 1\n1 2\n2 0\n2 1\n2 2\n", 2)
	out := run(t, session.Options{Bot: b, BotMark: game.PlayerO}, input)

	assert.Contains(t, out, "Computer O plays ")
	assert.True(t,
		strings.Contains(out, "wins!") || strings.Contains(out, "It's a draw!"),
		"game should finish, got:\n%s", out)
}

func TestRun_BotStarts(t *testing.T) {
	b := bot.New(bot.Hard, bot.WithRand(rand.New(rand.NewPCG(1, 2))))
	out := run(t, session.Options{Bot: b, BotMark: game.PlayerX}, "q\n")

	// The hard bot opens in the centre of an odd board.
	assert.Contains(t, out, "Computer X plays 1 1\n. . .\n. X .\n. . .\nPlayer O's turn.")
}

func TestRun_Replay(t *testing.T) {
	s, err := session.New(session.Options{})
	require.NoError(t, err)

	xWins := "0 0\n1 0\n0 1\n1 1\n0 2\n"
	var out bytes.Buffer
	g := New(s, Options{In: strings.NewReader(xWins + "maybe\nr\n" + xWins + "q\n"), Out: &out, Color: "never", Replay: true})
	require.NoError(t, g.Run(context.Background()))

	got := out.String()
	assert.Equal(t, 2, strings.Count(got, "Player X wins!"))
	assert.Equal(t, 3, strings.Count(got, "Play again? (r/q)"))
	assert.Contains(t, got, "Game restarted.\n. . .\n. . .\n. . .\nPlayer X's turn.")
	assert.Contains(t, got, "Score: X 1 | O 0 | Draws 0")
	assert.Contains(t, got, "Score: X 2 | O 0 | Draws 0\nPlay again? (r/q)\nGoodbye!\n")
}

func TestRun_ReplayEndOfInput(t *testing.T) {
	s, err := session.New(session.Options{})
	require.NoError(t, err)

	var out bytes.Buffer
	g := New(s, Options{In: strings.NewReader("0 0\n0 1\n0 2\n1 1\n1 0\n1 2\n2 1\n2 0\n2 2\n"), Out: &out, Color: "never", Replay: true})
	require.NoError(t, g.Run(context.Background()))

	assert.True(t, strings.HasSuffix(out.String(), "It's a draw!\nScore: X 0 | O 0 | Draws 1\nPlay again? (r/q)\nGoodbye!\n"))
}

func TestRun_CancelledContext(t *testing.T) {
	s, err := session.New(session.Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := New(s, Options{In: strings.NewReader("0 0\n"), Out: &bytes.Buffer{}, Color: "never"})
	assert.ErrorIs(t, g.Run(ctx), context.Canceled)
}

func TestStyleMark(t *testing.T) {
	s, err := session.New(session.Options{})
	require.NoError(t, err)

	plain := New(s, Options{In: strings.NewReader(""), Out: &bytes.Buffer{}, Color: "never"})
	assert.Equal(t, "X", plain.styleMark(game.PlayerX))

	colored := New(s, Options{In: strings.NewReader(""), Out: &bytes.Buffer{}, Color: "always"})
	x := colored.styleMark(game.PlayerX)
	o := colored.styleMark(game.PlayerO)
	assert.Contains(t, x, "X")
	assert.Contains(t, x, "\x1b[")
	assert.NotEqual(t, strings.Replace(x, "X", "O", 1), o)
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		in       string
		row, col int
		ok       bool
	}{
		{"0 0", 0, 0, true},
		{"  2   1 ", 2, 1, true},
		{"3 0", 0, 0, false},
		{"0", 0, 0, false},
		{"a b", 0, 0, false},
		{"1 2 3", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		row, col, ok := parseMove(tt.in, 3)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, [2]int{tt.row, tt.col}, [2]int{row, col}, tt.in)
		}
	}
}
