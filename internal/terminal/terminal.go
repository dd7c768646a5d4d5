package terminal

import (
	"bufio"
	"context"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/session"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

// Options configures the terminal front end.
type Options struct {
	In  io.Reader
	Out io.Writer
	// Color is auto, always or never.
	Color string
	// Replay offers another game after each result instead of exiting.
	Replay bool
}

// Game drives a session from line-based input.
type Game struct {
	session *session.Session
	in      *bufio.Scanner
	out     *termenv.Output
	replay  bool
}

func New(s *session.Session, opts Options) *Game {
	var outOpts []termenv.OutputOption
	switch opts.Color {
	case "always":
		outOpts = append(outOpts, termenv.WithProfile(termenv.ANSI))
	case "never":
		outOpts = append(outOpts, termenv.WithProfile(termenv.Ascii))
	}
	return &Game{
		session: s,
		in:      bufio.NewScanner(opts.In),
		out:     termenv.NewOutput(opts.Out, outOpts...),
		replay:  opts.Replay,
	}
}

// Run plays until a game ends, the user quits or input is exhausted. With
// Replay set, a finished game is followed by a prompt to play again.
func (g *Game) Run(ctx context.Context) error {
	g.println("Welcome to Tic-Tac-Toe!")
	g.println("Enter 'r' to restart or 'q' to quit.")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if g.session.IsBotTurn() {
			p := g.session.CurrentPlayer()
			res, err := g.session.PlayBot(ctx)
			if err != nil {
				return fmt.Errorf("computer move: %w", err)
			}
			g.printf("%s plays %d %d\n", p.Name, res.Row, res.Col)
			if res.Outcome.Terminal() {
				g.finish(ctx, res.Outcome)
				if !g.again(ctx) {
					return nil
				}
			}
			continue
		}

		g.printBoard()
		g.printf("%s's turn. Enter your move (row and column):\n", g.session.CurrentPlayer().Name)

		if !g.in.Scan() {
			g.println("Goodbye!")
			return g.in.Err()
		}
		line := strings.TrimSpace(g.in.Text())

		switch strings.ToLower(line) {
		case "q", "quit":
			g.println("Goodbye!")
			return nil
		case "r", "restart":
			g.session.Reset(ctx)
			g.println("Game restarted.")
			continue
		}

		size := g.session.Snapshot().Size
		row, col, ok := parseMove(line, size)
		if !ok {
			g.printf("Invalid input. Please enter row and column numbers between 0 and %d.\n", size-1)
			continue
		}

		res, err := g.session.Place(ctx, row, col)
		if err != nil {
			g.println(describe(err))
			continue
		}
		if res.Outcome.Terminal() {
			g.finish(ctx, res.Outcome)
			if !g.again(ctx) {
				return nil
			}
		}
	}
}

// again asks whether to play another game and resets the board if so. The
// score store keeps the running tally across games.
func (g *Game) again(ctx context.Context) bool {
	if !g.replay {
		return false
	}
	for {
		g.println("Play again? (r/q)")
		if !g.in.Scan() {
			g.println("Goodbye!")
			return false
		}
		switch strings.ToLower(strings.TrimSpace(g.in.Text())) {
		case "r", "restart":
			g.session.Reset(ctx)
			g.println("Game restarted.")
			return true
		case "q", "quit":
			g.println("Goodbye!")
			return false
		}
	}
}

func (g *Game) finish(ctx context.Context, outcome game.Outcome) {
	g.printBoard()
	if outcome.Status == game.StatusWon {
		winner, _ := g.session.Player(outcome.Winner)
		g.printf("%s wins!\n", winner.Name)
	} else {
		g.println("It's a draw!")
	}

	scores, err := g.session.Scores(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Could not load scores", "error", err)
		return
	}
	g.println(scores.String())
}

func (g *Game) printBoard() {
	g.printf("%s", game.Render(g.session.Snapshot().Board, g.styleMark))
}

// styleMark colours X red and O blue.
func (g *Game) styleMark(m game.PlayerMark) string {
	color := termenv.ANSIBlue
	if m == game.PlayerX {
		color = termenv.ANSIRed
	}
	return g.out.String(string(m)).Foreground(color).Bold().String()
}

func (g *Game) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(g.out, format, args...)
}

func (g *Game) println(msg string) {
	_, _ = fmt.Fprintln(g.out, msg)
}

// parseMove accepts exactly two whitespace-separated integers within [0, size).
func parseMove(line string, size int) (row, col int, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, false
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, false
	}
	col, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, false
	}
	if row < 0 || row >= size || col < 0 || col >= size {
		return 0, 0, false
	}
	return row, col, true
}

func describe(err error) string {
	switch {
	case errors.Is(err, game.ErrCellOccupied):
		return "Cell is already occupied"
	case errors.Is(err, game.ErrOutOfBounds):
		return "That position is off the board."
	case errors.Is(err, game.ErrGameOver):
		return "The game is already over."
	default:
		return err.Error()
	}
}
