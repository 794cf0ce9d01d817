package mnk

import (
	"fmt"
	"strings"

	"github.com/deepmcts/deepmcts/game"
	"github.com/pkg/errors"
)

var (
	Cross  = game.First
	Nought = game.Second
)

var (
	_ game.Rules[State, game.Single] = &MNK{}
	_ game.CoordConverter            = &MNK{}
)

// directions checked for k in a row: right, down, down-right, down-left
var directions = [...][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// MNK is a representation of M,N,K games - a game is played on a MxN board. K moves to win.
type MNK struct {
	m, n, k int
}

// New creates a new MNK game with m rows and n columns.
func New(m, n, k int) *MNK {
	if m <= 0 || n <= 0 || k <= 0 || m > 255 || n > 255 || (k > m && k > n) {
		panic(fmt.Sprintf("invalid m,n,k game: %d,%d,%d", m, n, k))
	}
	return &MNK{m: m, n: n, k: k}
}

// TicTacToe creates a new MNK game for Tic Tac Toe
func TicTacToe() *MNK { return New(3, 3, 3) }

// State is a position of a M,N,K game. It is an immutable value and may be used as a map key.
type State struct {
	board string // one byte per cell in rowmajor order, each byte is a game.Colour
	n     uint8
	next  game.Player
}

func (s State) ToMove() game.Player { return s.next }

// Board returns a copy of the board.
func (s State) Board() []game.Colour {
	retVal := make([]game.Colour, len(s.board))
	for i := 0; i < len(s.board); i++ {
		retVal[i] = game.Colour(s.board[i])
	}
	return retVal
}

// At returns the colour of the cell at the given row and column.
func (s State) At(row, col int) game.Colour { return game.Colour(s.board[row*int(s.n)+col]) }

// MoveNumber returns the count of stones on the board.
func (s State) MoveNumber() int { return len(s.board) - strings.Count(s.board, "\x00") }

func (s State) Format(f fmt.State, c rune) {
	for i := 0; i < len(s.board); i++ {
		if i%int(s.n) == 0 {
			fmt.Fprint(f, "⎢ ")
		}
		fmt.Fprintf(f, "%s ", game.Colour(s.board[i]))
		if (i+1)%int(s.n) == 0 {
			fmt.Fprint(f, "⎥\n")
		}
	}
}

func (s State) String() string { return fmt.Sprintf("%s", s) }

// BoardSize returns the number of rows and columns.
func (g *MNK) BoardSize() (int, int) { return g.m, g.n }

func (g *MNK) InitialState() State {
	return State{
		board: string(make([]byte, g.m*g.n)),
		n:     uint8(g.n),
		next:  Cross,
	}
}

// Position creates a state out of a board. Mostly useful for setting up puzzles and tests.
func (g *MNK) Position(board []game.Colour, next game.Player) (State, error) {
	if len(board) != g.m*g.n {
		return State{}, errors.Errorf("expected a board of %d cells. Got %d", g.m*g.n, len(board))
	}
	if next != Cross && next != Nought {
		return State{}, errors.Errorf("invalid player to move %v", next)
	}
	bs := make([]byte, len(board))
	for i, c := range board {
		bs[i] = byte(c)
	}
	return State{board: string(bs), n: uint8(g.n), next: next}, nil
}

// LegalActions returns the empty cells, in rowmajor order. A finished game has no legal actions.
func (g *MNK) LegalActions(s State) []game.Single {
	if g.IsFinal(s) {
		return nil
	}
	retVal := make([]game.Single, 0, len(s.board))
	for i := 0; i < len(s.board); i++ {
		if game.Colour(s.board[i]) == game.None {
			retVal = append(retVal, game.Single(i))
		}
	}
	return retVal
}

func (g *MNK) ChildState(s State, a game.Single) (State, error) {
	if err := g.check(s, a); err != nil {
		return s, err
	}
	bs := []byte(s.board)
	bs[a] = byte(s.next)
	return State{board: string(bs), n: s.n, next: game.Opponent(s.next)}, nil
}

func (g *MNK) ChildStates(s State) []game.Successor[State, game.Single] {
	return game.Successors[State, game.Single](g, s)
}

// IsFinal returns true if either player has K in a row or the board is full.
func (g *MNK) IsFinal(s State) bool {
	if g.winner(s) != game.None {
		return true
	}
	return !strings.Contains(s.board, "\x00")
}

// EvaluateFinal returns +1 if crosses won, -1 if noughts won. A full board is a draw.
func (g *MNK) EvaluateFinal(s State) float32 {
	if !g.IsFinal(s) {
		panic(fmt.Sprintf("%+v", game.NotFinal(s)))
	}
	return game.Outcome(game.Player(g.winner(s)))
}

// Ended checks if the game has ended. If it has, who is the winner?
func (g *MNK) Ended(s State) (ended bool, winner game.Player) {
	if w := g.winner(s); w != game.None {
		return true, game.Player(w)
	}
	return g.IsFinal(s), game.Player(game.None)
}

func (g *MNK) Ltoi(c game.Coord) game.Single { return game.Single(int(c.Y)*g.n + int(c.X)) }

func (g *MNK) Itol(a game.Single) game.Coord {
	return game.Coord{X: int16(int(a) % g.n), Y: int16(int(a) / g.n)}
}

func (g *MNK) check(s State, a game.Single) error {
	if int(a) < 0 || int(a) >= len(s.board) {
		return game.IllegalAction(a, "outside of the board")
	}
	if game.Colour(s.board[a]) != game.None {
		return game.IllegalAction(a, "cell is occupied")
	}
	if g.winner(s) != game.None {
		return game.IllegalAction(a, "game has already been won")
	}
	return nil
}

// winner returns the colour that has K in a row, or None.
func (g *MNK) winner(s State) game.Colour {
	for row := 0; row < g.m; row++ {
		for col := 0; col < g.n; col++ {
			c := game.Colour(s.board[row*g.n+col])
			if c == game.None {
				continue
			}
			for _, d := range directions {
				if g.line(s, row, col, d[0], d[1], c) {
					return c
				}
			}
		}
	}
	return game.None
}

// line checks whether there are K stones of colour c starting at (row, col) going in direction (dr, dc).
func (g *MNK) line(s State, row, col, dr, dc int, c game.Colour) bool {
	for i := 0; i < g.k; i++ {
		r, cl := row+i*dr, col+i*dc
		if r < 0 || r >= g.m || cl < 0 || cl >= g.n {
			return false
		}
		if game.Colour(s.board[r*g.n+cl]) != c {
			return false
		}
	}
	return true
}
