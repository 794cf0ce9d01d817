package c4

import (
	"fmt"

	"github.com/deepmcts/deepmcts/game"
	"github.com/pkg/errors"
)

var (
	_ game.Rules[State, game.Single] = &Game{}
)

// Game holds the rules of a connect-N game played on a board of (rows, cols).
type Game struct {
	rows, cols, n int
}

// New creates a new game with a board of (rows,cols) and N to win (connect4 being 4 to win)
func New(rows, cols, N int) *Game {
	if rows <= 0 || cols <= 0 || N <= 0 || rows > 255 || cols > 255 {
		panic(fmt.Sprintf("invalid connect-N game: %dx%d, %d to win", rows, cols, N))
	}
	return &Game{rows: rows, cols: cols, n: N}
}

// State is a connect-N position.
type State struct {
	b         Board
	next      game.Player
	moveCount int
}

func (s State) ToMove() game.Player { return s.next }

func (s State) MoveNumber() int { return s.moveCount }

func (s State) Format(f fmt.State, c rune) { s.b.Format(f, c) }

func (s State) String() string { return fmt.Sprintf("%s", s.b) }

// Board returns a copy of the cells in rowmajor order.
func (s State) Board() []game.Colour {
	retVal := make([]game.Colour, len(s.b.data))
	for i := range retVal {
		retVal[i] = game.Colour(s.b.data[i])
	}
	return retVal
}

func (g *Game) BoardSize() (int, int) { return g.rows, g.cols }

func (g *Game) InitialState() State {
	return State{b: newBoard(g.rows, g.cols, g.n), next: game.First}
}

// Position creates a state out of a board given in rowmajor order.
// The board is taken as is: gravity is not checked.
func (g *Game) Position(board []game.Colour, next game.Player) (State, error) {
	if len(board) != g.rows*g.cols {
		return State{}, errors.Errorf("expected a board of %d cells. Got %d", g.rows*g.cols, len(board))
	}
	b := newBoard(g.rows, g.cols, g.n)
	bs := make([]byte, len(board))
	var count int
	for i, c := range board {
		bs[i] = byte(c)
		if c != game.None {
			count++
		}
	}
	b.data = string(bs)
	return State{b: b, next: next, moveCount: count}, nil
}

// LegalActions returns the columns that still have room, left to right.
func (g *Game) LegalActions(s State) []game.Single {
	if g.IsFinal(s) {
		return nil
	}
	retVal := make([]game.Single, 0, g.cols)
	for col := 0; col < g.cols; col++ {
		if s.b.at(0, col) == game.None {
			retVal = append(retVal, game.Single(col))
		}
	}
	return retVal
}

func (g *Game) ChildState(s State, a game.Single) (State, error) {
	if s.b.checkWin() != game.None {
		return s, game.IllegalAction(a, "game has already been won")
	}
	b, err := s.b.apply(a, game.Colour(s.next))
	if err != nil {
		return s, err
	}
	return State{b: b, next: game.Opponent(s.next), moveCount: s.moveCount + 1}, nil
}

func (g *Game) ChildStates(s State) []game.Successor[State, game.Single] {
	return game.Successors[State, game.Single](g, s)
}

func (g *Game) IsFinal(s State) bool {
	if s.b.checkWin() != game.None {
		return true
	}
	// ended due to full board
	return s.b.isFull()
}

func (g *Game) EvaluateFinal(s State) float32 {
	if !g.IsFinal(s) {
		panic(fmt.Sprintf("%+v", game.NotFinal(s)))
	}
	return game.Outcome(game.Player(s.b.checkWin()))
}

// Ended checks if the game has ended. If it has, who is the winner?
func (g *Game) Ended(s State) (bool, game.Player) {
	winner := s.b.checkWin()
	if winner != game.None {
		return true, game.Player(winner)
	}
	return s.b.isFull(), game.Player(game.None)
}
