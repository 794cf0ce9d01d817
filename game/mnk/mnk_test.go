package mnk

import (
	"fmt"
	"testing"

	"github.com/deepmcts/deepmcts/game"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	X = game.Black
	O = game.White
	Z = game.None
)

func TestTicTacToe(t *testing.T) {
	TTT := TicTacToe()
	s, err := TTT.Position([]game.Colour{
		X, O, X,
		O, X, O,
		O, O, X,
	}, Nought)
	require.NoError(t, err)
	assert.Equal(t, X, TTT.winner(s), "expected X to be winner")
	assert.True(t, TTT.IsFinal(s), "expected game to be ended")
	assert.Equal(t, float32(1), TTT.EvaluateFinal(s))

	s, err = TTT.Position([]game.Colour{
		X, O, O,
		X, O, X,
		O, X, X,
	}, Cross)
	require.NoError(t, err)
	assert.Equal(t, O, TTT.winner(s), "expected O to be winner")
	assert.Equal(t, float32(-1), TTT.EvaluateFinal(s))
}

func TestGomoku(t *testing.T) {
	g := New(7, 7, 5)
	s, err := g.Position([]game.Colour{
		Z, X, Z, Z, Z, Z, Z,
		Z, Z, X, Z, Z, Z, Z,
		Z, Z, Z, X, Z, Z, Z,
		Z, Z, Z, Z, X, Z, Z,
		Z, Z, Z, Z, Z, X, Z,
		Z, Z, Z, Z, Z, X, Z,
		Z, Z, Z, Z, Z, X, Z,
	}, Nought)
	require.NoError(t, err)
	assert.Equal(t, X, g.winner(s))
	assert.True(t, g.IsFinal(s))

	s, err = g.Position([]game.Colour{
		Z, Z, Z, Z, Z, Z, Z,
		Z, Z, Z, Z, Z, O, Z,
		Z, Z, Z, Z, O, Z, Z,
		Z, Z, Z, O, Z, Z, Z,
		Z, Z, O, Z, Z, Z, Z,
		Z, O, Z, Z, Z, Z, Z,
		Z, Z, Z, Z, Z, Z, Z,
	}, Cross)
	require.NoError(t, err)
	assert.Equal(t, O, g.winner(s))

	// four in a row is not enough
	s, err = g.Position([]game.Colour{
		X, X, X, X, Z, Z, Z,
		O, O, O, O, Z, Z, Z,
		Z, Z, Z, Z, Z, Z, Z,
		Z, Z, Z, Z, Z, Z, Z,
		Z, Z, Z, Z, Z, Z, Z,
		Z, Z, Z, Z, Z, Z, Z,
		Z, Z, Z, Z, Z, Z, Z,
	}, Cross)
	require.NoError(t, err)
	assert.Equal(t, Z, g.winner(s))
	assert.False(t, g.IsFinal(s))
}

func TestTicTacToeEnded(t *testing.T) {
	TTT := TicTacToe()
	tests := []struct {
		board  []game.Colour
		ended  bool
		winner game.Player
	}{
		{[]game.Colour{
			O, Z, X,
			Z, Z, X,
			Z, O, X,
		}, true, Cross},
		{[]game.Colour{
			O, O, O,
			Z, Z, X,
			X, O, X,
		}, true, Nought},
		{[]game.Colour{
			Z, Z, X,
			X, O, X,
			O, O, O,
		}, true, Nought},
		{[]game.Colour{
			O, Z, X,
			X, O, X,
			O, Z, O,
		}, true, Nought},
		{[]game.Colour{
			X, O, X,
			X, O, O,
			O, X, X,
		}, true, game.Player(game.None)},
		{[]game.Colour{
			X, O, Z,
			Z, Z, Z,
			Z, Z, Z,
		}, false, game.Player(game.None)},
	}
	for i, tc := range tests {
		s, err := TTT.Position(tc.board, Cross)
		require.NoError(t, err)
		ended, winner := TTT.Ended(s)
		assert.Equal(t, tc.ended, ended, "test %d", i)
		assert.Equal(t, tc.winner, winner, "test %d", i)
		assert.Equal(t, tc.ended, TTT.IsFinal(s), "test %d", i)
	}
}

func TestMNK_LegalActions(t *testing.T) {
	TTT := TicTacToe()
	s := TTT.InitialState()
	assert.Equal(t, []game.Single{0, 1, 2, 3, 4, 5, 6, 7, 8}, TTT.LegalActions(s))
	assert.Equal(t, Cross, s.ToMove())

	s, err := TTT.ChildState(s, 4)
	require.NoError(t, err)
	assert.Equal(t, Nought, s.ToMove())
	assert.Equal(t, []game.Single{0, 1, 2, 3, 5, 6, 7, 8}, TTT.LegalActions(s))
	assert.Equal(t, X, s.At(1, 1))
	assert.Equal(t, 1, s.MoveNumber())

	kids := TTT.ChildStates(s)
	require.Len(t, kids, 8)
	for i, a := range TTT.LegalActions(s) {
		assert.Equal(t, a, kids[i].Action)
		child, err := TTT.ChildState(s, a)
		require.NoError(t, err)
		assert.Equal(t, child, kids[i].State)
	}
}

func TestMNK_IllegalAction(t *testing.T) {
	TTT := TicTacToe()
	s := TTT.InitialState()
	s, err := TTT.ChildState(s, 0)
	require.NoError(t, err)

	for _, a := range []game.Single{0, -1, 9} {
		_, err := TTT.ChildState(s, a)
		require.Error(t, err, "action %d", a)
		assert.True(t, errors.Is(err, game.ErrIllegalAction))
	}
}

func TestState_Equality(t *testing.T) {
	TTT := TicTacToe()
	// two move orders reaching the same position
	a, b := TTT.InitialState(), TTT.InitialState()
	for _, m := range []game.Single{0, 4, 8} {
		a, _ = TTT.ChildState(a, m)
	}
	for _, m := range []game.Single{8, 4, 0} {
		b, _ = TTT.ChildState(b, m)
	}
	assert.Equal(t, a, b)
	assert.True(t, a == b)

	seen := map[State]int{a: 1}
	assert.Equal(t, 1, seen[b])
}

func TestEvaluateFinal_NotFinal(t *testing.T) {
	TTT := TicTacToe()
	assert.Panics(t, func() { TTT.EvaluateFinal(TTT.InitialState()) })
}

func TestState_Format(t *testing.T) {
	TTT := TicTacToe()
	s, _ := TTT.ChildState(TTT.InitialState(), 4)
	s, _ = TTT.ChildState(s, 0)
	expected := "⎢ O · · ⎥\n⎢ · X · ⎥\n⎢ · · · ⎥\n"
	assert.Equal(t, expected, fmt.Sprintf("%s", s))
	assert.Equal(t, expected, s.String())
}

func TestMNK_Coords(t *testing.T) {
	g := New(3, 4, 3)
	for i := game.Single(0); i < 12; i++ {
		assert.Equal(t, i, g.Ltoi(g.Itol(i)))
	}
	assert.Equal(t, game.Coord{X: 1, Y: 2}, g.Itol(9))
}

func TestNew_Bounds(t *testing.T) {
	assert.Panics(t, func() { New(3, 256, 3) })
	assert.Panics(t, func() { New(256, 3, 3) })
	assert.Panics(t, func() { New(3, 3, 4) })
	assert.NotPanics(t, func() { New(255, 255, 5) })

	// the widest board still addresses the right cells
	g := New(2, 255, 2)
	s, err := g.ChildState(g.InitialState(), 254+255)
	require.NoError(t, err)
	assert.Equal(t, X, s.At(1, 254))
	assert.Equal(t, Z, s.At(0, 254))
}

func TestState_Board(t *testing.T) {
	TTT := TicTacToe()
	board := []game.Colour{
		X, Z, O,
		Z, X, Z,
		Z, Z, Z,
	}
	s, err := TTT.Position(board, Nought)
	require.NoError(t, err)
	assert.Equal(t, board, s.Board())

	// the returned board is a copy
	s.Board()[1] = O
	assert.Equal(t, Z, s.At(0, 1))
	assert.Equal(t, 3, s.MoveNumber())
}
