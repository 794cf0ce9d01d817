package deepmcts

import (
	"github.com/deepmcts/deepmcts/game"
	"github.com/deepmcts/deepmcts/mcts"
)

// An Agent is a named search taking part in an Arena.
type Agent[S game.State, A comparable] struct {
	Name   string
	MCTS   *mcts.MCTS[S, A]
	Player game.Player // the side played in the current game

	// Statistics
	Wins float32
	Loss float32
	Draw float32
}

// NewAgent creates an agent searching with t.
func NewAgent[S game.State, A comparable](name string, t *mcts.MCTS[S, A]) *Agent[S, A] {
	return &Agent[S, A]{Name: name, MCTS: t}
}

// Search searches the current root and returns the node the agent would like to play.
func (a *Agent[S, A]) Search() *mcts.Node[S, A] {
	a.MCTS.Search()
	return a.MCTS.Choose()
}

// Games returns the number of games the agent has finished.
func (a *Agent[S, A]) Games() float32 { return a.Wins + a.Loss + a.Draw }

func (a *Agent[S, A]) resetStats() {
	a.Wins = 0
	a.Loss = 0
	a.Draw = 0
}
