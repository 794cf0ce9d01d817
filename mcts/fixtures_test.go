package mcts

import (
	"fmt"

	"github.com/deepmcts/deepmcts/game"
)

// nimState is a pile of stones. Players take one or two stones, whoever takes the last stone wins.
type nimState struct {
	stones int
	next   game.Player
}

func (s nimState) ToMove() game.Player { return s.next }

func (s nimState) Format(f fmt.State, c rune) {
	fmt.Fprintf(f, "%d stones, %v to move", s.stones, s.next)
}

type nim struct{ start int }

func (g nim) InitialState() nimState { return nimState{stones: g.start, next: game.First} }

func (g nim) LegalActions(s nimState) []int {
	switch {
	case s.stones >= 2:
		return []int{1, 2}
	case s.stones == 1:
		return []int{1}
	}
	return nil
}

func (g nim) ChildState(s nimState, a int) (nimState, error) {
	if a < 1 || a > 2 || a > s.stones {
		return s, game.IllegalAction(a, "cannot take that many stones")
	}
	return nimState{stones: s.stones - a, next: game.Opponent(s.next)}, nil
}

func (g nim) ChildStates(s nimState) []game.Successor[nimState, int] {
	return game.Successors[nimState, int](g, s)
}

func (g nim) IsFinal(s nimState) bool { return s.stones == 0 }

func (g nim) EvaluateFinal(s nimState) float32 {
	if s.stones != 0 {
		panic(fmt.Sprintf("%+v", game.NotFinal(s)))
	}
	// the player who took the last stone is the one that is not to move
	return game.Outcome(game.Opponent(s.next))
}

// fixed is an inferencer with a fixed value and uniform priors.
type fixed struct {
	rules game.Rules[nimState, int]
	value float32
	calls int
}

func (f *fixed) Infer(s nimState) (map[int]float32, float32) {
	f.calls++
	priors, _ := Uniform[nimState, int]{Rules: f.rules}.Infer(s)
	return priors, f.value
}

func testConfig(sims int) Config {
	conf := DefaultConfig()
	conf.Simulations = sims
	return conf
}

// walk calls fn on every node of the live tree.
func walk[S game.State, A comparable](n *Node[S, A], fn func(*Node[S, A])) {
	fn(n)
	for _, kid := range n.children {
		walk(kid, fn)
	}
}
