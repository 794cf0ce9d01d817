package mcts

import (
	"github.com/deepmcts/deepmcts/game"
	"golang.org/x/exp/rand"
)

// Inferencer is essentially the neural network. Given a non final state it returns a prior probability for
// every legal action and a value estimate of the state, on the first player's scale.
type Inferencer[S game.State, A comparable] interface {
	Infer(state S) (priors map[A]float32, value float32)
}

// InferFunc is a function that implements Inferencer.
type InferFunc[S game.State, A comparable] func(state S) (map[A]float32, float32)

func (f InferFunc[S, A]) Infer(state S) (map[A]float32, float32) { return f(state) }

// Uniform is the inferencer used when none is provided: every legal action is equally likely and the value
// is always 0. With a rollout policy this gives plain rollout MCTS.
type Uniform[S game.State, A comparable] struct {
	Rules game.Rules[S, A]
}

func (u Uniform[S, A]) Infer(state S) (map[A]float32, float32) {
	actions := u.Rules.LegalActions(state)
	priors := make(map[A]float32, len(actions))
	for _, a := range actions {
		priors[a] = 1 / float32(len(actions))
	}
	return priors, 0
}

// RolloutPolicy picks the action to play in a non final state during a rollout.
// A nil RolloutPolicy disables rollouts: their contribution is 0.
type RolloutPolicy[S game.State, A comparable] func(state S) A

// RandomRollout returns a rollout policy that picks uniformly among the legal actions.
// The policy owns its own random source, seeded with seed.
func RandomRollout[S game.State, A comparable](rules game.Rules[S, A], seed uint64) RolloutPolicy[S, A] {
	r := rand.New(rand.NewSource(seed))
	return func(state S) A {
		actions := rules.LegalActions(state)
		return actions[r.Intn(len(actions))]
	}
}

// ActionProb is the probability of an action.
type ActionProb[A comparable] struct {
	Action A
	Prob   float32
}
