// Package deepmcts drives Monte Carlo tree searches through whole games.
//
// SelfPlay lets a single search play both sides of a game and yields one Transition per move, which is what a
// learner consumes. Arena pits two searches with their own trees against each other.
package deepmcts

import (
	"fmt"

	"github.com/deepmcts/deepmcts/game"
	"github.com/deepmcts/deepmcts/mcts"
	"github.com/rs/zerolog"
)

// SelfPlay is a lazy, single pass iterator over the moves of a game the search plays against itself.
//
// Every call to Next searches the current root, picks the action (the most visited child, or a sampled one
// for the first RandomCount moves), and moves the root of the tree to the chosen child so that its subtree
// is reused for the next move. Once the game is over Next keeps returning false.
//
// A SelfPlay is not safe for concurrent use.
type SelfPlay[S game.State, A comparable] struct {
	t     *mcts.MCTS[S, A]
	rules game.Rules[S, A]

	name       string
	gameNumber int
	log        zerolog.Logger
	enc        OutputEncoder

	done bool
}

// NewSelfPlay plays the game from the current root of t.
func NewSelfPlay[S game.State, A comparable](t *mcts.MCTS[S, A], opts ...Option) *SelfPlay[S, A] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &SelfPlay[S, A]{
		t:          t,
		rules:      t.Rules(),
		name:       o.name,
		gameNumber: o.gameNumber,
		log:        o.logger,
		enc:        o.enc,
	}
}

// Next plays one move. It returns false when the game has ended.
func (sp *SelfPlay[S, A]) Next() (retVal Transition[S, A], ok bool) {
	if sp.done {
		return retVal, false
	}
	state := sp.t.Root().State()
	if sp.rules.IsFinal(state) {
		sp.done = true
		winner := game.Winner(sp.rules.EvaluateFinal(state))
		sp.log.Info().
			Str("game", sp.name).
			Int("gameNumber", sp.gameNumber).
			Int("moves", sp.t.Moves()).
			Msgf("game over. Winner %v", winner)
		return retVal, false
	}

	sp.t.Search()
	chosen := sp.t.Choose()
	retVal = Transition[S, A]{
		State:  state,
		Next:   chosen.State(),
		Action: chosen.Action(),
		Policy: sp.t.Policy(),
		Move:   sp.t.Moves(),
	}
	sp.log.Debug().
		Str("game", sp.name).
		Int("move", retVal.Move).
		Uint32("visits", chosen.Visits()).
		Float32("q", chosen.MeanValue()).
		Msgf("%v plays %v", state.ToMove(), retVal.Action)

	// the chosen node is a child of the root, so this cannot fail
	if err := sp.t.Commit(retVal.Action); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	if sp.enc != nil {
		if err := sp.enc.Encode(sp); err != nil {
			sp.log.Warn().Err(err).Msg("unable to encode position")
		}
	}
	return retVal, true
}

// Run drains the iterator and returns every remaining transition.
func (sp *SelfPlay[S, A]) Run() []Transition[S, A] {
	var retVal []Transition[S, A]
	for tr, ok := sp.Next(); ok; tr, ok = sp.Next() {
		retVal = append(retVal, tr)
	}
	return retVal
}

func (sp *SelfPlay[S, A]) Name() string        { return sp.name }
func (sp *SelfPlay[S, A]) GameNumber() int     { return sp.gameNumber }
func (sp *SelfPlay[S, A]) MoveNumber() int     { return sp.t.Moves() }
func (sp *SelfPlay[S, A]) State() fmt.Stringer { return stringer{sp.t.Root().State()} }

func (sp *SelfPlay[S, A]) Ended() (bool, game.Player) {
	state := sp.t.Root().State()
	if !sp.rules.IsFinal(state) {
		return false, game.Player(game.None)
	}
	return true, game.Winner(sp.rules.EvaluateFinal(state))
}
