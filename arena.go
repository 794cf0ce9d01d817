package deepmcts

import (
	"fmt"

	"github.com/deepmcts/deepmcts/game"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Arena plays games between two agents. Each agent has its own tree, and every move played is committed on
// both trees, so each agent keeps reusing its own analysis of the position.
//
// An Arena is not safe for concurrent use.
type Arena[S game.State, A comparable] struct {
	A, B  *Agent[S, A]
	rules game.Rules[S, A]

	// state
	currentPlayer *Agent[S, A]
	state         S
	moves         int
	log           zerolog.Logger
	enc           OutputEncoder

	name       string
	gameNumber int

	Statistics
}

// NewArena makes an arena for the two agents. Both agents must search the same game.
func NewArena[S game.State, A comparable](a, b *Agent[S, A], opts ...Option) *Arena[S, A] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	rules := a.MCTS.Rules()
	return &Arena[S, A]{
		A:          a,
		B:          b,
		rules:      rules,
		state:      rules.InitialState(),
		log:        o.logger,
		enc:        o.enc,
		name:       o.name,
		gameNumber: o.gameNumber,
		Statistics: makeStatistics(),
	}
}

// Play plays a game, and returns the winner and the actions played. If it is a draw, the returned player is
// None. A plays first in even numbered games, B plays first in odd numbered games.
func (a *Arena[S, A]) Play() (winner game.Player, actions []A, err error) {
	first, second := a.A, a.B
	if a.gameNumber%2 == 1 {
		first, second = second, first
	}
	first.Player = game.First
	second.Player = game.Second
	a.A.MCTS.Reset()
	a.B.MCTS.Reset()
	a.state = a.rules.InitialState()
	a.moves = 0
	a.currentPlayer = first

	a.log.Debug().Str("game", a.name).Int("gameNumber", a.gameNumber).Msgf("Playing. %v plays first", first.Name)
	for !a.rules.IsFinal(a.state) {
		best := a.currentPlayer.Search()
		if best == nil {
			return game.Player(game.None), actions, errors.Errorf("%v has no move to play in a non final state\n%s", a.currentPlayer.Name, stringer{a.state})
		}
		action := best.Action()
		a.log.Debug().Int("move", a.moves).Msgf("Current Player: %v (%v). Best Move %v", a.currentPlayer.Name, a.currentPlayer.Player, action)

		for _, agent := range []*Agent[S, A]{a.A, a.B} {
			if err = agent.MCTS.Commit(action); err != nil {
				return game.Player(game.None), actions, errors.WithMessagef(err, "agent %v", agent.Name)
			}
		}
		a.state = best.State()
		a.moves++
		actions = append(actions, action)
		a.switchPlayer()
		if a.enc != nil {
			if err = a.enc.Encode(a); err != nil {
				return game.Player(game.None), actions, errors.WithMessage(err, "unable to encode game")
			}
		}
	}

	winner = game.Winner(a.rules.EvaluateFinal(a.state))
	switch {
	case winner == game.Player(game.None):
		a.A.Draw++
		a.B.Draw++
	case winner == a.A.Player:
		a.A.Wins++
		a.B.Loss++
	case winner == a.B.Player:
		a.B.Wins++
		a.A.Loss++
	}
	a.Statistics.update(a.A)
	a.Statistics.update(a.B)
	a.log.Info().
		Str("game", a.name).
		Int("gameNumber", a.gameNumber).
		Int("moves", a.moves).
		Msgf("Winner %v", winner)
	a.gameNumber++
	return winner, actions, nil
}

// Tournament plays n games and returns the final statistics of the two agents.
func (a *Arena[S, A]) Tournament(n int) error {
	a.A.resetStats()
	a.B.resetStats()
	for i := 0; i < n; i++ {
		if _, _, err := a.Play(); err != nil {
			return errors.WithMessagef(err, "game %d", i)
		}
	}
	return nil
}

func (a *Arena[S, A]) GameNumber() int     { return a.gameNumber }
func (a *Arena[S, A]) MoveNumber() int     { return a.moves }
func (a *Arena[S, A]) Name() string        { return a.name }
func (a *Arena[S, A]) State() fmt.Stringer { return stringer{a.state} }

func (a *Arena[S, A]) Ended() (bool, game.Player) {
	if !a.rules.IsFinal(a.state) {
		return false, game.Player(game.None)
	}
	return true, game.Winner(a.rules.EvaluateFinal(a.state))
}

func (a *Arena[S, A]) switchPlayer() {
	switch a.currentPlayer {
	case a.A:
		a.currentPlayer = a.B
	case a.B:
		a.currentPlayer = a.A
	}
}
