package game

import (
	"github.com/pkg/errors"
)

// ErrIllegalAction is returned (wrapped) by Rules.ChildState when the action is not legal in the given state.
var ErrIllegalAction = errors.New("illegal action")

// State is the constraint on game states. States are immutable values: two states describing the same
// position must compare equal so they can be used as map keys by caching layers.
type State interface {
	comparable
	ToMove() Player // the player who moves next
}

// Rules is the contract a game has to fulfil to be searched.
//
// All values returned by EvaluateFinal are on the global scale: +1 is a win for the first player,
// -1 is a win for the second player and 0 is a draw. The scale never flips with depth or mover.
type Rules[S State, A comparable] interface {
	// InitialState returns the starting position.
	InitialState() S

	// LegalActions lists the legal actions of s. The order is the generation order and is stable.
	LegalActions(s S) []A

	// ChildState returns the state after a is played in s. An error wrapping ErrIllegalAction is
	// returned when a is not legal in s.
	ChildState(s S, a A) (S, error)

	// ChildStates returns every legal action of s with its successor, in LegalActions order.
	ChildStates(s S) []Successor[S, A]

	// IsFinal reports whether s is terminal.
	IsFinal(s S) bool

	// EvaluateFinal returns the outcome of a terminal state. It panics when s is not final.
	EvaluateFinal(s S) float32
}

// Successor is an action and the state it leads to.
type Successor[S State, A comparable] struct {
	Action A
	State  S
}

// Successors builds the ordered successor list of s out of LegalActions and ChildState.
// This is what most games use for ChildStates.
func Successors[S State, A comparable](r Rules[S, A], s S) []Successor[S, A] {
	actions := r.LegalActions(s)
	retVal := make([]Successor[S, A], 0, len(actions))
	for _, a := range actions {
		child, err := r.ChildState(s, a)
		if err != nil {
			panic(errors.Wrapf(err, "LegalActions returned %v", a))
		}
		retVal = append(retVal, Successor[S, A]{Action: a, State: child})
	}
	return retVal
}

// IllegalAction creates an error describing why a is not allowed.
func IllegalAction(a interface{}, reason string) error {
	return errors.Wrapf(ErrIllegalAction, "%v: %s", a, reason)
}

// NotFinal is the panic value used by EvaluateFinal implementations that are handed a non terminal state.
func NotFinal(s interface{}) error {
	return errors.Errorf("cannot evaluate a state that is not final:\n%v", s)
}
