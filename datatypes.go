package deepmcts

import (
	"fmt"

	"github.com/deepmcts/deepmcts/game"
	"github.com/deepmcts/deepmcts/mcts"
	"github.com/rs/zerolog"
)

// Transition is the training signal of one move of self play: the position, the position after the chosen
// action, the chosen action and the visit distribution over the actions of the position.
type Transition[S game.State, A comparable] struct {
	State  S
	Next   S
	Action A
	Policy []mcts.ActionProb[A] // in the order the actions were generated
	Move   int                  // move number of State
}

// Distribution returns the visit distribution keyed by action.
func (t Transition[S, A]) Distribution() map[A]float32 {
	retVal := make(map[A]float32, len(t.Policy))
	for _, ap := range t.Policy {
		retVal[ap.Action] = ap.Prob
	}
	return retVal
}

// OutputEncoder encodes the entire meta state as whatever.
//
// An example OutputEncoder is the GifEncoder. Another example would be a logger.
type OutputEncoder interface {
	Encode(ms game.MetaState) error
	Flush() error
}

// Option configures a SelfPlay or an Arena.
type Option func(*options)

type options struct {
	name       string
	gameNumber int
	logger     zerolog.Logger
	enc        OutputEncoder
}

func defaultOptions() options {
	return options{
		name:   "UNKNOWN GAME",
		logger: zerolog.Nop(),
	}
}

// WithName names the game. The name shows up in the logs and in encoded outputs.
func WithName(name string) Option { return func(o *options) { o.name = name } }

// WithGameNumber sets the number of the (first) game played.
func WithGameNumber(n int) Option { return func(o *options) { o.gameNumber = n } }

// WithLogger logs to l. By default nothing is logged.
func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.logger = l } }

// WithOutputEncoder feeds every position reached to enc.
func WithOutputEncoder(enc OutputEncoder) Option { return func(o *options) { o.enc = enc } }

// stringer lets any state be rendered through its fmt.Formatter or fmt.Stringer.
type stringer struct{ v interface{} }

func (s stringer) String() string { return fmt.Sprintf("%s", s.v) }
