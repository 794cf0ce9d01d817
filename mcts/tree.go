package mcts

import (
	"fmt"

	"github.com/deepmcts/deepmcts/game"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
)

// Config is the structure to configure the search
type Config struct {
	// PUCT is the exploration constant c in U(s, a). The classic value is 1.
	PUCT float32

	// Simulations is the number of simulations run by every call to Search.
	Simulations int

	RandomCount       int     // if the move number is less than this, the move is sampled from the visit counts
	RandomTemperature float32 // temperature used when sampling moves

	// DirichletAlpha is the concentration of the noise mixed into the root priors. 0 disables the noise.
	DirichletAlpha float32
	NoiseFraction  float32 // ε in (1-ε)P + εη

	// Seed seeds every random decision taken by the engine.
	Seed uint64
}

func DefaultConfig() Config {
	return Config{
		PUCT:              1.0,
		Simulations:       1000,
		RandomTemperature: 1.0,
		NoiseFraction:     0.25,
		Seed:              1337,
	}
}

func (c Config) IsValid() bool { return c.Validate() == nil }

// Validate returns a descriptive error for the first nonsensical option found.
func (c Config) Validate() error {
	switch {
	case c.PUCT <= 0:
		return errors.Errorf("PUCT has to be positive. Got %v", c.PUCT)
	case c.Simulations < 1:
		return errors.Errorf("at least one simulation per search is required. Got %d", c.Simulations)
	case c.RandomCount < 0:
		return errors.Errorf("RandomCount cannot be negative. Got %d", c.RandomCount)
	case c.RandomCount > 0 && c.RandomTemperature <= 0:
		return errors.Errorf("RandomTemperature has to be positive when RandomCount is set. Got %v", c.RandomTemperature)
	case c.DirichletAlpha < 0:
		return errors.Errorf("DirichletAlpha cannot be negative. Got %v", c.DirichletAlpha)
	case c.NoiseFraction < 0 || c.NoiseFraction > 1:
		return errors.Errorf("NoiseFraction has to be between 0 and 1. Got %v", c.NoiseFraction)
	}
	return nil
}

// Option configures the optional collaborators of an MCTS.
type Option func(*options)

type options struct {
	logger zerolog.Logger
}

// WithLogger makes the engine log to l. By default nothing is logged.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// MCTS is the search engine. It keeps a single tree rooted at the current position of the game, and moves
// the root down the tree as actions are committed.
//
// An MCTS is not safe for concurrent use.
type MCTS[S game.State, A comparable] struct {
	Config
	rules   game.Rules[S, A]
	nn      Inferencer[S, A]
	rollout RolloutPolicy[S, A]
	rand    *rand.Rand
	log     zerolog.Logger

	root  *Node[S, A]
	moves int // number of committed actions, i.e. the move number of the root

	// memory related fields
	freelist  []*Node[S, A]
	freeables []*Node[S, A] // list of nodes that can be freed
	live      int
}

// New creates a search engine rooted at the initial state of the game. A nil nn uses Uniform. A nil rollout
// disables rollouts.
//
// New panics if the configuration is invalid.
func New[S game.State, A comparable](rules game.Rules[S, A], conf Config, nn Inferencer[S, A], rollout RolloutPolicy[S, A], opts ...Option) *MCTS[S, A] {
	if err := conf.Validate(); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if nn == nil {
		nn = Uniform[S, A]{Rules: rules}
	}
	retVal := &MCTS[S, A]{
		Config:  conf,
		rules:   rules,
		nn:      nn,
		rollout: rollout,
		rand:    rand.New(rand.NewSource(conf.Seed)),
		log:     o.logger,

		freelist: make([]*Node[S, A], 0, 1024),
	}
	var zero A
	retVal.root = retVal.New(rules.InitialState(), zero, 0)
	return retVal
}

// New creates a new node
func (t *MCTS[S, A]) New(state S, action A, prior float32) *Node[S, A] {
	n := t.alloc()
	n.state = state
	n.action = action
	n.prior = prior
	n.Activate()
	return n
}

// Root returns the current root.
func (t *MCTS[S, A]) Root() *Node[S, A] { return t.root }

// Rules returns the game being searched.
func (t *MCTS[S, A]) Rules() game.Rules[S, A] { return t.rules }

// Moves returns the number of actions committed so far.
func (t *MCTS[S, A]) Moves() int { return t.moves }

// Nodes returns the number of nodes that are still alive.
func (t *MCTS[S, A]) Nodes() int { return t.live }

// SetLogger replaces the logger.
func (t *MCTS[S, A]) SetLogger(l zerolog.Logger) { t.log = l }

// Commit moves the root to the child reached by a. When the child exists it becomes the new root with all its
// statistics and its subtree (tree reuse). Otherwise a fresh root is created from the game rules. The old root
// and all the siblings of the new root are discarded.
func (t *MCTS[S, A]) Commit(a A) error {
	oldRoot := t.root
	newRoot := oldRoot.Child(a)
	reused := newRoot != nil
	if !reused {
		state, err := t.rules.ChildState(oldRoot.state, a)
		if err != nil {
			return errors.WithMessagef(err, "cannot commit move %d", t.moves)
		}
		newRoot = t.New(state, a, 0)
	}
	t.cleanup(oldRoot, newRoot)
	t.root = newRoot
	t.moves++
	t.log.Debug().
		Int("move", t.moves).
		Bool("reused", reused).
		Uint32("visits", newRoot.visits).
		Int("freeables", len(t.freeables)).
		Msgf("committed %v", a)
	return nil
}

// Reset discards the whole tree and starts again from the initial state.
func (t *MCTS[S, A]) Reset() {
	t.ResetTo(t.rules.InitialState())
	t.moves = 0
}

// ResetTo discards the whole tree and roots the search at s.
func (t *MCTS[S, A]) ResetTo(s S) {
	t.root.Invalidate()
	t.freeables = append(t.freeables, t.root)
	t.cleanChildren(t.root)
	t.freeAll()

	var zero A
	t.root = t.New(s, zero, 0)
}

// alloc tries to get a node from the free list. If none is found a new node is allocated
func (t *MCTS[S, A]) alloc() *Node[S, A] {
	t.live++
	l := len(t.freelist)
	if l == 0 {
		return new(Node[S, A])
	}
	n := t.freelist[l-1]
	t.freelist[l-1] = nil
	t.freelist = t.freelist[:l-1]
	return n
}

// free puts the node back into the freelist.
//
// Callers holding on to a freed node will see it reused. Only nodes that are unreachable from the root may be
// freed.
func (t *MCTS[S, A]) free(n *Node[S, A]) {
	n.reset()
	t.freelist = append(t.freelist, n)
	t.live--
}

func (t *MCTS[S, A]) freeAll() {
	for i, f := range t.freeables {
		t.free(f)
		t.freeables[i] = nil
	}
	t.freeables = t.freeables[:0]
}

// cleanup detaches newRoot from oldRoot. The old root and every other subtree hanging off it can be freed.
func (t *MCTS[S, A]) cleanup(oldRoot, newRoot *Node[S, A]) {
	for _, kid := range oldRoot.children {
		if kid != newRoot {
			kid.Invalidate()
			t.freeables = append(t.freeables, kid)
			t.cleanChildren(kid)
		}
	}
	for i := range oldRoot.children {
		oldRoot.children[i] = nil
	}
	oldRoot.children = oldRoot.children[:0]
	oldRoot.Invalidate()
	t.freeables = append(t.freeables, oldRoot)
}

func (t *MCTS[S, A]) cleanChildren(root *Node[S, A]) {
	for _, kid := range root.children {
		kid.Invalidate()
		t.freeables = append(t.freeables, kid)
		t.cleanChildren(kid) // recursively clean children
	}
}
