package mcts

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/deepmcts/deepmcts/game"
	"github.com/pkg/errors"
)

/*
Here lies the majority of the MCTS search code, while node.go and tree.go handles the data structure stuff.

A simulation is the usual pipeline:
	SELECT down to a leaf, EXPAND and EVALUATE the leaf, BACKPROPAGATE the evaluation along the path.

Evaluations are never flipped: they are kept on the first player's scale everywhere, and it's the selection
that changes direction depending on who is to move.
*/

// violation panics with a contract violation. These are bugs in the game, the inferencer or the engine, and
// are never recovered from.
func violation(format string, args ...interface{}) {
	panic(fmt.Sprintf("%+v", errors.Errorf(format, args...)))
}

// Search runs Config.Simulations simulations from the current root.
func (t *MCTS[S, A]) Search() {
	t.freeAll()
	root := t.root
	before := root.visits
	for i := 0; i < t.Simulations; i++ {
		t.Simulate()
		if i == 0 && t.DirichletAlpha > 0 && root.IsExpanded() {
			t.addNoise(root)
		}
	}

	if root.IsExpanded() {
		var sum uint32
		for _, kid := range root.children {
			sum += kid.visits
		}
		if root.visits != sum+1 {
			violation("root has %d visits but its children have %d", root.visits, sum)
		}
	}
	t.log.Debug().
		Int("move", t.moves).
		Int("simulations", t.Simulations).
		Uint32("rootVisits", root.visits).
		Uint32("previousVisits", before).
		Float32("q", root.MeanValue()).
		Int("nodes", t.live).
		Msg("search done")
}

// Simulate runs a single simulation from the root and returns the evaluation that was backpropagated.
func (t *MCTS[S, A]) Simulate() float32 {
	path := t.treeSearch()
	leaf := path[len(path)-1]
	v := t.evaluateLeaf(leaf)
	t.backpropagate(path, v)
	return v
}

// treeSearch descends from the root to a leaf, returning the path root first.
func (t *MCTS[S, A]) treeSearch() []*Node[S, A] {
	path := []*Node[S, A]{t.root}
	n := t.root
	for n.IsExpanded() {
		n = t.selectChild(n)
		path = append(path, n)
	}
	return path
}

// selectChild selects the child of n that the player to move prefers.
func (t *MCTS[S, A]) selectChild(n *Node[S, A]) *Node[S, A] {
	// the upper bound formula is as such
	// U(s, a) = Q(s, a) + tree.PUCT * P(s, a) * ((sqrt(parent visits))/ (1+visits to this node))
	//
	// where
	// U(s, a) = upper confidence bound given state and action
	// Q(s, a) = mean evaluation of taking the action given the state, on the first player's scale
	// P(s, a) = initial probability/estimate of taking an action from the state given according to the policy
	//
	// The first player picks the child with the largest Q + U. The second player picks the child with the
	// smallest Q - U. Ties go to the earliest child.
	maximize := n.state.ToMove() == game.First

	var best *Node[S, A]
	bestValue := math32.Inf(1)
	if maximize {
		bestValue = math32.Inf(-1)
	}
	for _, kid := range n.children {
		qsa := kid.MeanValue()
		usa := kid.UpperConfidence(n, t.PUCT)
		if maximize {
			if v := qsa + usa; v > bestValue {
				bestValue = v
				best = kid
			}
		} else {
			if v := qsa - usa; v < bestValue {
				bestValue = v
				best = kid
			}
		}
	}
	if best == nil {
		violation("cannot select a child of %v", n)
	}
	return best
}

// evaluateLeaf evaluates a leaf of the tree. Terminal leaves are scored by the game, others are expanded and
// played out.
func (t *MCTS[S, A]) evaluateLeaf(leaf *Node[S, A]) float32 {
	if t.rules.IsFinal(leaf.state) {
		return t.rules.EvaluateFinal(leaf.state)
	}
	return t.expand(leaf) + t.playout(leaf)
}

// expand creates all the children of a node that has never been visited, and returns the value of the node
// as given by the inferencer.
func (t *MCTS[S, A]) expand(n *Node[S, A]) float32 {
	if n.visits != 0 || n.valueSum != 0 || n.IsExpanded() {
		violation("cannot expand a node that has already been visited: %v", n)
	}
	successors := t.rules.ChildStates(n.state)
	priors, value := t.nn.Infer(n.state)

	if cap(n.children) < len(successors) {
		n.children = make([]*Node[S, A], 0, len(successors))
	}
	for _, succ := range successors {
		psa, ok := priors[succ.Action]
		if !ok {
			violation("no prior for legal action %v in state\n%v", succ.Action, n.state)
		}
		if math32.IsNaN(psa) {
			violation("prior of action %v is NaN", succ.Action)
		}
		n.children = append(n.children, t.New(succ.State, succ.Action, psa))
	}
	return value
}

// playout is the rollout: it plays the rollout policy from the state of n until the game ends, and returns
// the outcome. Without a rollout policy the contribution is 0.
func (t *MCTS[S, A]) playout(n *Node[S, A]) float32 {
	if n.visits != 0 || n.valueSum != 0 {
		violation("cannot roll out from a node that has already been visited: %v", n)
	}
	if t.rollout == nil {
		return 0
	}
	state := n.state
	for !t.rules.IsFinal(state) {
		a := t.rollout(state)
		next, err := t.rules.ChildState(state, a)
		if err != nil {
			panic(fmt.Sprintf("%+v", errors.WithMessage(err, "rollout policy")))
		}
		state = next
	}
	return t.rules.EvaluateFinal(state)
}

// backpropagate adds the evaluation to every node of the path.
func (t *MCTS[S, A]) backpropagate(path []*Node[S, A], v float32) {
	for _, n := range path {
		n.update(v)
		qsa := n.MeanValue()
		if math32.IsNaN(qsa) || math32.Abs(qsa) > 1 {
			violation("mean value %v out of [-1, 1] after backpropagating %v: %v", qsa, v, n)
		}
	}
}
