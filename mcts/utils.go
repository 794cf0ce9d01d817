package mcts

import (
	"math"

	"github.com/chewxy/math32"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"
	"gorgonia.org/vecf32"
)

// BestChild returns the most visited child of the root. Ties go to the earliest child.
// It returns nil if the root has not been expanded.
func (t *MCTS[S, A]) BestChild() *Node[S, A] {
	var best *Node[S, A]
	for _, kid := range t.root.children {
		if best == nil || kid.visits > best.visits {
			best = kid
		}
	}
	return best
}

// SampleChild draws a child of the root with probability proportional to visits^(1/temperature).
// It falls back to BestChild when no child has been visited.
func (t *MCTS[S, A]) SampleChild(temperature float32) *Node[S, A] {
	children := t.root.children
	best := t.BestChild()
	if best == nil || best.visits == 0 {
		return best
	}

	// visits are normalized by the largest count so that small temperatures don't overflow
	norm := float32(best.visits)
	weights := make([]float32, len(children))
	for i, kid := range children {
		weights[i] = math32.Pow(float32(kid.visits)/norm, 1/temperature)
	}
	accum := vecf32.Sum(weights)
	rnd := t.rand.Float32() * accum // uniform distro: rnd() * (max-min) + min
	for i, w := range weights {
		if rnd < w {
			return children[i]
		}
		rnd -= w
	}
	return best
}

// Choose picks the action to commit after a search: sampled from the visit counts for the first RandomCount
// moves, the most visited child afterwards.
func (t *MCTS[S, A]) Choose() *Node[S, A] {
	if t.moves < t.RandomCount {
		return t.SampleChild(t.RandomTemperature)
	}
	return t.BestChild()
}

// Policy returns the visit distribution over the children of the root: N(child) / (N(root) - 1), in child
// order. The root's own first visit is the one that expanded it, which is why it's not counted.
// When that leaves nothing to divide by, every probability is 0.
func (t *MCTS[S, A]) Policy() []ActionProb[A] {
	root := t.root
	retVal := make([]ActionProb[A], len(root.children))
	var denom float32
	if root.visits > 1 {
		denom = float32(root.visits - 1)
	}
	for i, kid := range root.children {
		retVal[i].Action = kid.action
		if denom > 0 {
			retVal[i].Prob = float32(kid.visits) / denom
		}
	}
	return retVal
}

// PolicyMap is Policy keyed by action.
func (t *MCTS[S, A]) PolicyMap() map[A]float32 {
	policy := t.Policy()
	retVal := make(map[A]float32, len(policy))
	for _, ap := range policy {
		retVal[ap.Action] = ap.Prob
	}
	return retVal
}

// addNoise mixes Dirichlet noise into the priors of the children of n.
func (t *MCTS[S, A]) addNoise(n *Node[S, A]) {
	if len(n.children) == 0 {
		return
	}
	noise := dirichlet(t.rand, t.DirichletAlpha, len(n.children))
	eps := t.NoiseFraction
	for i, kid := range n.children {
		kid.prior = (1-eps)*kid.prior + eps*noise[i]
	}
}

// dirichlet draws a sample of a symmetric Dirichlet distribution of k categories.
func dirichlet(r *rand.Rand, alpha float32, k int) []float32 {
	alphas := make([]float64, k)
	for i := range alphas {
		alphas[i] = float64(alpha)
	}
	sample := distmv.NewDirichlet(alphas, r).Rand(nil)

	retVal := make([]float32, k)
	for i, v := range sample {
		if math.IsNaN(v) {
			// every gamma draw underflowed. Fall back to uniform noise
			return uniform(k)
		}
		retVal[i] = float32(v)
	}
	return retVal
}

func uniform(k int) []float32 {
	retVal := make([]float32, k)
	for i := range retVal {
		retVal[i] = 1 / float32(k)
	}
	return retVal
}
