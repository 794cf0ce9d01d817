package mcts

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/deepmcts/deepmcts/game"
)

type Status uint32

const (
	Invalid Status = iota
	Active
)

func (a Status) String() string {
	switch a {
	case Invalid:
		return "Invalid"
	case Active:
		return "Active"
	}
	return "UNKNOWN STATUS"
}

// Node is a node of the search tree. A node owns its children and is owned by exactly one parent.
type Node[S game.State, A comparable] struct {
	state    S
	action   A             // the action that led from the parent to this node
	children []*Node[S, A] // in generation order

	visits   uint32  // visits to this node - N(s, a) in the literature
	valueSum float32 // accumulated evaluations, always on the first player's scale
	prior    float32 // P(s, a), the prior probability given by the inferencer
	status   Status
}

func (n *Node[S, A]) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "{Action: %v, Prior: %v, Q: %v, Visits: %v, Children: %d, Status: %v}", n.action, n.prior, n.MeanValue(), n.visits, len(n.children), n.status)
}

// State returns the state of the node.
func (n *Node[S, A]) State() S { return n.state }

// Action returns the action that leads to this node from its parent. The root returns whatever action
// it was created with, which is the zero value for the initial state.
func (n *Node[S, A]) Action() A { return n.action }

// Children returns the children in the order the actions were generated. The slice must not be modified.
func (n *Node[S, A]) Children() []*Node[S, A] { return n.children }

// Child returns the child reached by a, or nil.
func (n *Node[S, A]) Child(a A) *Node[S, A] {
	for _, kid := range n.children {
		if kid.action == a {
			return kid
		}
	}
	return nil
}

func (n *Node[S, A]) Visits() uint32 { return n.visits }

// ValueSum returns E, the sum of the evaluations backpropagated through this node.
func (n *Node[S, A]) ValueSum() float32 { return n.valueSum }

// Prior returns P.
func (n *Node[S, A]) Prior() float32 { return n.prior }

// MeanValue returns Q = E/N, or 0 if the node has never been visited.
func (n *Node[S, A]) MeanValue() float32 {
	if n.visits == 0 {
		return 0
	}
	return n.valueSum / float32(n.visits)
}

// UpperConfidence returns the exploration term U = puct * P * sqrt(parent visits) / (1 + visits).
func (n *Node[S, A]) UpperConfidence(parent *Node[S, A], puct float32) float32 {
	return puct * n.prior * math32.Sqrt(float32(parent.visits)) / (1 + float32(n.visits))
}

// Activate activates the node
func (n *Node[S, A]) Activate() { n.status = Active }

// Invalidate invalidates the node
func (n *Node[S, A]) Invalidate() { n.status = Invalid }

// IsValid returns true if it's valid
func (n *Node[S, A]) IsValid() bool { return n.status != Invalid }

// IsExpanded returns true if the node has children.
func (n *Node[S, A]) IsExpanded() bool { return len(n.children) > 0 }

// update adds one visit with the given evaluation.
func (n *Node[S, A]) update(v float32) {
	n.visits++
	n.valueSum += v
}

// countChildren counts the number of nodes under n, recursively
func (n *Node[S, A]) countChildren() (retVal int) {
	for _, kid := range n.children {
		retVal += kid.countChildren()
		retVal++ // plus the child itself
	}
	return
}

func (n *Node[S, A]) reset() {
	var s S
	var a A
	n.state = s
	n.action = a
	for i := range n.children {
		n.children[i] = nil
	}
	n.children = n.children[:0]
	n.visits = 0
	n.valueSum = 0
	n.prior = 0
	n.status = Invalid
}
