package mcts

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/deepmcts/deepmcts/game"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoChildren builds a root with two children carrying the given statistics.
func twoChildren(t *MCTS[nimState, int], toMove game.Player, rootVisits uint32, a, b [3]float32) *Node[nimState, int] {
	root := t.root
	root.state = nimState{stones: 5, next: toMove}
	root.visits = rootVisits
	for i, stats := range [][3]float32{a, b} {
		kid := t.New(nimState{stones: 4 - i, next: game.Opponent(toMove)}, i+1, stats[2])
		kid.visits = uint32(stats[0])
		kid.valueSum = stats[1]
		root.children = append(root.children, kid)
	}
	return root
}

func TestSelectChild(t *testing.T) {
	tests := []struct {
		name     string
		toMove   game.Player
		a, b     [3]float32 // visits, value sum, prior
		expected int
	}{
		// a: 0.5 + 0.5*2/3 = 0.833, b: 0 + 0.5*2/2 = 0.5
		{"first player maximizes Q+U", game.First, [3]float32{2, 1, 0.5}, [3]float32{1, 0, 0.5}, 1},
		// a: 0.5 - 0.333 = 0.167, b: 0 - 0.5 = -0.5
		{"second player minimizes Q-U", game.Second, [3]float32{2, 1, 0.5}, [3]float32{1, 0, 0.5}, 2},
		// a: -0.5 + 0.1*2/3 = -0.433, b: 0 + 0.9*2/2 = 0.9
		{"exploration wins", game.First, [3]float32{2, -1, 0.1}, [3]float32{1, 0, 0.9}, 2},
		{"ties go to the first child", game.First, [3]float32{1, 0, 0.5}, [3]float32{1, 0, 0.5}, 1},
		{"ties go to the first child when minimizing", game.Second, [3]float32{1, 0, 0.5}, [3]float32{1, 0, 0.5}, 1},
		{"unvisited children", game.Second, [3]float32{0, 0, 0.3}, [3]float32{0, 0, 0.7}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tree := New[nimState, int](nim{5}, testConfig(1), nil, nil)
			root := twoChildren(tree, tc.toMove, 4, tc.a, tc.b)
			assert.Equal(t, tc.expected, tree.selectChild(root).Action())
		})
	}
}

func TestNode_Accessors(t *testing.T) {
	tree := New[nimState, int](nim{5}, testConfig(1), nil, nil)
	root := twoChildren(tree, game.First, 4, [3]float32{2, 1, 0.5}, [3]float32{0, 0, 0.5})
	a, b := root.children[0], root.children[1]

	assert.Equal(t, float32(0.5), a.MeanValue())
	assert.Equal(t, float32(0), b.MeanValue(), "Q of an unvisited node is 0")
	assert.InDelta(t, 0.5*2/3.0, a.UpperConfidence(root, 1), 1e-6)
	assert.InDelta(t, 0.5*2, b.UpperConfidence(root, 1), 1e-6)
	assert.InDelta(t, 2*0.5*2, b.UpperConfidence(root, 2), 1e-6)
	assert.Equal(t, a, root.Child(1))
	assert.Nil(t, root.Child(3))
	assert.True(t, root.IsExpanded())
	assert.False(t, a.IsExpanded())
	assert.Equal(t, 2, root.countChildren())
}

func TestExpand(t *testing.T) {
	rules := nim{5}
	nn := &fixed{rules: rules, value: 0.25}
	tree := New[nimState, int](rules, testConfig(1), nn, nil)

	value := tree.expand(tree.root)
	assert.Equal(t, float32(0.25), value)
	assert.Equal(t, 1, nn.calls)
	require.Len(t, tree.root.children, 2)
	for i, kid := range tree.root.children {
		assert.Equal(t, i+1, kid.Action())
		assert.Equal(t, float32(0.5), kid.Prior())
		assert.Equal(t, uint32(0), kid.Visits())
		assert.Equal(t, float32(0), kid.ValueSum())
		assert.True(t, kid.IsValid())
	}
	assert.Equal(t, nimState{3, game.Second}, tree.root.children[1].State())
	assert.Equal(t, uint32(0), tree.root.Visits(), "expansion does not visit")

	assert.Panics(t, func() { tree.expand(tree.root) }, "re-expansion is a contract violation")

	kid := tree.root.children[0]
	kid.visits = 1
	assert.Panics(t, func() { tree.expand(kid) }, "a visited node cannot be expanded")
}

func TestExpand_MissingPrior(t *testing.T) {
	rules := nim{5}
	nn := InferFunc[nimState, int](func(nimState) (map[int]float32, float32) {
		return map[int]float32{1: 1}, 0
	})
	tree := New[nimState, int](rules, testConfig(1), nn, nil)
	assert.Panics(t, func() { tree.expand(tree.root) })

	nan := InferFunc[nimState, int](func(nimState) (map[int]float32, float32) {
		return map[int]float32{1: 0.5, 2: math32.NaN()}, 0
	})
	tree = New[nimState, int](rules, testConfig(1), nan, nil)
	assert.Panics(t, func() { tree.expand(tree.root) })
}

func TestPlayout(t *testing.T) {
	rules := nim{5}
	tree := New[nimState, int](rules, testConfig(1), nil, nil)
	assert.Equal(t, float32(0), tree.playout(tree.root), "no rollout policy")

	// always take one stone: 5 moves, the first player takes the last one
	takeOne := RolloutPolicy[nimState, int](func(nimState) int { return 1 })
	tree = New[nimState, int](rules, testConfig(1), nil, takeOne)
	assert.Equal(t, float32(1), tree.playout(tree.root))

	takeTwo := RolloutPolicy[nimState, int](func(nimState) int { return 2 })
	tree = New[nimState, int](nim{4}, testConfig(1), nil, takeTwo)
	assert.Equal(t, float32(-1), tree.playout(tree.root))

	// taking two stones out of one is illegal
	tree = New[nimState, int](nim{5}, testConfig(1), nil, takeTwo)
	assert.Panics(t, func() { tree.playout(tree.root) })
}

func TestEvaluateLeaf(t *testing.T) {
	rules := nim{1}
	nn := &fixed{rules: rules, value: 0.5}
	tree := New[nimState, int](rules, testConfig(1), nn, nil)

	// non terminal: expand + rollout
	assert.Equal(t, float32(0.5), tree.evaluateLeaf(tree.root))
	require.Len(t, tree.root.children, 1)

	// terminal: the first player took the last stone
	leaf := tree.root.children[0]
	assert.Equal(t, float32(1), tree.evaluateLeaf(leaf))
	assert.Equal(t, 1, nn.calls, "terminal leaves are not evaluated by the inferencer")
	assert.False(t, leaf.IsExpanded())
}

func TestBackpropagate(t *testing.T) {
	tree := New[nimState, int](nim{5}, testConfig(1), nil, nil)
	tree.expand(tree.root)
	kid := tree.root.children[0]
	tree.expand(kid)
	grandkid := kid.children[1]
	path := []*Node[nimState, int]{tree.root, kid, grandkid}

	tree.backpropagate(path, -1)
	tree.backpropagate(path[:2], 0.5)
	assert.Equal(t, uint32(2), tree.root.Visits())
	assert.Equal(t, float32(-0.5), tree.root.ValueSum())
	assert.Equal(t, uint32(2), kid.Visits())
	assert.Equal(t, uint32(1), grandkid.Visits())
	assert.Equal(t, float32(-1), grandkid.MeanValue(), "values are not flipped by depth")

	assert.Panics(t, func() { tree.backpropagate(path, 5) }, "|Q| > 1 is never clamped")
}

func TestSimulate_ValueOutOfRange(t *testing.T) {
	// an inferencer value of 1 plus a winning rollout is 2
	rules := nim{5}
	nn := &fixed{rules: rules, value: 1}
	takeOne := RolloutPolicy[nimState, int](func(nimState) int { return 1 })
	tree := New[nimState, int](rules, testConfig(1), nn, takeOne)
	assert.Panics(t, func() { tree.Simulate() })
}

func TestSimulate_FreshLeaf(t *testing.T) {
	rules := nim{6}
	tree := New[nimState, int](rules, testConfig(1), nil, RandomRollout[nimState, int](rules, 1))
	for i := 0; i < 50; i++ {
		path := tree.treeSearch()
		leaf := path[len(path)-1]
		final := rules.IsFinal(leaf.State())
		v := tree.evaluateLeaf(leaf)
		tree.backpropagate(path, v)
		if !final {
			assert.Equal(t, uint32(1), leaf.Visits())
			assert.Equal(t, v, leaf.ValueSum())
		} else {
			assert.Equal(t, rules.EvaluateFinal(leaf.State()), leaf.MeanValue())
		}
	}
}

func TestSearch(t *testing.T) {
	rules := nim{7}
	tree := New[nimState, int](rules, testConfig(100), nil, RandomRollout[nimState, int](rules, 1337))

	tree.Search()
	root := tree.Root()
	assert.Equal(t, uint32(100), root.Visits())

	var sum uint32
	for _, kid := range root.Children() {
		sum += kid.Visits()
	}
	assert.Equal(t, root.Visits(), sum+1)

	tree.Search()
	assert.Equal(t, uint32(200), root.Visits(), "root visits grow by exactly the number of simulations")

	walk(root, func(n *Node[nimState, int]) {
		assert.LessOrEqual(t, math32.Abs(n.MeanValue()), float32(1), "%v", n)
	})
	assert.Equal(t, root.countChildren()+1, tree.Nodes())
}

func TestSearch_PerfectPlay(t *testing.T) {
	// with 7 stones the first player wins by taking one, leaving a multiple of three
	rules := nim{7}
	tree := New[nimState, int](rules, testConfig(2000), nil, RandomRollout[nimState, int](rules, 1337))
	tree.Search()
	best := tree.BestChild()
	require.NotNil(t, best)
	assert.Equal(t, 1, best.Action())
	assert.Greater(t, best.MeanValue(), float32(0))
}

func TestSearch_Deterministic(t *testing.T) {
	run := func() []ActionProb[int] {
		rules := nim{9}
		conf := testConfig(300)
		conf.DirichletAlpha = 0.3
		tree := New[nimState, int](rules, conf, nil, RandomRollout[nimState, int](rules, 42))
		tree.Search()
		require.NoError(t, tree.Commit(tree.BestChild().Action()))
		tree.Search()
		return tree.Policy()
	}
	a, b := run(), run()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("expected identical searches with the same seed (-first +second):\n%s", diff)
	}
}

func TestSearch_TerminalRoot(t *testing.T) {
	rules := nim{0}
	tree := New[nimState, int](rules, testConfig(10), nil, nil)
	tree.Search()
	assert.Equal(t, uint32(10), tree.Root().Visits())
	assert.Equal(t, float32(-1), tree.Root().MeanValue())
	assert.Nil(t, tree.BestChild())
	assert.Empty(t, tree.Policy())
}
