package game

// DefaultMemoSize is the number of states a Memo remembers per table before it starts over.
const DefaultMemoSize = 1 << 20

type stateAction[S State, A comparable] struct {
	s S
	a A
}

// Memo wraps a Rules and remembers the answers per state. Because states are comparable values,
// transpositions (the same position reached along different paths) share their entries.
//
// Slices returned by a Memo are shared between callers and must not be modified.
// A Memo is not safe for concurrent use.
type Memo[S State, A comparable] struct {
	Rules[S, A]
	size int

	legal    map[S][]A
	final    map[S]bool
	value    map[S]float32
	children map[S][]Successor[S, A]
	child    map[stateAction[S, A]]S

	hits, misses int
}

// Memoize wraps r. Each table is cleared once it holds size entries. A size <= 0 uses DefaultMemoSize.
func Memoize[S State, A comparable](r Rules[S, A], size int) *Memo[S, A] {
	if size <= 0 {
		size = DefaultMemoSize
	}
	return &Memo[S, A]{
		Rules:    r,
		size:     size,
		legal:    make(map[S][]A),
		final:    make(map[S]bool),
		value:    make(map[S]float32),
		children: make(map[S][]Successor[S, A]),
		child:    make(map[stateAction[S, A]]S),
	}
}

func (m *Memo[S, A]) LegalActions(s S) []A {
	if retVal, ok := m.legal[s]; ok {
		m.hits++
		return retVal
	}
	m.misses++
	retVal := m.Rules.LegalActions(s)
	if len(m.legal) >= m.size {
		m.legal = make(map[S][]A)
	}
	m.legal[s] = retVal
	return retVal
}

func (m *Memo[S, A]) ChildState(s S, a A) (S, error) {
	key := stateAction[S, A]{s, a}
	if retVal, ok := m.child[key]; ok {
		m.hits++
		return retVal, nil
	}
	m.misses++
	retVal, err := m.Rules.ChildState(s, a)
	if err != nil {
		return retVal, err // errors are not cached
	}
	if len(m.child) >= m.size {
		m.child = make(map[stateAction[S, A]]S)
	}
	m.child[key] = retVal
	return retVal, nil
}

func (m *Memo[S, A]) ChildStates(s S) []Successor[S, A] {
	if retVal, ok := m.children[s]; ok {
		m.hits++
		return retVal
	}
	m.misses++
	retVal := m.Rules.ChildStates(s)
	if len(m.children) >= m.size {
		m.children = make(map[S][]Successor[S, A])
	}
	m.children[s] = retVal
	return retVal
}

func (m *Memo[S, A]) IsFinal(s S) bool {
	if retVal, ok := m.final[s]; ok {
		m.hits++
		return retVal
	}
	m.misses++
	retVal := m.Rules.IsFinal(s)
	if len(m.final) >= m.size {
		m.final = make(map[S]bool)
	}
	m.final[s] = retVal
	return retVal
}

func (m *Memo[S, A]) EvaluateFinal(s S) float32 {
	if retVal, ok := m.value[s]; ok {
		m.hits++
		return retVal
	}
	m.misses++
	retVal := m.Rules.EvaluateFinal(s) // panics propagate, nothing is stored
	if len(m.value) >= m.size {
		m.value = make(map[S]float32)
	}
	m.value[s] = retVal
	return retVal
}

// Stats returns the number of cache hits and misses so far.
func (m *Memo[S, A]) Stats() (hits, misses int) { return m.hits, m.misses }
