// Package hex implements the game of Hex on a size×size rhombus.
//
// The first player (Black) connects the top edge to the bottom edge. The second player (White)
// connects the left edge to the right edge. Hex cannot end in a draw, so a game is final exactly when
// one of the players has a connection.
package hex

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/deepmcts/deepmcts/game"
	"github.com/pkg/errors"
)

var (
	_ game.Rules[State, game.Single] = &Hex{}
	_ game.CoordConverter            = &Hex{}
)

// shifts lists the six neighbours of a cell
var shifts = [...]game.Coord{{X: 0, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: 0}}

// Hex holds the rules of a Hex game.
type Hex struct {
	size int
}

// New creates a new game of Hex. Sizes between 1 and 26 are supported.
func New(size int) *Hex {
	if size <= 0 || size > 26 {
		panic(fmt.Sprintf("unsupported hex size %d", size))
	}
	return &Hex{size: size}
}

// State is a Hex position.
type State struct {
	grid string // rowmajor, one game.Colour per byte
	size uint8
	next game.Player
}

func (s State) ToMove() game.Player { return s.next }

// At returns the colour of the cell at (x, y).
func (s State) At(x, y int) game.Colour { return game.Colour(s.grid[y*int(s.size)+x]) }

func (s State) Format(f fmt.State, c rune) {
	size := int(s.size)
	letters := columnLetters(size)
	fmt.Fprintf(f, "  %s\n", letters)
	for y := 0; y < size; y++ {
		fmt.Fprintf(f, "%s%2d ", strings.Repeat(" ", y), y+1)
		for x := 0; x < size; x++ {
			fmt.Fprintf(f, "%s ", s.At(x, y))
		}
		fmt.Fprintf(f, "%d\n", y+1)
	}
	fmt.Fprintf(f, "%s%s\n", strings.Repeat(" ", size+3), letters)
}

func (s State) String() string { return fmt.Sprintf("%s", s) }

func (g *Hex) Size() int { return g.size }

func (g *Hex) InitialState() State {
	return State{
		grid: string(make([]byte, g.size*g.size)),
		size: uint8(g.size),
		next: game.First,
	}
}

// Position creates a state out of a grid in rowmajor order.
func (g *Hex) Position(grid []game.Colour, next game.Player) (State, error) {
	if len(grid) != g.size*g.size {
		return State{}, errors.Errorf("expected a grid of %d cells. Got %d", g.size*g.size, len(grid))
	}
	bs := make([]byte, len(grid))
	for i, c := range grid {
		bs[i] = byte(c)
	}
	return State{grid: string(bs), size: uint8(g.size), next: next}, nil
}

// LegalActions returns the empty cells, row by row.
func (g *Hex) LegalActions(s State) []game.Single {
	if g.IsFinal(s) {
		return nil
	}
	retVal := make([]game.Single, 0, len(s.grid))
	for i := 0; i < len(s.grid); i++ {
		if game.Colour(s.grid[i]) == game.None {
			retVal = append(retVal, game.Single(i))
		}
	}
	return retVal
}

func (g *Hex) ChildState(s State, a game.Single) (State, error) {
	if int(a) < 0 || int(a) >= len(s.grid) {
		return s, game.IllegalAction(a, "outside of the board")
	}
	if game.Colour(s.grid[a]) != game.None {
		return s, game.IllegalAction(g.Itol(a), "cell is occupied")
	}
	if g.IsFinal(s) {
		return s, game.IllegalAction(g.Itol(a), "game has already been won")
	}
	bs := []byte(s.grid)
	bs[a] = byte(s.next)
	return State{grid: string(bs), size: s.size, next: game.Opponent(s.next)}, nil
}

func (g *Hex) ChildStates(s State) []game.Successor[State, game.Single] {
	return game.Successors[State, game.Single](g, s)
}

func (g *Hex) IsFinal(s State) bool { return g.winner(s) != game.None }

func (g *Hex) EvaluateFinal(s State) float32 {
	w := g.winner(s)
	if w == game.None {
		panic(fmt.Sprintf("%+v", game.NotFinal(s)))
	}
	return game.Outcome(game.Player(w))
}

func (g *Hex) Ltoi(c game.Coord) game.Single { return game.Single(int(c.Y)*g.size + int(c.X)) }

func (g *Hex) Itol(a game.Single) game.Coord {
	return game.Coord{X: int16(int(a) % g.size), Y: int16(int(a) / g.size)}
}

// winner returns the colour that has connected its edges.
func (g *Hex) winner(s State) game.Colour {
	visited := make([]bool, len(s.grid))

	var starts []game.Coord
	for y := 0; y < g.size; y++ {
		if s.At(0, y) == game.White {
			starts = append(starts, game.Coord{X: 0, Y: int16(y)})
		}
	}
	if g.connected(s, starts, game.White, visited) {
		return game.White
	}

	starts = starts[:0]
	for x := 0; x < g.size; x++ {
		if s.At(x, 0) == game.Black {
			starts = append(starts, game.Coord{X: int16(x), Y: 0})
		}
	}
	if g.connected(s, starts, game.Black, visited) {
		return game.Black
	}
	return game.None
}

// connected does a depth first search from starts over stones of colour c. Black wants to reach the last row,
// White wants to reach the last column.
func (g *Hex) connected(s State, starts []game.Coord, c game.Colour, visited []bool) bool {
	stack := append([]game.Coord(nil), starts...)
	last := int16(g.size - 1)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		idx := g.Ltoi(cur)
		if visited[idx] {
			continue
		}
		visited[idx] = true
		if (c == game.White && cur.X == last) || (c == game.Black && cur.Y == last) {
			return true
		}
		for _, shift := range shifts {
			next := cur.Add(shift)
			if next.X < 0 || next.Y < 0 || next.X > last || next.Y > last {
				continue
			}
			if s.At(int(next.X), int(next.Y)) == c && !visited[g.Ltoi(next)] {
				stack = append(stack, next)
			}
		}
	}
	return false
}

// ProbabilityGrid lays out a distribution over cells in the shape of the board.
func (g *Hex) ProbabilityGrid(dist map[game.Single]float32) string {
	grid := make([]float32, g.size*g.size)
	for a, p := range dist {
		if int(a) >= 0 && int(a) < len(grid) {
			grid[a] = p
		}
	}

	var buf bytes.Buffer
	for y := 0; y < g.size; y++ {
		fmt.Fprintf(&buf, "%s%2d ", strings.Repeat(" ", 2*y), y+1)
		for x := 0; x < g.size; x++ {
			fmt.Fprintf(&buf, "%.2f ", grid[y*g.size+x])
		}
		fmt.Fprintf(&buf, "%d\n", y+1)
	}
	return buf.String()
}

func columnLetters(size int) string {
	letters := make([]string, size)
	for i := range letters {
		letters[i] = string(rune('A' + i))
	}
	return strings.Join(letters, " ")
}
