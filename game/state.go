package game

import (
	"fmt"
)

type Colour int32

const (
	None Colour = iota
	Black
	White
)

func (cl Colour) Format(s fmt.State, c rune) {
	switch c {
	case 'v': // used in debug
		switch cl {
		case None:
			fmt.Fprint(s, "None")
		case Black:
			fmt.Fprint(s, "Black")
		case White:
			fmt.Fprint(s, "White")
		}
	case 's': // used in board games
		fmt.Fprint(s, cl.glyph())
	}
}

func (cl Colour) glyph() string {
	switch cl {
	case Black:
		return "X"
	case White:
		return "O"
	}
	return "·"
}

// Player represents a player. It's also a colour: the first player plays Black.
type Player Colour

const (
	First  = Player(Black)
	Second = Player(White)
)

func (p Player) Format(s fmt.State, c rune) {
	switch c {
	case 'v': // used in debug
		switch p {
		case First:
			fmt.Fprint(s, "First")
		case Second:
			fmt.Fprint(s, "Second")
		default:
			fmt.Fprint(s, "None")
		}
	case 's': // used in board games
		fmt.Fprint(s, Colour(p).glyph())
	}
}

// Opponent returns the other player. It panics on None.
func Opponent(p Player) Player {
	switch p {
	case First:
		return Second
	case Second:
		return First
	}
	panic("Unreachable")
}

// Winner converts a terminal evaluation on the first player's scale into the winning player.
// A draw returns Player(None).
func Winner(value float32) Player {
	switch {
	case value > 0:
		return First
	case value < 0:
		return Second
	}
	return Player(None)
}

// Outcome is the inverse of Winner: +1 if the first player won, -1 if the second did, 0 otherwise.
func Outcome(winner Player) float32 {
	switch winner {
	case First:
		return 1
	case Second:
		return -1
	}
	return 0
}

// Coord represents a (x, y) coordinate. (0, 0) is the top left.
type Coord struct {
	X, Y int16
}

func (c Coord) Add(other Coord) Coord { return Coord{c.X + other.X, c.Y + other.Y} }

func (c Coord) Eq(other Coord) bool { return c.X == other.X && c.Y == other.Y }

func (c Coord) Format(s fmt.State, r rune) { fmt.Fprintf(s, "(%d, %d)", c.X, c.Y) }

// Single represents a coordinate as a single number, utilized in a rowmajor fashion.
//   - 0 represents the top left
//   - 2 represents the top right of a 3x3 board
//   - 3 represents (0, 1) of a 3x3 board
//
// Column games (connect four) use the column index directly.
type Single int32

// CoordConverter converts between the two representations of a cell.
type CoordConverter interface {
	Ltoi(Coord) Single
	Itol(Single) Coord
}

// MetaState is what an output encoder gets to see of a game being played.
type MetaState interface {
	Name() string // name of the game
	GameNumber() int
	MoveNumber() int
	State() fmt.Stringer
	Ended() (ended bool, winner Player)
}
