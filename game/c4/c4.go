package c4

import (
	"fmt"

	"github.com/deepmcts/deepmcts/game"
)

// Board is an immutable connect-four board. Cells are stored rowmajor, row 0 is the top.
type Board struct {
	data       string
	rows, cols uint8
	n          uint8 // how many to be considered a win?
}

func newBoard(rows, cols, n int) Board {
	return Board{
		data: string(make([]byte, rows*cols)),
		rows: uint8(rows),
		cols: uint8(cols),
		n:    uint8(n),
	}
}

func (b Board) Format(s fmt.State, c rune) {
	switch c {
	case 's', 'v':
		for y := 0; y < int(b.rows); y++ {
			fmt.Fprint(s, "⎢ ")
			for x := 0; x < int(b.cols); x++ {
				fmt.Fprintf(s, "%s ", b.at(y, x))
			}
			fmt.Fprint(s, "⎥\n")
		}
	}
}

func (b Board) at(row, col int) game.Colour { return game.Colour(b.data[row*int(b.cols)+col]) }

// apply drops a stone of colour c into col. The returned board is a new value.
func (b Board) apply(col game.Single, c game.Colour) (Board, error) {
	row, err := b.check(col)
	if err != nil {
		return b, err
	}
	bs := []byte(b.data)
	bs[row*int(b.cols)+int(col)] = byte(c)
	b.data = string(bs)
	return b, nil
}

// check returns the row a stone dropped into col lands on.
func (b Board) check(col game.Single) (row int, err error) {
	if col < 0 || int(col) >= int(b.cols) {
		return -1, game.IllegalAction(col, "no such column")
	}
	for row = int(b.rows) - 1; row >= 0; row-- {
		if b.at(row, int(col)) == game.None {
			return row, nil
		}
	}
	return -1, game.IllegalAction(col, "selected column is full")
}

func (b Board) isFull() bool {
	for x := 0; x < int(b.cols); x++ {
		if b.at(0, x) == game.None {
			return false
		}
	}
	return true
}

func (b Board) checkWin() game.Colour {
	rows, cols := int(b.rows), int(b.cols)
	if winner := b.checkVertical(rows, cols); winner != game.None {
		return winner
	}
	if winner := b.checkHorizontal(rows, cols); winner != game.None {
		return winner
	}
	if winner := b.checkTLBR(rows, cols); winner != game.None {
		return winner
	}
	return b.checkTRBL(rows, cols)
}

// checkVertical checks downwards
func (b Board) checkVertical(rows, cols int) game.Colour {
	return b.scan(rows, cols, 1, 0)
}

// checkHorizontal checks rightwards
func (b Board) checkHorizontal(rows, cols int) game.Colour {
	return b.scan(rows, cols, 0, 1)
}

// checkTLBR checks the diagonals going from the top left to the bottom right
func (b Board) checkTLBR(rows, cols int) game.Colour {
	return b.scan(rows, cols, 1, 1)
}

// checkTRBL checks the diagonals going from the top right to the bottom left
func (b Board) checkTRBL(rows, cols int) game.Colour {
	return b.scan(rows, cols, 1, -1)
}

func (b Board) scan(rows, cols, dy, dx int) game.Colour {
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			c := b.at(y, x)
			if c == game.None {
				continue
			}
			winning := true
			for i := 0; i < int(b.n); i++ {
				yy, xx := y+i*dy, x+i*dx
				if yy < 0 || yy >= rows || xx < 0 || xx >= cols || b.at(yy, xx) != c {
					winning = false
					break
				}
			}
			if winning {
				return c
			}
		}
	}
	return game.None
}
