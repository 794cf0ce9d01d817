// Package gif renders games as animated gifs, one frame per position.
package gif

import (
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"math"
	"strings"

	"github.com/deepmcts/deepmcts/game"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

var regular *truetype.Font

const (
	dpi             = 144.0
	fontsize        = 12.0
	lineheight      = 1.2
	dummyLongString = `Game 10000, Move 1000`

	// frames of a finished game stay on screen for 3s
	endDelay = 300
)

func init() {
	var err error
	if regular, err = truetype.Parse(gomono.TTF); err != nil {
		panic(err)
	}
}

var globPalette = color.Palette{
	color.Gray{0},
	color.Gray{253},
}

// Encoder draws every position it is given as a frame of a gif. The gif is written when Flush is called.
type Encoder struct {
	H, W int
	font.Drawer

	out *gif.GIF
	w   io.Writer

	maxH, maxW  int // maxHeight and maxWidth
	padH, padW  int // padding so everything don't start at the topleft
	initialized bool
}

// NewEncoder creates an encoder writing to w. The frames are at most h pixels high and w pixels wide.
func NewEncoder(out io.Writer, h, w int) *Encoder {
	return &Encoder{
		H:    -1,
		W:    -1,
		maxH: h,
		maxW: w,
		padH: 10,
		padW: 10,

		Drawer: font.Drawer{Src: image.Black},
		out:    &gif.GIF{LoopCount: -1},
		w:      out,
	}
}

// Frames returns the number of frames encoded so far.
func (enc *Encoder) Frames() int { return len(enc.out.Image) }

func lineHeight() int { return int(math.Ceil(fontsize * lineheight * dpi / 72)) }

// size the frames after the first position seen. Every later position of the same game has as many lines.
func (enc *Encoder) init(lines []string) {
	enc.Face = truetype.NewFace(regular, &truetype.Options{
		Size:    fontsize,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	maxW := font.MeasureString(enc.Face, dummyLongString).Ceil()
	for _, l := range lines {
		if lw := font.MeasureString(enc.Face, l).Ceil(); lw > maxW {
			maxW = lw
		}
	}
	w := maxW + 2*enc.padW
	h := (len(lines)+3)*lineHeight() + 2*enc.padH // + 3 is for the 3 extra lines: game name, numbers, and winner

	if w >= enc.maxW {
		w = enc.maxW
		enc.padW = 0
	}
	if h >= enc.maxH {
		h = enc.maxH
		enc.padH = 0
	}
	enc.H = h
	enc.W = w
	enc.initialized = true
}

// Encode draws the current position of the game as a new frame.
func (enc *Encoder) Encode(ms game.MetaState) error {
	lines := strings.Split(ms.State().String(), "\n")
	if !enc.initialized {
		enc.init(lines)
	}

	im := image.NewPaletted(image.Rect(0, 0, enc.W, enc.H), globPalette)
	draw.Draw(im, im.Bounds(), image.White, image.Point{}, draw.Src)
	enc.Dst = im

	dy := lineHeight()
	y := enc.padH + dy
	writeln := func(s string) {
		enc.Dot = fixed.P(enc.padW, y)
		enc.DrawString(s)
		y += dy
	}
	for _, l := range lines {
		writeln(l)
	}
	writeln(ms.Name())
	writeln(fmtNumbers(ms.GameNumber(), ms.MoveNumber()))

	var delay int
	if ended, winner := ms.Ended(); ended {
		delay = endDelay
		writeln("Winner: " + winnerName(winner))
	}
	enc.out.Image = append(enc.out.Image, im)
	enc.out.Delay = append(enc.out.Delay, delay)
	return nil
}

// Flush writes the gif into the writer.
func (enc *Encoder) Flush() error {
	if enc.w == nil {
		return errors.New("gif: no writer to flush to")
	}
	if len(enc.out.Image) == 0 {
		return errors.New("gif: nothing to flush")
	}
	return errors.WithStack(gif.EncodeAll(enc.w, enc.out))
}
