package deepmcts

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Statistics keeps the running tally of every agent after every game it played.
type Statistics struct {
	Creation []string // agent names, in order of first appearance
	Wins     map[string][]float32
	Losses   map[string][]float32
	Draws    map[string][]float32
}

func makeStatistics() Statistics {
	return Statistics{
		Creation: make([]string, 0, 64),
		Wins:     make(map[string][]float32),
		Losses:   make(map[string][]float32),
		Draws:    make(map[string][]float32),
	}
}

// tally is what Statistics needs to know of an agent.
type tally interface {
	name() string
	record() (wins, loss, draw float32)
}

func (a *Agent[S, A]) name() string { return a.Name }

func (a *Agent[S, A]) record() (wins, loss, draw float32) {
	return a.Wins, a.Loss, a.Draw
}

func (s *Statistics) update(A tally) {
	aname := A.name()
	if _, ok := s.Wins[aname]; !ok {
		s.Creation = append(s.Creation, aname)
	}
	wins, loss, draw := A.record()
	s.Wins[aname] = append(s.Wins[aname], wins)
	s.Losses[aname] = append(s.Losses[aname], loss)
	s.Draws[aname] = append(s.Draws[aname], draw)
}

// WinRate returns the latest win rate of the named agent.
func (s *Statistics) WinRate(name string) float32 {
	wins := s.Wins[name]
	if len(wins) == 0 {
		return 0
	}
	i := len(wins) - 1
	total := wins[i] + s.Losses[name][i] + s.Draws[name][i]
	if total == 0 {
		return 0
	}
	return wins[i] / total
}

// WriteCSV writes the win rate history as CSV: a header of agent names, then one row per recorded game.
func (s *Statistics) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{"game"}, s.Creation...)
	if err := cw.Write(header); err != nil {
		return errors.WithStack(err)
	}

	var rows int
	for _, agent := range s.Creation {
		if l := len(s.Wins[agent]); l > rows {
			rows = l
		}
	}
	records := make([][]string, 0, rows)
	for j := 0; j < rows; j++ {
		record := make([]string, len(s.Creation)+1)
		record[0] = strconv.Itoa(j)
		for i, agent := range s.Creation {
			if j >= len(s.Wins[agent]) {
				continue
			}
			win := s.Wins[agent][j]
			winRate := win / (win + s.Losses[agent][j] + s.Draws[agent][j])
			record[i+1] = strconv.FormatFloat(float64(winRate), 'f', 3, 32)
		}
		records = append(records, record)
	}
	if err := cw.WriteAll(records); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
