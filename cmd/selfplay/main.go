// Command selfplay plays board games with Monte Carlo tree search, either against itself or in an arena of two
// searches with different budgets.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/deepmcts/deepmcts"
	"github.com/deepmcts/deepmcts/encoding/gif"
	"github.com/deepmcts/deepmcts/game"
	"github.com/deepmcts/deepmcts/game/c4"
	"github.com/deepmcts/deepmcts/game/hex"
	"github.com/deepmcts/deepmcts/game/mnk"
	"github.com/deepmcts/deepmcts/mcts"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	gameName    = flag.String("game", "ttt", "game to play: ttt, gomoku, c4 or hex")
	hexSize     = flag.Int("size", 5, "board size of hex")
	mode        = flag.String("mode", "selfplay", "selfplay or arena")
	games       = flag.Int("games", 1, "number of games to play")
	sims        = flag.Int("sims", 800, "simulations per move")
	weakSims    = flag.Int("weak", 50, "simulations per move of the second agent in arena mode")
	seed        = flag.Uint64("seed", 1337, "random seed")
	randomCount = flag.Int("random", 0, "number of opening moves sampled from the visit distribution")
	alpha       = flag.Float64("alpha", 0, "dirichlet alpha of the root noise, 0 disables noise")
	memo        = flag.Int("memo", 0, "memoize the rules with tables of this size, 0 disables memoization")
	dotFile     = flag.String("dot", "", "write the tree searched for the first move to this file as graphviz")
	gifFile     = flag.String("gif", "", "render the games to this gif")
	statsFile   = flag.String("stats", "", "write the arena statistics as CSV to this file")
	verbose     = flag.Bool("v", false, "debug logging")
)

type cli struct {
	log zerolog.Logger
	out *termenv.Output // also where the games are printed
}

// position is a state that can be printed.
type position interface {
	game.State
	fmt.Stringer
}

func main() {
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	c := cli{
		log: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).
			With().Timestamp().Logger(),
		out: termenv.NewOutput(os.Stdout),
	}

	var err error
	switch *gameName {
	case "ttt":
		err = run[mnk.State, game.Single](c, mnk.TicTacToe(), "Tic Tac Toe")
	case "gomoku":
		err = run[mnk.State, game.Single](c, mnk.New(9, 9, 5), "Gomoku")
	case "c4":
		err = run[c4.State, game.Single](c, c4.New(6, 7, 4), "Connect Four")
	case "hex":
		err = run[hex.State, game.Single](c, hex.New(*hexSize), fmt.Sprintf("Hex %dx%d", *hexSize, *hexSize))
	default:
		err = errors.Errorf("unknown game %q", *gameName)
	}
	if err != nil {
		c.log.Fatal().Err(err).Msg("selfplay failed")
	}
}

func run[S position, A comparable](c cli, rules game.Rules[S, A], name string) error {
	if *memo > 0 {
		m := game.Memoize(rules, *memo)
		defer func() {
			hits, misses := m.Stats()
			c.log.Info().Int("hits", hits).Int("misses", misses).Msg("memoized rules")
		}()
		rules = m
	}

	var enc *gif.Encoder
	var opts []deepmcts.Option
	opts = append(opts, deepmcts.WithName(name), deepmcts.WithLogger(c.log))
	if *gifFile != "" {
		f, err := os.Create(*gifFile)
		if err != nil {
			return errors.WithStack(err)
		}
		defer f.Close()
		enc = gif.NewEncoder(f, 800, 800)
		opts = append(opts, deepmcts.WithOutputEncoder(enc))
	}

	var err error
	switch *mode {
	case "selfplay":
		err = selfplay(c, rules, opts)
	case "arena":
		err = arena(c, rules, opts)
	default:
		err = errors.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		return err
	}
	if enc != nil {
		return enc.Flush()
	}
	return nil
}

func newMCTS[S game.State, A comparable](c cli, rules game.Rules[S, A], simulations int, seed uint64) *mcts.MCTS[S, A] {
	conf := mcts.DefaultConfig()
	conf.Simulations = simulations
	conf.Seed = seed
	conf.RandomCount = *randomCount
	conf.DirichletAlpha = float32(*alpha)
	return mcts.New(rules, conf, nil, mcts.RandomRollout(rules, seed), mcts.WithLogger(c.log))
}

func selfplay[S position, A comparable](c cli, rules game.Rules[S, A], opts []deepmcts.Option) error {
	t := newMCTS(c, rules, *sims, *seed)
	for i := 0; i < *games; i++ {
		t.Reset()
		sp := deepmcts.NewSelfPlay(t, append(opts, deepmcts.WithGameNumber(i))...)
		start := time.Now()
		for tr, ok := sp.Next(); ok; tr, ok = sp.Next() {
			if tr.Move == 0 && i == 0 && *dotFile != "" {
				// the root has been committed already, so only the subtree of the chosen move is left
				if err := os.WriteFile(*dotFile, []byte(t.ToDot()), 0644); err != nil {
					return errors.WithStack(err)
				}
			}
			fmt.Fprintf(c.out, "%v plays %v\n%s\n\n", tr.State.ToMove(), tr.Action, tr.Next.String())
		}
		_, winner := sp.Ended()
		c.printWinner(winner)
		c.log.Info().Int("gameNumber", i).Dur("took", time.Since(start)).Int("nodes", t.Nodes()).Msg("self play done")
	}
	return nil
}

func arena[S game.State, A comparable](c cli, rules game.Rules[S, A], opts []deepmcts.Option) error {
	strong := deepmcts.NewAgent(fmt.Sprintf("mcts-%d", *sims), newMCTS(c, rules, *sims, *seed))
	weak := deepmcts.NewAgent(fmt.Sprintf("mcts-%d", *weakSims), newMCTS(c, rules, *weakSims, *seed+1))
	if strong.Name == weak.Name {
		weak.Name += "-b"
	}
	a := deepmcts.NewArena(strong, weak, opts...)
	if err := a.Tournament(*games); err != nil {
		return err
	}
	for _, agent := range []*deepmcts.Agent[S, A]{strong, weak} {
		fmt.Fprintf(c.out, "%-12s %s wins, %v losses, %v draws\n",
			agent.Name, c.out.String(fmt.Sprintf("%v", agent.Wins)).Bold(), agent.Loss, agent.Draw)
	}
	if *statsFile == "" {
		return nil
	}
	f, err := os.Create(*statsFile)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	return a.Statistics.WriteCSV(f)
}

func (c cli) printWinner(winner game.Player) {
	if winner == game.Player(game.None) {
		fmt.Fprintln(c.out, c.out.String("Draw").Foreground(c.out.Color("3")).Bold())
		return
	}
	colour := "1"
	if winner == game.Second {
		colour = "4"
	}
	fmt.Fprintln(c.out, c.out.String(fmt.Sprintf("Winner: %v", winner)).Foreground(c.out.Color(colour)).Bold())
}
