// Command marlin drives the engine from the command line:
//
//	marlin analyze  --fen <fen> --ms <budget>   search one position
//	marlin perft    --fen <fen> --depth <n>     count leaf nodes
//	marlin bench    --depth <n>                 fixed-position speed run
//	marlin selfplay --ms <budget>               engine vs engine game
//
// Every flag can also be set through the environment with a MARLIN_
// prefix (MARLIN_HASH=256, MARLIN_EVAL=nnue, ...).
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/marlinchess/marlin/internal/board"
	"github.com/marlinchess/marlin/internal/engine"
	"github.com/marlinchess/marlin/internal/nnue"
	"github.com/marlinchess/marlin/internal/storage"
)

var log zerolog.Logger

func main() {
	pflag.String("fen", board.StartFEN, "position to work on")
	pflag.Int("depth", 6, "search or perft depth")
	pflag.Int64("ms", 8000, "game clock budget in milliseconds")
	pflag.Int("hash", 64, "transposition table size in MB")
	pflag.String("eval", "classical", "evaluation: classical or nnue")
	pflag.String("weights", "", "NNUE weight blob path")
	pflag.String("store", "", "analysis store directory (empty disables)")
	pflag.BoolP("verbose", "v", false, "log every search iteration")
	pflag.Parse()

	viper.SetEnvPrefix("marlin")
	viper.AutomaticEnv()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level := zerolog.WarnLevel
	if viper.GetBool("verbose") {
		level = zerolog.InfoLevel
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	var err error
	switch cmd := pflag.Arg(0); cmd {
	case "analyze":
		err = runAnalyze()
	case "perft":
		err = runPerft()
	case "bench":
		err = runBench()
	case "selfplay":
		err = runSelfplay()
	default:
		err = fmt.Errorf("unknown command %q (want analyze, perft, bench or selfplay)", cmd)
	}
	if err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// newSearcher builds a searcher from the configuration, attaching the
// NNUE evaluator to pos when requested.
func newSearcher(pos *board.Position) (*engine.Searcher, error) {
	s := engine.NewSearcher(engine.NewTable(viper.GetInt("hash")))
	s.SetLogger(log)

	switch mode := viper.GetString("eval"); mode {
	case "classical":
	case "nnue":
		path := viper.GetString("weights")
		if path == "" {
			return nil, fmt.Errorf("eval nnue needs --weights")
		}
		net, err := nnue.LoadNetwork(path)
		if err != nil {
			return nil, err
		}
		ev := nnue.NewEvaluator(net)
		ev.Attach(pos)
		s.SetEvaluator(ev)
	default:
		return nil, fmt.Errorf("unknown eval mode %q", mode)
	}
	return s, nil
}

func runAnalyze() error {
	pos, err := board.ParseFEN(viper.GetString("fen"))
	if err != nil {
		return err
	}
	if pos.IsCheckmate() || pos.IsStalemate() {
		return fmt.Errorf("game over, nothing to analyze")
	}

	var store *storage.Store
	if dir := viper.GetString("store"); dir != "" {
		store, err = openStore(dir)
		if err != nil {
			return err
		}
		defer store.Close()

		if a, ok, err := store.Get(pos.Key()); err != nil {
			return err
		} else if ok {
			fmt.Printf("bestmove %s score %d (stored, depth %d)\n", a.BestMove, a.Score, a.Depth)
			return nil
		}
	}

	searcher, err := newSearcher(pos)
	if err != nil {
		return err
	}

	clock := engine.NewTurnClock(time.Duration(viper.GetInt64("ms")) * time.Millisecond)
	clock.StartTurn()
	started := time.Now()
	best := searcher.BestMove(pos, clock, viper.GetBool("verbose"))
	elapsed := time.Since(started)
	clock.EndTurn()

	fmt.Printf("bestmove %s depth %d nodes %d in %v\n", best, searcher.Depth(),
		searcher.Nodes(), elapsed.Round(time.Millisecond))

	if store != nil {
		return store.Put(pos.Key(), storage.Analysis{
			FEN:      pos.FEN(),
			BestMove: best.String(),
			Depth:    searcher.Depth(),
			Nodes:    searcher.Nodes(),
			Elapsed:  elapsed,
			When:     time.Now(),
		})
	}
	return nil
}

func runPerft() error {
	pos, err := board.ParseFEN(viper.GetString("fen"))
	if err != nil {
		return err
	}
	depth := viper.GetInt("depth")

	started := time.Now()
	nodes := board.Perft(pos, depth)
	elapsed := time.Since(started)

	fmt.Printf("perft(%d) = %d  (%.2f Mnps)\n", depth, nodes,
		float64(nodes)/1e6/elapsed.Seconds())
	return nil
}

// benchPositions mixes openings, middlegames and endings for a stable
// speed figure.
var benchPositions = []string{
	board.StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
}

func runBench() error {
	depth := viper.GetInt("depth")
	var totalNodes uint64
	started := time.Now()

	for _, fen := range benchPositions {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			return err
		}
		searcher, err := newSearcher(pos)
		if err != nil {
			return err
		}
		move, score := searcher.SearchToDepth(pos, depth)
		totalNodes += searcher.Nodes()
		log.Info().Str("fen", fen).Str("best", move.String()).Int("score", score).Msg("bench position")
	}

	elapsed := time.Since(started)
	fmt.Printf("bench: %d nodes in %v  (%.2f Mnps)\n", totalNodes,
		elapsed.Round(time.Millisecond), float64(totalNodes)/1e6/elapsed.Seconds())
	return nil
}

func runSelfplay() error {
	pos := board.NewPosition()
	searcher, err := newSearcher(pos)
	if err != nil {
		return err
	}

	budget := time.Duration(viper.GetInt64("ms")) * time.Millisecond
	clocks := [2]*engine.TurnClock{engine.NewTurnClock(budget), engine.NewTurnClock(budget)}

	for moveCount := 0; moveCount < 512; moveCount++ {
		if pos.IsCheckmate() {
			fmt.Printf("checkmate, %s wins\n", pos.SideToMove().Other())
			return nil
		}
		if pos.IsDraw() {
			fmt.Println("draw")
			return nil
		}

		clock := clocks[pos.SideToMove()]
		clock.StartTurn()
		m := searcher.BestMove(pos, clock, viper.GetBool("verbose"))
		clock.EndTurn()

		if m == board.NoMove {
			return fmt.Errorf("search returned no move at\n%s", pos)
		}
		fmt.Printf("%3d. %s %s\n", pos.FullMoveNumber(), pos.SideToMove(), m)
		pos.MakeMove(m)
	}
	fmt.Println("game stopped after 512 halfmoves")
	return nil
}

// openStore opens the analysis store, creating the directory if needed.
func openStore(dir string) (*storage.Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return storage.Open(dir)
}
