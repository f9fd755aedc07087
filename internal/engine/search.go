package engine

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/marlinchess/marlin/internal/board"
)

// Search bounds and scores.
const (
	infinity  = 1_000_000
	mateValue = infinity / 2
	maxPly    = 256

	// tempo is the static-eval bonus for having the move. It is
	// applied as a constant rather than tapered away in the endgame.
	tempo = 15

	aspirationWindow = 40
)

// Searcher runs a single-threaded negamax over one position. It owns
// its transposition table, killers and quiet history; nothing is
// shared and nothing needs locking.
type Searcher struct {
	pos   *board.Position
	eval  Evaluator
	tt    *Table
	clock Clock

	// allocated is the per-turn time budget in milliseconds; the hard
	// limit aborts the search, the soft limit (allocated/5) gates the
	// next deepening iteration.
	allocated int64

	killers      [maxPly]board.Move
	quietHistory [4096]int32

	rootBest board.Move
	depth    int
	nodes    uint64
	logger   zerolog.Logger
}

// NewSearcher builds a searcher around the given transposition table,
// evaluating with the classical evaluation until SetEvaluator swaps it.
func NewSearcher(tt *Table) *Searcher {
	return &Searcher{
		eval:   Classical{},
		tt:     tt,
		logger: zerolog.Nop(),
	}
}

// SetEvaluator replaces the static evaluation.
func (s *Searcher) SetEvaluator(e Evaluator) {
	s.eval = e
}

// SetLogger routes verbose iteration reports to l.
func (s *Searcher) SetLogger(l zerolog.Logger) {
	s.logger = l
}

// Nodes returns the node count of the last search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Depth returns the last completed iteration depth.
func (s *Searcher) Depth() int {
	return s.depth
}

// BestMove searches pos under the clock and returns the best move
// found. The caller starts the clock's turn before invoking it and
// must not invoke it on a checkmated or stalemated position. With
// verbose set, each completed iteration is logged.
func (s *Searcher) BestMove(pos *board.Position, clock Clock, verbose bool) board.Move {
	s.prepare(pos, clock)
	s.allocated = clock.MillisecondsRemaining() / 8

	started := time.Now()
	score := 0

deepening:
	for depth := 1; depth < maxPly && clock.MillisecondsElapsedThisTurn() <= s.allocated/5; depth++ {
		// Aspiration: search a narrow window around the previous
		// score, doubling it whenever the result lands outside.
		window := aspirationWindow
		for {
			alpha, beta := score-window, score+window
			score = s.negamax(0, depth, alpha, beta, false)
			if clock.MillisecondsElapsedThisTurn() > s.allocated {
				break deepening
			}
			if alpha < score && score < beta {
				break
			}
			window *= 2
		}

		s.depth = depth
		if verbose {
			elapsed := time.Since(started)
			s.logger.Info().
				Int("depth", depth).
				Int("score", score).
				Uint64("nodes", s.nodes).
				Float64("mnps", float64(s.nodes)/1e6/max(elapsed.Seconds(), 1e-9)).
				Str("best", s.rootBest.String()).
				Msg("iteration")
		}
	}

	if s.rootBest == board.NoMove {
		// The first iteration was cut short before any root move was
		// latched; fall back to any legal move.
		var ml board.MoveList
		pos.LegalMoves(&ml)
		if ml.Len() > 0 {
			s.rootBest = ml.At(0)
		}
	}
	return s.rootBest
}

// SearchToDepth runs a fixed-depth search free of time pressure and
// returns the best move with its score. Used by the bench command and
// by tests that need reproducible results.
func (s *Searcher) SearchToDepth(pos *board.Position, depth int) (board.Move, int) {
	clock := NewTurnClock(time.Hour)
	clock.StartTurn()
	s.prepare(pos, clock)
	s.allocated = clock.MillisecondsRemaining()

	score := 0
	for d := 1; d <= depth; d++ {
		score = s.negamax(0, d, -infinity, infinity, false)
		s.depth = d
	}
	return s.rootBest, score
}

// prepare resets the per-search state. Killers live for one search;
// quiet history decays across turns instead of being cleared.
func (s *Searcher) prepare(pos *board.Position, clock Clock) {
	s.pos = pos
	s.clock = clock
	s.rootBest = board.NoMove
	s.depth = 0
	s.nodes = 0
	for i := range s.killers {
		s.killers[i] = board.NoMove
	}
	for i := range s.quietHistory {
		s.quietHistory[i] /= 8
	}
}

// negamax searches the position to the given remaining depth and
// returns its score. The search is fail-soft: the result may lie
// outside [alpha, beta]. Depth 0 and below runs as
// quiescence: captures only, with the static evaluation as the
// stand-pat floor. nullAllowed is false directly after a null move to
// prevent back-to-back passes.
func (s *Searcher) negamax(ply, depth, alpha, beta int, nullAllowed bool) int {
	s.nodes++

	if ply >= maxPly-1 {
		return s.eval.Evaluate(s.pos) + tempo
	}

	// A single repetition of a position on the game line scores as a
	// draw; if repeating is really best we will happily take it.
	if nullAllowed && s.pos.IsRepetition() {
		return 0
	}

	inCheck := s.pos.InCheck()
	if inCheck {
		depth++
	}

	inQsearch := depth <= 0
	doPruning := alpha == beta-1 && !inCheck
	bestScore := -infinity
	score := s.eval.Evaluate(s.pos) + tempo

	key := s.pos.Key()
	entry := s.tt.probe(key)
	ttMove := board.NoMove

	if entry.key == key {
		ttMove = entry.move
		ttScore := int(entry.score)

		// Cut immediately on a non-PV node when the stored search was
		// at least as deep and the bound points the right way: exact
		// always cuts, a lower bound cuts above beta, an upper bound
		// cuts below alpha.
		if alpha == beta-1 && int(entry.depth) >= depth && entry.flag != failFlag(ttScore >= beta) {
			return ttScore
		}

		// Otherwise the stored bound can still sharpen the static
		// evaluation for the pruning decisions below.
		if entry.flag != failFlag(ttScore > score) {
			score = ttScore
		}
	} else if depth > 3 {
		// First visit to this node: reduce and let a later visit
		// through the table search it at full depth.
		depth--
	}

	if inQsearch {
		if score >= beta {
			return score
		}
		if score > alpha {
			alpha = score
		}
		bestScore = score
	} else if doPruning {
		// Reverse futility: a static eval this far above beta at
		// shallow depth will not be refuted.
		if depth < 7 && score-75*depth > beta {
			return score
		}

		// Null move: hand the opponent a free move; if the reduced
		// search still clears beta the position is good enough to cut.
		// Skipped in pawn endings where zugzwang breaks the logic.
		if nullAllowed && score >= beta && depth > 2 && GamePhase(s.pos) != 0 {
			s.pos.MakeNullMove()
			nullScore := -s.negamax(ply+1, depth-(4+depth/6), -beta, -beta+1, false)
			s.pos.UnmakeNullMove()
			if nullScore >= beta {
				return beta
			}
		}
	}

	var ml board.MoveList
	moves := s.orderedMoves(&ml, ttMove, inQsearch, ply)

	flag := BoundUpper
	tried := 0
	quiets := 0

	for _, m := range moves {
		isQuiet := !s.pos.IsCapture(m)

		s.pos.MakeMove(m)

		if inQsearch || tried == 0 {
			score = -s.negamax(ply+1, depth-1, -beta, -alpha, true)
		} else {
			// Principal variation search: verify later moves with a
			// zero-width window, reduced for late quiet moves, and
			// re-search on any fail-high.
			needFull := true
			if depth > 2 && tried > 4 && isQuiet {
				r := 2 + depth/8 + tried/16 - s.historySign(m)
				if doPruning {
					r++
				}
				if r < 1 {
					r = 1
				}
				score = -s.negamax(ply+1, depth-r, -alpha-1, -alpha, true)
				needFull = score > alpha
			}
			if needFull {
				score = -s.negamax(ply+1, depth-1, -alpha-1, -alpha, true)
			}
			if score > alpha && score < beta {
				score = -s.negamax(ply+1, depth-1, -beta, -alpha, true)
			}
		}

		s.pos.UnmakeMove()

		// Hard time limit: unwind with the best seen so far and leave
		// the table untouched.
		if depth > 2 && s.clock.MillisecondsElapsedThisTurn() > s.allocated {
			return bestScore
		}

		tried++

		if score > bestScore {
			bestScore = score
			if score > alpha {
				ttMove = m
				if ply == 0 {
					s.rootBest = m
				}
				alpha = score
				flag = BoundExact
				if score >= beta {
					flag = BoundLower
					if isQuiet {
						s.rememberCutoff(m, ply, depth)
					}
					break
				}
			}
		}

		if isQuiet {
			quiets++
		}
		// Late move pruning: quiet moves this deep into the list at
		// this depth almost never matter on a non-PV node.
		if doPruning && quiets >= 3+depth*depth {
			break
		}
	}

	if tried == 0 {
		if inQsearch {
			return bestScore
		}
		if inCheck {
			// Mate: deeper mates score closer to zero, so the winner
			// prefers the short one and the loser the long one.
			return ply - mateValue
		}
		return 0
	}

	storeDepth := depth
	if inQsearch {
		storeDepth = 0
	}
	s.tt.store(key, ttMove, storeDepth, bestScore, flag)

	return bestScore
}

// failFlag translates "did the score fail high" into the bound kind
// that would NOT justify trusting it: a fail-high is unusable when the
// entry is an upper bound, a fail-low when it is a lower bound.
func failFlag(failedHigh bool) Bound {
	if failedHigh {
		return BoundUpper
	}
	return BoundLower
}
