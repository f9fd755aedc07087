package engine

import (
	"sort"

	"github.com/marlinchess/marlin/internal/board"
)

// Move ordering scores, highest searched first: the TT move, then
// captures by most-valuable-victim / least-valuable-attacker, then the
// killer of the ply, then quiet history.
const (
	ttMoveScore  = int64(1) << 40
	captureScale = int64(1) << 22
	killerScore  = int64(1) << 20
	historyClamp = int32(1) << 18
)

// scoreMove ranks a single move for ordering.
func (s *Searcher) scoreMove(m, ttMove board.Move, ply int) int64 {
	if m == ttMove {
		return ttMoveScore
	}
	if victim := s.pos.KindAt(m.To()); victim != board.NoKind {
		attacker := s.pos.KindAt(m.From())
		return captureScale*int64(victim) - int64(attacker)
	}
	if m == s.killers[ply] {
		return killerScore
	}
	return int64(s.quietHistory[m.HistoryIndex()])
}

// orderedMoves generates the legal moves, drops non-captures in
// quiescence, and sorts the rest by descending score.
func (s *Searcher) orderedMoves(ml *board.MoveList, ttMove board.Move, inQsearch bool, ply int) []board.Move {
	s.pos.LegalMoves(ml)

	moves := ml.All()
	if inQsearch {
		n := 0
		for _, m := range moves {
			if s.pos.IsCapture(m) {
				moves[n] = m
				n++
			}
		}
		moves = moves[:n]
	}

	scores := make([]int64, len(moves))
	for i, m := range moves {
		scores[i] = s.scoreMove(m, ttMove, ply)
	}
	sort.Sort(&byScore{moves, scores})
	return moves
}

type byScore struct {
	moves  []board.Move
	scores []int64
}

func (b *byScore) Len() int           { return len(b.moves) }
func (b *byScore) Less(i, j int) bool { return b.scores[i] > b.scores[j] }
func (b *byScore) Swap(i, j int) {
	b.moves[i], b.moves[j] = b.moves[j], b.moves[i]
	b.scores[i], b.scores[j] = b.scores[j], b.scores[i]
}

// rememberCutoff records a quiet move that refuted the current line:
// it becomes the ply's killer and earns quiet history equal to the
// square of the remaining depth.
func (s *Searcher) rememberCutoff(m board.Move, ply, depth int) {
	s.killers[ply] = m
	h := &s.quietHistory[m.HistoryIndex()]
	*h += int32(depth * depth)
	if *h > historyClamp {
		*h = historyClamp
	}
}

// historySign is the -1/0/+1 signum of a move's quiet history, used to
// tune the late-move reduction.
func (s *Searcher) historySign(m board.Move) int {
	h := s.quietHistory[m.HistoryIndex()]
	switch {
	case h > 0:
		return 1
	case h < 0:
		return -1
	}
	return 0
}
