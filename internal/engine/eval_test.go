package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinchess/marlin/internal/board"
)

func TestEvaluateStartPositionIsBalanced(t *testing.T) {
	p := board.NewPosition()
	assert.Equal(t, 0, Classical{}.Evaluate(p))
}

func TestEvaluateSideToMovePerspective(t *testing.T) {
	// The same arrangement of pieces must score v for one side and -v
	// for the other.
	white, err := board.ParseFEN("4k3/8/8/8/8/8/8/Q3K3 w - - 0 1")
	require.NoError(t, err)
	black, err := board.ParseFEN("4k3/8/8/8/8/8/8/Q3K3 b - - 0 1")
	require.NoError(t, err)

	ws := Classical{}.Evaluate(white)
	bs := Classical{}.Evaluate(black)
	assert.Equal(t, ws, -bs)
	assert.Positive(t, ws, "a queen up must score positive for its owner")
}

func TestEvaluateMirrorSymmetry(t *testing.T) {
	// A position and its color-flipped mirror evaluate identically
	// from the mover's perspective.
	a, err := board.ParseFEN("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	require.NoError(t, err)
	b, err := board.ParseFEN("rnbqkb1r/pppp1ppp/5n2/4p3/4P3/2N5/PPPP1PPP/R1BQKBNR b KQkq - 2 3")
	require.NoError(t, err)
	assert.Equal(t, Classical{}.Evaluate(a), Classical{}.Evaluate(b))
}

func TestGamePhase(t *testing.T) {
	full := board.NewPosition()
	assert.Equal(t, PhaseMax, GamePhase(full))

	kp, err := board.ParseFEN("4k3/pppppppp/8/8/8/8/PPPPPPPP/4K3 w - - 0 1")
	require.NoError(t, err)
	assert.Equal(t, 0, GamePhase(kp), "kings and pawns only must floor at 0")

	middle, err := board.ParseFEN("4k3/8/8/8/8/8/8/R2QK3 w - - 0 1")
	require.NoError(t, err)
	phase := GamePhase(middle)
	assert.Greater(t, phase, 0)
	assert.Less(t, phase, PhaseMax)
}

func TestMaterialDominatesPST(t *testing.T) {
	up, err := board.ParseFEN("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)
	assert.Greater(t, Classical{}.Evaluate(up), 300, "a clean rook up must be worth hundreds of centipawns")
}
