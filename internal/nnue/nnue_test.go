package nnue

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinchess/marlin/internal/board"
)

// fullAccumulate rebuilds an accumulator for the position from
// scratch, the slow way.
func fullAccumulate(net *Network, p *board.Position) *Accumulator {
	acc := NewAccumulator(net)
	for c := board.White; c <= board.Black; c++ {
		for k := board.Pawn; k <= board.King; k++ {
			for bb := p.Pieces(c, k); bb != 0; {
				acc.AddPiece(c, k, bb.PopFirst())
			}
		}
	}
	return acc
}

func TestIncrementalMatchesFullRebuild(t *testing.T) {
	net := NewRandomNetwork(7, 32)
	p := board.NewPosition()

	eval := NewEvaluator(net)
	eval.Attach(p)

	// Walk a line with pawn, piece and queen captures mixed in.
	line := []string{"e2e4", "d7d5", "e4d5", "g8f6", "f1b5", "c7c6", "d5c6", "d8d2"}
	for _, s := range line {
		m, err := p.ParseMove(s)
		require.NoError(t, err, s)
		p.MakeMove(m)

		want := fullAccumulate(net, p)
		for c := board.White; c <= board.Black; c++ {
			assert.Equal(t, want.half(c), eval.acc.half(c), "after %s, %s perspective", s, c)
		}
	}

	// Unwinding must restore every earlier frame exactly.
	for p.Ply() > 0 {
		p.UnmakeMove()
		want := fullAccumulate(net, p)
		for c := board.White; c <= board.Black; c++ {
			assert.Equal(t, want.half(c), eval.acc.half(c), "unwound to ply %d, %s perspective", p.Ply(), c)
		}
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	net := NewRandomNetwork(11, 16)
	p := board.NewPosition()

	e1 := NewEvaluator(net)
	e1.Attach(p)
	v1 := e1.Evaluate(p)

	p2 := board.NewPosition()
	e2 := NewEvaluator(net)
	e2.Attach(p2)
	assert.Equal(t, v1, e2.Evaluate(p2))
}

func TestWeightsRoundTrip(t *testing.T) {
	net := NewRandomNetwork(3, 24)

	var buf bytes.Buffer
	require.NoError(t, WriteNetwork(&buf, net))

	got, err := ReadNetwork(&buf)
	require.NoError(t, err)
	assert.Equal(t, net, got)
}

func TestLoadNetworkFromFile(t *testing.T) {
	net := NewRandomNetwork(5, 8)
	path := filepath.Join(t.TempDir(), "weights.bin")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteNetwork(f, net))
	require.NoError(t, f.Close())

	got, err := LoadNetwork(path)
	require.NoError(t, err)
	assert.Equal(t, net, got)
}

func TestLoadNetworkRejectsBadHeader(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{1, 0, 0, 0, 16, 0, 0, 0}) // wrong input size
	_, err := ReadNetwork(&buf)
	assert.Error(t, err)
}

func TestCrelu(t *testing.T) {
	assert.EqualValues(t, 0, crelu(-5))
	assert.EqualValues(t, 0, crelu(0))
	assert.EqualValues(t, 100, crelu(100))
	assert.EqualValues(t, QA, crelu(QA+50))
}
