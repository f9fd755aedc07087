// Package nnue implements a quantized, efficiently-updatable network
// evaluation. The first layer is folded into a per-side accumulator
// that make/unmake keeps in sync through the board's eval hook; the
// output layer runs a clipped ReLU over the concatenated [own,
// opponent] halves.
package nnue

import "github.com/marlinchess/marlin/internal/board"

// Quantization constants. First-layer activations clip to [0, QA];
// the output layer scales back to centipawns.
const (
	// InputSize is the feature count per perspective: both colors of
	// six piece kinds on 64 squares.
	InputSize = 2 * 6 * 64

	QA          = 255
	QB          = 64
	OutputScale = 400
)

// Network holds the quantized weights. W1 columns are the per-feature
// vectors the accumulator sums; W2 spans the two concatenated halves.
type Network struct {
	Hidden int
	W1     []int16 // InputSize * Hidden, column-major by feature
	B1     []int16 // Hidden
	W2     []int16 // 2 * Hidden: own half first, then opponent
	B2     int32
}

// column returns the first-layer weight column of a feature.
func (n *Network) column(feature int) []int16 {
	return n.W1[feature*n.Hidden : (feature+1)*n.Hidden]
}

// crelu is the clipped ReLU used on the accumulator halves.
func crelu(x int16) int32 {
	if x < 0 {
		return 0
	}
	if x > QA {
		return QA
	}
	return int32(x)
}

// Evaluate runs the output layer over the accumulator from the side to
// move's perspective and returns centipawns.
func (n *Network) Evaluate(acc *Accumulator, stm board.Color) int {
	own := acc.half(stm)
	opp := acc.half(stm.Other())

	sum := int64(n.B2)
	for i := 0; i < n.Hidden; i++ {
		sum += int64(crelu(own[i])) * int64(n.W2[i])
		sum += int64(crelu(opp[i])) * int64(n.W2[n.Hidden+i])
	}
	return int(sum * OutputScale / (QA * QB))
}

// featureIndex maps a piece seen from the given perspective to its
// input feature. The board is flipped vertically for black so both
// perspectives share one weight set.
func featureIndex(perspective, pieceColor board.Color, kind board.PieceKind, sq board.Square) int {
	side := 0
	if pieceColor != perspective {
		side = 1
	}
	if perspective == board.Black {
		sq = sq.Flip()
	}
	return (int(kind-board.Pawn)*2+side)*64 + int(sq)
}
