package nnue

import "github.com/marlinchess/marlin/internal/board"

// maxStack bounds the accumulator stack; it tracks the board's own
// history capacity.
const maxStack = 1024

// Accumulator maintains the first-layer sums for both perspectives,
// one frame per ply. It implements the board's EvalHook so every piece
// placement flows through AddPiece/RemovePiece during make, and Pop
// restores the pre-move frame verbatim during unmake.
type Accumulator struct {
	net    *Network
	frames [maxStack][2][]int16 // [ply][perspective]
	top    int
}

// NewAccumulator returns an empty accumulator over the network's
// first layer, holding only the biases.
func NewAccumulator(net *Network) *Accumulator {
	a := &Accumulator{net: net}
	for persp := 0; persp < 2; persp++ {
		a.frames[0][persp] = make([]int16, net.Hidden)
		copy(a.frames[0][persp], net.B1)
	}
	return a
}

// half returns the current frame's vector for one perspective.
func (a *Accumulator) half(c board.Color) []int16 {
	return a.frames[a.top][c]
}

// Push opens a new frame as a copy of the current one.
func (a *Accumulator) Push() {
	next := a.top + 1
	for persp := 0; persp < 2; persp++ {
		if a.frames[next][persp] == nil {
			a.frames[next][persp] = make([]int16, a.net.Hidden)
		}
		copy(a.frames[next][persp], a.frames[a.top][persp])
	}
	a.top = next
}

// Pop discards the current frame, restoring the previous one.
func (a *Accumulator) Pop() {
	if a.top > 0 {
		a.top--
	}
}

// AddPiece folds a placed piece's feature columns into both halves.
func (a *Accumulator) AddPiece(c board.Color, k board.PieceKind, sq board.Square) {
	for persp := board.White; persp <= board.Black; persp++ {
		col := a.net.column(featureIndex(persp, c, k, sq))
		vec := a.frames[a.top][persp]
		for i := range vec {
			vec[i] += col[i]
		}
	}
}

// RemovePiece subtracts a removed piece's feature columns.
func (a *Accumulator) RemovePiece(c board.Color, k board.PieceKind, sq board.Square) {
	for persp := board.White; persp <= board.Black; persp++ {
		col := a.net.column(featureIndex(persp, c, k, sq))
		vec := a.frames[a.top][persp]
		for i := range vec {
			vec[i] -= col[i]
		}
	}
}

// Reset drops every frame and reloads the biases.
func (a *Accumulator) Reset() {
	a.top = 0
	for persp := 0; persp < 2; persp++ {
		copy(a.frames[0][persp], a.net.B1)
	}
}

// Evaluator pairs a network with its accumulator and satisfies the
// engine's Evaluator interface.
type Evaluator struct {
	net *Network
	acc *Accumulator
}

// NewEvaluator builds an evaluator for the network.
func NewEvaluator(net *Network) *Evaluator {
	return &Evaluator{net: net, acc: NewAccumulator(net)}
}

// Attach resets the accumulator and registers it as the position's
// eval hook, seeding it with every piece on the board.
func (e *Evaluator) Attach(p *board.Position) {
	e.acc.Reset()
	p.SetEvalHook(e.acc)
}

// Evaluate returns the network score from the side to move's
// perspective. Attach must have been called on the position.
func (e *Evaluator) Evaluate(p *board.Position) int {
	return e.net.Evaluate(e.acc, p.SideToMove())
}
