// Package board implements the chess board: bitboards, magic attack
// tables, zobrist keying, legal move generation and reversible
// make/unmake with per-ply history stacks.
package board

import "fmt"

// Square indexes the board 0..63 with a1=0, h1=7, a8=56, h8=63
// (little-endian rank-file mapping).
type Square uint8

// Square constants for all 64 squares.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// File returns the file 0..7 (0 = a).
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the rank 0..7 (0 = first rank).
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// Flip mirrors the square vertically (a1 <-> a8).
func (sq Square) Flip() Square {
	return sq ^ 56
}

// SquareAt builds a square from file and rank, both 0..7.
func SquareAt(file, rank int) Square {
	return Square(rank<<3 | file)
}

// String returns the algebraic name, e.g. "e4", or "-" for NoSquare.
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// ParseSquare parses algebraic notation ("e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return SquareAt(int(s[0]-'a'), int(s[1]-'1')), nil
}
