package board

import "fmt"

// Move packs a move into 16 bits:
//
//	bits 0-5   from square
//	bits 6-11  to square
//	bit  12    castling (king moves two squares)
//	bits 13-14 promotion piece: 0=knight 1=bishop 2=rook 3=queen
//	bit  15    promotion flag; when clear the piece bits are meaningless
type Move uint16

// NoMove is the zero move, used as "none".
const NoMove Move = 0

const (
	castleBit    = 1 << 12
	promotionBit = 1 << 15
)

// NewMove builds a plain move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewCastle builds a castling move (the king's two-square step).
func NewCastle(from, to Square) Move {
	return NewMove(from, to) | castleBit
}

// NewPromotion builds a promotion move to the given kind
// (Knight, Bishop, Rook or Queen).
func NewPromotion(from, to Square, kind PieceKind) Move {
	return NewMove(from, to) | Move(kind-Knight)<<13 | promotionBit
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square(m >> 6 & 0x3F)
}

// IsCastle reports whether this is a castling move.
func (m Move) IsCastle() bool {
	return m&castleBit != 0
}

// IsPromotion reports whether this is a promotion.
func (m Move) IsPromotion() bool {
	return m&promotionBit != 0
}

// PromotionKind returns the promoted piece kind. Only meaningful when
// IsPromotion is true.
func (m Move) PromotionKind() PieceKind {
	return PieceKind(m>>13&3) + Knight
}

// HistoryIndex returns the low 12 bits of the move, used to index the
// quiet-history table.
func (m Move) HistoryIndex() int {
	return int(m & 0xFFF)
}

// String renders the move in coordinate notation, e.g. "e2e4", "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string("nbrq"[m.PromotionKind()-Knight])
	}
	return s
}

// ParseMove parses coordinate notation against the position's legal
// moves. The promotion suffix is one of "nbrq". An error is returned
// when the string is malformed or no legal move matches.
func (p *Position) ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("invalid move %q", s)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return NoMove, fmt.Errorf("invalid move %q: %w", s, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("invalid move %q: %w", s, err)
	}
	promo := NoKind
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece %q", s[4])
		}
	}

	var moves MoveList
	p.LegalMoves(&moves)
	for _, m := range moves.All() {
		if m.From() != from || m.To() != to {
			continue
		}
		if m.IsPromotion() != (promo != NoKind) {
			continue
		}
		if m.IsPromotion() && m.PromotionKind() != promo {
			continue
		}
		return m, nil
	}
	return NoMove, fmt.Errorf("illegal move %q", s)
}

// maxMoves is the known upper bound on legal moves in any position.
const maxMoves = 218

// MoveList is a fixed-capacity move accumulator, sized for the worst
// known chess position so generation never allocates.
type MoveList struct {
	moves [maxMoves]Move
	n     int
}

// Add appends a move.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.n] = m
	ml.n++
}

// Len returns the number of moves.
func (ml *MoveList) Len() int {
	return ml.n
}

// At returns the move at index i.
func (ml *MoveList) At(i int) Move {
	return ml.moves[i]
}

// All returns the accumulated moves as a slice backed by the list.
func (ml *MoveList) All() []Move {
	return ml.moves[:ml.n]
}

// Clear empties the list.
func (ml *MoveList) Clear() {
	ml.n = 0
}

// Swap exchanges two entries.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}
