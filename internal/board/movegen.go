package board

// Legal move generation. The generator never produces a move that
// leaves the own king attacked: king moves are filtered against the
// opponent's seen squares, everything else is filtered against the
// check mask and the pin masks, and en passant - the one case the pin
// masks cannot express - is verified on a scratch make/unmake.

// Castling geometry: squares the king passes through (which must not be
// seen by the opponent) and squares that must be empty.
const (
	wksPath  = Bitboard(1<<F1 | 1<<G1)
	wksEmpty = Bitboard(1<<F1 | 1<<G1)
	wqsPath  = Bitboard(1<<C1 | 1<<D1)
	wqsEmpty = Bitboard(1<<B1 | 1<<C1 | 1<<D1)
	bksPath  = Bitboard(1<<F8 | 1<<G8)
	bksEmpty = Bitboard(1<<F8 | 1<<G8)
	bqsPath  = Bitboard(1<<C8 | 1<<D8)
	bqsEmpty = Bitboard(1<<B8 | 1<<C8 | 1<<D8)
)

// LegalMoves fills ml with every legal move for the side to move.
func (p *Position) LegalMoves(ml *MoveList) {
	ml.Clear()

	us := p.stm
	own := p.occupied[us]
	seen := p.seenSquares()
	check := p.checkMask()
	pinHV := p.pinRays(false)
	pinD12 := p.pinRays(true)
	pinned := pinHV | pinD12

	// King moves: never onto a seen square.
	ksq := p.KingSquare(us)
	emitPlain(ml, ksq, KingAttacks(ksq)&^own&^seen)

	// Castling, only when not in check.
	if check == AllSquares {
		p.castlingMoves(ml, seen)
	}

	// With two or more checkers only the king may move.
	if check == 0 {
		return
	}

	// Knights: a pinned knight can never move.
	for bb := p.pieces[us][Knight] &^ pinned; bb != 0; {
		from := bb.PopFirst()
		emitPlain(ml, from, KnightAttacks(from)&^own&check)
	}

	// Sliders, split into unpinned and pinned bands. A piece pinned on
	// a ray it cannot slide along (bishop on an orthogonal pin, rook on
	// a diagonal pin) has no moves and is skipped entirely.
	for bb := p.pieces[us][Rook] &^ pinned; bb != 0; {
		from := bb.PopFirst()
		emitPlain(ml, from, RookAttacks(from, p.all)&^own&check)
	}
	for bb := p.pieces[us][Rook] & pinHV; bb != 0; {
		from := bb.PopFirst()
		emitPlain(ml, from, RookAttacks(from, p.all)&^own&check&pinHV)
	}
	for bb := p.pieces[us][Bishop] &^ pinned; bb != 0; {
		from := bb.PopFirst()
		emitPlain(ml, from, BishopAttacks(from, p.all)&^own&check)
	}
	for bb := p.pieces[us][Bishop] & pinD12; bb != 0; {
		from := bb.PopFirst()
		emitPlain(ml, from, BishopAttacks(from, p.all)&^own&check&pinD12)
	}
	for bb := p.pieces[us][Queen] &^ pinned; bb != 0; {
		from := bb.PopFirst()
		emitPlain(ml, from, QueenAttacks(from, p.all)&^own&check)
	}
	for bb := p.pieces[us][Queen] & pinHV; bb != 0; {
		from := bb.PopFirst()
		emitPlain(ml, from, RookAttacks(from, p.all)&^own&check&pinHV)
	}
	for bb := p.pieces[us][Queen] & pinD12; bb != 0; {
		from := bb.PopFirst()
		emitPlain(ml, from, BishopAttacks(from, p.all)&^own&check&pinD12)
	}

	// Pawns in the same three bands; pushes and captures are already
	// direction-aware so the pin intersection does the rest.
	for bb := p.pieces[us][Pawn] &^ pinned; bb != 0; {
		from := bb.PopFirst()
		p.emitPawn(ml, us, from, p.pawnTargets(us, from)&check)
	}
	for bb := p.pieces[us][Pawn] & pinHV; bb != 0; {
		from := bb.PopFirst()
		p.emitPawn(ml, us, from, p.pawnTargets(us, from)&check&pinHV)
	}
	for bb := p.pieces[us][Pawn] & pinD12; bb != 0; {
		from := bb.PopFirst()
		p.emitPawn(ml, us, from, p.pawnTargets(us, from)&check&pinD12)
	}

	p.enPassantMoves(ml)
}

func emitPlain(ml *MoveList, from Square, targets Bitboard) {
	for targets != 0 {
		ml.Add(NewMove(from, targets.PopFirst()))
	}
}

// emitPawn expands destinations on the last rank into the four
// promotions.
func (p *Position) emitPawn(ml *MoveList, us Color, from Square, targets Bitboard) {
	var lastRank Bitboard
	if us == White {
		lastRank = Rank8
	} else {
		lastRank = Rank1
	}
	for targets != 0 {
		to := targets.PopFirst()
		if lastRank.Has(to) {
			ml.Add(NewPromotion(from, to, Knight))
			ml.Add(NewPromotion(from, to, Bishop))
			ml.Add(NewPromotion(from, to, Rook))
			ml.Add(NewPromotion(from, to, Queen))
		} else {
			ml.Add(NewMove(from, to))
		}
	}
}

// pawnTargets returns the push and capture destinations for a single
// pawn, excluding en passant.
func (p *Position) pawnTargets(us Color, sq Square) Bitboard {
	b := Bit(sq)
	empty := ^p.all
	enemies := p.occupied[us.Other()]

	var pushes Bitboard
	if us == White {
		single := (b << 8) & empty
		pushes = single | ((single&Rank3)<<8)&empty
	} else {
		single := (b >> 8) & empty
		pushes = single | ((single&Rank6)>>8)&empty
	}
	return pushes | PawnAttacks(us, sq)&enemies
}

// seenSquares is the set of squares the opponent attacks, computed
// with the own king lifted off the board so that sliders keep
// attacking the squares behind it.
func (p *Position) seenSquares() Bitboard {
	us := p.stm
	them := us.Other()
	occ := p.all &^ p.pieces[us][King]

	var seen Bitboard
	for bb := p.pieces[them][Pawn]; bb != 0; {
		seen |= PawnAttacks(them, bb.PopFirst())
	}
	for bb := p.pieces[them][Knight]; bb != 0; {
		seen |= KnightAttacks(bb.PopFirst())
	}
	for bb := p.pieces[them][Bishop] | p.pieces[them][Queen]; bb != 0; {
		seen |= BishopAttacks(bb.PopFirst(), occ)
	}
	for bb := p.pieces[them][Rook] | p.pieces[them][Queen]; bb != 0; {
		seen |= RookAttacks(bb.PopFirst(), occ)
	}
	seen |= KingAttacks(p.KingSquare(them))
	return seen
}

// checkMask returns the squares a non-king move may land on: all
// squares with no checker, the checker plus the blocking squares for a
// single checker, and nothing under double check.
func (p *Position) checkMask() Bitboard {
	us := p.stm
	them := us.Other()
	ksq := p.KingSquare(us)

	sliders := BishopAttacks(ksq, p.all)&(p.pieces[them][Bishop]|p.pieces[them][Queen]) |
		RookAttacks(ksq, p.all)&(p.pieces[them][Rook]|p.pieces[them][Queen])
	checkers := sliders |
		PawnAttacks(us, ksq)&p.pieces[them][Pawn] |
		KnightAttacks(ksq)&p.pieces[them][Knight]

	switch checkers.Count() {
	case 0:
		return AllSquares
	case 1:
		if sliders != 0 {
			return Between(ksq, checkers.First()) | checkers
		}
		// Pawn and knight checks cannot be blocked, only captured.
		return checkers
	default:
		return 0
	}
}

// pinRays returns the union of the pin rays of the given kind.
// Each ray runs from the own king through exactly one own piece to the
// pinning slider, endpoints included; a pinned piece may only move
// within its ray.
func (p *Position) pinRays(diagonal bool) Bitboard {
	us := p.stm
	them := us.Other()
	ksq := p.KingSquare(us)

	// Slide from the king with only enemy pieces as blockers, so the
	// nearest enemy piece on each ray is reached through any number of
	// own pieces; counting the own pieces in between filters the rays
	// down to true pins.
	var snipers Bitboard
	if diagonal {
		snipers = BishopAttacks(ksq, p.occupied[them]) & (p.pieces[them][Bishop] | p.pieces[them][Queen])
	} else {
		snipers = RookAttacks(ksq, p.occupied[them]) & (p.pieces[them][Rook] | p.pieces[them][Queen])
	}

	var rays Bitboard
	for snipers != 0 {
		sq := snipers.PopFirst()
		between := Between(ksq, sq)
		if (between & p.occupied[us]).Count() == 1 {
			rays |= between | Bit(sq) | Bit(ksq)
		}
	}
	return rays
}

// castlingMoves emits the legal castling moves. The caller has already
// established that the king is not in check.
func (p *Position) castlingMoves(ml *MoveList, seen Bitboard) {
	rights := p.CastlingRights()
	if p.stm == White {
		if rights&CastleWhiteKingside != 0 && p.pieces[White][Rook].Has(H1) &&
			seen&wksPath == 0 && p.all&wksEmpty == 0 {
			ml.Add(NewCastle(E1, G1))
		}
		if rights&CastleWhiteQueenside != 0 && p.pieces[White][Rook].Has(A1) &&
			seen&wqsPath == 0 && p.all&wqsEmpty == 0 {
			ml.Add(NewCastle(E1, C1))
		}
		return
	}
	if rights&CastleBlackKingside != 0 && p.pieces[Black][Rook].Has(H8) &&
		seen&bksPath == 0 && p.all&bksEmpty == 0 {
		ml.Add(NewCastle(E8, G8))
	}
	if rights&CastleBlackQueenside != 0 && p.pieces[Black][Rook].Has(A8) &&
		seen&bqsPath == 0 && p.all&bqsEmpty == 0 {
		ml.Add(NewCastle(E8, C8))
	}
}

// epTargetSquare is the square a capturing pawn of color us lands on
// for the given en-passant file.
func epTargetSquare(us Color, file uint8) Square {
	if us == White {
		return SquareAt(int(file), 5)
	}
	return SquareAt(int(file), 2)
}

// enPassantMoves emits legal en-passant captures. Each candidate is
// played on the board and rejected if it leaves the own king attacked;
// removing two pawns from one rank can uncover a rook or queen in a
// way no pin mask detects.
func (p *Position) enPassantMoves(ml *MoveList) {
	file := p.EnPassantFile()
	if file == NoEnPassant {
		return
	}
	us := p.stm
	to := epTargetSquare(us, file)
	attackers := PawnAttacks(us.Other(), to) & p.pieces[us][Pawn]
	for attackers != 0 {
		m := NewMove(attackers.PopFirst(), to)
		if p.epLegal(m) {
			ml.Add(m)
		}
	}
}

// epLegal plays the en-passant capture on a scratch basis and reports
// whether the own king survives it.
func (p *Position) epLegal(m Move) bool {
	us := p.stm
	p.MakeMove(m)
	legal := !p.attackedBy(p.KingSquare(us), us.Other(), p.all)
	p.UnmakeMove()
	return legal
}
