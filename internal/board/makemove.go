package board

// MakeMove plays m on the board. The move must be legal for the side
// to move. Every piece of state needed to reverse the move is pushed
// onto the history stacks at the new ply, and the zobrist key is
// updated incrementally; UnmakeMove restores the position bit for bit.
func (p *Position) MakeMove(m Move) {
	us := p.stm
	them := us.Other()
	from, to := m.From(), m.To()
	fromTo := Bit(from) | Bit(to)
	moved := p.KindAt(from)
	captured := p.KindAt(to)
	epFile := p.EnPassantFile()
	rights := p.CastlingRights()

	z := p.zobrist
	key := p.key ^ z.sideKey ^ z.castling[rights]
	if epFile != NoEnPassant {
		key ^= z.epFile[epFile]
	}

	if p.hook != nil {
		p.hook.Push()
	}

	// Move the piece.
	p.pieces[us][moved] ^= fromTo
	p.occupied[us] ^= fromTo
	key ^= z.pieces[us][moved][from] ^ z.pieces[us][moved][to]
	if p.hook != nil {
		p.hook.RemovePiece(us, moved, from)
		p.hook.AddPiece(us, moved, to)
	}

	if moved == Pawn && epFile != NoEnPassant && to == epTargetSquare(us, epFile) {
		// En passant: the captured pawn sits one rank behind the
		// destination, not on it.
		var capSq Square
		if us == White {
			capSq = to - 8
		} else {
			capSq = to + 8
		}
		p.pieces[them][Pawn] &^= Bit(capSq)
		p.occupied[them] &^= Bit(capSq)
		key ^= z.pieces[them][Pawn][capSq]
		if p.hook != nil {
			p.hook.RemovePiece(them, Pawn, capSq)
		}
	} else if captured != NoKind {
		p.pieces[them][captured] &^= Bit(to)
		p.occupied[them] &^= Bit(to)
		key ^= z.pieces[them][captured][to]
		if p.hook != nil {
			p.hook.RemovePiece(them, captured, to)
		}
	}

	if m.IsPromotion() {
		promo := m.PromotionKind()
		p.pieces[us][Pawn] &^= Bit(to)
		p.pieces[us][promo] |= Bit(to)
		key ^= z.pieces[us][Pawn][to] ^ z.pieces[us][promo][to]
		if p.hook != nil {
			p.hook.RemovePiece(us, Pawn, to)
			p.hook.AddPiece(us, promo, to)
		}
	}

	if m.IsCastle() {
		rookFrom, rookTo := castleRookSquares(to)
		rookMask := Bit(rookFrom) | Bit(rookTo)
		p.pieces[us][Rook] ^= rookMask
		p.occupied[us] ^= rookMask
		key ^= z.pieces[us][Rook][rookFrom] ^ z.pieces[us][Rook][rookTo]
		if p.hook != nil {
			p.hook.RemovePiece(us, Rook, rookFrom)
			p.hook.AddPiece(us, Rook, rookTo)
		}
	}

	// Castling rights: any king move forfeits both; a rook moving from,
	// or being captured on, a home corner forfeits the matching one.
	if moved == King {
		if us == White {
			rights &^= CastleWhiteKingside | CastleWhiteQueenside
		} else {
			rights &^= CastleBlackKingside | CastleBlackQueenside
		}
	}
	for _, sq := range [2]Square{from, to} {
		switch sq {
		case H1:
			rights &^= CastleWhiteKingside
		case A1:
			rights &^= CastleWhiteQueenside
		case H8:
			rights &^= CastleBlackKingside
		case A8:
			rights &^= CastleBlackQueenside
		}
	}

	// A double pawn push opens the destination file for en passant.
	newEP := NoEnPassant
	if moved == Pawn && (to > from && to-from == 16 || from > to && from-to == 16) {
		newEP = uint8(to.File())
	}

	p.all = p.occupied[White] | p.occupied[Black]

	var halfmove uint16
	if moved != Pawn && captured == NoKind {
		halfmove = p.hist.halfmoves[p.ply] + 1
	}

	key ^= z.castling[rights]
	if newEP != NoEnPassant {
		key ^= z.epFile[newEP]
	}

	p.ply++
	p.hist.moves[p.ply] = m
	p.hist.captured[p.ply] = captured
	p.hist.castling[p.ply] = rights
	p.hist.epFile[p.ply] = newEP
	p.hist.halfmoves[p.ply] = halfmove
	p.hist.keys[p.ply] = key
	p.key = key

	p.stm = them
	if p.stm == White {
		p.fullmove++
	}
}

// castleRookSquares maps the king's destination to the rook's move.
func castleRookSquares(kingTo Square) (rookFrom, rookTo Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	default: // C8
		return A8, D8
	}
}

// UnmakeMove reverses the most recent MakeMove. Calling it at the root
// of the game line is a no-op.
func (p *Position) UnmakeMove() {
	if p.ply == 0 {
		return
	}

	m := p.hist.moves[p.ply]
	us := p.stm.Other() // the side that made the move
	them := p.stm
	from, to := m.From(), m.To()
	fromTo := Bit(from) | Bit(to)
	moved := p.KindAt(to)
	captured := p.hist.captured[p.ply]
	prevEP := p.hist.epFile[p.ply-1]

	if p.hook != nil {
		p.hook.Pop()
	}

	// Walk the piece back; for a promotion this moves the promoted
	// piece, which is swapped back into a pawn below.
	p.pieces[us][moved] ^= fromTo
	p.occupied[us] ^= fromTo

	if m.IsPromotion() {
		p.pieces[us][Pawn] |= Bit(from)
		p.pieces[us][m.PromotionKind()] &^= Bit(from)
	}

	if moved == Pawn && prevEP != NoEnPassant && to == epTargetSquare(us, prevEP) {
		var capSq Square
		if us == White {
			capSq = to - 8
		} else {
			capSq = to + 8
		}
		p.pieces[them][Pawn] |= Bit(capSq)
		p.occupied[them] |= Bit(capSq)
	} else if captured != NoKind {
		p.pieces[them][captured] |= Bit(to)
		p.occupied[them] |= Bit(to)
	}

	if m.IsCastle() {
		rookFrom, rookTo := castleRookSquares(to)
		rookMask := Bit(rookFrom) | Bit(rookTo)
		p.pieces[us][Rook] ^= rookMask
		p.occupied[us] ^= rookMask
	}

	p.all = p.occupied[White] | p.occupied[Black]

	if us == Black {
		p.fullmove--
	}
	p.stm = us
	p.ply--
	p.key = p.hist.keys[p.ply]
}

// MakeNullMove passes the turn without moving: the en-passant file is
// cleared, the side-to-move key bit flips, and a history entry is
// pushed so the null move unwinds like any other.
func (p *Position) MakeNullMove() {
	z := p.zobrist
	key := p.key ^ z.sideKey
	if ep := p.EnPassantFile(); ep != NoEnPassant {
		key ^= z.epFile[ep]
	}

	p.ply++
	p.hist.moves[p.ply] = NoMove
	p.hist.captured[p.ply] = NoKind
	p.hist.castling[p.ply] = p.hist.castling[p.ply-1]
	p.hist.epFile[p.ply] = NoEnPassant
	p.hist.halfmoves[p.ply] = p.hist.halfmoves[p.ply-1] + 1
	p.hist.keys[p.ply] = key
	p.key = key
	p.stm = p.stm.Other()
}

// UnmakeNullMove reverses MakeNullMove.
func (p *Position) UnmakeNullMove() {
	if p.ply == 0 {
		return
	}
	p.stm = p.stm.Other()
	p.ply--
	p.key = p.hist.keys[p.ply]
}
