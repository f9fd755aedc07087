package board

import "testing"

// snapshot captures every externally observable field of a position.
type snapshot struct {
	pieces   [2][7]Bitboard
	occupied [2]Bitboard
	all      Bitboard
	stm      Color
	fullmove int
	ply      int
	key      uint64
	castling uint8
	epFile   uint8
	halfmove int
}

func snap(p *Position) snapshot {
	return snapshot{
		pieces:   p.pieces,
		occupied: p.occupied,
		all:      p.all,
		stm:      p.stm,
		fullmove: p.fullmove,
		ply:      p.ply,
		key:      p.key,
		castling: p.CastlingRights(),
		epFile:   p.EnPassantFile(),
		halfmove: p.HalfMoveClock(),
	}
}

// walkPositions exercises make/unmake over every legal move of several
// tricky positions, a few plies deep.
var walkPositions = []string{
	StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"rnbqkbnr/ppp1pppp/8/8/3pP3/5N2/PPPP1PPP/RNBQKB1R b KQkq e3 0 3",
}

func TestMakeUnmakeIdentity(t *testing.T) {
	for _, fen := range walkPositions {
		p, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		checkMakeUnmake(t, p, 3)
	}
}

func checkMakeUnmake(t *testing.T, p *Position, depth int) {
	t.Helper()
	if depth == 0 {
		return
	}
	before := snap(p)
	var moves MoveList
	p.LegalMoves(&moves)
	for _, m := range moves.All() {
		p.MakeMove(m)
		if got, want := p.key, p.hash(); got != want {
			t.Fatalf("after %s: incremental key %#x != rehash %#x", m, got, want)
		}
		checkInvariants(t, p)
		checkMakeUnmake(t, p, depth-1)
		p.UnmakeMove()
		if snap(p) != before {
			t.Fatalf("unmake of %s did not restore the position\nfen now: %s", m, p.FEN())
		}
	}
}

// checkInvariants verifies bitboard disjointness and the aggregate
// relations.
func checkInvariants(t *testing.T, p *Position) {
	t.Helper()
	var union Bitboard
	for c := White; c <= Black; c++ {
		var colorUnion Bitboard
		for k := Pawn; k <= King; k++ {
			bb := p.Pieces(c, k)
			if union&bb != 0 {
				t.Fatalf("piece bitboards overlap at\n%s", p)
			}
			union |= bb
			colorUnion |= bb
		}
		if colorUnion != p.Occupied(c) {
			t.Fatalf("%s aggregate out of sync at\n%s", c, p)
		}
	}
	if p.Occupied(White)|p.Occupied(Black) != p.AllOccupied() {
		t.Fatalf("occupancy aggregate out of sync at\n%s", p)
	}
}

func TestUnmakeAtRootIsNoop(t *testing.T) {
	p := NewPosition()
	before := snap(p)
	p.UnmakeMove()
	if snap(p) != before {
		t.Fatal("UnmakeMove at ply 0 modified the position")
	}
}

func TestNullMoveRoundTrip(t *testing.T) {
	p, err := ParseFEN("rnbqkbnr/ppp1pppp/8/8/3pP3/5N2/PPPP1PPP/RNBQKB1R b KQkq e3 0 3")
	if err != nil {
		t.Fatal(err)
	}
	before := snap(p)

	p.MakeNullMove()
	if p.SideToMove() != White {
		t.Error("null move did not flip the side to move")
	}
	if p.EnPassantFile() != NoEnPassant {
		t.Error("null move did not clear the en-passant file")
	}
	if got, want := p.key, p.hash(); got != want {
		t.Errorf("null move key %#x != rehash %#x", got, want)
	}

	p.UnmakeNullMove()
	if snap(p) != before {
		t.Fatal("null move unmake did not restore the position")
	}
}

func TestFiftyMoveClock(t *testing.T) {
	p := NewPosition()

	// A knight shuffle neither captures nor pushes a pawn.
	for _, s := range []string{"g1f3", "g8f6", "f3g1", "f6g8"} {
		m, err := p.ParseMove(s)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", s, err)
		}
		p.MakeMove(m)
	}
	if got := p.HalfMoveClock(); got != 4 {
		t.Errorf("halfmove clock = %d, want 4", got)
	}

	// A pawn push resets it.
	m, err := p.ParseMove("e2e4")
	if err != nil {
		t.Fatal(err)
	}
	p.MakeMove(m)
	if got := p.HalfMoveClock(); got != 0 {
		t.Errorf("halfmove clock after pawn push = %d, want 0", got)
	}
}

func TestFiftyMoveRuleDraw(t *testing.T) {
	p, err := ParseFEN("4k3/8/8/8/8/8/8/R3K3 w - - 100 80")
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsDraw() {
		t.Error("halfmove clock at 100 must be a draw")
	}

	p, err = ParseFEN("4k3/8/8/8/8/8/8/R3K3 w - - 99 80")
	if err != nil {
		t.Fatal(err)
	}
	if p.IsDraw() {
		t.Error("halfmove clock at 99 is not yet a draw")
	}
}

func TestFullMoveNumber(t *testing.T) {
	p := NewPosition()
	for i, s := range []string{"e2e4", "e7e5", "g1f3"} {
		m, err := p.ParseMove(s)
		if err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
		p.MakeMove(m)
	}
	if got := p.FullMoveNumber(); got != 2 {
		t.Errorf("full-move number = %d, want 2", got)
	}
	p.UnmakeMove()
	p.UnmakeMove()
	p.UnmakeMove()
	if got := p.FullMoveNumber(); got != 1 {
		t.Errorf("full-move number after unwind = %d, want 1", got)
	}
}

func TestCastlingRightsLifecycle(t *testing.T) {
	p, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	// Castling clears both rights of the mover.
	m, err := p.ParseMove("e1g1")
	if err != nil {
		t.Fatal(err)
	}
	p.MakeMove(m)
	if got := p.CastlingRights(); got != CastleBlackKingside|CastleBlackQueenside {
		t.Errorf("rights after white O-O = %s", castlingString(got))
	}
	if p.Pieces(White, Rook).Has(H1) || !p.Pieces(White, Rook).Has(F1) {
		t.Error("castling did not relocate the rook")
	}
	p.UnmakeMove()
	if got := p.CastlingRights(); got != CastleAll {
		t.Errorf("rights after unmake = %s, want KQkq", castlingString(got))
	}

	// Capturing a rook on its home corner clears the matching right.
	m, err = p.ParseMove("a1a8")
	if err != nil {
		t.Fatal(err)
	}
	p.MakeMove(m)
	if got := p.CastlingRights(); got&CastleBlackQueenside != 0 || got&CastleWhiteQueenside != 0 {
		t.Errorf("rights after Rxa8 = %s", castlingString(got))
	}
}

func TestZobristSeedInjection(t *testing.T) {
	a := NewZobristTable(1)
	b := NewZobristTable(1)
	c := NewZobristTable(2)
	if a.sideKey != b.sideKey || a.pieces != b.pieces {
		t.Error("same seed must produce the same table")
	}
	if a.sideKey == c.sideKey && a.pieces == c.pieces {
		t.Error("different seeds produced identical tables")
	}

	p := NewPosition()
	keyDefault := p.Key()
	p.SetZobristTable(c)
	if p.Key() == keyDefault {
		t.Error("rehash under a new table kept the old key")
	}
	if got, want := p.Key(), p.hash(); got != want {
		t.Errorf("key %#x != rehash %#x after table swap", got, want)
	}
}
