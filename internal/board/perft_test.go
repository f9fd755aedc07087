package board

import "testing"

// Reference positions with known perft values. The deepest depth of
// each entry is the published reference number; shallower depths keep
// the default test run quick.
var perftSuite = []struct {
	name  string
	fen   string
	quick []uint64 // counts for depth 1..len
	depth int      // full-depth check
	nodes uint64
}{
	{
		name:  "initial",
		fen:   StartFEN,
		quick: []uint64{20, 400, 8902, 197281, 4865609},
		depth: 6,
		nodes: 119060324,
	},
	{
		name:  "kiwipete",
		fen:   "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		quick: []uint64{48, 2039, 97862, 4085603},
		depth: 5,
		nodes: 193690690,
	},
	{
		name:  "endgame",
		fen:   "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		quick: []uint64{14, 191, 2812, 43238, 674624},
		depth: 7,
		nodes: 178633661,
	},
	{
		name:  "tactical",
		fen:   "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		quick: []uint64{6, 264, 9467, 422333},
		depth: 6,
		nodes: 706045033,
	},
	{
		name:  "promotion",
		fen:   "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		quick: []uint64{44, 1486, 62379, 2103487},
		depth: 5,
		nodes: 89941194,
	},
	{
		name:  "symmetric",
		fen:   "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
		quick: []uint64{46, 2079, 89890, 3894594},
		depth: 5,
		nodes: 164075551,
	},
}

func TestPerft(t *testing.T) {
	for _, tc := range perftSuite {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			for depth, want := range tc.quick {
				if got := Perft(p, depth+1); got != want {
					t.Fatalf("perft(%d) = %d, want %d", depth+1, got, want)
				}
			}
		})
	}
}

// TestPerftFullDepth runs the published full-depth counts. These sum to
// over a billion leaves; skipped with -short.
func TestPerftFullDepth(t *testing.T) {
	if testing.Short() {
		t.Skip("full-depth perft skipped in short mode")
	}
	for _, tc := range perftSuite {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			if got := Perft(p, tc.depth); got != tc.nodes {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.nodes)
			}
		})
	}
}

func BenchmarkPerft(b *testing.B) {
	p := NewPosition()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Perft(p, 4)
	}
}
