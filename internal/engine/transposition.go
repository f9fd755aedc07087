package engine

import (
	"unsafe"

	"github.com/marlinchess/marlin/internal/board"
)

// Bound classifies a transposition-table score.
type Bound uint8

const (
	// BoundUpper means the search failed low: the true score is at
	// most the stored one.
	BoundUpper Bound = iota
	// BoundExact means the stored score is the search value.
	BoundExact
	// BoundLower means the search failed high: the true score is at
	// least the stored one.
	BoundLower
)

// ttEntry is one transposition-table slot. The full key is kept so a
// probe can tell a hit from an index collision.
type ttEntry struct {
	key   uint64
	move  board.Move
	score int32
	depth int16
	flag  Bound
}

// Table is a fixed-size, power-of-two transposition table with an
// always-replace policy. It is owned by a single search.
type Table struct {
	entries []ttEntry
	mask    uint64
}

// NewTable allocates a table of roughly sizeMB megabytes, rounded down
// to a power-of-two entry count.
func NewTable(sizeMB int) *Table {
	n := uint64(sizeMB) << 20 / uint64(unsafe.Sizeof(ttEntry{}))
	for n&(n-1) != 0 {
		n &= n - 1
	}
	if n == 0 {
		n = 1
	}
	return &Table{
		entries: make([]ttEntry, n),
		mask:    n - 1,
	}
}

// probe returns the slot for key. The caller checks entry.key against
// the position key before trusting any field.
func (t *Table) probe(key uint64) *ttEntry {
	return &t.entries[key&t.mask]
}

// store overwrites the slot for key unconditionally.
func (t *Table) store(key uint64, m board.Move, depth, score int, flag Bound) {
	e := &t.entries[key&t.mask]
	e.key = key
	e.move = m
	e.score = int32(score)
	e.depth = int16(depth)
	e.flag = flag
}

// Clear empties the table.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i] = ttEntry{}
	}
}

// Len returns the number of slots.
func (t *Table) Len() int {
	return len(t.entries)
}
