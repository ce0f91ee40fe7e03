package engine

import (
	"math/bits"

	"github.com/samumartinf/taures/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// TTEntry represents an entry in the transposition table.
type TTEntry struct {
	Key      uint64     // Full 64-bit Zobrist hash for verification
	BestMove board.Move // Best move found
	Score    int16      // Score, mate scores stored relative to this node
	Depth    int8       // Search depth
	Flag     TTFlag     // Type of bound
	Age      uint8      // Search generation that wrote the entry
}

// TranspositionTable caches search results by Zobrist hash. It belongs to a
// single search at a time and is not safe for concurrent use.
//
// Entries written by an earlier search generation read as misses, so one
// request never sees another's results without the table being cleared.
type TranspositionTable struct {
	entries []TTEntry
	size    uint64
	mask    uint64
	age     uint8

	hits   uint64
	probes uint64
}

// ttEntrySize is the in-memory size of a TTEntry.
const ttEntrySize = 16

// NewTranspositionTable allocates the largest power-of-two number of entries
// that fits in sizeMB megabytes (at least one megabyte).
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	sizeMB = max(sizeMB, 1)
	n := uint64(1) << (bits.Len64(uint64(sizeMB)<<20/ttEntrySize) - 1)
	return &TranspositionTable{
		entries: make([]TTEntry, n),
		size:    n,
		mask:    n - 1,
		age:     1,
	}
}

// Probe looks up a position written by the current search generation.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	tt.probes++

	entry := tt.entries[hash&tt.mask]
	if entry.Key == hash && entry.Age == tt.age {
		tt.hits++
		return entry, true
	}
	return TTEntry{}, false
}

// Store saves a search result. An entry of the current generation is only
// replaced by one searched at least as deep.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, bestMove board.Move) {
	entry := &tt.entries[hash&tt.mask]
	if entry.Age == tt.age && depth < int(entry.Depth) {
		return
	}

	*entry = TTEntry{
		Key:      hash,
		BestMove: bestMove,
		Score:    int16(score),
		Depth:    int8(depth),
		Flag:     flag,
		Age:      tt.age,
	}
}

// NewSearch starts a new generation. When the 8-bit counter wraps the table
// is wiped so that no stale entry can match the new generation.
func (tt *TranspositionTable) NewSearch() {
	tt.age++
	if tt.age == 0 {
		tt.Clear()
	}
	tt.hits = 0
	tt.probes = 0
}

// Clear clears the transposition table.
func (tt *TranspositionTable) Clear() {
	clear(tt.entries)
	tt.age = 1
	tt.hits = 0
	tt.probes = 0
}

// HashFull estimates, in permille, how much of the table the current
// generation occupies by sampling its first thousand slots.
func (tt *TranspositionTable) HashFull() int {
	sample := tt.entries[:min(len(tt.entries), 1000)]
	used := 0
	for i := range sample {
		if sample[i].Age == tt.age && sample[i].Key != 0 {
			used++
		}
	}
	return used * 1000 / len(sample)
}

// HitRate returns the cache hit rate of the current generation as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Size returns the number of entries in the table.
func (tt *TranspositionTable) Size() uint64 {
	return tt.size
}

// Mate scores are stored relative to the node that found them and read back
// relative to the root, so a cached mate keeps its distance when reached
// through a different path length.

// AdjustScoreToTT makes a root-relative mate score node-relative.
func AdjustScoreToTT(score, ply int) int {
	switch {
	case score > MateScore-MaxPly:
		return score + ply
	case score < -MateScore+MaxPly:
		return score - ply
	}
	return score
}

// AdjustScoreFromTT undoes AdjustScoreToTT at the probing node's ply.
func AdjustScoreFromTT(score, ply int) int {
	return AdjustScoreToTT(score, -ply)
}
