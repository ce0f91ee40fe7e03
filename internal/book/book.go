// Package book provides opening variety for the engine: candidate replies
// per position with frequency weights, built from lines of SAN moves.
package book

import (
	"math/rand/v2"
	"sort"

	"github.com/samumartinf/taures/internal/board"
)

// Entry is a candidate reply and how often it appears in the source lines.
type Entry struct {
	Move   board.Move
	Weight int
}

// Source looks up the book replies for a position. A position that is not
// in the book yields no entries and no error.
type Source interface {
	Lookup(pos *board.Position) ([]Entry, error)
}

// Book is an in-memory opening book keyed by Zobrist hash.
type Book struct {
	entries map[uint64][]Entry
}

// New creates an empty book.
func New() *Book {
	return &Book{
		entries: make(map[uint64][]Entry),
	}
}

// Add records one occurrence of move m in pos.
func (b *Book) Add(pos *board.Position, m board.Move) {
	key := pos.Hash
	for i := range b.entries[key] {
		if b.entries[key][i].Move == m {
			b.entries[key][i].Weight++
			return
		}
	}
	b.entries[key] = append(b.entries[key], Entry{Move: m, Weight: 1})
}

// Lookup returns the replies for pos, heaviest first.
func (b *Book) Lookup(pos *board.Position) ([]Entry, error) {
	return b.ProbeAll(pos), nil
}

// ProbeAll returns a copy of the replies for pos, sorted by weight
// (heaviest first, then by move for a stable order).
func (b *Book) ProbeAll(pos *board.Position) []Entry {
	if b == nil {
		return nil
	}

	entries, ok := b.entries[pos.Hash]
	if !ok {
		return nil
	}

	result := make([]Entry, len(entries))
	copy(result, entries)
	SortEntries(result)
	return result
}

// Probe picks a reply for pos by weighted random selection.
func (b *Book) Probe(pos *board.Position, rng *rand.Rand) (board.Move, bool) {
	return Pick(pos, b.ProbeAll(pos), rng)
}

// Size returns the number of unique positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// SortEntries orders entries by weight, heaviest first, ties by move.
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Weight != entries[j].Weight {
			return entries[i].Weight > entries[j].Weight
		}
		return entries[i].Move < entries[j].Move
	})
}

// Pick samples one entry weighted by frequency and returns the matching legal
// move of pos. Entries that are not legal in pos are ignored.
func Pick(pos *board.Position, entries []Entry, rng *rand.Rand) (board.Move, bool) {
	legal := pos.GenerateLegalMoves()

	candidates := entries[:0:0]
	total := 0
	for _, e := range entries {
		if e.Weight <= 0 || !legal.Contains(e.Move) {
			continue
		}
		candidates = append(candidates, e)
		total += e.Weight
	}
	if total == 0 {
		return board.NoMove, false
	}

	r := rng.IntN(total)
	for _, e := range candidates {
		if r < e.Weight {
			return e.Move, true
		}
		r -= e.Weight
	}

	return candidates[0].Move, true
}
