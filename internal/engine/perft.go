package engine

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/samumartinf/taures/internal/board"
)

// DivideEntry is the leaf count below one root move.
type DivideEntry struct {
	Move  board.Move
	Nodes uint64
}

// Perft counts the leaf nodes of the legal move tree to the given depth.
// pos is restored before returning.
func Perft(pos *board.Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		nodes += Perft(pos, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}

// Divide runs perft below every root move on its own copy of the position,
// in parallel. Entries are sorted by move string. The total equals
// Perft(pos, depth).
func Divide(ctx context.Context, pos *board.Position, depth int) ([]DivideEntry, uint64, error) {
	if depth < 1 {
		return nil, 1, nil
	}

	moves := pos.GenerateLegalMoves()
	entries := make([]DivideEntry, moves.Len())

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		child := pos.Copy()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			child.MakeMove(m)
			entries[i] = DivideEntry{Move: m, Nodes: Perft(child, depth-1)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	sort.Slice(entries, func(a, b int) bool {
		return entries[a].Move.String() < entries[b].Move.String()
	})

	var total uint64
	for _, e := range entries {
		total += e.Nodes
	}
	return entries, total, nil
}
