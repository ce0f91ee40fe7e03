package board

import (
	"errors"
	"fmt"
)

// Debug enables a full consistency check after every MakeMove and
// UnmakeMove. A failed check panics.
var Debug = false

// ErrCorruptPosition is returned by CheckInvariants.
var ErrCorruptPosition = errors.New("corrupt position")

// CheckInvariants verifies that the mailbox and the bitboards agree, that the
// occupancy aggregates match, that each side has exactly one king and that the
// incremental hash equals a from-scratch recomputation.
func (p *Position) CheckInvariants() error {
	var occ [2]Bitboard
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			if occ[c]&bb != 0 || occ[c.Other()]&bb != 0 {
				return fmt.Errorf("%w: overlapping bitboards for %s %s", ErrCorruptPosition, c, pt)
			}
			occ[c] |= bb
		}
	}
	if occ[White] != p.Occupied[White] || occ[Black] != p.Occupied[Black] {
		return fmt.Errorf("%w: color occupancy out of sync", ErrCorruptPosition)
	}
	if occ[White]|occ[Black] != p.AllOccupied {
		return fmt.Errorf("%w: total occupancy out of sync", ErrCorruptPosition)
	}

	for sq := A1; sq <= H8; sq++ {
		piece := p.Board[sq]
		if piece == NoPiece {
			if p.AllOccupied.IsSet(sq) {
				return fmt.Errorf("%w: %s empty in mailbox but occupied", ErrCorruptPosition, sq)
			}
			continue
		}
		if !p.Pieces[piece.Color()][piece.Type()].IsSet(sq) {
			return fmt.Errorf("%w: %s holds %s in mailbox only", ErrCorruptPosition, sq, piece)
		}
	}

	for c := White; c <= Black; c++ {
		if n := p.Pieces[c][King].PopCount(); n != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrCorruptPosition, c, n)
		}
	}

	if h := p.ComputeHash(); h != p.Hash {
		return fmt.Errorf("%w: hash %016x, recomputed %016x", ErrCorruptPosition, p.Hash, h)
	}
	return nil
}
