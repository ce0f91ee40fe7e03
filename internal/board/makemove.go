package board

import "fmt"

// epVictim returns the square of the pawn captured en passant on target.
func epVictim(target Square, us Color) Square {
	if us == White {
		return target - 8
	}
	return target + 8
}

// MakeMove applies a pseudo-legal move in place and returns the state needed
// to undo it. Legality is the caller's concern (see IsLegal).
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		Captured:       NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
	}

	us := p.SideToMove
	from := m.From()
	to := m.To()
	pt := p.Board[from].Type()

	// Castling and en passant keys are XORed out here and back in below
	p.Hash ^= zobrist.castling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobrist.enPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	switch m.Kind() {
	case KindEnPassant:
		undo.Captured = p.removePiece(epVictim(to, us))
		p.movePiece(from, to)
	case KindCastling:
		p.movePiece(from, to)
		rookFrom, rookTo := castleRookSquares(to)
		p.movePiece(rookFrom, rookTo)
	case KindPromotion:
		undo.Captured = p.removePiece(to)
		p.removePiece(from)
		p.putPiece(NewPiece(m.Promotion(), us), to)
	default:
		undo.Captured = p.removePiece(to)
		p.movePiece(from, to)
	}

	p.CastlingRights &= castlingMask[from] & castlingMask[to]
	p.Hash ^= zobrist.castling[p.CastlingRights]

	if pt == Pawn && (int(to)-int(from) == 16 || int(from)-int(to) == 16) {
		p.EnPassant = Square((int(from) + int(to)) / 2)
		p.Hash ^= zobrist.enPassant[p.EnPassant.File()]
	}

	if pt == Pawn || undo.Captured != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = us.Other()
	p.Hash ^= zobrist.black

	if Debug {
		p.mustBeConsistent("MakeMove", m)
	}
	return undo
}

// UnmakeMove reverts m using the state MakeMove returned. It is the exact
// inverse of MakeMove and does not rescan the board.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	us := p.SideToMove.Other()
	from := m.From()
	to := m.To()

	switch m.Kind() {
	case KindEnPassant:
		p.movePiece(to, from)
		p.putPiece(undo.Captured, epVictim(to, us))
	case KindCastling:
		rookFrom, rookTo := castleRookSquares(to)
		p.movePiece(rookTo, rookFrom)
		p.movePiece(to, from)
	case KindPromotion:
		p.removePiece(to)
		p.putPiece(NewPiece(Pawn, us), from)
		if undo.Captured != NoPiece {
			p.putPiece(undo.Captured, to)
		}
	default:
		p.movePiece(to, from)
		if undo.Captured != NoPiece {
			p.putPiece(undo.Captured, to)
		}
	}

	p.SideToMove = us
	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	if us == Black {
		p.FullMoveNumber--
	}

	if Debug {
		p.mustBeConsistent("UnmakeMove", m)
	}
}

func (p *Position) mustBeConsistent(op string, m Move) {
	if err := p.CheckInvariants(); err != nil {
		panic(fmt.Sprintf("%s %s: %v", op, m, err))
	}
}
