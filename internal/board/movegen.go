package board

// GenerateLegalMoves generates all legal moves for the position.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	return p.filterLegalMoves(ml)
}

// GeneratePseudoLegalMoves generates all pseudo-legal moves (may leave king in check).
//
// Order is fixed: pawns, knights, bishops, rooks, queens, king, castling.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	return ml
}

// PseudoLegalMovesFrom returns the pseudo-legal moves of the piece on sq.
func (p *Position) PseudoLegalMovesFrom(sq Square) *MoveList {
	return p.GeneratePseudoLegalMoves().from(sq)
}

// LegalMovesFrom returns the legal moves of the piece on sq.
func (p *Position) LegalMovesFrom(sq Square) *MoveList {
	return p.GenerateLegalMoves().from(sq)
}

// from keeps the moves whose origin is sq.
func (ml *MoveList) from(sq Square) *MoveList {
	out := NewMoveList()
	for i := 0; i < ml.n; i++ {
		if ml.moves[i].From() == sq {
			out.Add(ml.moves[i])
		}
	}
	return out
}

// FindMove resolves a (from, to, promotion) triple to the legal move with the
// matching flag. promo is ignored for non-promoting moves; NoPieceType on a
// promoting move selects the queen.
func (p *Position) FindMove(from, to Square, promo PieceType) (Move, bool) {
	if !from.IsValid() || !to.IsValid() {
		return NoMove, false
	}
	if promo == NoPieceType {
		promo = Queen
	}
	ml := p.LegalMovesFrom(from)
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if m.To() != to {
			continue
		}
		if m.IsPromotion() && m.Promotion() != promo {
			continue
		}
		return m, true
	}
	return NoMove, false
}

// generateAllMoves generates all pseudo-legal moves.
func (p *Position) generateAllMoves(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	occupied := p.AllOccupied
	targets := ^p.Occupied[us]

	p.generatePawnMoves(ml, us, p.Occupied[them], occupied)

	for pt := Knight; pt <= King; pt++ {
		pieces := p.Pieces[us][pt]
		for pieces != 0 {
			from := pieces.PopLSB()
			attacks := Attacks(pt, us, from, occupied) & targets
			for attacks != 0 {
				ml.Add(NewMove(from, attacks.PopLSB()))
			}
		}
	}

	p.generateCastlingMoves(ml, us)
}

// generatePawnMoves generates all pawn moves.
func (p *Position) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	forward, doubleFrom, promotionRank := North, Rank3, Rank8
	if us == Black {
		forward, doubleFrom, promotionRank = South, Rank6, Rank1
	}

	// Single pushes that land on the third (sixth) rank may push again
	push1 := pawns.Shift(forward) & empty
	push2 := (push1 & doubleFrom).Shift(forward) & empty
	captureW := pawns.Shift(forward+West) & enemies
	captureE := pawns.Shift(forward+East) & enemies

	addPawnTargets(ml, push1&^promotionRank, forward)
	addPawnTargets(ml, push2, 2*forward)
	addPawnTargets(ml, captureW&^promotionRank, forward+West)
	addPawnTargets(ml, captureE&^promotionRank, forward+East)

	addPromotions(ml, push1&promotionRank, forward)
	addPromotions(ml, captureW&promotionRank, forward+West)
	addPromotions(ml, captureE&promotionRank, forward+East)

	if p.EnPassant != NoSquare {
		epAttackers := pawnAttacks[us.Other()][p.EnPassant] & pawns
		for epAttackers != 0 {
			ml.Add(NewEnPassant(epAttackers.PopLSB(), p.EnPassant))
		}
	}
}

// addPawnTargets adds one move per target; delta is to-from.
func addPawnTargets(ml *MoveList, targets Bitboard, delta Direction) {
	for targets != 0 {
		to := targets.PopLSB()
		ml.Add(NewMove(to-Square(delta), to))
	}
}

// addPromotions adds the four promotions per target, queen first.
func addPromotions(ml *MoveList, targets Bitboard, delta Direction) {
	for targets != 0 {
		to := targets.PopLSB()
		from := to - Square(delta)
		ml.Add(NewPromotion(from, to, Queen))
		ml.Add(NewPromotion(from, to, Rook))
		ml.Add(NewPromotion(from, to, Bishop))
		ml.Add(NewPromotion(from, to, Knight))
	}
}

// generateCastlingMoves generates castling moves.
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()
	king := NewPiece(King, us)
	rook := NewPiece(Rook, us)

	for _, cs := range castles {
		if cs.color != us || p.CastlingRights&cs.right == 0 {
			continue
		}
		if p.Board[cs.king] != king || p.Board[cs.rook] != rook {
			continue
		}
		if Between(cs.king, cs.rook)&p.AllOccupied != 0 {
			continue
		}
		if p.IsSquareAttacked(cs.king, them) ||
			p.IsSquareAttacked(cs.transit, them) ||
			p.IsSquareAttacked(cs.kingTo, them) {
			continue
		}
		ml.Add(NewCastling(cs.king, cs.kingTo))
	}
}

// filterLegalMoves keeps the pseudo-legal moves that pass IsLegal.
func (p *Position) filterLegalMoves(ml *MoveList) *MoveList {
	legal := NewMoveList()
	for i := 0; i < ml.Len(); i++ {
		if m := ml.Get(i); p.IsLegal(m) {
			legal.Add(m)
		}
	}
	return legal
}

// IsLegal returns true if the pseudo-legal move does not leave the mover's
// king attacked. The move is made and unmade on p.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	undo := p.MakeMove(m)
	legal := !p.IsSquareAttacked(p.KingSquare(us), us.Other())
	p.UnmakeMove(m, undo)
	return legal
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	ml := p.GeneratePseudoLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the side to move is stalemated.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}
