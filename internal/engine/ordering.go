package engine

import (
	"github.com/samumartinf/taures/internal/board"
)

// Ordering bands. Every move in a band sorts ahead of every move in the
// bands below it.
const (
	TTMoveScore    = 10_000_000
	CaptureBase    = 1_000_000
	PromotionBase  = 900_000
	KillerScore1   = 800_000
	KillerScore2   = 700_000
	QuietMoveScore = 0
)

// mvvLva ranks a capture by victim first and cheaper attacker second.
func mvvLva(victim, attacker board.PieceType) int {
	if victim == board.King {
		return 0
	}
	return 10*(int(victim)+1) + 5 - int(attacker)
}

// MoveOrderer holds the killer moves of one search.
type MoveOrderer struct {
	killers [MaxPly][2]board.Move // quiet moves that caused a cutoff, newest first
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets the killers for a new search.
func (mo *MoveOrderer) Clear() {
	mo.killers = [MaxPly][2]board.Move{}
}

// ScoreMoves assigns an ordering score to every move of the list.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, ttMove board.Move, scores []int) []int {
	scores = scores[:0]
	for i := 0; i < moves.Len(); i++ {
		scores = append(scores, mo.scoreMove(pos, moves.Get(i), ply, ttMove))
	}
	return scores
}

// scoreMove returns the ordering score for a single move.
func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, ttMove board.Move) int {
	if m == ttMove {
		return TTMoveScore
	}

	if m.IsCapture(pos) {
		victim := board.Pawn // en passant
		if !m.IsEnPassant() {
			victim = pos.PieceAt(m.To()).Type()
		}
		attacker := pos.PieceAt(m.From()).Type()
		score := CaptureBase + mvvLva(victim, attacker)*100
		if m.IsPromotion() {
			score += pieceValueMg[m.Promotion()] / 10
		}
		return score
	}

	if m.IsPromotion() {
		return PromotionBase + pieceValueMg[m.Promotion()]
	}

	if ply < MaxPly {
		if m == mo.killers[ply][0] {
			return KillerScore1
		}
		if m == mo.killers[ply][1] {
			return KillerScore2
		}
	}

	return QuietMoveScore
}

// AddKiller records a quiet move that caused a beta cutoff at ply.
func (mo *MoveOrderer) AddKiller(m board.Move, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// tieBreakKey orders equally scored moves by from square, then to square,
// then promotion piece.
func tieBreakKey(m board.Move) int {
	promo := 0
	if m.IsPromotion() {
		promo = int(m.Promotion())
	}
	return int(m.From())<<9 | int(m.To())<<3 | promo
}

// PickMove moves the best remaining move to index i (selection sort step).
// Higher scores come first; equal scores fall back to tieBreakKey, so the
// resulting order is total and does not depend on generation order.
func PickMove(moves *board.MoveList, scores []int, i int) {
	best := i
	for j := i + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] ||
			(scores[j] == scores[best] && tieBreakKey(moves.Get(j)) < tieBreakKey(moves.Get(best))) {
			best = j
		}
	}
	if best != i {
		moves.Swap(i, best)
		scores[i], scores[best] = scores[best], scores[i]
	}
}
