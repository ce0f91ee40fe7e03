package board

// Leaper and line tables, filled once at init.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]
	pawnPushes    [2][64]Bitboard

	betweenBB [64][64]Bitboard
	lineBB    [64][64]Bitboard
)

var (
	knightSteps = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8][2]int{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}
)

func init() {
	for sq := A1; sq <= H8; sq++ {
		knightAttacks[sq] = leap(sq, knightSteps[:])
		kingAttacks[sq] = leap(sq, kingSteps[:])
		pawnAttacks[White][sq] = leap(sq, [][2]int{{-1, 1}, {1, 1}})
		pawnAttacks[Black][sq] = leap(sq, [][2]int{{-1, -1}, {1, -1}})
		pawnPushes[White][sq] = leap(sq, [][2]int{{0, 1}})
		pawnPushes[Black][sq] = leap(sq, [][2]int{{0, -1}})
	}
	initMagics()
	initLines()
}

// leap collects the on-board squares reached from sq by each (file, rank) step.
func leap(sq Square, steps [][2]int) Bitboard {
	var bb Bitboard
	for _, s := range steps {
		f, r := sq.File()+s[0], sq.Rank()+s[1]
		if f >= 0 && f < 8 && r >= 0 && r < 8 {
			bb |= SquareBB(NewSquare(f, r))
		}
	}
	return bb
}

// initLines needs the slider tables, so it runs after initMagics.
func initLines() {
	for a := A1; a <= H8; a++ {
		bbA := SquareBB(a)
		for b := A1; b <= H8; b++ {
			if a == b {
				continue
			}
			bbB := SquareBB(b)
			for _, slider := range [2]func(Square, Bitboard) Bitboard{BishopAttacks, RookAttacks} {
				if slider(a, Empty)&bbB == 0 {
					continue
				}
				betweenBB[a][b] = slider(a, bbB) & slider(b, bbA)
				lineBB[a][b] = slider(a, Empty)&slider(b, Empty) | bbA | bbB
			}
		}
	}
}

// Between returns the squares strictly between a and b, or Empty if they
// do not share a rank, file or diagonal.
func Between(a, b Square) Bitboard { return betweenBB[a][b] }

// Line returns the whole rank, file or diagonal through a and b, or Empty if
// they are not aligned.
func Line(a, b Square) Bitboard { return lineBB[a][b] }

func KnightAttacks(sq Square) Bitboard { return knightAttacks[sq] }

func KingAttacks(sq Square) Bitboard { return kingAttacks[sq] }

// PawnAttacks returns the two (or one, on an edge file) squares a pawn of
// color c on sq captures on.
func PawnAttacks(sq Square, c Color) Bitboard { return pawnAttacks[c][sq] }

// PawnPushes returns the single-step target of a pawn of color c on sq.
func PawnPushes(sq Square, c Color) Bitboard { return pawnPushes[c][sq] }

// Attacks returns the squares attacked by a piece of type pt and color c on sq,
// given the board occupancy. Color only matters for pawns.
func Attacks(pt PieceType, c Color, sq Square, occupied Bitboard) Bitboard {
	switch pt {
	case Pawn:
		return pawnAttacks[c][sq]
	case Knight:
		return knightAttacks[sq]
	case Bishop:
		return BishopAttacks(sq, occupied)
	case Rook:
		return RookAttacks(sq, occupied)
	case Queen:
		return QueenAttacks(sq, occupied)
	case King:
		return kingAttacks[sq]
	}
	return Empty
}

// IsSquareAttacked reports whether any piece of color by attacks sq. Each
// piece type is probed in reverse from sq, so no move list is built.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	them := &p.Pieces[by]
	occ := p.AllOccupied
	return pawnAttacks[by.Other()][sq]&them[Pawn] != 0 ||
		knightAttacks[sq]&them[Knight] != 0 ||
		kingAttacks[sq]&them[King] != 0 ||
		BishopAttacks(sq, occ)&(them[Bishop]|them[Queen]) != 0 ||
		RookAttacks(sq, occ)&(them[Rook]|them[Queen]) != 0
}
