package board

import (
	"errors"
	"fmt"
)

// Move packs a move into 16 bits. The low twelve bits hold the origin and
// destination squares, the top four the promotion piece and the move kind.
//
//	15-14 kind | 13-12 promotion (Knight..Queen) | 11-6 to | 5-0 from
type Move uint16

// MoveKind tells MakeMove how to apply a move beyond a plain from-to transfer.
type MoveKind uint8

const (
	KindNormal MoveKind = iota
	KindPromotion
	KindEnPassant
	KindCastling
)

const (
	squareMask = 0x3F
	toShift    = 6
	promoShift = 12
	kindShift  = 14
)

// NoMove is the zero move; a1a1 can never be generated.
const NoMove Move = 0

func encodeMove(from, to Square, kind MoveKind, promo PieceType) Move {
	return Move(from) | Move(to)<<toShift | Move(promo-Knight)<<promoShift | Move(kind)<<kindShift
}

// NewMove returns a plain move or capture.
func NewMove(from, to Square) Move {
	return encodeMove(from, to, KindNormal, Knight)
}

// NewPromotion returns a pawn move promoting to promo (Knight..Queen).
func NewPromotion(from, to Square, promo PieceType) Move {
	return encodeMove(from, to, KindPromotion, promo)
}

// NewEnPassant returns an en passant capture landing on to.
func NewEnPassant(from, to Square) Move {
	return encodeMove(from, to, KindEnPassant, Knight)
}

// NewCastling returns a castling move written as the king's two-square step.
func NewCastling(from, to Square) Move {
	return encodeMove(from, to, KindCastling, Knight)
}

func (m Move) From() Square { return Square(m & squareMask) }

func (m Move) To() Square { return Square(m >> toShift & squareMask) }

func (m Move) Kind() MoveKind { return MoveKind(m >> kindShift) }

// Promotion is only meaningful when IsPromotion reports true.
func (m Move) Promotion() PieceType {
	return Knight + PieceType(m>>promoShift&3)
}

func (m Move) IsPromotion() bool { return m.Kind() == KindPromotion }

func (m Move) IsCastling() bool { return m.Kind() == KindCastling }

func (m Move) IsEnPassant() bool { return m.Kind() == KindEnPassant }

// IsCapture reports whether m removes an enemy piece from pos.
func (m Move) IsCapture(pos *Position) bool {
	return m.IsEnPassant() || pos.Board[m.To()] != NoPiece
}

// String renders coordinate notation: "e2e4", "e7e8q", "0000" for NoMove.
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	buf := make([]byte, 0, 5)
	buf = append(buf, m.From().String()...)
	buf = append(buf, m.To().String()...)
	if m.IsPromotion() {
		buf = append(buf, NewPiece(m.Promotion(), Black).String()...)
	}
	return string(buf)
}

// ErrInvalidMove is returned for malformed or illegal coordinate moves.
var ErrInvalidMove = errors.New("invalid move")

// ParseMove parses a coordinate move ("e2e4", "e7e8q") and resolves it
// against the legal moves of pos, so the result carries the right kind.
// A promoting move without a promotion letter resolves to a queen.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}

	from, err := ParseSquare(s[:2])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %w", ErrInvalidMove, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %w", ErrInvalidMove, err)
	}

	promo := NoPieceType
	if len(s) == 5 {
		if promo = PromotionFromChar(s[4]); promo == NoPieceType {
			return NoMove, fmt.Errorf("%w: bad promotion piece %q", ErrInvalidMove, s[4])
		}
	}

	m, ok := pos.FindMove(from, to, promo)
	if !ok {
		return NoMove, fmt.Errorf("%w: %s is not legal", ErrInvalidMove, s)
	}
	return m, nil
}

// maxMoves bounds the pseudo-legal moves of any reachable position.
const maxMoves = 256

// MoveList is a fixed-capacity move buffer filled by the generators.
type MoveList struct {
	moves [maxMoves]Move
	n     int
}

func NewMoveList() *MoveList {
	return new(MoveList)
}

func (ml *MoveList) Add(m Move) {
	ml.moves[ml.n] = m
	ml.n++
}

func (ml *MoveList) Len() int { return ml.n }

func (ml *MoveList) Get(i int) Move { return ml.moves[i] }

func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

func (ml *MoveList) Contains(m Move) bool {
	for _, x := range ml.Slice() {
		if x == m {
			return true
		}
	}
	return false
}

// Slice aliases the list's backing array.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.n]
}

// UndoInfo stores the state MakeMove cannot recompute from the move alone.
type UndoInfo struct {
	Captured       Piece // NoPiece if the move was not a capture
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
}
