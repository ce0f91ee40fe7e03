package board

import (
	"fmt"
	"strings"
)

const sanPieceLetters = "PNBRQK"

// ToSAN converts a legal move to Standard Algebraic Notation.
// pos is left unchanged.
func (m Move) ToSAN(pos *Position) string {
	if m == NoMove {
		return "-"
	}

	from := m.From()
	to := m.To()
	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return m.String()
	}

	var sb strings.Builder
	pt := piece.Type()

	switch {
	case m.IsCastling() && to > from:
		sb.WriteString("O-O")
	case m.IsCastling():
		sb.WriteString("O-O-O")
	default:
		if pt != Pawn {
			sb.WriteByte(sanPieceLetters[pt])
			sb.WriteString(disambiguation(pos, m, pt))
		}
		if m.IsCapture(pos) {
			if pt == Pawn {
				sb.WriteByte('a' + byte(from.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte(sanPieceLetters[m.Promotion()])
		}
	}

	undo := pos.MakeMove(m)
	if pos.InCheck() {
		if pos.HasLegalMoves() {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}
	pos.UnmakeMove(m, undo)

	return sb.String()
}

// disambiguation returns the origin file, rank or square needed when another
// piece of the same type can reach the same destination.
func disambiguation(pos *Position, m Move, pt PieceType) string {
	from := m.From()
	pieces := pos.Pieces[pos.SideToMove][pt]

	ambiguous, sameFile, sameRank := false, false, false
	legal := pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		other := legal.Get(i)
		if other.To() != m.To() || other.From() == from || !pieces.IsSet(other.From()) {
			continue
		}
		ambiguous = true
		sameFile = sameFile || other.From().File() == from.File()
		sameRank = sameRank || other.From().Rank() == from.Rank()
	}

	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(rune('a' + from.File()))
	case !sameRank:
		return string(rune('1' + from.Rank()))
	}
	return from.String()
}

// ParseSAN resolves a SAN string ("Nf3", "exd5", "O-O", "e8=Q+") to a legal move of pos.
func ParseSAN(s string, pos *Position) (Move, error) {
	orig := s
	s = strings.TrimRight(strings.TrimSpace(s), "+#!?")

	legal := pos.GenerateLegalMoves()

	if s == "O-O" || s == "0-0" || s == "O-O-O" || s == "0-0-0" {
		kingSide := len(s) == 3
		for i := 0; i < legal.Len(); i++ {
			m := legal.Get(i)
			if m.IsCastling() && (m.To() > m.From()) == kingSide {
				return m, nil
			}
		}
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, orig)
	}

	promo := NoPieceType
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		if idx+1 < len(s) {
			promo = PromotionFromChar(s[idx+1])
		}
		if promo == NoPieceType {
			return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, orig)
		}
		s = s[:idx]
	}

	isCapture := strings.IndexByte(s, 'x') >= 0
	s = strings.ReplaceAll(s, "x", "")

	pt := Pawn
	if len(s) > 0 {
		if i := strings.IndexByte(sanPieceLetters[1:], s[0]); i >= 0 {
			pt = PieceType(i + 1)
			s = s[1:]
		}
	}

	if len(s) < 2 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, orig)
	}
	dest, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, orig)
	}

	fileHint, rankHint := -1, -1
	for _, c := range s[:len(s)-2] {
		switch {
		case c >= 'a' && c <= 'h':
			fileHint = int(c - 'a')
		case c >= '1' && c <= '8':
			rankHint = int(c - '1')
		default:
			return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, orig)
		}
	}

	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		from := m.From()
		switch {
		case m.To() != dest || m.IsCastling():
		case pos.PieceAt(from).Type() != pt:
		case fileHint >= 0 && from.File() != fileHint:
		case rankHint >= 0 && from.Rank() != rankHint:
		case isCapture && !m.IsCapture(pos):
		case m.IsPromotion() != (promo != NoPieceType):
		case m.IsPromotion() && m.Promotion() != promo:
		default:
			return m, nil
		}
	}

	return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, orig)
}

// MovesToSAN converts a line of legal moves played from pos to SAN.
func MovesToSAN(pos *Position, moves []Move) []string {
	result := make([]string, len(moves))
	p := pos.Copy()

	for i, m := range moves {
		result[i] = m.ToSAN(p)
		p.MakeMove(m)
	}

	return result
}
