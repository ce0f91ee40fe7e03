package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN is wrapped by every ParseFEN error.
var ErrInvalidFEN = errors.New("invalid FEN")

// ParseFEN builds a Position from a FEN string. The two move counters may be
// omitted (EPD style), in which case they default to 0 and 1.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if n := len(fields); n < 4 || n > 6 {
		return nil, fmt.Errorf("%w: need 4 to 6 fields, got %d", ErrInvalidFEN, n)
	}
	// Pad the optional counters so every field can be read by index.
	fields = append(fields, "0", "1")[:6]

	p := &Position{EnPassant: NoSquare}
	for sq := range p.Board {
		p.Board[sq] = NoPiece
	}

	if err := p.setPlacement(fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w":
		p.SideToMove = White
	case "b":
		p.SideToMove = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}

	cr, err := parseCastling(fields[2])
	if err != nil {
		return nil, err
	}
	p.CastlingRights = cr

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%w: en passant square: %w", ErrInvalidFEN, err)
		}
		if r := sq.Rank(); r != 2 && r != 5 {
			return nil, fmt.Errorf("%w: en passant square %s not on rank 3 or 6", ErrInvalidFEN, sq)
		}
		p.EnPassant = sq
	}

	if p.HalfMoveClock, err = strconv.Atoi(fields[4]); err != nil || p.HalfMoveClock < 0 {
		return nil, fmt.Errorf("%w: half-move clock %q", ErrInvalidFEN, fields[4])
	}
	if p.FullMoveNumber, err = strconv.Atoi(fields[5]); err != nil || p.FullMoveNumber < 1 {
		return nil, fmt.Errorf("%w: full-move number %q", ErrInvalidFEN, fields[5])
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	p.Hash = p.ComputeHash()
	return p, nil
}

// setPlacement fills the board from the first FEN field, rank 8 first.
func (p *Position) setPlacement(field string) error {
	rows := strings.Split(field, "/")
	if len(rows) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(rows))
	}

	for i, row := range rows {
		rank, file := 7-i, 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, rank+1)
			}
			if '1' <= ch && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			piece := PieceFromChar(ch)
			if piece == NoPiece {
				return fmt.Errorf("%w: piece character %q", ErrInvalidFEN, ch)
			}
			p.putPiece(piece, NewSquare(file, rank))
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, rank+1, file)
		}
	}
	return nil
}

// validate rejects states no game can reach: a missing or extra king, a pawn
// on a back rank, the side not to move in check, or an en passant target
// that no double push just created.
func (p *Position) validate() error {
	for _, c := range [2]Color{White, Black} {
		if n := p.Pieces[c][King].PopCount(); n != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrInvalidFEN, c, n)
		}
	}
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fmt.Errorf("%w: pawn on first or last rank", ErrInvalidFEN)
	}

	us, them := p.SideToMove, p.SideToMove.Other()
	if p.IsSquareAttacked(p.KingSquare(them), us) {
		return fmt.Errorf("%w: %s is in check but not to move", ErrInvalidFEN, them)
	}

	if ep := p.EnPassant; ep != NoSquare {
		wantRank, from := 5, ep+8
		if us == Black {
			wantRank, from = 2, ep-8
		}
		switch {
		case ep.Rank() != wantRank:
			return fmt.Errorf("%w: en passant square %s with %s to move", ErrInvalidFEN, ep, us)
		case p.Board[ep] != NoPiece || p.Board[from] != NoPiece:
			return fmt.Errorf("%w: en passant square %s is not behind an empty path", ErrInvalidFEN, ep)
		case p.Board[epVictim(ep, us)] != NewPiece(Pawn, them):
			return fmt.Errorf("%w: no %s pawn in front of en passant square %s", ErrInvalidFEN, them, ep)
		}
	}
	return nil
}

// PlacementFEN returns only the piece placement field.
func (p *Position) PlacementFEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		gap := 0
		for file := 0; file < 8; file++ {
			piece := p.Board[NewSquare(file, rank)]
			if piece == NoPiece {
				gap++
				continue
			}
			if gap > 0 {
				sb.WriteByte(byte('0' + gap))
				gap = 0
			}
			sb.WriteString(piece.String())
		}
		if gap > 0 {
			sb.WriteByte(byte('0' + gap))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// ToFEN returns the full six-field FEN of the position.
func (p *Position) ToFEN() string {
	side := "w"
	if p.SideToMove == Black {
		side = "b"
	}
	return fmt.Sprintf("%s %s %s %s %d %d", p.PlacementFEN(), side,
		p.CastlingRights, p.EnPassant, p.HalfMoveClock, p.FullMoveNumber)
}
