package board

import (
	"fmt"
	"strings"
)

// Position is a full game state. Pieces are kept in two views that always
// agree: the Board mailbox answers "what stands on sq" and the bitboards
// answer set queries. Only putPiece, removePiece and movePiece write them,
// and each keeps Hash in step.
type Position struct {
	Board       [64]Piece
	Pieces      [2][6]Bitboard // [Color][PieceType]
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // NoSquare when the last move was not a double push
	HalfMoveClock  int
	FullMoveNumber int

	Hash uint64
}

// NewPosition returns the initial position.
func NewPosition() *Position {
	p, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

// Copy returns an independent clone. Positions hold no pointers, so a value
// copy is deep.
func (p *Position) Copy() *Position {
	c := *p
	return &c
}

func (p *Position) PieceAt(sq Square) Piece { return p.Board[sq] }

// Occupancy returns every square holding a piece of color c.
func (p *Position) Occupancy(c Color) Bitboard { return p.Occupied[c] }

// KingSquare returns the king of c, or NoSquare on a kingless board.
func (p *Position) KingSquare(c Color) Square {
	return p.Pieces[c][King].LSB()
}

// InCheck reports whether the side to move's king is attacked.
func (p *Position) InCheck() bool {
	us := p.SideToMove
	k := p.KingSquare(us)
	return k != NoSquare && p.IsSquareAttacked(k, us.Other())
}

// toggle flips piece on the squares of mask in every bitboard view.
func (p *Position) toggle(piece Piece, mask Bitboard) {
	c := piece.Color()
	p.Pieces[c][piece.Type()] ^= mask
	p.Occupied[c] ^= mask
	p.AllOccupied ^= mask
}

// putPiece places piece on the empty square sq.
func (p *Position) putPiece(piece Piece, sq Square) {
	p.Board[sq] = piece
	p.toggle(piece, SquareBB(sq))
	p.Hash ^= zobrist.piece[piece][sq]
}

// removePiece clears sq and returns what stood there, NoPiece if it was empty.
func (p *Position) removePiece(sq Square) Piece {
	piece := p.Board[sq]
	if piece != NoPiece {
		p.Board[sq] = NoPiece
		p.toggle(piece, SquareBB(sq))
		p.Hash ^= zobrist.piece[piece][sq]
	}
	return piece
}

// movePiece transfers the piece on from to the empty square to.
func (p *Position) movePiece(from, to Square) {
	piece := p.Board[from]
	p.Board[from], p.Board[to] = NoPiece, piece
	p.toggle(piece, SquareBB(from)|SquareBB(to))
	p.Hash ^= zobrist.piece[piece][from] ^ zobrist.piece[piece][to]
}

// String draws the board from White's side followed by the state fields.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		row := make([]string, 8)
		for file := range row {
			row[file] = "."
			if piece := p.Board[NewSquare(file, rank)]; piece != NoPiece {
				row[file] = piece.String()
			}
		}
		fmt.Fprintf(&sb, "%d  %s\n", rank+1, strings.Join(row, " "))
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	for _, kv := range [][2]any{
		{"Side to move", p.SideToMove},
		{"Castling", p.CastlingRights},
		{"En passant", p.EnPassant},
		{"Half-move clock", p.HalfMoveClock},
		{"Full move", p.FullMoveNumber},
		{"Hash", fmt.Sprintf("%016x", p.Hash)},
	} {
		fmt.Fprintf(&sb, "%s: %v\n", kv[0], kv[1])
	}
	return sb.String()
}

// IsInsufficientMaterial reports a dead position: bare kings, or a single
// minor piece against a bare king.
func (p *Position) IsInsufficientMaterial() bool {
	w, b := &p.Pieces[White], &p.Pieces[Black]
	if w[Pawn]|w[Rook]|w[Queen]|b[Pawn]|b[Rook]|b[Queen] != 0 {
		return false
	}
	minors := (w[Knight] | w[Bishop] | b[Knight] | b[Bishop]).PopCount()
	return minors <= 1
}

// ComputeHash recomputes the Zobrist key from scratch; the incremental Hash
// must always equal it.
func (p *Position) ComputeHash() uint64 {
	h := zobrist.castling[p.CastlingRights]
	if p.SideToMove == Black {
		h ^= zobrist.black
	}
	if p.EnPassant != NoSquare {
		h ^= zobrist.enPassant[p.EnPassant.File()]
	}
	for sq, piece := range p.Board {
		if piece != NoPiece {
			h ^= zobrist.piece[piece][sq]
		}
	}
	return h
}
