// Package board implements the chess board: bitboards and precomputed attack
// tables, the dual mailbox/bitboard position, move generation with make/unmake,
// and FEN/square notation.
package board

import (
	"errors"
	"fmt"
)

// ErrInvalidSquare reports a bad square name or index.
var ErrInvalidSquare = errors.New("invalid square")

// Square indexes the board rank by rank from a1 (0) to h8 (63).
type Square uint8

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

func (sq Square) File() int { return int(sq % 8) }

func (sq Square) Rank() int { return int(sq / 8) }

// NewSquare maps 0-based file and rank to a square.
func NewSquare(file, rank int) Square {
	return Square(file + 8*rank)
}

// IsValid reports whether sq is on the board.
func (sq Square) IsValid() bool { return sq < NoSquare }

// String returns "a1".."h8", or "-" for NoSquare.
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// ParseSquare reads a lowercase square name such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) == 2 && 'a' <= s[0] && s[0] <= 'h' && '1' <= s[1] && s[1] <= '8' {
		return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
	}
	return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
}

// SquareName returns the name of a square index in [0, 64).
func SquareName(index int) (string, error) {
	if index < 0 || index >= int(NoSquare) {
		return "", fmt.Errorf("%w: index %d", ErrInvalidSquare, index)
	}
	return Square(index).String(), nil
}
