package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a set of squares: bit i stands for square i, so a1 is bit 0,
// h1 bit 7, a8 bit 56 and h8 bit 63.
type Bitboard uint64

const (
	FileA Bitboard = 0x0101010101010101
	FileB          = FileA << 1
	FileC          = FileA << 2
	FileD          = FileA << 3
	FileE          = FileA << 4
	FileF          = FileA << 5
	FileG          = FileA << 6
	FileH          = FileA << 7

	Rank1 Bitboard = 0xFF
	Rank2          = Rank1 << 8
	Rank3          = Rank1 << 16
	Rank4          = Rank1 << 24
	Rank5          = Rank1 << 32
	Rank6          = Rank1 << 40
	Rank7          = Rank1 << 48
	Rank8          = Rank1 << 56

	Empty    Bitboard = 0
	Universe          = ^Empty

	NotFileA = ^FileA
	NotFileH = ^FileH
)

// Direction is a one-square step, as the change it makes to a square index.
type Direction int

const (
	North     Direction = 8
	South     Direction = -8
	East      Direction = 1
	West      Direction = -1
	NorthEast           = North + East
	NorthWest           = North + West
	SouthEast           = South + East
	SouthWest           = South + West
)

// SquareBB returns the set holding only sq.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

// IsSet reports whether sq is in the set.
func (b Bitboard) IsSet(sq Square) bool {
	return b>>sq&1 != 0
}

// PopCount returns the number of squares in the set.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the lowest square of the set, NoSquare if it is empty.
func (b Bitboard) LSB() Square {
	if b == Empty {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB removes the lowest square from the set and returns it.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// Shift moves every square one step in direction d. Squares stepping off the
// board are dropped; east and west steps never wrap between the a and h files.
func (b Bitboard) Shift(d Direction) Bitboard {
	switch d {
	case North:
		return b << 8
	case South:
		return b >> 8
	case East:
		return b << 1 & NotFileA
	case West:
		return b >> 1 & NotFileH
	case NorthEast:
		return b << 9 & NotFileA
	case NorthWest:
		return b << 7 & NotFileH
	case SouthEast:
		return b >> 7 & NotFileA
	case SouthWest:
		return b >> 9 & NotFileH
	}
	return Empty
}

// Squares lists the squares of the set in ascending order.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.PopCount())
	for b != Empty {
		squares = append(squares, b.PopLSB())
	}
	return squares
}

// String draws the set as an 8x8 grid, rank 8 at the top.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		row := []byte("  . . . . . . . .\n")
		row[0] = byte('1' + rank)
		for file := 0; file < 8; file++ {
			if b.IsSet(NewSquare(file, rank)) {
				row[2+2*file] = 'x'
			}
		}
		sb.Write(row)
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}
