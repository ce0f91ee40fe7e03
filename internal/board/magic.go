package board

import "fmt"

// Magic bitboards for sliding piece attacks. Magic multipliers are searched at
// package init from a fixed seed, so the tables are identical on every run.

// Magic is the fancy-magic entry of one square.
type Magic struct {
	Mask   Bitboard
	Magic  uint64
	Shift  uint8  // 64 - popcount(Mask)
	Offset uint32 // first slot of the square in the shared table
}

var (
	bishopMagics [64]Magic
	rookMagics   [64]Magic

	// Fancy magic attack tables, one dense slice per square
	bishopTable [5248]Bitboard
	rookTable   [102400]Bitboard
)

const (
	bishopMagicSeed = 0x9E3779B97F4A7C15
	rookMagicSeed   = 0xD1B54A32D192ED03
)

// index maps an occupancy to a slot relative to the square's table offset.
func (m *Magic) index(occupied Bitboard) uint32 {
	return uint32((uint64(occupied&m.Mask) * m.Magic) >> m.Shift)
}

func initMagics() {
	findMagics(&bishopMagics, bishopTable[:], bishopMask, bishopAttacksSlow, bishopMagicSeed)
	findMagics(&rookMagics, rookTable[:], rookMask, rookAttacksSlow, rookMagicSeed)

	if err := verifyMagics(); err != nil {
		panic(err)
	}
}

// findMagics searches a collision-free multiplier for every square and fills
// the shared attack table. Two occupancies may share a slot only when they
// produce the same attack set.
func findMagics(magics *[64]Magic, table []Bitboard, maskFn func(Square) Bitboard,
	slow func(Square, Bitboard) Bitboard, seed uint64) {
	rng := newPRNG(seed)

	var occupancies, reference [4096]Bitboard
	var epoch [4096]int
	attempt := 0

	var offset uint32
	for sq := A1; sq <= H8; sq++ {
		mask := maskFn(sq)
		bits := mask.PopCount()
		size := 1 << bits

		// Carry-rippler enumeration of every subset of the mask
		var occ Bitboard
		for i := 0; i < size; i++ {
			occupancies[i] = occ
			reference[i] = slow(sq, occ)
			occ = (occ - mask) & mask
		}

		m := Magic{
			Mask:   mask,
			Shift:  uint8(64 - bits),
			Offset: offset,
		}
		entries := table[offset : offset+uint32(size)]

		for {
			candidate := rng.sparse()
			if Bitboard((uint64(mask)*candidate)>>56).PopCount() < 6 {
				continue
			}
			m.Magic = candidate
			attempt++

			ok := true
			for i := 0; i < size; i++ {
				idx := m.index(occupancies[i])
				if epoch[idx] < attempt {
					epoch[idx] = attempt
					entries[idx] = reference[i]
				} else if entries[idx] != reference[i] {
					ok = false
					break
				}
			}
			if ok {
				break
			}
		}

		magics[sq] = m
		offset += uint32(size)
	}
}

// verifyMagics re-enumerates every occupancy subset of every mask and checks
// the table lookup against ray casting.
func verifyMagics() error {
	for sq := A1; sq <= H8; sq++ {
		for _, slider := range []struct {
			name  string
			magic *Magic
			table []Bitboard
			slow  func(Square, Bitboard) Bitboard
		}{
			{"bishop", &bishopMagics[sq], bishopTable[:], bishopAttacksSlow},
			{"rook", &rookMagics[sq], rookTable[:], rookAttacksSlow},
		} {
			m := slider.magic
			var occ Bitboard
			for {
				got := slider.table[m.Offset+m.index(occ)]
				if want := slider.slow(sq, occ); got != want {
					return fmt.Errorf("%s magic collision on %s for occupancy %#016x", slider.name, sq, uint64(occ))
				}
				occ = (occ - m.Mask) & m.Mask
				if occ == 0 {
					break
				}
			}
		}
	}
	return nil
}

// Edge squares never block anything further along a ray, so the relevant
// occupancy masks leave them out. A rook keeps the edges of its own file
// and rank out as well.
func bishopMask(sq Square) Bitboard {
	return bishopAttacksSlow(sq, Empty) &^ (Rank1 | Rank8 | FileA | FileH)
}

func rookMask(sq Square) Bitboard {
	file := FileA << sq.File()
	rank := Rank1 << (8 * sq.Rank())
	return (file&^(Rank1|Rank8) | rank&^(FileA|FileH)) &^ SquareBB(sq)
}

// slide walks from sq in direction (df, dr) until the edge or the first blocker.
func slide(sq Square, occupied Bitboard, df, dr int) Bitboard {
	var attacks Bitboard
	for f, r := sq.File()+df, sq.Rank()+dr; f >= 0 && f <= 7 && r >= 0 && r <= 7; f, r = f+df, r+dr {
		s := SquareBB(NewSquare(f, r))
		attacks |= s
		if occupied&s != 0 {
			break
		}
	}
	return attacks
}

// bishopAttacksSlow and rookAttacksSlow cast rays; they seed and check the tables.
func bishopAttacksSlow(sq Square, occupied Bitboard) Bitboard {
	return slide(sq, occupied, 1, 1) | slide(sq, occupied, -1, 1) |
		slide(sq, occupied, 1, -1) | slide(sq, occupied, -1, -1)
}

func rookAttacksSlow(sq Square, occupied Bitboard) Bitboard {
	return slide(sq, occupied, 0, 1) | slide(sq, occupied, 0, -1) |
		slide(sq, occupied, 1, 0) | slide(sq, occupied, -1, 0)
}

// BishopAttacks and RookAttacks look up slider attacks for an occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &bishopMagics[sq]
	return bishopTable[m.Offset+m.index(occupied)]
}

func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &rookMagics[sq]
	return rookTable[m.Offset+m.index(occupied)]
}

// QueenAttacks is the union of both slider lookups.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}
