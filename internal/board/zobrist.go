package board

// zobristKeys holds the random keys a position hash is built from: one per
// piece and square, one per castling state (including no rights), one per en
// passant file and one for Black to move.
type zobristKeys struct {
	piece     [NoPiece][64]uint64
	castling  [16]uint64
	enPassant [8]uint64
	black     uint64
}

// zobrist is written once by init and read-only afterwards.
var zobrist zobristKeys

const zobristSeed = 0x98F107A2BEEF1234

func init() {
	rng := newPRNG(zobristSeed)

	for p := WhitePawn; p < NoPiece; p++ {
		for sq := range zobrist.piece[p] {
			zobrist.piece[p][sq] = rng.next()
		}
	}
	for i := range zobrist.castling {
		zobrist.castling[i] = rng.next()
	}
	for i := range zobrist.enPassant {
		zobrist.enPassant[i] = rng.next()
	}
	zobrist.black = rng.next()
}

// prng is a xorshift64* generator. It feeds both the Zobrist keys and the
// magic number search, so every table is the same on every run.
type prng uint64

func newPRNG(seed uint64) *prng {
	r := prng(seed)
	return &r
}

func (r *prng) next() uint64 {
	x := uint64(*r)
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	*r = prng(x)
	return x * 0x2545F4914F6CDD1D
}

// sparse returns a number with about one bit in eight set.
func (r *prng) sparse() uint64 {
	return r.next() & r.next() & r.next()
}
