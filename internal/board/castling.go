package board

import "fmt"

// CastlingRights is a set of the four castling options, one bit each.
type CastlingRights uint8

const (
	WhiteKingSideCastle CastlingRights = 1 << iota
	WhiteQueenSideCastle
	BlackKingSideCastle
	BlackQueenSideCastle

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// castle describes one castling option: where king and rook start and land,
// and the square the king crosses.
type castle struct {
	right   CastlingRights
	symbol  byte
	color   Color
	king    Square
	kingTo  Square
	rook    Square
	rookTo  Square
	transit Square
}

// Ordered as the rights appear in a FEN string.
var castles = [4]castle{
	{WhiteKingSideCastle, 'K', White, E1, G1, H1, F1, F1},
	{WhiteQueenSideCastle, 'Q', White, E1, C1, A1, D1, D1},
	{BlackKingSideCastle, 'k', Black, E8, G8, H8, F8, F8},
	{BlackQueenSideCastle, 'q', Black, E8, C8, A8, D8, D8},
}

// castlingMask[sq] is ANDed into the rights whenever a move starts or ends
// on sq, so touching a king or rook home square clears what depends on it.
var castlingMask = func() (mask [64]CastlingRights) {
	for sq := range mask {
		mask[sq] = AllCastling
	}
	for _, c := range castles {
		mask[c.king] &^= c.right
		mask[c.rook] &^= c.right
	}
	return mask
}()

// String renders the FEN castling field ("KQkq", "Kq", "-").
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	buf := make([]byte, 0, len(castles))
	for _, c := range castles {
		if cr&c.right != 0 {
			buf = append(buf, c.symbol)
		}
	}
	return string(buf)
}

// parseCastling reads the FEN castling field.
func parseCastling(field string) (CastlingRights, error) {
	if field == "-" {
		return NoCastling, nil
	}
	var cr CastlingRights
next:
	for i := 0; i < len(field); i++ {
		for _, c := range castles {
			if field[i] == c.symbol && cr&c.right == 0 {
				cr |= c.right
				continue next
			}
		}
		return NoCastling, fmt.Errorf("%w: castling field %q", ErrInvalidFEN, field)
	}
	return cr, nil
}

// castleRookSquares returns the rook's origin and destination for a castling king move.
func castleRookSquares(kingTo Square) (from, to Square) {
	for _, c := range castles {
		if c.kingTo == kingTo {
			return c.rook, c.rookTo
		}
	}
	return NoSquare, NoSquare
}
