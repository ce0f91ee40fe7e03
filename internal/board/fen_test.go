package board

import (
	"errors"
	"testing"
)

func TestParseFENRejects(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"three-fields", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq"},
		{"seven-fields", StartFEN + " extra"},
		{"seven-ranks", "rnbqkbnr/pppppppp/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"short-rank", "rnbqkbnr/pppppppp/8/8/7/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"long-rank", "rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"unknown-piece", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBXKBNR w KQkq - 0 1"},
		{"bad-side", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1"},
		{"bad-castling", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkx - 0 1"},
		{"bad-ep-square", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1"},
		{"ep-wrong-rank", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e4 0 1"},
		{"negative-halfmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1"},
		{"halfmove-nan", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1"},
		{"fullmove-zero", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 0"},
		{"no-white-king", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQ1BNR w kq - 0 1"},
		{"two-black-kings", "rnbkkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"pawn-back-rank", "rnbqkbnP/pppppppp/8/8/8/8/PPPPPPP1/RNBQKBNR w KQkq - 0 1"},
		{"ep-no-victim", "4k3/8/8/3P4/8/8/8/4K3 w - e6 0 1"},
		{"ep-own-side-rank", "4k3/8/8/8/8/8/3P4/4K3 w - e3 0 1"},
		{"ep-target-occupied", "4k3/8/4n3/3Pp3/8/8/8/4K3 w - e6 0 1"},
		{"ep-origin-occupied", "4k3/4n3/8/3Pp3/8/8/8/4K3 w - e6 0 1"},
		{"ep-victim-is-own-pawn", "4k3/8/8/3PP3/8/8/8/4K3 w - e6 0 1"},
		{"opponent-in-check", "4k3/8/8/8/8/8/4R3/4K3 w - - 0 1"},
		{"opponent-in-check-by-pawn", "8/8/8/8/8/3k4/4P3/4K3 w - - 0 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if !errors.Is(err, ErrInvalidFEN) {
				t.Errorf("ParseFEN(%q) = %v, %v; want ErrInvalidFEN", tc.fen, pos, err)
			}
		})
	}
}

// Positions accepted by ParseFEN must never make generation or make/unmake
// fail, whatever en passant target the string carries.
func TestParseFENAcceptsReachableEnPassant(t *testing.T) {
	for _, fen := range []string{
		"4k3/8/8/3Pp3/8/8/8/4K3 w - e6 0 1",
		"4k3/8/8/8/3pP3/8/8/4K3 b - e3 0 1",
		"4k3/8/8/4p3/8/8/8/4K3 w - e6 0 1",
	} {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Errorf("ParseFEN(%q): %v", fen, err)
			continue
		}
		before := pos.ToFEN()
		legal := pos.GenerateLegalMoves()
		for i := 0; i < legal.Len(); i++ {
			m := legal.Get(i)
			undo := pos.MakeMove(m)
			if err := pos.CheckInvariants(); err != nil {
				t.Errorf("%s after %s: %v", fen, m, err)
			}
			pos.UnmakeMove(m, undo)
		}
		if after := pos.ToFEN(); after != before {
			t.Errorf("%s changed to %s", before, after)
		}
		t.Logf("%s: %d legal moves", fen, legal.Len())
	}
}

func TestParseFENFields(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/3pP3/8/8/8/R3K2R w Kq d6 5 42")
	if err != nil {
		t.Fatal(err)
	}
	if pos.SideToMove != White {
		t.Errorf("side = %s", pos.SideToMove)
	}
	if pos.CastlingRights != WhiteKingSideCastle|BlackQueenSideCastle {
		t.Errorf("castling = %s", pos.CastlingRights)
	}
	if pos.EnPassant != D6 {
		t.Errorf("en passant = %s", pos.EnPassant)
	}
	if pos.HalfMoveClock != 5 || pos.FullMoveNumber != 42 {
		t.Errorf("clocks = %d %d", pos.HalfMoveClock, pos.FullMoveNumber)
	}
	if pos.PieceAt(E5) != WhitePawn || pos.PieceAt(D5) != BlackPawn || pos.PieceAt(A8) != BlackRook {
		t.Errorf("placement = %s", pos.PlacementFEN())
	}
	if pos.KingSquare(White) != E1 || pos.KingSquare(Black) != E8 {
		t.Errorf("kings = %s %s", pos.KingSquare(White), pos.KingSquare(Black))
	}
}

func TestFourFieldFEN(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -")
	if err != nil {
		t.Fatal(err)
	}
	if got := pos.ToFEN(); got != StartFEN {
		t.Errorf("ToFEN() = %q, want %q", got, StartFEN)
	}
	if got := pos.PlacementFEN(); got != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR" {
		t.Errorf("PlacementFEN() = %q", got)
	}
}

func TestSquareNames(t *testing.T) {
	for i := 0; i < 64; i++ {
		name, err := SquareName(i)
		if err != nil {
			t.Fatalf("SquareName(%d): %v", i, err)
		}
		sq, err := ParseSquare(name)
		if err != nil || int(sq) != i {
			t.Errorf("ParseSquare(%q) = %d, %v; want %d", name, sq, err, i)
		}
	}

	if name, _ := SquareName(0); name != "a1" {
		t.Errorf("SquareName(0) = %q", name)
	}
	if name, _ := SquareName(63); name != "h8" {
		t.Errorf("SquareName(63) = %q", name)
	}

	for _, bad := range []int{-1, 64, 100} {
		if _, err := SquareName(bad); !errors.Is(err, ErrInvalidSquare) {
			t.Errorf("SquareName(%d) error = %v", bad, err)
		}
	}
	for _, bad := range []string{"", "e", "i1", "a0", "a9", "E4", "e44"} {
		if _, err := ParseSquare(bad); !errors.Is(err, ErrInvalidSquare) {
			t.Errorf("ParseSquare(%q) error = %v", bad, err)
		}
	}
}
