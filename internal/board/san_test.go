package board

import (
	"errors"
	"testing"
)

func TestSANRoundTrip(t *testing.T) {
	tests := []struct {
		fen  string
		move string // coordinate form
		san  string
	}{
		{StartFEN, "e2e4", "e4"},
		{StartFEN, "g1f3", "Nf3"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", "O-O"},
		{"r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8c8", "O-O-O"},
		{"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2", "e4d5", "exd5"},
		{"4k3/1P6/8/8/8/8/8/4K3 w - - 0 1", "b7b8q", "b8=Q+"},
		{"4k3/1P6/8/8/8/8/8/4K3 w - - 0 1", "b7b8n", "b8=N"},
		// Rooks on a1 and f1 both reach c1
		{"1k6/8/8/8/8/8/8/R4R1K w - - 0 1", "a1c1", "Rac1"},
		{"7k/6pp/8/8/8/8/R7/KR6 w - - 0 1", "b1b8", "Rb8#"},
		// Knights on b1 and f1 both reach d2
		{"4k3/8/8/8/8/8/8/1N2KN2 w - - 0 1", "b1d2", "Nbd2"},
		// Rooks on a1 and a5 both reach a3
		{"4k3/8/8/R7/8/8/8/R3K3 w - - 0 1", "a1a3", "R1a3"},
	}

	for _, tc := range tests {
		t.Run(tc.san, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			m, err := ParseMove(tc.move, pos)
			if err != nil {
				t.Fatalf("ParseMove(%q): %v", tc.move, err)
			}
			fen := pos.ToFEN()
			if got := m.ToSAN(pos); got != tc.san {
				t.Errorf("ToSAN(%s) = %q, want %q", tc.move, got, tc.san)
			}
			if pos.ToFEN() != fen {
				t.Errorf("ToSAN changed the position")
			}
			back, err := ParseSAN(tc.san, pos)
			if err != nil || back != m {
				t.Errorf("ParseSAN(%q) = %v, %v; want %v", tc.san, back, err, m)
			}
		})
	}
}

func TestParseSANRejects(t *testing.T) {
	pos := NewPosition()
	for _, s := range []string{"", "e5", "Nf6", "O-O", "Ke2", "e8=Q", "Qx", "Zf3"} {
		if _, err := ParseSAN(s, pos); !errors.Is(err, ErrInvalidMove) {
			t.Errorf("ParseSAN(%q) error = %v, want ErrInvalidMove", s, err)
		}
	}
}

func TestMovesToSAN(t *testing.T) {
	pos := NewPosition()
	var line []Move
	p := pos.Copy()
	for _, s := range []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5"} {
		m, err := ParseMove(s, p)
		if err != nil {
			t.Fatal(err)
		}
		line = append(line, m)
		p.MakeMove(m)
	}

	got := MovesToSAN(pos, line)
	want := []string{"e4", "e5", "Nf3", "Nc6", "Bb5"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MovesToSAN = %v, want %v", got, want)
			break
		}
	}
	if pos.ToFEN() != StartFEN {
		t.Error("MovesToSAN changed the input position")
	}
}
