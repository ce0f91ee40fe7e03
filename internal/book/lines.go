package book

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/samumartinf/taures/internal/board"
)

//go:embed openings.txt
var defaultLines string

// Default returns the book built from the embedded opening lines.
func Default() (*Book, error) {
	return LoadLines(strings.NewReader(defaultLines))
}

// LoadLines builds a book from lines of SAN moves (see ReplayLines).
func LoadLines(r io.Reader) (*Book, error) {
	b := New()
	err := ReplayLines(r, func(pos *board.Position, m board.Move) error {
		b.Add(pos, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ReplayLines plays every line of r from the starting position and calls
// visit with the position before each move. Lines hold SAN moves separated
// by spaces; move numbers ("1.", "12...") and '#' comments are ignored.
// pos is only valid during the call.
func ReplayLines(r io.Reader, visit func(pos *board.Position, m board.Move) error) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}

		pos := board.NewPosition()
		for _, tok := range strings.Fields(line) {
			tok = stripMoveNumber(tok)
			if tok == "" {
				continue
			}
			m, err := board.ParseSAN(tok, pos)
			if err != nil {
				return fmt.Errorf("book line %d: %w", lineNo, err)
			}
			if err := visit(pos, m); err != nil {
				return err
			}
			pos.MakeMove(m)
		}
	}

	return scanner.Err()
}

// stripMoveNumber removes a leading move number such as "1." or "3...".
// Castling written with zeros ("0-0") is left alone.
func stripMoveNumber(tok string) string {
	if tok == "" || tok[0] < '0' || tok[0] > '9' {
		return tok
	}
	if i := strings.LastIndexByte(tok, '.'); i >= 0 {
		return tok[i+1:]
	}
	return tok
}
