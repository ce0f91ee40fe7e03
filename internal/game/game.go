// Package game holds the live game behind the command layer: the current
// position, the move history used for undo and repetition detection, and the
// engine that plays for either side.
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/samumartinf/taures/internal/board"
	"github.com/samumartinf/taures/internal/engine"
)

// NoMove is returned by RandomMove when the side to move has no legal move.
const NoMove = "None"

var (
	// ErrNoLegalMoves is returned by EngineMove in checkmate or stalemate.
	ErrNoLegalMoves = errors.New("no legal moves")
	// ErrInvalidDepth is returned by EngineMove for a depth below 1.
	ErrInvalidDepth = errors.New("search depth must be positive")
	// ErrIllegalMove is returned by SetPosition for a move it cannot play.
	ErrIllegalMove = errors.New("illegal move")
)

// EngineReport describes one engine move.
type EngineReport struct {
	FEN                string // Position after the move
	BestMove           string // Coordinate notation
	SAN                string
	Score              int // Centipawns for the side that moved
	Depth              int
	PositionsEvaluated uint64
	TimeMs             int64
	PositionsPerSecond uint64
	FromBook           bool
}

// Outcome is the state of the game from the rules' point of view.
type Outcome int

const (
	Ongoing Outcome = iota
	Checkmate
	Stalemate
	DrawFiftyMoves
	DrawRepetition
	DrawMaterial
)

func (o Outcome) String() string {
	switch o {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case DrawFiftyMoves:
		return "draw by fifty-move rule"
	case DrawRepetition:
		return "draw by threefold repetition"
	case DrawMaterial:
		return "draw by insufficient material"
	}
	return "ongoing"
}

// played is one entry of the move history.
type played struct {
	move board.Move
	undo board.UndoInfo
}

// Game is safe for concurrent use; every method holds the game lock.
type Game struct {
	mu sync.Mutex

	pos     *board.Position
	history []played
	hashes  []uint64 // Hash of the position before each history entry

	engine *engine.Engine
	rng    *rand.Rand
	log    zerolog.Logger
}

// New creates a game at the starting position. seed drives RandomMove.
func New(eng *engine.Engine, seed uint64, log zerolog.Logger) *Game {
	if eng == nil {
		eng = engine.New(engine.DefaultOptions())
	}
	return &Game{
		pos:    board.NewPosition(),
		engine: eng,
		rng:    rand.New(rand.NewPCG(seed, 0x5DEECE66D)),
		log:    log,
	}
}

// FEN returns the full FEN of the current position.
func (g *Game) FEN() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pos.ToFEN()
}

// PlacementFEN returns the piece placement field only.
func (g *Game) PlacementFEN() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pos.PlacementFEN()
}

// SetFEN replaces the position and clears the history. On a parse error the
// game is left unchanged and false is returned.
func (g *Game) SetFEN(fen string) bool {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		g.log.Debug().Err(err).Str("fen", fen).Msg("set fen rejected")
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset(pos)
	return true
}

// SetPosition sets up fen and plays the coordinate moves after it. Every
// move is checked before the game is touched, so on error the previous game
// is kept as it was.
func (g *Game) SetPosition(fen string, moves []string) error {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return err
	}

	history := make([]played, 0, len(moves))
	hashes := make([]uint64, 0, len(moves))
	for _, s := range moves {
		m, err := board.ParseMove(s, pos)
		if err != nil {
			g.log.Debug().Err(err).Str("move", s).Msg("position rejected")
			return fmt.Errorf("%w %s", ErrIllegalMove, s)
		}
		hashes = append(hashes, pos.Hash)
		history = append(history, played{move: m, undo: pos.MakeMove(m)})
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.pos = pos
	g.history = history
	g.hashes = hashes
	return nil
}

// Restart resets the game to the starting position.
func (g *Game) Restart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset(board.NewPosition())
}

func (g *Game) reset(pos *board.Position) {
	g.pos = pos
	g.history = g.history[:0]
	g.hashes = g.hashes[:0]
}

// LegalMoves returns the sorted destination squares of the legal moves of
// the piece on source. Promotions to different pieces share a destination.
func (g *Game) LegalMoves(source string) []string {
	sq, err := board.ParseSquare(source)
	if err != nil {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return destinations(g.pos.LegalMovesFrom(sq))
}

// PossibleMoves is LegalMoves over pseudo-legal moves, so moves that leave
// the king in check are included.
func (g *Game) PossibleMoves(source string) []string {
	sq, err := board.ParseSquare(source)
	if err != nil {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return destinations(g.pos.PseudoLegalMovesFrom(sq))
}

func destinations(ml *board.MoveList) []string {
	seen := make(map[board.Square]bool)
	out := []string{}
	for i := 0; i < ml.Len(); i++ {
		to := ml.Get(i).To()
		if !seen[to] {
			seen[to] = true
			out = append(out, to.String())
		}
	}
	sort.Strings(out)
	return out
}

// IsMoveLegal reports whether source-target (with an optional promotion
// letter) is legal in the current position.
func (g *Game) IsMoveLegal(source, target, promo string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.findMove(source, target, promo)
	return ok
}

// PlayMove plays source-target if it is legal. An empty promo promotes to a
// queen. Illegal or malformed moves return false and change nothing.
func (g *Game) PlayMove(source, target, promo string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	m, ok := g.findMove(source, target, promo)
	if !ok {
		g.log.Debug().Str("from", source).Str("to", target).Msg("move rejected")
		return false
	}
	g.play(m)
	return true
}

func (g *Game) findMove(source, target, promo string) (board.Move, bool) {
	from, err := board.ParseSquare(source)
	if err != nil {
		return board.NoMove, false
	}
	to, err := board.ParseSquare(target)
	if err != nil {
		return board.NoMove, false
	}

	pt := board.NoPieceType
	switch len(promo) {
	case 0:
	case 1:
		pt = board.PromotionFromChar(promo[0])
		if pt == board.NoPieceType {
			return board.NoMove, false
		}
	default:
		return board.NoMove, false
	}

	return g.pos.FindMove(from, to, pt)
}

// play applies a legal move and records it.
func (g *Game) play(m board.Move) {
	g.hashes = append(g.hashes, g.pos.Hash)
	undo := g.pos.MakeMove(m)
	g.history = append(g.history, played{move: m, undo: undo})
}

// UndoMove takes back the last move. It returns false when there is no
// history.
func (g *Game) UndoMove() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := len(g.history)
	if n == 0 {
		return false
	}
	last := g.history[n-1]
	g.pos.UnmakeMove(last.move, last.undo)
	g.history = g.history[:n-1]
	g.hashes = g.hashes[:n-1]
	return true
}

// EngineMove searches the current position to depth, plays the best move
// and reports it. In checkmate or stalemate ErrNoLegalMoves is returned and
// the game is unchanged.
func (g *Game) EngineMove(ctx context.Context, depth int) (EngineReport, error) {
	return g.EngineMoveTimed(ctx, depth, 0)
}

// EngineMoveTimed is EngineMove with a time budget. moveTime 0 means none.
func (g *Game) EngineMoveTimed(ctx context.Context, depth int, moveTime time.Duration) (EngineReport, error) {
	if depth < 1 {
		return EngineReport{}, fmt.Errorf("%w: %d", ErrInvalidDepth, depth)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.pos.HasLegalMoves() {
		return EngineReport{}, ErrNoLegalMoves
	}

	res := g.engine.SearchContext(ctx, g.pos, g.hashes, engine.SearchLimits{Depth: depth, MoveTime: moveTime})
	if res.Move == board.NoMove || !g.pos.IsLegal(res.Move) {
		return EngineReport{}, fmt.Errorf("engine returned no playable move for %s", g.pos.ToFEN())
	}

	san := res.Move.ToSAN(g.pos)
	g.play(res.Move)

	report := EngineReport{
		FEN:                g.pos.ToFEN(),
		BestMove:           res.Move.String(),
		SAN:                san,
		Score:              res.Score,
		Depth:              res.Depth,
		PositionsEvaluated: res.Nodes,
		TimeMs:             res.Elapsed.Milliseconds(),
		PositionsPerSecond: res.NPS,
		FromBook:           res.FromBook,
	}
	g.log.Debug().
		Str("move", report.BestMove).
		Int("depth", report.Depth).
		Bool("book", report.FromBook).
		Msg("engine move played")
	return report, nil
}

// RandomMove plays a uniformly chosen legal move and returns the new FEN, or
// NoMove when there is none.
func (g *Game) RandomMove() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	legal := g.pos.GenerateLegalMoves()
	if legal.Len() == 0 {
		return NoMove
	}
	g.play(legal.Get(g.rng.IntN(legal.Len())))
	return g.pos.ToFEN()
}

// PieceAt returns the FEN letter of the piece on square, or "" for an empty
// or malformed square.
func (g *Game) PieceAt(square string) string {
	sq, err := board.ParseSquare(square)
	if err != nil {
		return ""
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pos.PieceAt(sq).String()
}

// Diagram returns a text rendering of the position.
func (g *Game) Diagram() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pos.String()
}

// Evaluate returns the static evaluation for the side to move.
func (g *Game) Evaluate() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return engine.Evaluate(g.pos)
}

// Position returns a copy of the current position.
func (g *Game) Position() *board.Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pos.Copy()
}

// MovesSAN returns the moves played since the last reset in SAN.
func (g *Game) MovesSAN() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.history) == 0 {
		return nil
	}
	// Rewind a copy to the first recorded position
	start := g.pos.Copy()
	for i := len(g.history) - 1; i >= 0; i-- {
		start.UnmakeMove(g.history[i].move, g.history[i].undo)
	}
	moves := make([]board.Move, len(g.history))
	for i, p := range g.history {
		moves[i] = p.move
	}
	return board.MovesToSAN(start, moves)
}

// Outcome reports whether the game is over and why.
func (g *Game) Outcome() Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	pos := g.pos
	if !pos.HasLegalMoves() {
		if pos.InCheck() {
			return Checkmate
		}
		return Stalemate
	}
	if pos.HalfMoveClock >= 100 {
		return DrawFiftyMoves
	}
	if pos.IsInsufficientMaterial() {
		return DrawMaterial
	}

	repeats := 0
	n := len(g.hashes)
	for i := n - 2; i >= 0 && i >= n-pos.HalfMoveClock; i -= 2 {
		if g.hashes[i] == pos.Hash {
			repeats++
		}
	}
	if repeats >= 2 {
		return DrawRepetition
	}
	return Ongoing
}
