package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/samumartinf/taures/internal/board"
	"github.com/samumartinf/taures/internal/book"
)

// SearchInfo contains information about a completed iteration.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = DefaultDepth)
	MoveTime time.Duration // Time for this move (0 = no limit)
}

// Result is the outcome of one search request.
type Result struct {
	Move     board.Move
	Score    int // Centipawns from the side to move's point of view
	Depth    int // Last fully completed iteration
	Nodes    uint64
	Elapsed  time.Duration
	NPS      uint64 // Nodes per second
	PV       []board.Move
	FromBook bool
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // ~2-3 ply, 500ms
	Medium                   // ~4 ply, 2s
	Hard                     // ~6 ply, 5s
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 4, MoveTime: 2 * time.Second},
	Hard:   {Depth: 6, MoveTime: 5 * time.Second},
}

// DefaultDepth is the search depth used when the limits leave it unset.
const DefaultDepth = 4

// Options configures an Engine.
type Options struct {
	HashMB    int            // Transposition table size
	Book      book.Source    // Opening book, nil for none
	BookMoves int            // Consult the book while FullMoveNumber <= BookMoves
	Seed      uint64         // Seed of the book sampling random source
	Logger    zerolog.Logger // Search logging
}

// DefaultOptions returns the engine defaults: 16 MB table, no book.
func DefaultOptions() Options {
	return Options{
		HashMB:    16,
		BookMoves: 8,
		Seed:      1,
		Logger:    zerolog.Nop(),
	}
}

// Engine is the chess AI engine. It is not safe for concurrent use; callers
// serialise requests.
type Engine struct {
	opts     Options
	searcher *Searcher
	tt       *TranspositionTable
	rng      *rand.Rand
	log      zerolog.Logger

	// Callbacks
	OnInfo func(SearchInfo)
}

// New creates an engine with the given options.
func New(opts Options) *Engine {
	tt := NewTranspositionTable(opts.HashMB)
	return &Engine{
		opts:     opts,
		searcher: NewSearcher(tt),
		tt:       tt,
		rng:      rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9E3779B97F4A7C15)),
		log:      opts.Logger,
	}
}

// NewEngine creates an engine with default options and the given
// transposition table size in MB.
func NewEngine(ttSizeMB int) *Engine {
	opts := DefaultOptions()
	opts.HashMB = ttSizeMB
	return New(opts)
}

// Search finds the best move for pos. pos is restored before returning.
func (e *Engine) Search(pos *board.Position, limits SearchLimits) Result {
	return e.SearchContext(context.Background(), pos, nil, limits)
}

// SearchContext is Search with cancellation and the game history (hashes of
// the positions before pos, oldest first) for repetition detection.
//
// Iteration 1 always completes. A cancelled or timed out iteration is
// discarded and the previous iteration's result is returned.
func (e *Engine) SearchContext(ctx context.Context, pos *board.Position, history []uint64, limits SearchLimits) Result {
	startTime := time.Now()

	if m, ok := e.bookMove(pos); ok {
		return Result{Move: m, PV: []board.Move{m}, FromBook: true, Elapsed: time.Since(startTime)}
	}

	maxDepth := limits.Depth
	if maxDepth <= 0 {
		maxDepth = DefaultDepth
	}
	if maxDepth > MaxPly-1 {
		maxDepth = MaxPly - 1
	}

	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = startTime.Add(limits.MoveTime)
	}

	e.tt.NewSearch()
	e.searcher.Reset(ctx, pos, history, deadline)

	var result Result
	for depth := 1; depth <= maxDepth; depth++ {
		move, score := e.searcher.SearchDepth(depth, depth > 1)
		if e.searcher.Stopped() {
			break
		}

		result.Move = move
		result.Score = score
		result.Depth = depth
		result.PV = e.searcher.GetPV()

		info := SearchInfo{
			Depth:    depth,
			Score:    score,
			Nodes:    e.searcher.Nodes(),
			Time:     time.Since(startTime),
			PV:       result.PV,
			HashFull: e.tt.HashFull(),
		}
		e.log.Debug().
			Int("depth", info.Depth).
			Str("score", ScoreToString(info.Score)).
			Uint64("nodes", info.Nodes).
			Dur("elapsed", info.Time).
			Str("pv", pvString(info.PV)).
			Msg("iteration complete")
		if e.OnInfo != nil {
			e.OnInfo(info)
		}

		// Nothing to search, or a forced mate is already found
		if move == board.NoMove || score > MateScore-MaxPly || score < -MateScore+MaxPly {
			break
		}
	}

	result.Nodes = e.searcher.Nodes()
	result.Elapsed = time.Since(startTime)
	if secs := result.Elapsed.Seconds(); secs > 0 {
		result.NPS = uint64(float64(result.Nodes) / secs)
	}

	e.log.Info().
		Str("move", result.Move.String()).
		Int("depth", result.Depth).
		Int("score", result.Score).
		Uint64("nodes", result.Nodes).
		Uint64("nps", result.NPS).
		Float64("tt_hit_rate", e.tt.HitRate()).
		Msg("search done")

	return result
}

// bookMove consults the opening book while the game is young enough.
func (e *Engine) bookMove(pos *board.Position) (board.Move, bool) {
	if e.opts.Book == nil || pos.FullMoveNumber > e.opts.BookMoves {
		return board.NoMove, false
	}

	entries, err := e.opts.Book.Lookup(pos)
	if err != nil {
		e.log.Warn().Err(err).Msg("book lookup failed, searching instead")
		return board.NoMove, false
	}

	m, ok := book.Pick(pos, entries, e.rng)
	if ok {
		e.log.Debug().Str("move", m.String()).Int("candidates", len(entries)).Msg("book move")
	}
	return m, ok
}

// Clear clears the transposition table.
func (e *Engine) Clear() {
	e.tt.Clear()
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-MaxPly {
		return fmt.Sprintf("mate %d", (MateScore-score+1)/2)
	}
	if score < -MateScore+MaxPly {
		return fmt.Sprintf("mate -%d", (MateScore+score+1)/2)
	}
	return fmt.Sprintf("%+.2f", float64(score)/100)
}

func pvString(pv []board.Move) string {
	s := ""
	for i, m := range pv {
		if i > 0 {
			s += " "
		}
		s += m.String()
	}
	return s
}
