package engine

import (
	"context"
	"time"

	"github.com/samumartinf/taures/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// stopCheckInterval is how many nodes pass between deadline checks (power of 2).
const stopCheckInterval = 1024

// PVTable stores the principal variation (triangular table).
type PVTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Move
}

// Searcher runs a negamax alpha-beta search over one position. The position
// is mutated in place with make/unmake and restored before every return.
type Searcher struct {
	pos     *board.Position
	tt      *TranspositionTable
	orderer *MoveOrderer
	pv      PVTable

	// Hashes of every position before the current one: the game history
	// handed in by the caller followed by the current search path.
	path []uint64

	nodes    uint64
	ctx      context.Context
	deadline time.Time
	canStop  bool
	stopped  bool

	scoreBuf [MaxPly + 1][]int
}

// NewSearcher creates a new searcher.
func NewSearcher(tt *TranspositionTable) *Searcher {
	return &Searcher{
		tt:      tt,
		orderer: NewMoveOrderer(),
		ctx:     context.Background(),
	}
}

// Reset prepares the searcher for a new request on pos. history holds the
// hashes of the positions played before pos, oldest first.
func (s *Searcher) Reset(ctx context.Context, pos *board.Position, history []uint64, deadline time.Time) {
	s.pos = pos
	s.ctx = ctx
	s.deadline = deadline
	s.nodes = 0
	s.canStop = false
	s.stopped = false
	s.path = append(s.path[:0], history...)
	s.orderer.Clear()
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Stopped reports whether the last SearchDepth was interrupted.
func (s *Searcher) Stopped() bool {
	return s.stopped
}

// GetPV returns a copy of the principal variation from the last search.
func (s *Searcher) GetPV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	copy(pv, s.pv.moves[0][:s.pv.length[0]])
	return pv
}

// SearchDepth searches the root to the given depth and returns the best move
// and its score. allowStop permits the deadline and context to interrupt the
// iteration; the result of an interrupted iteration must be discarded.
func (s *Searcher) SearchDepth(depth int, allowStop bool) (board.Move, int) {
	s.canStop = allowStop
	s.stopped = false
	score := s.negamax(depth, 0, -Infinity, Infinity)
	if s.pv.length[0] == 0 {
		return board.NoMove, score
	}
	return s.pv.moves[0][0], score
}

// checkStop polls the deadline and the context.
func (s *Searcher) checkStop() {
	if !s.canStop {
		return
	}
	if s.ctx.Err() != nil || (!s.deadline.IsZero() && time.Now().After(s.deadline)) {
		s.stopped = true
	}
}

// isDraw reports fifty-move, repetition and insufficient-material draws.
func (s *Searcher) isDraw() bool {
	pos := s.pos
	if pos.HalfMoveClock >= 100 || pos.IsInsufficientMaterial() {
		return true
	}

	// Only positions since the last irreversible move can repeat, and only
	// every second one has the same side to move.
	n := len(s.path)
	for i := n - 2; i >= 0 && i >= n-pos.HalfMoveClock; i -= 2 {
		if s.path[i] == pos.Hash {
			return true
		}
	}
	return false
}

// negamax returns the score of the current position from the side to move's
// point of view.
func (s *Searcher) negamax(depth, ply, alpha, beta int) int {
	s.nodes++
	if s.nodes&(stopCheckInterval-1) == 0 {
		s.checkStop()
	}
	if s.stopped {
		return 0
	}

	pos := s.pos
	s.pv.length[ply] = 0

	if ply > 0 && s.isDraw() {
		return 0
	}

	inCheck := pos.InCheck()

	if depth <= 0 || ply >= MaxPly {
		if !pos.HasLegalMoves() {
			if inCheck {
				return -MateScore + ply
			}
			return 0
		}
		return Evaluate(pos)
	}

	ttMove := board.NoMove
	if entry, ok := s.tt.Probe(pos.Hash); ok {
		ttMove = entry.BestMove
		// The root never returns from the table so a move is always produced.
		if ply > 0 && int(entry.Depth) >= depth {
			score := AdjustScoreFromTT(int(entry.Score), ply)
			switch {
			case entry.Flag == TTExact:
				return score
			case entry.Flag == TTLowerBound && score >= beta:
				return score
			case entry.Flag == TTUpperBound && score <= alpha:
				return score
			}
		}
	}

	moves := pos.GeneratePseudoLegalMoves()
	scores := s.orderer.ScoreMoves(pos, moves, ply, ttMove, s.scoreBuf[ply])
	s.scoreBuf[ply] = scores

	us := pos.SideToMove
	alphaOrig := alpha
	bestScore := -Infinity
	bestMove := board.NoMove
	legal := 0

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		m := moves.Get(i)
		quiet := !m.IsCapture(pos) && !m.IsPromotion()

		s.path = append(s.path, pos.Hash)
		undo := pos.MakeMove(m)
		if pos.IsSquareAttacked(pos.KingSquare(us), us.Other()) {
			pos.UnmakeMove(m, undo)
			s.path = s.path[:len(s.path)-1]
			continue
		}
		legal++

		score := -s.negamax(depth-1, ply+1, -beta, -alpha)

		pos.UnmakeMove(m, undo)
		s.path = s.path[:len(s.path)-1]

		if s.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m

			if score > alpha {
				alpha = score
				s.updatePV(ply, m)

				if score >= beta {
					if quiet {
						s.orderer.AddKiller(m, ply)
					}
					break
				}
			}
		}
	}

	if legal == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	flag := TTExact
	switch {
	case bestScore <= alphaOrig:
		flag = TTUpperBound
	case bestScore >= beta:
		flag = TTLowerBound
	}
	s.tt.Store(pos.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)

	// A fail-low root still reports its best move.
	if ply == 0 && s.pv.length[0] == 0 {
		s.updatePV(0, bestMove)
	}

	return bestScore
}

// updatePV sets m followed by the child's line as the PV of ply.
func (s *Searcher) updatePV(ply int, m board.Move) {
	s.pv.moves[ply][0] = m
	n := 1
	if ply+1 <= MaxPly {
		child := s.pv.length[ply+1]
		copy(s.pv.moves[ply][1:], s.pv.moves[ply+1][:child])
		n += child
	}
	s.pv.length[ply] = n
}
