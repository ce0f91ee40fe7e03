package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/samumartinf/taures/internal/board"
	"github.com/samumartinf/taures/internal/book"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

// flipFEN mirrors a position vertically and swaps the colours. Only positions
// without an en passant square are supported.
func flipFEN(fen string) string {
	fields := strings.Fields(fen)
	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	swap := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z':
				return r - 'a' + 'A'
			case r >= 'A' && r <= 'Z':
				return r - 'A' + 'a'
			}
			return r
		}, s)
	}
	fields[0] = swap(strings.Join(ranks, "/"))
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	if fields[2] != "-" {
		fields[2] = swap(fields[2])
	}
	return strings.Join(fields, " ")
}

func TestSearchBasic(t *testing.T) {
	pos := board.NewPosition()
	before := pos.ToFEN()
	eng := NewEngine(16)

	res := eng.Search(pos, SearchLimits{Depth: 3})
	if res.Move == board.NoMove {
		t.Fatal("Search returned NoMove for starting position")
	}
	if !pos.GenerateLegalMoves().Contains(res.Move) {
		t.Errorf("Search returned illegal move %s", res.Move)
	}
	if res.Depth != 3 {
		t.Errorf("Depth = %d, want 3", res.Depth)
	}
	if len(res.PV) == 0 || res.PV[0] != res.Move {
		t.Errorf("PV %v does not start with %s", res.PV, res.Move)
	}
	if after := pos.ToFEN(); after != before {
		t.Errorf("position changed by search: %s -> %s", before, after)
	}
	t.Logf("Best move: %s score %s nodes %d", res.Move, ScoreToString(res.Score), res.Nodes)
}

func TestSearchDeterministic(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}

	for _, fen := range fens {
		first := NewEngine(4).Search(mustFEN(t, fen), SearchLimits{Depth: 3})

		// A fresh engine and a reused one must both agree
		reused := NewEngine(4)
		reused.Search(mustFEN(t, board.StartFEN), SearchLimits{Depth: 2})
		for i, eng := range []*Engine{NewEngine(4), reused} {
			got := eng.Search(mustFEN(t, fen), SearchLimits{Depth: 3})
			if got.Move != first.Move || got.Score != first.Score || got.Nodes != first.Nodes {
				t.Errorf("%s run %d: got %s/%d/%d nodes, want %s/%d/%d nodes",
					fen, i, got.Move, got.Score, got.Nodes, first.Move, first.Score, first.Nodes)
			}
		}
	}
}

func TestMateInOne(t *testing.T) {
	tests := []struct {
		fen  string
		want string
	}{
		{"6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8"},
		{"r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1", "a8a1"},
		{"7k/8/6K1/8/8/8/8/R7 w - - 0 1", "a1a8"},
	}

	for _, tc := range tests {
		pos := mustFEN(t, tc.fen)
		res := NewEngine(4).Search(pos, SearchLimits{Depth: 4})
		if res.Move.String() != tc.want {
			t.Errorf("%s: move = %s, want %s", tc.fen, res.Move, tc.want)
		}
		if res.Score != MateScore-1 {
			t.Errorf("%s: score = %d, want %d", tc.fen, res.Score, MateScore-1)
		}
		if s := ScoreToString(res.Score); s != "mate 1" {
			t.Errorf("%s: ScoreToString = %q, want \"mate 1\"", tc.fen, s)
		}
	}
}

func TestSearchTerminalRoot(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		score int
	}{
		{"checkmated", "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1", -MateScore},
		{"stalemated", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", 0},
	}

	for _, tc := range tests {
		res := NewEngine(1).Search(mustFEN(t, tc.fen), SearchLimits{Depth: 4})
		if res.Move != board.NoMove {
			t.Errorf("%s: move = %s, want none", tc.name, res.Move)
		}
		if res.Score != tc.score {
			t.Errorf("%s: score = %d, want %d", tc.name, res.Score, tc.score)
		}
	}
}

func TestSearchAvoidsHangingQueen(t *testing.T) {
	// The white queen on d4 is attacked by the e5 pawn
	pos := mustFEN(t, "4k3/8/8/4p3/3Q4/8/8/4K3 w - - 0 1")
	res := NewEngine(4).Search(pos, SearchLimits{Depth: 2})
	if res.Move.From() != board.D4 {
		t.Errorf("move = %s, want a queen move", res.Move)
	}
	if res.Score < 700 {
		t.Errorf("score = %d, want the queen to stay on the board", res.Score)
	}
}

func TestSearchStopsOnDeadline(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	start := time.Now()
	res := eng.Search(pos, SearchLimits{Depth: 64, MoveTime: 50 * time.Millisecond})
	elapsed := time.Since(start)

	if res.Depth < 1 || res.Depth >= 64 {
		t.Errorf("Depth = %d, want an interrupted iterative deepening", res.Depth)
	}
	if !pos.GenerateLegalMoves().Contains(res.Move) {
		t.Errorf("illegal move %s", res.Move)
	}
	if elapsed > 5*time.Second {
		t.Errorf("search took %v with a 50ms budget", elapsed)
	}
	if pos.ToFEN() != board.StartFEN {
		t.Errorf("position not restored: %s", pos.ToFEN())
	}
}

func TestSearchCancelledContextCompletesDepthOne(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pos := board.NewPosition()
	res := NewEngine(4).SearchContext(ctx, pos, nil, SearchLimits{Depth: 10})
	if res.Depth < 1 || res.Depth >= 10 {
		t.Errorf("Depth = %d, want depth 1 completed and later iterations abandoned", res.Depth)
	}
	if !pos.GenerateLegalMoves().Contains(res.Move) {
		t.Errorf("illegal move %s", res.Move)
	}
}

func TestSearchUsesBook(t *testing.T) {
	b, err := book.Default()
	if err != nil {
		t.Fatalf("book.Default(): %v", err)
	}

	opts := DefaultOptions()
	opts.Book = b
	opts.Seed = 7

	pos := board.NewPosition()
	res := New(opts).Search(pos, SearchLimits{Depth: 3})
	if !res.FromBook {
		t.Fatal("expected a book move in the start position")
	}
	found := false
	for _, e := range b.ProbeAll(pos) {
		found = found || e.Move == res.Move
	}
	if !found {
		t.Errorf("book move %s is not a book reply", res.Move)
	}

	// Same seed, same choice
	again := New(opts).Search(board.NewPosition(), SearchLimits{Depth: 3})
	if again.Move != res.Move {
		t.Errorf("seeded book choice changed: %s then %s", res.Move, again.Move)
	}

	// Out of book: the search takes over
	opts.BookMoves = 0
	res = New(opts).Search(pos, SearchLimits{Depth: 2})
	if res.FromBook || res.Depth != 2 {
		t.Errorf("BookMoves=0: FromBook=%v depth=%d, want a searched move", res.FromBook, res.Depth)
	}
}

func TestRepetitionIsDraw(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 4 10")
	s := NewSearcher(NewTranspositionTable(1))

	s.Reset(context.Background(), pos, []uint64{pos.Hash, 12345}, time.Time{})
	if !s.isDraw() {
		t.Error("position seen two plies ago should be a draw")
	}

	s.Reset(context.Background(), pos, []uint64{12345, pos.Hash}, time.Time{})
	if s.isDraw() {
		t.Error("a hash with the other side to move must not count")
	}

	pos.HalfMoveClock = 1
	s.Reset(context.Background(), pos, []uint64{pos.Hash, 12345}, time.Time{})
	if s.isDraw() {
		t.Error("positions before an irreversible move cannot repeat")
	}

	pos.HalfMoveClock = 100
	s.Reset(context.Background(), pos, nil, time.Time{})
	if !s.isDraw() {
		t.Error("fifty-move rule not detected")
	}
}

func TestEvaluateStartIsZero(t *testing.T) {
	if got := Evaluate(board.NewPosition()); got != 0 {
		t.Errorf("Evaluate(start) = %d, want 0", got)
	}
}

func TestEvaluateSymmetric(t *testing.T) {
	fens := []string{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"4k3/8/8/4p3/3Q4/8/8/4K3 b - - 0 1",
	}
	for _, fen := range fens {
		a := Evaluate(mustFEN(t, fen))
		b := Evaluate(mustFEN(t, flipFEN(fen)))
		if a != b {
			t.Errorf("%s: eval %d, mirrored eval %d", fen, a, b)
		}
	}
}

func TestEvaluateMaterial(t *testing.T) {
	// White is a rook up; Black to move sees a negative score
	w := Evaluate(mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1"))
	b := Evaluate(mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 b - - 0 1"))
	if w <= 400 || b != -w {
		t.Errorf("rook up: white=%d black=%d", w, b)
	}
}

func TestTranspositionTable(t *testing.T) {
	tt := NewTranspositionTable(1)
	m := board.NewMove(board.E2, board.E4)

	if _, ok := tt.Probe(42); ok {
		t.Fatal("empty table hit")
	}

	tt.Store(42, 5, 37, TTExact, m)
	entry, ok := tt.Probe(42)
	if !ok || entry.BestMove != m || entry.Score != 37 || entry.Depth != 5 || entry.Flag != TTExact {
		t.Fatalf("Probe = %+v, %v", entry, ok)
	}

	// Same generation: shallower results do not replace deeper ones
	tt.Store(42, 3, -10, TTUpperBound, board.NoMove)
	if entry, _ := tt.Probe(42); entry.Depth != 5 {
		t.Errorf("shallower store replaced entry: %+v", entry)
	}

	// Colliding index with a different key is a miss
	if _, ok := tt.Probe(42 + tt.Size()); ok {
		t.Error("different key with the same index hit")
	}

	// A new search never sees the old generation
	tt.NewSearch()
	if _, ok := tt.Probe(42); ok {
		t.Error("entry from previous search generation visible")
	}
	tt.Store(42, 1, 5, TTLowerBound, m)
	if entry, ok := tt.Probe(42); !ok || entry.Depth != 1 {
		t.Errorf("new generation store: %+v, %v", entry, ok)
	}
}

func TestTranspositionTableAgeWrap(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.Store(7, 4, 1, TTExact, board.NoMove)
	for i := 0; i < 255; i++ {
		tt.NewSearch()
	}
	// The counter is back at its first value; the table must have been wiped
	if _, ok := tt.Probe(7); ok {
		t.Error("entry survived an age wrap")
	}
}

// Up to depth 4 no position can recur at a different remaining depth, so a
// table carried through the shallower iterations must give the same scores
// as a fresh table per depth.
func TestTranspositionTableKeepsScores(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}
	const maxDepth = 4

	for _, fen := range fens {
		pos := mustFEN(t, fen)
		shared := NewSearcher(NewTranspositionTable(1))
		shared.Reset(context.Background(), pos, nil, time.Time{})

		for depth := 1; depth <= maxDepth; depth++ {
			sharedMove, sharedScore := shared.SearchDepth(depth, false)

			freshPos := mustFEN(t, fen)
			fresh := NewSearcher(NewTranspositionTable(1))
			fresh.Reset(context.Background(), freshPos, nil, time.Time{})
			freshMove, freshScore := fresh.SearchDepth(depth, false)

			if sharedScore != freshScore {
				t.Errorf("%s depth %d: shared table score %d (%s), fresh table %d (%s)",
					fen, depth, sharedScore, sharedMove, freshScore, freshMove)
			}
			if sharedMove == board.NoMove || freshMove == board.NoMove {
				t.Errorf("%s depth %d: no move returned", fen, depth)
			}
		}
		if got := pos.ToFEN(); got != fen {
			t.Errorf("search left position as %q", got)
		}
		t.Logf("%s: %d nodes over depths 1-%d", fen, shared.Nodes(), maxDepth)
	}
}

func TestAdjustScore(t *testing.T) {
	scores := []int{0, 150, -150, MateScore - 3, -MateScore + 4, MateScore - MaxPly + 1}
	for _, s := range scores {
		for _, ply := range []int{0, 1, 7} {
			if got := AdjustScoreFromTT(AdjustScoreToTT(s, ply), ply); got != s {
				t.Errorf("round trip of %d at ply %d = %d", s, ply, got)
			}
		}
	}
	if got := AdjustScoreToTT(MateScore-5, 3); got != MateScore-2 {
		t.Errorf("AdjustScoreToTT(mate in 5 plies, ply 3) = %d, want %d", got, MateScore-2)
	}
}

func TestMoveOrdering(t *testing.T) {
	// Pawn can take the queen, the knight can take the pawn
	pos := mustFEN(t, "4k3/8/3q4/4P3/8/5N2/3p4/4K3 w - - 0 1")
	moves := pos.GeneratePseudoLegalMoves()
	mo := NewMoveOrderer()
	killer := board.NewMove(board.F3, board.G5)
	mo.AddKiller(killer, 0)

	scores := mo.ScoreMoves(pos, moves, 0, board.NoMove, nil)
	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
	}

	want := []string{"e5d6", "f3d2", "e1d2", "f3g5"}
	for i, w := range want {
		if got := moves.Get(i).String(); got != w {
			t.Errorf("move %d = %s, want %s", i, got, w)
		}
	}

	// Remaining quiet moves are in tie-break order
	for i := len(want) + 1; i < moves.Len(); i++ {
		if tieBreakKey(moves.Get(i-1)) > tieBreakKey(moves.Get(i)) {
			t.Errorf("quiet moves out of order: %s before %s", moves.Get(i-1), moves.Get(i))
		}
	}
}

func TestPickMoveIgnoresGenerationOrder(t *testing.T) {
	a := board.NewMove(board.G1, board.F3)
	b := board.NewMove(board.B1, board.C3)
	c := board.NewMove(board.E2, board.E4)

	var forward, backward board.MoveList
	for _, m := range []board.Move{a, b, c} {
		forward.Add(m)
	}
	for _, m := range []board.Move{c, b, a} {
		backward.Add(m)
	}

	for _, ml := range []*board.MoveList{&forward, &backward} {
		scores := []int{0, 0, 0}
		for i := 0; i < ml.Len(); i++ {
			PickMove(ml, scores, i)
		}
		if ml.Get(0) != b || ml.Get(1) != a || ml.Get(2) != c {
			t.Errorf("order = %v, want b1c3 g1f3 e2e4", ml.Slice())
		}
	}
}

func TestDivideMatchesPerft(t *testing.T) {
	pos := board.NewPosition()
	entries, total, err := Divide(context.Background(), pos, 3)
	if err != nil {
		t.Fatalf("Divide: %v", err)
	}
	if len(entries) != 20 {
		t.Errorf("Divide returned %d root moves, want 20", len(entries))
	}
	if total != 8902 || Perft(pos, 3) != 8902 {
		t.Errorf("total = %d, Perft = %d, want 8902", total, Perft(pos, 3))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Move.String() >= entries[i].Move.String() {
			t.Errorf("entries not sorted: %s before %s", entries[i-1].Move, entries[i].Move)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Divide(ctx, pos, 3); err == nil {
		t.Error("Divide with cancelled context returned no error")
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "+0.00"},
		{125, "+1.25"},
		{-40, "-0.40"},
		{MateScore - 1, "mate 1"},
		{MateScore - 3, "mate 2"},
		{-MateScore + 2, "mate -1"},
	}
	for _, tc := range tests {
		if got := ScoreToString(tc.score); got != tc.want {
			t.Errorf("ScoreToString(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func BenchmarkSearchDepth4(b *testing.B) {
	eng := NewEngine(16)
	for i := 0; i < b.N; i++ {
		eng.Search(board.NewPosition(), SearchLimits{Depth: 4})
	}
}
