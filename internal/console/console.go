// Package console implements a line-oriented text protocol over a Game, in
// the spirit of a UCI loop: one command per line, replies on the output.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/samumartinf/taures/internal/board"
	"github.com/samumartinf/taures/internal/engine"
	"github.com/samumartinf/taures/internal/game"
)

// Console reads commands and drives a game.
type Console struct {
	game *game.Game
	out  io.Writer
	log  zerolog.Logger

	// Defaults for "go" without arguments
	depth    int
	moveTime time.Duration
}

// New creates a console. depth and moveTime are the defaults of "go".
func New(g *game.Game, out io.Writer, depth int, moveTime time.Duration, log zerolog.Logger) *Console {
	if depth < 1 {
		depth = engine.DefaultDepth
	}
	return &Console{
		game:     g,
		out:      out,
		log:      log,
		depth:    depth,
		moveTime: moveTime,
	}
}

// Run processes commands from in until "quit", end of input or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]
		c.log.Debug().Str("cmd", cmd).Strs("args", args).Msg("command")

		switch cmd {
		case "fen":
			c.println(c.game.FEN())
		case "simple":
			c.println(c.game.PlacementFEN())
		case "setfen":
			c.reply(c.game.SetFEN(strings.Join(args, " ")), "invalid fen")
		case "position":
			c.handlePosition(args)
		case "moves":
			c.handleMoves(args, c.game.LegalMoves)
		case "possible":
			c.handleMoves(args, c.game.PossibleMoves)
		case "legal":
			from, to, promo, ok := moveArgs(args)
			c.println(strconv.FormatBool(ok && c.game.IsMoveLegal(from, to, promo)))
		case "play":
			from, to, promo, ok := moveArgs(args)
			c.reply(ok && c.game.PlayMove(from, to, promo), "illegal move")
		case "undo":
			c.reply(c.game.UndoMove(), "nothing to undo")
		case "go":
			c.handleGo(ctx, args)
		case "random":
			c.println(c.game.RandomMove())
		case "restart", "new":
			c.game.Restart()
			c.println("ok")
		case "piece":
			c.handlePiece(args)
		case "perft":
			c.handlePerft(args)
		case "divide":
			c.handleDivide(ctx, args)
		case "eval":
			score := c.game.Evaluate()
			c.printf("eval %s (cp %d)\n", engine.ScoreToString(score), score)
		case "d":
			c.handleDisplay()
		case "quit", "exit":
			return nil
		default:
			c.printf("unknown command: %s\n", cmd)
		}
	}

	return scanner.Err()
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// reply prints "ok" or "error: msg".
func (c *Console) reply(ok bool, msg string) {
	if ok {
		c.println("ok")
		return
	}
	c.println("error: " + msg)
}

// moveArgs accepts "e2 e4 [q]" or the coordinate form "e2e4[q]".
func moveArgs(args []string) (from, to, promo string, ok bool) {
	switch {
	case len(args) == 1 && (len(args[0]) == 4 || len(args[0]) == 5):
		return args[0][0:2], args[0][2:4], args[0][4:], true
	case len(args) == 2:
		return args[0], args[1], "", true
	case len(args) == 3:
		return args[0], args[1], args[2], true
	}
	return "", "", "", false
}

func (c *Console) handleMoves(args []string, list func(string) []string) {
	if len(args) != 1 {
		c.println("error: expected a square")
		return
	}
	c.println(strings.Join(list(args[0]), " "))
}

func (c *Console) handlePiece(args []string) {
	if len(args) != 1 {
		c.println("error: expected a square")
		return
	}
	piece := c.game.PieceAt(args[0])
	if piece == "" {
		piece = "-"
	}
	c.println(piece)
}

// handlePosition sets up a position from a start point and a move list.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// On any error the game is left as it was before the command.
func (c *Console) handlePosition(args []string) {
	if len(args) == 0 {
		c.println("error: expected startpos or fen")
		return
	}

	moveStart := len(args)
	for i, arg := range args {
		if arg == "moves" {
			moveStart = i
			break
		}
	}
	var moves []string
	if moveStart < len(args) {
		moves = args[moveStart+1:]
	}

	var fen string
	switch args[0] {
	case "startpos":
		fen = board.StartFEN
	case "fen":
		fen = strings.Join(args[1:moveStart], " ")
	default:
		c.println("error: expected startpos or fen")
		return
	}

	switch err := c.game.SetPosition(fen, moves); {
	case errors.Is(err, board.ErrInvalidFEN):
		c.println("error: invalid fen")
	case err != nil:
		c.println("error: " + err.Error())
	default:
		c.println("ok")
	}
}

// goOptions holds parsed "go" arguments.
type goOptions struct {
	depth     int
	moveTime  time.Duration
	wTime     time.Duration
	bTime     time.Duration
	wInc      time.Duration
	bInc      time.Duration
	movesToGo int
}

// parseGoOptions accepts the short form "go <depth> [movetime-ms]" and the
// keyword form "go depth 6 movetime 500 wtime ... btime ...".
func parseGoOptions(args []string) (goOptions, error) {
	var opts goOptions

	if len(args) > 0 {
		if depth, err := strconv.Atoi(args[0]); err == nil {
			opts.depth = depth
			if len(args) > 1 {
				ms, err := strconv.Atoi(args[1])
				if err != nil || ms < 0 {
					return opts, fmt.Errorf("bad movetime %q", args[1])
				}
				opts.moveTime = time.Duration(ms) * time.Millisecond
			}
			return opts, nil
		}
	}

	for i := 0; i < len(args); i++ {
		if i+1 >= len(args) {
			return opts, fmt.Errorf("missing value for %s", args[i])
		}
		n, err := strconv.Atoi(args[i+1])
		if err != nil || n < 0 {
			return opts, fmt.Errorf("bad value %q for %s", args[i+1], args[i])
		}
		ms := time.Duration(n) * time.Millisecond

		switch args[i] {
		case "depth":
			opts.depth = n
		case "movetime":
			opts.moveTime = ms
		case "wtime":
			opts.wTime = ms
		case "btime":
			opts.bTime = ms
		case "winc":
			opts.wInc = ms
		case "binc":
			opts.bInc = ms
		case "movestogo":
			opts.movesToGo = n
		default:
			return opts, fmt.Errorf("unknown go option %s", args[i])
		}
		i++
	}
	return opts, nil
}

func (c *Console) handleGo(ctx context.Context, args []string) {
	opts, err := parseGoOptions(args)
	if err != nil {
		c.println("error: " + err.Error())
		return
	}

	depth := opts.depth
	if depth == 0 {
		depth = c.depth
	}
	moveTime := opts.moveTime
	if moveTime == 0 {
		if opts.wTime > 0 || opts.bTime > 0 {
			moveTime = timeForMove(c.game.Position(), opts)
		} else {
			moveTime = c.moveTime
		}
	}

	report, err := c.game.EngineMoveTimed(ctx, depth, moveTime)
	if err != nil {
		c.println("error: " + err.Error())
		return
	}

	source := "search"
	if report.FromBook {
		source = "book"
	}
	c.printf("bestmove %s (%s) score %s depth %d nodes %s time %dms nps %s [%s]\n",
		report.BestMove, report.SAN, engine.ScoreToString(report.Score), report.Depth,
		humanize.Comma(int64(report.PositionsEvaluated)), report.TimeMs,
		humanize.Comma(int64(report.PositionsPerSecond)), source)
	c.println(report.FEN)
}

// timeForMove splits the side to move's clock over the moves still to play.
func timeForMove(pos *board.Position, opts goOptions) time.Duration {
	ourTime, ourInc := opts.wTime, opts.wInc
	if pos.SideToMove == board.Black {
		ourTime, ourInc = opts.bTime, opts.bInc
	}

	movesRemaining := opts.movesToGo
	if movesRemaining == 0 {
		movesRemaining = estimateMovesRemaining(pos)
	}

	moveTime := ourTime/time.Duration(movesRemaining) + ourInc*90/100

	// Never use more than 90% of the clock
	if maxTime := ourTime * 90 / 100; moveTime > maxTime {
		moveTime = maxTime
	}
	if moveTime < 10*time.Millisecond {
		moveTime = 10 * time.Millisecond
	}
	return moveTime
}

// estimateMovesRemaining estimates remaining moves based on piece count.
func estimateMovesRemaining(pos *board.Position) int {
	totalPieces := pos.AllOccupied.PopCount()

	if totalPieces > 24 {
		return 40 // Opening/early middlegame
	} else if totalPieces > 12 {
		return 30 // Middlegame
	}
	return 20 // Endgame
}

func parseDepth(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil || depth < 1 {
		return 0, fmt.Errorf("bad depth %q", args[0])
	}
	return depth, nil
}

// handlePerft runs a perft test.
func (c *Console) handlePerft(args []string) {
	depth, err := parseDepth(args, 5)
	if err != nil {
		c.println("error: " + err.Error())
		return
	}

	start := time.Now()
	nodes := engine.Perft(c.game.Position(), depth)
	elapsed := time.Since(start)

	c.printf("Nodes: %s\n", humanize.Comma(int64(nodes)))
	c.printf("Time: %v\n", elapsed.Round(time.Millisecond))
	if elapsed > 0 {
		c.printf("NPS: %s\n", humanize.SIWithDigits(float64(nodes)/elapsed.Seconds(), 2, ""))
	}
}

// handleDivide prints the perft count below each root move.
func (c *Console) handleDivide(ctx context.Context, args []string) {
	depth, err := parseDepth(args, 4)
	if err != nil {
		c.println("error: " + err.Error())
		return
	}

	entries, total, err := engine.Divide(ctx, c.game.Position(), depth)
	if err != nil {
		c.println("error: " + err.Error())
		return
	}
	for _, e := range entries {
		c.printf("%s: %d\n", e.Move, e.Nodes)
	}
	c.printf("Total: %d\n", total)
}

func (c *Console) handleDisplay() {
	fmt.Fprint(c.out, c.game.Diagram())
	if moves := c.game.MovesSAN(); len(moves) > 0 {
		c.println("Moves: " + strings.Join(moves, " "))
	}
	c.println("Status: " + c.game.Outcome().String())
}

// SendInfo prints one completed search iteration. It is meant to be set as
// the engine's OnInfo callback.
func (c *Console) SendInfo(info engine.SearchInfo) {
	parts := []string{fmt.Sprintf("depth %d", info.Depth)}

	if info.Score > engine.MateScore-engine.MaxPly {
		parts = append(parts, fmt.Sprintf("score mate %d", (engine.MateScore-info.Score+1)/2))
	} else if info.Score < -engine.MateScore+engine.MaxPly {
		parts = append(parts, fmt.Sprintf("score mate -%d", (engine.MateScore+info.Score+1)/2))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))
	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}
	if len(info.PV) > 0 {
		pv := make([]string, len(info.PV))
		for i, m := range info.PV {
			pv[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	c.printf("info %s\n", strings.Join(parts, " "))
}
