package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/samumartinf/taures/internal/board"
	"github.com/samumartinf/taures/internal/book"
	"github.com/samumartinf/taures/internal/console"
	"github.com/samumartinf/taures/internal/engine"
	"github.com/samumartinf/taures/internal/game"
	"github.com/samumartinf/taures/internal/storage"
)

var (
	hashMB     = flag.Int("hash", 16, "transposition table size in MB")
	depth      = flag.Int("depth", engine.DefaultDepth, "default search depth for go")
	moveTime   = flag.Duration("movetime", 0, "default time budget for go (0 = none)")
	difficulty = flag.String("difficulty", "", "preset overriding -depth and -movetime: easy, medium or hard")
	bookPath   = flag.String("book", "", "SAN opening lines file (default: embedded lines, \"none\" disables)")
	bookDB     = flag.String("book-db", "", "badger opening book directory, used instead of -book")
	importBook = flag.String("import-book", "", "import SAN lines from this file into the book database and exit")
	bookMoves  = flag.Int("book-moves", 8, "consult the book up to this full move number")
	seed       = flag.Uint64("seed", 1, "seed for book and random moves")
	logLevel   = flag.String("log-level", "info", "log level: trace, debug, info, warn, error")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	debug      = flag.Bool("debug", false, "check position invariants after every make and unmake")
)

func main() {
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
	if err != nil {
		logger.Warn().Str("level", *logLevel).Msg("unknown log level, using info")
	}

	board.Debug = *debug

	if *importBook != "" {
		if err := runImport(*importBook, logger); err != nil {
			logger.Fatal().Err(err).Msg("book import failed")
		}
		return
	}

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		logger.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	limits := engine.SearchLimits{Depth: *depth, MoveTime: *moveTime}
	if *difficulty != "" {
		d, ok := parseDifficulty(*difficulty)
		if !ok {
			logger.Fatal().Str("difficulty", *difficulty).Msg("unknown difficulty")
		}
		limits = engine.DifficultySettings[d]
	}

	opts := engine.DefaultOptions()
	opts.HashMB = *hashMB
	opts.BookMoves = *bookMoves
	opts.Seed = *seed
	opts.Logger = logger.With().Str("component", "engine").Logger()

	src, closeBook := openBook(logger)
	defer closeBook()
	if src != nil {
		opts.Book = src
	}

	eng := engine.New(opts)
	g := game.New(eng, *seed, logger.With().Str("component", "game").Logger())
	c := console.New(g, os.Stdout, limits.Depth, limits.MoveTime, logger.With().Str("component", "console").Logger())
	eng.OnInfo = c.SendInfo

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := c.Run(ctx, os.Stdin); err != nil && err != context.Canceled {
		logger.Error().Err(err).Msg("console stopped")
	}
}

func parseDifficulty(s string) (engine.Difficulty, bool) {
	switch strings.ToLower(s) {
	case "easy":
		return engine.Easy, true
	case "medium":
		return engine.Medium, true
	case "hard":
		return engine.Hard, true
	}
	return 0, false
}

// openBook returns the configured opening book, or nil when disabled or
// unavailable. A broken book is logged and the engine runs without one.
func openBook(logger zerolog.Logger) (book.Source, func()) {
	noop := func() {}

	if *bookDB != "" {
		store, err := storage.OpenBookStore(*bookDB, logger.With().Str("component", "book").Logger())
		if err != nil {
			logger.Warn().Err(err).Msg("book database unavailable, playing without a book")
			return nil, noop
		}
		return store, func() { store.Close() }
	}

	switch *bookPath {
	case "none":
		return nil, noop
	case "":
		b, err := book.Default()
		if err != nil {
			logger.Warn().Err(err).Msg("embedded book unreadable")
			return nil, noop
		}
		return b, noop
	}

	f, err := os.Open(*bookPath)
	if err != nil {
		logger.Warn().Err(err).Msg("book file unavailable, playing without a book")
		return nil, noop
	}
	defer f.Close()

	b, err := book.LoadLines(f)
	if err != nil {
		logger.Warn().Err(err).Str("path", *bookPath).Msg("book file unreadable, playing without a book")
		return nil, noop
	}
	logger.Info().Int("positions", b.Size()).Str("path", *bookPath).Msg("book loaded")
	return b, noop
}

func runImport(path string, logger zerolog.Logger) error {
	dir := *bookDB
	if dir == "" {
		var err error
		if dir, err = storage.BookDBDir(); err != nil {
			return err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = storage.ImportLines(dir, f, logger.With().Str("component", "book").Logger())
	return err
}
