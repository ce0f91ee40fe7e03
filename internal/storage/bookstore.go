package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/samumartinf/taures/internal/board"
	"github.com/samumartinf/taures/internal/book"
)

// ErrCorruptRecord is returned when a stored book record cannot be decoded
// or names a move that is not legal in its position.
var ErrCorruptRecord = errors.New("corrupt book record")

// bookRecord is the JSON value stored per position.
type bookRecord struct {
	FEN   string       `json:"fen"`
	Moves []bookMoveJS `json:"moves"`
}

type bookMoveJS struct {
	Move   string `json:"move"`
	Weight int    `json:"weight"`
}

// BookStore is a read-only opening book backed by BadgerDB. It implements
// book.Source.
type BookStore struct {
	db  *badger.DB
	log zerolog.Logger
}

// OpenBookStore opens an existing book database read-only.
func OpenBookStore(dir string, log zerolog.Logger) (*BookStore, error) {
	db, err := openDB(dir, true, log)
	if err != nil {
		return nil, fmt.Errorf("open book store %s: %w", dir, err)
	}
	return &BookStore{db: db, log: log}, nil
}

// Close closes the database.
func (s *BookStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Lookup returns the stored replies for pos, heaviest first. Positions not in
// the book yield no entries.
func (s *BookStore) Lookup(pos *board.Position) ([]book.Entry, error) {
	fen := positionKey(pos)

	var rec *bookRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(fen))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			rec = &bookRecord{}
			if err := json.Unmarshal(val, rec); err != nil {
				return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
			}
			return nil
		})
	})
	if err != nil || rec == nil {
		return nil, err
	}

	// Hash collision with another position
	if rec.FEN != fen {
		s.log.Debug().Str("fen", fen).Str("stored", rec.FEN).Msg("book key collision")
		return nil, nil
	}

	entries := make([]book.Entry, 0, len(rec.Moves))
	for _, bm := range rec.Moves {
		m, err := board.ParseMove(bm.Move, pos)
		if err != nil {
			return nil, fmt.Errorf("%w: %s in %s", ErrCorruptRecord, bm.Move, fen)
		}
		entries = append(entries, book.Entry{Move: m, Weight: bm.Weight})
	}
	book.SortEntries(entries)
	return entries, nil
}

// ImportLines replays SAN lines (see book.ReplayLines) and adds every move to
// the book database in dir, creating it if needed. Weights add up with those
// already stored. It returns the number of positions written.
func ImportLines(dir string, r io.Reader, log zerolog.Logger) (int, error) {
	records := make(map[string]*bookRecord)
	err := book.ReplayLines(r, func(pos *board.Position, m board.Move) error {
		fen := positionKey(pos)
		rec, ok := records[fen]
		if !ok {
			rec = &bookRecord{FEN: fen}
			records[fen] = rec
		}
		rec.add(m.String(), 1)
		return nil
	})
	if err != nil {
		return 0, err
	}

	db, err := openDB(dir, false, log)
	if err != nil {
		return 0, fmt.Errorf("open book store %s: %w", dir, err)
	}
	defer db.Close()

	// Merge with what is already stored
	err = db.View(func(txn *badger.Txn) error {
		for fen, rec := range records {
			item, err := txn.Get(recordKey(fen))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			var old bookRecord
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &old)
			})
			if err != nil || old.FEN != fen {
				log.Warn().Str("fen", fen).Msg("replacing unreadable book record")
				continue
			}
			for _, bm := range old.Moves {
				rec.add(bm.Move, bm.Weight)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	wb := db.NewWriteBatch()
	defer wb.Cancel()
	for fen, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return 0, err
		}
		if err := wb.Set(recordKey(fen), data); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}

	log.Info().Int("positions", len(records)).Str("dir", dir).Msg("book imported")
	return len(records), nil
}

func (r *bookRecord) add(move string, weight int) {
	for i := range r.Moves {
		if r.Moves[i].Move == move {
			r.Moves[i].Weight += weight
			return
		}
	}
	r.Moves = append(r.Moves, bookMoveJS{Move: move, Weight: weight})
}

// positionKey is the FEN without the move clocks, so transpositions reached
// at different move numbers share a record.
func positionKey(pos *board.Position) string {
	fields := strings.Fields(pos.ToFEN())
	return strings.Join(fields[:4], " ")
}

// recordKey is the fixed-width database key of a position.
func recordKey(fen string) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], xxhash.Sum64String(fen))
	return key[:]
}

func openDB(dir string, readOnly bool, log zerolog.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).
		WithReadOnly(readOnly).
		WithLogger(badgerLogger{log: log.With().Str("component", "badger").Logger()})
	return badger.Open(opts)
}

// badgerLogger forwards badger's messages to zerolog. Badger's info and
// debug output is demoted to debug and trace.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Msgf(strings.TrimSpace(format), args...)
}
