// Copyright (c) 2025 the pathindex authors
// This software is released under the MIT License.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/pathindex/pathindex/services/index/codec"
)

// Badger key layout. The current snapshot lives under one fixed key;
// every save also appends a history record keyed by a big-endian
// sequence number so iteration order equals commit order.
var (
	keyCurrent  = []byte("snapshot/current")
	keyHistoryP = []byte("snapshot/history/")
	keyNextSeq  = []byte("snapshot/next_seq")
)

// BadgerConfig holds configuration for the badger-backed store.
type BadgerConfig struct {
	// Path is the directory for database files. Required unless
	// InMemory is set.
	Path string

	// InMemory enables in-memory mode (no disk persistence). Used by
	// tests.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// MaxHistory bounds the number of prior snapshots kept. Zero keeps
	// no history; negative keeps everything.
	MaxHistory int

	// GCInterval is how often value log garbage collection runs.
	// Zero disables GC.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum garbage ratio before GC rewrites a
	// value log file.
	GCDiscardRatio float64

	// Logger receives store and badger diagnostics.
	Logger *slog.Logger
}

// DefaultBadgerConfig returns production defaults: durable writes,
// ten snapshots of history, five-minute GC.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		SyncWrites:     true,
		MaxHistory:     10,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryBadgerConfig returns a configuration for tests: in-memory,
// async writes, GC disabled.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{
		InMemory:   true,
		MaxHistory: 10,
	}
}

// badgerLogger adapts slog.Logger to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// BadgerStore persists documents in an embedded BadgerDB.
//
// Thread Safety: safe for concurrent use; badger transactions provide
// the isolation.
type BadgerStore struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger *slog.Logger
	stopGC chan struct{}
	doneGC chan struct{}
}

// HistoryRecord is one archived snapshot.
type HistoryRecord struct {
	// Seq is the save sequence number, increasing with every Save.
	Seq uint64

	// Document is the archived snapshot.
	Document *codec.Document
}

// NewBadgerStore opens (or creates) a badger-backed store.
//
// Description:
//
//	Opens the database at cfg.Path, creating the directory if needed,
//	and starts the GC loop when configured. Callers must Close the
//	store to release the database lock.
//
// Outputs:
//
//	*BadgerStore - The open store.
//	error - Non-nil if the path is missing or badger cannot open.
func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent badger store")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	logger := cfg.Logger.With("component", "badgerstore")

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)
	opts = opts.WithLogger(&badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}

	s := &BadgerStore{
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.stopGC = make(chan struct{})
		s.doneGC = make(chan struct{})
		go s.gcLoop()
	}
	return s, nil
}

// Save persists doc as the current snapshot and appends it to history.
func (s *BadgerStore) Save(ctx context.Context, doc *codec.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := codec.Marshal(doc)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		seq, err := s.nextSeq(txn)
		if err != nil {
			return err
		}
		if err := txn.Set(keyCurrent, data); err != nil {
			return err
		}
		if s.cfg.MaxHistory != 0 {
			if err := txn.Set(historyKey(seq), data); err != nil {
				return err
			}
		}
		return s.pruneHistory(txn, seq)
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.logger.Debug("saved snapshot", "bytes", len(data))
	return nil
}

// Load returns the current snapshot, or ErrNoSnapshot.
func (s *BadgerStore) Load(ctx context.Context) (*codec.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyCurrent)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return codec.Unmarshal(data)
}

// History returns up to n archived snapshots, newest first. n <= 0
// returns all.
func (s *BadgerStore) History(ctx context.Context, n int) ([]HistoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []HistoryRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyHistoryP
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration must seek past the last possible key in
		// the prefix range.
		seek := append(append([]byte(nil), keyHistoryP...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		for it.Seek(seek); it.ValidForPrefix(keyHistoryP); it.Next() {
			if n > 0 && len(records) >= n {
				break
			}
			item := it.Item()
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			doc, err := codec.Unmarshal(data)
			if err != nil {
				return err
			}
			records = append(records, HistoryRecord{
				Seq:      seqFromKey(item.Key()),
				Document: doc,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return records, nil
}

// Close stops GC and closes the database.
func (s *BadgerStore) Close() error {
	if s.stopGC != nil {
		close(s.stopGC)
		<-s.doneGC
		s.stopGC = nil
	}
	return s.db.Close()
}

// nextSeq reads, increments, and writes back the sequence counter.
func (s *BadgerStore) nextSeq(txn *badger.Txn) (uint64, error) {
	var seq uint64 = 1
	item, err := txn.Get(keyNextSeq)
	switch {
	case err == nil:
		err = item.Value(func(v []byte) error {
			if len(v) == 8 {
				seq = binary.BigEndian.Uint64(v)
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	case errors.Is(err, badger.ErrKeyNotFound):
		// first save
	default:
		return 0, err
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq+1)
	if err := txn.Set(keyNextSeq, buf); err != nil {
		return 0, err
	}
	return seq, nil
}

// pruneHistory drops history records older than MaxHistory.
func (s *BadgerStore) pruneHistory(txn *badger.Txn, latest uint64) error {
	if s.cfg.MaxHistory < 0 {
		return nil
	}
	if latest <= uint64(s.cfg.MaxHistory) {
		return nil
	}
	cutoff := latest - uint64(s.cfg.MaxHistory)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = keyHistoryP
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var stale [][]byte
	for it.Seek(keyHistoryP); it.ValidForPrefix(keyHistoryP); it.Next() {
		key := it.Item().KeyCopy(nil)
		if seqFromKey(key) <= cutoff {
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (s *BadgerStore) gcLoop() {
	defer close(s.doneGC)

	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(s.cfg.GCDiscardRatio)
			if err == nil {
				s.logger.Debug("badger value log GC completed")
			} else if !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("badger value log GC error", "error", err.Error())
			}
		}
	}
}

func historyKey(seq uint64) []byte {
	key := make([]byte, len(keyHistoryP)+8)
	copy(key, keyHistoryP)
	binary.BigEndian.PutUint64(key[len(keyHistoryP):], seq)
	return key
}

func seqFromKey(key []byte) uint64 {
	if len(key) < len(keyHistoryP)+8 {
		return 0
	}
	return binary.BigEndian.Uint64(key[len(keyHistoryP):])
}
