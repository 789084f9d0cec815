package storage

import (
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

type Config struct {
	Dir        string `usage:"data directory"`
	InMemory   bool   `usage:"keep everything in memory, nothing touches disk"`
	SyncWrites bool   `usage:"fsync on every commit"`

	// Backoff is the base pause before retrying a conflicting transaction.
	Backoff time.Duration

	// Logger receives badger's internal messages. Nil disables them.
	Logger *zerolog.Logger
}

func DefaultConfig() Config {
	return Config{
		SyncWrites: true,
		Backoff:    10 * time.Millisecond,
	}
}

// InMemoryConfig is meant for tests: no disk, no fsync, short backoff.
func InMemoryConfig() Config {
	return Config{
		InMemory: true,
		Backoff:  time.Millisecond,
	}
}

// Store is the shared transactional storage. It is safe for concurrent use,
// isolation between writers is badger's (SSI, conflicts detected at commit).
type Store struct {
	db      *badger.DB
	backoff time.Duration
}

func Open(c Config) (*Store, error) {

	var options badger.Options
	if c.InMemory {
		options = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if c.Dir == "" {
			return nil, fmt.Errorf("dir is required for a persistent store")
		}
		err := os.MkdirAll(c.Dir, 0755)
		if err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		options = badger.DefaultOptions(c.Dir)
	}

	options = options.WithSyncWrites(c.SyncWrites)
	if c.Logger != nil {
		options = options.WithLogger(&badgerLogger{logger: c.Logger})
	} else {
		options = options.WithLogger(nil)
	}

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	backoff := c.Backoff
	if backoff <= 0 {
		backoff = 10 * time.Millisecond
	}

	return &Store{db: db, backoff: backoff}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// View runs fn inside a read-only transaction.
func (s *Store) View(fn func(tx *Txn) error) error {
	tx := s.newTxn(false)
	defer tx.Discard()
	return fn(tx)
}

// Update runs fn inside a read-write transaction and commits it on success.
func (s *Store) Update(fn func(tx *Txn) error) error {
	tx := s.Begin()
	defer tx.Discard()

	err := fn(tx)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// badgerLogger adapts zerolog to badger's Logger interface.
type badgerLogger struct {
	logger *zerolog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}
