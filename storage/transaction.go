package storage

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Txn is a transaction handle. It is owned by exactly one attempt and must be
// released on every exit path: either one Commit or one Discard. Discard
// after Commit is a no-op, so `defer tx.Discard()` right after Begin is the
// expected usage.
type Txn struct {
	id      string
	txn     *badger.Txn
	update  bool
	backoff time.Duration
}

func (s *Store) Begin() *Txn {
	return s.newTxn(true)
}

func (s *Store) newTxn(update bool) *Txn {
	return &Txn{
		id:      uuid.New().String(),
		txn:     s.db.NewTransaction(update),
		update:  update,
		backoff: s.backoff,
	}
}

func (t *Txn) ID() string {
	return t.id
}

// Commit makes the writes of this transaction visible. A serialization
// conflict comes back as *ConflictError: the transaction is already
// discarded, the caller is expected to Resolve and retry from Begin.
func (t *Txn) Commit() error {
	err := t.txn.Commit()
	if errors.Is(err, badger.ErrConflict) {
		return &ConflictError{
			Culprit: "txn " + t.id,
			backoff: t.backoff,
		}
	}
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *Txn) Discard() {
	t.txn.Discard()
}

// ConflictError signals a transaction that must be abandoned and retried,
// not a logical failure. Culprit names the losing transaction for logs.
type ConflictError struct {
	Culprit string
	backoff time.Duration
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("transaction conflict in %s", e.Culprit)
}

// Resolve is the recovery step to run before retrying: a randomized pause so
// competing writers separate. It honors context cancellation.
func (e *ConflictError) Resolve(ctx context.Context) error {
	pause := e.backoff
	if pause <= 0 {
		pause = 10 * time.Millisecond
	}
	pause += time.Duration(rand.Int63n(int64(pause)))

	timer := time.NewTimer(pause)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func IsConflict(err error) bool {
	conflict := &ConflictError{}
	return errors.As(err, &conflict)
}
