package populate

import (
	"context"
	"errors"
	"fmt"

	"github.com/populatedb/populatedb/key"
	"github.com/populatedb/populatedb/relation"
	"github.com/populatedb/populatedb/storage"
)

// Maker is the contract of a computed stage. Implementations supply the
// relation of eligible keys and the computation callback.
type Maker interface {

	// PopulateRelation returns the relation whose keys are candidates for
	// computation, typically the join of the stage's upstream dependencies
	// projected to primary key attributes.
	PopulateRelation() relation.Relation

	// MakeTuples computes the rows for one key and inserts them into the
	// target table through tx. It may write zero rows. Any error is terminal
	// for that key.
	MakeTuples(tx *storage.Txn, k key.Key) error
}

const DefaultMaxAttempts = 10

// Populator materializes the missing keys of one target table.
type Populator struct {
	Store  *storage.Store
	Target *storage.Table
	Maker  Maker

	// MaxAttempts bounds the retry loop of one key, conflicts included.
	// Zero means DefaultMaxAttempts.
	MaxAttempts int

	// Observer receives per key events. Nil is fine. Whatever the observer
	// does (or panics) never changes the outcome of the computation.
	Observer Observer
}

func NewPopulator(store *storage.Store, target *storage.Table, maker Maker) *Populator {
	return &Populator{
		Store:       store,
		Target:      target,
		Maker:       maker,
		MaxAttempts: DefaultMaxAttempts,
	}
}

type Options struct {
	// Restriction narrows the eligible keys for this call. Nil keeps all.
	Restriction relation.Restriction

	// SuppressErrors makes the batch record terminal failures and continue
	// instead of aborting on the first one.
	SuppressErrors bool
}

type KeyError struct {
	Key key.Key
	Err error
}

type Report struct {
	Processed int
	Skipped   int
	Errors    []KeyError
}

// GiveUpError is the terminal failure of a key whose attempts were exhausted
// by retryable conflicts.
type GiveUpError struct {
	Key      key.Key
	Attempts int
}

func (e *GiveUpError) Error() string {
	return fmt.Sprintf("giving up on %s after %d attempts", e.Key, e.Attempts)
}

// Populate computes every key of the populate relation that is not yet in
// the target table. The work list is a snapshot taken once at the start;
// keys appearing later are left for the next call. Each key runs in its own
// transaction with a membership re-check inside it, so concurrent populate
// calls on the same storage commit each key at most once.
func (p *Populator) Populate(ctx context.Context, options *Options) (*Report, error) {

	if options == nil {
		options = &Options{}
	}
	if p.Store == nil || p.Target == nil || p.Maker == nil {
		return nil, fmt.Errorf("populator needs store, target and maker")
	}

	observer := p.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	pending, err := relation.Pending(p.Maker.PopulateRelation(), p.Target, options.Restriction)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, k := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		skipped, err := p.populateKey(ctx, k, observer)
		if err != nil {
			observe(func() { observer.Failed(k, err) })
			if !options.SuppressErrors {
				return report, fmt.Errorf("populate %s: %w", k, err)
			}
			report.Errors = append(report.Errors, KeyError{Key: k, Err: err})
			continue
		}
		if skipped {
			report.Skipped++
			continue
		}
		report.Processed++
	}

	return report, nil
}

// populateKey drives the bounded retry loop of one key.
func (p *Populator) populateKey(ctx context.Context, k key.Key, observer Observer) (skipped bool, err error) {

	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		skipped, err := p.attempt(k, observer)

		conflict := &storage.ConflictError{}
		if errors.As(err, &conflict) {
			observe(func() { observer.Retry(k, conflict.Culprit, attempt) })
			err = conflict.Resolve(ctx)
			if err != nil {
				return false, err
			}
			continue
		}

		return skipped, err
	}

	return false, &GiveUpError{Key: k, Attempts: maxAttempts}
}

// attempt is one transaction scope: re-check, compute, mark, commit. The
// deferred Discard releases the transaction on every exit path, a discard
// after commit is a no-op.
func (p *Populator) attempt(k key.Key, observer Observer) (skipped bool, err error) {

	tx := p.Store.Begin()
	defer tx.Discard()

	// Another process may have populated the key since the work list was
	// taken. This read also registers the marker in the transaction's read
	// set, closing the race window between concurrent populate calls.
	exists, err := p.Target.Exists(tx, k)
	if err != nil {
		return false, err
	}
	if exists {
		observe(func() { observer.Skipped(k) })
		return true, nil
	}

	observe(func() { observer.Started(k) })

	err = p.Maker.MakeTuples(tx, k)
	if err != nil {
		return false, err
	}

	err = p.Target.Mark(tx, k)
	if err != nil {
		return false, err
	}

	err = tx.Commit()
	if err != nil {
		return false, err
	}

	observe(func() { observer.Done(k) })
	return false, nil
}
