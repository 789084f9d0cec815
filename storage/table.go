package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/populatedb/populatedb/key"
)

// Table is a named row namespace inside a Store. Each populated key owns a
// done marker plus zero or more payload rows:
//
//	done/<table>/<key>         -> canonical key bytes
//	row/<table>/<key>/<rowid>  -> payload JSON
//
// Membership of a key means its done marker exists, independently of how
// many rows the computation produced. The marker is a deterministic read and
// write target per key, which is what lets badger detect two writers racing
// on the same key.
type Table struct {
	store *Store
	name  string
}

func NewTable(store *Store, name string) (*Table, error) {
	if name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("invalid table name '%s'", name)
	}
	return &Table{store: store, name: name}, nil
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) markerKey(enc []byte) []byte {
	return []byte("done/" + t.name + "/" + string(enc))
}

func (t *Table) rowPrefix(enc []byte) []byte {
	return []byte("row/" + t.name + "/" + string(enc) + "/")
}

// Insert writes one payload row for k and its done marker, all inside tx.
// Nothing is visible until the transaction commits.
func (t *Table) Insert(tx *Txn, k key.Key, payload any) error {

	enc, err := k.Encode()
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("json encode payload: %w", err)
	}

	rowKey := append(t.rowPrefix(enc), []byte(uuid.New().String())...)
	err = tx.txn.Set(rowKey, body)
	if err != nil {
		return fmt.Errorf("set row: %w", err)
	}

	return t.Mark(tx, k)
}

// Mark records k as populated without adding any row. A computation is
// allowed to produce zero rows and the key still counts as done.
func (t *Table) Mark(tx *Txn, k key.Key) error {

	enc, err := k.Encode()
	if err != nil {
		return err
	}

	err = tx.txn.Set(t.markerKey(enc), enc)
	if err != nil {
		return fmt.Errorf("set marker: %w", err)
	}

	return nil
}

// Exists checks membership inside tx. In a read-write transaction the lookup
// registers the marker in the read set, so a concurrent commit on the same
// key turns into a conflict at commit time instead of a duplicate.
func (t *Table) Exists(tx *Txn, k key.Key) (bool, error) {

	enc, err := k.Encode()
	if err != nil {
		return false, err
	}

	_, err = tx.txn.Get(t.markerKey(enc))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get marker: %w", err)
	}
	return true, nil
}

// Contains checks membership in a fresh read-only transaction.
func (t *Table) Contains(k key.Key) (exists bool, err error) {
	err = t.store.View(func(tx *Txn) error {
		exists, err = t.Exists(tx, k)
		return err
	})
	return
}

// Keys returns every populated key, which makes any Table usable as the
// populate relation of a downstream stage.
func (t *Table) Keys() ([]key.Key, error) {

	keys := []key.Key{}
	err := t.store.View(func(tx *Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte("done/" + t.name + "/")
		it := tx.txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			enc, err := it.Item().ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read marker: %w", err)
			}
			k, err := key.Decode(enc)
			if err != nil {
				return err
			}
			keys = append(keys, k)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

// Rows returns the payloads stored for one key.
func (t *Table) Rows(k key.Key) ([]json.RawMessage, error) {

	enc, err := k.Encode()
	if err != nil {
		return nil, err
	}

	rows := []json.RawMessage{}
	err = t.store.View(func(tx *Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = t.rowPrefix(enc)
		it := tx.txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			body, err := it.Item().ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read row: %w", err)
			}
			rows = append(rows, body)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// Count returns the number of populated keys.
func (t *Table) Count() (int, error) {
	return t.countPrefix("done/" + t.name + "/")
}

// CountRows returns the total number of payload rows.
func (t *Table) CountRows() (int, error) {
	return t.countPrefix("row/" + t.name + "/")
}

func (t *Table) countPrefix(prefix string) (int, error) {
	total := 0
	err := t.store.View(func(tx *Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte(prefix)
		options.PrefetchValues = false
		it := tx.txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			total++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
