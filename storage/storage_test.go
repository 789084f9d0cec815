package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/populatedb/populatedb/key"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestOpenPersistentRequiresDir(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
}

func TestTableInsertAndContains(t *testing.T) {
	store := openTestStore(t)
	table, err := NewTable(store, "sessions")
	require.NoError(t, err)

	k := key.FromMap(map[string]any{"subject_id": 1})

	exists, err := table.Contains(k)
	require.NoError(t, err)
	require.False(t, exists)

	err = store.Update(func(tx *Txn) error {
		return table.Insert(tx, k, map[string]any{"duration": 42})
	})
	require.NoError(t, err)

	exists, err = table.Contains(k)
	require.NoError(t, err)
	require.True(t, exists)

	rows, err := table.Rows(k)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.JSONEq(t, `{"duration":42}`, string(rows[0]))
}

func TestTableMarkWithoutRows(t *testing.T) {
	store := openTestStore(t)
	table, err := NewTable(store, "empty")
	require.NoError(t, err)

	k := key.FromMap(map[string]any{"id": "a"})

	err = store.Update(func(tx *Txn) error {
		return table.Mark(tx, k)
	})
	require.NoError(t, err)

	exists, err := table.Contains(k)
	require.NoError(t, err)
	require.True(t, exists)

	rows, err := table.Rows(k)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestTableKeys(t *testing.T) {
	store := openTestStore(t)
	table, err := NewTable(store, "things")
	require.NoError(t, err)

	err = store.Update(func(tx *Txn) error {
		for i := 1; i <= 3; i++ {
			err := table.Insert(tx, key.FromMap(map[string]any{"id": i}), map[string]any{"n": i})
			if err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	keys, err := table.Keys()
	require.NoError(t, err)
	require.Len(t, keys, 3)

	count, err := table.Count()
	require.NoError(t, err)
	require.Equal(t, 3, count)

	rows, err := table.CountRows()
	require.NoError(t, err)
	require.Equal(t, 3, rows)
}

func TestTableInvalidName(t *testing.T) {
	store := openTestStore(t)

	_, err := NewTable(store, "")
	require.Error(t, err)

	_, err = NewTable(store, "a/b")
	require.Error(t, err)
}

func TestRacingTransactionsConflict(t *testing.T) {
	store := openTestStore(t)
	table, err := NewTable(store, "contended")
	require.NoError(t, err)

	k := key.FromMap(map[string]any{"id": 1})

	tx1 := store.Begin()
	defer tx1.Discard()
	tx2 := store.Begin()
	defer tx2.Discard()

	// both read the marker, both write it: the second commit must lose
	for _, tx := range []*Txn{tx1, tx2} {
		exists, err := table.Exists(tx, k)
		require.NoError(t, err)
		require.False(t, exists)
		require.NoError(t, table.Mark(tx, k))
	}

	require.NoError(t, tx1.Commit())

	err = tx2.Commit()
	require.True(t, IsConflict(err))

	conflict := &ConflictError{}
	require.ErrorAs(t, err, &conflict)
	require.Contains(t, conflict.Culprit, "txn ")
}

func TestConflictResolveHonorsContext(t *testing.T) {
	conflict := &ConflictError{Culprit: "txn test", backoff: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := conflict.Resolve(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestConflictResolvePauses(t *testing.T) {
	conflict := &ConflictError{Culprit: "txn test", backoff: time.Millisecond}
	require.NoError(t, conflict.Resolve(context.Background()))
}
