//go:build unit || e2e

// Package docstoretest checks that a document store backend behaves the way
// the booking flow expects.
package docstoretest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"class-booking/internal/infra"
	"class-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Store interface {
	shared.DocumentStore
	shared.ConditionalUpdater
	shared.Transactor
}

// Run exercises store. Every case works in its own collection.
func Run(t *testing.T, store Store) {
	t.Helper()

	t.Run("insert and list keep insertion order", func(t *testing.T) {
		ctx, coll := setup(t)

		first, err := store.Insert(ctx, coll, shared.Fields{"day": "Mon", "slots_left": 2})
		require.NoError(t, err)
		second, err := store.Insert(ctx, coll, shared.Fields{"day": "Tue", "slots_left": 0})
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		docs, err := store.ListAll(ctx, coll)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, first, docs[0].ID)
		assert.Equal(t, second, docs[1].ID)
		assert.Equal(t, "Mon", docs[0].Fields["day"])
		assert.EqualValues(t, 2, docs[0].Fields["slots_left"])
	})

	t.Run("list of an unknown collection is empty", func(t *testing.T) {
		ctx, coll := setup(t)

		docs, err := store.ListAll(ctx, coll)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("update merges fields", func(t *testing.T) {
		ctx, coll := setup(t)
		id, err := store.Insert(ctx, coll, shared.Fields{"day": "Mon", "slots_left": 2})
		require.NoError(t, err)

		require.NoError(t, store.UpdateFields(ctx, coll, id, shared.Fields{"slots_left": 1}))

		docs, err := store.ListAll(ctx, coll)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Mon", docs[0].Fields["day"])
		assert.EqualValues(t, 1, docs[0].Fields["slots_left"])
	})

	t.Run("update of a missing document is not found", func(t *testing.T) {
		ctx, coll := setup(t)

		err := store.UpdateFields(ctx, coll, uuid.NewString(), shared.Fields{"slots_left": 1})
		require.Error(t, err)
		assert.True(t, infra.IsKind(err, infra.KindNotFound), "got %v", err)
	})

	t.Run("conditional update", func(t *testing.T) {
		ctx, coll := setup(t)
		id, err := store.Insert(ctx, coll, shared.Fields{"day": "Mon", "slots_left": 2})
		require.NoError(t, err)

		err = store.UpdateFieldsIf(ctx, coll, id, shared.Fields{"slots_left": 3}, shared.Fields{"slots_left": 2})
		require.Error(t, err)
		assert.True(t, infra.IsKind(err, infra.KindPreconditionFailed), "got %v", err)

		require.NoError(t, store.UpdateFieldsIf(ctx, coll, id, shared.Fields{"slots_left": 2}, shared.Fields{"slots_left": 1}))

		docs, err := store.ListAll(ctx, coll)
		require.NoError(t, err)
		assert.EqualValues(t, 1, docs[0].Fields["slots_left"])

		err = store.UpdateFieldsIf(ctx, coll, uuid.NewString(), shared.Fields{"slots_left": 1}, shared.Fields{"slots_left": 0})
		assert.True(t, infra.IsKind(err, infra.KindNotFound), "got %v", err)
	})

	t.Run("transaction commits every write", func(t *testing.T) {
		ctx, coll := setup(t)
		id, err := store.Insert(ctx, coll, shared.Fields{"slots_left": 1})
		require.NoError(t, err)
		other := coll + "_bookings"

		err = store.RunInTransaction(ctx, func(ctx context.Context, tx shared.TxWriter) error {
			if _, err := tx.Insert(ctx, other, shared.Fields{"studentName": "Ada"}); err != nil {
				return err
			}
			return tx.UpdateFieldsIf(ctx, coll, id, shared.Fields{"slots_left": 1}, shared.Fields{"slots_left": 0})
		})
		require.NoError(t, err)

		bookings, err := store.ListAll(ctx, other)
		require.NoError(t, err)
		assert.Len(t, bookings, 1)
		slots, err := store.ListAll(ctx, coll)
		require.NoError(t, err)
		assert.EqualValues(t, 0, slots[0].Fields["slots_left"])
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		ctx, coll := setup(t)
		id, err := store.Insert(ctx, coll, shared.Fields{"slots_left": 1})
		require.NoError(t, err)
		other := coll + "_bookings"
		boom := errors.New("boom")

		err = store.RunInTransaction(ctx, func(ctx context.Context, tx shared.TxWriter) error {
			if _, err := tx.Insert(ctx, other, shared.Fields{"studentName": "Ada"}); err != nil {
				return err
			}
			if err := tx.UpdateFields(ctx, coll, id, shared.Fields{"slots_left": 0}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		bookings, err := store.ListAll(ctx, other)
		require.NoError(t, err)
		assert.Empty(t, bookings)
		slots, err := store.ListAll(ctx, coll)
		require.NoError(t, err)
		assert.EqualValues(t, 1, slots[0].Fields["slots_left"])
	})

	t.Run("subscribe delivers snapshots", func(t *testing.T) {
		ctx, coll := setup(t)
		id, err := store.Insert(ctx, coll, shared.Fields{"slots_left": 2})
		require.NoError(t, err)

		rec := &recorder{}
		unsub, err := store.Subscribe(ctx, coll, rec.record)
		require.NoError(t, err)
		defer unsub()

		require.Equal(t, 1, rec.len(), "initial snapshot is delivered before Subscribe returns")
		assert.EqualValues(t, 2, rec.last()[0].Fields["slots_left"])

		require.NoError(t, store.UpdateFields(ctx, coll, id, shared.Fields{"slots_left": 1}))
		require.Eventually(t, func() bool {
			docs := rec.last()
			return len(docs) == 1 && assertNumber(docs[0].Fields["slots_left"]) == 1
		}, 5*time.Second, 20*time.Millisecond)

		_, err = store.Insert(ctx, coll, shared.Fields{"slots_left": 5})
		require.NoError(t, err)
		require.Eventually(t, func() bool { return len(rec.last()) == 2 }, 5*time.Second, 20*time.Millisecond)
	})
}

func setup(t *testing.T) (context.Context, string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx, "c_" + uuid.NewString()[:8]
}

type recorder struct {
	mu    sync.Mutex
	snaps [][]shared.Document
}

func (r *recorder) record(docs []shared.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, docs)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (r *recorder) last() []shared.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return nil
	}
	return r.snaps[len(r.snaps)-1]
}

func assertNumber(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return -1
}
