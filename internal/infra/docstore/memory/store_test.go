//go:build unit

package memory_test

import (
	"context"
	"testing"

	"class-booking/internal/infra/docstore/memory"
	"class-booking/internal/usecase/shared"
	"class-booking/tests/common/docstoretest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Contract(t *testing.T) {
	docstoretest.Run(t, memory.New(nil))
}

func TestStore_Put(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)

	require.NoError(t, store.Put(ctx, "class", "fixed-id", shared.Fields{"slots_left": 4}))
	require.NoError(t, store.Put(ctx, "class", "fixed-id", shared.Fields{"slots_left": 3}))

	docs, err := store.ListAll(ctx, "class")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "fixed-id", docs[0].ID)
	assert.Equal(t, float64(3), docs[0].Fields["slots_left"], "values are stored JSON-normalized")
}

func TestStore_ListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	require.NoError(t, store.Put(ctx, "class", "a", shared.Fields{"day": "Mon"}))

	docs, err := store.ListAll(ctx, "class")
	require.NoError(t, err)
	docs[0].Fields["day"] = "changed"

	again, err := store.ListAll(ctx, "class")
	require.NoError(t, err)
	assert.Equal(t, "Mon", again[0].Fields["day"])
}
