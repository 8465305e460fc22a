package storage

import (
	"context"
	"testing"

	"partsgate/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKeyStore_PutAndGet(t *testing.T) {
	store := NewKeyStore()
	ctx := context.Background()
	key := uuid.New()

	require.NoError(t, store.Put(ctx, "cart:cart-1", key))

	got, err := store.Get(ctx, "cart:cart-1")
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestMemoryKeyStore_Get_AbsentScope(t *testing.T) {
	store := NewKeyStore()

	_, err := store.Get(context.Background(), "cart:unknown")

	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestMemoryKeyStore_Put_ReplacesExisting(t *testing.T) {
	store := NewKeyStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "cart:cart-1", uuid.New()))

	replacement := uuid.New()
	require.NoError(t, store.Put(ctx, "cart:cart-1", replacement))

	got, err := store.Get(ctx, "cart:cart-1")
	require.NoError(t, err)
	assert.Equal(t, replacement, got)
}

func TestMemoryKeyStore_Delete_Idempotent(t *testing.T) {
	store := NewKeyStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "cart:cart-1", uuid.New()))
	require.NoError(t, store.Delete(ctx, "cart:cart-1"))
	require.NoError(t, store.Delete(ctx, "cart:cart-1"))

	_, err := store.Get(ctx, "cart:cart-1")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}
