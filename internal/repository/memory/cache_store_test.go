package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmbroker/internal/domain"
	"llmbroker/internal/repository/memory"
)

func TestCacheStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCacheStore()
	exp := time.Now().Add(time.Hour)

	_, err := store.Get(ctx, "p", "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Put(ctx, "p", &domain.CacheEntry{Key: "k", Response: "v1", ExpiresAt: exp}))
	require.NoError(t, store.Put(ctx, "p", &domain.CacheEntry{Key: "k", Response: "v2", ExpiresAt: exp}))

	got, err := store.Get(ctx, "p", "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Response)

	require.NoError(t, store.Delete(ctx, "p", "k"))
	_, err = store.Get(ctx, "p", "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "missing", "k"))
	assert.NoError(t, store.Ping(ctx))
}

func TestCacheStore_PartitionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCacheStore()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, store.Put(ctx, "a", &domain.CacheEntry{Key: "k", Response: "from-a", ExpiresAt: exp}))
	require.NoError(t, store.Put(ctx, "b", &domain.CacheEntry{Key: "k", Response: "from-b", ExpiresAt: exp}))

	require.NoError(t, store.DeleteAll(ctx, "a"))

	_, err := store.Get(ctx, "a", "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, err := store.Get(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, "from-b", got.Response)
}

func TestCacheStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCacheStore()
	entry := &domain.CacheEntry{Key: "k", Response: "v", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Put(ctx, "p", entry))

	entry.Response = "mutated"
	got, err := store.Get(ctx, "p", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got.Response)
}
