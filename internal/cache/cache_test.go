package cache_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"llmbroker/internal/cache"
	"llmbroker/internal/domain"
	"llmbroker/internal/repository/memory"
	"llmbroker/mocks"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newMemoryCache(t *testing.T, instanceID string) (*cache.Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := cache.NewService(memory.NewCacheStore(), instanceID, quietLogger)
	svc.SetClock(clock.Now)
	return svc, clock
}

func TestService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryCache(t, "default")

	svc.Put(ctx, "k1", `{"a":1}`, time.Minute)

	got, ok := svc.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, got)
}

func TestService_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryCache(t, "default")

	svc.Put(ctx, "k1", "first", time.Minute)
	svc.Put(ctx, "k1", "second", time.Minute)

	got, ok := svc.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestService_ExpiredEntryIsMissAndDeleted(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCacheStore()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := cache.NewService(store, "default", quietLogger)
	svc.SetClock(clock.Now)

	svc.Put(ctx, "k1", "v", time.Minute)
	clock.Advance(59 * time.Second)
	_, ok := svc.Get(ctx, "k1")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = svc.Get(ctx, "k1")
	assert.False(t, ok)

	_, err := store.Get(ctx, svc.Partition(), "k1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryCache(t, "default")

	for _, k := range []cache.Key{"k1", "k2", "k3"} {
		svc.Put(ctx, k, "v", time.Hour)
	}
	require.NoError(t, svc.InvalidateAll(ctx))

	for _, k := range []cache.Key{"k1", "k2", "k3"} {
		_, ok := svc.Get(ctx, k)
		assert.False(t, ok, "key %s must miss after invalidation", k)
	}

	svc.Put(ctx, "k1", "fresh", time.Hour)
	got, ok := svc.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, "fresh", got)
}

func TestService_InstancesDoNotShareEntries(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCacheStore()
	a := cache.NewService(store, "Invoices", quietLogger)
	b := cache.NewService(store, "contracts", quietLogger)

	a.Put(ctx, "k", "from-a", time.Hour)
	_, ok := b.Get(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, b.InvalidateAll(ctx))
	got, ok := a.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "from-a", got)
}

func TestService_StoreErrorsAreMisses(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockCacheStore)
	svc := cache.NewService(store, "default", quietLogger)

	store.On("Get", ctx, "default", "k").Return(nil, errors.New("connection refused"))
	store.On("Put", ctx, "default", mock.AnythingOfType("*domain.CacheEntry")).Return(errors.New("disk full"))

	_, ok := svc.Get(ctx, "k")
	assert.False(t, ok)
	assert.NotPanics(t, func() { svc.Put(ctx, "k", "v", time.Hour) })

	store.AssertExpectations(t)
}

func TestService_InvalidateAllSurfacesStoreError(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockCacheStore)
	svc := cache.NewService(store, "default", quietLogger)

	store.On("DeleteAll", ctx, "default").Return(errors.New("timeout"))

	err := svc.InvalidateAll(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	store.AssertExpectations(t)
}

func TestService_PutSetsExpiry(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockCacheStore)
	svc := cache.NewService(store, "default", quietLogger)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	store.On("Put", ctx, "default", mock.MatchedBy(func(e *domain.CacheEntry) bool {
		return e.Key == "k" && e.Response == "v" && e.ExpiresAt.Equal(now.Add(90*time.Minute))
	})).Return(nil)

	svc.Put(ctx, "k", "v", 90*time.Minute)
	store.AssertExpectations(t)
}

func TestService_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryCache(t, "default")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Put(ctx, "shared", "v", time.Hour)
			_, _ = svc.Get(ctx, "shared")
			if i%10 == 0 {
				_ = svc.InvalidateAll(ctx)
			}
		}()
	}
	wg.Wait()
}

func TestDeriveKey(t *testing.T) {
	base := cache.KeyMaterial{Model: "gpt-4o-mini", System: "Return JSON.", Prompt: "Customer: Acme\nQuestion: total?"}

	k1, err := cache.DeriveKey(base)
	require.NoError(t, err)
	assert.Len(t, string(k1), 64)
	assert.Equal(t, strings.ToLower(string(k1)), string(k1))

	spaced := base
	spaced.Prompt = "  Customer:   Acme\n\n Question:\ttotal?  "
	k2, err := cache.DeriveKey(spaced)
	require.NoError(t, err)
	assert.Equal(t, k1, k2, "whitespace-only differences share a key")

	changed := base
	changed.Prompt = "Customer: Acme\nQuestion: total!"
	k3, err := cache.DeriveKey(changed)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)

	otherModel := base
	otherModel.Model = "gpt-4o"
	k4, err := cache.DeriveKey(otherModel)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k4)

	withImage := base
	withImage.Images = []domain.ImagePart{{Placeholder: "<see image1>", Data: []byte{1, 2, 3}}}
	k5, err := cache.DeriveKey(withImage)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k5)

	otherImage := base
	otherImage.Images = []domain.ImagePart{{Placeholder: "<see image1>", Data: []byte{1, 2, 4}}}
	k6, err := cache.DeriveKey(otherImage)
	require.NoError(t, err)
	assert.NotEqual(t, k5, k6)
}

func TestCanonicalPrompt(t *testing.T) {
	assert.Equal(t, "a b c", cache.CanonicalPrompt("  a\n\tb   c \r\n"))
	assert.Equal(t, "", cache.CanonicalPrompt(" \n "))
}

func TestPartition(t *testing.T) {
	assert.Equal(t, "default", cache.Partition(""))
	assert.Equal(t, "default", cache.Partition("   "))
	assert.Equal(t, "invoices", cache.Partition("Invoices"))
	assert.Equal(t, "team_a_invoices-v2", cache.Partition("Team A/Invoices-v2"))
	assert.Equal(t, "_____", cache.Partition("../..")) // path separators never survive
}
