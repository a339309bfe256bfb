package s3_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"llmbroker/internal/domain"
	"llmbroker/internal/port"
	"llmbroker/internal/storage/s3"
	"llmbroker/mocks"
)

const bucket = "llmbroker-cache"

func TestCacheStore_PutWritesJSONObject(t *testing.T) {
	ctx := context.Background()
	storage := new(mocks.MockObjectStorage)
	store := s3.NewCacheStore(storage, bucket, "cache")
	exp := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	var body []byte
	storage.On("Upload", ctx, mock.MatchedBy(func(in port.UploadInput) bool {
		if in.Bucket != bucket || in.Key != "cache/default/abc.json" || in.ContentType != "application/json" {
			return false
		}
		if b, _ := io.ReadAll(in.Body); len(b) > 0 {
			body = b
		}
		return true
	})).Return(&port.UploadOutput{}, nil)

	err := store.Put(ctx, "default", &domain.CacheEntry{Key: "abc", Response: `{"a":1}`, ExpiresAt: exp})
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":"{\"a\":1}","expires_at":"2025-03-01T10:00:00Z"}`, string(body))
	storage.AssertExpectations(t)
}

func TestCacheStore_GetDecodesObject(t *testing.T) {
	ctx := context.Background()
	storage := new(mocks.MockObjectStorage)
	store := s3.NewCacheStore(storage, bucket, "cache")

	storage.On("Download", ctx, bucket, "cache/default/abc.json").
		Return([]byte(`{"response":"hello","expires_at":"2025-03-01T10:00:00Z"}`), nil)

	entry, err := store.Get(ctx, "default", "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", entry.Key)
	assert.Equal(t, "hello", entry.Response)
	assert.True(t, entry.ExpiresAt.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)))
}

func TestCacheStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	storage := new(mocks.MockObjectStorage)
	store := s3.NewCacheStore(storage, bucket, "")

	storage.On("Download", ctx, bucket, "default/abc.json").Return(nil, domain.ErrNotFound)

	_, err := store.Get(ctx, "default", "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCacheStore_GetCorruptObject(t *testing.T) {
	ctx := context.Background()
	storage := new(mocks.MockObjectStorage)
	store := s3.NewCacheStore(storage, bucket, "cache")

	storage.On("Download", ctx, bucket, "cache/default/abc.json").Return([]byte("not json"), nil)

	_, err := store.Get(ctx, "default", "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestCacheStore_DeleteAllRemovesPartitionPrefix(t *testing.T) {
	ctx := context.Background()
	storage := new(mocks.MockObjectStorage)
	store := s3.NewCacheStore(storage, bucket, "cache")

	keys := []string{"cache/invoices/a.json", "cache/invoices/b.json"}
	storage.On("List", ctx, bucket, "cache/invoices/").Return(keys, nil)
	storage.On("DeleteMany", ctx, bucket, keys).Return(nil)

	require.NoError(t, store.DeleteAll(ctx, "invoices"))
	storage.AssertExpectations(t)
}

func TestCacheStore_DeleteAllEmptyPartition(t *testing.T) {
	ctx := context.Background()
	storage := new(mocks.MockObjectStorage)
	store := s3.NewCacheStore(storage, bucket, "cache")

	storage.On("List", ctx, bucket, "cache/invoices/").Return([]string{}, nil)

	require.NoError(t, store.DeleteAll(ctx, "invoices"))
	storage.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything, mock.Anything)
}

func TestCacheStore_DeleteAllListError(t *testing.T) {
	ctx := context.Background()
	storage := new(mocks.MockObjectStorage)
	store := s3.NewCacheStore(storage, bucket, "cache")

	storage.On("List", ctx, bucket, "cache/invoices/").Return(nil, errors.New("access denied"))

	err := store.DeleteAll(ctx, "invoices")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestCacheStore_DeleteAndPing(t *testing.T) {
	ctx := context.Background()
	storage := new(mocks.MockObjectStorage)
	store := s3.NewCacheStore(storage, bucket, "cache")

	storage.On("Delete", ctx, bucket, "cache/default/abc.json").Return(nil)
	storage.On("HeadBucket", ctx, bucket).Return(nil)

	require.NoError(t, store.Delete(ctx, "default", "abc"))
	require.NoError(t, store.Ping(ctx))
	storage.AssertExpectations(t)
}
