package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"llmbroker/internal/domain"
)

// MockCacheStore is a mock implementation of port.CacheStore.
type MockCacheStore struct {
	mock.Mock
}

func (m *MockCacheStore) Get(ctx context.Context, partition, key string) (*domain.CacheEntry, error) {
	args := m.Called(ctx, partition, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CacheEntry), args.Error(1)
}

func (m *MockCacheStore) Put(ctx context.Context, partition string, entry *domain.CacheEntry) error {
	args := m.Called(ctx, partition, entry)
	return args.Error(0)
}

func (m *MockCacheStore) Delete(ctx context.Context, partition, key string) error {
	args := m.Called(ctx, partition, key)
	return args.Error(0)
}

func (m *MockCacheStore) DeleteAll(ctx context.Context, partition string) error {
	args := m.Called(ctx, partition)
	return args.Error(0)
}

func (m *MockCacheStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
