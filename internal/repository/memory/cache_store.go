// Package memory provides an in-process cache store.
package memory

import (
	"context"
	"sync"

	"llmbroker/internal/domain"
	"llmbroker/internal/port"
)

type cacheStore struct {
	mu         sync.RWMutex
	partitions map[string]map[string]domain.CacheEntry
}

// NewCacheStore creates an empty in-memory CacheStore. Entries live until the
// process exits or they are deleted.
func NewCacheStore() port.CacheStore {
	return &cacheStore{partitions: make(map[string]map[string]domain.CacheEntry)}
}

func (s *cacheStore) Get(_ context.Context, partition, key string) (*domain.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.partitions[partition][key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

func (s *cacheStore) Put(_ context.Context, partition string, entry *domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partitions[partition]
	if !ok {
		p = make(map[string]domain.CacheEntry)
		s.partitions[partition] = p
	}
	p[entry.Key] = *entry
	return nil
}

func (s *cacheStore) Delete(_ context.Context, partition, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.partitions[partition], key)
	return nil
}

func (s *cacheStore) DeleteAll(_ context.Context, partition string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.partitions, partition)
	return nil
}

func (s *cacheStore) Ping(context.Context) error {
	return nil
}
