// Package cache implements the content-addressed response cache with lazy TTL
// expiry on top of a pluggable port.CacheStore.
package cache

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"llmbroker/internal/domain"
	"llmbroker/internal/port"
)

const lockStripes = 64

// Service is the response cache of one broker instance.
type Service struct {
	store     port.CacheStore
	partition string
	logger    *slog.Logger
	now       func() time.Time

	locks [lockStripes]sync.Mutex
}

// NewService binds store to the partition derived from instanceID.
func NewService(store port.CacheStore, instanceID string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		partition: Partition(instanceID),
		logger:    logger,
		now:       time.Now,
	}
}

// Partition returns the storage partition this cache writes to.
func (s *Service) Partition() string {
	return s.partition
}

func (s *Service) lockFor(key Key) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.locks[h.Sum32()%lockStripes]
}

// Get returns the cached response for key. Expired entries are deleted and
// reported as a miss. Store failures are logged and reported as a miss.
func (s *Service) Get(ctx context.Context, key Key) (string, bool) {
	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	entry, err := s.store.Get(ctx, s.partition, string(key))
	if errors.Is(err, domain.ErrNotFound) {
		return "", false
	}
	if err != nil {
		s.logger.Warn("cacheService.Get: store read failed, treating as miss",
			"partition", s.partition, "key", key, "error", err)
		return "", false
	}

	if entry.Expired(s.now()) {
		if err := s.store.Delete(ctx, s.partition, string(key)); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("cacheService.Get: deleting expired entry failed",
				"partition", s.partition, "key", key, "error", err)
		}
		return "", false
	}
	return entry.Response, true
}

// Put stores response under key for ttl, replacing any existing entry.
// Store failures are logged and otherwise ignored.
func (s *Service) Put(ctx context.Context, key Key, response string, ttl time.Duration) {
	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	entry := &domain.CacheEntry{
		Key:       string(key),
		Response:  response,
		ExpiresAt: s.now().Add(ttl).UTC(),
	}
	if err := s.store.Put(ctx, s.partition, entry); err != nil {
		s.logger.Warn("cacheService.Put: store write failed",
			"partition", s.partition, "key", key, "error", err)
	}
}

// InvalidateAll removes every entry in the partition. It holds every key lock
// so no Get or Put interleaves with the sweep.
func (s *Service) InvalidateAll(ctx context.Context) error {
	for i := range s.locks {
		s.locks[i].Lock()
	}
	defer func() {
		for i := range s.locks {
			s.locks[i].Unlock()
		}
	}()

	if err := s.store.DeleteAll(ctx, s.partition); err != nil {
		return fmt.Errorf("invalidating cache partition %s: %w", s.partition, err)
	}
	s.logger.Info("cacheService.InvalidateAll: partition cleared", "partition", s.partition)
	return nil
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
