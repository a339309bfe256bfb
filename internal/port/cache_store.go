package port

import (
	"context"

	"llmbroker/internal/domain"
)

// CacheStore persists response cache entries. Every operation is scoped to a
// partition so that distinct broker instances never see each other's entries.
// Get returns domain.ErrNotFound when no entry exists; expiry is the caller's concern.
type CacheStore interface {
	Get(ctx context.Context, partition, key string) (*domain.CacheEntry, error)
	Put(ctx context.Context, partition string, entry *domain.CacheEntry) error
	Delete(ctx context.Context, partition, key string) error
	DeleteAll(ctx context.Context, partition string) error
	Ping(ctx context.Context) error
}
