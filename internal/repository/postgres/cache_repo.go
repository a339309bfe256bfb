package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"llmbroker/internal/domain"
	"llmbroker/internal/port"
)

type cacheRepo struct {
	db Querier
}

// NewCacheRepo creates a new PostgreSQL-backed CacheStore over the
// response_cache table.
func NewCacheRepo(db Querier) port.CacheStore {
	return &cacheRepo{db: db}
}

func (r *cacheRepo) Get(ctx context.Context, partition, key string) (*domain.CacheEntry, error) {
	entry := &domain.CacheEntry{Key: key}
	err := r.db.QueryRow(ctx,
		`SELECT response, expires_at FROM response_cache
		 WHERE partition = $1 AND cache_key = $2`,
		partition, key).Scan(&entry.Response, &entry.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cacheRepo.Get: %w", err)
	}
	return entry, nil
}

func (r *cacheRepo) Put(ctx context.Context, partition string, entry *domain.CacheEntry) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO response_cache (partition, cache_key, response, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (partition, cache_key) DO UPDATE
		 SET response = EXCLUDED.response, expires_at = EXCLUDED.expires_at, created_at = NOW()`,
		partition, entry.Key, entry.Response, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("cacheRepo.Put: %w", err)
	}
	return nil
}

func (r *cacheRepo) Delete(ctx context.Context, partition, key string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM response_cache WHERE partition = $1 AND cache_key = $2`,
		partition, key)
	if err != nil {
		return fmt.Errorf("cacheRepo.Delete: %w", err)
	}
	return nil
}

func (r *cacheRepo) DeleteAll(ctx context.Context, partition string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM response_cache WHERE partition = $1`, partition)
	if err != nil {
		return fmt.Errorf("cacheRepo.DeleteAll: %w", err)
	}
	return nil
}

func (r *cacheRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
