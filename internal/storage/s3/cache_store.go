package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"llmbroker/internal/domain"
	"llmbroker/internal/port"
)

// cacheObject is the JSON body stored for each cache entry.
type cacheObject struct {
	Response  string    `json:"response"`
	ExpiresAt time.Time `json:"expires_at"`
}

type cacheStore struct {
	storage port.ObjectStorage
	bucket  string
	prefix  string
}

// NewCacheStore creates a CacheStore that keeps one object per entry at
// <prefix>/<partition>/<key>.json in bucket.
func NewCacheStore(storage port.ObjectStorage, bucket, prefix string) port.CacheStore {
	return &cacheStore{storage: storage, bucket: bucket, prefix: prefix}
}

func (s *cacheStore) partitionPrefix(partition string) string {
	return path.Join(s.prefix, partition) + "/"
}

func (s *cacheStore) objectKey(partition, key string) string {
	return s.partitionPrefix(partition) + key + ".json"
}

func (s *cacheStore) Get(ctx context.Context, partition, key string) (*domain.CacheEntry, error) {
	data, err := s.storage.Download(ctx, s.bucket, s.objectKey(partition, key))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("s3.cacheStore.Get: %w", err)
	}

	var obj cacheObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("s3.cacheStore.Get: decoding %s: %w", key, err)
	}
	return &domain.CacheEntry{Key: key, Response: obj.Response, ExpiresAt: obj.ExpiresAt}, nil
}

func (s *cacheStore) Put(ctx context.Context, partition string, entry *domain.CacheEntry) error {
	body, err := json.Marshal(cacheObject{Response: entry.Response, ExpiresAt: entry.ExpiresAt})
	if err != nil {
		return fmt.Errorf("s3.cacheStore.Put: encoding: %w", err)
	}

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         s.objectKey(partition, entry.Key),
		Body:        bytes.NewReader(body),
		ContentType: "application/json",
		Size:        int64(len(body)),
	})
	if err != nil {
		return fmt.Errorf("s3.cacheStore.Put: %w", err)
	}
	return nil
}

func (s *cacheStore) Delete(ctx context.Context, partition, key string) error {
	if err := s.storage.Delete(ctx, s.bucket, s.objectKey(partition, key)); err != nil {
		return fmt.Errorf("s3.cacheStore.Delete: %w", err)
	}
	return nil
}

func (s *cacheStore) DeleteAll(ctx context.Context, partition string) error {
	keys, err := s.storage.List(ctx, s.bucket, s.partitionPrefix(partition))
	if err != nil {
		return fmt.Errorf("s3.cacheStore.DeleteAll: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.storage.DeleteMany(ctx, s.bucket, keys); err != nil {
		return fmt.Errorf("s3.cacheStore.DeleteAll: %w", err)
	}
	return nil
}

func (s *cacheStore) Ping(ctx context.Context) error {
	return s.storage.HeadBucket(ctx, s.bucket)
}
