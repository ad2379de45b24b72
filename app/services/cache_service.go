package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/address-validator/app/models"
)

// MemoryCacheService in-process LRU cache with optional TTL
type MemoryCacheService struct {
	cache   *expirable.LRU[string, *models.ValidationResult]
	ttl     time.Duration
	mu      sync.RWMutex
	addedAt map[string]time.Time // for GetTTL only
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewMemoryCacheService creates the cache. ttl <= 0 disables expiry.
func NewMemoryCacheService(size int, ttl time.Duration) *MemoryCacheService {
	if size <= 0 {
		size = 1
	}
	if ttl < 0 {
		ttl = 0
	}

	mcs := &MemoryCacheService{
		ttl:     ttl,
		addedAt: make(map[string]time.Time),
	}
	mcs.cache = expirable.NewLRU[string, *models.ValidationResult](size, mcs.onEvict, ttl)

	return mcs
}

func (mcs *MemoryCacheService) onEvict(key string, _ *models.ValidationResult) {
	mcs.mu.Lock()
	delete(mcs.addedAt, key)
	mcs.mu.Unlock()
}

// Get returns a copy of the cached result
func (mcs *MemoryCacheService) Get(ctx context.Context, key string) (*models.ValidationResult, bool, error) {
	result, ok := mcs.cache.Get(key)
	if !ok {
		mcs.misses.Add(1)
		return nil, false, nil
	}

	mcs.hits.Add(1)
	return result.Clone(), true, nil
}

// Set stores a copy of result
func (mcs *MemoryCacheService) Set(ctx context.Context, key string, result *models.ValidationResult) error {
	if result == nil {
		return nil
	}

	mcs.cache.Add(key, result.Clone())

	mcs.mu.Lock()
	mcs.addedAt[key] = time.Now()
	mcs.mu.Unlock()

	return nil
}

func (mcs *MemoryCacheService) Delete(ctx context.Context, key string) error {
	mcs.cache.Remove(key)
	return nil
}

func (mcs *MemoryCacheService) Clear(ctx context.Context) error {
	mcs.cache.Purge()
	return nil
}

// Size number of live entries
func (mcs *MemoryCacheService) Size() int {
	return mcs.cache.Len()
}

func (mcs *MemoryCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits, misses := mcs.hits.Load(), mcs.misses.Load()

	return &CacheStats{
		Backend:    "memory",
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: int64(mcs.cache.Len()),
	}, nil
}

func (mcs *MemoryCacheService) Exists(ctx context.Context, key string) (bool, error) {
	return mcs.cache.Contains(key), nil
}

func (mcs *MemoryCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	if mcs.ttl == 0 || !mcs.cache.Contains(key) {
		return 0, nil
	}

	mcs.mu.RLock()
	added, ok := mcs.addedAt[key]
	mcs.mu.RUnlock()
	if !ok {
		return 0, nil
	}

	remaining := mcs.ttl - time.Since(added)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// Close nothing to release for the in-memory cache
func (mcs *MemoryCacheService) Close() error {
	return nil
}
