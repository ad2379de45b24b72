package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/address-validator/app/models"
)

const (
	redisKeyPrefix = "addr_validator:"
	redisScanBatch = 500
)

// RedisCacheService shared result cache backed by Redis. Values are JSON.
type RedisCacheService struct {
	client redis.UniversalClient
	logger *zap.Logger
	prefix string
	ttl    time.Duration // 0 means no expiry

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCacheService connects to redisURL and pings it
func NewRedisCacheService(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return NewRedisCacheServiceWithClient(client, ttl, logger), nil
}

// NewRedisCacheServiceWithClient wraps an existing client
func NewRedisCacheServiceWithClient(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisCacheService {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisCacheService{
		client: client,
		logger: logger,
		prefix: redisKeyPrefix,
		ttl:    ttl,
	}
}

func (rcs *RedisCacheService) key(key string) string {
	return rcs.prefix + key
}

func (rcs *RedisCacheService) Get(ctx context.Context, key string) (*models.ValidationResult, bool, error) {
	cacheKey := rcs.key(key)

	val, err := rcs.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		rcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", cacheKey, err)
	}

	var result models.ValidationResult
	if err := json.Unmarshal(val, &result); err != nil {
		// Undecodable entries are treated as misses and dropped.
		rcs.logger.Warn("Dropping undecodable cache entry", zap.String("key", cacheKey), zap.Error(err))
		_ = rcs.client.Del(ctx, cacheKey).Err()
		rcs.misses.Add(1)
		return nil, false, nil
	}
	if result.Corrections == nil {
		result.Corrections = []string{}
	}

	rcs.hits.Add(1)
	rcs.logger.Debug("Redis cache hit", zap.String("key", key))
	return &result, true, nil
}

func (rcs *RedisCacheService) Set(ctx context.Context, key string, result *models.ValidationResult) error {
	if result == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	cacheKey := rcs.key(key)
	if err := rcs.client.Set(ctx, cacheKey, data, rcs.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", cacheKey, err)
	}

	return nil
}

func (rcs *RedisCacheService) Delete(ctx context.Context, key string) error {
	cacheKey := rcs.key(key)
	if err := rcs.client.Del(ctx, cacheKey).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", cacheKey, err)
	}
	return nil
}

// Clear deletes every key under the validator prefix. It uses SCAN so other
// tenants of the same Redis are not blocked.
func (rcs *RedisCacheService) Clear(ctx context.Context) error {
	deleted := 0
	iter := rcs.client.Scan(ctx, 0, rcs.prefix+"*", redisScanBatch).Iterator()

	batch := make([]string, 0, redisScanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := rcs.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del batch: %w", err)
		}
		deleted += len(batch)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == redisScanBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	rcs.logger.Info("Cleared Redis cache", zap.Int("keys_deleted", deleted))
	return nil
}

func (rcs *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	var totalItems int64
	iter := rcs.client.Scan(ctx, 0, rcs.prefix+"*", redisScanBatch).Iterator()
	for iter.Next(ctx) {
		totalItems++
	}
	if err := iter.Err(); err != nil {
		rcs.logger.Warn("Could not count Redis cache keys", zap.Error(err))
	}

	hits, misses := rcs.hits.Load(), rcs.misses.Load()
	return &CacheStats{
		Backend:    "redis",
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: totalItems,
	}, nil
}

func (rcs *RedisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	n, err := rcs.client.Exists(ctx, rcs.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (rcs *RedisCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := rcs.client.TTL(ctx, rcs.key(key)).Result()
	if err != nil {
		return 0, err
	}
	// -1 (no expiry) and -2 (missing) both report 0
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (rcs *RedisCacheService) Close() error {
	return rcs.client.Close()
}
