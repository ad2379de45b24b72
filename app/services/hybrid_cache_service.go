package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/address-validator/app/models"
)

const backfillTimeout = 5 * time.Second

// HybridCacheService two-level cache: a fast shared L1 (Redis) in front of a
// persistent L2 (MongoDB). Reads fall through to L2 and back-fill L1.
type HybridCacheService struct {
	l1     ICacheService
	l2     ICacheService
	logger *zap.Logger

	backfills sync.WaitGroup
}

// NewHybridCacheService creates the hybrid cache over two levels
func NewHybridCacheService(l1, l2 ICacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{
		l1:     l1,
		l2:     l2,
		logger: logger,
	}
}

// Get tries L1 then L2. An L1 error degrades to an L2 lookup.
func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.ValidationResult, bool, error) {
	result, found, err := hcs.l1.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("L1 cache error, falling back to L2", zap.Error(err))
	} else if found {
		return result, true, nil
	}

	result, found, err = hcs.l2.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	backfill := result.Clone()
	hcs.backfills.Add(1)
	go func() {
		defer hcs.backfills.Done()

		bgCtx, cancel := context.WithTimeout(context.Background(), backfillTimeout)
		defer cancel()

		if err := hcs.l1.Set(bgCtx, key, backfill); err != nil {
			hcs.logger.Warn("Could not back-fill L1 cache", zap.Error(err), zap.String("key", key))
		}
	}()

	return result, true, nil
}

// Set writes both levels concurrently
func (hcs *HybridCacheService) Set(ctx context.Context, key string, result *models.ValidationResult) error {
	return hcs.both(func(c ICacheService) error { return c.Set(ctx, key, result) }, "set")
}

func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	return hcs.both(func(c ICacheService) error { return c.Delete(ctx, key) }, "delete")
}

func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	if err := hcs.both(func(c ICacheService) error { return c.Clear(ctx) }, "clear"); err != nil {
		return err
	}

	hcs.logger.Info("Cleared hybrid cache")
	return nil
}

// GetStats adds up both levels. One failing level is tolerated.
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	l1Stats, l1Err := hcs.l1.GetStats(ctx)
	l2Stats, l2Err := hcs.l2.GetStats(ctx)

	switch {
	case l1Err != nil && l2Err != nil:
		return nil, fmt.Errorf("cache stats: %w", errors.Join(l1Err, l2Err))
	case l1Err != nil:
		hcs.logger.Warn("L1 cache stats unavailable", zap.Error(l1Err))
		stats := *l2Stats
		stats.Backend = "hybrid"
		return &stats, nil
	case l2Err != nil:
		hcs.logger.Warn("L2 cache stats unavailable", zap.Error(l2Err))
		stats := *l1Stats
		stats.Backend = "hybrid"
		return &stats, nil
	}

	// An L1 miss followed by an L2 hit is one hit overall.
	hits := l1Stats.TotalHits + l2Stats.TotalHits
	misses := l2Stats.TotalMiss

	return &CacheStats{
		Backend:    "hybrid",
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: l2Stats.TotalItems,
	}, nil
}

func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := hcs.l1.Exists(ctx, key)
	if err != nil {
		hcs.logger.Warn("L1 exists check failed, falling back to L2", zap.Error(err))
	} else if exists {
		return true, nil
	}

	return hcs.l2.Exists(ctx, key)
}

// GetTTL reports the L1 lifetime
func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.l1.GetTTL(ctx, key)
}

// Close waits for pending back-fills, then closes both levels
func (hcs *HybridCacheService) Close() error {
	hcs.backfills.Wait()
	return errors.Join(hcs.l1.Close(), hcs.l2.Close())
}

func (hcs *HybridCacheService) both(op func(ICacheService) error, name string) error {
	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i, c := range []ICacheService{hcs.l1, hcs.l2} {
		wg.Add(1)
		go func(i int, c ICacheService) {
			defer wg.Done()
			errs[i] = op(c)
		}(i, c)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		hcs.logger.Warn("Hybrid cache operation failed", zap.String("op", name), zap.Error(err))
		return fmt.Errorf("hybrid cache %s: %w", name, err)
	}
	return nil
}
