package services

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/address-validator/internal/parser"
)

// AdminService operational endpoints: stats and cache invalidation
type AdminService struct {
	addressService *AddressService
	cache          ICacheService // nil when caching is disabled
	tables         *parser.AliasTables
	logger         *zap.Logger
}

// SystemStats process and data-set statistics
type SystemStats struct {
	Uptime      string         `json:"uptime"`
	StartTime   time.Time      `json:"start_time"`
	MemoryUsage map[string]any `json:"memory_usage"`
	Goroutines  int            `json:"goroutines"`
	AliasTables AliasStats     `json:"alias_tables"`
	Cache       *CacheStats    `json:"cache"`
}

// AliasStats sizes of the loaded alias tables
type AliasStats struct {
	StreetSuffixes int `json:"street_suffixes"`
	Directionals   int `json:"directionals"`
	StateNames     int `json:"state_names"`
	StateCodes     int `json:"state_codes"`
}

// InvalidateResult outcome of a cache invalidation
type InvalidateResult struct {
	Scope            string `json:"scope"` // "all" or "address"
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// NewAdminService creates AdminService. nil tables means the embedded defaults.
func NewAdminService(addressService *AddressService, cache ICacheService, tables *parser.AliasTables, logger *zap.Logger) *AdminService {
	if tables == nil {
		tables = parser.DefaultAliasTables()
	}
	return &AdminService{
		addressService: addressService,
		cache:          cache,
		tables:         tables,
		logger:         logger,
	}
}

// GetSystemStats collects runtime, alias-table and cache statistics. Cache
// stats failures are logged and reported as nil.
func (as *AdminService) GetSystemStats(ctx context.Context) *SystemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	startTime := as.addressService.GetStartTime()

	return &SystemStats{
		Uptime:    time.Since(startTime).Truncate(time.Second).String(),
		StartTime: startTime,
		MemoryUsage: map[string]any{
			"alloc_mb":       bToMb(m.Alloc),
			"total_alloc_mb": bToMb(m.TotalAlloc),
			"sys_mb":         bToMb(m.Sys),
			"num_gc":         m.NumGC,
		},
		Goroutines: runtime.NumGoroutine(),
		AliasTables: AliasStats{
			StreetSuffixes: len(as.tables.StreetSuffixes),
			Directionals:   len(as.tables.Directionals),
			StateNames:     len(as.tables.StateNames),
			StateCodes:     as.tables.StateCodeCount(),
		},
		Cache: as.cacheStats(ctx),
	}
}

// GetCacheStats reports backend "none" when caching is disabled
func (as *AdminService) GetCacheStats(ctx context.Context) (*CacheStats, error) {
	if as.cache == nil {
		return &CacheStats{Backend: "none"}, nil
	}
	return as.cache.GetStats(ctx)
}

// InvalidateCache drops the entry of address, or the whole cache when address is empty.
func (as *AdminService) InvalidateCache(ctx context.Context, address string) (*InvalidateResult, error) {
	start := time.Now()
	scope := "all"

	if address != "" {
		scope = "address"
		if err := as.addressService.Invalidate(ctx, address); err != nil {
			return nil, fmt.Errorf("invalidate address: %w", err)
		}
	} else if as.cache != nil {
		if err := as.cache.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear cache: %w", err)
		}
	}

	elapsed := time.Since(start)
	as.logger.Info("Cache invalidated", zap.String("scope", scope), zap.Duration("duration", elapsed))

	return &InvalidateResult{Scope: scope, ProcessingTimeMs: elapsed.Milliseconds()}, nil
}

func (as *AdminService) cacheStats(ctx context.Context) *CacheStats {
	stats, err := as.GetCacheStats(ctx)
	if err != nil {
		as.logger.Warn("Cache stats unavailable", zap.Error(err))
		return nil
	}
	return stats
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
