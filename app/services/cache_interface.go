package services

import (
	"context"
	"time"

	"github.com/address-validator/app/models"
)

// CacheStats cache counters reported by the admin endpoint
type CacheStats struct {
	Backend    string  `json:"backend"`
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService result cache keyed by input fingerprint
type ICacheService interface {
	// Get returns the cached result, found=false on miss
	Get(ctx context.Context, key string) (*models.ValidationResult, bool, error)

	Set(ctx context.Context, key string, result *models.ValidationResult) error

	Delete(ctx context.Context, key string) error

	// Clear drops every entry owned by this cache
	Clear(ctx context.Context) error

	GetStats(ctx context.Context) (*CacheStats, error)

	Exists(ctx context.Context, key string) (bool, error)

	// GetTTL remaining lifetime of key, 0 when absent or without expiry
	GetTTL(ctx context.Context, key string) (time.Duration, error)

	Close() error
}

// hitRate percentage of hits, 0 when nothing was looked up
func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}
