package services

import (
	"context"
	"sync"
	"time"

	"github.com/address-validator/app/models"
)

// fakeCache map-backed ICacheService with injectable errors
type fakeCache struct {
	mu      sync.Mutex
	items   map[string]*models.ValidationResult
	getErr  error
	setErr  error
	sets    int
	cleared bool
	closed  bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]*models.ValidationResult)}
}

func (f *fakeCache) Get(_ context.Context, key string) (*models.ValidationResult, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	r, ok := f.items[key]
	if !ok {
		return nil, false, nil
	}
	return r.Clone(), true, nil
}

func (f *fakeCache) Set(_ context.Context, key string, result *models.ValidationResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.items[key] = result.Clone()
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, key)
	return nil
}

func (f *fakeCache) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = make(map[string]*models.ValidationResult)
	f.cleared = true
	return nil
}

func (f *fakeCache) GetStats(context.Context) (*CacheStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &CacheStats{Backend: "fake", TotalItems: int64(len(f.items))}, nil
}

func (f *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.items[key]
	return ok, nil
}

func (f *fakeCache) GetTTL(context.Context, string) (time.Duration, error) {
	return 0, nil
}

func (f *fakeCache) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeCache) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
