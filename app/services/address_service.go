package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/address-validator/app/models"
	"github.com/address-validator/internal/classifier"
	"github.com/address-validator/internal/normalizer"
	"github.com/address-validator/internal/provider"
)

const (
	DefaultBatchWorkers   = 8
	DefaultMaxBatchSize   = 1000
	cacheOperationTimeout = 2 * time.Second
)

var (
	ErrEmptyBatch       = errors.New("batch must contain at least one address")
	ErrTooManyAddresses = errors.New("batch exceeds the maximum number of addresses")
)

// AddressServiceConfig batch tuning of AddressService
type AddressServiceConfig struct {
	Workers      int // concurrent validations per batch
	MaxBatchSize int // upper bound on addresses per batch
}

// AddressService composes provider and classifier into the response object,
// with an optional result cache in front.
type AddressService struct {
	provider  provider.Provider
	cache     ICacheService // nil disables caching
	metrics   *Metrics
	logger    *zap.Logger
	cfg       AddressServiceConfig
	startTime time.Time
}

// NewAddressService creates the service. cache and metrics may be nil.
func NewAddressService(p provider.Provider, cache ICacheService, metrics *Metrics, cfg AddressServiceConfig, logger *zap.Logger) *AddressService {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultBatchWorkers
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}

	return &AddressService{
		provider:  p,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// Validate validates one raw address. The second return value reports a
// cache hit. Cache failures are logged and never fail the validation.
func (as *AddressService) Validate(ctx context.Context, rawAddress string) (*models.ValidationResult, bool) {
	key := Fingerprint(rawAddress)

	if as.cache != nil {
		cached, found, err := as.cacheGet(ctx, key)
		if err != nil {
			as.logger.Warn("Cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		as.metrics.ObserveCacheLookup(found)
		if found {
			as.metrics.ObserveValidation(string(cached.Status), cached.ReasonString())
			return cached, true
		}
	}

	result := as.BuildValidationResult(ctx, rawAddress)

	if as.cache != nil {
		if err := as.cacheSet(ctx, key, result); err != nil {
			as.logger.Warn("Cache store failed", zap.String("key", key), zap.Error(err))
		}
	}

	as.metrics.ObserveValidation(string(result.Status), result.ReasonString())
	as.logger.Debug("Validated address",
		zap.String("status", string(result.Status)),
		zap.String("reason", result.ReasonString()),
		zap.Float64("confidence", result.Confidence))

	return result, false
}

// BuildValidationResult runs the provider and the classifier without the cache.
func (as *AddressService) BuildValidationResult(ctx context.Context, rawAddress string) *models.ValidationResult {
	return BuildValidationResult(ctx, as.provider, rawAddress)
}

// BuildValidationResult assembles the response object: status, validity,
// corrections and reason from the classifier; normalized, confidence and
// source from the provider. When the provider produced no address its own
// reason is reported.
func BuildValidationResult(ctx context.Context, p provider.Provider, rawAddress string) *models.ValidationResult {
	pr := p.Validate(ctx, rawAddress)

	out := classifier.Classify(classifier.Input{
		RawAddress:         rawAddress,
		Normalized:         pr.Normalized,
		Corrections:        pr.Corrections,
		UnverifiableReason: string(pr.Reason),
	})

	reason := out.Reason
	if pr.Normalized == nil && pr.Reason != "" {
		providerReason := string(pr.Reason)
		reason = &providerReason
	}

	normalized := pr.Normalized
	if out.Status == models.StatusUnverifiable {
		normalized = nil
	}

	return &models.ValidationResult{
		Status:      out.Status,
		IsValid:     out.IsValid,
		Normalized:  normalized,
		Confidence:  pr.Confidence,
		Corrections: out.Corrections,
		Reason:      reason,
		Source:      pr.Source,
	}
}

// ValidateBatch validates addresses on a bounded worker pool. Results keep
// input order. It fails only on an invalid batch size or ctx cancellation.
func (as *AddressService) ValidateBatch(ctx context.Context, addresses []string) ([]*models.ValidationResult, error) {
	if len(addresses) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(addresses) > as.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyAddresses, len(addresses), as.cfg.MaxBatchSize)
	}

	results := make([]*models.ValidationResult, len(addresses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(as.cfg.Workers)

	for i, address := range addresses {
		i, address := i, address
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], _ = as.Validate(gctx, address)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	as.logger.Info("Validated batch", zap.Int("total", len(addresses)))
	return results, nil
}

// Invalidate drops the cached result of one raw address
func (as *AddressService) Invalidate(ctx context.Context, rawAddress string) error {
	if as.cache == nil {
		return nil
	}
	return as.cache.Delete(ctx, Fingerprint(rawAddress))
}

// MaxBatchSize configured batch bound
func (as *AddressService) MaxBatchSize() int {
	return as.cfg.MaxBatchSize
}

// GetStartTime time the service was created
func (as *AddressService) GetStartTime() time.Time {
	return as.startTime
}

// Fingerprint cache key of a raw address: sha256 of its normalized text.
// Inputs differing only in whitespace or comma spacing share a key.
func Fingerprint(rawAddress string) string {
	sum := sha256.Sum256([]byte(normalizer.NormalizeAddressText(rawAddress)))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// cache calls get their own deadline so a slow backend cannot stall validation
func (as *AddressService) cacheGet(ctx context.Context, key string) (*models.ValidationResult, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, cacheOperationTimeout)
	defer cancel()
	return as.cache.Get(ctx, key)
}

func (as *AddressService) cacheSet(ctx context.Context, key string, result *models.ValidationResult) error {
	ctx, cancel := context.WithTimeout(ctx, cacheOperationTimeout)
	defer cancel()
	return as.cache.Set(ctx, key, result)
}
