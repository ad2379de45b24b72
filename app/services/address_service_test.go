package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/address-validator/app/models"
	"github.com/address-validator/internal/provider"
)

// countingProvider wraps the heuristic provider and counts calls
type countingProvider struct {
	inner provider.Provider
	calls atomic.Int64
}

func (cp *countingProvider) Validate(ctx context.Context, raw string) provider.ValidationResult {
	cp.calls.Add(1)
	return cp.inner.Validate(ctx, raw)
}

func newTestService(t *testing.T, cache ICacheService) (*AddressService, *countingProvider, *Metrics) {
	t.Helper()

	metrics, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	p := &countingProvider{inner: provider.NewLocalHeuristicProvider(nil)}
	svc := NewAddressService(p, cache, metrics, AddressServiceConfig{Workers: 4, MaxBatchSize: 10}, zap.NewNop())
	return svc, p, metrics
}

func TestAddressService_Validate(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	testCases := []struct {
		name        string
		input       string
		status      models.ValidationStatus
		isValid     bool
		corrections []string
		reason      string
		confidence  float64
	}{
		{
			name:        "Valid",
			input:       "123 Main St, Springfield, IL 62704",
			status:      models.StatusValid,
			isValid:     true,
			corrections: []string{},
			confidence:  0.94,
		},
		{
			name:        "Corrected",
			input:       "123 main street, springfield, illinois 62704",
			status:      models.StatusCorrected,
			isValid:     true,
			corrections: []string{"normalized state to USPS code", "normalized street suffix"},
			confidence:  0.94,
		},
		{
			name:        "Lowercase input is still valid",
			input:       "123 main st, springfield, il 62704",
			status:      models.StatusValid,
			isValid:     true,
			corrections: []string{},
			confidence:  0.94,
		},
		{
			name:        "Insufficient input",
			input:       "   ",
			status:      models.StatusUnverifiable,
			corrections: []string{},
			reason:      "insufficient_input",
			confidence:  0,
		},
		{
			name:        "Non-US",
			input:       "10 Downing St, London, UK SW1A 2AA",
			status:      models.StatusUnverifiable,
			corrections: []string{},
			reason:      "non_us_address",
			confidence:  0.1,
		},
		{
			name:        "Unparseable",
			input:       "Main St, Springfield",
			status:      models.StatusUnverifiable,
			corrections: []string{},
			reason:      "unparseable_address",
			confidence:  0.2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, cached := svc.Validate(ctx, tc.input)
			require.NotNil(t, result)

			assert.False(t, cached)
			assert.Equal(t, tc.status, result.Status)
			assert.Equal(t, tc.isValid, result.IsValid)
			assert.Equal(t, tc.corrections, result.Corrections)
			assert.Equal(t, tc.reason, result.ReasonString())
			assert.Equal(t, tc.confidence, result.Confidence)
			assert.Equal(t, models.SourceLocalHeuristic, result.Source)
			assert.Equal(t, result.Status != models.StatusUnverifiable, result.Normalized != nil)
		})
	}
}

func TestAddressService_ValidateUsesCache(t *testing.T) {
	cache := newFakeCache()
	svc, p, metrics := newTestService(t, cache)
	ctx := context.Background()

	first, cached := svc.Validate(ctx, "123 Main St, Springfield, IL 62704")
	assert.False(t, cached)

	// Same normalized text, so same cache entry.
	second, cached := svc.Validate(ctx, "  123 Main St ,Springfield,  IL 62704")
	assert.True(t, cached)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), p.calls.Load())
	assert.Equal(t, 1, cache.len())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.validations.WithLabelValues("valid", "none")))
}

func TestAddressService_CacheFailureDoesNotFailValidation(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("cache down")
	cache.setErr = errors.New("cache down")
	svc, _, _ := newTestService(t, cache)

	result, cached := svc.Validate(context.Background(), "123 Main St, Springfield, IL 62704")
	require.NotNil(t, result)
	assert.False(t, cached)
	assert.Equal(t, models.StatusValid, result.Status)
}

func TestAddressService_ValidateBatch(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	inputs := []string{
		"123 Main St, Springfield, IL 62704",
		"",
		"123 main street, springfield, illinois 62704",
		"Paris, France",
	}

	results, err := svc.ValidateBatch(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, results, len(inputs))

	assert.Equal(t, models.StatusValid, results[0].Status)
	assert.Equal(t, "insufficient_input", results[1].ReasonString())
	assert.Equal(t, models.StatusCorrected, results[2].Status)
	assert.Equal(t, "non_us_address", results[3].ReasonString())
}

func TestAddressService_ValidateBatchBounds(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	_, err := svc.ValidateBatch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	tooMany := make([]string, svc.MaxBatchSize()+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("%d Main St, Springfield, IL 62704", i+1)
	}
	_, err = svc.ValidateBatch(context.Background(), tooMany)
	assert.ErrorIs(t, err, ErrTooManyAddresses)
}

func TestAddressService_ValidateBatchCancelled(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ValidateBatch(ctx, []string{"123 Main St, Springfield, IL 62704"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAddressService_Invalidate(t *testing.T) {
	cache := newFakeCache()
	svc, p, _ := newTestService(t, cache)
	ctx := context.Background()

	svc.Validate(ctx, "123 Main St, Springfield, IL 62704")
	require.NoError(t, svc.Invalidate(ctx, "123 Main St, Springfield, IL 62704"))
	svc.Validate(ctx, "123 Main St, Springfield, IL 62704")

	assert.Equal(t, int64(2), p.calls.Load())
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("123 Main St, Springfield, IL 62704")
	b := Fingerprint(" 123  Main St ,Springfield, IL 62704 ")
	c := Fingerprint("123 main st, springfield, il 62704")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^sha256:[0-9a-f]{64}$`, a)
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveValidation("valid", "")
		m.ObserveCacheLookup(true)
		m.ObserveRequest("GET", "/health", "200", 0.01)
	})
}
