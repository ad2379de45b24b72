package provider

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/address-validator/app/models"
	"github.com/address-validator/internal/parser"
)

var springfield = models.NormalizedAddress{
	Number:  "123",
	Street:  "Main St",
	City:    "Springfield",
	State:   "IL",
	ZipCode: "62704",
}

func TestLocalHeuristicProvider_Validate(t *testing.T) {
	p := NewLocalHeuristicProvider(nil)
	ctx := context.Background()

	t.Run("Canonical input", func(t *testing.T) {
		result := p.Validate(ctx, "123 Main St, Springfield, IL 62704")

		require.NotNil(t, result.Normalized)
		assert.Equal(t, springfield, *result.Normalized)
		assert.Equal(t, ConfidenceParsed, result.Confidence)
		assert.Empty(t, result.Corrections)
		assert.NotNil(t, result.Corrections)
		assert.Empty(t, result.Reason)
		assert.Equal(t, models.SourceLocalHeuristic, result.Source)
	})

	t.Run("Expanded suffix and full state name", func(t *testing.T) {
		result := p.Validate(ctx, "123 main street, springfield, illinois 62704")

		require.NotNil(t, result.Normalized)
		assert.Equal(t, springfield, *result.Normalized)
		assert.Equal(t, []string{parser.CorrectionNormalizedState, parser.CorrectionNormalizedSuffix}, result.Corrections)
	})

	t.Run("Messy whitespace is normalized before parsing", func(t *testing.T) {
		result := p.Validate(ctx, "  123   Main St ,Springfield,IL   62704 ")

		require.NotNil(t, result.Normalized)
		assert.Equal(t, springfield, *result.Normalized)
	})
}

func TestLocalHeuristicProvider_Unverifiable(t *testing.T) {
	p := NewLocalHeuristicProvider(nil)

	testCases := []struct {
		name       string
		input      string
		reason     models.UnverifiableReason
		confidence float64
	}{
		{name: "Empty", input: "", reason: models.ReasonInsufficientInput, confidence: 0},
		{name: "Whitespace only", input: " \t ", reason: models.ReasonInsufficientInput, confidence: 0},
		{name: "UK", input: "10 Downing St, London, UK SW1A 2AA", reason: models.ReasonNonUSAddress, confidence: 0.1},
		{name: "Canada lowercase", input: "100 Queen St W, Toronto, ON M5H 2N2, canada", reason: models.ReasonNonUSAddress, confidence: 0.1},
		{name: "United Kingdom", input: "221B Baker Street, London, United  Kingdom", reason: models.ReasonNonUSAddress, confidence: 0.1},
		{name: "Accented Mexico", input: "Av. Reforma 222, Ciudad de México", reason: models.ReasonNonUSAddress, confidence: 0.1},
		{name: "Unparseable", input: "Main St, Springfield", reason: models.ReasonUnparseableAddress, confidence: 0.2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := p.Validate(context.Background(), tc.input)

			assert.Nil(t, result.Normalized)
			assert.Equal(t, tc.reason, result.Reason)
			assert.Equal(t, tc.confidence, result.Confidence)
			assert.Equal(t, []string{}, result.Corrections)
			assert.Equal(t, models.SourceLocalHeuristic, result.Source)
		})
	}
}

func TestIsNonUSAddress(t *testing.T) {
	assert.True(t, IsNonUSAddress("Paris, France"))
	assert.True(t, IsNonUSAddress("BERLIN GERMANY"))
	assert.True(t, IsNonUSAddress("Madrid, Spain"))
	// Whole words only.
	assert.False(t, IsNonUSAddress("12 Ukiah Rd, Ukiah, CA 95482"))
	assert.False(t, IsNonUSAddress("5 Spainway Dr, Austin, TX 78701"))
	// Known false positive: the check is a keyword heuristic.
	assert.True(t, IsNonUSAddress("1 New Mexico Ave, Albuquerque, NM 87101"))
}

// Normalized output fed back in must come out unchanged with no corrections.
func TestLocalHeuristicProvider_Idempotent(t *testing.T) {
	p := NewLocalHeuristicProvider(nil)
	ctx := context.Background()

	inputs := []string{
		"123 main street, springfield, illinois 62704",
		"123 w broadway avenue, new york, new york 10001",
		"456 elm rd los angeles california 90001",
	}

	for _, input := range inputs {
		first := p.Validate(ctx, input)
		require.NotNil(t, first.Normalized, input)

		n := first.Normalized
		again := p.Validate(ctx, n.Number+" "+n.Street+", "+n.City+", "+n.State+" "+n.ZipCode)
		require.NotNil(t, again.Normalized, input)
		assert.Equal(t, *n, *again.Normalized, input)
		assert.Empty(t, again.Corrections, input)
	}
}

func TestLocalHeuristicProvider_Concurrent(t *testing.T) {
	p := NewLocalHeuristicProvider(nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := p.Validate(context.Background(), "123 main street, springfield, illinois 62704")
			assert.NotNil(t, result.Normalized)
		}()
	}
	wg.Wait()
}
