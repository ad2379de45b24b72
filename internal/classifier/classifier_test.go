package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/address-validator/app/models"
)

var baseNormalizedAddress = models.NormalizedAddress{
	Number:  "123",
	Street:  "Main St",
	City:    "Springfield",
	State:   "IL",
	ZipCode: "62704",
}

func TestClassify_Valid(t *testing.T) {
	result := Classify(Input{
		RawAddress:  "123 Main St, Springfield, IL 62704",
		Normalized:  &baseNormalizedAddress,
		Corrections: []string{},
	})

	assert.Equal(t, Output{
		Status:      models.StatusValid,
		IsValid:     true,
		Corrections: []string{},
	}, result)
}

func TestClassify_CorrectedWhenCorrectionsPresent(t *testing.T) {
	result := Classify(Input{
		RawAddress:  "123 Main Street, Springfield, Illinois 62704",
		Normalized:  &baseNormalizedAddress,
		Corrections: []string{"normalized state to USPS code"},
	})

	assert.Equal(t, models.StatusCorrected, result.Status)
	assert.True(t, result.IsValid)
	assert.Equal(t, []string{"normalized state to USPS code"}, result.Corrections)
	assert.Nil(t, result.Reason)
}

func TestClassify_CorrectedWhenCanonicalFormsDiffer(t *testing.T) {
	result := Classify(Input{
		RawAddress: "123 main st springfield il 62704 usa",
		Normalized: &baseNormalizedAddress,
	})

	assert.Equal(t, models.StatusCorrected, result.Status)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Corrections)
}

func TestClassify_DeduplicatesCorrections(t *testing.T) {
	result := Classify(Input{
		RawAddress: "123 Main Street, Springfield, Illinois 62704",
		Normalized: &baseNormalizedAddress,
		Corrections: []string{
			" normalized street suffix ",
			"normalized street suffix",
			"",
			"normalized state to USPS code",
		},
	})

	assert.Equal(t, models.StatusCorrected, result.Status)
	assert.Equal(t, []string{
		"normalized street suffix",
		"normalized state to USPS code",
	}, result.Corrections)
}

func TestClassify_ReasonOverride(t *testing.T) {
	result := Classify(Input{
		RawAddress:         "Main Street",
		Normalized:         &baseNormalizedAddress,
		Corrections:        []string{"normalized street suffix"},
		UnverifiableReason: string(models.ReasonInsufficientInput),
	})

	require.NotNil(t, result.Reason)
	assert.Equal(t, models.StatusUnverifiable, result.Status)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{}, result.Corrections)
	assert.Equal(t, string(models.ReasonInsufficientInput), *result.Reason)
}

func TestClassify_BlankReasonIsIgnored(t *testing.T) {
	result := Classify(Input{
		RawAddress:         "123 Main St, Springfield, IL 62704",
		Normalized:         &baseNormalizedAddress,
		UnverifiableReason: "   ",
	})

	assert.Equal(t, models.StatusValid, result.Status)
}

func TestClassify_MissingNormalized(t *testing.T) {
	result := Classify(Input{RawAddress: "Main Street"})

	require.NotNil(t, result.Reason)
	assert.Equal(t, models.StatusUnverifiable, result.Status)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{}, result.Corrections)
	assert.Equal(t, string(models.ReasonMissingNormalizedAddress), *result.Reason)
}

func TestSanitizeCorrections_Nil(t *testing.T) {
	assert.Equal(t, []string{}, SanitizeCorrections(nil))
}
