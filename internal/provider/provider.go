package provider

import (
	"context"
	"regexp"

	"github.com/address-validator/app/models"
	"github.com/address-validator/internal/normalizer"
	"github.com/address-validator/internal/parser"
)

// Fixed confidence per outcome. These are constants, not computed scores.
const (
	ConfidenceParsed            = 0.94
	ConfidenceUnparseable       = 0.2
	ConfidenceNonUS             = 0.1
	ConfidenceInsufficientInput = 0.0
)

var nonUSCountryPattern = regexp.MustCompile(`(?i)\b(canada|mexico|uk|united kingdom|france|germany|spain)\b`)

// ValidationResult output of a provider. Normalized is nil exactly when Reason is set.
type ValidationResult struct {
	Normalized  *models.NormalizedAddress
	Confidence  float64
	Corrections []string
	Reason      models.UnverifiableReason
	Source      models.ProviderSource
}

// Provider turns a raw address into a provider result. Implementations never fail.
type Provider interface {
	Validate(ctx context.Context, rawAddress string) ValidationResult
}

// LocalHeuristicProvider rule-based provider with no external lookups
type LocalHeuristicProvider struct {
	parser *parser.AddressParser
}

// NewLocalHeuristicProvider creates the provider. nil parser means the default alias tables.
func NewLocalHeuristicProvider(p *parser.AddressParser) *LocalHeuristicProvider {
	if p == nil {
		p = parser.NewAddressParser(nil)
	}
	return &LocalHeuristicProvider{parser: p}
}

// Validate runs normalization, the non-US check and the parser. It is safe
// for concurrent use and ignores ctx since it performs no I/O.
func (lp *LocalHeuristicProvider) Validate(_ context.Context, rawAddress string) ValidationResult {
	normalizedInput := normalizer.NormalizeAddressText(rawAddress)

	if normalizedInput == "" {
		return unverifiable(models.ReasonInsufficientInput, ConfidenceInsufficientInput)
	}

	if IsNonUSAddress(normalizedInput) {
		return unverifiable(models.ReasonNonUSAddress, ConfidenceNonUS)
	}

	parts, ok := lp.parser.ParseAddressParts(normalizedInput)
	if !ok {
		return unverifiable(models.ReasonUnparseableAddress, ConfidenceUnparseable)
	}

	normalized := parser.BuildNormalizedAddress(parts)

	return ValidationResult{
		Normalized:  &normalized,
		Confidence:  ConfidenceParsed,
		Corrections: parser.BuildCorrections(parts),
		Source:      models.SourceLocalHeuristic,
	}
}

// IsNonUSAddress reports whether text names one of the known non-US
// countries as a whole word. Diacritics are folded first ("México").
func IsNonUSAddress(text string) bool {
	return nonUSCountryPattern.MatchString(normalizer.StripDiacritics(text))
}

func unverifiable(reason models.UnverifiableReason, confidence float64) ValidationResult {
	return ValidationResult{
		Confidence:  confidence,
		Corrections: []string{},
		Reason:      reason,
		Source:      models.SourceLocalHeuristic,
	}
}
