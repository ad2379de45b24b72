package classifier

import (
	"strings"

	"github.com/address-validator/app/models"
	"github.com/address-validator/internal/normalizer"
)

// Input what the classifier needs from a provider run
type Input struct {
	RawAddress         string
	Normalized         *models.NormalizedAddress
	Corrections        []string
	UnverifiableReason string // optional caller override
}

// Output classification decision
type Output struct {
	Status      models.ValidationStatus
	IsValid     bool
	Corrections []string
	Reason      *string
}

// Classify decides valid / corrected / unverifiable. valid requires the raw
// input to canonicalize to the normalized address and no corrections.
func Classify(in Input) Output {
	if in.Normalized == nil {
		return unverifiable(string(models.ReasonMissingNormalizedAddress))
	}

	if reason := strings.TrimSpace(in.UnverifiableReason); reason != "" {
		return unverifiable(reason)
	}

	corrections := SanitizeCorrections(in.Corrections)
	status := models.StatusCorrected
	if len(corrections) == 0 && normalizer.CompareCanonicalForms(in.RawAddress, *in.Normalized) {
		status = models.StatusValid
	}

	return Output{
		Status:      status,
		IsValid:     true,
		Corrections: corrections,
	}
}

// SanitizeCorrections trims, drops empties and deduplicates, keeping first-seen order.
func SanitizeCorrections(corrections []string) []string {
	out := make([]string, 0, len(corrections))
	seen := make(map[string]struct{}, len(corrections))

	for _, correction := range corrections {
		correction = strings.TrimSpace(correction)
		if correction == "" {
			continue
		}
		if _, dup := seen[correction]; dup {
			continue
		}
		seen[correction] = struct{}{}
		out = append(out, correction)
	}

	return out
}

func unverifiable(reason string) Output {
	return Output{
		Status:      models.StatusUnverifiable,
		IsValid:     false,
		Corrections: []string{},
		Reason:      &reason,
	}
}
