package parser

import "github.com/address-validator/app/models"

// Human-readable corrections, in the order they are reported.
const (
	CorrectionNormalizedState  = "normalized state to USPS code"
	CorrectionNormalizedSuffix = "normalized street suffix"
)

// BuildNormalizedAddress copies parsed parts into the public address shape.
func BuildNormalizedAddress(parts ParsedAddressParts) models.NormalizedAddress {
	return models.NormalizedAddress{
		Street:  parts.Street,
		Number:  parts.Number,
		City:    parts.City,
		State:   parts.State.Code,
		ZipCode: parts.ZipCode,
	}
}

// BuildCorrections lists the normalizations applied: state first, then suffix.
func BuildCorrections(parts ParsedAddressParts) []string {
	corrections := []string{}

	if parts.State.FromFullName {
		corrections = append(corrections, CorrectionNormalizedState)
	}

	if parts.UsedSuffixExpansion {
		corrections = append(corrections, CorrectionNormalizedSuffix)
	}

	return corrections
}
