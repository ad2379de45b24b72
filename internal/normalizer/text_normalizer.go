package normalizer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/address-validator/app/models"
)

// Whitespace class used for collapsing, wider than RE2's ASCII-only \s.
const spaceClass = `\s\x{0B}\x{85}\p{Z}\x{FEFF}`

var (
	whitespacePattern      = regexp.MustCompile(`[` + spaceClass + `]+`)
	commaSpacingPattern    = regexp.MustCompile(`[` + spaceClass + `]*,[` + spaceClass + `]*`)
	nonAlphanumericPattern = regexp.MustCompile(`[^a-z0-9]`)
)

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// NormalizeAddressText trims the input, rewrites every comma to ", " and
// collapses whitespace runs to a single space.
func NormalizeAddressText(input string) string {
	s := strings.TrimFunc(input, isSpace)
	s = commaSpacingPattern.ReplaceAllString(s, ", ")
	return whitespacePattern.ReplaceAllString(s, " ")
}

// ToCanonicalComparisonForm renders text for equality checks only: lowercase,
// every character outside [a-z0-9] blanked, whitespace collapsed.
func ToCanonicalComparisonForm(input string) string {
	s := strings.ToLower(NormalizeAddressText(input))
	s = nonAlphanumericPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimFunc(s, isSpace)
}

// BuildCanonicalFromNormalizedAddress canonicalizes "number street city state zip".
func BuildCanonicalFromNormalizedAddress(addr models.NormalizedAddress) string {
	return ToCanonicalComparisonForm(strings.Join([]string{
		addr.Number,
		addr.Street,
		addr.City,
		addr.State,
		addr.ZipCode,
	}, " "))
}

// CompareCanonicalForms reports whether raw and addr agree once both are canonicalized.
func CompareCanonicalForms(rawAddress string, addr models.NormalizedAddress) bool {
	return ToCanonicalComparisonForm(rawAddress) == BuildCanonicalFromNormalizedAddress(addr)
}
