package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks ("México" -> "Mexico").
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// FoldForMatching strips diacritics and lowercases, for keyword matching.
func FoldForMatching(s string) string {
	return strings.ToLower(StripDiacritics(s))
}
