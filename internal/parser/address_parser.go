package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	zipCodePattern      = regexp.MustCompile(`^\d{5}(?:-\d{4})?$`)
	streetNumberPattern = regexp.MustCompile(`^\d+[a-zA-Z0-9-]*$`)
)

const minSingleSegmentTokens = 5

// ResolvedState state code plus whether it came from the full-name table
type ResolvedState struct {
	Code         string
	FromFullName bool
}

// ParsedAddressParts intermediate parse result. FromFullName and
// UsedSuffixExpansion only drive the corrections list.
type ParsedAddressParts struct {
	Number              string
	Street              string
	City                string
	State               ResolvedState
	ZipCode             string
	UsedSuffixExpansion bool
}

// AddressParser splits normalized address text into components
type AddressParser struct {
	tables *AliasTables
}

// NewAddressParser creates an AddressParser. nil tables means the embedded defaults.
func NewAddressParser(tables *AliasTables) *AddressParser {
	if tables == nil {
		tables = DefaultAliasTables()
	}
	return &AddressParser{tables: tables}
}

// ParseAddressParts parses text already passed through NormalizeAddressText.
// Comma-delimited parsing is tried first, then single-segment parsing over the
// comma segments joined by spaces. ok is false when neither strategy matches.
func (ap *AddressParser) ParseAddressParts(normalizedInput string) (ParsedAddressParts, bool) {
	segments := splitCommaSegments(normalizedInput)

	if parts, ok := ap.parseCommaSeparated(segments); ok {
		return parts, true
	}

	return ap.parseSingleSegment(strings.Join(segments, " "))
}

func splitCommaSegments(input string) []string {
	raw := strings.Split(input, ",")
	segments := make([]string, 0, len(raw))
	for _, segment := range raw {
		segment = strings.TrimSpace(segment)
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// parseCommaSeparated handles "<number> <street>, <city...>, <state> <zip>".
func (ap *AddressParser) parseCommaSeparated(segments []string) (ParsedAddressParts, bool) {
	if len(segments) < 2 {
		return ParsedAddressParts{}, false
	}

	number, rawStreet, ok := parseStreetNumber(segments[0])
	if !ok {
		return ParsedAddressParts{}, false
	}

	stateZipTokens := strings.Fields(segments[len(segments)-1])
	if len(stateZipTokens) < 2 {
		return ParsedAddressParts{}, false
	}

	zipCode := stateZipTokens[len(stateZipTokens)-1]
	if !zipCodePattern.MatchString(zipCode) {
		return ParsedAddressParts{}, false
	}

	state, ok := ap.resolveState(strings.Join(stateZipTokens[:len(stateZipTokens)-1], " "))
	if !ok {
		return ParsedAddressParts{}, false
	}

	city := strings.TrimSpace(strings.Join(segments[1:len(segments)-1], " "))
	if city == "" {
		return ParsedAddressParts{}, false
	}

	street, usedSuffixExpansion := ap.normalizeStreet(rawStreet)

	return ParsedAddressParts{
		Number:              number,
		Street:              street,
		City:                normalizeCity(city),
		State:               state,
		ZipCode:             zipCode,
		UsedSuffixExpansion: usedSuffixExpansion,
	}, true
}

// parseSingleSegment handles "<number> <street...> <city...> <state> <zip>"
// without delimiters. The state is resolved backward from the ZIP, one token
// first and then two, and the street/city split falls right after the first
// street suffix word.
func (ap *AddressParser) parseSingleSegment(segment string) (ParsedAddressParts, bool) {
	tokens := strings.Fields(segment)
	if len(tokens) < minSingleSegmentTokens {
		return ParsedAddressParts{}, false
	}

	zipCode := tokens[len(tokens)-1]
	if !zipCodePattern.MatchString(zipCode) {
		return ParsedAddressParts{}, false
	}

	stateStart := len(tokens) - 2
	state, ok := ap.resolveState(tokens[stateStart])
	if !ok {
		stateStart = len(tokens) - 3
		state, ok = ap.resolveState(tokens[stateStart] + " " + tokens[stateStart+1])
	}
	if !ok || stateStart < 2 {
		return ParsedAddressParts{}, false
	}

	number := tokens[0]
	if !streetNumberPattern.MatchString(number) {
		return ParsedAddressParts{}, false
	}

	middle := tokens[1:stateStart]
	if len(middle) < 2 {
		return ParsedAddressParts{}, false
	}

	splitIndex := len(middle) - 2
	for i, word := range middle {
		if ap.tables.IsStreetSuffix(strings.ToLower(word)) {
			splitIndex = i + 1
			break
		}
	}

	streetTokens := middle[:splitIndex]
	cityTokens := middle[splitIndex:]
	if len(streetTokens) == 0 || len(cityTokens) == 0 {
		return ParsedAddressParts{}, false
	}

	street, usedSuffixExpansion := ap.normalizeStreet(strings.Join(streetTokens, " "))

	return ParsedAddressParts{
		Number:              number,
		Street:              street,
		City:                normalizeCity(strings.Join(cityTokens, " ")),
		State:               state,
		ZipCode:             zipCode,
		UsedSuffixExpansion: usedSuffixExpansion,
	}, true
}

// parseStreetNumber splits "<number> <street words...>".
func parseStreetNumber(segment string) (number, street string, ok bool) {
	tokens := strings.Fields(segment)
	if len(tokens) < 2 {
		return "", "", false
	}

	if !streetNumberPattern.MatchString(tokens[0]) {
		return "", "", false
	}

	return tokens[0], strings.Join(tokens[1:], " "), true
}

// resolveState accepts a 2-letter code or a full state name, case-insensitively.
func (ap *AddressParser) resolveState(raw string) (ResolvedState, bool) {
	compact := strings.TrimSpace(raw)
	if compact == "" {
		return ResolvedState{}, false
	}

	upper := strings.ToUpper(compact)
	if ap.tables.IsStateCode(upper) {
		return ResolvedState{Code: upper}, true
	}

	code, ok := ap.tables.StateNames[upper]
	if !ok {
		return ResolvedState{}, false
	}

	return ResolvedState{Code: code, FromFullName: true}, true
}

// normalizeStreet maps every street word through the alias tables and reports
// whether any suffix was rewritten to a different form.
func (ap *AddressParser) normalizeStreet(rawStreet string) (string, bool) {
	words := strings.Fields(rawStreet)
	usedSuffixExpansion := false

	for i, word := range words {
		normalized, expanded := ap.normalizeStreetWord(word)
		if expanded {
			usedSuffixExpansion = true
		}
		words[i] = normalized
	}

	return strings.Join(words, " "), usedSuffixExpansion
}

func (ap *AddressParser) normalizeStreetWord(word string) (string, bool) {
	lowered := strings.ToLower(word)

	if directional, ok := ap.tables.Directionals[lowered]; ok {
		return directional, false
	}

	if suffix, ok := ap.tables.StreetSuffixes[lowered]; ok {
		return suffix, lowered != strings.ToLower(suffix)
	}

	return toTitleCase(word), false
}

func normalizeCity(rawCity string) string {
	words := strings.Fields(rawCity)
	for i, word := range words {
		words[i] = toTitleCase(word)
	}
	return strings.Join(words, " ")
}

// toTitleCase lowercases token and capitalizes each hyphen-delimited part.
func toTitleCase(token string) string {
	parts := strings.Split(strings.ToLower(token), "-")
	for i, part := range parts {
		r, size := utf8.DecodeRuneInString(part)
		if size == 0 {
			continue
		}
		parts[i] = string(unicode.ToUpper(r)) + part[size:]
	}
	return strings.Join(parts, "-")
}
