package parser

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/aliases.yaml
var aliasesYAML []byte

var stateCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

// AliasTables read-only lookup tables used by the parser. Built once, shared
// by every concurrent caller.
type AliasTables struct {
	StreetSuffixes map[string]string `yaml:"street_suffixes"` // lowercase word -> USPS abbreviation
	Directionals   map[string]string `yaml:"directionals"`    // lowercase word -> abbreviation
	StateNames     map[string]string `yaml:"state_names"`     // uppercase full name -> code

	stateCodes  map[string]struct{}
	suffixWords map[string]struct{}
}

var defaultTables = mustLoadAliasTables()

// DefaultAliasTables returns the tables embedded in the binary.
func DefaultAliasTables() *AliasTables {
	return defaultTables
}

// LoadAliasTables parses alias tables from YAML and derives the state-code
// and suffix-word sets.
func LoadAliasTables(data []byte) (*AliasTables, error) {
	tables := &AliasTables{}
	if err := yaml.Unmarshal(data, tables); err != nil {
		return nil, fmt.Errorf("parse alias tables: %w", err)
	}

	if len(tables.StreetSuffixes) == 0 || len(tables.Directionals) == 0 || len(tables.StateNames) == 0 {
		return nil, fmt.Errorf("alias tables: street_suffixes, directionals and state_names are all required")
	}

	tables.suffixWords = make(map[string]struct{}, len(tables.StreetSuffixes))
	for word, abbr := range tables.StreetSuffixes {
		if word != strings.ToLower(word) || abbr == "" {
			return nil, fmt.Errorf("alias tables: invalid street suffix %q -> %q", word, abbr)
		}
		tables.suffixWords[word] = struct{}{}
	}

	for word, abbr := range tables.Directionals {
		if word != strings.ToLower(word) || abbr == "" {
			return nil, fmt.Errorf("alias tables: invalid directional %q -> %q", word, abbr)
		}
	}

	tables.stateCodes = make(map[string]struct{}, len(tables.StateNames))
	for name, code := range tables.StateNames {
		if name != strings.ToUpper(name) || !stateCodePattern.MatchString(code) {
			return nil, fmt.Errorf("alias tables: invalid state %q -> %q", name, code)
		}
		tables.stateCodes[code] = struct{}{}
	}

	return tables, nil
}

func mustLoadAliasTables() *AliasTables {
	tables, err := LoadAliasTables(aliasesYAML)
	if err != nil {
		panic(err)
	}
	return tables
}

// IsStateCode reports whether code (uppercase) is a known USPS state code.
func (t *AliasTables) IsStateCode(code string) bool {
	_, ok := t.stateCodes[code]
	return ok
}

// IsStreetSuffix reports whether word (lowercase) is a known street suffix.
func (t *AliasTables) IsStreetSuffix(word string) bool {
	_, ok := t.suffixWords[word]
	return ok
}

// StateCodeCount number of distinct state codes.
func (t *AliasTables) StateCodeCount() int {
	return len(t.stateCodes)
}
