package models

// ValidationStatus final outcome of a validation request
type ValidationStatus string

const (
	StatusValid        ValidationStatus = "valid"
	StatusCorrected    ValidationStatus = "corrected"
	StatusUnverifiable ValidationStatus = "unverifiable"
)

// UnverifiableReason explains why no normalized address could be produced
type UnverifiableReason string

const (
	ReasonMissingNormalizedAddress UnverifiableReason = "missing_normalized_address"
	ReasonInsufficientInput        UnverifiableReason = "insufficient_input"
	ReasonNonUSAddress             UnverifiableReason = "non_us_address"
	ReasonUnparseableAddress       UnverifiableReason = "unparseable_address"
)

// UnverifiableReasons returns the closed set of reason codes, in declaration order.
func UnverifiableReasons() []UnverifiableReason {
	return []UnverifiableReason{
		ReasonMissingNormalizedAddress,
		ReasonInsufficientInput,
		ReasonNonUSAddress,
		ReasonUnparseableAddress,
	}
}

// ProviderSource tag of the engine that produced a result
type ProviderSource string

const SourceLocalHeuristic ProviderSource = "local-heuristic"

// NormalizedAddress normalized breakdown of a US address
type NormalizedAddress struct {
	Street  string `json:"street" bson:"street"`     // e.g. "W Broadway Ave"
	Number  string `json:"number" bson:"number"`     // house number, may be alphanumeric ("12B")
	City    string `json:"city" bson:"city"`         // title-cased
	State   string `json:"state" bson:"state"`       // 2-letter USPS code
	ZipCode string `json:"zip_code" bson:"zip_code"` // 12345 or 12345-6789
}

// ValidationResult response object returned for every validation request
type ValidationResult struct {
	Status      ValidationStatus   `json:"status" bson:"status"`
	IsValid     bool               `json:"is_valid" bson:"is_valid"`
	Normalized  *NormalizedAddress `json:"normalized" bson:"normalized"`
	Confidence  float64            `json:"confidence" bson:"confidence"`
	Corrections []string           `json:"corrections" bson:"corrections"`
	Reason      *string            `json:"reason" bson:"reason"`
	Source      ProviderSource     `json:"source" bson:"source"`
}

// Clone returns a deep copy so cached results are never shared with callers.
func (r *ValidationResult) Clone() *ValidationResult {
	if r == nil {
		return nil
	}

	out := *r
	if r.Normalized != nil {
		normalized := *r.Normalized
		out.Normalized = &normalized
	}
	if r.Reason != nil {
		reason := *r.Reason
		out.Reason = &reason
	}
	out.Corrections = append(make([]string, 0, len(r.Corrections)), r.Corrections...)

	return &out
}

// ReasonString returns the reason or "" when absent.
func (r *ValidationResult) ReasonString() string {
	if r == nil || r.Reason == nil {
		return ""
	}
	return *r.Reason
}
