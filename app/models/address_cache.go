package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValidationCache persisted validation result keyed by input fingerprint
type ValidationCache struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Fingerprint  string             `bson:"fingerprint" json:"fingerprint"` // sha256 of the normalized input
	Result       ValidationResult   `bson:"result" json:"result"`
	Status       ValidationStatus   `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed time.Time          `bson:"last_accessed" json:"last_accessed"`
	AccessCount  int                `bson:"access_count" json:"access_count"`
}

// NewValidationCache creates a cache record for a freshly computed result
func NewValidationCache(fingerprint string, result ValidationResult) *ValidationCache {
	now := time.Now()
	return &ValidationCache{
		Fingerprint:  fingerprint,
		Result:       result,
		Status:       result.Status,
		CreatedAt:    now,
		LastAccessed: now,
		AccessCount:  1,
	}
}

// UpdateAccess bumps the access bookkeeping
func (vc *ValidationCache) UpdateAccess() {
	vc.LastAccessed = time.Now()
	vc.AccessCount++
}

// IsExpired reports whether the record is older than ttl. A non-positive ttl never expires.
func (vc *ValidationCache) IsExpired(ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return time.Since(vc.CreatedAt) > ttl
}
