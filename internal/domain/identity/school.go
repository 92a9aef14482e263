package identity

import (
	"strings"

	"github.com/schoolpay/backend/internal/domain/shared"
)

// School is a platform-level tenant. Besides its UUID it carries a short
// numeric code used in human-facing identifiers (student IDs, receipt
// numbers).
type School struct {
	shared.BaseAggregateRoot
	Name     string
	Code     int
	IsActive bool
}

// NewSchool creates a school with the given assigned code
func NewSchool(name string, code int) (*School, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "School name is required")
	}
	if code <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "School code must be positive")
	}
	return &School{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Code:              code,
		IsActive:          true,
	}, nil
}

// Suspend deactivates the school; mutating operations are rejected while
// suspended
func (s *School) Suspend() error {
	if !s.IsActive {
		return shared.NewDomainError("INVALID_STATE", "School is already suspended")
	}
	s.IsActive = false
	s.IncrementVersion()
	return nil
}

// Reactivate re-enables a suspended school
func (s *School) Reactivate() error {
	if s.IsActive {
		return shared.NewDomainError("INVALID_STATE", "School is already active")
	}
	s.IsActive = true
	s.IncrementVersion()
	return nil
}
