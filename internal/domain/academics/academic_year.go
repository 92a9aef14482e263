package academics

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/shared"
)

// AcademicYear is a school's enrollment period. At most one year per school
// is active at any time; the switch is enforced transactionally by the
// repository and backed by a partial unique index.
type AcademicYear struct {
	shared.SchoolAggregateRoot
	Label     string
	StartDate time.Time
	EndDate   time.Time
	IsActive  bool
}

// NewAcademicYear creates an academic year
func NewAcademicYear(schoolID uuid.UUID, label string, startDate, endDate time.Time, isActive bool) (*AcademicYear, error) {
	if !endDate.After(startDate) {
		return nil, shared.NewDomainError("INVALID_INPUT", "End date must be after start date")
	}
	return &AcademicYear{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		Label:               strings.TrimSpace(label),
		StartDate:           startDate,
		EndDate:             endDate,
		IsActive:            isActive,
	}, nil
}

// Deactivate marks the year inactive
func (y *AcademicYear) Deactivate() {
	if y.IsActive {
		y.IsActive = false
		y.IncrementVersion()
	}
}
