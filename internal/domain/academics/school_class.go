package academics

import (
	"strings"

	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/shared"
)

// SchoolClass is a class group within one academic year
type SchoolClass struct {
	shared.SchoolAggregateRoot
	AcademicYearID uuid.UUID
	Name           string
	Level          string
	Capacity       *int
}

// NewSchoolClass creates a class bound to an academic year of the same school
func NewSchoolClass(schoolID, academicYearID uuid.UUID, name, level string, capacity *int) (*SchoolClass, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Class name is required")
	}
	if academicYearID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Academic year is required")
	}
	if capacity != nil && *capacity <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Capacity must be positive")
	}
	return &SchoolClass{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		AcademicYearID:      academicYearID,
		Name:                name,
		Level:               strings.TrimSpace(level),
		Capacity:            capacity,
	}, nil
}

// ClassSummary is the listing read model for classes
type ClassSummary struct {
	Class        *SchoolClass
	YearLabel    string
	StudentCount int64
}
