package academics

import (
	"context"

	"github.com/google/uuid"
)

// AcademicYearRepository persists academic years
type AcademicYearRepository interface {
	// Save inserts an inactive year
	Save(ctx context.Context, year *AcademicYear) error
	// SaveAsActive deactivates every other year of the school and inserts
	// the given year as active, in one transaction
	SaveAsActive(ctx context.Context, year *AcademicYear) error
	FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*AcademicYear, error)
	// FindAllBySchool returns years ordered by start date descending
	FindAllBySchool(ctx context.Context, schoolID uuid.UUID) ([]*AcademicYear, error)
}

// ClassRepository persists school classes
type ClassRepository interface {
	Save(ctx context.Context, class *SchoolClass) error
	FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*SchoolClass, error)
	// ListBySchool returns class summaries with year label and student
	// count, optionally filtered by academic year
	ListBySchool(ctx context.Context, schoolID uuid.UUID, academicYearID *uuid.UUID) ([]*ClassSummary, error)
}

// StudentRepository persists enrolled students
type StudentRepository interface {
	SaveBatch(ctx context.Context, students []*SchoolStudent) error
	FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*SchoolStudent, error)
	// FindByEnrollment returns active students of one class in one year,
	// used for import duplicate checks
	FindByEnrollment(ctx context.Context, schoolID, academicYearID, classID uuid.UUID) ([]*SchoolStudent, error)
}
