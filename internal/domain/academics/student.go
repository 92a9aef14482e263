package academics

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/shared"
)

// Sex is the roster sex marker
type Sex string

const (
	SexMale    Sex = "M"
	SexFemale  Sex = "F"
	SexOther   Sex = "O"
	SexUnknown Sex = ""
)

// NormalizeSex maps common roster spellings to a Sex marker
func NormalizeSex(raw string) Sex {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "M", "MALE", "G", "GARCON", "GARÇON":
		return SexMale
	case "F", "FEMALE", "FILLE":
		return SexFemale
	case "O", "OTHER", "AUTRE":
		return SexOther
	}
	return SexUnknown
}

// SchoolStudent is an enrolled student. StudentID is the deterministic
// human-facing identifier assigned at import time; the UUID stays the
// storage key.
type SchoolStudent struct {
	shared.SchoolAggregateRoot
	AcademicYearID uuid.UUID
	ClassID        uuid.UUID
	StudentID      string
	FirstName      string
	LastName       string
	Sex            Sex
	IsActive       bool
}

// NewSchoolStudent creates an enrolled student
func NewSchoolStudent(schoolID, academicYearID, classID uuid.UUID, studentID, firstName, lastName string, sex Sex) (*SchoolStudent, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "First and last name are required")
	}
	if academicYearID == uuid.Nil || classID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Academic year and class are required")
	}
	return &SchoolStudent{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		AcademicYearID:      academicYearID,
		ClassID:             classID,
		StudentID:           studentID,
		FirstName:           firstName,
		LastName:            lastName,
		Sex:                 sex,
		IsActive:            true,
	}, nil
}

// Deactivate soft-deletes the student, preserving payment and audit history
func (s *SchoolStudent) Deactivate() {
	if s.IsActive {
		s.IsActive = false
		s.IncrementVersion()
	}
}

// NameKey is the case-insensitive duplicate key used at import time
func (s *SchoolStudent) NameKey() string {
	return NameKey(s.FirstName, s.LastName)
}

// NameKey builds the case-insensitive (lastname, firstname) duplicate key
func NameKey(firstName, lastName string) string {
	return strings.ToLower(strings.TrimSpace(lastName)) + "|" + strings.ToLower(strings.TrimSpace(firstName))
}

// YearTag derives the student-ID year segment from an academic-year label:
// whitespace stripped, truncated to 6 characters, upper-cased. Empty labels
// fall back to the literal token YEAR.
func YearTag(label string) string {
	tag := strings.Join(strings.Fields(label), "")
	if tag == "" {
		return "YEAR"
	}
	if len(tag) > 6 {
		tag = tag[:6]
	}
	return strings.ToUpper(tag)
}

// MakeStudentID builds the deterministic external student identifier:
// S{schoolCode}-{YEARTAG}-{INITIALS}{INDEX4}. Initials fall back to XX when
// either name is empty; index is the 4-digit position within the import
// batch.
func MakeStudentID(schoolCode int, yearLabel, firstName, lastName string, index int) string {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	initials := "XX"
	if firstName != "" && lastName != "" {
		fi := []rune(firstName)
		la := []rune(lastName)
		initials = strings.ToUpper(string(fi[0]) + string(la[0]))
	}
	return fmt.Sprintf("S%d-%s-%s%04d", schoolCode, YearTag(yearLabel), initials, index)
}
