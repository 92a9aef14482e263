package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/academics"
)

// AcademicYearModel is the persistence model for the AcademicYear aggregate
// root. The at-most-one-active-year invariant is additionally enforced by a
// partial unique index on (school_id) WHERE is_active.
type AcademicYearModel struct {
	SchoolAggregateModel
	Label     string    `gorm:"type:varchar(50);not null"`
	StartDate time.Time `gorm:"not null;index"`
	EndDate   time.Time `gorm:"not null"`
	IsActive  bool      `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (AcademicYearModel) TableName() string {
	return "academic_years"
}

// ToDomain converts the persistence model to a domain AcademicYear entity.
func (m *AcademicYearModel) ToDomain() *academics.AcademicYear {
	year := &academics.AcademicYear{
		Label:     m.Label,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		IsActive:  m.IsActive,
	}
	m.PopulateSchoolAggregateRoot(&year.SchoolAggregateRoot)
	return year
}

// FromDomain populates the persistence model from a domain AcademicYear entity.
func (m *AcademicYearModel) FromDomain(y *academics.AcademicYear) {
	m.FromDomainSchoolAggregateRoot(y.SchoolAggregateRoot)
	m.Label = y.Label
	m.StartDate = y.StartDate
	m.EndDate = y.EndDate
	m.IsActive = y.IsActive
}

// SchoolClassModel is the persistence model for the SchoolClass aggregate root.
type SchoolClassModel struct {
	SchoolAggregateModel
	AcademicYearID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string    `gorm:"type:varchar(100);not null"`
	Level          string    `gorm:"type:varchar(50)"`
	Capacity       *int
}

// TableName returns the table name for GORM
func (SchoolClassModel) TableName() string {
	return "school_classes"
}

// ToDomain converts the persistence model to a domain SchoolClass entity.
func (m *SchoolClassModel) ToDomain() *academics.SchoolClass {
	class := &academics.SchoolClass{
		AcademicYearID: m.AcademicYearID,
		Name:           m.Name,
		Level:          m.Level,
		Capacity:       m.Capacity,
	}
	m.PopulateSchoolAggregateRoot(&class.SchoolAggregateRoot)
	return class
}

// FromDomain populates the persistence model from a domain SchoolClass entity.
func (m *SchoolClassModel) FromDomain(c *academics.SchoolClass) {
	m.FromDomainSchoolAggregateRoot(c.SchoolAggregateRoot)
	m.AcademicYearID = c.AcademicYearID
	m.Name = c.Name
	m.Level = c.Level
	m.Capacity = c.Capacity
}

// SchoolStudentModel is the persistence model for the SchoolStudent
// aggregate root. StudentID is the deterministic external identifier,
// unique per school.
type SchoolStudentModel struct {
	SchoolAggregateModel
	AcademicYearID uuid.UUID     `gorm:"type:uuid;not null;index"`
	ClassID        uuid.UUID     `gorm:"type:uuid;not null;index"`
	StudentID      string        `gorm:"type:varchar(40);not null;uniqueIndex:idx_students_school_student_id,priority:2"`
	FirstName      string        `gorm:"type:varchar(100);not null"`
	LastName       string        `gorm:"type:varchar(100);not null"`
	Sex            academics.Sex `gorm:"type:varchar(1)"`
	IsActive       bool          `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (SchoolStudentModel) TableName() string {
	return "school_students"
}

// ToDomain converts the persistence model to a domain SchoolStudent entity.
func (m *SchoolStudentModel) ToDomain() *academics.SchoolStudent {
	student := &academics.SchoolStudent{
		AcademicYearID: m.AcademicYearID,
		ClassID:        m.ClassID,
		StudentID:      m.StudentID,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Sex:            m.Sex,
		IsActive:       m.IsActive,
	}
	m.PopulateSchoolAggregateRoot(&student.SchoolAggregateRoot)
	return student
}

// FromDomain populates the persistence model from a domain SchoolStudent entity.
func (m *SchoolStudentModel) FromDomain(s *academics.SchoolStudent) {
	m.FromDomainSchoolAggregateRoot(s.SchoolAggregateRoot)
	m.AcademicYearID = s.AcademicYearID
	m.ClassID = s.ClassID
	m.StudentID = s.StudentID
	m.FirstName = s.FirstName
	m.LastName = s.LastName
	m.Sex = s.Sex
	m.IsActive = s.IsActive
}
