package models

import (
	"github.com/schoolpay/backend/internal/domain/identity"
)

// SchoolModel is the persistence model for the School aggregate root.
// Schools are platform-level; they carry no school scope themselves.
type SchoolModel struct {
	AggregateModel
	Name     string `gorm:"type:varchar(200);not null"`
	Code     int    `gorm:"not null;uniqueIndex:idx_schools_code"`
	IsActive bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (SchoolModel) TableName() string {
	return "schools"
}

// ToDomain converts the persistence model to a domain School entity.
func (m *SchoolModel) ToDomain() *identity.School {
	school := &identity.School{
		Name:     m.Name,
		Code:     m.Code,
		IsActive: m.IsActive,
	}
	m.PopulateAggregateRoot(&school.BaseAggregateRoot)
	return school
}

// FromDomain populates the persistence model from a domain School entity.
func (m *SchoolModel) FromDomain(s *identity.School) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.Code = s.Code
	m.IsActive = s.IsActive
}
