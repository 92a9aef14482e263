package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/bulk"
)

// ImportHistoryModel is the persistence model for roster import records.
type ImportHistoryModel struct {
	SchoolAggregateModel
	FileName       string    `gorm:"type:varchar(255);not null"`
	FileSize       int64     `gorm:"not null"`
	AcademicYearID uuid.UUID `gorm:"type:uuid;not null;index"`
	ClassID        uuid.UUID `gorm:"type:uuid;not null;index"`
	TotalRows      int       `gorm:"not null"`
	CreatedRows    int       `gorm:"not null"`
	ErrorRows      int       `gorm:"not null"`
	Status         string    `gorm:"type:varchar(20);not null;index"`
	ErrorDetails   string    `gorm:"type:jsonb;not null;default:'[]'"`
	ImportedBy     uuid.UUID `gorm:"type:uuid;not null;index"`
	CompletedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ImportHistoryModel) TableName() string {
	return "import_histories"
}

// ToDomain converts the persistence model to a domain ImportHistory entity.
func (m *ImportHistoryModel) ToDomain() (*bulk.ImportHistory, error) {
	var details []bulk.ImportErrorDetail
	if m.ErrorDetails != "" {
		if err := json.Unmarshal([]byte(m.ErrorDetails), &details); err != nil {
			return nil, err
		}
	}
	history := &bulk.ImportHistory{
		FileName:       m.FileName,
		FileSize:       m.FileSize,
		AcademicYearID: m.AcademicYearID,
		ClassID:        m.ClassID,
		TotalRows:      m.TotalRows,
		CreatedRows:    m.CreatedRows,
		ErrorRows:      m.ErrorRows,
		Status:         bulk.ImportStatus(m.Status),
		ErrorDetails:   details,
		ImportedBy:     m.ImportedBy,
		CompletedAt:    m.CompletedAt,
	}
	m.PopulateSchoolAggregateRoot(&history.SchoolAggregateRoot)
	return history, nil
}

// FromDomain populates the persistence model from a domain ImportHistory entity.
func (m *ImportHistoryModel) FromDomain(h *bulk.ImportHistory) error {
	details, err := h.ErrorDetailsJSON()
	if err != nil {
		return err
	}
	m.FromDomainSchoolAggregateRoot(h.SchoolAggregateRoot)
	m.FileName = h.FileName
	m.FileSize = h.FileSize
	m.AcademicYearID = h.AcademicYearID
	m.ClassID = h.ClassID
	m.TotalRows = h.TotalRows
	m.CreatedRows = h.CreatedRows
	m.ErrorRows = h.ErrorRows
	m.Status = string(h.Status)
	m.ErrorDetails = details
	m.ImportedBy = h.ImportedBy
	m.CompletedAt = h.CompletedAt
	return nil
}
