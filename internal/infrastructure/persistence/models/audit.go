package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/audit"
)

// AuditLogModel is the persistence model for audit entries. The table is
// append-only: rows are never updated or deleted.
type AuditLogModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	SchoolID   *uuid.UUID `gorm:"type:uuid;index"`
	ActorID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ActorRole  string     `gorm:"type:varchar(30);not null"`
	Action     string     `gorm:"type:varchar(50);not null;index"`
	EntityType string     `gorm:"type:varchar(50);not null"`
	EntityID   *uuid.UUID `gorm:"type:uuid"`
	Metadata   string     `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain audit Entry.
func (m *AuditLogModel) ToDomain() (*audit.Entry, error) {
	var metadata map[string]any
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, err
		}
	}
	return &audit.Entry{
		ID:         m.ID,
		SchoolID:   m.SchoolID,
		ActorID:    m.ActorID,
		ActorRole:  m.ActorRole,
		Action:     audit.Action(m.Action),
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Metadata:   metadata,
		CreatedAt:  m.CreatedAt,
	}, nil
}

// FromDomain populates the persistence model from a domain audit Entry.
func (m *AuditLogModel) FromDomain(e *audit.Entry) error {
	metadata, err := e.MetadataJSON()
	if err != nil {
		return err
	}
	m.ID = e.ID
	m.SchoolID = e.SchoolID
	m.ActorID = e.ActorID
	m.ActorRole = e.ActorRole
	m.Action = string(e.Action)
	m.EntityType = e.EntityType
	m.EntityID = e.EntityID
	m.Metadata = metadata
	m.CreatedAt = e.CreatedAt
	return nil
}
