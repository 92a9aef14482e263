package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/shared"
)

// Action names an auditable administrative action
type Action string

const (
	ActionSchoolCreated       Action = "SCHOOL_CREATED"
	ActionSchoolSuspended     Action = "SCHOOL_SUSPENDED"
	ActionSchoolReactivated   Action = "SCHOOL_REACTIVATED"
	ActionAcademicYearCreated Action = "ACADEMIC_YEAR_CREATED"
	ActionClassCreated        Action = "CLASS_CREATED"
	ActionStudentsImported    Action = "STUDENTS_IMPORTED"
	ActionPaymentRecorded     Action = "PAYMENT_RECORDED"
	ActionPaymentDeleted      Action = "PAYMENT_DELETED"
	ActionPaymentTypeCreated  Action = "PAYMENT_TYPE_CREATED"
	ActionPaymentTypeToggled  Action = "PAYMENT_TYPE_TOGGLED"
)

// Entry is one immutable audit record. Entries are append-only: they are
// never updated or deleted.
type Entry struct {
	ID         uuid.UUID
	SchoolID   *uuid.UUID
	ActorID    uuid.UUID
	ActorRole  string
	Action     Action
	EntityType string
	EntityID   *uuid.UUID
	Metadata   map[string]any
	CreatedAt  time.Time
}

// NewEntry creates an audit entry. SchoolID is nil for platform-level
// actions.
func NewEntry(schoolID *uuid.UUID, actorID uuid.UUID, actorRole string, action Action, entityType string, entityID *uuid.UUID, metadata map[string]any) (*Entry, error) {
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Audit actor is required")
	}
	if action == "" || entityType == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Audit action and entity type are required")
	}
	return &Entry{
		ID:         uuid.New(),
		SchoolID:   schoolID,
		ActorID:    actorID,
		ActorRole:  actorRole,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}, nil
}

// MetadataJSON serializes the metadata map for persistence
func (e *Entry) MetadataJSON() (string, error) {
	if len(e.Metadata) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(e.Metadata)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
