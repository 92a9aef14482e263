package audit

import (
	"context"

	"github.com/google/uuid"
)

// Repository is append-only storage for audit entries
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	// FindRecentBySchool returns the latest entries of a school, newest
	// first, optionally filtered by action
	FindRecentBySchool(ctx context.Context, schoolID uuid.UUID, action *Action, limit int) ([]*Entry, error)
}
