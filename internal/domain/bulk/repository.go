package bulk

import (
	"context"

	"github.com/google/uuid"
)

// ImportHistoryRepository persists roster import records
type ImportHistoryRepository interface {
	Save(ctx context.Context, history *ImportHistory) error
	// FindRecentBySchool returns the latest imports, newest first
	FindRecentBySchool(ctx context.Context, schoolID uuid.UUID, limit int) ([]*ImportHistory, error)
}
