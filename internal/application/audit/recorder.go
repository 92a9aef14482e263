package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schoolpay/backend/internal/domain/audit"
	"github.com/schoolpay/backend/internal/domain/identity"
	"github.com/schoolpay/backend/internal/infrastructure/logger"
)

// Recorder appends audit entries for administrative actions. Every mutating
// service calls it synchronously after a successful mutation; an append
// failure is logged and never fails the already committed operation.
type Recorder struct {
	repo audit.Repository
}

// NewRecorder creates a new Recorder
func NewRecorder(repo audit.Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends one audit entry. schoolID is nil for platform-level
// actions.
func (r *Recorder) Record(ctx context.Context, actor identity.Actor, schoolID *uuid.UUID, action audit.Action, entityType string, entityID *uuid.UUID, metadata map[string]any) {
	entry, err := audit.NewEntry(schoolID, actor.UserID, string(actor.Role), action, entityType, entityID, metadata)
	if err != nil {
		logger.L(ctx).Error("failed to build audit entry",
			zap.String("action", string(action)),
			zap.Error(err))
		return
	}
	if err := r.repo.Append(ctx, entry); err != nil {
		logger.L(ctx).Error("failed to append audit entry",
			zap.String("action", string(action)),
			zap.String("entity_type", entityType),
			zap.Error(err))
	}
}

// RecentForSchool lists the latest audit entries of a school
func (r *Recorder) RecentForSchool(ctx context.Context, actor identity.Actor, schoolID uuid.UUID, action *audit.Action, limit int) ([]*audit.Entry, error) {
	if err := identity.Authorize(actor, schoolID); err != nil {
		return nil, err
	}
	return r.repo.FindRecentBySchool(ctx, schoolID, action, limit)
}
