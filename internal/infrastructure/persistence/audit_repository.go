package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolpay/backend/internal/domain/audit"
	"github.com/schoolpay/backend/internal/domain/identity"
	"github.com/schoolpay/backend/internal/infrastructure/logger"
	"github.com/schoolpay/backend/internal/infrastructure/persistence/datascope"
	"github.com/schoolpay/backend/internal/infrastructure/persistence/models"
)

// GormAuditRepository implements the audit Repository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append inserts an audit entry. Entries are never updated or deleted.
func (r *GormAuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	var model models.AuditLogModel
	if err := model.FromDomain(entry); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindRecentBySchool returns the latest entries of a school, newest first,
// optionally filtered by action
func (r *GormAuditRepository) FindRecentBySchool(ctx context.Context, schoolID uuid.UUID, action *audit.Action, limit int) ([]*audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID)
	if action != nil {
		query = query.Where("action = ?", *action)
	}
	// Row-visibility backstop: when the request context carries a role, the
	// role's scope predicate is applied on top of the explicit school filter
	if role := logger.GetRole(ctx); role != "" {
		query = query.Scopes(datascope.Scope(ctx, identity.Role(role), datascope.DefaultFields()))
	}

	var entryModels []models.AuditLogModel
	if err := query.Order("created_at DESC").Limit(limit).Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]*audit.Entry, len(entryModels))
	for i := range entryModels {
		entry, err := entryModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		entries[i] = entry
	}
	return entries, nil
}

// Ensure GormAuditRepository implements the interface
var _ audit.Repository = (*GormAuditRepository)(nil)
