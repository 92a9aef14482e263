package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolpay/backend/internal/domain/bulk"
	"github.com/schoolpay/backend/internal/infrastructure/persistence/models"
)

// GormImportHistoryRepository implements ImportHistoryRepository using GORM
type GormImportHistoryRepository struct {
	db *gorm.DB
}

// NewGormImportHistoryRepository creates a new GormImportHistoryRepository
func NewGormImportHistoryRepository(db *gorm.DB) *GormImportHistoryRepository {
	return &GormImportHistoryRepository{db: db}
}

// Save inserts a finished import record
func (r *GormImportHistoryRepository) Save(ctx context.Context, history *bulk.ImportHistory) error {
	var model models.ImportHistoryModel
	if err := model.FromDomain(history); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindRecentBySchool returns the latest imports of a school, newest first
func (r *GormImportHistoryRepository) FindRecentBySchool(ctx context.Context, schoolID uuid.UUID, limit int) ([]*bulk.ImportHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var historyModels []models.ImportHistoryModel
	if err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&historyModels).Error; err != nil {
		return nil, err
	}
	histories := make([]*bulk.ImportHistory, len(historyModels))
	for i := range historyModels {
		history, err := historyModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		histories[i] = history
	}
	return histories, nil
}

// Ensure GormImportHistoryRepository implements the interface
var _ bulk.ImportHistoryRepository = (*GormImportHistoryRepository)(nil)
