package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolpay/backend/internal/domain/identity"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/infrastructure/persistence/models"
)

// GormSchoolRepository implements SchoolRepository using GORM
type GormSchoolRepository struct {
	db *gorm.DB
}

// NewGormSchoolRepository creates a new GormSchoolRepository
func NewGormSchoolRepository(db *gorm.DB) *GormSchoolRepository {
	return &GormSchoolRepository{db: db}
}

// Save inserts a new school
func (r *GormSchoolRepository) Save(ctx context.Context, school *identity.School) error {
	var model models.SchoolModel
	model.FromDomain(school)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists school changes with optimistic locking on version
func (r *GormSchoolRepository) Update(ctx context.Context, school *identity.School) error {
	var model models.SchoolModel
	model.FromDomain(school)
	result := r.db.WithContext(ctx).
		Model(&models.SchoolModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]any{
			"name":       model.Name,
			"is_active":  model.IsActive,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a school by its ID
func (r *GormSchoolRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.School, error) {
	var model models.SchoolModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all schools ordered by code
func (r *GormSchoolRepository) FindAll(ctx context.Context) ([]*identity.School, error) {
	var schoolModels []models.SchoolModel
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&schoolModels).Error; err != nil {
		return nil, err
	}
	schools := make([]*identity.School, len(schoolModels))
	for i := range schoolModels {
		schools[i] = schoolModels[i].ToDomain()
	}
	return schools, nil
}

// NextCode allocates the next numeric school code
func (r *GormSchoolRepository) NextCode(ctx context.Context) (int, error) {
	var next int
	if err := r.db.WithContext(ctx).
		Model(&models.SchoolModel{}).
		Select("COALESCE(MAX(code), 0) + 1").
		Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

// Ensure GormSchoolRepository implements the interface
var _ identity.SchoolRepository = (*GormSchoolRepository)(nil)
