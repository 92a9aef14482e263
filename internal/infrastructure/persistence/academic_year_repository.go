package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolpay/backend/internal/domain/academics"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/infrastructure/persistence/models"
)

// GormAcademicYearRepository implements AcademicYearRepository using GORM
type GormAcademicYearRepository struct {
	db *gorm.DB
}

// NewGormAcademicYearRepository creates a new GormAcademicYearRepository
func NewGormAcademicYearRepository(db *gorm.DB) *GormAcademicYearRepository {
	return &GormAcademicYearRepository{db: db}
}

// Save inserts a year without touching the active flag of its siblings
func (r *GormAcademicYearRepository) Save(ctx context.Context, year *academics.AcademicYear) error {
	var model models.AcademicYearModel
	model.FromDomain(year)
	return r.db.WithContext(ctx).Create(&model).Error
}

// SaveAsActive deactivates every other year of the school and inserts the
// given year as active, in one transaction. Keeping both statements in the
// same transaction is what upholds the single-active-year rule under
// concurrent creates.
func (r *GormAcademicYearRepository) SaveAsActive(ctx context.Context, year *academics.AcademicYear) error {
	var model models.AcademicYearModel
	model.FromDomain(year)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AcademicYearModel{}).
			Where("school_id = ? AND is_active = ?", model.SchoolID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
}

// FindByIDForSchool finds a year by ID within one school
func (r *GormAcademicYearRepository) FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*academics.AcademicYear, error) {
	var model models.AcademicYearModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND school_id = ?", id, schoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllBySchool returns the school's years, most recent first
func (r *GormAcademicYearRepository) FindAllBySchool(ctx context.Context, schoolID uuid.UUID) ([]*academics.AcademicYear, error) {
	var yearModels []models.AcademicYearModel
	if err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("start_date DESC").
		Find(&yearModels).Error; err != nil {
		return nil, err
	}
	years := make([]*academics.AcademicYear, len(yearModels))
	for i := range yearModels {
		years[i] = yearModels[i].ToDomain()
	}
	return years, nil
}

// Ensure GormAcademicYearRepository implements the interface
var _ academics.AcademicYearRepository = (*GormAcademicYearRepository)(nil)
