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

// GormClassRepository implements ClassRepository using GORM
type GormClassRepository struct {
	db *gorm.DB
}

// NewGormClassRepository creates a new GormClassRepository
func NewGormClassRepository(db *gorm.DB) *GormClassRepository {
	return &GormClassRepository{db: db}
}

// Save inserts a new class
func (r *GormClassRepository) Save(ctx context.Context, class *academics.SchoolClass) error {
	var model models.SchoolClassModel
	model.FromDomain(class)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByIDForSchool finds a class by ID within one school
func (r *GormClassRepository) FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*academics.SchoolClass, error) {
	var model models.SchoolClassModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND school_id = ?", id, schoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

type classSummaryRow struct {
	models.SchoolClassModel
	YearLabel    string
	StudentCount int64
}

// ListBySchool returns class summaries with the year label and the count of
// active students, optionally filtered by academic year
func (r *GormClassRepository) ListBySchool(ctx context.Context, schoolID uuid.UUID, academicYearID *uuid.UUID) ([]*academics.ClassSummary, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SchoolClassModel{}).
		Select("school_classes.*, academic_years.label AS year_label, COUNT(school_students.id) AS student_count").
		Joins("JOIN academic_years ON academic_years.id = school_classes.academic_year_id").
		Joins("LEFT JOIN school_students ON school_students.class_id = school_classes.id AND school_students.is_active = ?", true).
		Where("school_classes.school_id = ?", schoolID).
		Group("school_classes.id, academic_years.label")

	if academicYearID != nil {
		query = query.Where("school_classes.academic_year_id = ?", *academicYearID)
	}

	var rows []classSummaryRow
	if err := query.Order("school_classes.name ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	summaries := make([]*academics.ClassSummary, len(rows))
	for i := range rows {
		summaries[i] = &academics.ClassSummary{
			Class:        rows[i].ToDomain(),
			YearLabel:    rows[i].YearLabel,
			StudentCount: rows[i].StudentCount,
		}
	}
	return summaries, nil
}

// Ensure GormClassRepository implements the interface
var _ academics.ClassRepository = (*GormClassRepository)(nil)
