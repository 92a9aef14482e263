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

// GormStudentRepository implements StudentRepository using GORM
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GormStudentRepository
func NewGormStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// SaveBatch inserts all students in one transaction; a single failure rolls
// back the whole batch
func (r *GormStudentRepository) SaveBatch(ctx context.Context, students []*academics.SchoolStudent) error {
	if len(students) == 0 {
		return nil
	}
	studentModels := make([]models.SchoolStudentModel, len(students))
	for i, student := range students {
		studentModels[i].FromDomain(student)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&studentModels, 200).Error
	})
}

// FindByIDForSchool finds a student by ID within one school
func (r *GormStudentRepository) FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*academics.SchoolStudent, error) {
	var model models.SchoolStudentModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND school_id = ?", id, schoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEnrollment returns the active students of one class in one year
func (r *GormStudentRepository) FindByEnrollment(ctx context.Context, schoolID, academicYearID, classID uuid.UUID) ([]*academics.SchoolStudent, error) {
	var studentModels []models.SchoolStudentModel
	if err := r.db.WithContext(ctx).
		Where("school_id = ? AND academic_year_id = ? AND class_id = ? AND is_active = ?",
			schoolID, academicYearID, classID, true).
		Order("last_name ASC, first_name ASC").
		Find(&studentModels).Error; err != nil {
		return nil, err
	}
	students := make([]*academics.SchoolStudent, len(studentModels))
	for i := range studentModels {
		students[i] = studentModels[i].ToDomain()
	}
	return students, nil
}

// Ensure GormStudentRepository implements the interface
var _ academics.StudentRepository = (*GormStudentRepository)(nil)
