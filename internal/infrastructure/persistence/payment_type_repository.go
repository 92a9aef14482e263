package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolpay/backend/internal/domain/ledger"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/infrastructure/persistence/models"
)

// GormPaymentTypeRepository implements PaymentTypeRepository using GORM
type GormPaymentTypeRepository struct {
	db *gorm.DB
}

// NewGormPaymentTypeRepository creates a new GormPaymentTypeRepository
func NewGormPaymentTypeRepository(db *gorm.DB) *GormPaymentTypeRepository {
	return &GormPaymentTypeRepository{db: db}
}

// Save inserts a new payment type
func (r *GormPaymentTypeRepository) Save(ctx context.Context, paymentType *ledger.PaymentType) error {
	var model models.PaymentTypeModel
	model.FromDomain(paymentType)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update persists payment type changes with optimistic locking on version
func (r *GormPaymentTypeRepository) Update(ctx context.Context, paymentType *ledger.PaymentType) error {
	var model models.PaymentTypeModel
	model.FromDomain(paymentType)
	result := r.db.WithContext(ctx).
		Model(&models.PaymentTypeModel{}).
		Where("id = ? AND school_id = ? AND version = ?", model.ID, model.SchoolID, model.Version-1).
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

// FindByIDForSchool finds a payment type by ID within one school
func (r *GormPaymentTypeRepository) FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*ledger.PaymentType, error) {
	var model models.PaymentTypeModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND school_id = ?", id, schoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllBySchool returns the school's payment types ordered by name
func (r *GormPaymentTypeRepository) FindAllBySchool(ctx context.Context, schoolID uuid.UUID) ([]*ledger.PaymentType, error) {
	var typeModels []models.PaymentTypeModel
	if err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("name ASC").
		Find(&typeModels).Error; err != nil {
		return nil, err
	}
	paymentTypes := make([]*ledger.PaymentType, len(typeModels))
	for i := range typeModels {
		paymentTypes[i] = typeModels[i].ToDomain()
	}
	return paymentTypes, nil
}

// Ensure GormPaymentTypeRepository implements the interface
var _ ledger.PaymentTypeRepository = (*GormPaymentTypeRepository)(nil)
