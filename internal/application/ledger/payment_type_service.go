package ledger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appaudit "github.com/schoolpay/backend/internal/application/audit"
	appidentity "github.com/schoolpay/backend/internal/application/identity"
	"github.com/schoolpay/backend/internal/domain/audit"
	"github.com/schoolpay/backend/internal/domain/identity"
	"github.com/schoolpay/backend/internal/domain/ledger"
	"github.com/schoolpay/backend/internal/infrastructure/logger"
)

// PaymentTypeService manages the school's fee categories
type PaymentTypeService struct {
	typeRepo   ledger.PaymentTypeRepository
	schoolRepo identity.SchoolRepository
	recorder   *appaudit.Recorder
}

// NewPaymentTypeService creates a new PaymentTypeService
func NewPaymentTypeService(
	typeRepo ledger.PaymentTypeRepository,
	schoolRepo identity.SchoolRepository,
	recorder *appaudit.Recorder,
) *PaymentTypeService {
	return &PaymentTypeService{
		typeRepo:   typeRepo,
		schoolRepo: schoolRepo,
		recorder:   recorder,
	}
}

// CreatePaymentType creates a fee category
func (s *PaymentTypeService) CreatePaymentType(ctx context.Context, actor identity.Actor, schoolID uuid.UUID, name string) (*ledger.PaymentType, error) {
	if err := identity.Authorize(actor, schoolID); err != nil {
		return nil, err
	}
	if _, err := appidentity.RequireActiveSchool(ctx, s.schoolRepo, schoolID); err != nil {
		return nil, err
	}

	paymentType, err := ledger.NewPaymentType(schoolID, name)
	if err != nil {
		return nil, err
	}
	paymentType.SetCreatedBy(actor.UserID)
	if err := s.typeRepo.Save(ctx, paymentType); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("payment type created",
		zap.String("payment_type_id", paymentType.ID.String()),
		zap.String("name", paymentType.Name))
	s.recorder.Record(ctx, actor, &schoolID, audit.ActionPaymentTypeCreated, "payment_type", &paymentType.ID, map[string]any{
		"name": paymentType.Name,
	})
	return paymentType, nil
}

// ListPaymentTypes returns the school's fee categories
func (s *PaymentTypeService) ListPaymentTypes(ctx context.Context, actor identity.Actor, schoolID uuid.UUID) ([]*ledger.PaymentType, error) {
	if err := identity.Authorize(actor, schoolID); err != nil {
		return nil, err
	}
	return s.typeRepo.FindAllBySchool(ctx, schoolID)
}

// TogglePaymentType soft-activates or deactivates a fee category
func (s *PaymentTypeService) TogglePaymentType(ctx context.Context, actor identity.Actor, schoolID, typeID uuid.UUID, active bool) (*ledger.PaymentType, error) {
	if err := identity.Authorize(actor, schoolID); err != nil {
		return nil, err
	}
	if _, err := appidentity.RequireActiveSchool(ctx, s.schoolRepo, schoolID); err != nil {
		return nil, err
	}

	paymentType, err := s.typeRepo.FindByIDForSchool(ctx, typeID, schoolID)
	if err != nil {
		return nil, err
	}
	paymentType.SetActive(active)
	if err := s.typeRepo.Update(ctx, paymentType); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor, &schoolID, audit.ActionPaymentTypeToggled, "payment_type", &paymentType.ID, map[string]any{
		"name":   paymentType.Name,
		"active": paymentType.IsActive,
	})
	return paymentType, nil
}
