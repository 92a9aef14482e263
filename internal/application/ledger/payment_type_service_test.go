package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appaudit "github.com/schoolpay/backend/internal/application/audit"
	"github.com/schoolpay/backend/internal/domain/identity"
	"github.com/schoolpay/backend/internal/domain/ledger"
	"github.com/schoolpay/backend/internal/domain/shared"
)

type paymentTypeFixture struct {
	service    *PaymentTypeService
	typeRepo   *MockPaymentTypeRepository
	schoolRepo *MockSchoolRepository
	auditRepo  *MockAuditRepository
	school     *identity.School
	actor      identity.Actor
}

func newPaymentTypeFixture(t *testing.T) *paymentTypeFixture {
	t.Helper()
	school, err := identity.NewSchool("Lycee du Centre", 12)
	require.NoError(t, err)

	f := &paymentTypeFixture{
		typeRepo:   new(MockPaymentTypeRepository),
		schoolRepo: new(MockSchoolRepository),
		auditRepo:  new(MockAuditRepository),
		school:     school,
		actor:      identity.Actor{UserID: uuid.New(), Role: identity.RoleSchoolAdmin, SchoolID: school.ID},
	}
	f.service = NewPaymentTypeService(f.typeRepo, f.schoolRepo, appaudit.NewRecorder(f.auditRepo))
	return f
}

func TestCreatePaymentType(t *testing.T) {
	t.Run("creates an active fee category", func(t *testing.T) {
		f := newPaymentTypeFixture(t)
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
		f.typeRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

		paymentType, err := f.service.CreatePaymentType(context.Background(), f.actor, f.school.ID, "Cantine")
		require.NoError(t, err)
		assert.Equal(t, "Cantine", paymentType.Name)
		assert.True(t, paymentType.IsActive)
	})

	t.Run("rejects a blank name", func(t *testing.T) {
		f := newPaymentTypeFixture(t)
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)

		_, err := f.service.CreatePaymentType(context.Background(), f.actor, f.school.ID, "  ")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("blocks a suspended school", func(t *testing.T) {
		f := newPaymentTypeFixture(t)
		require.NoError(t, f.school.Suspend())
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)

		_, err := f.service.CreatePaymentType(context.Background(), f.actor, f.school.ID, "Cantine")
		assert.ErrorIs(t, err, shared.ErrSchoolSuspended)
	})
}

func TestTogglePaymentType(t *testing.T) {
	t.Run("deactivates a category", func(t *testing.T) {
		f := newPaymentTypeFixture(t)
		paymentType, err := ledger.NewPaymentType(f.school.ID, "Cantine")
		require.NoError(t, err)
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
		f.typeRepo.On("FindByIDForSchool", mock.Anything, paymentType.ID, f.school.ID).Return(paymentType, nil)
		f.typeRepo.On("Update", mock.Anything, paymentType).Return(nil)
		f.auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

		toggled, err := f.service.TogglePaymentType(context.Background(), f.actor, f.school.ID, paymentType.ID, false)
		require.NoError(t, err)
		assert.False(t, toggled.IsActive)
	})

	t.Run("a cross-school category surfaces as not found", func(t *testing.T) {
		f := newPaymentTypeFixture(t)
		typeID := uuid.New()
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
		f.typeRepo.On("FindByIDForSchool", mock.Anything, typeID, f.school.ID).Return(nil, shared.ErrNotFound)

		_, err := f.service.TogglePaymentType(context.Background(), f.actor, f.school.ID, typeID, false)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
