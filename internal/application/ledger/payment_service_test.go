package ledger

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appaudit "github.com/schoolpay/backend/internal/application/audit"
	"github.com/schoolpay/backend/internal/domain/academics"
	"github.com/schoolpay/backend/internal/domain/audit"
	"github.com/schoolpay/backend/internal/domain/identity"
	"github.com/schoolpay/backend/internal/domain/ledger"
	"github.com/schoolpay/backend/internal/domain/shared"
)

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *ledger.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) CreateInstallment(ctx context.Context, payment *ledger.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SoftDelete(ctx context.Context, id, schoolID uuid.UUID) error {
	args := m.Called(ctx, id, schoolID)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*ledger.Payment, error) {
	args := m.Called(ctx, id, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindRecordByID(ctx context.Context, id, schoolID uuid.UUID) (*ledger.PaymentRecord, error) {
	args := m.Called(ctx, id, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, schoolID uuid.UUID, status *ledger.PaymentStatus) ([]*ledger.PaymentRecord, error) {
	args := m.Called(ctx, schoolID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRepository) AttachReceiptReference(ctx context.Context, id uuid.UUID, reference string) error {
	args := m.Called(ctx, id, reference)
	return args.Error(0)
}

func (m *MockPaymentRepository) NextReceiptNumber(ctx context.Context, schoolID uuid.UUID, schoolCode int, date time.Time) (string, error) {
	args := m.Called(ctx, schoolID, schoolCode, date)
	return args.String(0), args.Error(1)
}

// MockPaymentTypeRepository is a mock implementation of PaymentTypeRepository
type MockPaymentTypeRepository struct {
	mock.Mock
}

func (m *MockPaymentTypeRepository) Save(ctx context.Context, paymentType *ledger.PaymentType) error {
	args := m.Called(ctx, paymentType)
	return args.Error(0)
}

func (m *MockPaymentTypeRepository) Update(ctx context.Context, paymentType *ledger.PaymentType) error {
	args := m.Called(ctx, paymentType)
	return args.Error(0)
}

func (m *MockPaymentTypeRepository) FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*ledger.PaymentType, error) {
	args := m.Called(ctx, id, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PaymentType), args.Error(1)
}

func (m *MockPaymentTypeRepository) FindAllBySchool(ctx context.Context, schoolID uuid.UUID) ([]*ledger.PaymentType, error) {
	args := m.Called(ctx, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.PaymentType), args.Error(1)
}

// MockStudentRepository is a mock implementation of the academics StudentRepository
type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) SaveBatch(ctx context.Context, students []*academics.SchoolStudent) error {
	args := m.Called(ctx, students)
	return args.Error(0)
}

func (m *MockStudentRepository) FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*academics.SchoolStudent, error) {
	args := m.Called(ctx, id, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academics.SchoolStudent), args.Error(1)
}

func (m *MockStudentRepository) FindByEnrollment(ctx context.Context, schoolID, academicYearID, classID uuid.UUID) ([]*academics.SchoolStudent, error) {
	args := m.Called(ctx, schoolID, academicYearID, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*academics.SchoolStudent), args.Error(1)
}

// MockSchoolRepository is a mock implementation of SchoolRepository
type MockSchoolRepository struct {
	mock.Mock
}

func (m *MockSchoolRepository) Save(ctx context.Context, school *identity.School) error {
	args := m.Called(ctx, school)
	return args.Error(0)
}

func (m *MockSchoolRepository) Update(ctx context.Context, school *identity.School) error {
	args := m.Called(ctx, school)
	return args.Error(0)
}

func (m *MockSchoolRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.School, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.School), args.Error(1)
}

func (m *MockSchoolRepository) FindAll(ctx context.Context) ([]*identity.School, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.School), args.Error(1)
}

func (m *MockSchoolRepository) NextCode(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockAuditRepository is a mock implementation of the audit Repository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) FindRecentBySchool(ctx context.Context, schoolID uuid.UUID, action *audit.Action, limit int) ([]*audit.Entry, error) {
	args := m.Called(ctx, schoolID, action, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Entry), args.Error(1)
}

// stubIssuer is a configurable ReceiptIssuer test double
type stubIssuer struct {
	reference string
	issueErr  error
	issued    int
}

func (s *stubIssuer) Issue(ctx context.Context, record *ledger.PaymentRecord, schoolName string) (string, error) {
	s.issued++
	if s.issueErr != nil {
		return "", s.issueErr
	}
	return s.reference, nil
}

func (s *stubIssuer) Open(ctx context.Context, reference string) (io.ReadCloser, string, error) {
	return nil, "", shared.ErrNotFound
}

type paymentFixture struct {
	service     *PaymentService
	paymentRepo *MockPaymentRepository
	typeRepo    *MockPaymentTypeRepository
	studentRepo *MockStudentRepository
	schoolRepo  *MockSchoolRepository
	auditRepo   *MockAuditRepository
	issuer      *stubIssuer
	school      *identity.School
	student     *academics.SchoolStudent
	paymentType *ledger.PaymentType
	yearID      uuid.UUID
	classID     uuid.UUID
	actor       identity.Actor
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	school, err := identity.NewSchool("Lycee du Centre", 12)
	require.NoError(t, err)
	yearID := uuid.New()
	classID := uuid.New()
	student, err := academics.NewSchoolStudent(school.ID, yearID, classID, "S12-2025-2-JP0001", "Jean", "Pierre", academics.SexMale)
	require.NoError(t, err)
	paymentType, err := ledger.NewPaymentType(school.ID, "Scolarite")
	require.NoError(t, err)

	f := &paymentFixture{
		paymentRepo: new(MockPaymentRepository),
		typeRepo:    new(MockPaymentTypeRepository),
		studentRepo: new(MockStudentRepository),
		schoolRepo:  new(MockSchoolRepository),
		auditRepo:   new(MockAuditRepository),
		issuer:      &stubIssuer{reference: school.ID.String() + "/RC-12-20260901-0001.html"},
		school:      school,
		student:     student,
		paymentType: paymentType,
		yearID:      yearID,
		classID:     classID,
		actor:       identity.Actor{UserID: uuid.New(), Role: identity.RoleAccountant, SchoolID: school.ID},
	}
	f.service = NewPaymentService(f.paymentRepo, f.typeRepo, f.studentRepo, f.schoolRepo, f.issuer, appaudit.NewRecorder(f.auditRepo))
	return f
}

func (f *paymentFixture) request(due, paid string, installment bool) CreatePaymentRequest {
	return CreatePaymentRequest{
		SchoolID:       f.school.ID,
		StudentID:      f.student.ID,
		ClassID:        f.classID,
		AcademicYearID: f.yearID,
		PaymentTypeID:  f.paymentType.ID,
		AmountDue:      decimal.RequireFromString(due),
		AmountPaid:     decimal.RequireFromString(paid),
		IsInstallment:  installment,
	}
}

// expectHappyPath wires the lookups every successful create goes through
func (f *paymentFixture) expectHappyPath() {
	f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
	f.studentRepo.On("FindByIDForSchool", mock.Anything, f.student.ID, f.school.ID).Return(f.student, nil)
	f.typeRepo.On("FindByIDForSchool", mock.Anything, f.paymentType.ID, f.school.ID).Return(f.paymentType, nil)
	f.paymentRepo.On("NextReceiptNumber", mock.Anything, f.school.ID, 12, mock.Anything).
		Return("RC-12-20260901-0001", nil)
	f.auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
}

func (f *paymentFixture) recordFor(payment *ledger.Payment) *ledger.PaymentRecord {
	return &ledger.PaymentRecord{
		Payment:          payment,
		StudentName:      "Jean Pierre",
		StudentExternal:  f.student.StudentID,
		ClassName:        "6eme A",
		YearLabel:        "2025-2026",
		PaymentTypeName:  f.paymentType.Name,
		RecordedByUserID: payment.RecordedBy,
	}
}

func TestCreatePayment(t *testing.T) {
	t.Run("single mode derives the status and attaches the receipt", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.expectHappyPath()
		f.paymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.paymentRepo.On("FindRecordByID", mock.Anything, mock.Anything, f.school.ID).
			Return(f.recordFor(&ledger.Payment{}), nil)
		f.paymentRepo.On("AttachReceiptReference", mock.Anything, mock.Anything, f.issuer.reference).Return(nil)

		payment, err := f.service.CreatePayment(context.Background(), f.actor, f.request("100", "40", false))
		require.NoError(t, err)

		assert.Equal(t, ledger.StatusPartial, payment.Status)
		assert.Equal(t, "RC-12-20260901-0001", payment.ReceiptNumber)
		require.NotNil(t, payment.ReceiptReference)
		assert.Equal(t, f.issuer.reference, *payment.ReceiptReference)
		assert.Equal(t, 1, f.issuer.issued)
		f.paymentRepo.AssertNotCalled(t, "CreateInstallment", mock.Anything, mock.Anything)
	})

	t.Run("installment mode goes through the group-aware insert", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.expectHappyPath()
		f.paymentRepo.On("CreateInstallment", mock.Anything, mock.Anything).Return(nil)
		f.paymentRepo.On("FindRecordByID", mock.Anything, mock.Anything, f.school.ID).
			Return(f.recordFor(&ledger.Payment{}), nil)
		f.paymentRepo.On("AttachReceiptReference", mock.Anything, mock.Anything, f.issuer.reference).Return(nil)

		payment, err := f.service.CreatePayment(context.Background(), f.actor, f.request("300", "100", true))
		require.NoError(t, err)

		assert.True(t, payment.IsInstallment)
		f.paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("a failed receipt issue leaves the payment standing without a reference", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.expectHappyPath()
		f.issuer.issueErr = errors.New("renderer unavailable")
		f.paymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.paymentRepo.On("FindRecordByID", mock.Anything, mock.Anything, f.school.ID).
			Return(f.recordFor(&ledger.Payment{}), nil)

		payment, err := f.service.CreatePayment(context.Background(), f.actor, f.request("100", "100", false))
		require.NoError(t, err)

		assert.Equal(t, ledger.StatusPaid, payment.Status)
		assert.Nil(t, payment.ReceiptReference)
		f.paymentRepo.AssertNotCalled(t, "AttachReceiptReference", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a student not enrolled in the given class and year", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
		f.studentRepo.On("FindByIDForSchool", mock.Anything, f.student.ID, f.school.ID).Return(f.student, nil)

		req := f.request("100", "40", false)
		req.ClassID = uuid.New()
		_, err := f.service.CreatePayment(context.Background(), f.actor, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("a cross-school student surfaces as not found", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
		f.studentRepo.On("FindByIDForSchool", mock.Anything, f.student.ID, f.school.ID).Return(nil, shared.ErrNotFound)

		_, err := f.service.CreatePayment(context.Background(), f.actor, f.request("100", "40", false))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("blocks a suspended school", func(t *testing.T) {
		f := newPaymentFixture(t)
		require.NoError(t, f.school.Suspend())
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)

		_, err := f.service.CreatePayment(context.Background(), f.actor, f.request("100", "40", false))
		assert.ErrorIs(t, err, shared.ErrSchoolSuspended)
	})

	t.Run("rejects a non-positive due amount", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
		f.studentRepo.On("FindByIDForSchool", mock.Anything, f.student.ID, f.school.ID).Return(f.student, nil)
		f.typeRepo.On("FindByIDForSchool", mock.Anything, f.paymentType.ID, f.school.ID).Return(f.paymentType, nil)

		_, err := f.service.CreatePayment(context.Background(), f.actor, f.request("0", "0", false))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})
}

func TestDeletePayment(t *testing.T) {
	t.Run("soft-deletes and audits", func(t *testing.T) {
		f := newPaymentFixture(t)
		paymentID := uuid.New()
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
		f.paymentRepo.On("SoftDelete", mock.Anything, paymentID, f.school.ID).Return(nil)
		f.auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

		err := f.service.DeletePayment(context.Background(), f.actor, f.school.ID, paymentID)
		require.NoError(t, err)
		f.paymentRepo.AssertExpectations(t)
		f.auditRepo.AssertExpectations(t)
	})

	t.Run("propagates not found", func(t *testing.T) {
		f := newPaymentFixture(t)
		paymentID := uuid.New()
		f.schoolRepo.On("FindByID", mock.Anything, f.school.ID).Return(f.school, nil)
		f.paymentRepo.On("SoftDelete", mock.Anything, paymentID, f.school.ID).Return(shared.ErrNotFound)

		err := f.service.DeletePayment(context.Background(), f.actor, f.school.ID, paymentID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestListPayments(t *testing.T) {
	t.Run("passes the status filter through", func(t *testing.T) {
		f := newPaymentFixture(t)
		status := ledger.StatusPartial
		records := []*ledger.PaymentRecord{}
		f.paymentRepo.On("List", mock.Anything, f.school.ID, &status).Return(records, nil)

		result, err := f.service.ListPayments(context.Background(), f.actor, f.school.ID, &status)
		require.NoError(t, err)
		assert.Equal(t, records, result)
	})

	t.Run("rejects an unknown status filter", func(t *testing.T) {
		f := newPaymentFixture(t)
		status := ledger.PaymentStatus("SETTLED")

		_, err := f.service.ListPayments(context.Background(), f.actor, f.school.ID, &status)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})
}

func TestOpenReceipt(t *testing.T) {
	t.Run("a payment without a reference is not found", func(t *testing.T) {
		f := newPaymentFixture(t)
		paymentID := uuid.New()
		f.paymentRepo.On("FindByIDForSchool", mock.Anything, paymentID, f.school.ID).
			Return(&ledger.Payment{}, nil)

		_, _, err := f.service.OpenReceipt(context.Background(), f.actor, f.school.ID, paymentID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("a missing stored document is not found", func(t *testing.T) {
		f := newPaymentFixture(t)
		paymentID := uuid.New()
		reference := "gone.html"
		f.paymentRepo.On("FindByIDForSchool", mock.Anything, paymentID, f.school.ID).
			Return(&ledger.Payment{ReceiptReference: &reference}, nil)

		_, _, err := f.service.OpenReceipt(context.Background(), f.actor, f.school.ID, paymentID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
