package ledger

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appaudit "github.com/schoolpay/backend/internal/application/audit"
	appidentity "github.com/schoolpay/backend/internal/application/identity"
	"github.com/schoolpay/backend/internal/domain/academics"
	"github.com/schoolpay/backend/internal/domain/audit"
	"github.com/schoolpay/backend/internal/domain/identity"
	"github.com/schoolpay/backend/internal/domain/ledger"
	"github.com/schoolpay/backend/internal/domain/shared"
	"github.com/schoolpay/backend/internal/infrastructure/logger"
)

// ReceiptIssuer produces a durable document for a committed payment and
// hands back the reference the ledger persists. A failure here never rolls
// back the payment; the row simply keeps a null reference for retry.
type ReceiptIssuer interface {
	Issue(ctx context.Context, record *ledger.PaymentRecord, schoolName string) (string, error)
	Open(ctx context.Context, reference string) (io.ReadCloser, string, error)
}

// PaymentService records payments and installments, derives status and
// keeps installment groups consistent
type PaymentService struct {
	paymentRepo ledger.PaymentRepository
	typeRepo    ledger.PaymentTypeRepository
	studentRepo academics.StudentRepository
	schoolRepo  identity.SchoolRepository
	issuer      ReceiptIssuer
	recorder    *appaudit.Recorder
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo ledger.PaymentRepository,
	typeRepo ledger.PaymentTypeRepository,
	studentRepo academics.StudentRepository,
	schoolRepo identity.SchoolRepository,
	issuer ReceiptIssuer,
	recorder *appaudit.Recorder,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		typeRepo:    typeRepo,
		studentRepo: studentRepo,
		schoolRepo:  schoolRepo,
		issuer:      issuer,
		recorder:    recorder,
	}
}

// CreatePaymentRequest carries the inputs for one ledger row
type CreatePaymentRequest struct {
	SchoolID       uuid.UUID
	StudentID      uuid.UUID
	ClassID        uuid.UUID
	AcademicYearID uuid.UUID
	PaymentTypeID  uuid.UUID
	AmountDue      decimal.Decimal
	AmountPaid     decimal.Decimal
	IsInstallment  bool
	Notes          string
}

// CreatePayment records a payment. Single mode derives the status from this
// row's own amounts; installment mode locks the group, reuses the group's
// authoritative due amount and propagates the group-wide status to every
// sibling. The receipt is issued after the commit.
func (s *PaymentService) CreatePayment(ctx context.Context, actor identity.Actor, req CreatePaymentRequest) (*ledger.Payment, error) {
	if err := identity.Authorize(actor, req.SchoolID); err != nil {
		return nil, err
	}
	school, err := appidentity.RequireActiveSchool(ctx, s.schoolRepo, req.SchoolID)
	if err != nil {
		return nil, err
	}

	// Referenced entities must resolve within the school. Cross-school
	// references surface as plain not-found so existence never leaks.
	student, err := s.studentRepo.FindByIDForSchool(ctx, req.StudentID, req.SchoolID)
	if err != nil {
		return nil, err
	}
	if student.ClassID != req.ClassID || student.AcademicYearID != req.AcademicYearID {
		return nil, shared.NewDomainError("INVALID_INPUT", "Student is not enrolled in the given class and academic year")
	}
	if _, err := s.typeRepo.FindByIDForSchool(ctx, req.PaymentTypeID, req.SchoolID); err != nil {
		return nil, err
	}

	key := ledger.GroupKey{
		SchoolID:       req.SchoolID,
		StudentID:      req.StudentID,
		ClassID:        req.ClassID,
		AcademicYearID: req.AcademicYearID,
		PaymentTypeID:  req.PaymentTypeID,
	}
	status := ledger.StatusFor(req.AmountDue, req.AmountPaid)
	payment, err := ledger.NewPayment(key, req.AmountDue, req.AmountPaid, status, req.IsInstallment, req.Notes, actor.UserID)
	if err != nil {
		return nil, err
	}
	payment.SetCreatedBy(actor.UserID)

	receiptNumber, err := s.paymentRepo.NextReceiptNumber(ctx, req.SchoolID, school.Code, time.Now())
	if err != nil {
		return nil, err
	}
	payment.ReceiptNumber = receiptNumber

	if req.IsInstallment {
		err = s.paymentRepo.CreateInstallment(ctx, payment)
	} else {
		err = s.paymentRepo.Create(ctx, payment)
	}
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("receipt_number", payment.ReceiptNumber),
		zap.String("status", string(payment.Status)),
		zap.Bool("installment", payment.IsInstallment))
	s.recorder.Record(ctx, actor, &req.SchoolID, audit.ActionPaymentRecorded, "payment", &payment.ID, map[string]any{
		"amount_due":     payment.AmountDue.String(),
		"amount_paid":    payment.AmountPaid.String(),
		"status":         string(payment.Status),
		"installment":    payment.IsInstallment,
		"receipt_number": payment.ReceiptNumber,
	})

	s.issueReceipt(ctx, school.Name, payment)
	return payment, nil
}

// issueReceipt runs after the payment commit. The payment stands whatever
// happens here; a failed issue just leaves the reference null for backfill.
func (s *PaymentService) issueReceipt(ctx context.Context, schoolName string, payment *ledger.Payment) {
	if s.issuer == nil {
		return
	}
	record, err := s.paymentRepo.FindRecordByID(ctx, payment.ID, payment.SchoolID)
	if err != nil {
		logger.L(ctx).Warn("receipt issue skipped, could not join payment record",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err))
		return
	}
	reference, err := s.issuer.Issue(ctx, record, schoolName)
	if err != nil {
		logger.L(ctx).Warn("receipt issue failed, payment stands without reference",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err))
		return
	}
	if err := s.paymentRepo.AttachReceiptReference(ctx, payment.ID, reference); err != nil {
		logger.L(ctx).Warn("failed to persist receipt reference",
			zap.String("payment_id", payment.ID.String()),
			zap.String("reference", reference),
			zap.Error(err))
		return
	}
	payment.AttachReceipt(reference)
}

// DeletePayment soft-deletes a ledger row and recomputes the status of the
// remaining rows of its installment group
func (s *PaymentService) DeletePayment(ctx context.Context, actor identity.Actor, schoolID, paymentID uuid.UUID) error {
	if err := identity.Authorize(actor, schoolID); err != nil {
		return err
	}
	if _, err := appidentity.RequireActiveSchool(ctx, s.schoolRepo, schoolID); err != nil {
		return err
	}
	if err := s.paymentRepo.SoftDelete(ctx, paymentID, schoolID); err != nil {
		return err
	}

	logger.L(ctx).Info("payment deleted", zap.String("payment_id", paymentID.String()))
	s.recorder.Record(ctx, actor, &schoolID, audit.ActionPaymentDeleted, "payment", &paymentID, nil)
	return nil
}

// ListPayments returns the school's non-deleted ledger rows with joined
// names, most recent first, optionally filtered by status
func (s *PaymentService) ListPayments(ctx context.Context, actor identity.Actor, schoolID uuid.UUID, status *ledger.PaymentStatus) ([]*ledger.PaymentRecord, error) {
	if err := identity.Authorize(actor, schoolID); err != nil {
		return nil, err
	}
	if status != nil && !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown payment status filter")
	}
	return s.paymentRepo.List(ctx, schoolID, status)
}

// OpenReceipt streams the stored receipt document of a payment
func (s *PaymentService) OpenReceipt(ctx context.Context, actor identity.Actor, schoolID, paymentID uuid.UUID) (io.ReadCloser, string, error) {
	if err := identity.Authorize(actor, schoolID); err != nil {
		return nil, "", err
	}
	payment, err := s.paymentRepo.FindByIDForSchool(ctx, paymentID, schoolID)
	if err != nil {
		return nil, "", err
	}
	if payment.ReceiptReference == nil || s.issuer == nil {
		return nil, "", shared.ErrNotFound
	}
	reader, contentType, err := s.issuer.Open(ctx, *payment.ReceiptReference)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, "", err
		}
		return nil, "", shared.ErrCollaborator
	}
	return reader, contentType, nil
}
