package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolpay/backend/internal/domain/shared"
)

// GroupKey identifies an installment group: the set of payment rows that
// together settle one fee
type GroupKey struct {
	SchoolID       uuid.UUID
	StudentID      uuid.UUID
	ClassID        uuid.UUID
	AcademicYearID uuid.UUID
	PaymentTypeID  uuid.UUID
}

// Payment is one ledger row. Installment rows share a GroupKey and always
// carry the group-wide derived status.
type Payment struct {
	shared.SchoolAggregateRoot
	StudentID        uuid.UUID
	ClassID          uuid.UUID
	AcademicYearID   uuid.UUID
	PaymentTypeID    uuid.UUID
	AmountDue        decimal.Decimal
	AmountPaid       decimal.Decimal
	Status           PaymentStatus
	IsInstallment    bool
	ReceiptNumber    string
	ReceiptReference *string
	Notes            string
	PaymentDate      time.Time
	RecordedBy       uuid.UUID
	DeletedAt        *time.Time
}

// NewPayment creates a ledger row. The status passed in must come from
// StatusFor; single-mode callers derive it from this row's own amounts,
// installment-mode callers from the group's cumulative amounts.
func NewPayment(key GroupKey, amountDue, amountPaid decimal.Decimal, status PaymentStatus, isInstallment bool, notes string, recordedBy uuid.UUID) (*Payment, error) {
	if key.StudentID == uuid.Nil || key.ClassID == uuid.Nil || key.AcademicYearID == uuid.Nil || key.PaymentTypeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Student, class, academic year and payment type are required")
	}
	if amountDue.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Amount due must be positive")
	}
	if amountPaid.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Amount paid cannot be negative")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid payment status")
	}
	return &Payment{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(key.SchoolID),
		StudentID:           key.StudentID,
		ClassID:             key.ClassID,
		AcademicYearID:      key.AcademicYearID,
		PaymentTypeID:       key.PaymentTypeID,
		AmountDue:           amountDue,
		AmountPaid:          amountPaid,
		Status:              status,
		IsInstallment:       isInstallment,
		Notes:               notes,
		PaymentDate:         time.Now(),
		RecordedBy:          recordedBy,
	}, nil
}

// Key returns the installment group key of this row
func (p *Payment) Key() GroupKey {
	return GroupKey{
		SchoolID:       p.SchoolID,
		StudentID:      p.StudentID,
		ClassID:        p.ClassID,
		AcademicYearID: p.AcademicYearID,
		PaymentTypeID:  p.PaymentTypeID,
	}
}

// IsDeleted reports whether the row has been soft-deleted
func (p *Payment) IsDeleted() bool {
	return p.DeletedAt != nil
}

// SoftDelete marks the row deleted, keeping it for audit and receipt history
func (p *Payment) SoftDelete() error {
	if p.IsDeleted() {
		return shared.ErrNotFound
	}
	now := time.Now()
	p.DeletedAt = &now
	p.IncrementVersion()
	return nil
}

// AttachReceipt persists the document reference returned by the receipt
// issuer
func (p *Payment) AttachReceipt(reference string) {
	p.ReceiptReference = &reference
}

// ResolveInstallment computes the authoritative amounts for a new
// installment row given the prior non-deleted rows of its group. The first
// row's due amount is the total owed for the fee; later callers may not
// change it. The returned status is group-wide: it reflects the cumulative
// paid amount including the new payment.
func ResolveInstallment(prior []*Payment, requestedDue, amountPaid decimal.Decimal) (due decimal.Decimal, status PaymentStatus) {
	due = requestedDue
	cumulative := amountPaid
	for _, row := range prior {
		cumulative = cumulative.Add(row.AmountPaid)
	}
	if len(prior) > 0 {
		due = prior[0].AmountDue
	}
	return due, StatusFor(due, cumulative)
}

// GroupStatus recomputes the group-wide status over the given non-deleted
// rows, used when a row is removed from the group
func GroupStatus(rows []*Payment) PaymentStatus {
	if len(rows) == 0 {
		return StatusPending
	}
	cumulative := decimal.Zero
	for _, row := range rows {
		cumulative = cumulative.Add(row.AmountPaid)
	}
	return StatusFor(rows[0].AmountDue, cumulative)
}
