package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PaymentRecord is the listing read model: one ledger row joined with the
// names a receipt or ledger view needs
type PaymentRecord struct {
	Payment          *Payment
	StudentName      string
	StudentExternal  string
	ClassName        string
	YearLabel        string
	PaymentTypeName  string
	RecordedByUserID uuid.UUID
}

// PaymentRepository persists ledger rows. Installment writes are
// transactional units: the group is locked, the row inserted and every
// sibling updated to the group status before commit.
type PaymentRepository interface {
	// Create inserts a single-mode row
	Create(ctx context.Context, payment *Payment) error
	// CreateInstallment locks the payment's installment group, reuses the
	// group's authoritative due amount, derives the group-wide status and
	// propagates it to every sibling row, all in one transaction. The
	// payment's AmountDue and Status are updated in place.
	CreateInstallment(ctx context.Context, payment *Payment) error
	// SoftDelete marks the row deleted and recomputes the status of the
	// remaining rows of its installment group in the same transaction
	SoftDelete(ctx context.Context, id, schoolID uuid.UUID) error
	FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*Payment, error)
	// FindRecordByID returns one non-deleted row with its joined names
	FindRecordByID(ctx context.Context, id, schoolID uuid.UUID) (*PaymentRecord, error)
	// List returns non-deleted rows with joined names, ordered by payment
	// date descending, optionally filtered by status
	List(ctx context.Context, schoolID uuid.UUID, status *PaymentStatus) ([]*PaymentRecord, error)
	// AttachReceiptReference stores the issued document reference on an
	// already committed row
	AttachReceiptReference(ctx context.Context, id uuid.UUID, reference string) error
	// NextReceiptNumber allocates a receipt number unique within the
	// school and day, with a monotonic suffix
	NextReceiptNumber(ctx context.Context, schoolID uuid.UUID, schoolCode int, date time.Time) (string, error)
}

// PaymentTypeRepository persists fee categories
type PaymentTypeRepository interface {
	Save(ctx context.Context, paymentType *PaymentType) error
	Update(ctx context.Context, paymentType *PaymentType) error
	FindByIDForSchool(ctx context.Context, id, schoolID uuid.UUID) (*PaymentType, error)
	FindAllBySchool(ctx context.Context, schoolID uuid.UUID) ([]*PaymentType, error)
}
