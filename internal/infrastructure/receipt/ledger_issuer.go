package receipt

import (
	"context"
	"io"

	appledger "github.com/schoolpay/backend/internal/application/ledger"
	"github.com/schoolpay/backend/internal/domain/ledger"
)

// LedgerIssuer adapts the receipt pipeline to the ledger's collaborator
// contract: it maps a joined payment record to a receipt document.
type LedgerIssuer struct {
	issuer *Issuer
}

// NewLedgerIssuer creates a new LedgerIssuer
func NewLedgerIssuer(issuer *Issuer) *LedgerIssuer {
	return &LedgerIssuer{issuer: issuer}
}

// Issue renders and archives the receipt for a committed payment
func (l *LedgerIssuer) Issue(ctx context.Context, record *ledger.PaymentRecord, schoolName string) (string, error) {
	payment := record.Payment
	doc := &Document{
		ReceiptNumber: payment.ReceiptNumber,
		SchoolName:    schoolName,
		StudentName:   record.StudentName,
		StudentID:     record.StudentExternal,
		ClassName:     record.ClassName,
		YearLabel:     record.YearLabel,
		PaymentType:   record.PaymentTypeName,
		AmountDue:     payment.AmountDue.StringFixed(2),
		AmountPaid:    payment.AmountPaid.StringFixed(2),
		Status:        string(payment.Status),
		IsInstallment: payment.IsInstallment,
		Notes:         payment.Notes,
		PaymentDate:   payment.PaymentDate,
		RecordedBy:    record.RecordedByUserID.String(),
	}
	return l.issuer.Issue(ctx, payment.SchoolID, doc)
}

// Open streams a previously issued receipt
func (l *LedgerIssuer) Open(ctx context.Context, reference string) (io.ReadCloser, string, error) {
	return l.issuer.Open(ctx, reference)
}

// Ensure LedgerIssuer implements the ledger's collaborator contract
var _ appledger.ReceiptIssuer = (*LedgerIssuer)(nil)
