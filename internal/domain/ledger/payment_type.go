package ledger

import (
	"strings"

	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/shared"
)

// PaymentType is a named fee category of a school (tuition, canteen, ...)
type PaymentType struct {
	shared.SchoolAggregateRoot
	Name     string
	IsActive bool
}

// NewPaymentType creates a fee category
func NewPaymentType(schoolID uuid.UUID, name string) (*PaymentType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment type name is required")
	}
	return &PaymentType{
		SchoolAggregateRoot: shared.NewSchoolAggregateRoot(schoolID),
		Name:                name,
		IsActive:            true,
	}, nil
}

// SetActive toggles the soft-activation flag
func (p *PaymentType) SetActive(active bool) {
	if p.IsActive != active {
		p.IsActive = active
		p.IncrementVersion()
	}
}
