package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolpay/backend/internal/domain/ledger"
)

// PaymentTypeModel is the persistence model for the PaymentType aggregate root.
type PaymentTypeModel struct {
	SchoolAggregateModel
	Name     string `gorm:"type:varchar(100);not null"`
	IsActive bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (PaymentTypeModel) TableName() string {
	return "payment_types"
}

// ToDomain converts the persistence model to a domain PaymentType entity.
func (m *PaymentTypeModel) ToDomain() *ledger.PaymentType {
	paymentType := &ledger.PaymentType{
		Name:     m.Name,
		IsActive: m.IsActive,
	}
	m.PopulateSchoolAggregateRoot(&paymentType.SchoolAggregateRoot)
	return paymentType
}

// FromDomain populates the persistence model from a domain PaymentType entity.
func (m *PaymentTypeModel) FromDomain(t *ledger.PaymentType) {
	m.FromDomainSchoolAggregateRoot(t.SchoolAggregateRoot)
	m.Name = t.Name
	m.IsActive = t.IsActive
}

// PaymentModel is the persistence model for the Payment aggregate root.
// Receipt numbers are unique per school. Deleted rows stay in the table
// with deleted_at set.
type PaymentModel struct {
	SchoolAggregateModel
	StudentID        uuid.UUID            `gorm:"type:uuid;not null;index:idx_payments_group,priority:2"`
	ClassID          uuid.UUID            `gorm:"type:uuid;not null;index:idx_payments_group,priority:3"`
	AcademicYearID   uuid.UUID            `gorm:"type:uuid;not null;index:idx_payments_group,priority:4"`
	PaymentTypeID    uuid.UUID            `gorm:"type:uuid;not null;index:idx_payments_group,priority:5"`
	AmountDue        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	AmountPaid       decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Status           ledger.PaymentStatus `gorm:"type:varchar(20);not null;index"`
	IsInstallment    bool                 `gorm:"not null;default:false"`
	ReceiptNumber    string               `gorm:"type:varchar(40);not null;uniqueIndex:idx_payments_school_receipt,priority:2"`
	ReceiptReference *string              `gorm:"type:varchar(500)"`
	Notes            string               `gorm:"type:text"`
	PaymentDate      time.Time            `gorm:"not null;index"`
	RecordedBy       uuid.UUID            `gorm:"type:uuid;not null;index"`
	DeletedAt        *time.Time           `gorm:"index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *ledger.Payment {
	payment := &ledger.Payment{
		StudentID:        m.StudentID,
		ClassID:          m.ClassID,
		AcademicYearID:   m.AcademicYearID,
		PaymentTypeID:    m.PaymentTypeID,
		AmountDue:        m.AmountDue,
		AmountPaid:       m.AmountPaid,
		Status:           m.Status,
		IsInstallment:    m.IsInstallment,
		ReceiptNumber:    m.ReceiptNumber,
		ReceiptReference: m.ReceiptReference,
		Notes:            m.Notes,
		PaymentDate:      m.PaymentDate,
		RecordedBy:       m.RecordedBy,
		DeletedAt:        m.DeletedAt,
	}
	m.PopulateSchoolAggregateRoot(&payment.SchoolAggregateRoot)
	return payment
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *ledger.Payment) {
	m.FromDomainSchoolAggregateRoot(p.SchoolAggregateRoot)
	m.StudentID = p.StudentID
	m.ClassID = p.ClassID
	m.AcademicYearID = p.AcademicYearID
	m.PaymentTypeID = p.PaymentTypeID
	m.AmountDue = p.AmountDue
	m.AmountPaid = p.AmountPaid
	m.Status = p.Status
	m.IsInstallment = p.IsInstallment
	m.ReceiptNumber = p.ReceiptNumber
	m.ReceiptReference = p.ReceiptReference
	m.Notes = p.Notes
	m.PaymentDate = p.PaymentDate
	m.RecordedBy = p.RecordedBy
	m.DeletedAt = p.DeletedAt
}
