package ledger

import "github.com/shopspring/decimal"

// PaymentStatus is the derived settlement state of a fee
type PaymentStatus string

const (
	StatusPending PaymentStatus = "PENDING"
	StatusPartial PaymentStatus = "PARTIAL"
	StatusPaid    PaymentStatus = "PAID"
)

// IsValid checks if the status is a known value
func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusPaid:
		return true
	}
	return false
}

// StatusFor derives the settlement status from amounts. This is the single
// source of truth for status; it is never computed anywhere else.
//
//	paid <= 0          -> PENDING
//	0 < paid < due     -> PARTIAL
//	paid >= due        -> PAID
func StatusFor(due, paid decimal.Decimal) PaymentStatus {
	if paid.LessThanOrEqual(decimal.Zero) {
		return StatusPending
	}
	if paid.LessThan(due) {
		return StatusPartial
	}
	return StatusPaid
}
