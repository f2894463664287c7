package billing

import (
	"fmt"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the settlement state of an invoice
type PaymentStatus int

const (
	PaymentStatusUnpaid        PaymentStatus = 1
	PaymentStatusPartiallyPaid PaymentStatus = 2
	PaymentStatusPaid          PaymentStatus = 3
)

// Label returns the display label
func (s PaymentStatus) Label() string {
	switch s {
	case PaymentStatusUnpaid:
		return "Unpaid"
	case PaymentStatusPartiallyPaid:
		return "Partially Paid"
	case PaymentStatusPaid:
		return "Paid"
	}
	return "Unpaid"
}

// IsValid checks if the status is one of the seeded values
func (s PaymentStatus) IsValid() bool {
	return s >= PaymentStatusUnpaid && s <= PaymentStatusPaid
}

// AllPaymentStatuses returns the seeded statuses
func AllPaymentStatuses() []PaymentStatus {
	return []PaymentStatus{PaymentStatusUnpaid, PaymentStatusPartiallyPaid, PaymentStatusPaid}
}

// PaymentOutcome is the derived settlement state for (total, amount_paid)
type PaymentOutcome struct {
	Status         PaymentStatus
	OverpaidAmount decimal.Decimal
}

// Overpaid reports whether more than the total was paid
func (o PaymentOutcome) Overpaid() bool {
	return o.OverpaidAmount.IsPositive()
}

// Warning returns the overpaid warning text, or "" when not overpaid
func (o PaymentOutcome) Warning() string {
	if !o.Overpaid() {
		return ""
	}
	return fmt.Sprintf("This invoice has been overpaid by %s. Please review or issue a refund.", shared.FormatRupees(o.OverpaidAmount))
}

// DerivePaymentStatus maps (total, amount_paid) to a status. Overpayment is
// reported, never capped.
func DerivePaymentStatus(total, amountPaid decimal.Decimal) PaymentOutcome {
	out := PaymentOutcome{OverpaidAmount: decimal.Zero}
	switch {
	case !amountPaid.IsPositive():
		out.Status = PaymentStatusUnpaid
	case amountPaid.LessThan(total):
		out.Status = PaymentStatusPartiallyPaid
	default:
		out.Status = PaymentStatusPaid
	}
	if over := shared.RoundMoney(amountPaid.Sub(total)); over.IsPositive() {
		out.OverpaidAmount = over
	}
	return out
}

// RemainingBalance returns max(total - amount_paid, 0)
func RemainingBalance(total, amountPaid decimal.Decimal) decimal.Decimal {
	r := total.Sub(amountPaid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}
