package ledger

import (
	"fmt"
	"time"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction tells whether money came in or went out
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Payment records one settlement event. Exactly one of BankAccountID and
// CashLedgerID is set.
type Payment struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID
	Direction     Direction
	InvoiceID     *uuid.UUID
	BankAccountID *uuid.UUID
	CashLedgerID  *uuid.UUID
	Amount        decimal.Decimal
	Note          string
	PaymentDate   time.Time
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
}

// PaymentIn is money received against an invoice
type PaymentIn struct{ Payment }

// PaymentOut is money paid out, optionally against an invoice
type PaymentOut struct{ Payment }

// Settlement names the ledger a payment posts to
type Settlement struct {
	BankAccountID *uuid.UUID
	CashLedgerID  *uuid.UUID
}

// IsCash reports whether the payment goes through the cash ledger
func (s Settlement) IsCash() bool {
	return s.BankAccountID == nil && s.CashLedgerID != nil
}

func (s Settlement) validate() error {
	if (s.BankAccountID == nil) == (s.CashLedgerID == nil) {
		return shared.InvalidInput("exactly one of bank_account or cash ledger must be used")
	}
	return nil
}

func newPayment(dir Direction, companyID uuid.UUID, invoiceID *uuid.UUID, s Settlement, amount decimal.Decimal, note string, by uuid.UUID) (Payment, error) {
	if err := requirePositive(amount); err != nil {
		return Payment{}, err
	}
	if err := s.validate(); err != nil {
		return Payment{}, err
	}
	now := shared.Now()
	return Payment{
		ID:            uuid.New(),
		CompanyID:     companyID,
		Direction:     dir,
		InvoiceID:     invoiceID,
		BankAccountID: s.BankAccountID,
		CashLedgerID:  s.CashLedgerID,
		Amount:        shared.RoundMoney(amount),
		Note:          note,
		PaymentDate:   now,
		CreatedBy:     by,
		CreatedAt:     now,
	}, nil
}

// NewPaymentIn builds a PaymentIn record; invoiceID is required
func NewPaymentIn(companyID, invoiceID uuid.UUID, s Settlement, amount decimal.Decimal, note string, by uuid.UUID) (*PaymentIn, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.InvalidInput("invoice is required")
	}
	p, err := newPayment(DirectionIn, companyID, &invoiceID, s, amount, note, by)
	if err != nil {
		return nil, err
	}
	return &PaymentIn{p}, nil
}

// NewPaymentOut builds a PaymentOut record
func NewPaymentOut(companyID uuid.UUID, invoiceID *uuid.UUID, s Settlement, amount decimal.Decimal, note string, by uuid.UUID) (*PaymentOut, error) {
	p, err := newPayment(DirectionOut, companyID, invoiceID, s, amount, note, by)
	if err != nil {
		return nil, err
	}
	return &PaymentOut{p}, nil
}

// PaymentInDescription is the history text of a received payment
func PaymentInDescription(note, invoiceNumber string) string {
	return describe(note, "Payment In", invoiceNumber)
}

// PaymentOutDescription is the history text of a paid-out payment
func PaymentOutDescription(note, invoiceNumber string) string {
	return describe(note, "Payment Out", invoiceNumber)
}

func describe(note, label, invoiceNumber string) string {
	if note != "" {
		return note
	}
	if invoiceNumber != "" {
		return fmt.Sprintf("%s (Invoice #%s)", label, invoiceNumber)
	}
	return label
}
