package ledger

import (
	"time"

	"github.com/erp/billing/internal/domain/billing"
	"github.com/erp/billing/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentInInput records money received against an invoice. A nil bank
// account settles through the company cash ledger.
type PaymentInInput struct {
	InvoiceID     uuid.UUID
	BankAccountID *uuid.UUID
	Amount        decimal.Decimal
	Note          string
}

// PaymentOutInput records money paid out. Either a bank account or a cash
// payment type must be given.
type PaymentOutInput struct {
	InvoiceID     *uuid.UUID
	BankAccountID *uuid.UUID
	PaymentTypeID *uuid.UUID
	Amount        decimal.Decimal
	Note          string
}

// TransferInput describes a bank-to-bank transfer
type TransferInput struct {
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	Note          string
}

// BankAccountInput carries the editable fields of a bank account
type BankAccountInput struct {
	BankName       string
	AccountNumber  string
	IFSC           string
	AccountHolder  string
	OpeningBalance decimal.Decimal
}

// CashLedgerInput carries the fields of a cash ledger
type CashLedgerInput struct {
	Name           string
	OpeningBalance decimal.Decimal
}

// PaymentResultDTO is returned by PaymentIn and PaymentOut
type PaymentResultDTO struct {
	PaymentID        uuid.UUID        `json:"payment_id"`
	InvoiceID        *uuid.UUID       `json:"invoice_id,omitempty"`
	InvoiceNumber    string           `json:"invoice_number,omitempty"`
	Amount           decimal.Decimal  `json:"amount"`
	AmountPaid       *decimal.Decimal `json:"amount_paid,omitempty"`
	RemainingBalance *decimal.Decimal `json:"remaining_balance,omitempty"`
	PaymentStatus    string           `json:"payment_status,omitempty"`
	BankAccountID    *uuid.UUID       `json:"bank_account_id,omitempty"`
	CashLedgerID     *uuid.UUID       `json:"cash_ledger_id,omitempty"`
	BalanceAfter     decimal.Decimal  `json:"balance_after_transaction"`
	Warnings         []string         `json:"warnings"`
}

// TransferDTO represents a bank transfer
type TransferDTO struct {
	ID            uuid.UUID        `json:"id"`
	CompanyID     uuid.UUID        `json:"company_id"`
	FromAccountID uuid.UUID        `json:"from_account"`
	ToAccountID   uuid.UUID        `json:"to_account"`
	Amount        decimal.Decimal  `json:"amount"`
	Note          string           `json:"note,omitempty"`
	FromBalance   *decimal.Decimal `json:"from_account_balance,omitempty"`
	ToBalance     *decimal.Decimal `json:"to_account_balance,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// BankAccountDTO represents a bank account
type BankAccountDTO struct {
	ID             uuid.UUID       `json:"id"`
	CompanyID      uuid.UUID       `json:"company_id"`
	BankName       string          `json:"bank_name"`
	AccountNumber  string          `json:"account_number"`
	IFSC           string          `json:"ifsc_code,omitempty"`
	AccountHolder  string          `json:"account_holder_name,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CashLedgerDTO represents a cash ledger
type CashLedgerDTO struct {
	ID             uuid.UUID       `json:"id"`
	CompanyID      uuid.UUID       `json:"company_id"`
	Name           string          `json:"name"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TransactionDTO is one history entry of a bank account or cash ledger
type TransactionDTO struct {
	ID                      uuid.UUID              `json:"id"`
	Type                    ledger.TransactionType `json:"transaction_type"`
	Amount                  decimal.Decimal        `json:"amount"`
	RelatedInvoiceID        *uuid.UUID             `json:"related_invoice,omitempty"`
	Description             string                 `json:"description,omitempty"`
	BalanceAfterTransaction decimal.Decimal        `json:"balance_after_transaction"`
	CreatedAt               time.Time              `json:"created_at"`
}

// TransactionPage is a page of history entries
type TransactionPage struct {
	Items    []TransactionDTO `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

func toTransferDTO(t *ledger.BankTransfer) *TransferDTO {
	return &TransferDTO{
		ID:            t.ID,
		CompanyID:     t.CompanyID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount,
		Note:          t.Note,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func toBankAccountDTO(a *ledger.BankAccount) *BankAccountDTO {
	return &BankAccountDTO{
		ID:             a.ID,
		CompanyID:      a.CompanyID,
		BankName:       a.BankName,
		AccountNumber:  a.AccountNumber,
		IFSC:           a.IFSC,
		AccountHolder:  a.AccountHolder,
		OpeningBalance: a.OpeningBalance,
		CurrentBalance: a.CurrentBalance,
		CreatedAt:      a.CreatedAt,
	}
}

func toCashLedgerDTO(l *ledger.CashLedger) *CashLedgerDTO {
	return &CashLedgerDTO{
		ID:             l.ID,
		CompanyID:      l.CompanyID,
		Name:           l.Name,
		OpeningBalance: l.OpeningBalance,
		CurrentBalance: l.CurrentBalance,
		CreatedAt:      l.CreatedAt,
	}
}

func settlementResult(inv *billing.Invoice, out billing.PaymentOutcome, r *PaymentResultDTO) {
	id := inv.ID
	paid := inv.AmountPaid
	remaining := inv.RemainingBalance
	r.InvoiceID = &id
	r.InvoiceNumber = inv.InvoiceNumber
	r.AmountPaid = &paid
	r.RemainingBalance = &remaining
	r.PaymentStatus = out.Status.Label()
	if w := out.Warning(); w != "" {
		r.Warnings = append(r.Warnings, w)
	}
}
