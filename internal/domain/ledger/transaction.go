package ledger

import (
	"time"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a balance change
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// IsValid reports whether the type is credit or debit
func (t TransactionType) IsValid() bool {
	return t == TransactionCredit || t == TransactionDebit
}

// BankTransaction is an immutable bank history entry. BalanceAfterTransaction
// is the account balance right after this entry was applied.
type BankTransaction struct {
	ID                      uuid.UUID
	CompanyID               uuid.UUID
	BankAccountID           uuid.UUID
	Type                    TransactionType
	Amount                  decimal.Decimal
	RelatedInvoiceID        *uuid.UUID
	Description             string
	BalanceAfterTransaction decimal.Decimal
	CreatedAt               time.Time
}

func newBankTransaction(a *BankAccount, typ TransactionType, amount decimal.Decimal, invoiceID *uuid.UUID, description string) *BankTransaction {
	return &BankTransaction{
		ID:                      uuid.New(),
		CompanyID:               a.CompanyID,
		BankAccountID:           a.ID,
		Type:                    typ,
		Amount:                  amount,
		RelatedInvoiceID:        invoiceID,
		Description:             description,
		BalanceAfterTransaction: a.CurrentBalance,
		CreatedAt:               shared.Now(),
	}
}

// CashTransaction is an immutable cash ledger history entry
type CashTransaction struct {
	ID                      uuid.UUID
	CompanyID               uuid.UUID
	CashLedgerID            uuid.UUID
	Type                    TransactionType
	Amount                  decimal.Decimal
	RelatedInvoiceID        *uuid.UUID
	Description             string
	BalanceAfterTransaction decimal.Decimal
	CreatedAt               time.Time
}

func newCashTransaction(l *CashLedger, typ TransactionType, amount decimal.Decimal, invoiceID *uuid.UUID, description string) *CashTransaction {
	return &CashTransaction{
		ID:                      uuid.New(),
		CompanyID:               l.CompanyID,
		CashLedgerID:            l.ID,
		Type:                    typ,
		Amount:                  amount,
		RelatedInvoiceID:        invoiceID,
		Description:             description,
		BalanceAfterTransaction: l.CurrentBalance,
		CreatedAt:               shared.Now(),
	}
}
