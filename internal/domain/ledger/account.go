// Package ledger holds running-balance accounts (bank and cash), their
// append-only transaction history, payment records and bank transfers.
//
// Every balance change goes through Credit or Debit, which return the
// transaction record carrying the new balance, so an account never changes
// without a matching history entry.
package ledger

import (
	"strings"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccount is a company bank account with a running balance
type BankAccount struct {
	shared.CompanyAggregateRoot
	BankName       string
	AccountNumber  string
	IFSC           string
	AccountHolder  string
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	Deleted        bool
}

// NewBankAccountInput carries the editable fields of a bank account
type NewBankAccountInput struct {
	BankName       string
	AccountNumber  string
	IFSC           string
	AccountHolder  string
	OpeningBalance decimal.Decimal
}

// NewBankAccount creates an account whose current balance starts at the
// opening balance
func NewBankAccount(companyID uuid.UUID, in NewBankAccountInput) (*BankAccount, error) {
	if strings.TrimSpace(in.BankName) == "" {
		return nil, shared.InvalidInput("bank_name is required")
	}
	if strings.TrimSpace(in.AccountNumber) == "" {
		return nil, shared.InvalidInput("account_number is required")
	}
	if in.OpeningBalance.IsNegative() {
		return nil, shared.InvalidInput("opening_balance cannot be negative")
	}
	opening := shared.RoundMoney(in.OpeningBalance)
	return &BankAccount{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		BankName:             strings.TrimSpace(in.BankName),
		AccountNumber:        strings.TrimSpace(in.AccountNumber),
		IFSC:                 strings.TrimSpace(in.IFSC),
		AccountHolder:        strings.TrimSpace(in.AccountHolder),
		OpeningBalance:       opening,
		CurrentBalance:       opening,
	}, nil
}

// UpdateDetails changes the descriptive fields. Balances are not editable.
func (a *BankAccount) UpdateDetails(bankName, accountNumber, ifsc, holder string) error {
	if strings.TrimSpace(bankName) == "" {
		return shared.InvalidInput("bank_name is required")
	}
	if strings.TrimSpace(accountNumber) == "" {
		return shared.InvalidInput("account_number is required")
	}
	a.BankName = strings.TrimSpace(bankName)
	a.AccountNumber = strings.TrimSpace(accountNumber)
	a.IFSC = strings.TrimSpace(ifsc)
	a.AccountHolder = strings.TrimSpace(holder)
	a.Touch()
	return nil
}

// MarkDeleted soft-deletes the account
func (a *BankAccount) MarkDeleted() error {
	if a.Deleted {
		return shared.NotFound("Bank account not found for this company.")
	}
	a.Deleted = true
	a.Touch()
	return nil
}

// Credit adds amount and returns the history entry for it
func (a *BankAccount) Credit(amount decimal.Decimal, invoiceID *uuid.UUID, description string) (*BankTransaction, error) {
	if err := a.usable(amount); err != nil {
		return nil, err
	}
	a.CurrentBalance = shared.RoundMoney(a.CurrentBalance.Add(amount))
	a.Touch()
	return newBankTransaction(a, TransactionCredit, amount, invoiceID, description), nil
}

// Debit subtracts amount, rejecting when the balance would go negative
func (a *BankAccount) Debit(amount decimal.Decimal, invoiceID *uuid.UUID, description string) (*BankTransaction, error) {
	if err := a.usable(amount); err != nil {
		return nil, err
	}
	if a.CurrentBalance.LessThan(amount) {
		return nil, insufficient("Insufficient bank balance.", a.CurrentBalance, amount)
	}
	a.CurrentBalance = shared.RoundMoney(a.CurrentBalance.Sub(amount))
	a.Touch()
	return newBankTransaction(a, TransactionDebit, amount, invoiceID, description), nil
}

// DisplayName returns "<bank> - <account number>"
func (a *BankAccount) DisplayName() string {
	return a.BankName + " - " + a.AccountNumber
}

func (a *BankAccount) usable(amount decimal.Decimal) error {
	if a.Deleted {
		return shared.NotFound("Bank account not found for this company.")
	}
	return requirePositive(amount)
}

// CashLedger is the cash-in-hand account of a company
type CashLedger struct {
	shared.CompanyAggregateRoot
	Name           string
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	Deleted        bool
}

// DefaultCashLedgerName is used for the ledger created with a company
const DefaultCashLedgerName = "Cash in Hand"

// NewCashLedger creates a cash ledger starting at the opening balance
func NewCashLedger(companyID uuid.UUID, name string, opening decimal.Decimal) (*CashLedger, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultCashLedgerName
	}
	if opening.IsNegative() {
		return nil, shared.InvalidInput("opening_balance cannot be negative")
	}
	opening = shared.RoundMoney(opening)
	return &CashLedger{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 name,
		OpeningBalance:       opening,
		CurrentBalance:       opening,
	}, nil
}

// Rename changes the ledger name
func (l *CashLedger) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.InvalidInput("name is required")
	}
	l.Name = name
	l.Touch()
	return nil
}

// MarkDeleted soft-deletes the ledger
func (l *CashLedger) MarkDeleted() error {
	if l.Deleted {
		return shared.NotFound("Cash ledger not found for this company.")
	}
	l.Deleted = true
	l.Touch()
	return nil
}

// Credit adds amount and returns the history entry for it
func (l *CashLedger) Credit(amount decimal.Decimal, invoiceID *uuid.UUID, description string) (*CashTransaction, error) {
	if err := l.usable(amount); err != nil {
		return nil, err
	}
	l.CurrentBalance = shared.RoundMoney(l.CurrentBalance.Add(amount))
	l.Touch()
	return newCashTransaction(l, TransactionCredit, amount, invoiceID, description), nil
}

// Debit subtracts amount, rejecting when the balance would go negative
func (l *CashLedger) Debit(amount decimal.Decimal, invoiceID *uuid.UUID, description string) (*CashTransaction, error) {
	if err := l.usable(amount); err != nil {
		return nil, err
	}
	if l.CurrentBalance.LessThan(amount) {
		return nil, insufficient("Insufficient cash balance.", l.CurrentBalance, amount)
	}
	l.CurrentBalance = shared.RoundMoney(l.CurrentBalance.Sub(amount))
	l.Touch()
	return newCashTransaction(l, TransactionDebit, amount, invoiceID, description), nil
}

func (l *CashLedger) usable(amount decimal.Decimal) error {
	if l.Deleted {
		return shared.NotFound("Cash ledger not found for this company.")
	}
	return requirePositive(amount)
}

func requirePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.InvalidInput("amount must be greater than 0")
	}
	return nil
}

func insufficient(msg string, available, requested decimal.Decimal) error {
	return shared.NewDomainError(shared.CodeInsufficientBalance, msg).WithDetails(map[string]any{
		"available": available.StringFixed(shared.MoneyScale),
		"requested": requested.StringFixed(shared.MoneyScale),
	})
}
