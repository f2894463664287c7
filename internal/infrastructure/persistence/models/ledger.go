package models

import (
	"time"

	"github.com/erp/billing/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccountModel is the persistence model for bank accounts
type BankAccountModel struct {
	CompanyAggregateModel
	BankName       string          `gorm:"type:varchar(200);not null"`
	AccountNumber  string          `gorm:"type:varchar(50);not null;index"`
	IFSC           string          `gorm:"column:ifsc;type:varchar(20)"`
	AccountHolder  string          `gorm:"type:varchar(200)"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Deleted        bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the model to the domain BankAccount
func (m *BankAccountModel) ToDomain() *ledger.BankAccount {
	return &ledger.BankAccount{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		BankName:             m.BankName,
		AccountNumber:        m.AccountNumber,
		IFSC:                 m.IFSC,
		AccountHolder:        m.AccountHolder,
		OpeningBalance:       m.OpeningBalance,
		CurrentBalance:       m.CurrentBalance,
		Deleted:              m.Deleted,
	}
}

// FromDomain populates the model from the domain BankAccount
func (m *BankAccountModel) FromDomain(a *ledger.BankAccount) {
	m.FromDomainCompanyAggregateRoot(a.CompanyAggregateRoot)
	m.BankName = a.BankName
	m.AccountNumber = a.AccountNumber
	m.IFSC = a.IFSC
	m.AccountHolder = a.AccountHolder
	m.OpeningBalance = a.OpeningBalance
	m.CurrentBalance = a.CurrentBalance
	m.Deleted = a.Deleted
}

// BankAccountModelFromDomain creates a model from the domain entity
func BankAccountModelFromDomain(a *ledger.BankAccount) *BankAccountModel {
	m := &BankAccountModel{}
	m.FromDomain(a)
	return m
}

// CashLedgerModel is the persistence model for cash ledgers
type CashLedgerModel struct {
	CompanyAggregateModel
	Name           string          `gorm:"type:varchar(100);not null"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Deleted        bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (CashLedgerModel) TableName() string {
	return "cash_ledgers"
}

// ToDomain converts the model to the domain CashLedger
func (m *CashLedgerModel) ToDomain() *ledger.CashLedger {
	return &ledger.CashLedger{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		Name:                 m.Name,
		OpeningBalance:       m.OpeningBalance,
		CurrentBalance:       m.CurrentBalance,
		Deleted:              m.Deleted,
	}
}

// FromDomain populates the model from the domain CashLedger
func (m *CashLedgerModel) FromDomain(l *ledger.CashLedger) {
	m.FromDomainCompanyAggregateRoot(l.CompanyAggregateRoot)
	m.Name = l.Name
	m.OpeningBalance = l.OpeningBalance
	m.CurrentBalance = l.CurrentBalance
	m.Deleted = l.Deleted
}

// CashLedgerModelFromDomain creates a model from the domain entity
func CashLedgerModelFromDomain(l *ledger.CashLedger) *CashLedgerModel {
	m := &CashLedgerModel{}
	m.FromDomain(l)
	return m
}

// BankTransactionModel is an append-only bank history row
type BankTransactionModel struct {
	ID                      uuid.UUID       `gorm:"type:uuid;primary_key"`
	CompanyID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	BankAccountID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type                    string          `gorm:"type:varchar(10);not null"`
	Amount                  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RelatedInvoiceID        *uuid.UUID      `gorm:"type:uuid;index"`
	Description             string          `gorm:"type:text"`
	BalanceAfterTransaction decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt               time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (BankTransactionModel) TableName() string {
	return "bank_transactions"
}

// ToDomain converts the row to the domain BankTransaction
func (m *BankTransactionModel) ToDomain() ledger.BankTransaction {
	return ledger.BankTransaction{
		ID:                      m.ID,
		CompanyID:               m.CompanyID,
		BankAccountID:           m.BankAccountID,
		Type:                    ledger.TransactionType(m.Type),
		Amount:                  m.Amount,
		RelatedInvoiceID:        m.RelatedInvoiceID,
		Description:             m.Description,
		BalanceAfterTransaction: m.BalanceAfterTransaction,
		CreatedAt:               m.CreatedAt,
	}
}

// BankTransactionModelFromDomain creates a row from the domain entry
func BankTransactionModelFromDomain(t *ledger.BankTransaction) *BankTransactionModel {
	return &BankTransactionModel{
		ID:                      t.ID,
		CompanyID:               t.CompanyID,
		BankAccountID:           t.BankAccountID,
		Type:                    string(t.Type),
		Amount:                  t.Amount,
		RelatedInvoiceID:        t.RelatedInvoiceID,
		Description:             t.Description,
		BalanceAfterTransaction: t.BalanceAfterTransaction,
		CreatedAt:               t.CreatedAt,
	}
}

// CashTransactionModel is an append-only cash history row
type CashTransactionModel struct {
	ID                      uuid.UUID       `gorm:"type:uuid;primary_key"`
	CompanyID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	CashLedgerID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type                    string          `gorm:"type:varchar(10);not null"`
	Amount                  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RelatedInvoiceID        *uuid.UUID      `gorm:"type:uuid;index"`
	Description             string          `gorm:"type:text"`
	BalanceAfterTransaction decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt               time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CashTransactionModel) TableName() string {
	return "cash_transactions"
}

// ToDomain converts the row to the domain CashTransaction
func (m *CashTransactionModel) ToDomain() ledger.CashTransaction {
	return ledger.CashTransaction{
		ID:                      m.ID,
		CompanyID:               m.CompanyID,
		CashLedgerID:            m.CashLedgerID,
		Type:                    ledger.TransactionType(m.Type),
		Amount:                  m.Amount,
		RelatedInvoiceID:        m.RelatedInvoiceID,
		Description:             m.Description,
		BalanceAfterTransaction: m.BalanceAfterTransaction,
		CreatedAt:               m.CreatedAt,
	}
}

// CashTransactionModelFromDomain creates a row from the domain entry
func CashTransactionModelFromDomain(t *ledger.CashTransaction) *CashTransactionModel {
	return &CashTransactionModel{
		ID:                      t.ID,
		CompanyID:               t.CompanyID,
		CashLedgerID:            t.CashLedgerID,
		Type:                    string(t.Type),
		Amount:                  t.Amount,
		RelatedInvoiceID:        t.RelatedInvoiceID,
		Description:             t.Description,
		BalanceAfterTransaction: t.BalanceAfterTransaction,
		CreatedAt:               t.CreatedAt,
	}
}

// PaymentModel holds the shared payment columns
type PaymentModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	CompanyID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID     *uuid.UUID      `gorm:"type:uuid;index"`
	BankAccountID *uuid.UUID      `gorm:"type:uuid"`
	CashLedgerID  *uuid.UUID      `gorm:"type:uuid"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Note          string          `gorm:"type:text"`
	PaymentDate   time.Time       `gorm:"not null"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt     time.Time       `gorm:"not null"`
}

func (m *PaymentModel) fromDomain(p ledger.Payment) {
	m.ID = p.ID
	m.CompanyID = p.CompanyID
	m.InvoiceID = p.InvoiceID
	m.BankAccountID = p.BankAccountID
	m.CashLedgerID = p.CashLedgerID
	m.Amount = p.Amount
	m.Note = p.Note
	m.PaymentDate = p.PaymentDate
	m.CreatedBy = p.CreatedBy
	m.CreatedAt = p.CreatedAt
}

// ToDomain converts the row to a domain Payment with the given direction
func (m *PaymentModel) ToDomain(dir ledger.Direction) ledger.Payment {
	return ledger.Payment{
		ID:            m.ID,
		CompanyID:     m.CompanyID,
		Direction:     dir,
		InvoiceID:     m.InvoiceID,
		BankAccountID: m.BankAccountID,
		CashLedgerID:  m.CashLedgerID,
		Amount:        m.Amount,
		Note:          m.Note,
		PaymentDate:   m.PaymentDate,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// PaymentInModel is a received payment
type PaymentInModel struct {
	PaymentModel
}

// TableName returns the table name for GORM
func (PaymentInModel) TableName() string {
	return "payment_ins"
}

// PaymentInModelFromDomain creates a row from the domain PaymentIn
func PaymentInModelFromDomain(p *ledger.PaymentIn) *PaymentInModel {
	m := &PaymentInModel{}
	m.fromDomain(p.Payment)
	return m
}

// PaymentOutModel is a paid-out payment
type PaymentOutModel struct {
	PaymentModel
}

// TableName returns the table name for GORM
func (PaymentOutModel) TableName() string {
	return "payment_outs"
}

// PaymentOutModelFromDomain creates a row from the domain PaymentOut
func PaymentOutModelFromDomain(p *ledger.PaymentOut) *PaymentOutModel {
	m := &PaymentOutModel{}
	m.fromDomain(p.Payment)
	return m
}

// BankTransferModel is the persistence model for bank transfers
type BankTransferModel struct {
	CompanyAggregateModel
	FromAccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ToAccountID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Note          string          `gorm:"type:text"`
	Deleted       bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (BankTransferModel) TableName() string {
	return "bank_transfers"
}

// ToDomain converts the model to the domain BankTransfer
func (m *BankTransferModel) ToDomain() *ledger.BankTransfer {
	return &ledger.BankTransfer{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		FromAccountID:        m.FromAccountID,
		ToAccountID:          m.ToAccountID,
		Amount:               m.Amount,
		Note:                 m.Note,
		Deleted:              m.Deleted,
	}
}

// FromDomain populates the model from the domain BankTransfer
func (m *BankTransferModel) FromDomain(t *ledger.BankTransfer) {
	m.FromDomainCompanyAggregateRoot(t.CompanyAggregateRoot)
	m.FromAccountID = t.FromAccountID
	m.ToAccountID = t.ToAccountID
	m.Amount = t.Amount
	m.Note = t.Note
	m.Deleted = t.Deleted
}

// BankTransferModelFromDomain creates a model from the domain entity
func BankTransferModelFromDomain(t *ledger.BankTransfer) *BankTransferModel {
	m := &BankTransferModel{}
	m.FromDomain(t)
	return m
}
