package ledger

import (
	"context"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
)

// BankAccountRepository persists bank accounts. Update is guarded by the
// aggregate version.
type BankAccountRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*BankAccount, error)
	FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*BankAccount, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]BankAccount, int64, error)
	ExistsByAccountNumber(ctx context.Context, companyID uuid.UUID, number string, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, account *BankAccount) error
	Update(ctx context.Context, account *BankAccount) error
}

// CashLedgerRepository persists cash ledgers
type CashLedgerRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*CashLedger, error)
	// FindActiveForUpdate locks the company's single active cash ledger
	FindActiveForUpdate(ctx context.Context, companyID uuid.UUID) (*CashLedger, error)
	FindAll(ctx context.Context, companyID uuid.UUID) ([]CashLedger, error)
	HasActive(ctx context.Context, companyID uuid.UUID) (bool, error)
	Create(ctx context.Context, ledger *CashLedger) error
	Update(ctx context.Context, ledger *CashLedger) error
}

// TransactionRepository appends and reads account history
type TransactionRepository interface {
	AppendBank(ctx context.Context, txs ...*BankTransaction) error
	AppendCash(ctx context.Context, txs ...*CashTransaction) error
	ListBank(ctx context.Context, companyID, accountID uuid.UUID, filter shared.Filter) ([]BankTransaction, int64, error)
	ListCash(ctx context.Context, companyID, ledgerID uuid.UUID, filter shared.Filter) ([]CashTransaction, int64, error)
}

// PaymentRepository stores payment records
type PaymentRepository interface {
	CreateIn(ctx context.Context, p *PaymentIn) error
	CreateOut(ctx context.Context, p *PaymentOut) error
	ListByInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) ([]Payment, error)
}

// TransferRepository persists bank transfers
type TransferRepository interface {
	FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*BankTransfer, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]BankTransfer, int64, error)
	Create(ctx context.Context, t *BankTransfer) error
	Update(ctx context.Context, t *BankTransfer) error
}
