package persistence

import (
	"context"

	"github.com/erp/billing/internal/application/uow"
	"github.com/erp/billing/internal/domain/billing"
	"github.com/erp/billing/internal/domain/catalog"
	"github.com/erp/billing/internal/domain/identity"
	"github.com/erp/billing/internal/domain/ledger"
	"github.com/erp/billing/internal/domain/tenant"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// If the function returns an error, the transaction is rolled back.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside one database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos uow.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// gormRepositories binds every repository to one *gorm.DB, either the pool
// or an open transaction
type gormRepositories struct {
	db *gorm.DB
}

// NewRepositories returns repositories bound to db
func NewRepositories(db *gorm.DB) uow.Repositories {
	return &gormRepositories{db: db}
}

func (r *gormRepositories) CompanyRepo() tenant.CompanyRepository {
	return NewGormCompanyRepository(r.db)
}

func (r *gormRepositories) StaffRepo() tenant.StaffRepository {
	return NewGormStaffRepository(r.db)
}

func (r *gormRepositories) RoleRepo() identity.RoleRepository {
	return NewGormRoleRepository(r.db)
}

func (r *gormRepositories) PermissionRepo() identity.PermissionRepository {
	return NewGormPermissionRepository(r.db)
}

func (r *gormRepositories) ModuleRepo() identity.ModuleRepository {
	return NewGormModuleRepository(r.db)
}

func (r *gormRepositories) ItemRepo() catalog.ItemRepository {
	return NewGormItemRepository(r.db)
}

func (r *gormRepositories) PartyRepo() catalog.PartyRepository {
	return NewGormPartyRepository(r.db)
}

func (r *gormRepositories) InvoiceRepo() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.db)
}

func (r *gormRepositories) ReferenceRepo() billing.ReferenceRepository {
	return NewGormReferenceRepository(r.db)
}

func (r *gormRepositories) BankAccountRepo() ledger.BankAccountRepository {
	return NewGormBankAccountRepository(r.db)
}

func (r *gormRepositories) CashLedgerRepo() ledger.CashLedgerRepository {
	return NewGormCashLedgerRepository(r.db)
}

func (r *gormRepositories) TransactionRepo() ledger.TransactionRepository {
	return NewGormTransactionRepository(r.db)
}

func (r *gormRepositories) PaymentRepo() ledger.PaymentRepository {
	return NewGormPaymentRepository(r.db)
}

func (r *gormRepositories) TransferRepo() ledger.TransferRepository {
	return NewGormTransferRepository(r.db)
}

var (
	_ uow.TransactionScope = (*GormTransactionScope)(nil)
	_ uow.Repositories     = (*gormRepositories)(nil)
)
