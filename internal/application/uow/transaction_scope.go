// Package uow defines the unit of work every mutating billing operation
// runs in.
package uow

import (
	"context"

	"github.com/erp/billing/internal/domain/billing"
	"github.com/erp/billing/internal/domain/catalog"
	"github.com/erp/billing/internal/domain/identity"
	"github.com/erp/billing/internal/domain/ledger"
	"github.com/erp/billing/internal/domain/tenant"
)

// TransactionScope runs a function inside one database transaction.
// If the function returns an error, every write made through the given
// repositories is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to all repositories bound to the current
// transaction. Row locks taken through them are held until commit.
type Repositories interface {
	CompanyRepo() tenant.CompanyRepository
	StaffRepo() tenant.StaffRepository
	RoleRepo() identity.RoleRepository
	PermissionRepo() identity.PermissionRepository
	ModuleRepo() identity.ModuleRepository
	ItemRepo() catalog.ItemRepository
	PartyRepo() catalog.PartyRepository
	InvoiceRepo() billing.InvoiceRepository
	ReferenceRepo() billing.ReferenceRepository
	BankAccountRepo() ledger.BankAccountRepository
	CashLedgerRepo() ledger.CashLedgerRepository
	TransactionRepo() ledger.TransactionRepository
	PaymentRepo() ledger.PaymentRepository
	TransferRepo() ledger.TransferRepository
}

// RepositorySet is a plain Repositories implementation
type RepositorySet struct {
	Companies    tenant.CompanyRepository
	Staff        tenant.StaffRepository
	Roles        identity.RoleRepository
	Permissions  identity.PermissionRepository
	Modules      identity.ModuleRepository
	Items        catalog.ItemRepository
	Parties      catalog.PartyRepository
	Invoices     billing.InvoiceRepository
	References   billing.ReferenceRepository
	BankAccounts ledger.BankAccountRepository
	CashLedgers  ledger.CashLedgerRepository
	Transactions ledger.TransactionRepository
	Payments     ledger.PaymentRepository
	Transfers    ledger.TransferRepository
}

func (s *RepositorySet) CompanyRepo() tenant.CompanyRepository { return s.Companies }
func (s *RepositorySet) StaffRepo() tenant.StaffRepository { return s.Staff }
func (s *RepositorySet) RoleRepo() identity.RoleRepository { return s.Roles }
func (s *RepositorySet) PermissionRepo() identity.PermissionRepository { return s.Permissions }
func (s *RepositorySet) ModuleRepo() identity.ModuleRepository { return s.Modules }
func (s *RepositorySet) ItemRepo() catalog.ItemRepository { return s.Items }
func (s *RepositorySet) PartyRepo() catalog.PartyRepository { return s.Parties }
func (s *RepositorySet) InvoiceRepo() billing.InvoiceRepository { return s.Invoices }
func (s *RepositorySet) ReferenceRepo() billing.ReferenceRepository { return s.References }
func (s *RepositorySet) BankAccountRepo() ledger.BankAccountRepository { return s.BankAccounts }
func (s *RepositorySet) CashLedgerRepo() ledger.CashLedgerRepository { return s.CashLedgers }
func (s *RepositorySet) TransactionRepo() ledger.TransactionRepository { return s.Transactions }
func (s *RepositorySet) PaymentRepo() ledger.PaymentRepository { return s.Payments }
func (s *RepositorySet) TransferRepo() ledger.TransferRepository { return s.Transfers }

// NoOpTransactionScope runs the function against fixed repositories without
// a transaction. Used by tests that mock repositories.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute calls fn with the fixed repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.repos)
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ Repositories = (*RepositorySet)(nil)
