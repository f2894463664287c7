package persistence

import (
	"context"
	"strings"

	"github.com/erp/billing/internal/domain/ledger"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/infrastructure/persistence/models"
	"github.com/erp/billing/internal/infrastructure/persistence/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBankAccountRepository implements BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByID finds a live bank account of the company
func (r *GormBankAccountRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.BankAccount, error) {
	var m models.BankAccountModel
	if err := r.db.WithContext(ctx).
		Scopes(scope.Company(companyID), scope.NotDeleted("deleted")).
		Where("id = ?", id).
		First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByIDForUpdate finds a live bank account and locks its row
func (r *GormBankAccountRepository) FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*ledger.BankAccount, error) {
	var m models.BankAccountModel
	if err := r.db.WithContext(ctx).
		Scopes(scope.Company(companyID), scope.NotDeleted("deleted"), scope.ForUpdate).
		Where("id = ?", id).
		First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists the company's live bank accounts; Search matches the bank name
func (r *GormBankAccountRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]ledger.BankAccount, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.BankAccountModel{}).
			Scopes(scope.Company(companyID), scope.NotDeleted("deleted"), scope.Search("bank_name", filter.Search))
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []models.BankAccountModel
	if err := base().Scopes(scope.Paginate(filter, scope.BankAccountSortFields, "created_at")).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]ledger.BankAccount, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, total, nil
}

// ExistsByAccountNumber checks whether another live account uses the number
func (r *GormBankAccountRepository) ExistsByAccountNumber(ctx context.Context, companyID uuid.UUID, number string, excludeID uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.BankAccountModel{}).
		Scopes(scope.Company(companyID), scope.NotDeleted("deleted")).
		Where("account_number = ?", strings.TrimSpace(number))
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new bank account
func (r *GormBankAccountRepository) Create(ctx context.Context, account *ledger.BankAccount) error {
	return r.db.WithContext(ctx).Create(models.BankAccountModelFromDomain(account)).Error
}

// Update writes the account guarded by its version
func (r *GormBankAccountRepository) Update(ctx context.Context, account *ledger.BankAccount) error {
	m := models.BankAccountModelFromDomain(account)
	m.Version = account.Version + 1
	if err := updateAll(r.db.WithContext(ctx), m, account.Version); err != nil {
		return err
	}
	account.IncrementVersion()
	return nil
}

// GormCashLedgerRepository implements CashLedgerRepository using GORM
type GormCashLedgerRepository struct {
	db *gorm.DB
}

// NewGormCashLedgerRepository creates a new GormCashLedgerRepository
func NewGormCashLedgerRepository(db *gorm.DB) *GormCashLedgerRepository {
	return &GormCashLedgerRepository{db: db}
}

// FindByID finds a live cash ledger of the company
func (r *GormCashLedgerRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.CashLedger, error) {
	var m models.CashLedgerModel
	if err := r.db.WithContext(ctx).
		Scopes(scope.Company(companyID), scope.NotDeleted("deleted")).
		Where("id = ?", id).
		First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindActiveForUpdate locks the company's active cash ledger. When more
// than one survives, the oldest wins.
func (r *GormCashLedgerRepository) FindActiveForUpdate(ctx context.Context, companyID uuid.UUID) (*ledger.CashLedger, error) {
	var m models.CashLedgerModel
	if err := r.db.WithContext(ctx).
		Scopes(scope.Company(companyID), scope.NotDeleted("deleted"), scope.ForUpdate).
		Order("created_at ASC").
		Take(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists the company's live cash ledgers
func (r *GormCashLedgerRepository) FindAll(ctx context.Context, companyID uuid.UUID) ([]ledger.CashLedger, error) {
	var ms []models.CashLedgerModel
	if err := r.db.WithContext(ctx).
		Scopes(scope.Company(companyID), scope.NotDeleted("deleted")).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.CashLedger, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// HasActive reports whether the company has a live cash ledger
func (r *GormCashLedgerRepository) HasActive(ctx context.Context, companyID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CashLedgerModel{}).
		Scopes(scope.Company(companyID), scope.NotDeleted("deleted")).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a cash ledger
func (r *GormCashLedgerRepository) Create(ctx context.Context, l *ledger.CashLedger) error {
	return r.db.WithContext(ctx).Create(models.CashLedgerModelFromDomain(l)).Error
}

// Update writes the ledger guarded by its version
func (r *GormCashLedgerRepository) Update(ctx context.Context, l *ledger.CashLedger) error {
	m := models.CashLedgerModelFromDomain(l)
	m.Version = l.Version + 1
	if err := updateAll(r.db.WithContext(ctx), m, l.Version); err != nil {
		return err
	}
	l.IncrementVersion()
	return nil
}

// GormTransferRepository implements TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByIDForUpdate finds a live transfer of the company and locks its row
func (r *GormTransferRepository) FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*ledger.BankTransfer, error) {
	var m models.BankTransferModel
	if err := r.db.WithContext(ctx).
		Scopes(scope.Company(companyID), scope.NotDeleted("deleted"), scope.ForUpdate).
		Where("id = ?", id).
		First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists the company's live transfers
func (r *GormTransferRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]ledger.BankTransfer, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.BankTransferModel{}).
			Scopes(scope.Company(companyID), scope.NotDeleted("deleted"))
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []models.BankTransferModel
	if err := base().Scopes(scope.Paginate(filter, scope.TransferSortFields, "created_at")).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]ledger.BankTransfer, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts a transfer
func (r *GormTransferRepository) Create(ctx context.Context, t *ledger.BankTransfer) error {
	return r.db.WithContext(ctx).Create(models.BankTransferModelFromDomain(t)).Error
}

// Update writes the transfer guarded by its version
func (r *GormTransferRepository) Update(ctx context.Context, t *ledger.BankTransfer) error {
	m := models.BankTransferModelFromDomain(t)
	m.Version = t.Version + 1
	if err := updateAll(r.db.WithContext(ctx), m, t.Version); err != nil {
		return err
	}
	t.IncrementVersion()
	return nil
}

var (
	_ ledger.BankAccountRepository = (*GormBankAccountRepository)(nil)
	_ ledger.CashLedgerRepository  = (*GormCashLedgerRepository)(nil)
	_ ledger.TransferRepository    = (*GormTransferRepository)(nil)
)
