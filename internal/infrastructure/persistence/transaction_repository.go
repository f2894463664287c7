package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/erp/billing/internal/domain/ledger"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/infrastructure/persistence/models"
	"github.com/erp/billing/internal/infrastructure/persistence/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// historyClock hands out strictly increasing microsecond timestamps so that
// created_at ordering matches append order, even for entries written in the
// same instant.
type historyClock struct {
	mu   sync.Mutex
	last time.Time
}

func (c *historyClock) next(t time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t = t.UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

var stamps = &historyClock{}

// GormTransactionRepository appends and reads bank and cash history
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// AppendBank inserts bank history entries in order
func (r *GormTransactionRepository) AppendBank(ctx context.Context, txs ...*ledger.BankTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	rows := make([]*models.BankTransactionModel, 0, len(txs))
	for _, t := range txs {
		t.CreatedAt = stamps.next(t.CreatedAt)
		rows = append(rows, models.BankTransactionModelFromDomain(t))
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// AppendCash inserts cash history entries in order
func (r *GormTransactionRepository) AppendCash(ctx context.Context, txs ...*ledger.CashTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	rows := make([]*models.CashTransactionModel, 0, len(txs))
	for _, t := range txs {
		t.CreatedAt = stamps.next(t.CreatedAt)
		rows = append(rows, models.CashTransactionModelFromDomain(t))
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ListBank lists an account's history, newest first by default
func (r *GormTransactionRepository) ListBank(ctx context.Context, companyID, accountID uuid.UUID, filter shared.Filter) ([]ledger.BankTransaction, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.BankTransactionModel{}).
			Scopes(scope.Company(companyID)).
			Where("bank_account_id = ?", accountID)
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []models.BankTransactionModel
	if err := base().Scopes(scope.Paginate(filter, scope.TransactionSortFields, "created_at")).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]ledger.BankTransaction, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, total, nil
}

// ListCash lists a cash ledger's history, newest first by default
func (r *GormTransactionRepository) ListCash(ctx context.Context, companyID, ledgerID uuid.UUID, filter shared.Filter) ([]ledger.CashTransaction, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.CashTransactionModel{}).
			Scopes(scope.Company(companyID)).
			Where("cash_ledger_id = ?", ledgerID)
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []models.CashTransactionModel
	if err := base().Scopes(scope.Paginate(filter, scope.TransactionSortFields, "created_at")).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]ledger.CashTransaction, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, total, nil
}

// GormPaymentRepository stores PaymentIn and PaymentOut records
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// CreateIn inserts a received payment
func (r *GormPaymentRepository) CreateIn(ctx context.Context, p *ledger.PaymentIn) error {
	return r.db.WithContext(ctx).Create(models.PaymentInModelFromDomain(p)).Error
}

// CreateOut inserts a paid-out payment
func (r *GormPaymentRepository) CreateOut(ctx context.Context, p *ledger.PaymentOut) error {
	return r.db.WithContext(ctx).Create(models.PaymentOutModelFromDomain(p)).Error
}

// ListByInvoice returns both directions for the invoice, oldest first
func (r *GormPaymentRepository) ListByInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) ([]ledger.Payment, error) {
	var ins []models.PaymentInModel
	if err := r.db.WithContext(ctx).
		Scopes(scope.Company(companyID)).
		Where("invoice_id = ?", invoiceID).
		Find(&ins).Error; err != nil {
		return nil, err
	}
	var outs []models.PaymentOutModel
	if err := r.db.WithContext(ctx).
		Scopes(scope.Company(companyID)).
		Where("invoice_id = ?", invoiceID).
		Find(&outs).Error; err != nil {
		return nil, err
	}
	payments := make([]ledger.Payment, 0, len(ins)+len(outs))
	for i := range ins {
		payments = append(payments, ins[i].ToDomain(ledger.DirectionIn))
	}
	for i := range outs {
		payments = append(payments, outs[i].ToDomain(ledger.DirectionOut))
	}
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].CreatedAt.Before(payments[j].CreatedAt)
	})
	return payments, nil
}

var (
	_ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
	_ ledger.PaymentRepository     = (*GormPaymentRepository)(nil)
)
