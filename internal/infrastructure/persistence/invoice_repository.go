package persistence

import (
	"context"
	"strconv"
	"strings"

	"github.com/erp/billing/internal/domain/billing"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/infrastructure/persistence/models"
	"github.com/erp/billing/internal/infrastructure/persistence/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID loads any non-deleted invoice with its lines
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var m models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(scope.NotDeleted("is_deleted")).
		Where("id = ?", id).
		First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return r.withLines(ctx, &m)
}

// FindByIDForUpdate loads the company's invoice under a row lock
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*billing.Invoice, error) {
	var m models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(scope.Company(companyID), scope.NotDeleted("is_deleted"), scope.ForUpdate).
		Where("id = ?", id).
		First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return r.withLines(ctx, &m)
}

func (r *GormInvoiceRepository) withLines(ctx context.Context, m *models.InvoiceModel) (*billing.Invoice, error) {
	var lines []models.InvoiceLineModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", m.ID).
		Order("position ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return m.ToDomain(lines), nil
}

// FindAll lists invoice headers of the company without lines; Search
// matches the invoice number
func (r *GormInvoiceRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]billing.Invoice, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
			Scopes(scope.Company(companyID), scope.NotDeleted("is_deleted"), scope.Search("invoice_number", filter.Search))
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []models.InvoiceModel
	if err := base().Scopes(scope.Paginate(filter, scope.InvoiceSortFields, "created_at")).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]billing.Invoice, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain(nil)
	}
	return out, total, nil
}

// LastNumberWithPrefix returns the number with the highest numeric suffix
// after prefix. Deleted invoices count so numbers are never reused. The
// suffix is compared as an integer so 1000 follows 999 and a padded manual
// number such as 0005 ranks as 5.
func (r *GormInvoiceRepository) LastNumberWithPrefix(ctx context.Context, companyID uuid.UUID, prefix string) (string, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Scopes(scope.Company(companyID)).
		Where("invoice_number LIKE ?", prefix+"%").
		Pluck("invoice_number", &numbers).Error; err != nil {
		return "", err
	}
	last, best := "", -1
	for _, n := range numbers {
		seq, err := strconv.Atoi(strings.TrimPrefix(n, prefix))
		if err != nil || seq < 0 {
			continue
		}
		if seq > best {
			last, best = n, seq
		}
	}
	return last, nil
}

// ExistsByNumber checks whether another invoice of the company uses number
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, companyID uuid.UUID, number string, excludeID uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Scopes(scope.Company(companyID)).
		Where("invoice_number = ?", strings.TrimSpace(number))
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the header and its lines
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *billing.Invoice) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(models.InvoiceModelFromDomain(inv)).Error; err != nil {
		return err
	}
	return r.insertLines(db, inv)
}

// Update writes the header guarded by version and replaces all lines
func (r *GormInvoiceRepository) Update(ctx context.Context, inv *billing.Invoice) error {
	db := r.db.WithContext(ctx)
	m := models.InvoiceModelFromDomain(inv)
	m.Version = inv.Version + 1
	if err := updateAll(db, m, inv.Version); err != nil {
		return err
	}
	inv.IncrementVersion()
	if err := db.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceLineModel{}).Error; err != nil {
		return err
	}
	return r.insertLines(db, inv)
}

func (r *GormInvoiceRepository) insertLines(db *gorm.DB, inv *billing.Invoice) error {
	lines := models.InvoiceLineModels(inv)
	if len(lines) == 0 {
		return nil
	}
	return db.Create(&lines).Error
}

// UpdateSettlement writes only the payment fields guarded by version
func (r *GormInvoiceRepository) UpdateSettlement(ctx context.Context, inv *billing.Invoice) error {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version).
		Updates(map[string]interface{}{
			"amount_paid":       inv.AmountPaid,
			"remaining_balance": inv.RemainingBalance,
			"overpaid_amount":   inv.OverpaidAmount,
			"payment_status_id": int(inv.PaymentStatus),
			"version":           inv.Version + 1,
			"updated_at":        inv.UpdatedAt,
		})
	if err := versionGuard(result); err != nil {
		return err
	}
	inv.IncrementVersion()
	return nil
}

// SoftDelete flags the invoice deleted guarded by version
func (r *GormInvoiceRepository) SoftDelete(ctx context.Context, inv *billing.Invoice) error {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"version":    inv.Version + 1,
			"updated_at": inv.UpdatedAt,
		})
	if err := versionGuard(result); err != nil {
		return err
	}
	inv.IncrementVersion()
	return nil
}

// GormReferenceRepository reads the seeded enumerations
type GormReferenceRepository struct {
	db *gorm.DB
}

// NewGormReferenceRepository creates a new GormReferenceRepository
func NewGormReferenceRepository(db *gorm.DB) *GormReferenceRepository {
	return &GormReferenceRepository{db: db}
}

// FindInvoiceType finds an invoice type by ID
func (r *GormReferenceRepository) FindInvoiceType(ctx context.Context, id uuid.UUID) (*billing.InvoiceType, error) {
	var m models.InvoiceTypeModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	t := m.ToDomain()
	return &t, nil
}

// ListInvoiceTypes lists invoice types by name
func (r *GormReferenceRepository) ListInvoiceTypes(ctx context.Context) ([]billing.InvoiceType, error) {
	var ms []models.InvoiceTypeModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]billing.InvoiceType, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, nil
}

// FindPaymentType finds a payment type by ID
func (r *GormReferenceRepository) FindPaymentType(ctx context.Context, id uuid.UUID) (*billing.PaymentType, error) {
	var m models.PaymentTypeModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	t := m.ToDomain()
	return &t, nil
}

// ListPaymentTypes lists payment types by name
func (r *GormReferenceRepository) ListPaymentTypes(ctx context.Context) ([]billing.PaymentType, error) {
	var ms []models.PaymentTypeModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]billing.PaymentType, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, nil
}

var (
	_ billing.InvoiceRepository   = (*GormInvoiceRepository)(nil)
	_ billing.ReferenceRepository = (*GormReferenceRepository)(nil)
)
