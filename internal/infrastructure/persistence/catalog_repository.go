package persistence

import (
	"context"
	"strings"

	"github.com/erp/billing/internal/domain/catalog"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/infrastructure/persistence/models"
	"github.com/erp/billing/internal/infrastructure/persistence/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item of the company
func (r *GormItemRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*catalog.Item, error) {
	var m models.ItemModel
	if err := r.db.WithContext(ctx).Scopes(scope.Company(companyID)).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByIDForUpdate finds an item of the company and locks its row
func (r *GormItemRepository) FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*catalog.Item, error) {
	var m models.ItemModel
	if err := r.db.WithContext(ctx).
		Scopes(scope.Company(companyID), scope.ForUpdate).
		Where("id = ?", id).
		First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists the company's items; Search matches name or code
func (r *GormItemRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]catalog.Item, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.ItemModel{}).Scopes(scope.Company(companyID))
		if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
			q = q.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", "%"+term+"%", "%"+term+"%")
		}
		return q
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []models.ItemModel
	if err := base().Scopes(scope.Paginate(filter, scope.ItemSortFields, "created_at")).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]catalog.Item, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, total, nil
}

// ExistsByCode checks if an item code is taken in the company
func (r *GormItemRepository) ExistsByCode(ctx context.Context, companyID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ItemModel{}).
		Scopes(scope.Company(companyID)).
		Where("code = ?", strings.TrimSpace(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new item
func (r *GormItemRepository) Create(ctx context.Context, item *catalog.Item) error {
	return r.db.WithContext(ctx).Create(models.ItemModelFromDomain(item)).Error
}

// UpdateStock writes the quantity guarded by the item version
func (r *GormItemRepository) UpdateStock(ctx context.Context, item *catalog.Item) error {
	result := r.db.WithContext(ctx).
		Model(&models.ItemModel{}).
		Where("id = ? AND version = ?", item.ID, item.Version).
		Updates(map[string]interface{}{
			"quantity":   item.Quantity,
			"version":    item.Version + 1,
			"updated_at": item.UpdatedAt,
		})
	if err := versionGuard(result); err != nil {
		return err
	}
	item.IncrementVersion()
	return nil
}

// GormPartyRepository implements PartyRepository using GORM
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// FindByID finds a non-deleted party in any company; callers check ownership
func (r *GormPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Party, error) {
	var m models.PartyModel
	if err := r.db.WithContext(ctx).Scopes(scope.NotDeleted("deleted")).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists the company's parties
func (r *GormPartyRepository) FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]catalog.Party, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.PartyModel{}).
			Scopes(scope.Company(companyID), scope.NotDeleted("deleted"), scope.Search("name", filter.Search))
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []models.PartyModel
	if err := base().Scopes(scope.Paginate(filter, scope.PartySortFields, "created_at")).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]catalog.Party, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, total, nil
}

// ExistsByName checks for a live party with the same name, ignoring case
func (r *GormPartyRepository) ExistsByName(ctx context.Context, companyID uuid.UUID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PartyModel{}).
		Scopes(scope.Company(companyID), scope.NotDeleted("deleted")).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new party
func (r *GormPartyRepository) Create(ctx context.Context, party *catalog.Party) error {
	return r.db.WithContext(ctx).Create(models.PartyModelFromDomain(party)).Error
}

var (
	_ catalog.ItemRepository  = (*GormItemRepository)(nil)
	_ catalog.PartyRepository = (*GormPartyRepository)(nil)
)
