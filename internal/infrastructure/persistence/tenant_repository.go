package persistence

import (
	"context"

	"github.com/erp/billing/internal/domain/tenant"
	"github.com/erp/billing/internal/infrastructure/persistence/models"
	"github.com/erp/billing/internal/infrastructure/persistence/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCompanyRepository implements CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company by its ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*tenant.Company, error) {
	var m models.CompanyModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByIDForUpdate finds a company and locks its row
func (r *GormCompanyRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*tenant.Company, error) {
	var m models.CompanyModel
	if err := r.db.WithContext(ctx).Scopes(scope.ForUpdate).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindByOwner lists the active companies owned by the user
func (r *GormCompanyRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]tenant.Company, error) {
	var ms []models.CompanyModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]tenant.Company, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// Save inserts a new company or updates an existing one under its version
func (r *GormCompanyRepository) Save(ctx context.Context, company *tenant.Company) error {
	db := r.db.WithContext(ctx)
	m := models.CompanyModelFromDomain(company)
	found, err := exists(db, &models.CompanyModel{}, company.ID)
	if err != nil {
		return err
	}
	if !found {
		return db.Create(m).Error
	}
	m.Version = company.Version + 1
	if err := updateAll(db, m, company.Version); err != nil {
		return err
	}
	company.IncrementVersion()
	return nil
}

// GormStaffRepository implements StaffRepository using GORM
type GormStaffRepository struct {
	db *gorm.DB
}

// NewGormStaffRepository creates a new GormStaffRepository
func NewGormStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

// FindByID finds a staff assignment of the company
func (r *GormStaffRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*tenant.StaffAssignment, error) {
	var m models.StaffModel
	if err := r.db.WithContext(ctx).Scopes(scope.Company(companyID)).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindActive finds the active assignment of a user to a company
func (r *GormStaffRepository) FindActive(ctx context.Context, userID, companyID uuid.UUID) (*tenant.StaffAssignment, error) {
	var m models.StaffModel
	if err := r.db.WithContext(ctx).
		Scopes(scope.Company(companyID)).
		Where("user_id = ? AND is_active = ?", userID, true).
		First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindActiveByUser lists every active assignment of the user
func (r *GormStaffRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]tenant.StaffAssignment, error) {
	var ms []models.StaffModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return staffToDomain(ms), nil
}

// FindByCompany lists the company's staff, active or not
func (r *GormStaffRepository) FindByCompany(ctx context.Context, companyID uuid.UUID) ([]tenant.StaffAssignment, error) {
	var ms []models.StaffModel
	if err := r.db.WithContext(ctx).Scopes(scope.Company(companyID)).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return staffToDomain(ms), nil
}

// CountActiveByRole counts active staff holding the role
func (r *GormStaffRepository) CountActiveByRole(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StaffModel{}).
		Where("role_id = ? AND is_active = ?", roleID, true).
		Count(&count).Error
	return count, err
}

// Save inserts or version-updates the assignment
func (r *GormStaffRepository) Save(ctx context.Context, staff *tenant.StaffAssignment) error {
	db := r.db.WithContext(ctx)
	m := models.StaffModelFromDomain(staff)
	found, err := exists(db, &models.StaffModel{}, staff.ID)
	if err != nil {
		return err
	}
	if !found {
		return db.Create(m).Error
	}
	m.Version = staff.Version + 1
	if err := updateAll(db, m, staff.Version); err != nil {
		return err
	}
	staff.IncrementVersion()
	return nil
}

func staffToDomain(ms []models.StaffModel) []tenant.StaffAssignment {
	out := make([]tenant.StaffAssignment, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out
}

var (
	_ tenant.CompanyRepository = (*GormCompanyRepository)(nil)
	_ tenant.StaffRepository   = (*GormStaffRepository)(nil)
)
