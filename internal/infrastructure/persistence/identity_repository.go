package persistence

import (
	"context"
	"strings"

	"github.com/erp/billing/internal/domain/identity"
	"github.com/erp/billing/internal/infrastructure/persistence/models"
	"github.com/erp/billing/internal/infrastructure/persistence/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRoleRepository implements RoleRepository using GORM
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

func preloadPermissions(db *gorm.DB) *gorm.DB {
	return db.Order("module_name ASC")
}

// FindByID loads a non-deleted role of the company with its permission rows
func (r *GormRoleRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*identity.Role, error) {
	var m models.RoleModel
	if err := r.db.WithContext(ctx).
		Scopes(scope.Company(companyID), scope.NotDeleted("deleted")).
		Preload("Permissions", preloadPermissions).
		Where("id = ?", id).
		First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists the company's non-deleted roles by name
func (r *GormRoleRepository) FindAll(ctx context.Context, companyID uuid.UUID) ([]identity.Role, error) {
	var ms []models.RoleModel
	if err := r.db.WithContext(ctx).
		Scopes(scope.Company(companyID), scope.NotDeleted("deleted")).
		Preload("Permissions", preloadPermissions).
		Order("name ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]identity.Role, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// ExistsByName checks for a live role with the same name, ignoring case
func (r *GormRoleRepository) ExistsByName(ctx context.Context, companyID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.RoleModel{}).
		Scopes(scope.Company(companyID), scope.NotDeleted("deleted")).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save upserts the role header and replaces its permission rows
func (r *GormRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	db := r.db.WithContext(ctx)
	m := models.RoleModelFromDomain(role)
	found, err := exists(db, &models.RoleModel{}, role.ID)
	if err != nil {
		return err
	}
	if !found {
		if err := db.Omit(clause.Associations).Create(m).Error; err != nil {
			return err
		}
	} else {
		m.Version = role.Version + 1
		if err := updateAll(db, m, role.Version); err != nil {
			return err
		}
		role.IncrementVersion()
	}

	if err := db.Where("role_id = ?", role.ID).Delete(&models.RolePermissionModel{}).Error; err != nil {
		return err
	}
	if len(role.Permissions) == 0 {
		return nil
	}
	rows := make([]*models.RolePermissionModel, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		rows = append(rows, models.RolePermissionModelFromDomain(p))
	}
	return db.Create(&rows).Error
}

// GormPermissionRepository reads permission rows for the permission gate
type GormPermissionRepository struct {
	db *gorm.DB
}

// NewGormPermissionRepository creates a new GormPermissionRepository
func NewGormPermissionRepository(db *gorm.DB) *GormPermissionRepository {
	return &GormPermissionRepository{db: db}
}

// Find returns the row for (role, company, module) when the role is not deleted
func (r *GormPermissionRepository) Find(ctx context.Context, roleID, companyID uuid.UUID, module string) (*identity.ModulePermission, error) {
	var m models.RolePermissionModel
	if err := r.db.WithContext(ctx).
		Select("role_permissions.*").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Where("role_permissions.role_id = ? AND role_permissions.company_id = ? AND role_permissions.module_name = ?", roleID, companyID, module).
		Where("roles.deleted = ?", false).
		Take(&m).Error; err != nil {
		return nil, translate(err)
	}
	p := m.ToDomain()
	return &p, nil
}

// FindByRole lists every permission row of the role
func (r *GormPermissionRepository) FindByRole(ctx context.Context, roleID, companyID uuid.UUID) ([]identity.ModulePermission, error) {
	var ms []models.RolePermissionModel
	if err := r.db.WithContext(ctx).
		Where("role_id = ? AND company_id = ?", roleID, companyID).
		Order("module_name ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]identity.ModulePermission, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, nil
}

// GormModuleRepository reads the seeded modules
type GormModuleRepository struct {
	db *gorm.DB
}

// NewGormModuleRepository creates a new GormModuleRepository
func NewGormModuleRepository(db *gorm.DB) *GormModuleRepository {
	return &GormModuleRepository{db: db}
}

// FindAll lists modules by name
func (r *GormModuleRepository) FindAll(ctx context.Context) ([]identity.Module, error) {
	var ms []models.ModuleModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]identity.Module, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, nil
}

// ExistsByNames returns the names that are not seeded modules
func (r *GormModuleRepository) ExistsByNames(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var found []string
	if err := r.db.WithContext(ctx).Model(&models.ModuleModel{}).
		Where("name IN ?", names).
		Pluck("name", &found).Error; err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(found))
	for _, n := range found {
		known[n] = struct{}{}
	}
	var missing []string
	for _, n := range names {
		if _, ok := known[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing, nil
}

var (
	_ identity.RoleRepository       = (*GormRoleRepository)(nil)
	_ identity.PermissionRepository = (*GormPermissionRepository)(nil)
	_ identity.ModuleRepository     = (*GormModuleRepository)(nil)
)
