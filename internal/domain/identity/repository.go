package identity

import (
	"context"

	"github.com/google/uuid"
)

// RoleRepository persists roles together with their permission rows
type RoleRepository interface {
	// FindByID loads a non-deleted role of the company with its permissions
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Role, error)
	FindAll(ctx context.Context, companyID uuid.UUID) ([]Role, error)
	ExistsByName(ctx context.Context, companyID uuid.UUID, name string, excludeID uuid.UUID) (bool, error)
	// Save upserts the role and replaces its permission rows
	Save(ctx context.Context, role *Role) error
}

// PermissionRepository is the read path used by the permission gate
type PermissionRepository interface {
	// Find returns the permission row for (role, company, module)
	Find(ctx context.Context, roleID, companyID uuid.UUID, module string) (*ModulePermission, error)
	FindByRole(ctx context.Context, roleID, companyID uuid.UUID) ([]ModulePermission, error)
}

// ModuleRepository lists seeded modules
type ModuleRepository interface {
	FindAll(ctx context.Context) ([]Module, error)
	ExistsByNames(ctx context.Context, names []string) (missing []string, err error)
}
