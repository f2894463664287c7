package identity

import (
	"strings"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
)

// Role groups module permissions inside one company
type Role struct {
	shared.CompanyAggregateRoot
	Name        string
	Description string
	Deleted     bool
	Permissions []ModulePermission
}

// NewRole creates a role in the company
func NewRole(companyID uuid.UUID, name, description string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.InvalidInput("Role name cannot be empty")
	}
	if len(name) > 50 {
		return nil, shared.InvalidInput("Role name cannot exceed 50 characters")
	}
	return &Role{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 name,
		Description:          description,
	}, nil
}

// Rename changes the role name
func (r *Role) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.InvalidInput("Role name cannot be empty")
	}
	r.Name = name
	r.Touch()
	return nil
}

// ReplacePermissions swaps the permission matrix. Duplicate modules are rejected.
func (r *Role) ReplacePermissions(perms []ModulePermission) error {
	seen := make(map[string]struct{}, len(perms))
	out := make([]ModulePermission, 0, len(perms))
	for _, p := range perms {
		name := strings.TrimSpace(p.ModuleName)
		if name == "" {
			return shared.InvalidInput("Permission module cannot be empty")
		}
		if _, dup := seen[name]; dup {
			return shared.InvalidInput("Duplicate permission for module " + name)
		}
		seen[name] = struct{}{}
		p.ModuleName = name
		p.RoleID = r.ID
		p.CompanyID = r.CompanyID
		out = append(out, p)
	}
	r.Permissions = out
	r.Touch()
	return nil
}

// PermissionFor returns the row for the module, if any
func (r *Role) PermissionFor(module string) (ModulePermission, bool) {
	for _, p := range r.Permissions {
		if p.ModuleName == module {
			return p, true
		}
	}
	return ModulePermission{}, false
}

// MarkDeleted soft-deletes the role
func (r *Role) MarkDeleted() error {
	if r.Deleted {
		return shared.NewDomainError(shared.CodeInvalidState, "Role is already deleted")
	}
	r.Deleted = true
	r.Touch()
	return nil
}
