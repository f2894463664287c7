package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/billing/internal/application/uow"
	"github.com/erp/billing/internal/domain/identity"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoleService manages company roles and their permission matrices
type RoleService struct {
	scope  uow.TransactionScope
	roles  identity.RoleRepository
	logger *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(scope uow.TransactionScope, roles identity.RoleRepository, logger *zap.Logger) *RoleService {
	return &RoleService{scope: scope, roles: roles, logger: logger}
}

// Create creates a role in the actor's company
func (s *RoleService) Create(ctx context.Context, actor tenant.Actor, input CreateRoleInput) (*RoleDTO, error) {
	var role *identity.Role
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if err := checkName(ctx, repos, actor.CompanyID, input.Name, uuid.Nil); err != nil {
			return err
		}
		r, err := identity.NewRole(actor.CompanyID, input.Name, input.Description)
		if err != nil {
			return err
		}
		r.SetCreatedBy(actor.UserID)
		if err := applyPermissions(ctx, repos, r, input.Permissions); err != nil {
			return err
		}
		if err := repos.RoleRepo().Save(ctx, r); err != nil {
			return fmt.Errorf("save role: %w", err)
		}
		role = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("role created",
		zap.String("company_id", actor.CompanyID.String()),
		zap.String("role_id", role.ID.String()),
		zap.String("name", role.Name))
	return toRoleDTO(role), nil
}

// Update renames the role and replaces its permission rows
func (s *RoleService) Update(ctx context.Context, actor tenant.Actor, id uuid.UUID, input UpdateRoleInput) (*RoleDTO, error) {
	var role *identity.Role
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		r, err := findRole(ctx, repos.RoleRepo(), actor.CompanyID, id)
		if err != nil {
			return err
		}
		if err := checkName(ctx, repos, actor.CompanyID, input.Name, r.ID); err != nil {
			return err
		}
		if err := r.Rename(input.Name); err != nil {
			return err
		}
		r.Description = input.Description
		if err := applyPermissions(ctx, repos, r, input.Permissions); err != nil {
			return err
		}
		if err := repos.RoleRepo().Save(ctx, r); err != nil {
			return err
		}
		role = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toRoleDTO(role), nil
}

// Delete soft-deletes a role that no active staff member holds
func (s *RoleService) Delete(ctx context.Context, actor tenant.Actor, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		r, err := findRole(ctx, repos.RoleRepo(), actor.CompanyID, id)
		if err != nil {
			return err
		}
		n, err := repos.StaffRepo().CountActiveByRole(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("count staff: %w", err)
		}
		if n > 0 {
			return shared.BusinessRule("Role is assigned to active staff and cannot be deleted.")
		}
		if err := r.MarkDeleted(); err != nil {
			return err
		}
		return repos.RoleRepo().Save(ctx, r)
	})
}

// List returns the company's non-deleted roles
func (s *RoleService) List(ctx context.Context, actor tenant.Actor) ([]RoleDTO, error) {
	roles, err := s.roles.FindAll(ctx, actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	out := make([]RoleDTO, 0, len(roles))
	for i := range roles {
		out = append(out, *toRoleDTO(&roles[i]))
	}
	return out, nil
}

func findRole(ctx context.Context, roles identity.RoleRepository, companyID, id uuid.UUID) (*identity.Role, error) {
	r, err := roles.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Role not found for this company.")
		}
		return nil, err
	}
	return r, nil
}

func checkName(ctx context.Context, repos uow.Repositories, companyID uuid.UUID, name string, excludeID uuid.UUID) error {
	exists, err := repos.RoleRepo().ExistsByName(ctx, companyID, strings.TrimSpace(name), excludeID)
	if err != nil {
		return fmt.Errorf("check role name: %w", err)
	}
	if exists {
		return shared.NewDomainError(shared.CodeAlreadyExists, "A role with this name already exists for this company.")
	}
	return nil
}

func applyPermissions(ctx context.Context, repos uow.Repositories, r *identity.Role, in []PermissionInput) error {
	perms := fromPermissionInputs(in)
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, strings.TrimSpace(p.ModuleName))
	}
	if len(names) > 0 {
		missing, err := repos.ModuleRepo().ExistsByNames(ctx, names)
		if err != nil {
			return fmt.Errorf("check modules: %w", err)
		}
		if len(missing) > 0 {
			return shared.NotFound("Module not found: " + strings.Join(missing, ", ")).
				WithDetails(map[string]any{"missing_modules": missing})
		}
	}
	return r.ReplacePermissions(perms)
}
