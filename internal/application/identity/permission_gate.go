// Package identity authorizes actors and manages roles and staff.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/billing/internal/domain/identity"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/erp/billing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PermissionGate decides whether an actor may perform an action on a module.
// It only reads.
type PermissionGate struct {
	perms   identity.PermissionRepository
	modules identity.ModuleRepository
	logger  *zap.Logger
}

// NewPermissionGate creates a PermissionGate
func NewPermissionGate(perms identity.PermissionRepository, modules identity.ModuleRepository, logger *zap.Logger) *PermissionGate {
	return &PermissionGate{perms: perms, modules: modules, logger: logger}
}

// Check reports whether actor may perform action on module. Owners are
// always allowed; staff need a permission row whose action bit is set.
func (g *PermissionGate) Check(ctx context.Context, actor tenant.Actor, module string, action identity.Action) (bool, error) {
	if !action.IsValid() {
		return false, shared.InvalidInput(fmt.Sprintf("Unknown permission action: %s", action))
	}
	if actor.IsOwner() {
		return true, nil
	}
	if !actor.IsStaff() || actor.RoleID == uuid.Nil {
		return false, nil
	}

	p, err := g.perms.Find(ctx, actor.RoleID, actor.CompanyID, module)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load permission: %w", err)
	}
	return p.Allows(action), nil
}

// Authorize is Check turned into an error on denial
func (g *PermissionGate) Authorize(ctx context.Context, actor tenant.Actor, module string, action identity.Action) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "permission", "authorize")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.AttrCompanyID, actor.CompanyID.String(),
		telemetry.AttrModule, module,
		telemetry.AttrAction, string(action),
	)

	ok, err := g.Check(ctx, actor, module, action)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if !ok {
		g.logger.Warn("permission denied",
			zap.String("user_id", actor.UserID.String()),
			zap.String("company_id", actor.CompanyID.String()),
			zap.String("module", module),
			zap.String("action", string(action)))
		return shared.Forbidden(fmt.Sprintf("You do not have %s permission on %s.", action, module))
	}
	return nil
}

// Matrix returns the actor's permissions in its company. Owners get every
// seeded module with all actions.
func (g *PermissionGate) Matrix(ctx context.Context, actor tenant.Actor) (*PermissionMatrixDTO, error) {
	out := &PermissionMatrixDTO{CompanyID: actor.CompanyID, ActorKind: actor.Kind}
	if actor.IsOwner() {
		modules, err := g.modules.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list modules: %w", err)
		}
		out.Permissions = make([]PermissionDTO, 0, len(modules))
		for _, m := range modules {
			out.Permissions = append(out.Permissions, toPermissionDTO(identity.FullAccess(actor.CompanyID, m.Name)))
		}
		return out, nil
	}

	roleID := actor.RoleID
	out.RoleID = &roleID
	rows, err := g.perms.FindByRole(ctx, actor.RoleID, actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	out.Permissions = make([]PermissionDTO, 0, len(rows))
	for _, p := range rows {
		out.Permissions = append(out.Permissions, toPermissionDTO(p))
	}
	return out, nil
}

// Modules lists the seeded modules
func (g *PermissionGate) Modules(ctx context.Context) ([]ModuleDTO, error) {
	modules, err := g.modules.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	out := make([]ModuleDTO, 0, len(modules))
	for _, m := range modules {
		out = append(out, ModuleDTO{ID: m.ID, Name: m.Name})
	}
	return out, nil
}
