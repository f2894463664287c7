package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/billing/internal/application/uow"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StaffService assigns users to a company under a role
type StaffService struct {
	scope  uow.TransactionScope
	staff  tenant.StaffRepository
	logger *zap.Logger
}

// NewStaffService creates a new staff service
func NewStaffService(scope uow.TransactionScope, staff tenant.StaffRepository, logger *zap.Logger) *StaffService {
	return &StaffService{scope: scope, staff: staff, logger: logger}
}

// Assign makes the user a staff member of the actor's company. A user may be
// staff of one company only; re-assigning within the same company changes
// the role.
func (s *StaffService) Assign(ctx context.Context, actor tenant.Actor, input AssignStaffInput) (*StaffDTO, error) {
	var result *tenant.StaffAssignment
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		company, err := repos.CompanyRepo().FindByID(ctx, actor.CompanyID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NotFound("Company not found.")
			}
			return err
		}
		if company.IsOwnedBy(input.UserID) {
			return shared.BusinessRule("The company owner cannot be assigned as staff.")
		}
		if _, err := findRole(ctx, repos.RoleRepo(), actor.CompanyID, input.RoleID); err != nil {
			return err
		}

		existing, err := repos.StaffRepo().FindActiveByUser(ctx, input.UserID)
		if err != nil {
			return fmt.Errorf("load staff: %w", err)
		}
		for i := range existing {
			a := &existing[i]
			if a.CompanyID != actor.CompanyID {
				return shared.NewDomainError(shared.CodeAlreadyExists, "User is already staff of another company.")
			}
			if err := a.ChangeRole(input.RoleID); err != nil {
				return err
			}
			result = a
		}
		if result == nil {
			result, err = tenant.NewStaffAssignment(actor.CompanyID, input.UserID, input.RoleID)
			if err != nil {
				return err
			}
		}
		return repos.StaffRepo().Save(ctx, result)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("staff assigned",
		zap.String("company_id", actor.CompanyID.String()),
		zap.String("user_id", input.UserID.String()),
		zap.String("role_id", input.RoleID.String()))
	return toStaffDTO(result), nil
}

// Remove deactivates a staff assignment of the actor's company
func (s *StaffService) Remove(ctx context.Context, actor tenant.Actor, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		a, err := repos.StaffRepo().FindByID(ctx, actor.CompanyID, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NotFound("Staff member not found for this company.")
			}
			return err
		}
		if !a.IsActive {
			return shared.NotFound("Staff member not found for this company.")
		}
		a.Deactivate()
		return repos.StaffRepo().Save(ctx, a)
	})
}

// List returns the company's staff assignments
func (s *StaffService) List(ctx context.Context, actor tenant.Actor) ([]StaffDTO, error) {
	list, err := s.staff.FindByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	out := make([]StaffDTO, 0, len(list))
	for i := range list {
		out = append(out, *toStaffDTO(&list[i]))
	}
	return out, nil
}
