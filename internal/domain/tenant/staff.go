package tenant

import (
	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
)

// StaffAssignment binds a user to one company with a role
type StaffAssignment struct {
	shared.BaseAggregateRoot
	CompanyID uuid.UUID
	UserID    uuid.UUID
	RoleID    uuid.UUID
	IsActive  bool
}

// NewStaffAssignment creates an active assignment
func NewStaffAssignment(companyID, userID, roleID uuid.UUID) (*StaffAssignment, error) {
	if userID == uuid.Nil {
		return nil, shared.InvalidInput("Staff user is required")
	}
	if roleID == uuid.Nil {
		return nil, shared.InvalidInput("Staff role is required")
	}
	return &StaffAssignment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CompanyID:         companyID,
		UserID:            userID,
		RoleID:            roleID,
		IsActive:          true,
	}, nil
}

// ChangeRole moves the staff member to another role
func (s *StaffAssignment) ChangeRole(roleID uuid.UUID) error {
	if roleID == uuid.Nil {
		return shared.InvalidInput("Staff role is required")
	}
	s.RoleID = roleID
	s.Touch()
	return nil
}

// Deactivate revokes the assignment
func (s *StaffAssignment) Deactivate() {
	s.IsActive = false
	s.Touch()
}
