package identity

import (
	"time"

	"github.com/erp/billing/internal/domain/identity"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/google/uuid"
)

// PermissionInput is one requested permission row
type PermissionInput struct {
	Module       string
	View         bool
	Create       bool
	Edit         bool
	Delete       bool
	ViewSpecific bool
	GetUsingPost bool
}

// CreateRoleInput contains input for creating a role
type CreateRoleInput struct {
	Name        string
	Description string
	Permissions []PermissionInput
}

// UpdateRoleInput replaces name, description and the whole permission matrix
type UpdateRoleInput struct {
	Name        string
	Description string
	Permissions []PermissionInput
}

// AssignStaffInput binds a user to the actor's company
type AssignStaffInput struct {
	UserID uuid.UUID
	RoleID uuid.UUID
}

// PermissionDTO is one row of the permission matrix
type PermissionDTO struct {
	Module       string `json:"module"`
	View         bool   `json:"view"`
	Create       bool   `json:"create"`
	Edit         bool   `json:"edit"`
	Delete       bool   `json:"delete"`
	ViewSpecific bool   `json:"view_specific"`
	GetUsingPost bool   `json:"get_using_post"`
}

// RoleDTO represents a role with its permissions
type RoleDTO struct {
	ID          uuid.UUID       `json:"id"`
	CompanyID   uuid.UUID       `json:"company_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Permissions []PermissionDTO `json:"permissions"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StaffDTO represents a staff assignment
type StaffDTO struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`
	UserID    uuid.UUID `json:"user_id"`
	RoleID    uuid.UUID `json:"role_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ModuleDTO is a seeded module
type ModuleDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// PermissionMatrixDTO is what the caller may do in a company
type PermissionMatrixDTO struct {
	CompanyID   uuid.UUID        `json:"company_id"`
	ActorKind   tenant.ActorKind `json:"actor_kind"`
	RoleID      *uuid.UUID       `json:"role_id,omitempty"`
	Permissions []PermissionDTO  `json:"permissions"`
}

func toPermissionDTO(p identity.ModulePermission) PermissionDTO {
	return PermissionDTO{
		Module:       p.ModuleName,
		View:         p.View,
		Create:       p.Create,
		Edit:         p.Edit,
		Delete:       p.Delete,
		ViewSpecific: p.ViewSpecific,
		GetUsingPost: p.GetUsingPost,
	}
}

func toRoleDTO(r *identity.Role) *RoleDTO {
	perms := make([]PermissionDTO, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, toPermissionDTO(p))
	}
	return &RoleDTO{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toStaffDTO(s *tenant.StaffAssignment) *StaffDTO {
	return &StaffDTO{
		ID:        s.ID,
		CompanyID: s.CompanyID,
		UserID:    s.UserID,
		RoleID:    s.RoleID,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
	}
}

func fromPermissionInputs(in []PermissionInput) []identity.ModulePermission {
	out := make([]identity.ModulePermission, 0, len(in))
	for _, p := range in {
		out = append(out, identity.ModulePermission{
			ModuleName:   p.Module,
			View:         p.View,
			Create:       p.Create,
			Edit:         p.Edit,
			Delete:       p.Delete,
			ViewSpecific: p.ViewSpecific,
			GetUsingPost: p.GetUsingPost,
		})
	}
	return out
}
