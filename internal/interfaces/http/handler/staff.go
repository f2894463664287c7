package handler

import (
	identityapp "github.com/erp/billing/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StaffHandler handles roles, staff assignment and permission queries
type StaffHandler struct {
	BaseHandler
	roleService  *identityapp.RoleService
	staffService *identityapp.StaffService
	gate         *identityapp.PermissionGate
}

// NewStaffHandler creates a new StaffHandler
func NewStaffHandler(roleService *identityapp.RoleService, staffService *identityapp.StaffService, gate *identityapp.PermissionGate) *StaffHandler {
	return &StaffHandler{
		roleService:  roleService,
		staffService: staffService,
		gate:         gate,
	}
}

// PermissionRequest is one row of a role's permission matrix
type PermissionRequest struct {
	Module       string `json:"module" binding:"required,min=1,max=100"`
	View         bool   `json:"view"`
	Create       bool   `json:"create"`
	Edit         bool   `json:"edit"`
	Delete       bool   `json:"delete"`
	ViewSpecific bool   `json:"view_specific"`
	GetUsingPost bool   `json:"get_using_post"`
}

// RoleRequest creates or replaces a role
type RoleRequest struct {
	Name        string              `json:"name" binding:"required,min=1,max=100"`
	Description string              `json:"description" binding:"max=500"`
	Permissions []PermissionRequest `json:"permissions" binding:"dive"`
}

func (r RoleRequest) permissions() []identityapp.PermissionInput {
	out := make([]identityapp.PermissionInput, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		out = append(out, identityapp.PermissionInput{
			Module:       p.Module,
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

// AssignStaffRequest binds a user to the company with a role
type AssignStaffRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	RoleID string `json:"role_id" binding:"required,uuid"`
}

// CreateRole handles POST /staff/roles/create
func (h *StaffHandler) CreateRole(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req RoleRequest
	if !h.bind(c, &req) {
		return
	}
	role, err := h.roleService.Create(c.Request.Context(), actor, identityapp.CreateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.permissions(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, role)
}

// UpdateRole handles PUT /staff/roles/:id/update
func (h *StaffHandler) UpdateRole(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req RoleRequest
	if !h.bind(c, &req) {
		return
	}
	role, err := h.roleService.Update(c.Request.Context(), actor, id, identityapp.UpdateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.permissions(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, role)
}

// DeleteRole handles DELETE /staff/roles/:id/delete
func (h *StaffHandler) DeleteRole(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.roleService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Deleted(c, "Role deleted successfully.")
}

// ListRoles handles GET /staff/roles
func (h *StaffHandler) ListRoles(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	roles, err := h.roleService.List(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, roles)
}

// Assign handles POST /staff/assign
func (h *StaffHandler) Assign(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req AssignStaffRequest
	if !h.bind(c, &req) {
		return
	}
	staff, err := h.staffService.Assign(c.Request.Context(), actor, identityapp.AssignStaffInput{
		UserID: uuid.MustParse(req.UserID),
		RoleID: uuid.MustParse(req.RoleID),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, staff)
}

// Remove handles DELETE /staff/:id/delete
func (h *StaffHandler) Remove(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.staffService.Remove(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Deleted(c, "Staff member removed.")
}

// List handles GET /staff
func (h *StaffHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	staff, err := h.staffService.List(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, staff)
}

// MyPermissions handles GET /staff/my-permissions
func (h *StaffHandler) MyPermissions(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	matrix, err := h.gate.Matrix(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, matrix)
}

// Modules handles GET /staff/modules
func (h *StaffHandler) Modules(c *gin.Context) {
	modules, err := h.gate.Modules(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, modules)
}
