// Package identity holds the role and module-permission model used to
// authorize staff members inside a company.
package identity

import (
	"strings"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
)

// Action is one of the permission bits of a module
type Action string

const (
	ActionView         Action = "view"
	ActionCreate       Action = "create"
	ActionEdit         Action = "edit"
	ActionDelete       Action = "delete"
	ActionViewSpecific Action = "view_specific"
	ActionGetUsingPost Action = "get_using_post"
)

// AllActions returns every action in display order
func AllActions() []Action {
	return []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionViewSpecific, ActionGetUsingPost}
}

// IsValid checks if the action is known
func (a Action) IsValid() bool {
	switch a {
	case ActionView, ActionCreate, ActionEdit, ActionDelete, ActionViewSpecific, ActionGetUsingPost:
		return true
	}
	return false
}

// ParseAction parses a lower-case action name
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", shared.InvalidInput("Unknown permission action: " + s)
	}
	return a, nil
}

// Module names used as the unit of permission granularity
const (
	ModuleInvoice         = "Invoice"
	ModulePayment         = "Payment"
	ModuleBankTransaction = "Bank Transaction"
	ModuleBankTransfer    = "Bank Transfer"
	ModuleCashLedger      = "Cash Ledger"
	ModuleParty           = "Party"
	ModuleItem            = "Item"
	ModuleStaff           = "Staff"
	ModuleRoles           = "Roles"
	ModulePermissions     = "Permission"
	ModuleModules         = "Modules"
)

// DefaultModules lists the modules seeded at bootstrap
func DefaultModules() []string {
	return []string{
		ModuleInvoice, ModulePayment, ModuleBankTransaction, ModuleBankTransfer,
		ModuleCashLedger, ModuleParty, ModuleItem, ModuleStaff, ModuleRoles,
		ModulePermissions, ModuleModules,
	}
}

// Module is a named functional area
type Module struct {
	ID   uuid.UUID
	Name string
}

// ModulePermission is the permission matrix row of one role for one module
type ModulePermission struct {
	RoleID       uuid.UUID
	CompanyID    uuid.UUID
	ModuleName   string
	View         bool
	Create       bool
	Edit         bool
	Delete       bool
	ViewSpecific bool
	GetUsingPost bool
}

// Allows returns the bit matching the action
func (p ModulePermission) Allows(action Action) bool {
	switch action {
	case ActionView:
		return p.View
	case ActionCreate:
		return p.Create
	case ActionEdit:
		return p.Edit
	case ActionDelete:
		return p.Delete
	case ActionViewSpecific:
		return p.ViewSpecific
	case ActionGetUsingPost:
		return p.GetUsingPost
	}
	return false
}

// FullAccess returns a row granting every action on the module
func FullAccess(companyID uuid.UUID, module string) ModulePermission {
	return ModulePermission{
		CompanyID:    companyID,
		ModuleName:   module,
		View:         true,
		Create:       true,
		Edit:         true,
		Delete:       true,
		ViewSpecific: true,
		GetUsingPost: true,
	}
}
