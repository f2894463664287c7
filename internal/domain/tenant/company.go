// Package tenant models companies (tenants) and the actors that act on them.
package tenant

import (
	"strings"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
)

// Company is the tenant root. All billing data is scoped to exactly one company.
type Company struct {
	shared.BaseAggregateRoot
	Name      string
	OwnerID   uuid.UUID
	Address   string
	Phone     string
	GSTNumber string
	IsActive  bool
}

// NewCompany creates an active company owned by ownerID
func NewCompany(ownerID uuid.UUID, name string) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.InvalidInput("Company name cannot be empty")
	}
	if ownerID == uuid.Nil {
		return nil, shared.InvalidInput("Company owner is required")
	}
	return &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		OwnerID:           ownerID,
		IsActive:          true,
	}, nil
}

// IsOwnedBy reports whether userID owns the company
func (c *Company) IsOwnedBy(userID uuid.UUID) bool {
	return c.OwnerID == userID
}

// Deactivate soft-deletes the company
func (c *Company) Deactivate() {
	c.IsActive = false
	c.Touch()
}
