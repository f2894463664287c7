package shared

import (
	"github.com/google/uuid"
)

// BaseAggregateRoot adds an optimistic version to an entity. Running
// balances and stock are guarded by row locks; the version is bumped on
// every write so stale in-memory copies are detectable.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

// IncrementVersion bumps the version after a successful write
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot returns a version 1 root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// CompanyAggregateRoot is a root owned by exactly one company
type CompanyAggregateRoot struct {
	BaseAggregateRoot
	CompanyID uuid.UUID
	CreatedBy *uuid.UUID
}

// NewCompanyAggregateRoot creates a root owned by companyID
func NewCompanyAggregateRoot(companyID uuid.UUID) CompanyAggregateRoot {
	return CompanyAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), CompanyID: companyID}
}

// SetCreatedBy records the acting user
func (c *CompanyAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	c.CreatedBy = &userID
}

// BelongsTo reports whether the root is owned by companyID
func (c *CompanyAggregateRoot) BelongsTo(companyID uuid.UUID) bool {
	return c.CompanyID == companyID
}
