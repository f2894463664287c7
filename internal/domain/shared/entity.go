package shared

import (
	"time"

	"github.com/google/uuid"
)

// now is the clock used for record timestamps. Timestamps are UTC so that
// invoice years and transaction ordering do not depend on the host zone.
var now = func() time.Time { return time.Now().UTC() }

// Now returns the current record time
func Now() time.Time { return now() }

// BaseEntity carries the identity and timestamps every billing record has
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch bumps UpdatedAt
func (e *BaseEntity) Touch() {
	e.UpdatedAt = now()
}

// NewBaseEntity returns an entity with a fresh ID, created now
func NewBaseEntity() BaseEntity {
	t := now()
	return BaseEntity{ID: uuid.New(), CreatedAt: t, UpdatedAt: t}
}
