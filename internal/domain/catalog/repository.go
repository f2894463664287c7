package catalog

import (
	"context"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
)

// ItemRepository persists items
type ItemRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Item, error)
	// FindByIDForUpdate loads the item under a row lock; call inside a transaction
	FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*Item, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Item, int64, error)
	ExistsByCode(ctx context.Context, companyID uuid.UUID, code string) (bool, error)
	Create(ctx context.Context, item *Item) error
	// UpdateStock writes the quantity guarded by the item version
	UpdateStock(ctx context.Context, item *Item) error
}

// PartyRepository persists parties
type PartyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Party, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Party, int64, error)
	ExistsByName(ctx context.Context, companyID uuid.UUID, name string) (bool, error)
	Create(ctx context.Context, party *Party) error
}
