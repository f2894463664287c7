// Package catalog holds stock items and trading parties.
package catalog

import (
	"strings"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a stock-keeping item of one company. Quantity is the on-hand stock
// and never goes negative.
type Item struct {
	shared.CompanyAggregateRoot
	Name        string
	Code        string
	Description string
	Unit        string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	SalesPrice  decimal.Decimal
	TaxApplied  bool
	TaxPercent  decimal.Decimal
	IsActive    bool
}

// NewItemInput carries the fields needed to create an item
type NewItemInput struct {
	Name       string
	Code       string
	Unit       string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	SalesPrice decimal.Decimal
	TaxApplied bool
	TaxPercent decimal.Decimal
}

// NewItem creates an active item
func NewItem(companyID uuid.UUID, in NewItemInput) (*Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, shared.InvalidInput("Item name cannot be empty")
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, shared.InvalidInput("Item code cannot be empty")
	}
	if in.Quantity.IsNegative() {
		return nil, shared.InvalidInput("Item quantity cannot be negative")
	}
	if in.Price.IsNegative() || in.SalesPrice.IsNegative() {
		return nil, shared.InvalidInput("Item prices cannot be negative")
	}
	if in.TaxPercent.IsNegative() || in.TaxPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.InvalidInput("Tax percent must be between 0 and 100")
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = "pcs"
	}
	return &Item{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 name,
		Code:                 code,
		Unit:                 unit,
		Quantity:             in.Quantity,
		Price:                in.Price,
		SalesPrice:           in.SalesPrice,
		TaxApplied:           in.TaxApplied,
		TaxPercent:           in.TaxPercent,
		IsActive:             true,
	}, nil
}

// EffectiveTaxPercent returns the tax rate applied on sale, zero when untaxed
func (i *Item) EffectiveTaxPercent() decimal.Decimal {
	if !i.TaxApplied {
		return decimal.Zero
	}
	return i.TaxPercent
}
