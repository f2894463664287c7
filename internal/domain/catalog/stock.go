package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StockDirection is the effect an invoice type has on item stock
type StockDirection int

const (
	StockUnchanged StockDirection = iota
	StockIn                       // purchase
	StockOut                      // sale
)

// String returns the direction name
func (d StockDirection) String() string {
	switch d {
	case StockIn:
		return "in"
	case StockOut:
		return "out"
	}
	return "none"
}

// Reverse returns the opposite direction
func (d StockDirection) Reverse() StockDirection {
	switch d {
	case StockIn:
		return StockOut
	case StockOut:
		return StockIn
	}
	return StockUnchanged
}

// StockMovement is the outcome of applying a quantity to an item
type StockMovement struct {
	Before  decimal.Decimal
	After   decimal.Decimal
	Floored bool // an outbound movement exceeded stock and was clamped to zero
}

// ApplyMovement adjusts on-hand stock. Inbound adds; outbound subtracts and
// floors at zero instead of going negative.
func (i *Item) ApplyMovement(dir StockDirection, qty decimal.Decimal) StockMovement {
	m := StockMovement{Before: i.Quantity, After: i.Quantity}
	if qty.IsNegative() || qty.IsZero() {
		return m
	}
	switch dir {
	case StockIn:
		m.After = i.Quantity.Add(qty)
	case StockOut:
		next := i.Quantity.Sub(qty)
		if next.IsNegative() {
			next = decimal.Zero
			m.Floored = true
		}
		m.After = next
	}
	i.Quantity = m.After
	if !m.After.Equal(m.Before) {
		i.Touch()
	}
	return m
}

// HasStock reports whether at least qty is on hand
func (i *Item) HasStock(qty decimal.Decimal) bool {
	return i.Quantity.GreaterThanOrEqual(qty)
}

// InsufficientStockWarning renders the non-fatal warning for a sales line
func InsufficientStockWarning(name string, available, requested decimal.Decimal) string {
	return fmt.Sprintf("Item '%s' has only %s in stock, but %s were requested.", name, available.String(), requested.String())
}
