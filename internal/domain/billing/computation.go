package billing

import (
	"fmt"

	"github.com/erp/billing/internal/domain/catalog"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var maxPercent = decimal.NewFromInt(100)

// LineInput is one requested invoice line. Item must already be scoped to
// the invoice company. Lines referencing the same item share one *Item.
type LineInput struct {
	Item            *catalog.Item
	Quantity        decimal.Decimal
	DiscountPercent decimal.Decimal
}

// ComputationInput is everything the engine needs to price an invoice
type ComputationInput struct {
	Direction             catalog.StockDirection
	HeaderDiscountPercent decimal.Decimal
	Lines                 []LineInput
}

// ComputedLine holds the exact (unrounded) amounts for one line
type ComputedLine struct {
	Item                 *catalog.Item
	Quantity             decimal.Decimal
	Rate                 decimal.Decimal
	DiscountPercent      decimal.Decimal
	DiscountAmount       decimal.Decimal
	Taxable              decimal.Decimal
	InvoiceDiscountShare decimal.Decimal
	FinalTaxable         decimal.Decimal
	TaxPercent           decimal.Decimal
	TaxAmount            decimal.Decimal
	Amount               decimal.Decimal
}

// Computation is the result of pricing an invoice
type Computation struct {
	Lines          []ComputedLine
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	Warnings       []string
}

// Compute prices the lines in two passes. The first pass prices each line
// and sums the taxable subtotal; the second allocates the header discount to
// each line in proportion to its taxable amount, then applies tax.
// Items are read, never mutated.
func Compute(in ComputationInput) (*Computation, error) {
	if len(in.Lines) == 0 {
		return nil, shared.InvalidInput("At least one item is required.")
	}
	if err := validatePercent("discount_percent", in.HeaderDiscountPercent); err != nil {
		return nil, err
	}

	c := &Computation{
		Lines:    make([]ComputedLine, 0, len(in.Lines)),
		Subtotal: decimal.Zero,
	}

	// Stock checked against what is left after earlier lines of the same item.
	available := make(map[uuid.UUID]decimal.Decimal)

	for i, l := range in.Lines {
		if l.Item == nil {
			return nil, shared.InvalidInput(fmt.Sprintf("items[%d]: item is required", i))
		}
		if !l.Quantity.IsPositive() {
			return nil, shared.InvalidInput(fmt.Sprintf("items[%d]: quantity must be greater than 0", i))
		}
		if err := validatePercent(fmt.Sprintf("items[%d].discount_percent", i), l.DiscountPercent); err != nil {
			return nil, err
		}

		if in.Direction == catalog.StockOut {
			left, seen := available[l.Item.ID]
			if !seen {
				left = l.Item.Quantity
			}
			if left.LessThan(l.Quantity) {
				c.Warnings = append(c.Warnings, catalog.InsufficientStockWarning(l.Item.Name, left, l.Quantity))
				left = decimal.Zero
			} else {
				left = left.Sub(l.Quantity)
			}
			available[l.Item.ID] = left
		}

		rate := l.Item.SalesPrice
		base := l.Quantity.Mul(rate)
		discount := shared.Percent(base, l.DiscountPercent)
		taxable := base.Sub(discount)
		c.Subtotal = c.Subtotal.Add(taxable)

		c.Lines = append(c.Lines, ComputedLine{
			Item:            l.Item,
			Quantity:        l.Quantity,
			Rate:            rate,
			DiscountPercent: l.DiscountPercent,
			DiscountAmount:  discount,
			Taxable:         taxable,
			TaxPercent:      l.Item.EffectiveTaxPercent(),
		})
	}

	c.DiscountAmount = shared.Percent(c.Subtotal, in.HeaderDiscountPercent)
	c.TaxAmount = decimal.Zero
	c.Total = decimal.Zero

	for i := range c.Lines {
		line := &c.Lines[i]
		share := decimal.Zero
		if c.Subtotal.IsPositive() {
			share = line.Taxable.Mul(c.DiscountAmount).Div(c.Subtotal)
		}
		line.InvoiceDiscountShare = share
		line.FinalTaxable = line.Taxable.Sub(share)
		line.TaxAmount = shared.Percent(line.FinalTaxable, line.TaxPercent)
		line.Amount = line.FinalTaxable.Add(line.TaxAmount)

		c.TaxAmount = c.TaxAmount.Add(line.TaxAmount)
		c.Total = c.Total.Add(line.Amount)
	}

	return c, nil
}

func validatePercent(field string, p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(maxPercent) {
		return shared.InvalidInput(field + " must be between 0 and 100")
	}
	return nil
}
