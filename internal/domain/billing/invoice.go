package billing

import (
	"strings"
	"time"

	"github.com/erp/billing/internal/domain/catalog"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceLine is a persisted, rounded invoice line
type InvoiceLine struct {
	ID                   uuid.UUID
	InvoiceID            uuid.UUID
	ItemID               uuid.UUID
	ItemName             string
	Quantity             decimal.Decimal
	Rate                 decimal.Decimal
	DiscountPercent      decimal.Decimal
	DiscountAmount       decimal.Decimal
	InvoiceDiscountShare decimal.Decimal
	TaxPercent           decimal.Decimal
	TaxAmount            decimal.Decimal
	Amount               decimal.Decimal
	// StockMoved is the quantity actually applied to the item, which is
	// less than Quantity when an outbound movement was floored at zero.
	StockMoved decimal.Decimal
}

// Invoice is the posted invoice aggregate.
// Invariant: RemainingBalance = max(Total - AmountPaid, 0).
type Invoice struct {
	shared.CompanyAggregateRoot
	InvoiceNumber    string
	PartyID          uuid.UUID
	InvoiceTypeID    uuid.UUID
	InvoiceTypeCode  InvoiceTypeCode
	InvoiceDate      time.Time
	Notes            string
	DiscountPercent  decimal.Decimal
	DiscountAmount   decimal.Decimal
	Subtotal         decimal.Decimal
	TaxAmount        decimal.Decimal
	Total            decimal.Decimal
	AmountPaid       decimal.Decimal
	RemainingBalance decimal.Decimal
	OverpaidAmount   decimal.Decimal
	PaymentStatus    PaymentStatus
	PaymentMode      string
	PaymentTypeID    *uuid.UUID
	BankAccountID    *uuid.UUID
	IsDeleted        bool
	Lines            []InvoiceLine
}

// NewInvoice creates an empty invoice header; totals are set by ApplyComputation
func NewInvoice(companyID, partyID uuid.UUID, invType InvoiceType, number string, createdBy uuid.UUID) (*Invoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.InvalidInput("Invoice number cannot be empty")
	}
	if partyID == uuid.Nil {
		return nil, shared.InvalidInput("party is required")
	}
	inv := &Invoice{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		InvoiceNumber:        number,
		PartyID:              partyID,
		InvoiceTypeID:        invType.ID,
		InvoiceTypeCode:      invType.Code,
		InvoiceDate:          shared.Now(),
		DiscountPercent:      decimal.Zero,
		DiscountAmount:       decimal.Zero,
		Subtotal:             decimal.Zero,
		TaxAmount:            decimal.Zero,
		Total:                decimal.Zero,
		AmountPaid:           decimal.Zero,
		RemainingBalance:     decimal.Zero,
		OverpaidAmount:       decimal.Zero,
		PaymentStatus:        PaymentStatusUnpaid,
	}
	inv.SetCreatedBy(createdBy)
	return inv, nil
}

// Type returns the invoice type value for the stored code
func (inv *Invoice) Type() InvoiceType {
	return InvoiceType{ID: inv.InvoiceTypeID, Code: inv.InvoiceTypeCode}
}

// ChangeType switches the invoice to another invoice type
func (inv *Invoice) ChangeType(t InvoiceType) {
	inv.InvoiceTypeID = t.ID
	inv.InvoiceTypeCode = t.Code
}

// ApplyComputation replaces lines and totals with the rounded result of c.
// Line taxes and amounts are rounded individually; header tax and total are
// the sums of the rounded lines, so sum(line.Amount) == Total holds exactly,
// and the header discount absorbs the rounding residue so that
// Total == Subtotal - DiscountAmount + TaxAmount.
func (inv *Invoice) ApplyComputation(c *Computation, headerDiscountPercent decimal.Decimal) PaymentOutcome {
	lines := make([]InvoiceLine, 0, len(c.Lines))
	taxTotal := decimal.Zero
	total := decimal.Zero
	netTotal := decimal.Zero

	for _, cl := range c.Lines {
		finalTaxable := shared.RoundMoney(cl.FinalTaxable)
		tax := shared.RoundMoney(cl.TaxAmount)
		amount := finalTaxable.Add(tax)

		lines = append(lines, InvoiceLine{
			ID:                   uuid.New(),
			InvoiceID:            inv.ID,
			ItemID:               cl.Item.ID,
			ItemName:             cl.Item.Name,
			Quantity:             cl.Quantity,
			Rate:                 cl.Rate,
			DiscountPercent:      cl.DiscountPercent,
			DiscountAmount:       shared.RoundMoney(cl.DiscountAmount),
			InvoiceDiscountShare: shared.RoundMoney(cl.InvoiceDiscountShare),
			TaxPercent:           cl.TaxPercent,
			TaxAmount:            tax,
			Amount:               amount,
			StockMoved:           decimal.Zero,
		})
		taxTotal = taxTotal.Add(tax)
		total = total.Add(amount)
		netTotal = netTotal.Add(finalTaxable)
	}

	inv.Lines = lines
	inv.DiscountPercent = headerDiscountPercent
	inv.Subtotal = shared.RoundMoney(c.Subtotal)
	inv.DiscountAmount = inv.Subtotal.Sub(netTotal)
	inv.TaxAmount = taxTotal
	inv.Total = total
	inv.Touch()
	return inv.refreshSettlement()
}

// SetInitialPayment records the amount paid at creation. Paying more than
// the total is rejected.
func (inv *Invoice) SetInitialPayment(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.InvalidInput("amount_paid cannot be negative")
	}
	if amount.GreaterThan(inv.Total) {
		return shared.ErrOverpayment.WithDetails(map[string]any{
			"total":       inv.Total.StringFixed(shared.MoneyScale),
			"amount_paid": amount.StringFixed(shared.MoneyScale),
		})
	}
	inv.AmountPaid = amount
	inv.refreshSettlement()
	return nil
}

// RecordPayment settles part of the remaining balance. The amount may not
// exceed what is still owed.
func (inv *Invoice) RecordPayment(amount decimal.Decimal) (PaymentOutcome, error) {
	if !amount.IsPositive() {
		return PaymentOutcome{}, shared.InvalidInput("amount must be greater than 0")
	}
	if !inv.RemainingBalance.IsPositive() {
		return PaymentOutcome{}, shared.BusinessRule("Invoice is already fully paid. No further payment is required.")
	}
	if amount.GreaterThan(inv.RemainingBalance) {
		return PaymentOutcome{}, shared.NewDomainErrorf(shared.CodeOverpayment,
			"Payment amount exceeds the remaining balance of %s.", shared.FormatRupees(inv.RemainingBalance)).
			WithDetails(map[string]any{"remaining_balance": inv.RemainingBalance.StringFixed(shared.MoneyScale)})
	}
	inv.AmountPaid = inv.AmountPaid.Add(amount)
	inv.Touch()
	return inv.refreshSettlement(), nil
}

// MarkDeleted soft-deletes the invoice. Invoices carrying payments cannot be
// deleted because their ledger postings would be orphaned.
func (inv *Invoice) MarkDeleted() error {
	if inv.IsDeleted {
		return shared.NotFound("Invoice not found for this company.")
	}
	if inv.AmountPaid.IsPositive() {
		return shared.BusinessRule("Invoice has recorded payments and cannot be deleted.")
	}
	inv.IsDeleted = true
	inv.Touch()
	return nil
}

// Renumber overrides the invoice number
func (inv *Invoice) Renumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return shared.InvalidInput("Invoice number cannot be empty")
	}
	inv.InvoiceNumber = number
	return nil
}

// StockDirection returns the stock effect of the current invoice type
func (inv *Invoice) StockDirection() catalog.StockDirection {
	return inv.Type().StockDirection()
}

func (inv *Invoice) refreshSettlement() PaymentOutcome {
	out := DerivePaymentStatus(inv.Total, inv.AmountPaid)
	inv.RemainingBalance = RemainingBalance(inv.Total, inv.AmountPaid)
	inv.PaymentStatus = out.Status
	inv.OverpaidAmount = out.OverpaidAmount
	return out
}
