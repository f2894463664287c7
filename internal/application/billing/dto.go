package billing

import (
	"time"

	"github.com/erp/billing/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineRequest is one requested invoice line
type LineRequest struct {
	ItemID          uuid.UUID
	Quantity        decimal.Decimal
	DiscountPercent decimal.Decimal
}

// CreateInvoiceInput contains input for posting a new invoice
type CreateInvoiceInput struct {
	PartyID         uuid.UUID
	InvoiceTypeID   uuid.UUID
	InvoiceDate     *time.Time
	Notes           string
	DiscountPercent decimal.Decimal
	Items           []LineRequest
	AmountPaid      decimal.Decimal
	PaymentMode     string
	PaymentTypeID   *uuid.UUID
	BankAccountID   *uuid.UUID
}

// UpdateInvoiceInput replaces the lines and header of a posted invoice.
// AmountPaid, when set, must equal the amount already paid.
type UpdateInvoiceInput struct {
	PartyID         uuid.UUID
	InvoiceTypeID   uuid.UUID
	InvoiceNumber   string
	InvoiceDate     *time.Time
	Notes           string
	DiscountPercent decimal.Decimal
	Items           []LineRequest
	AmountPaid      *decimal.Decimal
	PaymentMode     string
	PaymentTypeID   *uuid.UUID
	BankAccountID   *uuid.UUID
}

// InvoiceResultDTO is returned by create and update
type InvoiceResultDTO struct {
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	InvoiceNumber    string          `json:"invoice_number"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	PaymentStatus    string          `json:"payment_status"`
	PaymentStatusID  int             `json:"payment_status_id"`
	Warnings         []string        `json:"warnings"`
}

// InvoiceLineDTO is one line of an invoice detail
type InvoiceLineDTO struct {
	ID                   uuid.UUID       `json:"id"`
	ItemID               uuid.UUID       `json:"item"`
	ItemName             string          `json:"item_name"`
	Quantity             decimal.Decimal `json:"quantity"`
	Rate                 decimal.Decimal `json:"rate"`
	DiscountPercent      decimal.Decimal `json:"discount_percent"`
	DiscountAmount       decimal.Decimal `json:"discount_amount"`
	InvoiceDiscountShare decimal.Decimal `json:"invoice_discount_share"`
	TaxPercent           decimal.Decimal `json:"tax_percent"`
	TaxAmount            decimal.Decimal `json:"tax_amount"`
	Amount               decimal.Decimal `json:"amount"`
}

// InvoiceDTO is an invoice header with labels
type InvoiceDTO struct {
	ID               uuid.UUID        `json:"id"`
	CompanyID        uuid.UUID        `json:"company_id"`
	InvoiceNumber    string           `json:"invoice_number"`
	InvoiceDate      time.Time        `json:"invoice_date"`
	PartyID          uuid.UUID        `json:"party"`
	PartyName        string           `json:"party_name,omitempty"`
	InvoiceTypeID    uuid.UUID        `json:"invoice_type"`
	InvoiceTypeName  string           `json:"invoice_type_name,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	DiscountPercent  decimal.Decimal  `json:"discount_percent"`
	DiscountAmount   decimal.Decimal  `json:"discount_amount"`
	Subtotal         decimal.Decimal  `json:"subtotal"`
	TaxAmount        decimal.Decimal  `json:"tax_amount"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
	AmountPaid       decimal.Decimal  `json:"amount_paid"`
	RemainingBalance decimal.Decimal  `json:"remaining_balance"`
	PaymentStatus    string           `json:"payment_status"`
	PaymentMode      string           `json:"payment_mode,omitempty"`
	PaymentTypeID    *uuid.UUID       `json:"payment_type,omitempty"`
	BankAccountID    *uuid.UUID       `json:"bank_account,omitempty"`
	Items            []InvoiceLineDTO `json:"items,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// InvoicePage is a page of invoices
type InvoicePage struct {
	Items    []InvoiceDTO `json:"items"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// InvoiceTypeDTO is a seeded invoice type
type InvoiceTypeDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
}

// PaymentTypeDTO is a seeded payment type
type PaymentTypeDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func toResultDTO(inv *billing.Invoice, warnings []string) *InvoiceResultDTO {
	if warnings == nil {
		warnings = []string{}
	}
	return &InvoiceResultDTO{
		InvoiceID:        inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		Subtotal:         inv.Subtotal,
		DiscountAmount:   inv.DiscountAmount,
		TaxAmount:        inv.TaxAmount,
		TotalAmount:      inv.Total,
		AmountPaid:       inv.AmountPaid,
		RemainingBalance: inv.RemainingBalance,
		PaymentStatus:    inv.PaymentStatus.Label(),
		PaymentStatusID:  int(inv.PaymentStatus),
		Warnings:         warnings,
	}
}

func toInvoiceDTO(inv *billing.Invoice, withLines bool) InvoiceDTO {
	dto := InvoiceDTO{
		ID:               inv.ID,
		CompanyID:        inv.CompanyID,
		InvoiceNumber:    inv.InvoiceNumber,
		InvoiceDate:      inv.InvoiceDate,
		PartyID:          inv.PartyID,
		InvoiceTypeID:    inv.InvoiceTypeID,
		Notes:            inv.Notes,
		DiscountPercent:  inv.DiscountPercent,
		DiscountAmount:   inv.DiscountAmount,
		Subtotal:         inv.Subtotal,
		TaxAmount:        inv.TaxAmount,
		TotalAmount:      inv.Total,
		AmountPaid:       inv.AmountPaid,
		RemainingBalance: inv.RemainingBalance,
		PaymentStatus:    inv.PaymentStatus.Label(),
		PaymentMode:      inv.PaymentMode,
		PaymentTypeID:    inv.PaymentTypeID,
		BankAccountID:    inv.BankAccountID,
		CreatedAt:        inv.CreatedAt,
	}
	if withLines {
		dto.Items = make([]InvoiceLineDTO, 0, len(inv.Lines))
		for _, l := range inv.Lines {
			dto.Items = append(dto.Items, InvoiceLineDTO{
				ID:                   l.ID,
				ItemID:               l.ItemID,
				ItemName:             l.ItemName,
				Quantity:             l.Quantity,
				Rate:                 l.Rate,
				DiscountPercent:      l.DiscountPercent,
				DiscountAmount:       l.DiscountAmount,
				InvoiceDiscountShare: l.InvoiceDiscountShare,
				TaxPercent:           l.TaxPercent,
				TaxAmount:            l.TaxAmount,
				Amount:               l.Amount,
			})
		}
	}
	return dto
}
