package billing

import (
	"strings"

	"github.com/erp/billing/internal/domain/catalog"
	"github.com/google/uuid"
)

// InvoiceTypeCode distinguishes sales from purchase invoices
type InvoiceTypeCode string

const (
	InvoiceTypeSales    InvoiceTypeCode = "sales"
	InvoiceTypePurchase InvoiceTypeCode = "purchase"
)

// InvoiceType is a seeded invoice kind
type InvoiceType struct {
	ID   uuid.UUID
	Name string
	Code InvoiceTypeCode
}

// IsSales reports whether the type is a sales invoice
func (t InvoiceType) IsSales() bool {
	return InvoiceTypeCode(strings.ToLower(string(t.Code))) == InvoiceTypeSales
}

// IsPurchase reports whether the type is a purchase invoice
func (t InvoiceType) IsPurchase() bool {
	return InvoiceTypeCode(strings.ToLower(string(t.Code))) == InvoiceTypePurchase
}

// StockDirection maps the invoice kind to its stock effect
func (t InvoiceType) StockDirection() catalog.StockDirection {
	switch {
	case t.IsPurchase():
		return catalog.StockIn
	case t.IsSales():
		return catalog.StockOut
	}
	return catalog.StockUnchanged
}

// DefaultInvoiceTypes lists the seeded invoice types
func DefaultInvoiceTypes() []InvoiceType {
	return []InvoiceType{
		{Name: "Sales Invoice", Code: InvoiceTypeSales},
		{Name: "Purchase Invoice", Code: InvoiceTypePurchase},
	}
}

// PaymentType is a seeded settlement method
type PaymentType struct {
	ID   uuid.UUID
	Name string
}

// IsCash reports whether the payment type settles through the cash ledger
func (p PaymentType) IsCash() bool {
	switch strings.ToLower(strings.TrimSpace(p.Name)) {
	case "cash", "cash in hand":
		return true
	}
	return false
}

// DefaultPaymentTypes lists the seeded payment types
func DefaultPaymentTypes() []string {
	return []string{"Cash", "Bank"}
}

// UnitType is a seeded unit of measure
type UnitType struct {
	Name string
	Code string
}

// DefaultUnitTypes lists the seeded units
func DefaultUnitTypes() []UnitType {
	return []UnitType{
		{Name: "Pieces", Code: "pcs"},
		{Name: "Kilogram", Code: "kg"},
		{Name: "Litre", Code: "ltr"},
		{Name: "Box", Code: "box"},
		{Name: "Meter", Code: "mtr"},
	}
}
