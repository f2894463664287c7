package models

import (
	"time"

	"github.com/erp/billing/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceTypeModel is a seeded invoice type
type InvoiceTypeModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Name string    `gorm:"type:varchar(100);not null"`
	Code string    `gorm:"type:varchar(20);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (InvoiceTypeModel) TableName() string {
	return "invoice_types"
}

// ToDomain converts the model to the domain InvoiceType
func (m *InvoiceTypeModel) ToDomain() billing.InvoiceType {
	return billing.InvoiceType{ID: m.ID, Name: m.Name, Code: billing.InvoiceTypeCode(m.Code)}
}

// PaymentTypeModel is a seeded payment type
type PaymentTypeModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Name string    `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (PaymentTypeModel) TableName() string {
	return "payment_types"
}

// ToDomain converts the model to the domain PaymentType
func (m *PaymentTypeModel) ToDomain() billing.PaymentType {
	return billing.PaymentType{ID: m.ID, Name: m.Name}
}

// PaymentStatusModel is a seeded payment status; ID matches billing.PaymentStatus
type PaymentStatusModel struct {
	ID    int    `gorm:"primary_key;autoIncrement:false"`
	Label string `gorm:"type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (PaymentStatusModel) TableName() string {
	return "payment_statuses"
}

// UnitTypeModel is a seeded unit of measure
type UnitTypeModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Name string    `gorm:"type:varchar(50);not null"`
	Code string    `gorm:"type:varchar(20);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (UnitTypeModel) TableName() string {
	return "unit_types"
}

// InvoiceModel is the persistence model for invoice headers
type InvoiceModel struct {
	CompanyAggregateModel
	InvoiceNumber    string          `gorm:"type:varchar(50);not null;index"`
	PartyID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceTypeID    uuid.UUID       `gorm:"type:uuid;not null"`
	InvoiceTypeCode  string          `gorm:"type:varchar(20);not null"`
	InvoiceDate      time.Time       `gorm:"not null"`
	Notes            string          `gorm:"type:text"`
	DiscountPercent  decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RemainingBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OverpaidAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentStatusID  int             `gorm:"not null;default:1"`
	PaymentMode      string          `gorm:"type:varchar(50)"`
	PaymentTypeID    *uuid.UUID      `gorm:"type:uuid"`
	BankAccountID    *uuid.UUID      `gorm:"type:uuid"`
	IsDeleted        bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the header and the given lines to the domain Invoice
func (m *InvoiceModel) ToDomain(lines []InvoiceLineModel) *billing.Invoice {
	inv := &billing.Invoice{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		InvoiceNumber:        m.InvoiceNumber,
		PartyID:              m.PartyID,
		InvoiceTypeID:        m.InvoiceTypeID,
		InvoiceTypeCode:      billing.InvoiceTypeCode(m.InvoiceTypeCode),
		InvoiceDate:          m.InvoiceDate,
		Notes:                m.Notes,
		DiscountPercent:      m.DiscountPercent,
		DiscountAmount:       m.DiscountAmount,
		Subtotal:             m.Subtotal,
		TaxAmount:            m.TaxAmount,
		Total:                m.Total,
		AmountPaid:           m.AmountPaid,
		RemainingBalance:     m.RemainingBalance,
		OverpaidAmount:       m.OverpaidAmount,
		PaymentStatus:        billing.PaymentStatus(m.PaymentStatusID),
		PaymentMode:          m.PaymentMode,
		PaymentTypeID:        m.PaymentTypeID,
		BankAccountID:        m.BankAccountID,
		IsDeleted:            m.IsDeleted,
		Lines:                make([]billing.InvoiceLine, 0, len(lines)),
	}
	for i := range lines {
		inv.Lines = append(inv.Lines, lines[i].ToDomain())
	}
	return inv
}

// FromDomain populates the header from the domain Invoice
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainCompanyAggregateRoot(inv.CompanyAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.PartyID = inv.PartyID
	m.InvoiceTypeID = inv.InvoiceTypeID
	m.InvoiceTypeCode = string(inv.InvoiceTypeCode)
	m.InvoiceDate = inv.InvoiceDate
	m.Notes = inv.Notes
	m.DiscountPercent = inv.DiscountPercent
	m.DiscountAmount = inv.DiscountAmount
	m.Subtotal = inv.Subtotal
	m.TaxAmount = inv.TaxAmount
	m.Total = inv.Total
	m.AmountPaid = inv.AmountPaid
	m.RemainingBalance = inv.RemainingBalance
	m.OverpaidAmount = inv.OverpaidAmount
	m.PaymentStatusID = int(inv.PaymentStatus)
	m.PaymentMode = inv.PaymentMode
	m.PaymentTypeID = inv.PaymentTypeID
	m.BankAccountID = inv.BankAccountID
	m.IsDeleted = inv.IsDeleted
}

// InvoiceModelFromDomain creates a header model from the domain entity
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceLineModel is one persisted invoice line. Position keeps request order.
type InvoiceLineModel struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position             int             `gorm:"not null"`
	ItemID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemName             string          `gorm:"type:varchar(200);not null"`
	Quantity             decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Rate                 decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountPercent      decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	DiscountAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	InvoiceDiscountShare decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxPercent           decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	TaxAmount            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Amount               decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	StockMoved           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// ToDomain converts the model to the domain InvoiceLine
func (m *InvoiceLineModel) ToDomain() billing.InvoiceLine {
	return billing.InvoiceLine{
		ID:                   m.ID,
		InvoiceID:            m.InvoiceID,
		ItemID:               m.ItemID,
		ItemName:             m.ItemName,
		Quantity:             m.Quantity,
		Rate:                 m.Rate,
		DiscountPercent:      m.DiscountPercent,
		DiscountAmount:       m.DiscountAmount,
		InvoiceDiscountShare: m.InvoiceDiscountShare,
		TaxPercent:           m.TaxPercent,
		TaxAmount:            m.TaxAmount,
		Amount:               m.Amount,
		StockMoved:           m.StockMoved,
	}
}

// InvoiceLineModels converts the invoice's lines, numbering them in order
func InvoiceLineModels(inv *billing.Invoice) []InvoiceLineModel {
	out := make([]InvoiceLineModel, 0, len(inv.Lines))
	for i, l := range inv.Lines {
		id := l.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		out = append(out, InvoiceLineModel{
			ID:                   id,
			InvoiceID:            inv.ID,
			Position:             i,
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
			StockMoved:           l.StockMoved,
		})
	}
	return out
}
