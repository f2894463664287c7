package models

import (
	"github.com/erp/billing/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ItemModel is the persistence model for stock items
type ItemModel struct {
	CompanyAggregateModel
	Name        string          `gorm:"type:varchar(200);not null"`
	Code        string          `gorm:"type:varchar(50);not null;index"`
	Description string          `gorm:"type:text"`
	Unit        string          `gorm:"type:varchar(20);not null;default:'pcs'"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalesPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxApplied  bool            `gorm:"not null;default:false"`
	TaxPercent  decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	IsActive    bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the model to the domain Item
func (m *ItemModel) ToDomain() *catalog.Item {
	return &catalog.Item{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		Name:                 m.Name,
		Code:                 m.Code,
		Description:          m.Description,
		Unit:                 m.Unit,
		Quantity:             m.Quantity,
		Price:                m.Price,
		SalesPrice:           m.SalesPrice,
		TaxApplied:           m.TaxApplied,
		TaxPercent:           m.TaxPercent,
		IsActive:             m.IsActive,
	}
}

// FromDomain populates the model from the domain Item
func (m *ItemModel) FromDomain(i *catalog.Item) {
	m.FromDomainCompanyAggregateRoot(i.CompanyAggregateRoot)
	m.Name = i.Name
	m.Code = i.Code
	m.Description = i.Description
	m.Unit = i.Unit
	m.Quantity = i.Quantity
	m.Price = i.Price
	m.SalesPrice = i.SalesPrice
	m.TaxApplied = i.TaxApplied
	m.TaxPercent = i.TaxPercent
	m.IsActive = i.IsActive
}

// ItemModelFromDomain creates a model from the domain entity
func ItemModelFromDomain(i *catalog.Item) *ItemModel {
	m := &ItemModel{}
	m.FromDomain(i)
	return m
}

// PartyModel is the persistence model for parties
type PartyModel struct {
	CompanyAggregateModel
	Name      string `gorm:"type:varchar(200);not null"`
	Email     string `gorm:"type:varchar(200)"`
	Phone     string `gorm:"type:varchar(50)"`
	GSTNumber string `gorm:"column:gst_number;type:varchar(50)"`
	Address   string `gorm:"type:text"`
	PartyType string `gorm:"type:varchar(20);not null;default:'customer'"`
	Deleted   bool   `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (PartyModel) TableName() string {
	return "parties"
}

// ToDomain converts the model to the domain Party
func (m *PartyModel) ToDomain() *catalog.Party {
	return &catalog.Party{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		Name:                 m.Name,
		Email:                m.Email,
		Phone:                m.Phone,
		GSTNumber:            m.GSTNumber,
		Address:              m.Address,
		PartyType:            catalog.PartyType(m.PartyType),
		Deleted:              m.Deleted,
	}
}

// FromDomain populates the model from the domain Party
func (m *PartyModel) FromDomain(p *catalog.Party) {
	m.FromDomainCompanyAggregateRoot(p.CompanyAggregateRoot)
	m.Name = p.Name
	m.Email = p.Email
	m.Phone = p.Phone
	m.GSTNumber = p.GSTNumber
	m.Address = p.Address
	m.PartyType = string(p.PartyType)
	m.Deleted = p.Deleted
}

// PartyModelFromDomain creates a model from the domain entity
func PartyModelFromDomain(p *catalog.Party) *PartyModel {
	m := &PartyModel{}
	m.FromDomain(p)
	return m
}
