package catalog

import (
	"github.com/erp/billing/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateItemRequest represents a request to create a stock item
type CreateItemRequest struct {
	Name       string          `json:"name" binding:"required,min=1,max=200"`
	Code       string          `json:"code" binding:"required,min=1,max=50"`
	Unit       string          `json:"unit" binding:"max=20"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	SalesPrice decimal.Decimal `json:"sales_price"`
	TaxApplied bool            `json:"tax_applied"`
	TaxPercent decimal.Decimal `json:"tax_percent"`
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	CompanyID  uuid.UUID       `json:"company"`
	Name       string          `json:"name"`
	Code       string          `json:"code"`
	Unit       string          `json:"unit"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	SalesPrice decimal.Decimal `json:"sales_price"`
	TaxApplied bool            `json:"tax_applied"`
	TaxPercent decimal.Decimal `json:"tax_percent"`
	IsActive   bool            `json:"is_active"`
}

// CreatePartyRequest represents a request to create a party
type CreatePartyRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=200"`
	Email     string `json:"email" binding:"omitempty,email,max=100"`
	Phone     string `json:"phone" binding:"max=20"`
	GSTNumber string `json:"gst_number" binding:"max=20"`
	Address   string `json:"address" binding:"max=500"`
	PartyType string `json:"party_type" binding:"omitempty,oneof=customer supplier other"`
}

// PartyResponse represents a party in API responses
type PartyResponse struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	GSTNumber string    `json:"gst_number,omitempty"`
	Address   string    `json:"address,omitempty"`
	PartyType string    `json:"party_type"`
}

// ListResult is one page of a list query
type ListResult[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// ToItemResponse converts a domain item to its response
func ToItemResponse(i *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:         i.ID,
		CompanyID:  i.CompanyID,
		Name:       i.Name,
		Code:       i.Code,
		Unit:       i.Unit,
		Quantity:   i.Quantity,
		Price:      i.Price,
		SalesPrice: i.SalesPrice,
		TaxApplied: i.TaxApplied,
		TaxPercent: i.TaxPercent,
		IsActive:   i.IsActive,
	}
}

// ToPartyResponse converts a domain party to its response
func ToPartyResponse(p *catalog.Party) PartyResponse {
	return PartyResponse{
		ID:        p.ID,
		CompanyID: p.CompanyID,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		GSTNumber: p.GSTNumber,
		Address:   p.Address,
		PartyType: string(p.PartyType),
	}
}
