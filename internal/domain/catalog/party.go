package catalog

import (
	"strings"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
)

// PartyType classifies a party
type PartyType string

const (
	PartyCustomer PartyType = "customer"
	PartySupplier PartyType = "supplier"
	PartyOther    PartyType = "other"
)

// IsValid checks if the party type is known
func (t PartyType) IsValid() bool {
	switch t {
	case PartyCustomer, PartySupplier, PartyOther:
		return true
	}
	return false
}

// Party is a customer or supplier referenced by invoices
type Party struct {
	shared.CompanyAggregateRoot
	Name      string
	Email     string
	Phone     string
	GSTNumber string
	Address   string
	PartyType PartyType
	Deleted   bool
}

// NewParty creates a party of the given type; empty type defaults to customer
func NewParty(companyID uuid.UUID, name string, partyType PartyType) (*Party, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.InvalidInput("Party name cannot be empty")
	}
	if partyType == "" {
		partyType = PartyCustomer
	}
	if !partyType.IsValid() {
		return nil, shared.InvalidInput("Party type must be customer, supplier or other")
	}
	return &Party{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 name,
		PartyType:            partyType,
	}, nil
}
