package catalog

import (
	"context"
	"fmt"

	"github.com/erp/billing/internal/domain/catalog"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"go.uber.org/zap"
)

// PartyService handles party operations
type PartyService struct {
	partyRepo catalog.PartyRepository
	logger    *zap.Logger
}

// NewPartyService creates a new PartyService
func NewPartyService(partyRepo catalog.PartyRepository, logger *zap.Logger) *PartyService {
	return &PartyService{partyRepo: partyRepo, logger: logger}
}

// Create creates a party; names are unique per company
func (s *PartyService) Create(ctx context.Context, actor tenant.Actor, req CreatePartyRequest) (*PartyResponse, error) {
	party, err := catalog.NewParty(actor.CompanyID, req.Name, catalog.PartyType(req.PartyType))
	if err != nil {
		return nil, err
	}

	exists, err := s.partyRepo.ExistsByName(ctx, actor.CompanyID, party.Name)
	if err != nil {
		return nil, fmt.Errorf("check party name: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Party with this name already exists")
	}

	party.Email = req.Email
	party.Phone = req.Phone
	party.GSTNumber = req.GSTNumber
	party.Address = req.Address
	party.SetCreatedBy(actor.UserID)

	if err := s.partyRepo.Create(ctx, party); err != nil {
		return nil, fmt.Errorf("save party: %w", err)
	}
	s.logger.Info("party created",
		zap.String("company_id", actor.CompanyID.String()),
		zap.String("party_id", party.ID.String()))
	resp := ToPartyResponse(party)
	return &resp, nil
}

// List returns a page of the company's parties
func (s *PartyService) List(ctx context.Context, actor tenant.Actor, filter shared.Filter) (*ListResult[PartyResponse], error) {
	parties, total, err := s.partyRepo.FindAll(ctx, actor.CompanyID, filter)
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	out := &ListResult[PartyResponse]{Items: make([]PartyResponse, 0, len(parties)), Total: total, Page: filter.Page, PageSize: filter.Limit()}
	for i := range parties {
		out.Items = append(out.Items, ToPartyResponse(&parties[i]))
	}
	return out, nil
}
