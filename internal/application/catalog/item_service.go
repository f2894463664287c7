// Package catalog exposes the item and party collaborators that invoices
// reference.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/billing/internal/domain/catalog"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"go.uber.org/zap"
)

// ItemService handles item operations
type ItemService struct {
	itemRepo catalog.ItemRepository
	logger   *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(itemRepo catalog.ItemRepository, logger *zap.Logger) *ItemService {
	return &ItemService{itemRepo: itemRepo, logger: logger}
}

// Create creates a new item in the actor's company
func (s *ItemService) Create(ctx context.Context, actor tenant.Actor, req CreateItemRequest) (*ItemResponse, error) {
	code := strings.TrimSpace(req.Code)
	exists, err := s.itemRepo.ExistsByCode(ctx, actor.CompanyID, code)
	if err != nil {
		return nil, fmt.Errorf("check item code: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Item with this code already exists")
	}

	item, err := catalog.NewItem(actor.CompanyID, catalog.NewItemInput{
		Name:       req.Name,
		Code:       code,
		Unit:       req.Unit,
		Quantity:   req.Quantity,
		Price:      req.Price,
		SalesPrice: req.SalesPrice,
		TaxApplied: req.TaxApplied,
		TaxPercent: req.TaxPercent,
	})
	if err != nil {
		return nil, err
	}
	item.SetCreatedBy(actor.UserID)

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}
	s.logger.Info("item created",
		zap.String("company_id", actor.CompanyID.String()),
		zap.String("item_id", item.ID.String()),
		zap.String("code", item.Code))
	resp := ToItemResponse(item)
	return &resp, nil
}

// List returns a page of the company's items
func (s *ItemService) List(ctx context.Context, actor tenant.Actor, filter shared.Filter) (*ListResult[ItemResponse], error) {
	items, total, err := s.itemRepo.FindAll(ctx, actor.CompanyID, filter)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	out := &ListResult[ItemResponse]{Items: make([]ItemResponse, 0, len(items)), Total: total, Page: filter.Page, PageSize: filter.Limit()}
	for i := range items {
		out.Items = append(out.Items, ToItemResponse(&items[i]))
	}
	return out, nil
}
