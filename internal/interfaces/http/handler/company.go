package handler

import (
	catalogapp "github.com/erp/billing/internal/application/catalog"
	tenantapp "github.com/erp/billing/internal/application/tenant"
	"github.com/gin-gonic/gin"
)

// CompanyHandler handles company creation and membership listing
type CompanyHandler struct {
	BaseHandler
	companyService *tenantapp.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companyService *tenantapp.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// Create handles POST /companies/create; the caller becomes the owner
func (h *CompanyHandler) Create(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req tenantapp.CreateCompanyInput
	if !h.bind(c, &req) {
		return
	}
	company, err := h.companyService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, company)
}

// Mine handles GET /companies/mine
func (h *CompanyHandler) Mine(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	memberships, err := h.companyService.Mine(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, memberships)
}

// CatalogHandler handles the thin party and item endpoints
type CatalogHandler struct {
	BaseHandler
	partyService *catalogapp.PartyService
	itemService  *catalogapp.ItemService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(partyService *catalogapp.PartyService, itemService *catalogapp.ItemService) *CatalogHandler {
	return &CatalogHandler{partyService: partyService, itemService: itemService}
}

// CreateParty handles POST /parties/create
func (h *CatalogHandler) CreateParty(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req catalogapp.CreatePartyRequest
	if !h.bind(c, &req) {
		return
	}
	party, err := h.partyService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, party)
}

// ListParties handles POST /parties/list
func (h *CatalogHandler) ListParties(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	result, err := h.partyService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, filter)
}

// CreateItem handles POST /items/create
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req catalogapp.CreateItemRequest
	if !h.bind(c, &req) {
		return
	}
	item, err := h.itemService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// ListItems handles POST /items/list
func (h *CatalogHandler) ListItems(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	result, err := h.itemService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, filter)
}
