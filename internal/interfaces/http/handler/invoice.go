package handler

import (
	"time"

	billingapp "github.com/erp/billing/internal/application/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// InvoiceLineRequest is one requested line
type InvoiceLineRequest struct {
	Item            string          `json:"item" binding:"required,uuid"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required,gt=0"`
	DiscountPercent decimal.Decimal `json:"discount_percent" binding:"gte=0,lte=100"`
}

// CreateInvoiceRequest is the body of POST /invoices/create.
// The company fields are read by the company middleware.
type CreateInvoiceRequest struct {
	Party           string               `json:"party" binding:"required,uuid"`
	InvoiceType     string               `json:"invoice_type" binding:"required,uuid"`
	InvoiceDate     *time.Time           `json:"invoice_date"`
	Notes           string               `json:"notes" binding:"max=2000"`
	DiscountPercent decimal.Decimal      `json:"discount_percent" binding:"gte=0,lte=100"`
	Items           []InvoiceLineRequest `json:"items" binding:"required,min=1,dive"`
	AmountPaid      decimal.Decimal      `json:"amount_paid" binding:"gte=0"`
	PaymentMode     string               `json:"payment_mode" binding:"max=50"`
	PaymentType     *string              `json:"payment_type" binding:"omitempty,uuid"`
	BankAccount     *string              `json:"bank_account" binding:"omitempty,uuid"`
}

// UpdateInvoiceRequest is the body of PUT /invoices/:id/update
type UpdateInvoiceRequest struct {
	Party           string               `json:"party" binding:"required,uuid"`
	InvoiceType     string               `json:"invoice_type" binding:"required,uuid"`
	InvoiceNumber   string               `json:"invoice_number" binding:"max=50"`
	InvoiceDate     *time.Time           `json:"invoice_date"`
	Notes           string               `json:"notes" binding:"max=2000"`
	DiscountPercent decimal.Decimal      `json:"discount_percent" binding:"gte=0,lte=100"`
	Items           []InvoiceLineRequest `json:"items" binding:"required,min=1,dive"`
	AmountPaid      *decimal.Decimal     `json:"amount_paid"`
	PaymentMode     string               `json:"payment_mode" binding:"max=50"`
	PaymentType     *string              `json:"payment_type" binding:"omitempty,uuid"`
	BankAccount     *string              `json:"bank_account" binding:"omitempty,uuid"`
}

// Create handles POST /invoices/create
func (h *InvoiceHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateInvoiceRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.invoiceService.Create(c.Request.Context(), actor, billingapp.CreateInvoiceInput{
		PartyID:         uuid.MustParse(req.Party),
		InvoiceTypeID:   uuid.MustParse(req.InvoiceType),
		InvoiceDate:     req.InvoiceDate,
		Notes:           req.Notes,
		DiscountPercent: req.DiscountPercent,
		Items:           toLineRequests(req.Items),
		AmountPaid:      req.AmountPaid,
		PaymentMode:     req.PaymentMode,
		PaymentTypeID:   optionalID(req.PaymentType),
		BankAccountID:   optionalID(req.BankAccount),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Update handles PUT /invoices/:id/update
func (h *InvoiceHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateInvoiceRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.invoiceService.Update(c.Request.Context(), actor, id, billingapp.UpdateInvoiceInput{
		PartyID:         uuid.MustParse(req.Party),
		InvoiceTypeID:   uuid.MustParse(req.InvoiceType),
		InvoiceNumber:   req.InvoiceNumber,
		InvoiceDate:     req.InvoiceDate,
		Notes:           req.Notes,
		DiscountPercent: req.DiscountPercent,
		Items:           toLineRequests(req.Items),
		AmountPaid:      req.AmountPaid,
		PaymentMode:     req.PaymentMode,
		PaymentTypeID:   optionalID(req.PaymentType),
		BankAccountID:   optionalID(req.BankAccount),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete handles DELETE /invoices/:id/delete
func (h *InvoiceHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.invoiceService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Deleted(c, "Invoice deleted successfully.")
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	inv, err := h.invoiceService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// List handles POST /invoices/list
func (h *InvoiceHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	page, err := h.invoiceService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, filter)
}

// Types handles GET /invoices/types
func (h *InvoiceHandler) Types(c *gin.Context) {
	types, err := h.invoiceService.InvoiceTypes(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, types)
}

// PaymentTypes handles GET /invoices/payment-types
func (h *InvoiceHandler) PaymentTypes(c *gin.Context) {
	types, err := h.invoiceService.PaymentTypes(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, types)
}

func toLineRequests(lines []InvoiceLineRequest) []billingapp.LineRequest {
	out := make([]billingapp.LineRequest, 0, len(lines))
	for _, l := range lines {
		out = append(out, billingapp.LineRequest{
			ItemID:          uuid.MustParse(l.Item),
			Quantity:        l.Quantity,
			DiscountPercent: l.DiscountPercent,
		})
	}
	return out
}

// optionalID parses an already validated optional uuid
func optionalID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id := uuid.MustParse(*s)
	return &id
}
