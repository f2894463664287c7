package handler

import (
	ledgerapp "github.com/erp/billing/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles payment-in, payment-out and bank transfers
type PaymentHandler struct {
	BaseHandler
	postingService  *ledgerapp.PostingService
	transferService *ledgerapp.TransferService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(postingService *ledgerapp.PostingService, transferService *ledgerapp.TransferService) *PaymentHandler {
	return &PaymentHandler{
		postingService:  postingService,
		transferService: transferService,
	}
}

// PaymentInRequest records money received against an invoice.
// Without a bank account the company cash ledger is credited.
type PaymentInRequest struct {
	Invoice     string          `json:"invoice" binding:"required,uuid"`
	BankAccount *string         `json:"bank_account" binding:"omitempty,uuid"`
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Note        string          `json:"note" binding:"max=500"`
}

// PaymentOutRequest records money paid out, optionally against an invoice
type PaymentOutRequest struct {
	Invoice     *string         `json:"invoice" binding:"omitempty,uuid"`
	BankAccount *string         `json:"bank_account" binding:"omitempty,uuid"`
	PaymentType *string         `json:"payment_type" binding:"omitempty,uuid"`
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Note        string          `json:"note" binding:"max=500"`
}

// TransferRequest moves money between two bank accounts of the company
type TransferRequest struct {
	FromAccount string          `json:"from_account" binding:"required,uuid"`
	ToAccount   string          `json:"to_account" binding:"required,uuid"`
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Note        string          `json:"note" binding:"max=500"`
}

func (r TransferRequest) input() ledgerapp.TransferInput {
	return ledgerapp.TransferInput{
		FromAccountID: uuid.MustParse(r.FromAccount),
		ToAccountID:   uuid.MustParse(r.ToAccount),
		Amount:        r.Amount,
		Note:          r.Note,
	}
}

// PaymentIn handles POST /payments/payment-in
func (h *PaymentHandler) PaymentIn(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req PaymentInRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.postingService.PaymentIn(c.Request.Context(), actor, ledgerapp.PaymentInInput{
		InvoiceID:     uuid.MustParse(req.Invoice),
		BankAccountID: optionalID(req.BankAccount),
		Amount:        req.Amount,
		Note:          req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// PaymentOut handles POST /payments/payment-out
func (h *PaymentHandler) PaymentOut(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req PaymentOutRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.postingService.PaymentOut(c.Request.Context(), actor, ledgerapp.PaymentOutInput{
		InvoiceID:     optionalID(req.Invoice),
		BankAccountID: optionalID(req.BankAccount),
		PaymentTypeID: optionalID(req.PaymentType),
		Amount:        req.Amount,
		Note:          req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// CreateTransfer handles POST /payments/bank-transfer
func (h *PaymentHandler) CreateTransfer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req TransferRequest
	if !h.bind(c, &req) {
		return
	}
	transfer, err := h.transferService.Create(c.Request.Context(), actor, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transfer)
}

// UpdateTransfer handles PUT /payments/bank-transfer/update/:id
func (h *PaymentHandler) UpdateTransfer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req TransferRequest
	if !h.bind(c, &req) {
		return
	}
	transfer, err := h.transferService.Update(c.Request.Context(), actor, id, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

// DeleteTransfer handles DELETE /payments/bank-transfer/:id/delete
func (h *PaymentHandler) DeleteTransfer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.transferService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Deleted(c, "Bank transfer reversed and deleted.")
}

// ListTransfers handles GET /payments/bank-transfer
func (h *PaymentHandler) ListTransfers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	filter, ok := h.queryFilter(c)
	if !ok {
		return
	}
	transfers, total, err := h.transferService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, transfers, total, filter)
}
