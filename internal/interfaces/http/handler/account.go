package handler

import (
	ledgerapp "github.com/erp/billing/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AccountHandler handles bank account and cash ledger endpoints
type AccountHandler struct {
	BaseHandler
	accountService *ledgerapp.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *ledgerapp.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// BankAccountRequest creates or edits a bank account.
// The opening balance is only read on create.
type BankAccountRequest struct {
	BankName       string          `json:"bank_name" binding:"required,min=1,max=100"`
	AccountNumber  string          `json:"account_number" binding:"required,min=1,max=50"`
	IFSC           string          `json:"ifsc_code" binding:"max=20"`
	AccountHolder  string          `json:"account_holder_name" binding:"max=100"`
	OpeningBalance decimal.Decimal `json:"opening_balance" binding:"gte=0"`
}

func (r BankAccountRequest) input() ledgerapp.BankAccountInput {
	return ledgerapp.BankAccountInput{
		BankName:       r.BankName,
		AccountNumber:  r.AccountNumber,
		IFSC:           r.IFSC,
		AccountHolder:  r.AccountHolder,
		OpeningBalance: r.OpeningBalance,
	}
}

// CashLedgerRequest creates a cash ledger
type CashLedgerRequest struct {
	Name           string          `json:"name" binding:"max=100"`
	OpeningBalance decimal.Decimal `json:"opening_balance" binding:"gte=0"`
}

// RenameCashLedgerRequest edits a cash ledger
type RenameCashLedgerRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// ListBankAccounts handles POST /bank-accounts/list
func (h *AccountHandler) ListBankAccounts(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	accounts, total, err := h.accountService.ListBankAccounts(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, accounts, total, filter)
}

// CreateBankAccount handles POST /bank-accounts/create
func (h *AccountHandler) CreateBankAccount(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req BankAccountRequest
	if !h.bind(c, &req) {
		return
	}
	account, err := h.accountService.CreateBankAccount(c.Request.Context(), actor, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// UpdateBankAccount handles PUT /bank-accounts/:id/update
func (h *AccountHandler) UpdateBankAccount(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req BankAccountRequest
	if !h.bind(c, &req) {
		return
	}
	account, err := h.accountService.UpdateBankAccount(c.Request.Context(), actor, id, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// DeleteBankAccount handles DELETE /bank-accounts/:id/delete
func (h *AccountHandler) DeleteBankAccount(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.accountService.DeleteBankAccount(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Deleted(c, "Bank account deleted successfully.")
}

// BankTransactions handles GET /bank-accounts/:id/transactions
func (h *AccountHandler) BankTransactions(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	filter, ok := h.queryFilter(c)
	if !ok {
		return
	}
	page, err := h.accountService.BankTransactions(c.Request.Context(), actor, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, filter)
}

// CreateCashLedger handles POST /cash-ledger/create
func (h *AccountHandler) CreateCashLedger(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CashLedgerRequest
	if !h.bind(c, &req) {
		return
	}
	ledger, err := h.accountService.CreateCashLedger(c.Request.Context(), actor, ledgerapp.CashLedgerInput{
		Name:           req.Name,
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ledger)
}

// RenameCashLedger handles PUT /cash-ledger/:id/edit
func (h *AccountHandler) RenameCashLedger(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req RenameCashLedgerRequest
	if !h.bind(c, &req) {
		return
	}
	ledger, err := h.accountService.RenameCashLedger(c.Request.Context(), actor, id, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ledger)
}

// DeleteCashLedger handles DELETE /cash-ledger/:id/delete
func (h *AccountHandler) DeleteCashLedger(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.accountService.DeleteCashLedger(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Deleted(c, "Cash ledger deleted successfully.")
}

// ListCashLedgers handles GET /cash-ledger
func (h *AccountHandler) ListCashLedgers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ledgers, err := h.accountService.ListCashLedgers(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ledgers)
}

// GetCashLedger handles GET /cash-ledger/:id
func (h *AccountHandler) GetCashLedger(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	ledger, err := h.accountService.GetCashLedger(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ledger)
}

// CashTransactions handles GET /cash-ledger/:id/transactions
func (h *AccountHandler) CashTransactions(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	filter, ok := h.queryFilter(c)
	if !ok {
		return
	}
	page, err := h.accountService.CashTransactions(c.Request.Context(), actor, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, filter)
}
