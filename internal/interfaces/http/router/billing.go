package router

import (
	"time"

	billingapp "github.com/erp/billing/internal/application/billing"
	catalogapp "github.com/erp/billing/internal/application/catalog"
	identityapp "github.com/erp/billing/internal/application/identity"
	ledgerapp "github.com/erp/billing/internal/application/ledger"
	tenantapp "github.com/erp/billing/internal/application/tenant"
	"github.com/erp/billing/internal/application/uow"
	"github.com/erp/billing/internal/domain/identity"
	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/infrastructure/telemetry"
	"github.com/erp/billing/internal/interfaces/http/handler"
	"github.com/erp/billing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services is the application layer behind the billing API
type Services struct {
	Resolver  *tenantapp.Resolver
	Gate      *identityapp.PermissionGate
	Companies *tenantapp.CompanyService
	Roles     *identityapp.RoleService
	Staff     *identityapp.StaffService
	Invoices  *billingapp.InvoiceService
	Posting   *ledgerapp.PostingService
	Transfers *ledgerapp.TransferService
	Accounts  *ledgerapp.AccountService
	Parties   *catalogapp.PartyService
	Items     *catalogapp.ItemService
}

// NewServices wires every application service on one unit-of-work scope.
// repos is the non-transactional repository set used for reads.
func NewServices(scope uow.TransactionScope, repos uow.Repositories, logger *zap.Logger) Services {
	return Services{
		Resolver:  tenantapp.NewResolver(repos.CompanyRepo(), repos.StaffRepo(), logger),
		Gate:      identityapp.NewPermissionGate(repos.PermissionRepo(), repos.ModuleRepo(), logger),
		Companies: tenantapp.NewCompanyService(scope, repos.CompanyRepo(), repos.StaffRepo(), logger),
		Roles:     identityapp.NewRoleService(scope, repos.RoleRepo(), logger),
		Staff:     identityapp.NewStaffService(scope, repos.StaffRepo(), logger),
		Invoices:  billingapp.NewInvoiceService(scope, repos.InvoiceRepo(), repos.ReferenceRepo(), repos.PartyRepo(), logger),
		Posting:   ledgerapp.NewPostingService(scope, logger),
		Transfers: ledgerapp.NewTransferService(scope, repos.TransferRepo(), logger),
		Accounts:  ledgerapp.NewAccountService(scope, repos.BankAccountRepo(), repos.CashLedgerRepo(), repos.TransactionRepo(), logger),
		Parties:   catalogapp.NewPartyService(repos.PartyRepo(), logger),
		Items:     catalogapp.NewItemService(repos.ItemRepo(), logger),
	}
}

// WithMetrics points the posting services at m. A nil m leaves them
// uninstrumented.
func (s Services) WithMetrics(m *telemetry.BillingMetrics) Services {
	s.Invoices.WithMetrics(m)
	s.Posting.WithMetrics(m)
	s.Transfers.WithMetrics(m)
	return s
}

// BillingConfig holds what the billing route groups need besides services
type BillingConfig struct {
	Services       Services
	Idempotency    shared.IdempotencyStore
	IdempotencyTTL time.Duration
	Metrics        *telemetry.BillingMetrics
	Logger         *zap.Logger
}

// billingRoutes builds the per-route middleware chains
type billingRoutes struct {
	cfg         BillingConfig
	idempotency gin.HandlerFunc
}

// company resolves the tenant for a route, optionally from a referenced record
func (b *billingRoutes) company(record middleware.RecordSource) gin.HandlerFunc {
	return middleware.CompanyContextWithConfig(middleware.CompanyConfig{
		Resolver: b.cfg.Services.Resolver,
		Record:   record,
		Logger:   b.cfg.Logger,
	})
}

// gated chains company resolution, the permission check and the handler
func (b *billingRoutes) gated(module string, action identity.Action, record middleware.RecordSource, handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{
		b.company(record),
		middleware.RequirePermissionWithConfig(b.cfg.Services.Gate, module, action, middleware.PermissionConfig{Logger: b.cfg.Logger}),
	}
	return append(chain, handlers...)
}

// BillingGroups returns the domain groups of the billing API. They expect
// to be mounted under a JWT-authenticated API group.
func BillingGroups(cfg BillingConfig) []*DomainGroup {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	b := &billingRoutes{cfg: cfg}
	if cfg.Idempotency != nil {
		b.idempotency = middleware.Idempotency(middleware.IdempotencyConfig{
			Store:   cfg.Idempotency,
			TTL:     cfg.IdempotencyTTL,
			Metrics: cfg.Metrics,
			Logger:  cfg.Logger,
		})
	}
	svc := cfg.Services
	invoiceRecord := middleware.FromPathParam("id", svc.Invoices.CompanyOf)

	invoices := handler.NewInvoiceHandler(svc.Invoices)
	invoiceRoutes := NewDomainGroup("invoices", "/invoices")
	invoiceRoutes.GET("/types", invoices.Types)
	invoiceRoutes.GET("/payment-types", invoices.PaymentTypes)
	invoiceRoutes.POST("/create", b.gated(identity.ModuleInvoice, identity.ActionCreate, nil, invoices.Create)...)
	invoiceRoutes.POST("/list", b.gated(identity.ModuleInvoice, identity.ActionGetUsingPost, nil, invoices.List)...)
	invoiceRoutes.PUT("/:id/update", b.gated(identity.ModuleInvoice, identity.ActionEdit, invoiceRecord, invoices.Update)...)
	invoiceRoutes.DELETE("/:id/delete", b.gated(identity.ModuleInvoice, identity.ActionDelete, invoiceRecord, invoices.Delete)...)
	invoiceRoutes.GET("/:id", b.gated(identity.ModuleInvoice, identity.ActionViewSpecific, invoiceRecord, invoices.Get)...)

	payments := handler.NewPaymentHandler(svc.Posting, svc.Transfers)
	paymentRoutes := NewDomainGroup("payments", "/payments")
	paymentRoutes.POST("/payment-in", b.gated(identity.ModulePayment, identity.ActionCreate,
		middleware.FromBodyField("invoice", svc.Invoices.CompanyOf), b.replayGuard(payments.PaymentIn)...)...)
	paymentRoutes.POST("/payment-out", b.gated(identity.ModulePayment, identity.ActionCreate,
		middleware.FromBodyField("invoice", svc.Invoices.CompanyOf), b.replayGuard(payments.PaymentOut)...)...)
	paymentRoutes.POST("/bank-transfer", b.gated(identity.ModuleBankTransfer, identity.ActionCreate, nil, b.replayGuard(payments.CreateTransfer)...)...)
	paymentRoutes.PUT("/bank-transfer/update/:id", b.gated(identity.ModuleBankTransfer, identity.ActionEdit, nil, payments.UpdateTransfer)...)
	paymentRoutes.DELETE("/bank-transfer/:id/delete", b.gated(identity.ModuleBankTransfer, identity.ActionDelete, nil, payments.DeleteTransfer)...)
	paymentRoutes.GET("/bank-transfer", b.gated(identity.ModuleBankTransfer, identity.ActionView, nil, payments.ListTransfers)...)

	accounts := handler.NewAccountHandler(svc.Accounts)
	bankRoutes := NewDomainGroup("bank-accounts", "/bank-accounts")
	bankRoutes.POST("/list", b.gated(identity.ModuleBankTransaction, identity.ActionGetUsingPost, nil, accounts.ListBankAccounts)...)
	bankRoutes.POST("/create", b.gated(identity.ModuleBankTransaction, identity.ActionCreate, nil, accounts.CreateBankAccount)...)
	bankRoutes.PUT("/:id/update", b.gated(identity.ModuleBankTransaction, identity.ActionEdit, nil, accounts.UpdateBankAccount)...)
	bankRoutes.DELETE("/:id/delete", b.gated(identity.ModuleBankTransaction, identity.ActionDelete, nil, accounts.DeleteBankAccount)...)
	bankRoutes.GET("/:id/transactions", b.gated(identity.ModuleBankTransaction, identity.ActionViewSpecific, nil, accounts.BankTransactions)...)

	cashRoutes := NewDomainGroup("cash-ledger", "/cash-ledger")
	cashRoutes.POST("/create", b.gated(identity.ModuleCashLedger, identity.ActionCreate, nil, accounts.CreateCashLedger)...)
	cashRoutes.PUT("/:id/edit", b.gated(identity.ModuleCashLedger, identity.ActionEdit, nil, accounts.RenameCashLedger)...)
	cashRoutes.DELETE("/:id/delete", b.gated(identity.ModuleCashLedger, identity.ActionDelete, nil, accounts.DeleteCashLedger)...)
	cashRoutes.GET("", b.gated(identity.ModuleCashLedger, identity.ActionView, nil, accounts.ListCashLedgers)...)
	cashRoutes.GET("/:id", b.gated(identity.ModuleCashLedger, identity.ActionViewSpecific, nil, accounts.GetCashLedger)...)
	cashRoutes.GET("/:id/transactions", b.gated(identity.ModuleCashLedger, identity.ActionViewSpecific, nil, accounts.CashTransactions)...)

	staff := handler.NewStaffHandler(svc.Roles, svc.Staff, svc.Gate)
	staffRoutes := NewDomainGroup("staff", "/staff")
	staffRoutes.POST("/roles/create", b.gated(identity.ModuleRoles, identity.ActionCreate, nil, staff.CreateRole)...)
	staffRoutes.PUT("/roles/:id/update", b.gated(identity.ModuleRoles, identity.ActionEdit, nil, staff.UpdateRole)...)
	staffRoutes.DELETE("/roles/:id/delete", b.gated(identity.ModuleRoles, identity.ActionDelete, nil, staff.DeleteRole)...)
	staffRoutes.GET("/roles", b.gated(identity.ModuleRoles, identity.ActionView, nil, staff.ListRoles)...)
	staffRoutes.POST("/assign", b.gated(identity.ModuleStaff, identity.ActionCreate, nil, staff.Assign)...)
	staffRoutes.DELETE("/:id/delete", b.gated(identity.ModuleStaff, identity.ActionDelete, nil, staff.Remove)...)
	staffRoutes.GET("", b.gated(identity.ModuleStaff, identity.ActionView, nil, staff.List)...)
	// every member may read their own matrix
	staffRoutes.GET("/my-permissions", b.company(nil), staff.MyPermissions)
	staffRoutes.GET("/modules", staff.Modules)

	companies := handler.NewCompanyHandler(svc.Companies)
	companyRoutes := NewDomainGroup("companies", "/companies")
	companyRoutes.POST("/create", companies.Create)
	companyRoutes.GET("/mine", companies.Mine)

	catalog := handler.NewCatalogHandler(svc.Parties, svc.Items)
	partyRoutes := NewDomainGroup("parties", "/parties")
	partyRoutes.POST("/create", b.gated(identity.ModuleParty, identity.ActionCreate, nil, catalog.CreateParty)...)
	partyRoutes.POST("/list", b.gated(identity.ModuleParty, identity.ActionGetUsingPost, nil, catalog.ListParties)...)

	itemRoutes := NewDomainGroup("items", "/items")
	itemRoutes.POST("/create", b.gated(identity.ModuleItem, identity.ActionCreate, nil, catalog.CreateItem)...)
	itemRoutes.POST("/list", b.gated(identity.ModuleItem, identity.ActionGetUsingPost, nil, catalog.ListItems)...)

	return []*DomainGroup{
		invoiceRoutes,
		paymentRoutes,
		bankRoutes,
		cashRoutes,
		staffRoutes,
		companyRoutes,
		partyRoutes,
		itemRoutes,
	}
}

// replayGuard prepends the Idempotency-Key check when a store is configured
func (b *billingRoutes) replayGuard(h gin.HandlerFunc) []gin.HandlerFunc {
	if b.idempotency == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{b.idempotency, h}
}

// RegisterBilling adds every billing group to r
func (r *Router) RegisterBilling(cfg BillingConfig) *Router {
	for _, g := range BillingGroups(cfg) {
		r.Register(g)
	}
	return r
}
