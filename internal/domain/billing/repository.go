package billing

import (
	"context"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository persists invoices and their lines
type InvoiceRepository interface {
	// FindByID loads any non-deleted invoice with its lines; used to derive
	// the company of a request that only names the invoice
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate loads the company's invoice under a row lock
	FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Invoice, int64, error)
	// LastNumberWithPrefix returns the highest number starting with prefix, or ""
	LastNumberWithPrefix(ctx context.Context, companyID uuid.UUID, prefix string) (string, error)
	ExistsByNumber(ctx context.Context, companyID uuid.UUID, number string, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, inv *Invoice) error
	// Update writes the header guarded by version and replaces all lines
	Update(ctx context.Context, inv *Invoice) error
	// UpdateSettlement writes only payment fields guarded by version
	UpdateSettlement(ctx context.Context, inv *Invoice) error
	// SoftDelete flags the invoice deleted guarded by version
	SoftDelete(ctx context.Context, inv *Invoice) error
}

// ReferenceRepository reads the seeded enumerations
type ReferenceRepository interface {
	FindInvoiceType(ctx context.Context, id uuid.UUID) (*InvoiceType, error)
	ListInvoiceTypes(ctx context.Context) ([]InvoiceType, error)
	FindPaymentType(ctx context.Context, id uuid.UUID) (*PaymentType, error)
	ListPaymentTypes(ctx context.Context) ([]PaymentType, error)
}
