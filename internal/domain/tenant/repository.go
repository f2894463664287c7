package tenant

import (
	"context"

	"github.com/google/uuid"
)

// CompanyRepository persists companies
type CompanyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	// FindByIDForUpdate locks the company row; invoice numbering serializes on it
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Company, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]Company, error)
	Save(ctx context.Context, company *Company) error
}

// StaffRepository persists staff assignments
type StaffRepository interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*StaffAssignment, error)
	// FindActive returns the active assignment of userID to companyID
	FindActive(ctx context.Context, userID, companyID uuid.UUID) (*StaffAssignment, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]StaffAssignment, error)
	FindByCompany(ctx context.Context, companyID uuid.UUID) ([]StaffAssignment, error)
	CountActiveByRole(ctx context.Context, roleID uuid.UUID) (int64, error)
	Save(ctx context.Context, staff *StaffAssignment) error
}
