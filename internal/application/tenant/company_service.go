package tenant

import (
	"context"
	"fmt"

	ledgerapp "github.com/erp/billing/internal/application/ledger"
	"github.com/erp/billing/internal/application/uow"
	"github.com/erp/billing/internal/domain/ledger"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateCompanyInput carries the fields of a new company
type CreateCompanyInput struct {
	Name      string `json:"name" binding:"required,min=1,max=200"`
	Address   string `json:"address" binding:"max=500"`
	Phone     string `json:"phone" binding:"max=20"`
	GSTNumber string `json:"gst_number" binding:"max=20"`
	// CashOpeningBalance seeds the default cash ledger
	CashOpeningBalance decimal.Decimal `json:"cash_opening_balance"`
}

// CompanyDTO is the company view
type CompanyDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	GSTNumber string    `json:"gst_number,omitempty"`
	IsActive  bool      `json:"is_active"`
}

// MembershipDTO is one company the user can act on
type MembershipDTO struct {
	Company CompanyDTO       `json:"company"`
	Kind    tenant.ActorKind `json:"kind"`
	RoleID  *uuid.UUID       `json:"role,omitempty"`
}

// CompanyService creates companies and lists the caller's memberships
type CompanyService struct {
	scope     uow.TransactionScope
	companies tenant.CompanyRepository
	staff     tenant.StaffRepository
	logger    *zap.Logger
}

// NewCompanyService creates a new company service
func NewCompanyService(scope uow.TransactionScope, companies tenant.CompanyRepository, staff tenant.StaffRepository, logger *zap.Logger) *CompanyService {
	return &CompanyService{scope: scope, companies: companies, staff: staff, logger: logger}
}

// Create registers a company owned by userID together with its default
// cash ledger
func (s *CompanyService) Create(ctx context.Context, userID uuid.UUID, input CreateCompanyInput) (*CompanyDTO, error) {
	var company *tenant.Company
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		c, err := tenant.NewCompany(userID, input.Name)
		if err != nil {
			return err
		}
		c.Address = input.Address
		c.Phone = input.Phone
		c.GSTNumber = input.GSTNumber
		if err := repos.CompanyRepo().Save(ctx, c); err != nil {
			return fmt.Errorf("save company: %w", err)
		}
		if _, err := ledgerapp.CreateDefaultCashLedger(ctx, repos, c.ID, ledger.DefaultCashLedgerName, input.CashOpeningBalance); err != nil {
			return err
		}
		company = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("company created",
		zap.String("company_id", company.ID.String()),
		zap.String("owner_id", userID.String()))
	dto := toCompanyDTO(company)
	return &dto, nil
}

// Mine lists the companies userID owns followed by those it staffs
func (s *CompanyService) Mine(ctx context.Context, userID uuid.UUID) ([]MembershipDTO, error) {
	owned, err := s.companies.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list owned companies: %w", err)
	}
	out := make([]MembershipDTO, 0, len(owned))
	for i := range owned {
		out = append(out, MembershipDTO{Company: toCompanyDTO(&owned[i]), Kind: tenant.ActorOwner})
	}

	assignments, err := s.staff.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list staff assignments: %w", err)
	}
	for _, a := range assignments {
		c, err := s.companies.FindByID(ctx, a.CompanyID)
		if err != nil || !c.IsActive {
			continue
		}
		roleID := a.RoleID
		out = append(out, MembershipDTO{Company: toCompanyDTO(c), Kind: tenant.ActorStaff, RoleID: &roleID})
	}
	return out, nil
}

func toCompanyDTO(c *tenant.Company) CompanyDTO {
	return CompanyDTO{
		ID:        c.ID,
		Name:      c.Name,
		OwnerID:   c.OwnerID,
		Address:   c.Address,
		Phone:     c.Phone,
		GSTNumber: c.GSTNumber,
		IsActive:  c.IsActive,
	}
}
