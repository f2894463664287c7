// Package tenant resolves which company a request acts on and who is acting.
package tenant

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/erp/billing/internal/domain/tenant"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordLookup derives the company from a record the request references
type RecordLookup func(ctx context.Context) (uuid.UUID, error)

// CompanySource carries every place a request can name its company.
// Candidates are tried in field order; the first non-empty one wins.
type CompanySource struct {
	Header         string
	BodyCompany    string
	BodyCompanyID  string
	QueryCompany   string
	QueryCompanyID string
	Record         RecordLookup
}

// ResolveCompanyID returns the company id named by the request.
// A request naming no company, or naming a malformed id, is a request-shape
// error.
func ResolveCompanyID(ctx context.Context, src CompanySource) (uuid.UUID, error) {
	for _, candidate := range []string{src.Header, src.BodyCompany, src.BodyCompanyID, src.QueryCompany, src.QueryCompanyID} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		id, err := uuid.Parse(candidate)
		if err != nil || id == uuid.Nil {
			return uuid.Nil, shared.InvalidInput("company_id must be a valid UUID")
		}
		return id, nil
	}
	if src.Record != nil {
		id, err := src.Record(ctx)
		if err != nil {
			return uuid.Nil, err
		}
		if id != uuid.Nil {
			return id, nil
		}
	}
	return uuid.Nil, shared.InvalidInput("company_id is required")
}

// Resolver turns (user, company) into an Actor
type Resolver struct {
	companies tenant.CompanyRepository
	staff     tenant.StaffRepository
	logger    *zap.Logger
}

// NewResolver creates a Resolver
func NewResolver(companies tenant.CompanyRepository, staff tenant.StaffRepository, logger *zap.Logger) *Resolver {
	return &Resolver{companies: companies, staff: staff, logger: logger}
}

// ResolveActor returns the Owner actor when userID owns the active company,
// otherwise the Staff actor of the user's active assignment to it.
func (r *Resolver) ResolveActor(ctx context.Context, userID, companyID uuid.UUID) (tenant.Actor, error) {
	company, err := r.companies.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return tenant.Actor{}, shared.NotFound("Company not found.")
		}
		return tenant.Actor{}, err
	}
	if !company.IsActive {
		return tenant.Actor{}, shared.NotFound("Company not found.")
	}
	if company.IsOwnedBy(userID) {
		return tenant.NewOwner(userID, company.ID), nil
	}

	staff, err := r.staff.FindActive(ctx, userID, company.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			r.logger.Warn("user is not associated with company",
				zap.String("user_id", userID.String()),
				zap.String("company_id", companyID.String()))
			return tenant.Actor{}, shared.Forbidden("You are not associated with selected company.")
		}
		return tenant.Actor{}, err
	}
	return tenant.NewStaff(userID, company.ID, staff.RoleID), nil
}
