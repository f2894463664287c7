// Package scope provides reusable GORM scopes for company isolation,
// soft-delete filtering, row locking and pagination.
package scope

import (
	"strings"

	"github.com/erp/billing/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Company restricts a query to rows of one company
func Company(companyID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}

// NotDeleted hides soft-deleted rows flagged by the given column
func NotDeleted(column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", false)
	}
}

// ForUpdate takes a row lock held until the surrounding transaction ends.
// Drivers without row locks (sqlite) drop the clause.
func ForUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Search matches a case-insensitive substring against the column
func Search(column, term string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" {
			return db
		}
		return db.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(term)+"%")
	}
}

// Paginate applies offset, limit and a whitelisted ordering from filter
func Paginate(filter shared.Filter, allowed map[string]bool, defaultField string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field := ValidateSortField(filter.OrderBy, allowed, defaultField)
		dir := ValidateSortOrder(filter.OrderDir)
		return db.Order(field + " " + dir).Offset(filter.Offset()).Limit(filter.Limit())
	}
}

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// Allowed sort fields per table
var (
	ItemSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "name": true, "code": true,
		"quantity": true, "sales_price": true,
	}
	PartySortFields = map[string]bool{
		"created_at": true, "updated_at": true, "name": true, "party_type": true,
	}
	InvoiceSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "invoice_number": true,
		"invoice_date": true, "total": true, "remaining_balance": true,
		"payment_status_id": true,
	}
	BankAccountSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "bank_name": true, "current_balance": true,
	}
	TransferSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "amount": true,
	}
	TransactionSortFields = map[string]bool{
		"created_at": true, "amount": true,
	}
)
