package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/billing/internal/domain/billing"
	"github.com/erp/billing/internal/domain/identity"
	"github.com/erp/billing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedReferenceData inserts the bootstrap enumerations: modules, invoice
// types, payment types, payment statuses and unit types. Rows already
// present (matched by their unique natural key) are left alone, so the seed
// is safe to run repeatedly.
func SeedReferenceData(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		modules := make([]models.ModuleModel, 0)
		for _, name := range identity.DefaultModules() {
			modules = append(modules, models.ModuleModel{ID: uuid.New(), Name: name, CreatedAt: now})
		}
		if err := insertMissing(tx, &modules, "name"); err != nil {
			return fmt.Errorf("seed modules: %w", err)
		}

		invoiceTypes := make([]models.InvoiceTypeModel, 0)
		for _, t := range billing.DefaultInvoiceTypes() {
			invoiceTypes = append(invoiceTypes, models.InvoiceTypeModel{ID: uuid.New(), Name: t.Name, Code: string(t.Code)})
		}
		if err := insertMissing(tx, &invoiceTypes, "code"); err != nil {
			return fmt.Errorf("seed invoice types: %w", err)
		}

		paymentTypes := make([]models.PaymentTypeModel, 0)
		for _, name := range billing.DefaultPaymentTypes() {
			paymentTypes = append(paymentTypes, models.PaymentTypeModel{ID: uuid.New(), Name: name})
		}
		if err := insertMissing(tx, &paymentTypes, "name"); err != nil {
			return fmt.Errorf("seed payment types: %w", err)
		}

		statuses := make([]models.PaymentStatusModel, 0)
		for _, s := range billing.AllPaymentStatuses() {
			statuses = append(statuses, models.PaymentStatusModel{ID: int(s), Label: s.Label()})
		}
		if err := insertMissing(tx, &statuses, "id"); err != nil {
			return fmt.Errorf("seed payment statuses: %w", err)
		}

		units := make([]models.UnitTypeModel, 0)
		for _, u := range billing.DefaultUnitTypes() {
			units = append(units, models.UnitTypeModel{ID: uuid.New(), Name: u.Name, Code: u.Code})
		}
		if err := insertMissing(tx, &units, "code"); err != nil {
			return fmt.Errorf("seed unit types: %w", err)
		}
		return nil
	})
}

func insertMissing(tx *gorm.DB, rows interface{}, conflictColumn string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: conflictColumn}},
		DoNothing: true,
	}).Create(rows).Error
}
