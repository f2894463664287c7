package persistence

import (
	"errors"

	"github.com/erp/billing/internal/domain/shared"
	"gorm.io/gorm"
)

// translate maps gorm's not-found error to the domain sentinel
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// versionGuard turns a zero-row versioned update into a concurrency conflict
func versionGuard(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// immutableColumns are never rewritten by a full-row update
var immutableColumns = []string{"id", "created_at", "company_id", "created_by"}

// updateAll writes every mutable column of model, which must already carry
// the next version, guarded by the expected version
func updateAll(db *gorm.DB, model interface{}, expectedVersion int) error {
	return versionGuard(db.Select("*").Omit(immutableColumns...).Where("version = ?", expectedVersion).Updates(model))
}

// exists reports whether a row with id is present in model's table
func exists(db *gorm.DB, model interface{}, id interface{}) (bool, error) {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
