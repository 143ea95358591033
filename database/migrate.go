package database

import (
	"fmt"

	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Tables in foreign key order: referenced tables first.
func Tables() []interface{} {
	return []interface{}{
		&models.MenuItem{},
		&models.User{},
		&models.Reservation{},
		&models.Order{},
		&models.OrderItem{},
		&models.RevenueRecord{},
	}
}

// Migrate rewrites legacy reservation statuses and then creates or updates
// every table. The status rewrite has to come first: the status check
// constraint rejects the old values.
func Migrate(db *gorm.DB) error {
	if db.Migrator().HasTable(&models.Reservation{}) {
		if _, err := MigrateLegacyStatuses(db); err != nil {
			return err
		}
	}

	if err := db.AutoMigrate(Tables()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Info("AutoMigrate completed")
	return nil
}

// MigrateLegacyStatuses maps reservations stored with the old
// Pending/Approved/Cancelled values onto the canonical statuses and returns
// the number of rows changed.
func MigrateLegacyStatuses(db *gorm.DB) (int64, error) {
	var total int64
	err := db.Transaction(func(tx *gorm.DB) error {
		for legacy, canonical := range models.LegacyStatusMapping() {
			res := tx.Model(&models.Reservation{}).
				Where("status = ?", legacy).
				Update("status", canonical)
			if res.Error != nil {
				return fmt.Errorf("migrate status %q: %w", legacy, res.Error)
			}
			if res.RowsAffected > 0 {
				utils.InfoLogger.WithFields(logrus.Fields{
					"from": legacy,
					"to":   canonical,
					"rows": res.RowsAffected,
				}).Info("reservation statuses migrated")
			}
			total += res.RowsAffected
		}
		return nil
	})
	return total, err
}
