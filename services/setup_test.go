package services

import (
	"context"
	"testing"
	"time"

	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	admin    = Actor{Username: "admin", Role: models.RoleAdmin}
	customer = Actor{Username: "guest", Role: models.RoleCustomer}
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.SilenceLoggers()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.MenuItem{},
		&models.User{},
		&models.Reservation{},
		&models.Order{},
		&models.OrderItem{},
		&models.RevenueRecord{},
	))
	return db
}

func fixedClock(ts string) func() time.Time {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func seedMenuItem(t *testing.T, db *gorm.DB, name, price string) models.MenuItem {
	t.Helper()
	item := models.MenuItem{Name: name, Price: models.NewMoney(decimal.RequireFromString(price)), IsAvailable: true}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func seedReservation(t *testing.T, db *gorm.DB, status models.ReservationStatus) models.Reservation {
	t.Helper()
	svc := NewReservationService(db, NewRevenueReconciler())
	r, err := svc.Create(context.Background(), ReservationInput{
		CustomerName:    "Amina Benali",
		CustomerEmail:   "amina@example.com",
		CustomerPhone:   "+212600000000",
		ReservationDate: "2024-06-01",
		ReservationTime: "19:30",
		NumberOfGuests:  4,
	})
	require.NoError(t, err)
	if status != models.ReservationPending {
		r, err = svc.SetStatus(context.Background(), r.ID, string(status), admin)
		require.NoError(t, err)
	}
	return *r
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }
