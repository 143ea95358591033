package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/bokettoo/Riad-al-Hout-backend/services"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SeedAdmin makes sure the configured admin account exists.
func SeedAdmin(ctx context.Context, users *services.UserService, username, password string) error {
	if password == "" {
		return fmt.Errorf("seed admin: ADMIN_PASSWORD is not set")
	}
	_, created, err := users.EnsureAdmin(ctx, username, password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if !created {
		utils.InfoLogger.WithField("username", username).Info("admin user already exists")
	}
	return nil
}

type DemoStats struct {
	Reservations int
	Orders       int
	Revenue      decimal.Decimal
}

var demoMenu = []struct {
	name     string
	category string
	price    string
}{
	{"Harira", "Starters", "4.50"},
	{"Zaalouk", "Starters", "5.00"},
	{"Fish pastilla", "Mains", "16.00"},
	{"Sea bream tagine", "Mains", "19.50"},
	{"Grilled sardines", "Mains", "12.00"},
	{"Seafood couscous", "Mains", "21.00"},
	{"Orange with cinnamon", "Desserts", "4.00"},
	{"Mint tea", "Drinks", "2.50"},
}

var demoStatuses = []models.ReservationStatus{
	models.ReservationCompleted,
	models.ReservationNoShow,
	models.ReservationCancelled,
}

// SeedDemo fills the days from..to (inclusive) with 5 to 10 historical
// reservations each. Completed reservations get an order built through the
// order service, so totals and revenue records match live traffic. A small
// menu is created first when the catalog is empty.
func SeedDemo(ctx context.Context, db *gorm.DB, from, to time.Time, rnd *rand.Rand) (DemoStats, error) {
	stats := DemoStats{Revenue: decimal.Zero}
	if to.Before(from) {
		return stats, fmt.Errorf("seed demo: %s is after %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	menu, err := ensureDemoMenu(ctx, db)
	if err != nil {
		return stats, err
	}

	reconciler := services.NewRevenueReconciler()
	orders := services.NewOrderService(db, reconciler)

	last := to.UTC().Truncate(24 * time.Hour)
	for day := from.UTC().Truncate(24 * time.Hour); !day.After(last); day = day.AddDate(0, 0, 1) {
		count := 5 + rnd.Intn(6)
		for i := 0; i < count; i++ {
			guests := 2 + rnd.Intn(7)
			at := day.Add(time.Duration(18+rnd.Intn(5))*time.Hour + time.Duration(15*rnd.Intn(4))*time.Minute)

			reservation := models.Reservation{
				CustomerName:    fmt.Sprintf("Guest %s-%d", day.Format("0102"), i+1),
				CustomerEmail:   fmt.Sprintf("guest%s%d@example.com", day.Format("0102"), i+1),
				CustomerPhone:   fmt.Sprintf("0%d%08d", 6+rnd.Intn(2), 10000000+rnd.Intn(90000000)),
				ReservationDate: day.Format("2006-01-02"),
				ReservationTime: at.Format("15:04:05"),
				NumberOfGuests:  guests,
				Status:          demoStatuses[rnd.Intn(len(demoStatuses))],
			}
			if rnd.Float64() >= 0.7 {
				note := fmt.Sprintf("Special request %d.", 1+rnd.Intn(5))
				reservation.Notes = &note
			}
			if err := db.WithContext(ctx).Create(&reservation).Error; err != nil {
				return stats, fmt.Errorf("seed demo reservation: %w", err)
			}
			stats.Reservations++

			if reservation.Status != models.ReservationCompleted {
				continue
			}

			clock := func() time.Time { return at }
			orders.Clock = clock
			reconciler.Clock = clock
			order, err := orders.CreateOrder(ctx, reservation.ID, demoLines(menu, guests, rnd))
			if err != nil {
				return stats, fmt.Errorf("seed demo order: %w", err)
			}
			stats.Orders++
			stats.Revenue = stats.Revenue.Add(order.TotalAmount.Decimal)
		}
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reservations": stats.Reservations,
		"orders":       stats.Orders,
		"revenue":      stats.Revenue.StringFixed(2),
	}).Info("demo data seeded")
	return stats, nil
}

func ensureDemoMenu(ctx context.Context, db *gorm.DB) ([]models.MenuItem, error) {
	var menu []models.MenuItem
	if err := db.WithContext(ctx).Where("is_available = ?", true).Find(&menu).Error; err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}
	if len(menu) > 0 {
		return menu, nil
	}

	for _, d := range demoMenu {
		category := d.category
		menu = append(menu, models.MenuItem{
			Name:        d.name,
			Category:    &category,
			Price:       models.NewMoney(decimal.RequireFromString(d.price)),
			IsAvailable: true,
		})
	}
	if err := db.WithContext(ctx).Create(&menu).Error; err != nil {
		return nil, fmt.Errorf("create demo menu: %w", err)
	}
	utils.InfoLogger.WithField("items", len(menu)).Info("demo menu created")
	return menu, nil
}

// demoLines picks up to five distinct dishes with quantities scaled to the
// party size.
func demoLines(menu []models.MenuItem, guests int, rnd *rand.Rand) []services.OrderLine {
	n := 1 + rnd.Intn(min(5, len(menu)))
	lines := make([]services.OrderLine, 0, n)
	for _, i := range rnd.Perm(len(menu))[:n] {
		maxQty := max(1, guests/2)
		lines = append(lines, services.OrderLine{
			MenuItemID: menu[i].ID,
			Quantity:   1 + rnd.Intn(maxQty),
		})
	}
	return lines
}

// ClearData deletes every reservation, order and revenue record, and every
// user except administrators. The menu is kept.
func ClearData(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []interface{}{
			&models.RevenueRecord{},
			&models.OrderItem{},
			&models.Order{},
			&models.Reservation{},
		} {
			if err := all.Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		if err := tx.Where("role <> ?", models.RoleAdmin).Delete(&models.User{}).Error; err != nil {
			return fmt.Errorf("clear users: %w", err)
		}
		utils.InfoLogger.Info("existing data cleared")
		return nil
	})
}
