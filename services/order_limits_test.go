package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func TestOrderQuantityLimits(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := seedMenuItem(t, db, "Tagine", "10.00")
	pricey := seedMenuItem(t, db, "Royal platter", "99999.99")
	res := seedReservation(t, db, models.ReservationConfirmed)

	tests := []struct {
		name  string
		lines []OrderLine
	}{
		{"merged lines overflow", []OrderLine{{MenuItemID: a.ID, Quantity: math.MaxInt}, {MenuItemID: a.ID, Quantity: 1}}},
		{"single line above cap", []OrderLine{{MenuItemID: a.ID, Quantity: maxLineQuantity + 1}}},
		{"merged lines above cap", []OrderLine{{MenuItemID: a.ID, Quantity: maxLineQuantity}, {MenuItemID: a.ID, Quantity: 1}}},
		{"subtotal too large", []OrderLine{{MenuItemID: pricey.ID, Quantity: 1001}}},
		{"total too large", []OrderLine{{MenuItemID: pricey.ID, Quantity: 600}, {MenuItemID: a.ID, Quantity: 1}, {MenuItemID: pricey.ID, Quantity: 400}}},
	}

	svc := NewOrderService(db, NewRevenueReconciler())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOrder(ctx, res.ID, tt.lines)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}
	assert.Equal(t, int64(0), countRows(t, db, &models.OrderItem{}))
	assert.Equal(t, int64(0), countRows(t, db, &models.Order{}))

	order, err := svc.CreateOrder(ctx, res.ID, []OrderLine{{MenuItemID: a.ID, Quantity: maxLineQuantity}})
	require.NoError(t, err)
	assert.Equal(t, "100000.00", order.TotalAmount.StringFixed(2))
}

func TestUpdateOrderKeepsPricesOfRetainedItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := seedMenuItem(t, db, "Harira", "4.50")
	b := seedMenuItem(t, db, "Mint tea", "2.00")
	res := seedReservation(t, db, models.ReservationConfirmed)

	orders := NewOrderService(db, NewRevenueReconciler())
	order, err := orders.CreateOrder(ctx, res.ID, []OrderLine{{MenuItemID: a.ID, Quantity: 1}})
	require.NoError(t, err)

	menu := NewMenuService(db)
	_, err = menu.Update(ctx, a.ID, MenuItemPatch{Price: decimalPtr("6.00")}, admin)
	require.NoError(t, err)
	_, err = menu.Update(ctx, b.ID, MenuItemPatch{Price: decimalPtr("2.50")}, admin)
	require.NoError(t, err)
	unavailable := false
	_, err = menu.Update(ctx, a.ID, MenuItemPatch{IsAvailable: &unavailable}, admin)
	require.NoError(t, err)

	updated, err := orders.UpdateOrder(ctx, order.ID, []OrderLine{
		{MenuItemID: a.ID, Quantity: 2},
		{MenuItemID: b.ID, Quantity: 2},
	})
	require.NoError(t, err)

	prices := map[uuid.UUID]string{}
	for _, item := range updated.Items {
		prices[item.MenuItemID] = item.PriceAtOrder.StringFixed(2)
	}
	assert.Equal(t, "4.50", prices[a.ID])
	assert.Equal(t, "2.50", prices[b.ID])
	assert.Equal(t, "14.00", updated.TotalAmount.StringFixed(2))
	assert.Equal(t, "14.00", updated.Revenue.Amount.StringFixed(2))
}

// recordLockedTables collects the tables read with a row locking clause. The
// sqlite dialect leaves the clause out of the SQL but it is still on the
// statement.
func recordLockedTables(t *testing.T, db *gorm.DB) *[]string {
	t.Helper()
	var locked []string
	err := db.Callback().Query().Before("gorm:query").Register("test:record_locks", func(tx *gorm.DB) {
		c, ok := tx.Statement.Clauses["FOR"]
		if !ok {
			return
		}
		if l, ok := c.Expression.(clause.Locking); ok && l.Strength == clause.LockingStrengthUpdate {
			locked = append(locked, tx.Statement.Table)
		}
	})
	require.NoError(t, err)
	return &locked
}

func TestOrderWritesLockRows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	a := seedMenuItem(t, db, "Tagine", "10.00")
	res := seedReservation(t, db, models.ReservationConfirmed)
	locked := recordLockedTables(t, db)

	orders := NewOrderService(db, NewRevenueReconciler())
	order, err := orders.CreateOrder(ctx, res.ID, []OrderLine{{MenuItemID: a.ID, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"reservations"}, *locked)

	*locked = nil
	_, err = orders.UpdateOrder(ctx, order.ID, []OrderLine{{MenuItemID: a.ID, Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, *locked)

	*locked = nil
	require.NoError(t, orders.DeleteOrder(ctx, order.ID))
	assert.Equal(t, []string{"orders"}, *locked)

	*locked = nil
	reservations := NewReservationService(db, NewRevenueReconciler())
	require.NoError(t, reservations.Delete(ctx, res.ID, admin))
	assert.Equal(t, []string{"reservations"}, *locked)

	*locked = nil
	_, err = orders.GetOrder(ctx, order.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Empty(t, *locked)
}

func TestForUpdateRendersOnPostgres(t *testing.T) {
	pg, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=riad dbname=riad sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	stmt := forUpdate(pg).Where("id = ?", uuid.New()).First(&models.Order{}).Statement
	assert.Contains(t, stmt.SQL.String(), "FOR UPDATE")
}
