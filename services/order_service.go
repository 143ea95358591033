package services

import (
	"context"
	"time"

	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxLineQuantity caps a single line after duplicate lines are merged.
const maxLineQuantity = 10000

// OrderLine is one requested (menu item, quantity) pair.
type OrderLine struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
}

// OrderService builds orders from reservations and menu items. Every write
// reconciles the revenue record in the same transaction.
type OrderService struct {
	DB         *gorm.DB
	Reconciler *RevenueReconciler
	Clock      func() time.Time
}

func NewOrderService(db *gorm.DB, reconciler *RevenueReconciler) *OrderService {
	return &OrderService{DB: db, Reconciler: reconciler, Clock: utcNow}
}

func (s *OrderService) CreateOrder(ctx context.Context, reservationID uuid.UUID, lines []OrderLine) (*models.Order, error) {
	lines, err := normalizeLines(lines)
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := forUpdate(tx).Where("id = ?", reservationID).First(&reservation).Error; err != nil {
			return dbError(err, "reservation "+reservationID.String())
		}
		if !reservation.AcceptsOrders() {
			return conflictf("reservation %s is %s and cannot take an order", reservation.ID, reservation.Status)
		}

		var existing int64
		if err := tx.Model(&models.Order{}).Where("reservation_id = ?", reservationID).Count(&existing).Error; err != nil {
			return dbError(err, "check existing order")
		}
		if existing > 0 {
			return conflictf("reservation %s already has an order", reservationID)
		}

		order = models.Order{
			ReservationID: reservationID,
			TotalAmount:   models.NewMoney(decimal.Zero),
			OrderDate:     s.Clock(),
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return dbError(err, "create order")
		}

		return s.writeItems(tx, &order, lines, nil)
	})
	if err != nil {
		return nil, err
	}

	s.log(order, "order created")
	return &order, nil
}

// UpdateOrder replaces the whole item set of an order and recomputes the
// total. Menu items already on the order keep the price they were ordered at;
// new ones are snapshotted at the current menu price.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID uuid.UUID, lines []OrderLine) (*models.Order, error) {
	lines, err := normalizeLines(lines)
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("id = ?", orderID).First(&order).Error; err != nil {
			return dbError(err, "order "+orderID.String())
		}

		var previous []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&previous).Error; err != nil {
			return dbError(err, "load order items")
		}
		kept := make(map[uuid.UUID]decimal.Decimal, len(previous))
		for _, item := range previous {
			kept[item.MenuItemID] = item.PriceAtOrder.Decimal
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return dbError(err, "delete order items")
		}

		return s.writeItems(tx, &order, lines, kept)
	})
	if err != nil {
		return nil, err
	}

	s.log(order, "order updated")
	return &order, nil
}

// DeleteOrder removes the order together with its items and revenue record.
// The reservation stays.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := forUpdate(tx).Where("id = ?", orderID).First(&order).Error; err != nil {
			return dbError(err, "order "+orderID.String())
		}
		if err := deleteOrderCascade(tx, s.Reconciler, order.ID); err != nil {
			return err
		}
		utils.InfoLogger.WithField("order_id", order.ID).Info("order deleted")
		return nil
	})
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.preloaded(ctx).Where("id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, dbError(err, "order "+orderID.String())
	}
	return &order, nil
}

func (s *OrderService) GetOrderByReservation(ctx context.Context, reservationID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.preloaded(ctx).Where("reservation_id = ?", reservationID).First(&order).Error
	if err != nil {
		return nil, dbError(err, "order for reservation "+reservationID.String())
	}
	return &order, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.preloaded(ctx).Order("order_date DESC").Find(&orders).Error; err != nil {
		return nil, dbError(err, "list orders")
	}
	return orders, nil
}

func (s *OrderService) preloaded(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.MenuItem").
		Preload("Revenue")
}

// writeItems snapshots menu prices into new item rows, stores the total on the
// order header and reconciles revenue. kept holds prices to reuse for menu
// items that were already on the order. Must run inside a transaction.
func (s *OrderService) writeItems(tx *gorm.DB, order *models.Order, lines []OrderLine, kept map[uuid.UUID]decimal.Decimal) error {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.MenuItemID.String())
	}

	var menus []models.MenuItem
	if err := tx.Where("id IN ?", ids).Find(&menus).Error; err != nil {
		return dbError(err, "load menu items")
	}
	byID := make(map[uuid.UUID]models.MenuItem, len(menus))
	for _, m := range menus {
		byID[m.ID] = m
	}

	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		menu, ok := byID[line.MenuItemID]
		if !ok {
			return notFoundf("menu item %s", line.MenuItemID)
		}
		priced := menu
		if price, ok := kept[menu.ID]; ok {
			priced.Price = models.Money{Decimal: price}
		} else if !menu.IsAvailable {
			return validationf("menu item %q is not available", menu.Name)
		}
		item := models.NewOrderItem(order.ID, priced, line.Quantity)
		if item.Subtotal.GreaterThanOrEqual(maxAmount) {
			return validationf("subtotal for menu item %q is too large", menu.Name)
		}
		total = total.Add(item.Subtotal.Decimal)
		items = append(items, item)
	}
	if total.GreaterThanOrEqual(maxAmount) {
		return validationf("order total is too large")
	}

	if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
		return dbError(err, "create order items")
	}

	now := s.Clock()
	err := tx.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{"total_amount": total, "updated_at": now}).Error
	if err != nil {
		return dbError(err, "update order total")
	}
	order.TotalAmount = models.NewMoney(total)
	order.UpdatedAt = now

	record, err := s.Reconciler.Reconcile(tx, order)
	if err != nil {
		return err
	}

	for i := range items {
		menu := byID[items[i].MenuItemID]
		items[i].MenuItem = &menu
	}
	order.Items = items
	order.Revenue = record
	return nil
}

// forUpdate locks the selected rows until the transaction ends. The sqlite
// dialect drops the clause; its single writer serializes anyway.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}

// deleteOrderCascade removes revenue, items and the order header in that order.
func deleteOrderCascade(tx *gorm.DB, reconciler *RevenueReconciler, orderID uuid.UUID) error {
	if err := reconciler.Remove(tx, orderID); err != nil {
		return err
	}
	if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return dbError(err, "delete order items")
	}
	if err := tx.Where("id = ?", orderID).Delete(&models.Order{}).Error; err != nil {
		return dbError(err, "delete order")
	}
	return nil
}

// normalizeLines validates the requested lines and merges repeated menu items.
func normalizeLines(lines []OrderLine) ([]OrderLine, error) {
	if len(lines) == 0 {
		return nil, validationf("an order needs at least one item")
	}

	merged := make([]OrderLine, 0, len(lines))
	index := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if line.MenuItemID == uuid.Nil {
			return nil, validationf("menu_item_id is required")
		}
		if line.Quantity <= 0 {
			return nil, validationf("quantity for menu item %s must be greater than 0", line.MenuItemID)
		}
		if line.Quantity > maxLineQuantity {
			return nil, validationf("quantity for menu item %s must be at most %d", line.MenuItemID, maxLineQuantity)
		}
		if i, seen := index[line.MenuItemID]; seen {
			merged[i].Quantity += line.Quantity
			if merged[i].Quantity > maxLineQuantity {
				return nil, validationf("quantity for menu item %s must be at most %d", line.MenuItemID, maxLineQuantity)
			}
			continue
		}
		index[line.MenuItemID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

func (s *OrderService) log(order models.Order, msg string) {
	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"reservation_id": order.ReservationID,
		"items":          len(order.Items),
		"total":          order.TotalAmount.StringFixed(2),
	}).Info(msg)
}
