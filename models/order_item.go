package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderItem struct {
	Base
	OrderID uuid.UUID `gorm:"type:char(36);not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order        *Order    `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID   uuid.UUID `gorm:"type:char(36);not null;index" json:"menu_item_id"`
	MenuItem     *MenuItem `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menu_item,omitempty"`
	Quantity     int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	PriceAtOrder Money     `gorm:"type:decimal(10,2);not null;check:price_at_order >= 0" json:"price_at_order"`
	Subtotal     Money     `gorm:"type:decimal(10,2);not null;check:subtotal >= 0" json:"subtotal"`
}

// NewOrderItem snapshots the menu price and derives the subtotal.
func NewOrderItem(orderID uuid.UUID, menu MenuItem, quantity int) OrderItem {
	price := menu.Price.Round(2)
	return OrderItem{
		OrderID:      orderID,
		MenuItemID:   menu.ID,
		Quantity:     quantity,
		PriceAtOrder: Money{price},
		Subtotal:     NewMoney(price.Mul(decimal.NewFromInt(int64(quantity)))),
	}
}
