package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	Base
	ReservationID uuid.UUID      `gorm:"type:char(36);not null;uniqueIndex" json:"reservation_id"`
	Reservation   *Reservation   `gorm:"foreignKey:ReservationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	TotalAmount   Money          `gorm:"type:decimal(10,2);not null;default:0;check:total_amount >= 0" json:"total_amount"`
	OrderDate     time.Time      `gorm:"not null" json:"order_date"`
	Items         []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	Revenue       *RevenueRecord `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"revenue,omitempty"`
}

// ItemsTotal sums the subtotals of the loaded items.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal.Decimal)
	}
	return total
}
