package models

import (
	"time"

	"github.com/google/uuid"
)

// RevenueRecord mirrors an order total in the revenue ledger, one row per order.
type RevenueRecord struct {
	Base
	OrderID       uuid.UUID    `gorm:"type:char(36);not null;uniqueIndex" json:"order_id"`
	Order         *Order       `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ReservationID uuid.UUID    `gorm:"type:char(36);not null;index" json:"reservation_id"`
	Reservation   *Reservation `gorm:"foreignKey:ReservationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:NO ACTION" json:"-"`
	Amount        Money        `gorm:"type:decimal(10,2);not null;check:amount >= 0" json:"amount"`
	RecordDate    time.Time    `gorm:"not null;index" json:"record_date"`
}
