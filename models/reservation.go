package models

import "strings"

// ReservationStatus is the closed set of lifecycle states of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
	ReservationNoShow    ReservationStatus = "no_show"
)

// ReservationStatuses lists every accepted status in display order.
var ReservationStatuses = []ReservationStatus{
	ReservationPending,
	ReservationConfirmed,
	ReservationCancelled,
	ReservationCompleted,
	ReservationNoShow,
}

// legacyStatuses maps the old three-value vocabulary onto the canonical set.
var legacyStatuses = map[string]ReservationStatus{
	"Pending":   ReservationPending,
	"Approved":  ReservationConfirmed,
	"Cancelled": ReservationCancelled,
}

func (s ReservationStatus) Valid() bool {
	for _, known := range ReservationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseReservationStatus accepts a canonical value or one of the legacy
// spellings and reports false for anything else.
func ParseReservationStatus(raw string) (ReservationStatus, bool) {
	raw = strings.TrimSpace(raw)
	if s := ReservationStatus(raw); s.Valid() {
		return s, true
	}
	if s, ok := legacyStatuses[raw]; ok {
		return s, true
	}
	return "", false
}

// LegacyStatusMapping returns a copy of the legacy to canonical table, used by
// the data migration.
func LegacyStatusMapping() map[string]ReservationStatus {
	out := make(map[string]ReservationStatus, len(legacyStatuses))
	for k, v := range legacyStatuses {
		out[k] = v
	}
	return out
}

type Reservation struct {
	Base
	CustomerName    string            `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail   string            `gorm:"type:varchar(255);not null" json:"customer_email"`
	CustomerPhone   string            `gorm:"type:varchar(50);not null" json:"customer_phone"`
	ReservationDate string            `gorm:"type:varchar(10);not null;index" json:"reservation_date"`
	ReservationTime string            `gorm:"type:varchar(8);not null" json:"reservation_time"`
	NumberOfGuests  int               `gorm:"not null;check:number_of_guests > 0" json:"number_of_guests"`
	Status          ReservationStatus `gorm:"type:varchar(20);not null;default:'pending';index;check:status IN ('pending','confirmed','cancelled','completed','no_show')" json:"status"`
	Notes           *string           `gorm:"type:text" json:"notes"`
}

// AcceptsOrders reports whether an order may still be opened for the
// reservation.
func (r Reservation) AcceptsOrders() bool {
	return r.Status != ReservationCancelled && r.Status != ReservationNoShow
}
