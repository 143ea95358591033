package services

import (
	"context"
	"strings"
	"time"

	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

type ReservationInput struct {
	CustomerName    string  `json:"customer_name"`
	CustomerEmail   string  `json:"customer_email"`
	CustomerPhone   string  `json:"customer_phone"`
	ReservationDate string  `json:"reservation_date"`
	ReservationTime string  `json:"reservation_time"`
	NumberOfGuests  int     `json:"number_of_guests"`
	Notes           *string `json:"notes"`
}

// ReservationPatch holds the fields an admin may change; nil means untouched.
type ReservationPatch struct {
	CustomerName    *string `json:"customer_name"`
	CustomerEmail   *string `json:"customer_email"`
	CustomerPhone   *string `json:"customer_phone"`
	ReservationDate *string `json:"reservation_date"`
	ReservationTime *string `json:"reservation_time"`
	NumberOfGuests  *int    `json:"number_of_guests"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

type ReservationFilter struct {
	Date string
}

// ReservationService owns reservation creation and status changes. Any status
// may follow any other; only membership in the status set is enforced.
type ReservationService struct {
	DB         *gorm.DB
	Reconciler *RevenueReconciler
	Clock      func() time.Time
}

func NewReservationService(db *gorm.DB, reconciler *RevenueReconciler) *ReservationService {
	return &ReservationService{DB: db, Reconciler: reconciler, Clock: utcNow}
}

// Create books a new reservation in the pending state.
func (s *ReservationService) Create(ctx context.Context, in ReservationInput) (*models.Reservation, error) {
	date, clock, err := validateReservationInput(in)
	if err != nil {
		return nil, err
	}

	reservation := models.Reservation{
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		ReservationDate: date,
		ReservationTime: clock,
		NumberOfGuests:  in.NumberOfGuests,
		Status:          models.ReservationPending,
		Notes:           in.Notes,
	}
	if err := s.DB.WithContext(ctx).Create(&reservation).Error; err != nil {
		return nil, dbError(err, "create reservation")
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": reservation.ID,
		"date":           reservation.ReservationDate,
		"guests":         reservation.NumberOfGuests,
	}).Info("reservation created")
	return &reservation, nil
}

// SetStatus moves a reservation to newStatus. Admin only.
func (s *ReservationService) SetStatus(ctx context.Context, id uuid.UUID, newStatus string, actor Actor) (*models.Reservation, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	status, ok := models.ParseReservationStatus(newStatus)
	if !ok {
		return nil, invalidStatus(newStatus)
	}

	var reservation models.Reservation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&reservation).Error; err != nil {
			return dbError(err, "reservation "+id.String())
		}
		previous := reservation.Status
		now := s.Clock()
		err := tx.Model(&models.Reservation{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"status": status, "updated_at": now}).Error
		if err != nil {
			return dbError(err, "update reservation status")
		}
		reservation.Status = status
		reservation.UpdatedAt = now

		utils.InfoLogger.WithFields(logrus.Fields{
			"reservation_id": id,
			"from":           previous,
			"to":             status,
			"by":             actor.Username,
		}).Info("reservation status changed")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Update applies a partial change. Admin only.
func (s *ReservationService) Update(ctx context.Context, id uuid.UUID, patch ReservationPatch, actor Actor) (*models.Reservation, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	changes, err := reservationChanges(patch)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, validationf("no fields to update")
	}

	var reservation models.Reservation
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&reservation).Error; err != nil {
			return dbError(err, "reservation "+id.String())
		}
		changes["updated_at"] = s.Clock()
		if err := tx.Model(&models.Reservation{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return dbError(err, "update reservation")
		}
		return dbError(tx.Where("id = ?", id).First(&reservation).Error, "reload reservation")
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithField("reservation_id", id).Info("reservation updated")
	return &reservation, nil
}

// Delete removes a reservation. Its order, order items and revenue record go
// with it in the same transaction. Admin only.
func (s *ReservationService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := forUpdate(tx).Where("id = ?", id).First(&reservation).Error; err != nil {
			return dbError(err, "reservation "+id.String())
		}

		var orderIDs []string
		if err := tx.Model(&models.Order{}).Where("reservation_id = ?", id).Pluck("id", &orderIDs).Error; err != nil {
			return dbError(err, "find reservation order")
		}
		for _, raw := range orderIDs {
			orderID, err := uuid.Parse(raw)
			if err != nil {
				return dbError(err, "parse order id")
			}
			if err := deleteOrderCascade(tx, s.Reconciler, orderID); err != nil {
				return err
			}
		}

		if err := tx.Where("id = ?", id).Delete(&models.Reservation{}).Error; err != nil {
			return dbError(err, "delete reservation")
		}
		utils.InfoLogger.WithFields(logrus.Fields{
			"reservation_id": id,
			"orders":         len(orderIDs),
		}).Info("reservation deleted")
		return nil
	})
}

func (s *ReservationService) Get(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&reservation).Error; err != nil {
		return nil, dbError(err, "reservation "+id.String())
	}
	return &reservation, nil
}

func (s *ReservationService) List(ctx context.Context, filter ReservationFilter) ([]models.Reservation, error) {
	q := s.DB.WithContext(ctx).Model(&models.Reservation{})
	if filter.Date != "" {
		date, err := parseDate(filter.Date)
		if err != nil {
			return nil, err
		}
		q = q.Where("reservation_date = ?", date)
	}

	var reservations []models.Reservation
	if err := q.Order("reservation_date ASC").Order("reservation_time ASC").Find(&reservations).Error; err != nil {
		return nil, dbError(err, "list reservations")
	}
	return reservations, nil
}

// Today lists the reservations for the current day ordered by time.
func (s *ReservationService) Today(ctx context.Context) ([]models.Reservation, error) {
	return s.List(ctx, ReservationFilter{Date: s.Clock().Format(dateLayout)})
}

func invalidStatus(raw string) error {
	allowed := make([]string, 0, len(models.ReservationStatuses))
	for _, st := range models.ReservationStatuses {
		allowed = append(allowed, string(st))
	}
	return kindf(ErrInvalidTransition, "%q is not one of %s", raw, strings.Join(allowed, ", "))
}

func validateReservationInput(in ReservationInput) (string, string, error) {
	if err := requireText("customer_name", in.CustomerName, 255); err != nil {
		return "", "", err
	}
	if err := requireText("customer_email", in.CustomerEmail, 255); err != nil {
		return "", "", err
	}
	if !looksLikeEmail(in.CustomerEmail) {
		return "", "", validationf("customer_email is not a valid address")
	}
	if err := requireText("customer_phone", in.CustomerPhone, 50); err != nil {
		return "", "", err
	}
	if in.NumberOfGuests <= 0 {
		return "", "", validationf("number_of_guests must be at least 1")
	}
	date, err := parseDate(in.ReservationDate)
	if err != nil {
		return "", "", err
	}
	clock, err := parseClock(in.ReservationTime)
	if err != nil {
		return "", "", err
	}
	return date, clock, nil
}

func reservationChanges(p ReservationPatch) (map[string]interface{}, error) {
	changes := map[string]interface{}{}

	text := []struct {
		column string
		value  *string
		max    int
	}{
		{"customer_name", p.CustomerName, 255},
		{"customer_email", p.CustomerEmail, 255},
		{"customer_phone", p.CustomerPhone, 50},
	}
	for _, f := range text {
		if f.value == nil {
			continue
		}
		if err := requireText(f.column, *f.value, f.max); err != nil {
			return nil, err
		}
		changes[f.column] = strings.TrimSpace(*f.value)
	}
	if p.CustomerEmail != nil && !looksLikeEmail(*p.CustomerEmail) {
		return nil, validationf("customer_email is not a valid address")
	}

	if p.ReservationDate != nil {
		date, err := parseDate(*p.ReservationDate)
		if err != nil {
			return nil, err
		}
		changes["reservation_date"] = date
	}
	if p.ReservationTime != nil {
		clock, err := parseClock(*p.ReservationTime)
		if err != nil {
			return nil, err
		}
		changes["reservation_time"] = clock
	}
	if p.NumberOfGuests != nil {
		if *p.NumberOfGuests <= 0 {
			return nil, validationf("number_of_guests must be at least 1")
		}
		changes["number_of_guests"] = *p.NumberOfGuests
	}
	if p.Status != nil {
		status, ok := models.ParseReservationStatus(*p.Status)
		if !ok {
			return nil, invalidStatus(*p.Status)
		}
		changes["status"] = status
	}
	if p.Notes != nil {
		changes["notes"] = *p.Notes
	}
	return changes, nil
}

func requireText(field, value string, max int) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return validationf("%s is required", field)
	}
	if len(value) > max {
		return validationf("%s must be at most %d characters", field, max)
	}
	return nil
}

func looksLikeEmail(v string) bool {
	v = strings.TrimSpace(v)
	at := strings.Index(v, "@")
	return at > 0 && at < len(v)-1 && !strings.ContainsAny(v, " \t")
}

func parseDate(raw string) (string, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", validationf("reservation_date must be YYYY-MM-DD")
	}
	return d.Format(dateLayout), nil
}

func parseClock(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{timeLayout, "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(timeLayout), nil
		}
	}
	return "", validationf("reservation_time must be HH:MM or HH:MM:SS")
}
