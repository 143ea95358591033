package services

import (
	"time"

	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevenueReconciler keeps exactly one revenue record per order with an amount
// equal to the order total. It only ever runs inside the caller's transaction.
type RevenueReconciler struct {
	Clock func() time.Time
}

func NewRevenueReconciler() *RevenueReconciler {
	return &RevenueReconciler{Clock: utcNow}
}

// Reconcile upserts the revenue record of order, keyed on the order id.
func (r *RevenueReconciler) Reconcile(tx *gorm.DB, order *models.Order) (*models.RevenueRecord, error) {
	var record models.RevenueRecord
	if err := tx.Where("order_id = ?", order.ID).Limit(1).Find(&record).Error; err != nil {
		return nil, dbError(err, "load revenue record")
	}

	now := r.Clock()
	amount := order.TotalAmount.Round(2)

	if record.ID == uuid.Nil {
		record = models.RevenueRecord{
			OrderID:       order.ID,
			ReservationID: order.ReservationID,
			Amount:        models.NewMoney(amount),
			RecordDate:    now,
		}
		if err := tx.Omit(clause.Associations).Create(&record).Error; err != nil {
			return nil, dbError(err, "create revenue record")
		}
		r.log(record, "revenue record created")
		return &record, nil
	}

	err := tx.Model(&models.RevenueRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"amount":         amount,
			"reservation_id": order.ReservationID,
			"record_date":    now,
			"updated_at":     now,
		}).Error
	if err != nil {
		return nil, dbError(err, "update revenue record")
	}

	record.Amount = models.NewMoney(amount)
	record.ReservationID = order.ReservationID
	record.RecordDate = now
	record.UpdatedAt = now
	r.log(record, "revenue record updated")
	return &record, nil
}

// Remove deletes the revenue record of an order that is being deleted.
func (r *RevenueReconciler) Remove(tx *gorm.DB, orderID uuid.UUID) error {
	if err := tx.Where("order_id = ?", orderID).Delete(&models.RevenueRecord{}).Error; err != nil {
		return dbError(err, "delete revenue record")
	}
	return nil
}

func (r *RevenueReconciler) log(record models.RevenueRecord, msg string) {
	utils.InfoLogger.WithFields(logrus.Fields{
		"revenue_id": record.ID,
		"order_id":   record.OrderID,
		"amount":     record.Amount.StringFixed(2),
	}).Info(msg)
}
