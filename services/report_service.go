package services

import (
	"context"
	"sort"
	"time"

	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultReportDays    = 30
	defaultMostSoldLimit = 10
	maxMostSoldLimit     = 100
)

type DailyRevenue struct {
	Date   string       `json:"date"`
	Total  models.Money `json:"total"`
	Orders int          `json:"orders"`
}

type RevenueSummary struct {
	From         string         `json:"from"`
	To           string         `json:"to"`
	TotalRevenue models.Money   `json:"total_revenue"`
	Orders       int            `json:"orders"`
	AverageOrder models.Money   `json:"average_order"`
	Daily        []DailyRevenue `json:"daily"`
}

type MostSoldItem struct {
	MenuItemID   uuid.UUID    `json:"menu_item_id"`
	Name         string       `json:"name"`
	Category     *string      `json:"category"`
	QuantitySold int64        `json:"quantity_sold"`
	Revenue      models.Money `json:"revenue"`
}

// ReportService reads revenue records and order items. It never writes.
type ReportService struct {
	DB    *gorm.DB
	Clock func() time.Time
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db, Clock: utcNow}
}

// Summary totals the revenue recorded between from and to, both inclusive
// and formatted YYYY-MM-DD. Empty bounds default to the last 30 days.
func (s *ReportService) Summary(ctx context.Context, from, to string) (*RevenueSummary, error) {
	start, end, err := s.reportRange(from, to)
	if err != nil {
		return nil, err
	}

	var records []models.RevenueRecord
	err = s.DB.WithContext(ctx).
		Where("record_date >= ? AND record_date < ?", start, end.AddDate(0, 0, 1)).
		Order("record_date ASC").
		Find(&records).Error
	if err != nil {
		return nil, dbError(err, "load revenue records")
	}

	summary := &RevenueSummary{
		From:         start.Format(dateLayout),
		To:           end.Format(dateLayout),
		Daily: []DailyRevenue{},
	}
	total := decimal.Zero
	byDay := map[string]decimal.Decimal{}
	counts := map[string]int{}
	for _, r := range records {
		day := r.RecordDate.UTC().Format(dateLayout)
		byDay[day] = byDay[day].Add(r.Amount.Decimal)
		counts[day]++
		total = total.Add(r.Amount.Decimal)
	}
	summary.Orders = len(records)
	summary.TotalRevenue = models.NewMoney(total)
	summary.AverageOrder = models.NewMoney(decimal.Zero)
	if summary.Orders > 0 {
		summary.AverageOrder = models.NewMoney(total.Div(decimal.NewFromInt(int64(summary.Orders))))
	}

	for day, amount := range byDay {
		summary.Daily = append(summary.Daily, DailyRevenue{Date: day, Total: models.NewMoney(amount), Orders: counts[day]})
	}
	sort.Slice(summary.Daily, func(i, j int) bool { return summary.Daily[i].Date < summary.Daily[j].Date })
	return summary, nil
}

// MostSoldItems ranks menu items by quantity sold across all orders.
func (s *ReportService) MostSoldItems(ctx context.Context, limit int) ([]MostSoldItem, error) {
	if limit <= 0 {
		limit = defaultMostSoldLimit
	}
	if limit > maxMostSoldLimit {
		limit = maxMostSoldLimit
	}

	var rows []MostSoldItem
	err := s.DB.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.menu_item_id AS menu_item_id, m.name AS name, m.category AS category, " +
			"SUM(oi.quantity) AS quantity_sold, SUM(oi.subtotal) AS revenue").
		Joins("JOIN menu_items AS m ON m.id = oi.menu_item_id").
		Group("oi.menu_item_id, m.name, m.category").
		Order("quantity_sold DESC").
		Order("m.name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, dbError(err, "rank menu items")
	}
	for i := range rows {
		rows[i].Revenue = models.NewMoney(rows[i].Revenue.Decimal)
	}
	return rows, nil
}

func (s *ReportService) reportRange(from, to string) (time.Time, time.Time, error) {
	end := s.Clock().UTC().Truncate(24 * time.Hour)
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return time.Time{}, time.Time{}, validationf("to must be YYYY-MM-DD")
		}
		end = t
	}
	start := end.AddDate(0, 0, -(defaultReportDays - 1))
	if from != "" {
		f, err := time.Parse(dateLayout, from)
		if err != nil {
			return time.Time{}, time.Time{}, validationf("from must be YYYY-MM-DD")
		}
		start = f
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, validationf("from must not be after to")
	}
	return start, end, nil
}
