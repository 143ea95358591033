package Controllers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/bokettoo/Riad-al-Hout-backend/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderBody(reservationID uuid.UUID, lines ...services.OrderLine) map[string]interface{} {
	return map[string]interface{}{"reservation_id": reservationID, "items": lines}
}

func TestOrderLifecycle(t *testing.T) {
	env := setupEnv(t)
	a := env.createMenuItem(t, "Tagine", "10.00")
	b := env.createMenuItem(t, "Couscous", "15.00")
	res := env.createReservation(t, "2024-11-02")

	w := env.do(t, http.MethodPost, "/api/orders", env.adminToken, orderBody(res.ID,
		services.OrderLine{MenuItemID: a.ID, Quantity: 2},
		services.OrderLine{MenuItemID: b.ID, Quantity: 1},
	))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total_amount":"35.00"`)
	assert.Contains(t, w.Body.String(), `"subtotal":"20.00"`)
	var order models.Order
	decodeData(t, w, &order)
	assert.Equal(t, "35.00", money(order.TotalAmount))
	require.NotNil(t, order.Revenue)
	assert.Equal(t, "35.00", money(order.Revenue.Amount))
	revenueID := order.Revenue.ID
	path := "/api/orders/" + order.ID.String()

	// one order per reservation
	w = env.do(t, http.MethodPost, "/api/orders", env.adminToken, orderBody(res.ID, services.OrderLine{MenuItemID: a.ID, Quantity: 1}))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPut, path, env.adminToken, map[string]interface{}{
		"items": []services.OrderLine{{MenuItemID: a.ID, Quantity: 1}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Order
	decodeData(t, w, &updated)
	assert.Equal(t, "10.00", money(updated.TotalAmount))
	assert.Equal(t, revenueID, updated.Revenue.ID)
	assert.Equal(t, "10.00", money(updated.Revenue.Amount))

	w = env.do(t, http.MethodGet, "/api/orders?reservation_id="+res.ID.String(), env.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var byRes []models.Order
	decodeData(t, w, &byRes)
	require.Len(t, byRes, 1)
	assert.Equal(t, order.ID, byRes[0].ID)
	require.Len(t, byRes[0].Items, 1)
	assert.Equal(t, "Tagine", byRes[0].Items[0].MenuItem.Name)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, env.adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, env.adminToken, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/reservations/"+res.ID.String(), env.adminToken, nil).Code)

	var records int64
	require.NoError(t, env.db.Model(&models.RevenueRecord{}).Count(&records).Error)
	assert.Zero(t, records)
}

func TestOrderErrors(t *testing.T) {
	env := setupEnv(t)
	a := env.createMenuItem(t, "Tagine", "10.00")
	res := env.createReservation(t, "2024-11-02")

	tests := []struct {
		name  string
		token string
		body  map[string]interface{}
		want  int
	}{
		{"anonymous", "", orderBody(res.ID, services.OrderLine{MenuItemID: a.ID, Quantity: 1}), http.StatusUnauthorized},
		{"customer", env.customerToken, orderBody(res.ID, services.OrderLine{MenuItemID: a.ID, Quantity: 1}), http.StatusForbidden},
		{"unknown reservation", env.adminToken, orderBody(uuid.New(), services.OrderLine{MenuItemID: a.ID, Quantity: 1}), http.StatusNotFound},
		{"unknown menu item", env.adminToken, orderBody(res.ID, services.OrderLine{MenuItemID: uuid.New(), Quantity: 1}), http.StatusNotFound},
		{"zero quantity", env.adminToken, orderBody(res.ID, services.OrderLine{MenuItemID: a.ID, Quantity: 0}), http.StatusUnprocessableEntity},
		{"no items", env.adminToken, orderBody(res.ID), http.StatusUnprocessableEntity},
		{"missing reservation", env.adminToken, map[string]interface{}{"items": []services.OrderLine{{MenuItemID: a.ID, Quantity: 1}}}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, "POST", "/api/orders", tt.token, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	w := env.do(t, http.MethodPatch, "/api/reservations/"+res.ID.String()+"/status", env.adminToken, map[string]string{"status": "no_show"})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/orders", env.adminToken, orderBody(res.ID, services.OrderLine{MenuItemID: a.ID, Quantity: 1}))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteReservationCascadesOverHTTP(t *testing.T) {
	env := setupEnv(t)
	a := env.createMenuItem(t, "Tagine", "10.00")
	res := env.createReservation(t, "2024-11-02")
	w := env.do(t, http.MethodPost, "/api/orders", env.adminToken, orderBody(res.ID, services.OrderLine{MenuItemID: a.ID, Quantity: 3}))
	require.Equal(t, http.StatusCreated, w.Code)

	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/reservations/"+res.ID.String(), env.adminToken, nil).Code)

	for _, model := range []interface{}{&models.Order{}, &models.OrderItem{}, &models.RevenueRecord{}} {
		var n int64
		require.NoError(t, env.db.Model(model).Count(&n).Error)
		assert.Zero(t, n)
	}
}

func TestReports(t *testing.T) {
	env := setupEnv(t)
	a := env.createMenuItem(t, "Tagine", "10.00")
	b := env.createMenuItem(t, "Mint tea", "2.50")
	for _, lines := range [][]services.OrderLine{
		{{MenuItemID: a.ID, Quantity: 2}, {MenuItemID: b.ID, Quantity: 4}},
		{{MenuItemID: b.ID, Quantity: 2}},
	} {
		res := env.createReservation(t, "2024-11-02")
		w := env.do(t, http.MethodPost, "/api/orders", env.adminToken, orderBody(res.ID, lines...))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	today := time.Now().UTC().Format("2006-01-02")
	w := env.do(t, http.MethodGet, "/api/reports/revenue?from="+today+"&to="+today, env.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary services.RevenueSummary
	decodeData(t, w, &summary)
	assert.Equal(t, "35.00", money(summary.TotalRevenue))
	assert.Equal(t, 2, summary.Orders)
	assert.Equal(t, "17.50", money(summary.AverageOrder))

	w = env.do(t, http.MethodGet, "/api/reports/most-sold-items?limit=1", env.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var top []services.MostSoldItem
	decodeData(t, w, &top)
	require.Len(t, top, 1)
	assert.Equal(t, "Mint tea", top[0].Name)
	assert.Equal(t, int64(6), top[0].QuantitySold)

	w = env.do(t, http.MethodGet, "/api/reports/revenue.pdf?from="+today+"&to="+today, env.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/reports/revenue", env.customerToken, nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodGet, "/api/reports/revenue?from=yesterday", env.adminToken, nil).Code)
}
