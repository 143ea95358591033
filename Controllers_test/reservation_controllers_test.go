package Controllers_test

import (
	"bytes"
	"image/png"
	"net/http"
	"testing"
	"time"

	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationFlow(t *testing.T) {
	env := setupEnv(t)
	res := env.createReservation(t, "2024-10-05")
	assert.Equal(t, models.ReservationPending, res.Status)
	assert.Equal(t, "19:45:00", res.ReservationTime)
	path := "/api/reservations/" + res.ID.String()

	// listing is back-office only
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/reservations", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/reservations", env.customerToken, nil).Code)

	env.createReservation(t, "2024-10-06")
	w := env.do(t, http.MethodGet, "/api/reservations?reservation_date=2024-10-05", env.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Reservation
	decodeData(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, res.ID, list[0].ID)

	w = env.do(t, http.MethodGet, "/api/reservations?reservation_date=05-10-2024", env.adminToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// status changes
	w = env.do(t, http.MethodPatch, path+"/status", env.adminToken, map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var confirmed models.Reservation
	decodeData(t, w, &confirmed)
	assert.Equal(t, models.ReservationConfirmed, confirmed.Status)

	w = env.do(t, http.MethodPatch, path+"/status", env.adminToken, map[string]string{"status": "seated"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = env.do(t, http.MethodPatch, path+"/status", env.customerToken, map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// partial update
	w = env.do(t, http.MethodPut, path, env.adminToken, map[string]interface{}{"number_of_guests": 5})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Reservation
	decodeData(t, w, &updated)
	assert.Equal(t, 5, updated.NumberOfGuests)
	assert.Equal(t, models.ReservationConfirmed, updated.Status)

	w = env.do(t, http.MethodGet, path, env.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, env.adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, env.adminToken, nil).Code)
}

func TestCreateReservationValidation(t *testing.T) {
	env := setupEnv(t)
	w := env.do(t, http.MethodPost, "/api/reservations", "", map[string]interface{}{
		"customer_name":    "Nadia",
		"customer_email":   "nadia@example.com",
		"customer_phone":   "0611223344",
		"reservation_date": "2024-10-05",
		"reservation_time": "19:45",
		"number_of_guests": 0,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodPost, "/api/reservations", "", map[string]interface{}{"number_of_guests": "many"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTodayReservations(t *testing.T) {
	env := setupEnv(t)
	today := time.Now().UTC().Format("2006-01-02")
	env.createReservation(t, today)
	env.createReservation(t, "2001-01-01")

	w := env.do(t, http.MethodGet, "/api/reservations/today", env.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Reservation
	decodeData(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, today, list[0].ReservationDate)
}

func TestReservationQRCode(t *testing.T) {
	env := setupEnv(t)
	res := env.createReservation(t, "2024-10-05")

	w := env.do(t, http.MethodGet, "/api/reservations/"+res.ID.String()+"/qrcode?size=200", env.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())

	w = env.do(t, http.MethodGet, "/api/reservations/"+res.ID.String()+"/qrcode?size=5000", env.adminToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
