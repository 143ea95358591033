package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bokettoo/Riad-al-Hout-backend/kds"
	"github.com/bokettoo/Riad-al-Hout-backend/services"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const (
	defaultQRSize = 256
	minQRSize     = 128
	maxQRSize     = 1024
)

type ReservationController struct {
	Reservations *services.ReservationService
	Hub          *kds.Hub
}

func NewReservationController(reservations *services.ReservationService, hub *kds.Hub) *ReservationController {
	return &ReservationController{Reservations: reservations, Hub: hub}
}

// CreateReservation is public: guests book without an account.
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req services.ReservationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation, err := rc.Reservations.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	rc.Hub.Broadcast(kds.EventReservationCreated, reservation)
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	filter := services.ReservationFilter{Date: c.Query("reservation_date")}
	reservations, err := rc.Reservations.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservations retrieved", reservations)
}

func (rc *ReservationController) GetTodayReservations(c *gin.Context) {
	reservations, err := rc.Reservations.Today(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Today's reservations retrieved", reservations)
}

func (rc *ReservationController) GetReservationByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	reservation, err := rc.Reservations.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation retrieved", reservation)
}

func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.ReservationPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation, err := rc.Reservations.Update(c.Request.Context(), id, req, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	rc.Hub.Broadcast(kds.EventReservationUpdated, reservation)
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", reservation)
}

func (rc *ReservationController) UpdateReservationStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation, err := rc.Reservations.SetStatus(c.Request.Context(), id, req.Status, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	rc.Hub.Broadcast(kds.EventReservationStatus, reservation)
	utils.RespondJSON(c, http.StatusOK, "Reservation status updated", reservation)
}

// DeleteReservation also removes the reservation's order and revenue record.
func (rc *ReservationController) DeleteReservation(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := rc.Reservations.Delete(c.Request.Context(), id, actor); err != nil {
		respondServiceError(c, err)
		return
	}
	rc.Hub.Broadcast(kds.EventReservationDeleted, gin.H{"id": id})
	c.Status(http.StatusNoContent)
}

// GetReservationQRCode renders a PNG check-in code for the front desk.
func (rc *ReservationController) GetReservationQRCode(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	size := defaultQRSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < minQRSize || n > maxQRSize {
			utils.RespondError(c, http.StatusUnprocessableEntity,
				fmt.Errorf("size must be between %d and %d", minQRSize, maxQRSize))
			return
		}
		size = n
	}

	reservation, err := rc.Reservations.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	payload := fmt.Sprintf("riad-al-hout:reservation:%s:%sT%s:%d",
		reservation.ID, reservation.ReservationDate, reservation.ReservationTime, reservation.NumberOfGuests)
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		respondServiceError(c, errors.Join(services.ErrPersistence, err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="reservation-%s.png"`, reservation.ID))
	c.Data(http.StatusOK, "image/png", png)
}
