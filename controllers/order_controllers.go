package controllers

import (
	"net/http"

	"github.com/bokettoo/Riad-al-Hout-backend/kds"
	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/bokettoo/Riad-al-Hout-backend/services"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderController struct {
	Orders *services.OrderService
	Hub    *kds.Hub
}

func NewOrderController(orders *services.OrderService, hub *kds.Hub) *OrderController {
	return &OrderController{Orders: orders, Hub: hub}
}

type orderRequest struct {
	ReservationID uuid.UUID            `json:"reservation_id"`
	Items         []services.OrderLine `json:"items"`
}

// GetAllOrders lists every order, newest first. With ?reservation_id= it
// returns the order of that reservation only.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	if raw := c.Query("reservation_id"); raw != "" {
		reservationID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, errInvalidID)
			return
		}
		order, err := oc.Orders.GetOrderByReservation(c.Request.Context(), reservationID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Orders retrieved", []models.Order{*order})
		return
	}

	orders, err := oc.Orders.ListOrders(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders retrieved", orders)
}

func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.ReservationID == uuid.Nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, errInvalidID)
		return
	}

	order, err := oc.Orders.CreateOrder(c.Request.Context(), req.ReservationID, req.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	oc.publish(kds.EventOrderCreated, order)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := oc.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order retrieved", order)
}

// UpdateOrder replaces the item set; prices are snapshotted again.
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.UpdateOrder(c.Request.Context(), id, req.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	oc.publish(kds.EventOrderUpdated, order)
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := oc.Orders.DeleteOrder(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	oc.Hub.Broadcast(kds.EventOrderDeleted, gin.H{"id": id})
	c.Status(http.StatusNoContent)
}

func (oc *OrderController) publish(event string, order *models.Order) {
	oc.Hub.Broadcast(event, order)
	if order.Revenue != nil {
		oc.Hub.Broadcast(kds.EventRevenueUpdated, order.Revenue)
	}
}
