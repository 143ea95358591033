package controllers

import (
	"net/http"

	"github.com/bokettoo/Riad-al-Hout-backend/kds"
	"github.com/bokettoo/Riad-al-Hout-backend/services"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/gin-gonic/gin"
)

type MenuController struct {
	Menu *services.MenuService
	Hub  *kds.Hub
}

func NewMenuController(menu *services.MenuService, hub *kds.Hub) *MenuController {
	return &MenuController{Menu: menu, Hub: hub}
}

// GetAllMenus lists the catalog ordered by category, then name.
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	items, err := mc.Menu.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu items retrieved", items)
}

func (mc *MenuController) GetMenuByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := mc.Menu.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item retrieved", item)
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req services.MenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := mc.Menu.Create(c.Request.Context(), req, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	mc.Hub.Broadcast(kds.EventMenuUpdated, item)
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// UpdateMenu applies only the fields present in the body.
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.MenuItemPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := mc.Menu.Update(c.Request.Context(), id, req, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	mc.Hub.Broadcast(kds.EventMenuUpdated, item)
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

func (mc *MenuController) DeleteMenu(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := mc.Menu.Delete(c.Request.Context(), id, actor); err != nil {
		respondServiceError(c, err)
		return
	}
	mc.Hub.Broadcast(kds.EventMenuUpdated, gin.H{"id": id, "deleted": true})
	c.Status(http.StatusNoContent)
}
