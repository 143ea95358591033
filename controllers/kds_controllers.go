package controllers

import (
	"github.com/bokettoo/Riad-al-Hout-backend/kds"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/gin-gonic/gin"
)

type LiveController struct {
	Hub *kds.Hub
}

func NewLiveController(hub *kds.Hub) *LiveController {
	return &LiveController{Hub: hub}
}

// LiveFeed upgrades to a websocket that receives every committed change.
func (lc *LiveController) LiveFeed(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	if err := lc.Hub.ServeWS(c.Writer, c.Request, actor.Username); err != nil {
		// the upgrader has already written the error response
		utils.ErrorLogger.WithError(err).Warn("live feed upgrade failed")
	}
}
