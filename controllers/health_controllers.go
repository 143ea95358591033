package controllers

import (
	"errors"
	"net/http"

	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{DB: db}
}

func (hc *HealthController) Health(c *gin.Context) {
	sqlDB, err := hc.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("health check: database unreachable")
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("database unreachable"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "ok", gin.H{"status": "healthy"})
}
