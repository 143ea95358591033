package controllers

import (
	"errors"
	"net/http"

	"github.com/bokettoo/Riad-al-Hout-backend/middlewares"
	"github.com/bokettoo/Riad-al-Hout-backend/services"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	errInvalidID     = errors.New("invalid id: expected a UUID")
	errNotAuthorized = errors.New("could not validate credentials")
)

// respondServiceError maps a service error kind onto an HTTP status.
func respondServiceError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidTransition):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, services.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials):
		code = http.StatusUnauthorized
		c.Header("WWW-Authenticate", "Bearer")
	}

	if code >= http.StatusInternalServerError {
		utils.ErrorLogger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		utils.RespondError(c, code, errors.New("internal server error"))
		return
	}
	utils.RespondError(c, code, err)
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, errInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// actorFrom returns the authenticated principal or answers 401.
func actorFrom(c *gin.Context) (services.Actor, bool) {
	actor, ok := middlewares.CurrentActor(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errNotAuthorized)
		return services.Actor{}, false
	}
	return actor, true
}
