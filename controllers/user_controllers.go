package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bokettoo/Riad-al-Hout-backend/middlewares"
	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/bokettoo/Riad-al-Hout-backend/services"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	Users   *services.UserService
	Tokens  *utils.TokenManager
	Revoked utils.TokenBlacklist
}

func NewUserController(users *services.UserService, tokens *utils.TokenManager, revoked utils.TokenBlacklist) *UserController {
	return &UserController{Users: users, Tokens: tokens, Revoked: revoked}
}

// Login accepts an OAuth2 style form (username, password) or the same
// fields as JSON and returns a bearer token.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Username string `form:"username" json:"username" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
	}
	if err := c.ShouldBind(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := uc.Users.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	token, claims, err := uc.Tokens.GenerateToken(user.Username, string(user.Role))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.WithField("username", user.Username).Info("login successful")
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_at":   claims.ExpiresAt.Time,
		"user_role":    strings.ToLower(string(user.Role)),
	})
}

// CreateUser registers a new account. Admin only.
func (uc *UserController) CreateUser(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req struct {
		Username string      `json:"username" binding:"required"`
		Password string      `json:"password" binding:"required"`
		Role     models.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := uc.Users.Create(c.Request.Context(), actor, req.Username, req.Password, req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "User created", user)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	user, err := uc.Users.Get(c.Request.Context(), actor.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", user)
}

// Logout revokes the presented token until it would have expired anyway.
func (uc *UserController) Logout(c *gin.Context) {
	claims, ok := middlewares.CurrentClaims(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errNotAuthorized)
		return
	}
	until := time.Now().Add(uc.Tokens.TTL())
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := uc.Revoked.Revoke(c.Request.Context(), claims.ID, until); err != nil {
		utils.ErrorLogger.WithError(err).Error("revoke token")
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("token store unavailable"))
		return
	}
	utils.InfoLogger.WithField("username", claims.Subject).Info("logout")
	c.Status(http.StatusNoContent)
}

func (uc *UserController) RefreshToken(c *gin.Context) {
	utils.RespondError(c, http.StatusNotImplemented, errors.New("refresh tokens are not supported, log in again"))
}
