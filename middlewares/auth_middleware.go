package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/bokettoo/Riad-al-Hout-backend/services"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Context keys set by AuthMiddleware.
const (
	ActorKey  = "actor"
	ClaimsKey = "claims"
)

var (
	errMissingToken = errors.New("could not validate credentials")
	errRoleMismatch = errors.New("token role does not match user role")
)

// UserLookup resolves the subject of a token to a stored user.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthMiddleware accepts a bearer token from the Authorization header, or
// from the token query parameter for websocket upgrades. The user is reloaded
// on every request and the role in the token must still match the stored one.
func AuthMiddleware(tokens *utils.TokenManager, users UserLookup, revoked utils.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			unauthorized(c, errMissingToken)
			return
		}

		claims, err := tokens.ParseToken(raw)
		if err != nil {
			unauthorized(c, err)
			return
		}

		isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			utils.ErrorLogger.WithError(err).Error("token blacklist lookup failed")
			utils.RespondError(c, http.StatusServiceUnavailable, errors.New("token store unavailable"))
			return
		}
		if isRevoked {
			unauthorized(c, utils.ErrInvalidToken)
			return
		}

		user, err := users.GetByUsername(c.Request.Context(), claims.Subject)
		if err != nil {
			unauthorized(c, errMissingToken)
			return
		}
		if string(user.Role) != claims.Role {
			unauthorized(c, errRoleMismatch)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(ActorKey, services.Actor{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		})
		c.Next()
	}
}

// CurrentActor returns the principal stored by AuthMiddleware.
func CurrentActor(c *gin.Context) (services.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	return actor, ok
}

func CurrentClaims(c *gin.Context) (*utils.CustomClaims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.CustomClaims)
	return claims, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	// browsers cannot set headers on a websocket handshake
	if websocket.IsWebSocketUpgrade(c.Request) {
		return c.Query("token")
	}
	return ""
}

func unauthorized(c *gin.Context, err error) {
	c.Header("WWW-Authenticate", "Bearer")
	utils.RespondError(c, http.StatusUnauthorized, err)
}
