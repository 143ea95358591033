package services

import (
	"time"

	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/google/uuid"
)

// Actor is the authenticated principal a request runs as.
type Actor struct {
	UserID   uuid.UUID
	Username string
	Role     models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func requireAdmin(a Actor) error {
	if !a.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
