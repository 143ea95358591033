package services

import (
	"context"
	"errors"
	"testing"

	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(t *testing.T) *UserService {
	svc := NewUserService(setupTestDB(t))
	svc.Cost = bcrypt.MinCost
	return svc
}

func TestUserCreateAndAuthenticate(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, admin, "hostess", "secret123", models.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "secret123", user.HashedPassword)

	got, err := svc.Authenticate(ctx, "hostess", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "hostess", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserCreateRejects(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, "chef", "secret123", models.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name     string
		actor    Actor
		username string
		password string
		role     models.Role
		want     error
	}{
		{"customer actor", customer, "waiter", "secret123", models.RoleCustomer, ErrForbidden},
		{"short password", admin, "waiter", "123", models.RoleCustomer, ErrValidation},
		{"unknown role", admin, "waiter", "secret123", models.Role("chef"), ErrValidation},
		{"empty username", admin, " ", "secret123", models.RoleCustomer, ErrValidation},
		{"duplicate username", admin, "chef", "secret123", models.RoleCustomer, ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.actor, tt.username, tt.password, tt.role)
			assert.True(t, errors.Is(err, tt.want), "want %v, got %v", tt.want, err)
		})
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	first, created, err := svc.EnsureAdmin(ctx, "admin", "changeme")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAdmin, first.Role)

	second, created, err := svc.EnsureAdmin(ctx, "admin", "another-password")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	_, err = svc.Authenticate(ctx, "admin", "changeme")
	assert.NoError(t, err)
}
