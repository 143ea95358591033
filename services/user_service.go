package services

import (
	"context"
	"errors"
	"strings"

	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong
// password; the two cases are not told apart.
var ErrInvalidCredentials = errors.New("incorrect username or password")

const minPasswordLength = 6

type UserService struct {
	DB *gorm.DB
	// Cost is the bcrypt work factor.
	Cost int
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db, Cost: bcrypt.DefaultCost}
}

// Authenticate checks a username/password pair against the stored hash.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Create registers a user. Admin only.
func (s *UserService) Create(ctx context.Context, actor Actor, username, password string, role models.Role) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if role == "" {
		role = models.RoleCustomer
	}
	user, err := s.newUser(username, password, role)
	if err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(dbError(err, "create user"), ErrConflict) {
			return nil, conflictf("username %q is already registered", user.Username)
		}
		return nil, dbError(err, "create user")
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"by":       actor.Username,
	}).Info("user created")
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, dbError(err, "user "+id.String())
	}
	return &user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		return nil, dbError(err, "user "+username)
	}
	return &user, nil
}

// EnsureAdmin creates the admin account when the username is free. An existing
// account is returned as is, whatever its password.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (*models.User, bool, error) {
	existing, err := s.GetByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	user, err := s.newUser(username, password, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return nil, false, dbError(err, "create admin user")
	}
	utils.InfoLogger.WithField("username", user.Username).Info("admin user created")
	return user, true, nil
}

func (s *UserService) newUser(username, password string, role models.Role) (*models.User, error) {
	if err := requireText("username", username, 50); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, validationf("password must be at least %d characters", minPasswordLength)
	}
	if !role.Valid() {
		return nil, validationf("role must be %q or %q", models.RoleAdmin, models.RoleCustomer)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		return nil, kindf(ErrPersistence, "hash password: %v", err)
	}
	return &models.User{
		Username:       strings.TrimSpace(username),
		HashedPassword: string(hashed),
		Role:           role,
	}, nil
}
