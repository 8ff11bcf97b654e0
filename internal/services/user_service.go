package services

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "dindin/internal/errors"
	"dindin/internal/models"
	"dindin/internal/store"
)

const (
	minPasswordLength = 6
	maxFailedLogins   = 5
	lockoutDuration   = 15 * time.Minute
)

// userService handles identity and profile-document business logic.
type userService struct {
	db   *gorm.DB
	docs *store.Store
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, docs *store.Store) UserServicer {
	return &userService{db: db, docs: docs}
}

// CreateUser registers a new identity and seeds its profile document with
// the default accounts and categories. The username defaults to the local
// part of the email.
func (s *userService) CreateUser(name, email, password string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name, email and password are required")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.ErrWeakPassword
	}

	email = strings.ToLower(email)

	var count int64
	s.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, apperrors.ErrEmailInUse
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:      email,
		Password:   string(hashedPassword),
		Name:       name,
		Username:   strings.SplitN(email, "@", 2)[0],
		Accounts:   models.DefaultAccounts,
		Categories: models.DefaultCategories,
		IsActive:   true,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// AttemptLogin verifies credentials and enforces the failed-login lockout.
// Unknown emails and wrong passwords both classify as INVALID_CREDENTIALS
// so the response does not reveal which one it was.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if store.IsNotFound(err) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !user.IsActive {
		return nil, apperrors.ErrUserDisabled
	}

	if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
		return nil, apperrors.ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		updates := map[string]interface{}{
			"failed_login_attempts": user.FailedLoginAttempts + 1,
		}
		if user.FailedLoginAttempts+1 >= maxFailedLogins {
			lockedUntil := time.Now().Add(lockoutDuration)
			updates["locked_until"] = &lockedUntil
			updates["failed_login_attempts"] = 0
		}
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         &now,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now

	return &user, nil
}

// GetUserByID loads the profile document for an identity.
func (s *userService) GetUserByID(id string) (*models.User, error) {
	user, err := s.docs.GetUser(id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// ReplaceProfile applies a whole-document profile replacement and returns
// the stored result.
func (s *userService) ReplaceProfile(userID string, profile ProfileInput) (*models.User, error) {
	if profile.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}

	user := &models.User{
		Base:       models.Base{ID: userID},
		Name:       profile.Name,
		Username:   profile.Username,
		PhotoURL:   profile.PhotoURL,
		Accounts:   profile.Accounts,
		Categories: profile.Categories,
	}
	if user.Accounts == nil {
		user.Accounts = []string{}
	}
	if user.Categories == nil {
		user.Categories = []string{}
	}

	if err := s.docs.ReplaceUser(user); err != nil {
		if store.IsNotFound(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetUserByID(userID)
}

// StoreRefreshTokenHash persists the hash of the user's current refresh
// token, invalidating any previously issued one.
func (s *userService) StoreRefreshTokenHash(userID, tokenHash string) error {
	res := s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("refresh_token_hash", tokenHash)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash for a user.
func (s *userService) GetRefreshTokenHash(userID string) (string, error) {
	var user models.User
	if err := s.db.Select("refresh_token_hash").Where("id = ?", userID).First(&user).Error; err != nil {
		if store.IsNotFound(err) {
			return "", apperrors.ErrUserNotFound
		}
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user.RefreshTokenHash, nil
}
