package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fintrack/internal/allocation"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/validator"
)

type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers an account. Emails are stored trimmed and lowercased.
func (s *userService) CreateUser(email, password, firstName, lastName string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}

	var existing int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if existing > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		IsActive:  true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("user registered", "user_id", user.ID)
	return user, nil
}

// GetUserByID loads a user, including its planning defaults.
func (s *userService) GetUserByID(id string) (*models.User, error) {
	return s.first("id = ?", id)
}

func (s *userService) first(query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := s.db.Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// AttemptLogin checks the credentials of an active user and stamps the login
// time. Unknown emails, inactive users and wrong passwords are indistinguishable.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	user, err := s.first("email = ? AND is_active = ?", normalizeEmail(email), true)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.db.Model(user).Update("last_login_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.LastLoginAt = &now
	return user, nil
}

// UpdatePlanningDefaults replaces the user's default priority and profile.
// Empty fields clear the corresponding default.
func (s *userService) UpdatePlanningDefaults(userID string, defaults models.PlanningDefaults) (*models.User, error) {
	if !allocation.KnownPriority(defaults.Priority) {
		return nil, apperrors.ErrUnknownPriority
	}
	if !validator.KnownLifeStage(string(defaults.LifeStage)) || !validator.KnownLivingSituation(string(defaults.LivingSituation)) {
		return nil, apperrors.ErrUnknownProfile
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	user.Planning = defaults
	err = s.db.Model(user).Updates(map[string]interface{}{
		"planning_priority":         string(defaults.Priority),
		"planning_life_stage":       string(defaults.LifeStage),
		"planning_living_situation": string(defaults.LivingSituation),
	}).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}
