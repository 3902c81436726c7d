package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"ajei/internal/config"
	"ajei/internal/domain"
	"ajei/internal/metrics"
	"ajei/internal/util"
	apperrors "ajei/pkg/errors"
)

// AuthService authenticates dashboard operators.
type AuthService struct {
	db  *gorm.DB
	cfg *config.AuthConfig
	now func() time.Time
	log *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB, cfg *config.AuthConfig) *AuthService {
	return &AuthService{
		db:  db,
		cfg: cfg,
		now: time.Now,
		log: slog.Default().With("component", "auth"),
	}
}

// Login checks credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	username = strings.TrimSpace(username)
	s.log.Info("login attempt", "username", username)

	var user domain.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Info("login failed: unknown user", "username", username)
		metrics.RecordAuthAttempt(false)
		return "", nil, apperrors.New(apperrors.ErrCodeUnauthorized, "incorrect username or password")
	}
	if err != nil {
		metrics.RecordAuthAttempt(false)
		return "", nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to load user", err)
	}

	if !util.CheckPasswordHash(password, user.HashedPassword) {
		s.log.Info("login failed: invalid password", "username", username)
		metrics.RecordAuthAttempt(false)
		return "", nil, apperrors.New(apperrors.ErrCodeUnauthorized, "incorrect username or password")
	}

	if err := util.RequireStaff(&user); err != nil {
		s.log.Info("login failed: not an active staff user", "username", username)
		metrics.RecordAuthAttempt(false)
		return "", nil, apperrors.Wrap(apperrors.ErrCodeForbidden, "dashboard access denied", err)
	}

	now := s.now().UTC()
	user.LastLogin = &now
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		s.log.Warn("failed to record last login", "username", username, "error", err)
	}

	token, err := util.GenerateToken(&user, s.cfg)
	if err != nil {
		return "", nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to generate token", err)
	}

	s.log.Info("login successful", "username", username, "id", user.ID, "admin", user.IsAdmin)
	metrics.RecordAuthAttempt(true)
	return token, &user, nil
}

// Authenticate resolves a token to an active staff user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, apperrors.New(apperrors.ErrCodeUnauthorized, "authentication required")
	}
	claims, err := util.ValidateToken(token, s.cfg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeUnauthorized, "invalid or expired token", err)
	}
	user, err := util.GetUserFromToken(s.db.WithContext(ctx), claims)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeUnauthorized, "user not found", err)
	}
	if err := util.RequireStaff(user); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeForbidden, "dashboard access denied", err)
	}
	return user, nil
}

// CreateUser adds an operator account.
func (s *AuthService) CreateUser(ctx context.Context, username, email, password string, admin bool) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "username, email and password are required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to check existing users", err)
	}
	if count > 0 {
		return nil, apperrors.New(apperrors.ErrCodeBadRequest, "username or email already registered")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to hash password", err)
	}

	user := &domain.User{
		Username:       username,
		Email:          email,
		HashedPassword: hash,
		IsActive:       true,
		IsAdmin:        admin,
		IsStaff:        true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to create user", err)
	}
	s.log.Info("user created", "username", username, "id", user.ID, "admin", admin)
	return user, nil
}
