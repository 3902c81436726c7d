package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ajei/internal/config"
	"ajei/internal/domain"
	apperrors "ajei/pkg/errors"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		SecretKey:          "test-secret-key-with-at-least-32-chars",
		TokenExpiryMinutes: 60,
		CookieName:         "access_token",
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testAuthConfig())
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, " operator ", "Ops@Example.com", "s3cret", false)
	require.NoError(t, err)
	assert.Equal(t, "operator", created.Username)
	assert.Equal(t, "ops@example.com", created.Email)

	token, user, err := svc.Login(ctx, "operator", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotNil(t, user.LastLogin)

	got, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testAuthConfig())
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, "operator", "ops@example.com", "s3cret", false)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "operator", "wrong")
	assert.True(t, apperrors.IsUnauthorized(err))

	_, _, err = svc.Login(ctx, "nobody", "s3cret")
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestLoginRejectsNonStaff(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testAuthConfig())
	ctx := context.Background()
	user, err := svc.CreateUser(ctx, "visitor", "v@example.com", "s3cret", false)
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.User{}).Where("id = ?", user.ID).Update("is_staff", false).Error)

	_, _, err = svc.Login(ctx, "visitor", "s3cret")
	assert.True(t, apperrors.IsForbidden(err))
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	svc := NewAuthService(newTestDB(t), testAuthConfig())
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "")
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = svc.Authenticate(ctx, "not-a-jwt")
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	svc := NewAuthService(newTestDB(t), testAuthConfig())
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "admin", "admin@example.com", "pw", true)
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "admin", "other@example.com", "pw", true)
	assert.Equal(t, apperrors.ErrCodeBadRequest, apperrors.CodeOf(err))

	_, err = svc.CreateUser(ctx, "", "x@example.com", "pw", false)
	assert.True(t, apperrors.IsValidation(err))
}
