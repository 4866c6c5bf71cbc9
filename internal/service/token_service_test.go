package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-notify/internal/models"
	"github.com/noah-isme/lms-notify/pkg/config"
	appErrors "github.com/noah-isme/lms-notify/pkg/errors"
)

func signServiceToken(t *testing.T, secret, issuer, service string, method jwt.SigningMethod) string {
	t.Helper()
	claims := models.ServiceClaims{
		Service: service,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret", Issuer: "lms-platform"})

	token := signServiceToken(t, "test-secret", "lms-platform", "course-service", jwt.SigningMethodHS256)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "course-service", claims.Service)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret", Issuer: "lms-platform"})

	token := signServiceToken(t, "other-secret", "lms-platform", "course-service", jwt.SigningMethodHS256)
	_, err := svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret", Issuer: "lms-platform"})

	token := signServiceToken(t, "test-secret", "someone-else", "course-service", jwt.SigningMethodHS256)
	_, err := svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "test-secret", Issuer: "lms-platform"})

	claims := models.ServiceClaims{
		Service: "course-service",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "lms-platform",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}
