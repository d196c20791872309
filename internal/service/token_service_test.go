package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainbase/evaluation-api/internal/models"
)

func signTestToken(t *testing.T, secret string, claims *models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenServiceValidateToken(t *testing.T) {
	svc := NewTokenService("secret")
	signed := signTestToken(t, "secret", &models.JWTClaims{
		UserID: "trainer-1",
		Role:   "trainer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "trainer-1", claims.UserID)
	assert.Equal(t, "trainer", claims.Role)
}

func TestTokenServiceRejectsWrongSecret(t *testing.T) {
	svc := NewTokenService("secret")
	signed := signTestToken(t, "other", &models.JWTClaims{UserID: "trainer-1"})

	_, err := svc.ValidateToken(signed)
	require.Error(t, err)
}

func TestTokenServiceRejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("secret")
	signed := signTestToken(t, "secret", &models.JWTClaims{
		UserID: "trainer-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := svc.ValidateToken(signed)
	require.Error(t, err)
}
