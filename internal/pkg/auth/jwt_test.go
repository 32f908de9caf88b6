// internal/pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/bookstore-backend/internal/config"
)

func newTestJWTManager() *JWTManager {
	return NewJWTManager(&config.Config{
		App: config.AppConfig{Name: "bookstore-test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	j := newTestJWTManager()

	token, err := j.GenerateAccessToken(42, "reader@example.com", "buyer")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := j.ValidateAccessToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.Equal(t, "buyer", claims.Role)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, "user:42", claims.Subject)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	j := newTestJWTManager()

	token, err := j.GenerateRefreshToken(7, "seller@example.com")
	assert.NoError(t, err)

	claims, err := j.ValidateRefreshToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "refresh", claims.TokenType)
	assert.Empty(t, claims.Role)
}

func TestTokenTypeMismatch(t *testing.T) {
	j := newTestJWTManager()

	access, err := j.GenerateAccessToken(1, "a@example.com", "buyer")
	assert.NoError(t, err)
	refresh, err := j.GenerateRefreshToken(1, "a@example.com")
	assert.NoError(t, err)

	_, err = j.ValidateAccessToken(refresh)
	assert.Error(t, err)

	_, err = j.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	j := newTestJWTManager()
	other := NewJWTManager(&config.Config{
		App: config.AppConfig{Name: "bookstore-test"},
		JWT: config.JWTConfig{
			Secret:             "a-different-secret",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
	})

	token, err := other.GenerateAccessToken(1, "a@example.com", "buyer")
	assert.NoError(t, err)

	_, err = j.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	j := newTestJWTManager()

	_, err := j.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractTokenFromHeader("Bearer abc.def.ghi"))
	assert.Equal(t, "", ExtractTokenFromHeader("abc.def.ghi"))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer"))
}
