// internal/domain/user/service_test.go
package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/bookstore-backend/internal/config"
)

func newTestService() *Service {
	cfg := &config.Config{}
	cfg.App.Name = "bookstore-test"
	cfg.JWT.Secret = "test-secret-key-for-tests-only"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour
	return NewService(nil, nil, cfg)
}

func TestLogoutRejectsGarbageToken(t *testing.T) {
	s := newTestService()

	err := s.Logout("not-a-jwt")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid refresh token")
}

func TestLogoutRejectsAccessToken(t *testing.T) {
	s := newTestService()

	// Only refresh tokens can be revoked, an access token must not pass
	access, err := s.jwtManager.GenerateAccessToken(42, "reader@example.com", RoleBuyer)
	assert.NoError(t, err)

	err = s.Logout(access)
	assert.Error(t, err)
}

func TestRefreshTokenRejectsGarbage(t *testing.T) {
	s := newTestService()

	_, err := s.RefreshToken("not-a-jwt")
	assert.Error(t, err)
}
