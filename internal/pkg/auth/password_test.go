// internal/pkg/auth/password_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/bookstore-backend/internal/config"
)

func newTestPasswordManager() *PasswordManager {
	return NewPasswordManager(&config.Config{
		Security: config.SecurityConfig{BcryptCost: 4},
	})
}

func TestValidatePassword(t *testing.T) {
	p := newTestPasswordManager()

	assert.NoError(t, p.ValidatePassword("Str0ng!Pzq"))

	// Too short
	assert.Error(t, p.ValidatePassword("Sh0rt!a"))

	// Missing character classes
	assert.Error(t, p.ValidatePassword("alllowercase9!"))
	assert.Error(t, p.ValidatePassword("ALLUPPERCASE9!"))
	assert.Error(t, p.ValidatePassword("NoNumbersHere!"))
	assert.Error(t, p.ValidatePassword("NoSpecial99Zz"))
}

func TestValidatePasswordWeakPatterns(t *testing.T) {
	p := newTestPasswordManager()

	// Sequential letters and numbers
	assert.Error(t, p.ValidatePassword("Zabc!9Qrs"))
	assert.Error(t, p.ValidatePassword("Zx!w123Qr"))

	// Repeating characters
	assert.Error(t, p.ValidatePassword("Qzzz!9Wm5"))
	assert.Error(t, p.ValidatePassword("Qm!5wBBBt"))

	// Two in a row is fine
	assert.NoError(t, p.ValidatePassword("Qzz!9Wmx5"))

	// Common passwords, case-insensitive
	assert.Error(t, p.ValidatePassword("Password9!"))
	assert.Error(t, p.ValidatePassword("Qwerty9!Zm"))
}

func TestHashAndVerifyPassword(t *testing.T) {
	p := newTestPasswordManager()

	hash, err := p.HashPassword("Str0ng!Pzq")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "Str0ng!Pzq", hash)

	assert.NoError(t, p.VerifyPassword("Str0ng!Pzq", hash))
	assert.Error(t, p.VerifyPassword("Wr0ng!Pzq", hash))
}

func TestHashPasswordRejectsWeak(t *testing.T) {
	p := newTestPasswordManager()

	_, err := p.HashPassword("weak")
	assert.Error(t, err)
}

func TestGenerateTemporaryPassword(t *testing.T) {
	p := newTestPasswordManager()

	pw, err := p.GenerateTemporaryPassword()
	assert.NoError(t, err)
	assert.NotEmpty(t, pw)

	// Two draws should differ
	pw2, err := p.GenerateTemporaryPassword()
	assert.NoError(t, err)
	assert.NotEqual(t, pw, pw2)
}
