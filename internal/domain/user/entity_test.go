// internal/domain/user/entity_test.go
package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleBuyer))
	assert.True(t, IsValidRole(RoleSeller))
	assert.True(t, IsValidRole(RoleAffiliate))

	// Admin accounts are provisioned, never self-registered
	assert.False(t, IsValidRole(RoleAdmin))
	assert.False(t, IsValidRole(""))
	assert.False(t, IsValidRole("superuser"))
}

func TestGetFullName(t *testing.T) {
	u := &User{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", u.GetFullName())

	u = &User{FirstName: "Ada"}
	assert.Equal(t, "Ada", u.GetFullName())

	u = &User{}
	assert.Equal(t, "", u.GetFullName())
}

func TestGetDisplayName(t *testing.T) {
	u := &User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	assert.Equal(t, "Ada Lovelace", u.GetDisplayName())

	u = &User{Email: "ada@example.com"}
	assert.Equal(t, "ada@example.com", u.GetDisplayName())
}

func TestRoleChecks(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsSeller())

	seller := &User{Role: RoleSeller}
	assert.True(t, seller.IsSeller())
	assert.False(t, seller.IsAdmin())

	affiliate := &User{Role: RoleAffiliate}
	assert.True(t, affiliate.IsAffiliate())

	buyer := &User{Role: RoleBuyer}
	assert.False(t, buyer.IsAdmin())
	assert.False(t, buyer.IsSeller())
	assert.False(t, buyer.IsAffiliate())
}
