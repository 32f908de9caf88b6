// internal/domain/affiliate/payout_db_test.go
package affiliate

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&Affiliate{}, &ReferralLink{}, &Referral{}, &Commission{}, &Payout{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Marketplace: config.MarketplaceConfig{
			MinPayoutCents:        1000,
			DefaultCommissionRate: 10,
		},
	}
}

func seedAffiliateUser(t *testing.T, db *gorm.DB) *user.User {
	t.Helper()
	u := user.User{
		Email:    fmt.Sprintf("partner-%s@example.com", uuid.New().String()[:8]),
		Password: "x",
		Role:     user.RoleAffiliate,
		IsActive: true,
	}
	require.NoError(t, db.Create(&u).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&u) })
	return &u
}

func seedApprovedAffiliate(t *testing.T, db *gorm.DB, userID uint, pendingEarnings int64) *Affiliate {
	t.Helper()
	now := time.Now().UTC()
	a := Affiliate{
		UserID:          userID,
		Status:          StatusApproved,
		PaymentMethod:   "paypal",
		PaypalEmail:     fmt.Sprintf("pay-%d@example.com", userID),
		ReferralCode:    uuid.New().String()[:12],
		CommissionRate:  10,
		IsActive:        true,
		PendingEarnings: pendingEarnings,
		ApprovedAt:      &now,
	}
	require.NoError(t, db.Create(&a).Error)
	t.Cleanup(func() {
		db.Unscoped().Where("affiliate_id = ?", a.ID).Delete(&Payout{})
		db.Unscoped().Delete(&a)
	})
	return &a
}

func TestRequestPayoutDebitBounds(t *testing.T) {
	db := testDB(t)
	svc := NewPayoutService(db, testConfig())

	u := seedAffiliateUser(t, db)
	a := seedApprovedAffiliate(t, db, u.ID, 5000)

	// Over the balance
	_, err := svc.RequestPayout(u.ID, &PayoutRequest{Amount: 6000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds pending earnings")

	var fresh Affiliate
	require.NoError(t, db.First(&fresh, a.ID).Error)
	assert.Equal(t, int64(5000), fresh.PendingEarnings)

	// Under the minimum
	_, err = svc.RequestPayout(u.ID, &PayoutRequest{Amount: 500})
	require.Error(t, err)

	// Within bounds debits exactly the requested amount
	payout, err := svc.RequestPayout(u.ID, &PayoutRequest{Amount: 3000})
	require.NoError(t, err)
	assert.Equal(t, PayoutStatusPending, payout.Status)
	assert.Equal(t, int64(3000), payout.Amount)
	assert.Equal(t, "paypal", payout.PaymentMethod)

	require.NoError(t, db.First(&fresh, a.ID).Error)
	assert.Equal(t, int64(2000), fresh.PendingEarnings)

	// The remaining balance no longer covers another 3000
	_, err = svc.RequestPayout(u.ID, &PayoutRequest{Amount: 3000})
	require.Error(t, err)
	require.NoError(t, db.First(&fresh, a.ID).Error)
	assert.Equal(t, int64(2000), fresh.PendingEarnings)
}

func TestFailedPayoutRestoresBalance(t *testing.T) {
	db := testDB(t)
	svc := NewPayoutService(db, testConfig())

	u := seedAffiliateUser(t, db)
	a := seedApprovedAffiliate(t, db, u.ID, 4000)

	payout, err := svc.RequestPayout(u.ID, &PayoutRequest{Amount: 4000})
	require.NoError(t, err)

	updated, err := svc.UpdatePayoutStatus(payout.ID, PayoutStatusFailed, "transfer bounced")
	require.NoError(t, err)
	assert.Equal(t, PayoutStatusFailed, updated.Status)

	var fresh Affiliate
	require.NoError(t, db.First(&fresh, a.ID).Error)
	assert.Equal(t, int64(4000), fresh.PendingEarnings)

	// Failed is terminal
	_, err = svc.UpdatePayoutStatus(payout.ID, PayoutStatusProcessing, "")
	assert.Error(t, err)
}

func TestRegisterFillsPendingAccount(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, nil, testConfig())

	u := seedAffiliateUser(t, db)

	require.NoError(t, svc.CreatePendingForUser(u.ID))
	t.Cleanup(func() {
		db.Unscoped().Where("user_id = ?", u.ID).Delete(&Affiliate{})
	})

	registered, err := svc.Register(u.ID, &RegisterRequest{
		PaymentMethod: "paypal",
		PaypalEmail:   u.Email,
	})
	require.NoError(t, err)
	assert.Equal(t, "paypal", registered.PaymentMethod)
	assert.NotEmpty(t, registered.ReferralCode)

	// The pre-created record was filled in, not duplicated
	var count int64
	require.NoError(t, db.Model(&Affiliate{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// A second application is rejected
	_, err = svc.Register(u.ID, &RegisterRequest{PaymentMethod: "paypal", PaypalEmail: u.Email})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
