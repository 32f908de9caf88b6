// internal/domain/affiliate/affiliate_test.go
package affiliate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateGrowth(t *testing.T) {
	// From nothing to something is treated as 100% growth
	assert.Equal(t, float64(100), CalculateGrowth(500, 0))

	// Nothing to nothing is flat
	assert.Equal(t, float64(0), CalculateGrowth(0, 0))

	// Regular deltas
	assert.Equal(t, float64(50), CalculateGrowth(150, 100))
	assert.Equal(t, float64(-25), CalculateGrowth(75, 100))
	assert.Equal(t, float64(-100), CalculateGrowth(0, 200))
}

func TestAffiliateCanEarn(t *testing.T) {
	a := &Affiliate{Status: StatusApproved, IsActive: true}
	assert.True(t, a.CanEarn())
	assert.True(t, a.CanRequestPayout())

	a.IsActive = false
	assert.False(t, a.CanEarn())

	a = &Affiliate{Status: StatusPending, IsActive: true}
	assert.False(t, a.CanEarn())
	assert.False(t, a.CanRequestPayout())

	a.Status = StatusSuspended
	assert.False(t, a.CanEarn())
}

func TestAffiliateConversionRate(t *testing.T) {
	a := &Affiliate{TotalClicks: 0, TotalConversions: 0}
	assert.Equal(t, float64(0), a.ConversionRate())

	a = &Affiliate{TotalClicks: 200, TotalConversions: 5}
	assert.Equal(t, 2.5, a.ConversionRate())
}

func TestReferralIsConverted(t *testing.T) {
	r := &Referral{}
	assert.False(t, r.IsConverted())

	now := time.Now().UTC()
	r.ConvertedAt = &now
	assert.True(t, r.IsConverted())
}

func TestPayoutTransitions(t *testing.T) {
	allowed := func(from, to string) bool {
		for _, next := range validPayoutTransitions[from] {
			if next == to {
				return true
			}
		}
		return false
	}

	assert.True(t, allowed(PayoutStatusPending, PayoutStatusProcessing))
	assert.True(t, allowed(PayoutStatusPending, PayoutStatusFailed))
	assert.True(t, allowed(PayoutStatusProcessing, PayoutStatusPaid))
	assert.True(t, allowed(PayoutStatusProcessing, PayoutStatusFailed))

	// Pending cannot jump straight to paid
	assert.False(t, allowed(PayoutStatusPending, PayoutStatusPaid))

	// Terminal states
	assert.False(t, allowed(PayoutStatusPaid, PayoutStatusProcessing))
	assert.False(t, allowed(PayoutStatusFailed, PayoutStatusPending))
}

func TestRandomReferralCodeShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := randomReferralCode()
		assert.NoError(t, err)
		assert.Len(t, code, 10)
		assert.Equal(t, "AFF", code[:3])
		for _, c := range code[3:] {
			assert.Contains(t, referralCodeCharset, string(c))
		}
		seen[code] = true
	}

	// Random codes should essentially never collide in 50 draws
	assert.Greater(t, len(seen), 45)
}

func TestPeriodDays(t *testing.T) {
	days, err := periodDays("7d")
	assert.NoError(t, err)
	assert.Equal(t, 7, days)

	days, err = periodDays("")
	assert.NoError(t, err)
	assert.Equal(t, 30, days)

	days, err = periodDays("90d")
	assert.NoError(t, err)
	assert.Equal(t, 90, days)

	_, err = periodDays("365d")
	assert.Error(t, err)
}
