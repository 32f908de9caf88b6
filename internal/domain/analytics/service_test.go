// internal/domain/analytics/service_test.go
package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateGrowth(t *testing.T) {
	// Growing from nothing reads as 100 percent
	assert.Equal(t, float64(100), calculateGrowth(500, 0))
	assert.Equal(t, float64(0), calculateGrowth(0, 0))

	assert.Equal(t, float64(50), calculateGrowth(150, 100))
	assert.Equal(t, float64(-25), calculateGrowth(75, 100))
	assert.Equal(t, float64(-100), calculateGrowth(0, 200))
}

func TestPeriodDays(t *testing.T) {
	days, err := periodDays("7d")
	assert.NoError(t, err)
	assert.Equal(t, 7, days)

	days, err = periodDays("30d")
	assert.NoError(t, err)
	assert.Equal(t, 30, days)

	// Empty period falls back to the 30 day default
	days, err = periodDays("")
	assert.NoError(t, err)
	assert.Equal(t, 30, days)

	days, err = periodDays("90d")
	assert.NoError(t, err)
	assert.Equal(t, 90, days)

	_, err = periodDays("365d")
	assert.Error(t, err)
}
