// internal/domain/checkout/service_test.go
package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/bookstore-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Marketplace: config.MarketplaceConfig{
			TaxRatePercent:    10,
			OrderNumberPrefix: "BNC",
		},
	}
}

func TestCalculatePricing(t *testing.T) {
	s := &Service{config: testConfig()}

	pricing := s.calculatePricing(10000, 499)

	assert.Equal(t, int64(10000), pricing.Subtotal)
	assert.Equal(t, int64(499), pricing.ShippingAmount)
	assert.Equal(t, float64(10), pricing.TaxRate)

	// Tax applies to the subtotal only, never to shipping
	assert.Equal(t, int64(1000), pricing.TaxAmount)
	assert.Equal(t, int64(11499), pricing.TotalAmount)
}

func TestCalculatePricingRoundsDown(t *testing.T) {
	s := &Service{config: testConfig()}

	// 10% of 1099 is 109.9 cents, integer math truncates
	pricing := s.calculatePricing(1099, 0)
	assert.Equal(t, int64(109), pricing.TaxAmount)
	assert.Equal(t, int64(1208), pricing.TotalAmount)
}

func TestCalculatePricingFreeShipping(t *testing.T) {
	s := &Service{config: testConfig()}

	pricing := s.calculatePricing(5000, 0)
	assert.Equal(t, int64(500), pricing.TaxAmount)
	assert.Equal(t, int64(5500), pricing.TotalAmount)
}

func TestCalculatePricingEmptyCart(t *testing.T) {
	s := &Service{config: testConfig()}

	pricing := s.calculatePricing(0, 499)
	assert.Equal(t, int64(0), pricing.TaxAmount)
	assert.Equal(t, int64(499), pricing.TotalAmount)
}
