// internal/domain/cart/service_test.go
package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTotals(t *testing.T) {
	s := &Service{}

	items := []CartItemResponse{
		{BookID: 1, Quantity: 2, Price: 1599},
		{BookID: 2, Quantity: 1, Price: 4299},
		{BookID: 3, Quantity: 3, Price: 999},
	}

	totals := s.calculateTotals(items)

	assert.Equal(t, 3, totals.ItemCount)
	assert.Equal(t, 6, totals.TotalQuantity)
	assert.Equal(t, int64(2*1599+4299+3*999), totals.SubTotal)
}

func TestCalculateTotalsEmpty(t *testing.T) {
	s := &Service{}

	totals := s.calculateTotals(nil)

	assert.Equal(t, 0, totals.ItemCount)
	assert.Equal(t, 0, totals.TotalQuantity)
	assert.Equal(t, int64(0), totals.SubTotal)
}
