// internal/domain/order/entity_test.go
package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidStatusTransition(t *testing.T) {
	// Legal moves
	assert.True(t, IsValidStatusTransition(StatusPending, StatusProcessing))
	assert.True(t, IsValidStatusTransition(StatusPending, StatusCancelled))
	assert.True(t, IsValidStatusTransition(StatusProcessing, StatusShipped))
	assert.True(t, IsValidStatusTransition(StatusProcessing, StatusCancelled))
	assert.True(t, IsValidStatusTransition(StatusShipped, StatusDelivered))
	assert.True(t, IsValidStatusTransition(StatusDelivered, StatusRefunded))

	// Skipping steps is not allowed
	assert.False(t, IsValidStatusTransition(StatusPending, StatusShipped))
	assert.False(t, IsValidStatusTransition(StatusPending, StatusDelivered))
	assert.False(t, IsValidStatusTransition(StatusProcessing, StatusDelivered))

	// Cancelling after the order entered fulfilment is not allowed
	assert.False(t, IsValidStatusTransition(StatusShipped, StatusCancelled))
	assert.False(t, IsValidStatusTransition(StatusDelivered, StatusCancelled))

	// Terminal states stay terminal
	assert.False(t, IsValidStatusTransition(StatusCancelled, StatusPending))
	assert.False(t, IsValidStatusTransition(StatusRefunded, StatusDelivered))

	// No going backwards
	assert.False(t, IsValidStatusTransition(StatusShipped, StatusProcessing))
}

func TestOrderCanBeCancelled(t *testing.T) {
	o := &Order{Status: StatusPending}
	assert.True(t, o.CanBeCancelled())

	for _, status := range []Status{StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded} {
		o.Status = status
		assert.False(t, o.CanBeCancelled(), "status %s", status)
	}
}

func TestOrderCanBeReturned(t *testing.T) {
	o := &Order{Status: StatusDelivered}
	assert.True(t, o.CanBeReturned())

	o.Status = StatusShipped
	assert.False(t, o.CanBeReturned())
}

func TestOrderIsRevenueCounting(t *testing.T) {
	counting := []Status{StatusProcessing, StatusShipped, StatusDelivered}
	notCounting := []Status{StatusPending, StatusCancelled, StatusRefunded}

	o := &Order{}
	for _, status := range counting {
		o.Status = status
		assert.True(t, o.IsRevenueCounting(), "status %s", status)
	}
	for _, status := range notCounting {
		o.Status = status
		assert.False(t, o.IsRevenueCounting(), "status %s", status)
	}
}

func TestOrderGetFormattedTotal(t *testing.T) {
	o := &Order{TotalAmount: 12345}
	assert.Equal(t, 123.45, o.GetFormattedTotal())
}

func TestAddStatusHistory(t *testing.T) {
	o := &Order{ID: 7}
	o.AddStatusHistory(StatusProcessing, "Payment confirmed", 3)

	assert.Len(t, o.StatusHistory, 1)
	entry := o.StatusHistory[0]
	assert.Equal(t, uint(7), entry.OrderID)
	assert.Equal(t, StatusProcessing, entry.Status)
	assert.Equal(t, "Payment confirmed", entry.Comment)
	assert.Equal(t, uint(3), entry.CreatedBy)
}
