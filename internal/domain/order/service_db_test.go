// internal/domain/order/service_db_test.go
package order

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/book"
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
		&book.Category{}, &book.Book{},
		&ShippingMethod{}, &Order{}, &OrderItem{}, &StatusHistory{},
		&ReturnRequest{}, &ReturnItem{},
	))
	return db
}

func seedBuyerAndBook(t *testing.T, db *gorm.DB, stock int) (*user.User, *book.Book) {
	t.Helper()
	tag := uuid.New().String()[:8]

	buyer := user.User{
		Email:    fmt.Sprintf("buyer-%s@example.com", tag),
		Password: "x",
		Role:     user.RoleBuyer,
		IsActive: true,
	}
	require.NoError(t, db.Create(&buyer).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&buyer) })

	category := book.Category{Name: "Fiction " + tag, Slug: "fiction-" + tag}
	require.NoError(t, db.Create(&category).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&category) })

	b := book.Book{
		Title:         "Test Book " + tag,
		Slug:          "test-book-" + tag,
		ISBN:          "9780306406157",
		Author:        "Test Author",
		Price:         1500,
		StockQuantity: stock,
		CategoryID:    category.ID,
		SellerID:      buyer.ID,
		IsPublished:   true,
	}
	require.NoError(t, db.Create(&b).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&b) })

	return &buyer, &b
}

func TestCancelOrderRestoresStockExactly(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, &config.Config{})

	var refreshed []uint
	svc.SetStockAlertRefresher(func(tx *gorm.DB, bookID uint) error {
		refreshed = append(refreshed, bookID)
		return nil
	})

	buyer, b := seedBuyerAndBook(t, db, 3)
	require.NoError(t, db.Model(b).UpdateColumns(map[string]interface{}{
		"total_sales":   2,
		"total_revenue": 3000,
	}).Error)

	o := Order{
		OrderNumber:    "TST-" + uuid.New().String()[:12],
		UserID:         buyer.ID,
		Email:          buyer.Email,
		Status:         StatusPending,
		SubtotalAmount: 3000,
		TotalAmount:    3000,
		Items: []OrderItem{{
			BookID:     b.ID,
			SellerID:   b.SellerID,
			Title:      b.Title,
			Quantity:   2,
			UnitPrice:  1500,
			TotalPrice: 3000,
		}},
	}
	require.NoError(t, db.Create(&o).Error)
	t.Cleanup(func() {
		db.Unscoped().Where("order_id = ?", o.ID).Delete(&OrderItem{})
		db.Unscoped().Where("order_id = ?", o.ID).Delete(&StatusHistory{})
		db.Unscoped().Delete(&o)
	})

	require.NoError(t, svc.CancelOrder(o.ID, buyer.ID, false, "changed my mind"))

	var fresh book.Book
	require.NoError(t, db.First(&fresh, b.ID).Error)
	assert.Equal(t, 5, fresh.StockQuantity)
	assert.Equal(t, 0, fresh.TotalSales)
	assert.Equal(t, int64(0), fresh.TotalRevenue)

	var cancelled Order
	require.NoError(t, db.First(&cancelled, o.ID).Error)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	// Restocking re-evaluates the book's stock alerts
	assert.Equal(t, []uint{b.ID}, refreshed)

	// Cancelled is terminal
	err := svc.CancelOrder(o.ID, buyer.ID, false, "again")
	assert.Error(t, err)
}

func TestRefundedReturnRestocksAndRefreshesAlerts(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, &config.Config{})

	var refreshed []uint
	svc.SetStockAlertRefresher(func(tx *gorm.DB, bookID uint) error {
		refreshed = append(refreshed, bookID)
		return nil
	})

	buyer, b := seedBuyerAndBook(t, db, 0)

	o := Order{
		OrderNumber:    "TST-" + uuid.New().String()[:12],
		UserID:         buyer.ID,
		Email:          buyer.Email,
		Status:         StatusDelivered,
		SubtotalAmount: 1500,
		TotalAmount:    1500,
		Items: []OrderItem{{
			BookID:     b.ID,
			SellerID:   b.SellerID,
			Title:      b.Title,
			Quantity:   1,
			UnitPrice:  1500,
			TotalPrice: 1500,
		}},
	}
	require.NoError(t, db.Create(&o).Error)
	t.Cleanup(func() {
		db.Unscoped().Where("order_id = ?", o.ID).Delete(&OrderItem{})
		db.Unscoped().Where("order_id = ?", o.ID).Delete(&StatusHistory{})
		db.Unscoped().Delete(&o)
	})

	rr := ReturnRequest{
		OrderID: o.ID,
		UserID:  buyer.ID,
		Status:  ReturnStatusReceived,
		Reason:  "damaged in transit",
		Items:   []ReturnItem{{OrderItemID: o.Items[0].ID, Quantity: 1}},
	}
	require.NoError(t, db.Create(&rr).Error)
	t.Cleanup(func() {
		db.Unscoped().Where("return_request_id = ?", rr.ID).Delete(&ReturnItem{})
		db.Unscoped().Delete(&rr)
	})

	updated, err := svc.UpdateReturnStatus(rr.ID, ReturnStatusRefunded, "refund issued")
	require.NoError(t, err)
	assert.Equal(t, ReturnStatusRefunded, updated.Status)

	var fresh book.Book
	require.NoError(t, db.First(&fresh, b.ID).Error)
	assert.Equal(t, 1, fresh.StockQuantity)

	var refunded Order
	require.NoError(t, db.First(&refunded, o.ID).Error)
	assert.Equal(t, StatusRefunded, refunded.Status)

	assert.Equal(t, []uint{b.ID}, refreshed)
}
