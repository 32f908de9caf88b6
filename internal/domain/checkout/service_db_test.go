// internal/domain/checkout/service_db_test.go
package checkout

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/bookstore-backend/internal/domain/affiliate"
	"github.com/your-org/bookstore-backend/internal/domain/analytics"
	"github.com/your-org/bookstore-backend/internal/domain/book"
	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"github.com/your-org/bookstore-backend/internal/domain/order"
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
		&user.User{}, &user.Address{},
		&book.Category{}, &book.Book{},
		&cart.CartItem{},
		&order.ShippingMethod{}, &order.Order{}, &order.OrderItem{}, &order.StatusHistory{},
		&affiliate.Affiliate{}, &affiliate.Referral{}, &affiliate.Commission{},
		&analytics.DailySales{}, &analytics.BookPerformance{}, &analytics.InventoryAlert{},
	))
	return db
}

func testService(db *gorm.DB) *Service {
	cfg := testConfig()
	// Redis is only touched for guest carts, which checkout never uses
	rdb := goredis.NewClient(&goredis.Options{})
	return NewService(db, rdb, cfg, affiliate.NewService(db, rdb, cfg), analytics.NewService(db, cfg))
}

func seedCheckoutFixtures(t *testing.T, db *gorm.DB, stock, cartQty int) (*user.User, *book.Book, *user.Address, *order.ShippingMethod) {
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
		Title:         "Checkout Book " + tag,
		Slug:          "checkout-book-" + tag,
		ISBN:          "9780306406157",
		Author:        "Test Author",
		Price:         2000,
		StockQuantity: stock,
		CategoryID:    category.ID,
		SellerID:      buyer.ID,
		IsPublished:   true,
	}
	require.NoError(t, db.Create(&b).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&b) })

	item := cart.CartItem{UserID: buyer.ID, BookID: b.ID, Quantity: cartQty, Price: b.Price}
	require.NoError(t, db.Create(&item).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&item) })

	address := user.Address{
		UserID:       buyer.ID,
		Type:         "shipping",
		FirstName:    "Test",
		LastName:     "Buyer",
		AddressLine1: "1 Main St",
		City:         "Springfield",
		Country:      "US",
		IsDefault:    true,
	}
	require.NoError(t, db.Create(&address).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&address) })

	method := order.ShippingMethod{Name: "Standard " + tag, Price: 500, IsActive: true}
	require.NoError(t, db.Create(&method).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&method) })

	return &buyer, &b, &address, &method
}

func TestPlaceOrderStockShortfallRollsBack(t *testing.T) {
	db := testDB(t)
	svc := testService(db)

	buyer, b, address, method := seedCheckoutFixtures(t, db, 1, 3)

	_, err := svc.PlaceOrder(buyer.ID, &PlaceOrderRequest{
		ShippingAddressID: address.ID,
		ShippingMethodID:  method.ID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient stock")

	// Nothing moved: stock untouched, no order created, cart intact
	var fresh book.Book
	require.NoError(t, db.First(&fresh, b.ID).Error)
	assert.Equal(t, 1, fresh.StockQuantity)
	assert.Equal(t, 0, fresh.TotalSales)

	var orderCount int64
	require.NoError(t, db.Model(&order.Order{}).Where("user_id = ?", buyer.ID).Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)

	var cartCount int64
	require.NoError(t, db.Model(&cart.CartItem{}).Where("user_id = ?", buyer.ID).Count(&cartCount).Error)
	assert.Equal(t, int64(1), cartCount)
}

func TestPlaceOrderDecrementsStockAndClearsCart(t *testing.T) {
	db := testDB(t)
	svc := testService(db)

	buyer, b, address, method := seedCheckoutFixtures(t, db, 5, 2)

	placed, err := svc.PlaceOrder(buyer.ID, &PlaceOrderRequest{
		ShippingAddressID: address.ID,
		ShippingMethodID:  method.ID,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Unscoped().Where("order_id = ?", placed.ID).Delete(&order.OrderItem{})
		db.Unscoped().Where("order_id = ?", placed.ID).Delete(&order.StatusHistory{})
		db.Unscoped().Delete(&order.Order{}, placed.ID)
		db.Unscoped().Where("book_id = ?", b.ID).Delete(&analytics.BookPerformance{})
		db.Unscoped().Where("book_id = ?", b.ID).Delete(&analytics.InventoryAlert{})
		db.Unscoped().Where("seller_id = ?", b.SellerID).Delete(&analytics.DailySales{})
	})

	assert.Equal(t, order.StatusPending, placed.Status)
	assert.Contains(t, placed.OrderNumber, "BNC-")

	// Subtotal 4000, 10 percent tax on goods only, 500 shipping
	assert.Equal(t, int64(4000), placed.SubtotalAmount)
	assert.Equal(t, int64(400), placed.TaxAmount)
	assert.Equal(t, int64(500), placed.ShippingAmount)
	assert.Equal(t, int64(4900), placed.TotalAmount)

	var fresh book.Book
	require.NoError(t, db.First(&fresh, b.ID).Error)
	assert.Equal(t, 3, fresh.StockQuantity)
	assert.Equal(t, 2, fresh.TotalSales)
	assert.Equal(t, int64(4000), fresh.TotalRevenue)

	var cartCount int64
	require.NoError(t, db.Model(&cart.CartItem{}).Where("user_id = ?", buyer.ID).Count(&cartCount).Error)
	assert.Equal(t, int64(0), cartCount)
}
