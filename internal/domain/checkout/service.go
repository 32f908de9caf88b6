// internal/domain/checkout/service.go
package checkout

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/affiliate"
	"github.com/your-org/bookstore-backend/internal/domain/analytics"
	"github.com/your-org/bookstore-backend/internal/domain/book"
	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles checkout business logic
type Service struct {
	db               *gorm.DB
	redisClient      *redis.Client
	config           *config.Config
	cartService      *cart.Service
	affiliateService *affiliate.Service
	analyticsService *analytics.Service
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config,
	affiliateService *affiliate.Service, analyticsService *analytics.Service) *Service {
	return &Service{
		db:               db,
		redisClient:      redisClient,
		config:           cfg,
		cartService:      cart.NewService(db, redisClient, cfg),
		affiliateService: affiliateService,
		analyticsService: analyticsService,
	}
}

// PlaceOrderRequest represents the checkout submission
type PlaceOrderRequest struct {
	ShippingAddressID uint   `json:"shipping_address_id" binding:"required"`
	ShippingMethodID  uint   `json:"shipping_method_id" binding:"required"`
	Notes             string `json:"notes"`

	// Referral cookie value, set by the handler when present
	VisitorID string `json:"-"`
}

// CheckoutSummary represents the pricing preview before placing an order
type CheckoutSummary struct {
	Cart            *cart.CartResponse     `json:"cart"`
	ShippingAddress *user.Address          `json:"shipping_address,omitempty"`
	ShippingMethods []order.ShippingMethod `json:"shipping_methods"`
	Pricing         CheckoutPricing        `json:"pricing"`
}

// CheckoutPricing represents the pricing breakdown
type CheckoutPricing struct {
	Subtotal       int64   `json:"subtotal"`
	ShippingAmount int64   `json:"shipping_amount"`
	TaxRate        float64 `json:"tax_rate"` // Percentage
	TaxAmount      int64   `json:"tax_amount"`
	TotalAmount    int64   `json:"total_amount"`
}

// GetCheckoutSummary builds the pricing preview for the current cart
func (s *Service) GetCheckoutSummary(userID uint, shippingMethodID *uint) (*CheckoutSummary, error) {
	cartResponse, err := s.cartService.GetCart(&userID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if len(cartResponse.Items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	var methods []order.ShippingMethod
	if err := s.db.Where("is_active = ?", true).Order("sort_order ASC, price ASC").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve shipping methods: %w", err)
	}

	var shippingAmount int64
	if shippingMethodID != nil {
		for _, m := range methods {
			if m.ID == *shippingMethodID {
				shippingAmount = m.Price
				break
			}
		}
	}

	subtotal := cartResponse.Totals.SubTotal
	pricing := s.calculatePricing(subtotal, shippingAmount)

	summary := &CheckoutSummary{
		Cart:            cartResponse,
		ShippingMethods: methods,
		Pricing:         pricing,
	}

	addressService := user.NewAddressService(s.db, s.config)
	if address, err := addressService.GetDefaultAddress(userID, "shipping"); err == nil {
		summary.ShippingAddress = address
	}

	return summary, nil
}

// PlaceOrder turns the user's cart into an order. Stock is decremented
// atomically per line so two buyers cannot both take the last copy.
func (s *Service) PlaceOrder(userID uint, req *PlaceOrderRequest) (*order.Order, error) {
	cartResponse, err := s.cartService.GetCart(&userID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if len(cartResponse.Items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	var u user.User
	if err := s.db.Where("id = ?", userID).First(&u).Error; err != nil {
		return nil, fmt.Errorf("user not found")
	}

	addressService := user.NewAddressService(s.db, s.config)
	shippingAddress, err := addressService.GetAddress(userID, req.ShippingAddressID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shipping address: %w", err)
	}

	var shippingMethod order.ShippingMethod
	if err := s.db.Where("id = ? AND is_active = ?", req.ShippingMethodID, true).First(&shippingMethod).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("shipping method not found")
		}
		return nil, fmt.Errorf("failed to retrieve shipping method: %w", err)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var subtotal int64
	items := make([]order.OrderItem, 0, len(cartResponse.Items))

	for _, cartItem := range cartResponse.Items {
		var b book.Book
		if err := tx.Where("id = ?", cartItem.BookID).First(&b).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("book %d is no longer available", cartItem.BookID)
		}
		if !b.IsPublished {
			tx.Rollback()
			return nil, fmt.Errorf("'%s' is no longer available", b.Title)
		}

		// Conditional decrement, fails when stock ran out since the
		// cart was built
		result := tx.Model(&book.Book{}).
			Where("id = ? AND stock_quantity >= ?", b.ID, cartItem.Quantity).
			UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", cartItem.Quantity))
		if result.Error != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to reserve stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			return nil, fmt.Errorf("insufficient stock for '%s'", b.Title)
		}

		lineTotal := b.Price * int64(cartItem.Quantity)
		subtotal += lineTotal

		items = append(items, order.OrderItem{
			BookID:     b.ID,
			SellerID:   b.SellerID,
			Title:      b.Title,
			Author:     b.Author,
			ISBN:       b.ISBN,
			Quantity:   cartItem.Quantity,
			UnitPrice:  b.Price,
			TotalPrice: lineTotal,
		})

		if err := tx.Model(&book.Book{}).Where("id = ?", b.ID).
			UpdateColumns(map[string]interface{}{
				"total_sales":   gorm.Expr("total_sales + ?", cartItem.Quantity),
				"total_revenue": gorm.Expr("total_revenue + ?", lineTotal),
			}).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update sales counters: %w", err)
		}
	}

	pricing := s.calculatePricing(subtotal, shippingMethod.Price)

	orderNumber, err := s.generateOrderNumber(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	newOrder := order.Order{
		OrderNumber:    orderNumber,
		UserID:         userID,
		Email:          u.Email,
		Status:         order.StatusPending,
		SubtotalAmount: pricing.Subtotal,
		TaxAmount:      pricing.TaxAmount,
		ShippingAmount: pricing.ShippingAmount,
		TotalAmount:    pricing.TotalAmount,
		ShippingAddress: order.Address{
			FirstName:    shippingAddress.FirstName,
			LastName:     shippingAddress.LastName,
			AddressLine1: shippingAddress.AddressLine1,
			AddressLine2: shippingAddress.AddressLine2,
			City:         shippingAddress.City,
			State:        shippingAddress.State,
			PostalCode:   shippingAddress.PostalCode,
			Country:      shippingAddress.Country,
			Phone:        u.Phone,
		},
		Notes:            req.Notes,
		ShippingMethodID: &shippingMethod.ID,
		ShippingMethod:   shippingMethod.Name,
		Items:            items,
	}

	if err := tx.Create(&newOrder).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	history := order.StatusHistory{
		OrderID:   newOrder.ID,
		Status:    order.StatusPending,
		Comment:   "Order placed",
		CreatedBy: userID,
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record order history: %w", err)
	}

	if err := s.affiliateService.RecordConversion(tx, req.VisitorID, userID, newOrder.ID, newOrder.TotalAmount); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record referral conversion: %w", err)
	}

	if err := s.analyticsService.RecordSale(tx, &newOrder); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	for _, item := range items {
		if err := s.analyticsService.RefreshAlertsForBook(tx, item.BookID); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to refresh inventory alerts: %w", err)
		}
	}

	if err := tx.Where("user_id = ?", userID).Delete(&cart.CartItem{}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return &newOrder, nil
}

// calculatePricing applies the flat tax rate on the goods subtotal.
// Shipping is not taxed.
func (s *Service) calculatePricing(subtotal, shippingAmount int64) CheckoutPricing {
	taxRate := s.config.Marketplace.TaxRatePercent
	taxAmount := subtotal * int64(taxRate) / 100

	return CheckoutPricing{
		Subtotal:       subtotal,
		ShippingAmount: shippingAmount,
		TaxRate:        float64(taxRate),
		TaxAmount:      taxAmount,
		TotalAmount:    subtotal + shippingAmount + taxAmount,
	}
}

// generateOrderNumber builds the next sequential number for the current
// year, like BNC-2026-0042. The latest row for the year is locked so
// concurrent checkouts get distinct numbers, with the unique index on
// order_number as the backstop.
func (s *Service) generateOrderNumber(tx *gorm.DB) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", s.config.Marketplace.OrderNumberPrefix, time.Now().UTC().Year())

	var last order.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		First(&last).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return "", fmt.Errorf("failed to determine next order number: %w", err)
	}

	sequence := 1
	if err == nil {
		var lastSequence int
		if _, scanErr := fmt.Sscanf(last.OrderNumber[len(prefix):], "%d", &lastSequence); scanErr == nil {
			sequence = lastSequence + 1
		}
	}

	return fmt.Sprintf("%s%04d", prefix, sequence), nil
}
