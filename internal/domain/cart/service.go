// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/book"
	"gorm.io/gorm"
)

// Service handles cart business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// CartItemResponse represents a cart line with book details
type CartItemResponse struct {
	BookID   uint       `json:"book_id"`
	Quantity int        `json:"quantity"`
	Price    int64      `json:"price"`
	Book     *book.Book `json:"book,omitempty"`
	AddedAt  time.Time  `json:"added_at"`
}

// CartResponse represents a shopping cart with items and summary
type CartResponse struct {
	SessionID string             `json:"session_id,omitempty"`
	UserID    *uint              `json:"user_id,omitempty"`
	Items     []CartItemResponse `json:"items"`
	Totals    CartTotals         `json:"totals"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	BookID   uint `json:"book_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// GetCart retrieves cart for user or session
func (s *Service) GetCart(userID *uint, sessionID string) (*CartResponse, error) {
	var cartItems []CartItemResponse
	var createdAt, updatedAt time.Time

	if userID != nil {
		// Get user cart from database
		var dbItems []CartItem
		err := s.db.Where("user_id = ?", *userID).Find(&dbItems).Error
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve user cart: %w", err)
		}

		// Convert to response format
		cartItems = make([]CartItemResponse, len(dbItems))
		for i, item := range dbItems {
			cartItems[i] = CartItemResponse{
				BookID:   item.BookID,
				Quantity: item.Quantity,
				Price:    item.Price,
				AddedAt:  item.CreatedAt,
			}
		}

		if len(dbItems) > 0 {
			createdAt = dbItems[0].CreatedAt
			updatedAt = dbItems[0].UpdatedAt
		} else {
			createdAt = time.Now().UTC()
			updatedAt = time.Now().UTC()
		}
	} else {
		// Get guest cart from Redis
		sessionCart, err := s.getGuestCart(sessionID)
		if err != nil {
			return nil, err
		}

		// Convert to response format
		cartItems = make([]CartItemResponse, len(sessionCart.Items))
		for i, item := range sessionCart.Items {
			cartItems[i] = CartItemResponse{
				BookID:   item.BookID,
				Quantity: item.Quantity,
				Price:    item.Price,
				AddedAt:  item.AddedAt,
			}
		}

		createdAt = sessionCart.CreatedAt
		updatedAt = sessionCart.UpdatedAt
	}

	// Load book details for each line
	if err := s.loadBookDetails(cartItems); err != nil {
		return nil, err
	}

	// Calculate totals
	totals := s.calculateTotals(cartItems)

	return &CartResponse{
		SessionID: sessionID,
		UserID:    userID,
		Items:     cartItems,
		Totals:    totals,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// AddToCart adds a book to the cart
func (s *Service) AddToCart(userID *uint, sessionID string, req *AddToCartRequest) (*CartResponse, error) {
	// Validate book exists and is published
	var b book.Book
	result := s.db.Where("id = ? AND is_published = ?", req.BookID, true).First(&b)
	if result.Error != nil {
		return nil, fmt.Errorf("book not found or unpublished")
	}

	// Check stock availability
	if b.StockQuantity < req.Quantity {
		return nil, fmt.Errorf("insufficient stock. Available: %d", b.StockQuantity)
	}

	if userID != nil {
		// Handle user cart
		err := s.addToUserCart(*userID, req.BookID, req.Quantity, b.Price, b.StockQuantity)
		if err != nil {
			return nil, err
		}
	} else {
		// Handle guest cart
		err := s.addToGuestCart(sessionID, req.BookID, req.Quantity, b.Price, b.StockQuantity)
		if err != nil {
			return nil, err
		}
	}

	// Return updated cart
	return s.GetCart(userID, sessionID)
}

// UpdateCartItem updates quantity of a cart line. Quantity zero removes
// the line.
func (s *Service) UpdateCartItem(userID *uint, sessionID string, bookID uint, req *UpdateCartItemRequest) (*CartResponse, error) {
	if req.Quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}

	if req.Quantity > 0 {
		// Validate stock if updating to non-zero quantity
		var b book.Book
		if err := s.db.Where("id = ? AND is_published = ?", bookID, true).First(&b).Error; err != nil {
			return nil, fmt.Errorf("book not found or unpublished")
		}

		if b.StockQuantity < req.Quantity {
			return nil, fmt.Errorf("insufficient stock. Available: %d", b.StockQuantity)
		}
	}

	if userID != nil {
		// Update user cart
		err := s.updateUserCartItem(*userID, bookID, req.Quantity)
		if err != nil {
			return nil, err
		}
	} else {
		// Update guest cart
		err := s.updateGuestCartItem(sessionID, bookID, req.Quantity)
		if err != nil {
			return nil, err
		}
	}

	// Return updated cart
	return s.GetCart(userID, sessionID)
}

// RemoveFromCart removes a line from the cart
func (s *Service) RemoveFromCart(userID *uint, sessionID string, bookID uint) (*CartResponse, error) {
	return s.UpdateCartItem(userID, sessionID, bookID, &UpdateCartItemRequest{Quantity: 0})
}

// ClearCart removes all lines from the cart
func (s *Service) ClearCart(userID *uint, sessionID string) error {
	if userID != nil {
		// Clear user cart from database
		return s.db.Where("user_id = ?", *userID).Delete(&CartItem{}).Error
	}
	// Clear guest cart from Redis
	ctx := context.Background()
	cartKey := fmt.Sprintf("cart:session:%s", sessionID)
	return s.redisClient.Del(ctx, cartKey).Err()
}

// GetCartItemCount returns the number of copies in cart
func (s *Service) GetCartItemCount(userID *uint, sessionID string) (int, error) {
	cartResponse, err := s.GetCart(userID, sessionID)
	if err != nil {
		return 0, nil // Return 0 if cart doesn't exist
	}

	totalItems := 0
	for _, item := range cartResponse.Items {
		totalItems += item.Quantity
	}

	return totalItems, nil
}

// MergeGuestCartToUser merges guest cart to user cart when user logs in
func (s *Service) MergeGuestCartToUser(userID uint, sessionID string) error {
	// Get guest cart
	guestCart, err := s.getGuestCart(sessionID)
	if err != nil || len(guestCart.Items) == 0 {
		return nil // No guest cart to merge
	}

	// Merge each guest cart line
	for _, guestItem := range guestCart.Items {
		// Check if line already exists in user cart
		var existingItem CartItem
		result := s.db.Where("user_id = ? AND book_id = ?", userID, guestItem.BookID).First(&existingItem)

		if result.Error == gorm.ErrRecordNotFound {
			// Line doesn't exist, create new
			newItem := CartItem{
				UserID:   userID,
				BookID:   guestItem.BookID,
				Quantity: guestItem.Quantity,
				Price:    guestItem.Price,
			}
			s.db.Create(&newItem)
		} else {
			// Line exists, update quantity
			existingItem.Quantity += guestItem.Quantity
			s.db.Save(&existingItem)
		}
	}

	// Clear guest cart
	return s.ClearCart(nil, sessionID)
}

// Private helper methods

func (s *Service) addToUserCart(userID, bookID uint, quantity int, price int64, availableStock int) error {
	// Check if line already exists
	var existingItem CartItem
	result := s.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&existingItem)

	if result.Error == gorm.ErrRecordNotFound {
		// Line doesn't exist, create new
		newItem := CartItem{
			UserID:   userID,
			BookID:   bookID,
			Quantity: quantity,
			Price:    price,
		}
		return s.db.Create(&newItem).Error
	}

	// Line exists, update quantity
	newQuantity := existingItem.Quantity + quantity

	// Check stock for new total quantity
	if availableStock < newQuantity {
		return fmt.Errorf("insufficient stock for total quantity. Available: %d", availableStock)
	}

	existingItem.Quantity = newQuantity
	existingItem.Price = price // Update price in case it changed
	return s.db.Save(&existingItem).Error
}

func (s *Service) addToGuestCart(sessionID string, bookID uint, quantity int, price int64, availableStock int) error {
	sessionCart, err := s.getGuestCart(sessionID)
	if err != nil {
		return err
	}

	// Check if line already exists
	itemExists := false
	for i := range sessionCart.Items {
		if sessionCart.Items[i].BookID == bookID {
			// Update existing line quantity
			newQuantity := sessionCart.Items[i].Quantity + quantity

			// Check stock for new total quantity
			if availableStock < newQuantity {
				return fmt.Errorf("insufficient stock for total quantity. Available: %d", availableStock)
			}

			sessionCart.Items[i].Quantity = newQuantity
			sessionCart.Items[i].Price = price // Update price in case it changed
			itemExists = true
			break
		}
	}

	// Add new line if it doesn't exist
	if !itemExists {
		newItem := SessionCartItem{
			BookID:   bookID,
			Quantity: quantity,
			Price:    price,
			AddedAt:  time.Now().UTC(),
		}
		sessionCart.Items = append(sessionCart.Items, newItem)
	}

	sessionCart.UpdatedAt = time.Now().UTC()
	return s.saveGuestCart(sessionID, sessionCart)
}

func (s *Service) updateUserCartItem(userID, bookID uint, quantity int) error {
	if quantity == 0 {
		// Remove line
		return s.db.Where("user_id = ? AND book_id = ?", userID, bookID).Delete(&CartItem{}).Error
	}
	// Update quantity
	return s.db.Model(&CartItem{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Update("quantity", quantity).Error
}

func (s *Service) updateGuestCartItem(sessionID string, bookID uint, quantity int) error {
	sessionCart, err := s.getGuestCart(sessionID)
	if err != nil {
		return err
	}

	// Find and update the line
	itemFound := false
	for i := range sessionCart.Items {
		if sessionCart.Items[i].BookID == bookID {
			if quantity == 0 {
				// Remove line from cart
				sessionCart.Items = append(sessionCart.Items[:i], sessionCart.Items[i+1:]...)
			} else {
				sessionCart.Items[i].Quantity = quantity
			}

			itemFound = true
			break
		}
	}

	if !itemFound {
		return fmt.Errorf("item not found in cart")
	}

	sessionCart.UpdatedAt = time.Now().UTC()
	return s.saveGuestCart(sessionID, sessionCart)
}

func (s *Service) getGuestCart(sessionID string) (*SessionCart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for guest cart")
	}

	ctx := context.Background()
	cartKey := fmt.Sprintf("cart:session:%s", sessionID)

	cartData, err := s.redisClient.Get(ctx, cartKey).Result()
	if err == redis.Nil {
		// Cart doesn't exist, return empty cart
		return &SessionCart{
			SessionID: sessionID,
			Items:     []SessionCartItem{},
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
			ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
		}, nil
	} else if err != nil {
		return nil, err
	}

	var sessionCart SessionCart
	if err := json.Unmarshal([]byte(cartData), &sessionCart); err != nil {
		return nil, err
	}

	return &sessionCart, nil
}

func (s *Service) saveGuestCart(sessionID string, cart *SessionCart) error {
	ctx := context.Background()
	cartKey := fmt.Sprintf("cart:session:%s", sessionID)

	cartData, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	// Set cart with 24 hour expiration
	return s.redisClient.Set(ctx, cartKey, cartData, 24*time.Hour).Err()
}

func (s *Service) loadBookDetails(cartItems []CartItemResponse) error {
	for i := range cartItems {
		// Load book details
		var b book.Book
		err := s.db.Preload("Category").
			Where("id = ?", cartItems[i].BookID).First(&b).Error
		if err != nil {
			continue // Skip if book not found
		}
		cartItems[i].Book = &b
	}

	return nil
}

func (s *Service) calculateTotals(cartItems []CartItemResponse) CartTotals {
	var totals CartTotals

	totals.ItemCount = len(cartItems)

	for _, item := range cartItems {
		totals.TotalQuantity += item.Quantity
		totals.SubTotal += item.Price * int64(item.Quantity)
	}

	return totals
}
