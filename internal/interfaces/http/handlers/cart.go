// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(db, redisClient, cfg),
		config:      cfg,
	}
}

// contextUserID returns a pointer to the authenticated user ID, or nil
// for guests.
func contextUserID(c *gin.Context) *uint {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return nil
	}
	return &userID
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID := contextUserID(c)
	sessionID := h.getOrCreateSessionID(c)

	cartResponse, err := h.cartService.GetCart(userID, sessionID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    cartResponse,
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID := contextUserID(c)
	sessionID := h.getOrCreateSessionID(c)

	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	cartResponse, err := h.cartService.AddToCart(userID, sessionID, &req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    cartResponse,
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	userID := contextUserID(c)
	sessionID := h.getOrCreateSessionID(c)

	bookIDParam := c.Param("id")
	bookID, err := strconv.ParseUint(bookIDParam, 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid book ID")
		return
	}

	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	cartResponse, err := h.cartService.UpdateCartItem(userID, sessionID, uint(bookID), &req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    cartResponse,
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID := contextUserID(c)
	sessionID := h.getOrCreateSessionID(c)

	bookIDParam := c.Param("id")
	bookID, err := strconv.ParseUint(bookIDParam, 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid book ID")
		return
	}

	cartResponse, err := h.cartService.RemoveFromCart(userID, sessionID, uint(bookID))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    cartResponse,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID := contextUserID(c)
	sessionID := h.getOrCreateSessionID(c)

	err := h.cartService.ClearCart(userID, sessionID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	userID := contextUserID(c)
	sessionID := h.getOrCreateSessionID(c)

	count, err := h.cartService.GetCartItemCount(userID, sessionID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to get cart count")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart count retrieved successfully",
		"data": gin.H{
			"count": count,
		},
	})
}

// MergeGuestCart handles POST /cart/merge - called when user logs in
func (h *CartHandler) MergeGuestCart(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	sessionID := h.getOrCreateSessionID(c)

	err := h.cartService.MergeGuestCartToUser(userID, sessionID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to merge cart")
		return
	}

	// Return updated cart
	cartResponse, err := h.cartService.GetCart(&userID, sessionID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve merged cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Guest cart merged successfully",
		"data":    cartResponse,
	})
}

// ValidateCart handles POST /cart/validate - validates cart items before checkout
func (h *CartHandler) ValidateCart(c *gin.Context) {
	userID := contextUserID(c)
	sessionID := h.getOrCreateSessionID(c)

	cartResponse, err := h.cartService.GetCart(userID, sessionID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Cart not found")
		return
	}

	validationErrors := []string{}

	for _, item := range cartResponse.Items {
		if item.Book == nil {
			validationErrors = append(validationErrors, fmt.Sprintf("Book %d not found", item.BookID))
			continue
		}

		if !item.Book.IsPublished {
			validationErrors = append(validationErrors, fmt.Sprintf("Book '%s' is no longer available", item.Book.Title))
			continue
		}

		if item.Book.StockQuantity < item.Quantity {
			validationErrors = append(validationErrors,
				fmt.Sprintf("Book '%s' has insufficient stock. Available: %d, Requested: %d",
					item.Book.Title, item.Book.StockQuantity, item.Quantity))
		}

		// Check if price has changed since the item was added
		if item.Price != item.Book.Price {
			validationErrors = append(validationErrors,
				fmt.Sprintf("Price for book '%s' has changed. Current: $%.2f, Cart: $%.2f",
					item.Book.Title, float64(item.Book.Price)/100, float64(item.Price)/100))
		}
	}

	if len(validationErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Cart validation failed",
			"code":      errorCode(http.StatusBadRequest),
			"details":   gin.H{"validation_errors": validationErrors},
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"data":      cartResponse,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart validation successful",
		"data":    cartResponse,
	})
}

// getOrCreateSessionID gets session ID from cookie or creates a new one
func (h *CartHandler) getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()

		// Set session cookie (24 hours)
		c.SetCookie("session_id", sessionID, 86400, "/", "", false, true)
	}

	return sessionID
}
