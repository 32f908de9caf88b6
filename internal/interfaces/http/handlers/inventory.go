// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/analytics"
	"github.com/your-org/bookstore-backend/internal/domain/book"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// InventoryHandler handles seller inventory endpoints
type InventoryHandler struct {
	inventoryService *book.InventoryService
	analyticsService *analytics.Service
	config           *config.Config
	db               *gorm.DB
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(db *gorm.DB, cfg *config.Config) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: book.NewInventoryService(db, cfg),
		analyticsService: analytics.NewService(db, cfg),
		config:           cfg,
		db:               db,
	}
}

// AdjustInventory handles POST /seller/books/:id/inventory
func (h *InventoryHandler) AdjustInventory(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	bookID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid book ID")
		return
	}

	var req book.InventoryAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	adjustment, err := h.inventoryService.AdjustInventory(uint(bookID), userID, middleware.IsAdminFromContext(c), &req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	// Re-check stock alerts now that the level changed
	if err := h.analyticsService.RefreshAlertsForBook(h.db, uint(bookID)); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to refresh inventory alerts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory adjusted successfully",
		"data":    adjustment,
	})
}

// GetAdjustmentHistory handles GET /seller/books/:id/inventory
func (h *InventoryHandler) GetAdjustmentHistory(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	bookID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid book ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	history, total, err := h.inventoryService.GetAdjustmentHistory(uint(bookID), userID, middleware.IsAdminFromContext(c), page, limit)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Adjustment history retrieved successfully",
		"data": gin.H{
			"adjustments": history,
			"total":       total,
			"page":        page,
			"limit":       limit,
		},
	})
}

// GetInventoryAlerts handles GET /seller/inventory/alerts
func (h *InventoryHandler) GetInventoryAlerts(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	alerts, err := h.analyticsService.GetInventoryAlerts(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve inventory alerts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory alerts retrieved successfully",
		"data":    alerts,
	})
}
