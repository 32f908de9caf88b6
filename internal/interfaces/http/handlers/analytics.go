// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/analytics"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// AnalyticsHandler handles seller and platform analytics endpoints
type AnalyticsHandler struct {
	analyticsService *analytics.Service
	platformService  *analytics.PlatformService
	config           *config.Config
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(db *gorm.DB, cfg *config.Config) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analytics.NewService(db, cfg),
		platformService:  analytics.NewPlatformService(db, cfg),
		config:           cfg,
	}
}

// GetSellerDashboard handles GET /seller/dashboard
func (h *AnalyticsHandler) GetSellerDashboard(c *gin.Context) {
	sellerID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	period := c.DefaultQuery("period", "30d")

	dashboard, err := h.analyticsService.GetSellerDashboard(sellerID, period)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve dashboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard retrieved successfully",
		"data":    dashboard,
	})
}

// GenerateSalesReport handles POST /seller/reports
func (h *AnalyticsHandler) GenerateSalesReport(c *gin.Context) {
	sellerID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		StartDate string `json:"start_date" binding:"required"`
		EndDate   string `json:"end_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid start date, expected YYYY-MM-DD")
		return
	}

	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid end date, expected YYYY-MM-DD")
		return
	}

	if endDate.Before(startDate) {
		respondError(c, http.StatusBadRequest, "End date must not be before start date")
		return
	}

	report, err := h.analyticsService.GenerateSalesReport(sellerID, startDate, endDate)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Sales report generated successfully",
		"data":    report,
	})
}

// GetSalesReports handles GET /seller/reports
func (h *AnalyticsHandler) GetSalesReports(c *gin.Context) {
	sellerID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	reports, total, err := h.analyticsService.GetSalesReports(sellerID, page, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve reports")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sales reports retrieved successfully",
		"data": gin.H{
			"reports": reports,
			"total":   total,
			"page":    page,
			"limit":   limit,
		},
	})
}

// GetPlatformStats handles GET /admin/analytics/stats
func (h *AnalyticsHandler) GetPlatformStats(c *gin.Context) {
	stats, err := h.platformService.GetPlatformStats()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve platform statistics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Platform statistics retrieved successfully",
		"data":    stats,
	})
}

// GetPlatformRevenue handles GET /admin/analytics/revenue
func (h *AnalyticsHandler) GetPlatformRevenue(c *gin.Context) {
	period := c.DefaultQuery("period", "30d")

	revenue, err := h.platformService.GetPlatformRevenue(period)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve platform revenue")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Platform revenue retrieved successfully",
		"data":    revenue,
	})
}
