// internal/interfaces/http/handlers/affiliate.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/affiliate"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// AffiliateHandler handles affiliate program endpoints
type AffiliateHandler struct {
	affiliateService *affiliate.Service
	payoutService    *affiliate.PayoutService
	config           *config.Config
}

// NewAffiliateHandler creates a new affiliate handler
func NewAffiliateHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *AffiliateHandler {
	return &AffiliateHandler{
		affiliateService: affiliate.NewService(db, redisClient, cfg),
		payoutService:    affiliate.NewPayoutService(db, cfg),
		config:           cfg,
	}
}

// Register handles POST /affiliate/register
func (h *AffiliateHandler) Register(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req affiliate.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	account, err := h.affiliateService.Register(userID, &req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Affiliate registration submitted successfully",
		"data":    account,
	})
}

// GetAccount handles GET /affiliate/me
func (h *AffiliateHandler) GetAccount(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	account, err := h.affiliateService.GetByUser(userID)
	if err != nil {
		respondError(c, http.StatusNotFound, "Affiliate account not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Affiliate account retrieved successfully",
		"data":    account,
	})
}

// CreateReferralLink handles POST /affiliate/links
func (h *AffiliateHandler) CreateReferralLink(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req affiliate.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	link, err := h.affiliateService.CreateReferralLink(userID, &req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Referral link created successfully",
		"data":    link,
	})
}

// GetReferralLinks handles GET /affiliate/links
func (h *AffiliateHandler) GetReferralLinks(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	links, err := h.affiliateService.GetReferralLinks(userID)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Referral links retrieved successfully",
		"data":    links,
	})
}

// GetDashboard handles GET /affiliate/dashboard
func (h *AffiliateHandler) GetDashboard(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	period := c.DefaultQuery("period", "30d")

	dashboard, err := h.affiliateService.GetDashboard(userID, period)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard retrieved successfully",
		"data":    dashboard,
	})
}

// GetCommissions handles GET /affiliate/commissions
func (h *AffiliateHandler) GetCommissions(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	commissions, total, err := h.affiliateService.GetCommissions(userID, status, page, limit)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Commissions retrieved successfully",
		"data": gin.H{
			"commissions": commissions,
			"total":       total,
			"page":        page,
			"limit":       limit,
		},
	})
}

// RequestPayout handles POST /affiliate/payouts
func (h *AffiliateHandler) RequestPayout(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req affiliate.PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	payout, err := h.payoutService.RequestPayout(userID, &req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payout requested successfully",
		"data":    payout,
	})
}

// GetPayouts handles GET /affiliate/payouts
func (h *AffiliateHandler) GetPayouts(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	payouts, total, err := h.payoutService.GetPayouts(userID, page, limit)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payouts retrieved successfully",
		"data": gin.H{
			"payouts": payouts,
			"total":   total,
			"page":    page,
			"limit":   limit,
		},
	})
}
