// internal/interfaces/http/handlers/referral.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/affiliate"
	"gorm.io/gorm"
)

// ReferralHandler handles public referral link redirects
type ReferralHandler struct {
	affiliateService *affiliate.Service
	config           *config.Config
}

// NewReferralHandler creates a new referral handler
func NewReferralHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *ReferralHandler {
	return &ReferralHandler{
		affiliateService: affiliate.NewService(db, redisClient, cfg),
		config:           cfg,
	}
}

// HandleReferral handles GET /ref/:code. Records the click, drops the
// visitor cookie used for later conversion attribution, then redirects
// to the storefront.
func (h *ReferralHandler) HandleReferral(c *gin.Context) {
	code := c.Param("code")

	visitorID, err := c.Cookie("visitor_id")
	if err != nil || visitorID == "" {
		visitorID = uuid.New().String()
	}

	// Refresh the cookie on every visit
	c.SetCookie("visitor_id", visitorID,
		int(h.config.Marketplace.ReferralCookieTTL.Seconds()), "/", "", false, true)

	event := &affiliate.ClickEvent{
		VisitorID:   visitorID,
		IPAddress:   c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
		LandingPath: c.Request.URL.Path,
		Campaign:    c.Query("campaign"),
	}

	// An unknown or inactive code still redirects, it just earns nothing
	_, _ = h.affiliateService.TrackClick(c.Request.Context(), code, event)

	c.Redirect(http.StatusFound, h.config.Marketplace.BaseURL)
}
