// internal/interfaces/http/handlers/affiliate_admin.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListAffiliates handles GET /admin/affiliates
func (h *AffiliateHandler) ListAffiliates(c *gin.Context) {
	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	affiliates, total, err := h.affiliateService.ListAffiliates(status, page, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve affiliates")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Affiliates retrieved successfully",
		"data": gin.H{
			"affiliates": affiliates,
			"total":      total,
			"page":       page,
			"limit":      limit,
		},
	})
}

// UpdateAffiliateStatus handles PUT /admin/affiliates/:id/status
func (h *AffiliateHandler) UpdateAffiliateStatus(c *gin.Context) {
	affiliateID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid affiliate ID")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	account, err := h.affiliateService.UpdateStatus(uint(affiliateID), req.Status)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Affiliate status updated successfully",
		"data":    account,
	})
}

// GetAllPayouts handles GET /admin/payouts
func (h *AffiliateHandler) GetAllPayouts(c *gin.Context) {
	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	payouts, total, err := h.payoutService.GetAllPayouts(status, page, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve payouts")
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

// UpdatePayoutStatus handles PUT /admin/payouts/:id/status
func (h *AffiliateHandler) UpdatePayoutStatus(c *gin.Context) {
	payoutID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid payout ID")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	payout, err := h.payoutService.UpdatePayoutStatus(uint(payoutID), req.Status, req.Notes)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payout status updated successfully",
		"data":    payout,
	})
}
