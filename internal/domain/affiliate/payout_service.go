// internal/domain/affiliate/payout_service.go
package affiliate

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/bookstore-backend/internal/config"
	"gorm.io/gorm"
)

// PayoutService handles affiliate payout requests and processing
type PayoutService struct {
	db     *gorm.DB
	config *config.Config
}

// NewPayoutService creates a new payout service
func NewPayoutService(db *gorm.DB, cfg *config.Config) *PayoutService {
	return &PayoutService{
		db:     db,
		config: cfg,
	}
}

// PayoutRequest represents an affiliate payout request
type PayoutRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Notes  string `json:"notes"`
}

// RequestPayout debits pending earnings and opens a payout. The debit
// is conditional on the balance still covering the amount so two
// concurrent requests cannot both drain it.
func (s *PayoutService) RequestPayout(userID uint, req *PayoutRequest) (*Payout, error) {
	var affiliate Affiliate
	if err := s.db.Where("user_id = ?", userID).First(&affiliate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("affiliate account not found")
		}
		return nil, fmt.Errorf("failed to retrieve affiliate account: %w", err)
	}

	if !affiliate.CanRequestPayout() {
		return nil, fmt.Errorf("affiliate account is not eligible for payouts")
	}

	if req.Amount < s.config.Marketplace.MinPayoutCents {
		return nil, fmt.Errorf("minimum payout amount is %d cents", s.config.Marketplace.MinPayoutCents)
	}

	if req.Amount > affiliate.PendingEarnings {
		return nil, fmt.Errorf("payout amount exceeds pending earnings")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	result := tx.Model(&Affiliate{}).
		Where("id = ? AND pending_earnings >= ?", affiliate.ID, req.Amount).
		UpdateColumn("pending_earnings", gorm.Expr("pending_earnings - ?", req.Amount))
	if result.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to reserve payout amount: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, fmt.Errorf("payout amount exceeds pending earnings")
	}

	payout := Payout{
		AffiliateID:   affiliate.ID,
		Amount:        req.Amount,
		Status:        PayoutStatusPending,
		PaymentMethod: affiliate.PaymentMethod,
		Reference:     uuid.New().String(),
		Notes:         req.Notes,
	}
	if err := tx.Create(&payout).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create payout: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit payout request: %w", err)
	}

	return &payout, nil
}

// GetPayouts lists an affiliate's payouts
func (s *PayoutService) GetPayouts(userID uint, page, limit int) ([]Payout, int64, error) {
	var affiliate Affiliate
	if err := s.db.Where("user_id = ?", userID).First(&affiliate).Error; err != nil {
		return nil, 0, fmt.Errorf("affiliate account not found")
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&Payout{}).Where("affiliate_id = ?", affiliate.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payouts: %w", err)
	}

	var payouts []Payout
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&payouts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve payouts: %w", err)
	}

	return payouts, total, nil
}

// GetAllPayouts lists payouts across the program for admins
func (s *PayoutService) GetAllPayouts(status string, page, limit int) ([]Payout, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&Payout{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payouts: %w", err)
	}

	var payouts []Payout
	offset := (page - 1) * limit
	if err := query.Preload("Affiliate").Order("created_at DESC").Offset(offset).Limit(limit).Find(&payouts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve payouts: %w", err)
	}

	return payouts, total, nil
}

var validPayoutTransitions = map[string][]string{
	PayoutStatusPending:    {PayoutStatusProcessing, PayoutStatusFailed},
	PayoutStatusProcessing: {PayoutStatusPaid, PayoutStatusFailed},
	PayoutStatusPaid:       {},
	PayoutStatusFailed:     {},
}

// UpdatePayoutStatus advances a payout through processing (admin).
// Paying compounds into paid earnings, failing credits the amount back.
func (s *PayoutService) UpdatePayoutStatus(payoutID uint, status, notes string) (*Payout, error) {
	var payout Payout
	if err := s.db.First(&payout, payoutID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("payout not found")
		}
		return nil, fmt.Errorf("failed to retrieve payout: %w", err)
	}

	allowed := false
	for _, next := range validPayoutTransitions[payout.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("cannot transition payout from %s to %s", payout.Status, status)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	updates := map[string]interface{}{"status": status}
	if notes != "" {
		updates["notes"] = notes
	}

	switch status {
	case PayoutStatusPaid:
		updates["paid_at"] = time.Now().UTC()
		if err := tx.Model(&Affiliate{}).Where("id = ?", payout.AffiliateID).
			UpdateColumn("paid_earnings", gorm.Expr("paid_earnings + ?", payout.Amount)).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update paid earnings: %w", err)
		}

		if err := tx.Model(&Commission{}).
			Where("affiliate_id = ? AND status = ?", payout.AffiliateID, CommissionStatusPending).
			Update("status", CommissionStatusPaid).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to settle commissions: %w", err)
		}
	case PayoutStatusFailed:
		// Return the reserved amount to the pending balance
		if err := tx.Model(&Affiliate{}).Where("id = ?", payout.AffiliateID).
			UpdateColumn("pending_earnings", gorm.Expr("pending_earnings + ?", payout.Amount)).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to restore pending earnings: %w", err)
		}
	}

	if err := tx.Model(&payout).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update payout: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit payout update: %w", err)
	}

	s.db.First(&payout, payoutID)
	return &payout, nil
}
