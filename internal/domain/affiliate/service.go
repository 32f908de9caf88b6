// internal/domain/affiliate/service.go
package affiliate

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Service handles affiliate program business logic
type Service struct {
	db          *gorm.DB
	redisClient *goredis.Client
	config      *config.Config
}

// NewService creates a new affiliate service
func NewService(db *gorm.DB, redisClient *goredis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// RegisterRequest represents an affiliate application
type RegisterRequest struct {
	PaymentMethod     string `json:"payment_method" binding:"required"`
	PaypalEmail       string `json:"paypal_email"`
	BankAccountHolder string `json:"bank_account_holder"`
	BankAccountNumber string `json:"bank_account_number"`
	BankRoutingNumber string `json:"bank_routing_number"`
	BankName          string `json:"bank_name"`
}

// CreateLinkRequest represents a campaign link request
type CreateLinkRequest struct {
	Campaign string `json:"campaign" binding:"required"`
}

// ClickEvent carries the request details of a referral click
type ClickEvent struct {
	VisitorID   string
	IPAddress   string
	UserAgent   string
	LandingPath string
	Campaign    string
}

// Register creates an affiliate account for a user holding the
// affiliate role. Payment details are validated per method.
func (s *Service) Register(userID uint, req *RegisterRequest) (*Affiliate, error) {
	var u user.User
	if err := s.db.Where("id = ?", userID).First(&u).Error; err != nil {
		return nil, fmt.Errorf("user not found")
	}
	if !u.IsAffiliate() {
		return nil, fmt.Errorf("only users with the affiliate role can join the program")
	}

	if err := validatePaymentDetails(req); err != nil {
		return nil, err
	}

	// One affiliate account per user. Registration with the affiliate
	// role pre-creates a pending record, so fill it in if present.
	var existing Affiliate
	err := s.db.Where("user_id = ?", userID).First(&existing).Error
	if err == nil && existing.PaymentMethod != "" {
		return nil, fmt.Errorf("affiliate account already exists")
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to check affiliate account: %w", err)
	}

	code, err := s.generateReferralCode()
	if err != nil {
		return nil, err
	}

	if existing.ID != 0 {
		updates := map[string]interface{}{
			"payment_method":      req.PaymentMethod,
			"paypal_email":        req.PaypalEmail,
			"bank_account_holder": req.BankAccountHolder,
			"bank_account_number": req.BankAccountNumber,
			"bank_routing_number": req.BankRoutingNumber,
			"bank_name":           req.BankName,
		}
		if existing.ReferralCode == "" {
			updates["referral_code"] = code
		}
		if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update affiliate account: %w", err)
		}
		s.db.First(&existing, existing.ID)
		return &existing, nil
	}

	affiliate := Affiliate{
		UserID:            userID,
		Status:            StatusPending,
		PaymentMethod:     req.PaymentMethod,
		PaypalEmail:       req.PaypalEmail,
		BankAccountHolder: req.BankAccountHolder,
		BankAccountNumber: req.BankAccountNumber,
		BankRoutingNumber: req.BankRoutingNumber,
		BankName:          req.BankName,
		ReferralCode:      code,
		CommissionRate:    s.config.Marketplace.DefaultCommissionRate,
		IsActive:          true,
	}

	if err := s.db.Create(&affiliate).Error; err != nil {
		return nil, fmt.Errorf("failed to create affiliate account: %w", err)
	}

	return &affiliate, nil
}

// CreatePendingForUser pre-creates a blank pending affiliate record at
// registration time for users who pick the affiliate role.
func (s *Service) CreatePendingForUser(userID uint) error {
	var count int64
	s.db.Model(&Affiliate{}).Where("user_id = ?", userID).Count(&count)
	if count > 0 {
		return nil
	}

	code, err := s.generateReferralCode()
	if err != nil {
		return err
	}

	affiliate := Affiliate{
		UserID:         userID,
		Status:         StatusPending,
		ReferralCode:   code,
		CommissionRate: s.config.Marketplace.DefaultCommissionRate,
		IsActive:       true,
	}
	return s.db.Create(&affiliate).Error
}

// GetByUser retrieves the affiliate account of a user
func (s *Service) GetByUser(userID uint) (*Affiliate, error) {
	var affiliate Affiliate
	if err := s.db.Where("user_id = ?", userID).First(&affiliate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("affiliate account not found")
		}
		return nil, fmt.Errorf("failed to retrieve affiliate account: %w", err)
	}
	return &affiliate, nil
}

// GetByCode retrieves an affiliate by referral code
func (s *Service) GetByCode(code string) (*Affiliate, error) {
	var affiliate Affiliate
	if err := s.db.Where("referral_code = ?", code).First(&affiliate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("referral code not found")
		}
		return nil, fmt.Errorf("failed to retrieve affiliate: %w", err)
	}
	return &affiliate, nil
}

// ListAffiliates lists affiliate accounts for admins, optionally by status
func (s *Service) ListAffiliates(status string, page, limit int) ([]Affiliate, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&Affiliate{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count affiliates: %w", err)
	}

	var affiliates []Affiliate
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&affiliates).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve affiliates: %w", err)
	}

	return affiliates, total, nil
}

// UpdateStatus moves an affiliate application between statuses (admin)
func (s *Service) UpdateStatus(affiliateID uint, status string) (*Affiliate, error) {
	switch status {
	case StatusApproved, StatusRejected, StatusSuspended:
	default:
		return nil, fmt.Errorf("invalid affiliate status: %s", status)
	}

	var affiliate Affiliate
	if err := s.db.First(&affiliate, affiliateID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("affiliate not found")
		}
		return nil, fmt.Errorf("failed to retrieve affiliate: %w", err)
	}

	updates := map[string]interface{}{"status": status}
	if status == StatusApproved && affiliate.ApprovedAt == nil {
		updates["approved_at"] = time.Now().UTC()
	}

	if err := s.db.Model(&affiliate).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update affiliate status: %w", err)
	}

	s.db.First(&affiliate, affiliateID)
	return &affiliate, nil
}

// CreateReferralLink creates a campaign link, unique per campaign
func (s *Service) CreateReferralLink(userID uint, req *CreateLinkRequest) (*ReferralLink, error) {
	affiliate, err := s.GetByUser(userID)
	if err != nil {
		return nil, err
	}

	var existing ReferralLink
	if result := s.db.Where("affiliate_id = ? AND campaign = ?", affiliate.ID, req.Campaign).First(&existing); result.Error == nil {
		return nil, fmt.Errorf("a link for this campaign already exists")
	}

	link := ReferralLink{
		AffiliateID: affiliate.ID,
		Campaign:    req.Campaign,
		URL: fmt.Sprintf("%s/ref/%s?campaign=%s",
			s.config.Marketplace.BaseURL, affiliate.ReferralCode, req.Campaign),
	}

	if err := s.db.Create(&link).Error; err != nil {
		return nil, fmt.Errorf("failed to create referral link: %w", err)
	}

	return &link, nil
}

// GetReferralLinks lists an affiliate's campaign links
func (s *Service) GetReferralLinks(userID uint) ([]ReferralLink, error) {
	affiliate, err := s.GetByUser(userID)
	if err != nil {
		return nil, err
	}

	var links []ReferralLink
	if err := s.db.Where("affiliate_id = ?", affiliate.ID).Order("created_at DESC").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve referral links: %w", err)
	}
	return links, nil
}

// TrackClick records a referral click. Repeat clicks from the same
// visitor on the same code within 24 hours are deduplicated in Redis.
func (s *Service) TrackClick(ctx context.Context, code string, event *ClickEvent) (*Referral, error) {
	affiliate, err := s.GetByCode(code)
	if err != nil {
		return nil, err
	}

	dedupKey := fmt.Sprintf("referral:click:%s:%s", code, event.VisitorID)
	set, err := s.redisClient.SetNX(ctx, dedupKey, 1, 24*time.Hour).Result()
	if err == nil && !set {
		// Already counted this visitor today
		var existing Referral
		if result := s.db.Where("affiliate_id = ? AND visitor_id = ?", affiliate.ID, event.VisitorID).
			Order("created_at DESC").First(&existing); result.Error == nil {
			return &existing, nil
		}
	}

	referral := Referral{
		AffiliateID: affiliate.ID,
		VisitorID:   event.VisitorID,
		IPAddress:   event.IPAddress,
		UserAgent:   event.UserAgent,
		LandingPath: event.LandingPath,
		Campaign:    event.Campaign,
	}

	// Attach the campaign link when one matches
	if event.Campaign != "" {
		var link ReferralLink
		if result := s.db.Where("affiliate_id = ? AND campaign = ?", affiliate.ID, event.Campaign).First(&link); result.Error == nil {
			referral.ReferralLinkID = &link.ID
			s.db.Model(&link).UpdateColumn("click_count", gorm.Expr("click_count + 1"))
		}
	}

	if err := s.db.Create(&referral).Error; err != nil {
		return nil, fmt.Errorf("failed to record referral: %w", err)
	}

	s.db.Model(&Affiliate{}).Where("id = ?", affiliate.ID).
		UpdateColumns(map[string]interface{}{
			"total_clicks":    gorm.Expr("total_clicks + 1"),
			"total_referrals": gorm.Expr("total_referrals + 1"),
		})

	return &referral, nil
}

// BindReferredUser attaches a newly registered user to the referral
// that brought them in
func (s *Service) BindReferredUser(visitorID string, userID uint) error {
	if visitorID == "" {
		return nil
	}
	return s.db.Model(&Referral{}).
		Where("visitor_id = ? AND referred_user_id IS NULL", visitorID).
		Update("referred_user_id", userID).Error
}

// RecordConversion accrues a commission for a referred checkout. Called
// inside the checkout transaction with the visitor cookie value.
func (s *Service) RecordConversion(tx *gorm.DB, visitorID string, userID, orderID uint, orderAmount int64) error {
	if visitorID == "" {
		return nil
	}

	// Most recent unconverted referral for this visitor or user
	var referral Referral
	err := tx.Where("(visitor_id = ? OR referred_user_id = ?) AND converted_at IS NULL", visitorID, userID).
		Order("created_at DESC").First(&referral).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return fmt.Errorf("failed to look up referral: %w", err)
	}

	var affiliate Affiliate
	if err := tx.First(&affiliate, referral.AffiliateID).Error; err != nil {
		return fmt.Errorf("failed to load affiliate: %w", err)
	}

	// Affiliates cannot earn from their own purchases
	if affiliate.UserID == userID {
		return nil
	}

	if !affiliate.CanEarn() {
		return nil
	}

	amount := orderAmount * affiliate.CommissionRate / 100

	commission := Commission{
		AffiliateID: affiliate.ID,
		OrderID:     orderID,
		ReferralID:  &referral.ID,
		OrderAmount: orderAmount,
		Rate:        affiliate.CommissionRate,
		Amount:      amount,
		Status:      CommissionStatusPending,
	}
	if err := tx.Create(&commission).Error; err != nil {
		return fmt.Errorf("failed to create commission: %w", err)
	}

	now := time.Now().UTC()
	if err := tx.Model(&Referral{}).Where("id = ?", referral.ID).
		UpdateColumns(map[string]interface{}{
			"converted_at":     now,
			"referred_user_id": userID,
		}).Error; err != nil {
		return fmt.Errorf("failed to mark referral converted: %w", err)
	}

	if err := tx.Model(&Affiliate{}).Where("id = ?", affiliate.ID).
		UpdateColumns(map[string]interface{}{
			"total_conversions": gorm.Expr("total_conversions + 1"),
			"total_earnings":    gorm.Expr("total_earnings + ?", amount),
			"pending_earnings":  gorm.Expr("pending_earnings + ?", amount),
		}).Error; err != nil {
		return fmt.Errorf("failed to update affiliate earnings: %w", err)
	}

	return nil
}

// OnOrderCancelled voids pending commissions attached to a cancelled
// order and claws the amounts back from pending earnings.
func (s *Service) OnOrderCancelled(tx *gorm.DB, o *order.Order) error {
	var commissions []Commission
	if err := tx.Where("order_id = ? AND status = ?", o.ID, CommissionStatusPending).Find(&commissions).Error; err != nil {
		return fmt.Errorf("failed to load commissions: %w", err)
	}

	now := time.Now().UTC()
	for _, c := range commissions {
		if err := tx.Model(&Commission{}).Where("id = ?", c.ID).
			UpdateColumns(map[string]interface{}{
				"status":    CommissionStatusVoided,
				"voided_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to void commission: %w", err)
		}

		if err := tx.Model(&Affiliate{}).Where("id = ?", c.AffiliateID).
			UpdateColumns(map[string]interface{}{
				"total_earnings":   gorm.Expr("total_earnings - ?", c.Amount),
				"pending_earnings": gorm.Expr("pending_earnings - ?", c.Amount),
			}).Error; err != nil {
			return fmt.Errorf("failed to reverse affiliate earnings: %w", err)
		}
	}

	return nil
}

// GetCommissions lists an affiliate's commissions
func (s *Service) GetCommissions(userID uint, status string, page, limit int) ([]Commission, int64, error) {
	affiliate, err := s.GetByUser(userID)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&Commission{}).Where("affiliate_id = ?", affiliate.ID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count commissions: %w", err)
	}

	var commissions []Commission
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&commissions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve commissions: %w", err)
	}

	return commissions, total, nil
}

// validatePaymentDetails enforces per-method required fields
func validatePaymentDetails(req *RegisterRequest) error {
	switch req.PaymentMethod {
	case PaymentMethodPaypal:
		if req.PaypalEmail == "" {
			return fmt.Errorf("paypal_email is required for paypal payment method")
		}
	case PaymentMethodBankTransfer:
		if req.BankAccountHolder == "" || req.BankAccountNumber == "" ||
			req.BankRoutingNumber == "" || req.BankName == "" {
			return fmt.Errorf("complete bank account details are required for bank_transfer payment method")
		}
	default:
		return fmt.Errorf("invalid payment method: %s", req.PaymentMethod)
	}
	return nil
}

const referralCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateReferralCode builds a unique AFF-prefixed code
func (s *Service) generateReferralCode() (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code, err := randomReferralCode()
		if err != nil {
			return "", err
		}

		var count int64
		s.db.Model(&Affiliate{}).Where("referral_code = ?", code).Count(&count)
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique referral code")
}

// randomReferralCode draws an AFF-prefixed code from the charset
func randomReferralCode() (string, error) {
	suffix := make([]byte, 7)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referralCodeCharset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate referral code: %w", err)
		}
		suffix[i] = referralCodeCharset[n.Int64()]
	}
	return "AFF" + string(suffix), nil
}
