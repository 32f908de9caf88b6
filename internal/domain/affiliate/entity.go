// internal/domain/affiliate/entity.go
package affiliate

import (
	"time"

	"gorm.io/gorm"
)

// Affiliate status values
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusSuspended = "suspended"
)

// Payment method values
const (
	PaymentMethodPaypal       = "paypal"
	PaymentMethodBankTransfer = "bank_transfer"
)

// Commission status values
const (
	CommissionStatusPending  = "pending"
	CommissionStatusApproved = "approved"
	CommissionStatusPaid     = "paid"
	CommissionStatusVoided   = "voided"
)

// Payout status values
const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusPaid       = "paid"
	PayoutStatusFailed     = "failed"
)

// Affiliate represents a partner account, one per user
type Affiliate struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;uniqueIndex" json:"user_id"`
	Status string `gorm:"size:20;not null;default:'pending';index" json:"status"`

	// Payment details
	PaymentMethod     string `gorm:"size:20" json:"payment_method"`
	PaypalEmail       string `gorm:"size:255" json:"paypal_email,omitempty"`
	BankAccountHolder string `gorm:"size:150" json:"bank_account_holder,omitempty"`
	BankAccountNumber string `gorm:"size:50" json:"-"`
	BankRoutingNumber string `gorm:"size:50" json:"-"`
	BankName          string `gorm:"size:150" json:"bank_name,omitempty"`

	ReferralCode   string `gorm:"uniqueIndex;not null;size:20" json:"referral_code"`
	CommissionRate int64  `gorm:"not null;default:10" json:"commission_rate"` // Percent, 0..100
	IsActive       bool   `gorm:"default:true" json:"is_active"`

	// Lifetime counters
	TotalClicks      int64 `gorm:"default:0" json:"total_clicks"`
	TotalReferrals   int64 `gorm:"default:0" json:"total_referrals"`
	TotalConversions int64 `gorm:"default:0" json:"total_conversions"`
	TotalEarnings    int64 `gorm:"default:0" json:"total_earnings"`   // Cents
	PendingEarnings  int64 `gorm:"default:0" json:"pending_earnings"` // Cents
	PaidEarnings     int64 `gorm:"default:0" json:"paid_earnings"`    // Cents

	ApprovedAt *time.Time     `json:"approved_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Links []ReferralLink `gorm:"foreignKey:AffiliateID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"links,omitempty"`
}

// ReferralLink represents a trackable campaign URL, unique per
// (affiliate, campaign)
type ReferralLink struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AffiliateID uint      `gorm:"not null;index:idx_affiliate_campaign,unique" json:"affiliate_id"`
	Campaign    string    `gorm:"size:100;not null;index:idx_affiliate_campaign,unique" json:"campaign"`
	URL         string    `gorm:"size:500;not null" json:"url"`
	ClickCount  int64     `gorm:"default:0" json:"click_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Referral represents a tracked visitor arriving through an affiliate
// link. It converts when that visitor completes a checkout.
type Referral struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	AffiliateID    uint       `gorm:"not null;index" json:"affiliate_id"`
	ReferralLinkID *uint      `gorm:"index" json:"referral_link_id"`
	VisitorID      string     `gorm:"size:64;not null;index" json:"visitor_id"`
	IPAddress      string     `gorm:"size:45" json:"ip_address"`
	UserAgent      string     `gorm:"size:500" json:"user_agent"`
	LandingPath    string     `gorm:"size:500" json:"landing_path"`
	Campaign       string     `gorm:"size:100" json:"campaign"`
	ReferredUserID *uint      `gorm:"index" json:"referred_user_id"`
	ConvertedAt    *time.Time `json:"converted_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Commission represents earnings accrued from a referred order
type Commission struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AffiliateID uint       `gorm:"not null;index" json:"affiliate_id"`
	OrderID     uint       `gorm:"not null;index" json:"order_id"`
	ReferralID  *uint      `gorm:"index" json:"referral_id"`
	OrderAmount int64      `gorm:"not null" json:"order_amount"` // Cents
	Rate        int64      `gorm:"not null" json:"rate"`         // Percent at accrual time
	Amount      int64      `gorm:"not null" json:"amount"`       // Cents
	Status      string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	VoidedAt    *time.Time `json:"voided_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Payout represents a withdrawal of pending earnings
type Payout struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	AffiliateID   uint       `gorm:"not null;index" json:"affiliate_id"`
	Amount        int64      `gorm:"not null" json:"amount"` // Cents
	Status        string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	PaymentMethod string     `gorm:"size:20;not null" json:"payment_method"`
	Reference     string     `gorm:"uniqueIndex;not null;size:64" json:"reference"`
	Notes         string     `gorm:"size:255" json:"notes"`
	PaidAt        *time.Time `json:"paid_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName overrides
func (Affiliate) TableName() string    { return "affiliates" }
func (ReferralLink) TableName() string { return "referral_links" }
func (Referral) TableName() string     { return "referrals" }
func (Commission) TableName() string   { return "affiliate_commissions" }
func (Payout) TableName() string       { return "affiliate_payouts" }

// CanEarn reports whether the affiliate accrues commissions
func (a *Affiliate) CanEarn() bool {
	return a.Status == StatusApproved && a.IsActive
}

// CanRequestPayout reports whether the affiliate may withdraw
func (a *Affiliate) CanRequestPayout() bool {
	return a.Status == StatusApproved && a.IsActive
}

// ConversionRate returns conversions per click as a percentage
func (a *Affiliate) ConversionRate() float64 {
	if a.TotalClicks == 0 {
		return 0
	}
	return float64(a.TotalConversions) / float64(a.TotalClicks) * 100
}

// IsConverted reports whether the referral led to an order
func (r *Referral) IsConverted() bool {
	return r.ConvertedAt != nil
}
