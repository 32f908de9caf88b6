// internal/domain/affiliate/dashboard.go
package affiliate

import (
	"fmt"
	"time"
)

// DashboardResponse aggregates an affiliate's performance for a period
type DashboardResponse struct {
	Period          string          `json:"period"`
	ReferralCode    string          `json:"referral_code"`
	Status          string          `json:"status"`
	Clicks          int64           `json:"clicks"`
	Conversions     int64           `json:"conversions"`
	ConversionRate  float64         `json:"conversion_rate"`
	Earnings        int64           `json:"earnings"`
	EarningsGrowth  float64         `json:"earnings_growth"`
	ClicksGrowth    float64         `json:"clicks_growth"`
	PendingEarnings int64           `json:"pending_earnings"`
	PaidEarnings    int64           `json:"paid_earnings"`
	TotalEarnings   int64           `json:"total_earnings"`
	EarningsByDay   []EarningsPoint `json:"earnings_by_day"`
	TopCampaigns    []CampaignRow   `json:"top_campaigns"`
}

// EarningsPoint is one day of accrued commissions
type EarningsPoint struct {
	Date     string `json:"date"`
	Earnings int64  `json:"earnings"`
	Orders   int64  `json:"orders"`
}

// CampaignRow summarizes one campaign link's performance
type CampaignRow struct {
	Campaign    string `json:"campaign"`
	Clicks      int64  `json:"clicks"`
	Conversions int64  `json:"conversions"`
}

// GetDashboard builds the affiliate dashboard for 7d, 30d or 90d
func (s *Service) GetDashboard(userID uint, period string) (*DashboardResponse, error) {
	affiliate, err := s.GetByUser(userID)
	if err != nil {
		return nil, err
	}

	days, err := periodDays(period)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -days)
	prevSince := since.AddDate(0, 0, -days)

	clicks := s.countClicks(affiliate.ID, since, now)
	prevClicks := s.countClicks(affiliate.ID, prevSince, since)
	conversions := s.countConversions(affiliate.ID, since, now)
	earnings := s.sumEarnings(affiliate.ID, since, now)
	prevEarnings := s.sumEarnings(affiliate.ID, prevSince, since)

	var conversionRate float64
	if clicks > 0 {
		conversionRate = float64(conversions) / float64(clicks) * 100
	}

	earningsByDay, err := s.earningsByDay(affiliate.ID, since)
	if err != nil {
		return nil, err
	}

	topCampaigns, err := s.topCampaigns(affiliate.ID, since)
	if err != nil {
		return nil, err
	}

	return &DashboardResponse{
		Period:          period,
		ReferralCode:    affiliate.ReferralCode,
		Status:          affiliate.Status,
		Clicks:          clicks,
		Conversions:     conversions,
		ConversionRate:  conversionRate,
		Earnings:        earnings,
		EarningsGrowth:  CalculateGrowth(earnings, prevEarnings),
		ClicksGrowth:    CalculateGrowth(clicks, prevClicks),
		PendingEarnings: affiliate.PendingEarnings,
		PaidEarnings:    affiliate.PaidEarnings,
		TotalEarnings:   affiliate.TotalEarnings,
		EarningsByDay:   earningsByDay,
		TopCampaigns:    topCampaigns,
	}, nil
}

// CalculateGrowth returns the percent change between two period totals.
// A previous total of zero counts as full growth when the current
// period has activity, and no growth when both are zero.
func CalculateGrowth(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (float64(current) - float64(previous)) / float64(previous) * 100
}

func periodDays(period string) (int, error) {
	switch period {
	case "7d":
		return 7, nil
	case "30d", "":
		return 30, nil
	case "90d":
		return 90, nil
	default:
		return 0, fmt.Errorf("invalid period: %s (expected 7d, 30d or 90d)", period)
	}
}

func (s *Service) countClicks(affiliateID uint, from, to time.Time) int64 {
	var count int64
	s.db.Model(&Referral{}).
		Where("affiliate_id = ? AND created_at >= ? AND created_at < ?", affiliateID, from, to).
		Count(&count)
	return count
}

func (s *Service) countConversions(affiliateID uint, from, to time.Time) int64 {
	var count int64
	s.db.Model(&Referral{}).
		Where("affiliate_id = ? AND converted_at >= ? AND converted_at < ?", affiliateID, from, to).
		Count(&count)
	return count
}

func (s *Service) sumEarnings(affiliateID uint, from, to time.Time) int64 {
	var total int64
	s.db.Model(&Commission{}).
		Where("affiliate_id = ? AND status != ? AND created_at >= ? AND created_at < ?",
			affiliateID, CommissionStatusVoided, from, to).
		Select("COALESCE(SUM(amount), 0)").Scan(&total)
	return total
}

func (s *Service) earningsByDay(affiliateID uint, since time.Time) ([]EarningsPoint, error) {
	var points []EarningsPoint
	err := s.db.Raw(`
		SELECT
			DATE(created_at) as date,
			COALESCE(SUM(amount), 0) as earnings,
			COUNT(*) as orders
		FROM affiliate_commissions
		WHERE affiliate_id = ? AND status != ? AND created_at >= ?
		GROUP BY DATE(created_at)
		ORDER BY date
	`, affiliateID, CommissionStatusVoided, since).Scan(&points).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate earnings: %w", err)
	}
	return points, nil
}

func (s *Service) topCampaigns(affiliateID uint, since time.Time) ([]CampaignRow, error) {
	var rows []CampaignRow
	err := s.db.Model(&Referral{}).
		Select("campaign, COUNT(*) as clicks, COUNT(converted_at) as conversions").
		Where("affiliate_id = ? AND campaign != '' AND created_at >= ?", affiliateID, since).
		Group("campaign").
		Order("clicks DESC").
		Limit(5).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate campaigns: %w", err)
	}
	return rows, nil
}
