// internal/domain/analytics/platform_service.go
package analytics

import (
	"fmt"
	"time"

	"github.com/your-org/bookstore-backend/internal/config"
	"gorm.io/gorm"
)

// PlatformService produces marketplace-wide analytics for admins
type PlatformService struct {
	db     *gorm.DB
	config *config.Config
}

// NewPlatformService creates a new platform analytics service
func NewPlatformService(db *gorm.DB, cfg *config.Config) *PlatformService {
	return &PlatformService{
		db:     db,
		config: cfg,
	}
}

// PlatformStats represents marketplace-wide statistics
type PlatformStats struct {
	// Revenue metrics, revenue counts processing, shipped and
	// delivered orders
	TotalRevenue     int64   `json:"total_revenue"` // In cents
	RevenueThisMonth int64   `json:"revenue_this_month"`
	RevenueGrowth    float64 `json:"revenue_growth"`
	AvgOrderValue    int64   `json:"avg_order_value"` // In cents

	// Order metrics
	TotalOrders     int64   `json:"total_orders"`
	OrdersToday     int64   `json:"orders_today"`
	OrdersThisMonth int64   `json:"orders_this_month"`
	OrderGrowth     float64 `json:"order_growth"`
	CancelledOrders int64   `json:"cancelled_orders"`

	// User metrics
	TotalUsers        int64   `json:"total_users"`
	TotalBuyers       int64   `json:"total_buyers"`
	TotalSellers      int64   `json:"total_sellers"`
	TotalAffiliates   int64   `json:"total_affiliates"`
	NewUsersThisMonth int64   `json:"new_users_this_month"`
	UserGrowth        float64 `json:"user_growth"`

	// Catalog metrics
	TotalBooks      int64 `json:"total_books"`
	PublishedBooks  int64 `json:"published_books"`
	OutOfStockBooks int64 `json:"out_of_stock_books"`
	LowStockBooks   int64 `json:"low_stock_books"`

	// Review metrics
	TotalReviews   int64 `json:"total_reviews"`
	PendingReviews int64 `json:"pending_reviews"`

	// Affiliate metrics
	ActiveAffiliates   int64 `json:"active_affiliates"`
	PendingAffiliates  int64 `json:"pending_affiliates"`
	CommissionsAccrued int64 `json:"commissions_accrued"` // In cents
	PendingPayouts     int64 `json:"pending_payouts"`     // In cents
}

// CategorySalesData summarizes one category's sales
type CategorySalesData struct {
	CategoryID   uint   `json:"category_id"`
	CategoryName string `json:"category_name"`
	Revenue      int64  `json:"revenue"`
	UnitsSold    int64  `json:"units_sold"`
	OrderCount   int64  `json:"order_count"`
}

// PlatformRevenue is the revenue series plus top categories for a period
type PlatformRevenue struct {
	Period        string              `json:"period"`
	TotalRevenue  int64               `json:"total_revenue"`
	TotalOrders   int64               `json:"total_orders"`
	AvgOrderValue int64               `json:"avg_order_value"`
	RevenueByDay  []RevenuePoint      `json:"revenue_by_day"`
	TopCategories []CategorySalesData `json:"top_categories"`
	TopBooks      []BookSalesData     `json:"top_books"`
}

const revenueCountingStatuses = "('processing', 'shipped', 'delivered')"

// GetPlatformStats retrieves marketplace-wide statistics
func (s *PlatformService) GetPlatformStats() (*PlatformStats, error) {
	stats := &PlatformStats{}
	now := time.Now().UTC()

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	// Revenue metrics
	s.db.Raw("SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status IN " + revenueCountingStatuses).Scan(&stats.TotalRevenue)
	s.db.Raw("SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status IN "+revenueCountingStatuses+" AND created_at >= ?", thisMonth).Scan(&stats.RevenueThisMonth)

	var lastMonthRevenue int64
	s.db.Raw("SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status IN "+revenueCountingStatuses+" AND created_at >= ? AND created_at < ?", lastMonth, thisMonth).Scan(&lastMonthRevenue)
	stats.RevenueGrowth = calculateGrowth(stats.RevenueThisMonth, lastMonthRevenue)

	// Order metrics
	s.db.Raw("SELECT COUNT(*) FROM orders").Scan(&stats.TotalOrders)
	s.db.Raw("SELECT COUNT(*) FROM orders WHERE created_at >= ?", today).Scan(&stats.OrdersToday)
	s.db.Raw("SELECT COUNT(*) FROM orders WHERE created_at >= ?", thisMonth).Scan(&stats.OrdersThisMonth)
	s.db.Raw("SELECT COUNT(*) FROM orders WHERE status = 'cancelled'").Scan(&stats.CancelledOrders)

	var lastMonthOrders int64
	s.db.Raw("SELECT COUNT(*) FROM orders WHERE created_at >= ? AND created_at < ?", lastMonth, thisMonth).Scan(&lastMonthOrders)
	stats.OrderGrowth = calculateGrowth(stats.OrdersThisMonth, lastMonthOrders)

	var countedOrders int64
	s.db.Raw("SELECT COUNT(*) FROM orders WHERE status IN " + revenueCountingStatuses).Scan(&countedOrders)
	if countedOrders > 0 {
		stats.AvgOrderValue = stats.TotalRevenue / countedOrders
	}

	// User metrics
	s.db.Raw("SELECT COUNT(*) FROM users").Scan(&stats.TotalUsers)
	s.db.Raw("SELECT COUNT(*) FROM users WHERE role = 'buyer'").Scan(&stats.TotalBuyers)
	s.db.Raw("SELECT COUNT(*) FROM users WHERE role = 'seller'").Scan(&stats.TotalSellers)
	s.db.Raw("SELECT COUNT(*) FROM users WHERE role = 'affiliate'").Scan(&stats.TotalAffiliates)
	s.db.Raw("SELECT COUNT(*) FROM users WHERE created_at >= ?", thisMonth).Scan(&stats.NewUsersThisMonth)

	var lastMonthUsers int64
	s.db.Raw("SELECT COUNT(*) FROM users WHERE created_at >= ? AND created_at < ?", lastMonth, thisMonth).Scan(&lastMonthUsers)
	stats.UserGrowth = calculateGrowth(stats.NewUsersThisMonth, lastMonthUsers)

	// Catalog metrics
	s.db.Raw("SELECT COUNT(*) FROM books").Scan(&stats.TotalBooks)
	s.db.Raw("SELECT COUNT(*) FROM books WHERE is_published = true").Scan(&stats.PublishedBooks)
	s.db.Raw("SELECT COUNT(*) FROM books WHERE is_published = true AND stock_quantity <= 0").Scan(&stats.OutOfStockBooks)
	s.db.Raw("SELECT COUNT(*) FROM books WHERE is_published = true AND stock_quantity > 0 AND stock_quantity <= ?", s.config.Marketplace.LowStockThreshold).Scan(&stats.LowStockBooks)

	// Review metrics
	s.db.Raw("SELECT COUNT(*) FROM reviews").Scan(&stats.TotalReviews)
	s.db.Raw("SELECT COUNT(*) FROM review_reports WHERE is_resolved = false").Scan(&stats.PendingReviews)

	// Affiliate metrics
	s.db.Raw("SELECT COUNT(*) FROM affiliates WHERE status = 'approved' AND is_active = true").Scan(&stats.ActiveAffiliates)
	s.db.Raw("SELECT COUNT(*) FROM affiliates WHERE status = 'pending'").Scan(&stats.PendingAffiliates)
	s.db.Raw("SELECT COALESCE(SUM(amount), 0) FROM affiliate_commissions WHERE status != 'voided'").Scan(&stats.CommissionsAccrued)
	s.db.Raw("SELECT COALESCE(SUM(amount), 0) FROM affiliate_payouts WHERE status IN ('pending', 'processing')").Scan(&stats.PendingPayouts)

	return stats, nil
}

// GetPlatformRevenue retrieves the marketplace revenue breakdown for
// 7d, 30d or 90d
func (s *PlatformService) GetPlatformRevenue(period string) (*PlatformRevenue, error) {
	days, err := periodDays(period)
	if err != nil {
		return nil, err
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	result := &PlatformRevenue{Period: period}

	s.db.Raw("SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status IN "+revenueCountingStatuses+" AND created_at >= ?", since).Scan(&result.TotalRevenue)
	s.db.Raw("SELECT COUNT(*) FROM orders WHERE status IN "+revenueCountingStatuses+" AND created_at >= ?", since).Scan(&result.TotalOrders)
	if result.TotalOrders > 0 {
		result.AvgOrderValue = result.TotalRevenue / result.TotalOrders
	}

	if err := s.db.Raw(`
		SELECT
			TO_CHAR(DATE(created_at), 'YYYY-MM-DD') as date,
			COALESCE(SUM(total_amount), 0) as revenue,
			COUNT(*) as orders
		FROM orders
		WHERE status IN `+revenueCountingStatuses+` AND created_at >= ?
		GROUP BY DATE(created_at)
		ORDER BY date
	`, since).Scan(&result.RevenueByDay).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate platform revenue: %w", err)
	}

	if err := s.db.Raw(`
		SELECT
			c.id as category_id,
			c.name as category_name,
			COALESCE(SUM(oi.total_price), 0) as revenue,
			COALESCE(SUM(oi.quantity), 0) as units_sold,
			COUNT(DISTINCT o.id) as order_count
		FROM categories c
		JOIN books b ON b.category_id = c.id
		JOIN order_items oi ON oi.book_id = b.id
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status IN `+revenueCountingStatuses+` AND o.created_at >= ?
		GROUP BY c.id, c.name
		ORDER BY revenue DESC
		LIMIT 10
	`, since).Scan(&result.TopCategories).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate category sales: %w", err)
	}

	if err := s.db.Raw(`
		SELECT
			b.id as book_id,
			b.title,
			b.author,
			COALESCE(SUM(oi.quantity), 0) as units_sold,
			COALESCE(SUM(oi.total_price), 0) as revenue
		FROM books b
		JOIN order_items oi ON oi.book_id = b.id
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status IN `+revenueCountingStatuses+` AND o.created_at >= ?
		GROUP BY b.id, b.title, b.author
		ORDER BY units_sold DESC
		LIMIT 10
	`, since).Scan(&result.TopBooks).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate top books: %w", err)
	}

	return result, nil
}
