// internal/domain/analytics/service.go
package analytics

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"gorm.io/gorm"
)

// Service maintains seller sales rollups and inventory alerts
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// SellerDashboard aggregates a seller's performance for a period
type SellerDashboard struct {
	Period        string           `json:"period"`
	Revenue       int64            `json:"revenue"` // In cents
	RevenueGrowth float64          `json:"revenue_growth"`
	Orders        int64            `json:"orders"`
	OrderGrowth   float64          `json:"order_growth"`
	UnitsSold     int64            `json:"units_sold"`
	AvgOrderValue int64            `json:"avg_order_value"` // In cents
	RevenueByDay  []RevenuePoint   `json:"revenue_by_day"`
	TopBooks      []BookSalesData  `json:"top_books"`
	OpenAlerts    []InventoryAlert `json:"open_alerts"`
}

// RevenuePoint is one day in a revenue series
type RevenuePoint struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
	Orders  int64  `json:"orders"`
}

// BookSalesData summarizes one book's sales
type BookSalesData struct {
	BookID    uint   `json:"book_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	UnitsSold int64  `json:"units_sold"`
	Revenue   int64  `json:"revenue"`
}

// RecordSale folds a placed order into the per-seller rollups. Runs
// inside the checkout transaction so rollups never drift from orders.
func (s *Service) RecordSale(tx *gorm.DB, o *order.Order) error {
	day := o.CreatedAt.UTC().Truncate(24 * time.Hour)

	type sellerTotals struct {
		units   int64
		revenue int64
	}
	bySeller := make(map[uint]*sellerTotals)

	now := time.Now().UTC()
	for _, item := range o.Items {
		totals, ok := bySeller[item.SellerID]
		if !ok {
			totals = &sellerTotals{}
			bySeller[item.SellerID] = totals
		}
		totals.units += int64(item.Quantity)
		totals.revenue += item.TotalPrice

		if err := s.upsertBookPerformance(tx, item.SellerID, item.BookID, int64(item.Quantity), item.TotalPrice, now); err != nil {
			return err
		}
	}

	for sellerID, totals := range bySeller {
		if err := s.upsertDailySales(tx, sellerID, day, 1, totals.units, totals.revenue); err != nil {
			return err
		}
	}

	return nil
}

// OnOrderCancelled backs a cancelled order out of the rollups
func (s *Service) OnOrderCancelled(tx *gorm.DB, o *order.Order) error {
	day := o.CreatedAt.UTC().Truncate(24 * time.Hour)

	type sellerTotals struct {
		units   int64
		revenue int64
	}
	bySeller := make(map[uint]*sellerTotals)

	for _, item := range o.Items {
		totals, ok := bySeller[item.SellerID]
		if !ok {
			totals = &sellerTotals{}
			bySeller[item.SellerID] = totals
		}
		totals.units += int64(item.Quantity)
		totals.revenue += item.TotalPrice

		if err := tx.Model(&BookPerformance{}).
			Where("seller_id = ? AND book_id = ?", item.SellerID, item.BookID).
			UpdateColumns(map[string]interface{}{
				"units_sold":  gorm.Expr("units_sold - ?", item.Quantity),
				"revenue":     gorm.Expr("revenue - ?", item.TotalPrice),
				"order_count": gorm.Expr("order_count - 1"),
			}).Error; err != nil {
			return fmt.Errorf("failed to reverse book performance: %w", err)
		}
	}

	for sellerID, totals := range bySeller {
		if err := tx.Model(&DailySales{}).
			Where("seller_id = ? AND date = ?", sellerID, day).
			UpdateColumns(map[string]interface{}{
				"order_count": gorm.Expr("order_count - 1"),
				"units_sold":  gorm.Expr("units_sold - ?", totals.units),
				"revenue":     gorm.Expr("revenue - ?", totals.revenue),
			}).Error; err != nil {
			return fmt.Errorf("failed to reverse daily sales: %w", err)
		}
	}

	return nil
}

func (s *Service) upsertDailySales(tx *gorm.DB, sellerID uint, day time.Time, orders, units, revenue int64) error {
	var existing DailySales
	err := tx.Where("seller_id = ? AND date = ?", sellerID, day).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		record := DailySales{
			SellerID:   sellerID,
			Date:       day,
			OrderCount: orders,
			UnitsSold:  units,
			Revenue:    revenue,
		}
		return tx.Create(&record).Error
	}
	if err != nil {
		return fmt.Errorf("failed to load daily sales: %w", err)
	}

	return tx.Model(&existing).UpdateColumns(map[string]interface{}{
		"order_count": gorm.Expr("order_count + ?", orders),
		"units_sold":  gorm.Expr("units_sold + ?", units),
		"revenue":     gorm.Expr("revenue + ?", revenue),
	}).Error
}

func (s *Service) upsertBookPerformance(tx *gorm.DB, sellerID, bookID uint, units, revenue int64, soldAt time.Time) error {
	var existing BookPerformance
	err := tx.Where("seller_id = ? AND book_id = ?", sellerID, bookID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		record := BookPerformance{
			SellerID:   sellerID,
			BookID:     bookID,
			UnitsSold:  units,
			Revenue:    revenue,
			OrderCount: 1,
			LastSoldAt: &soldAt,
		}
		return tx.Create(&record).Error
	}
	if err != nil {
		return fmt.Errorf("failed to load book performance: %w", err)
	}

	return tx.Model(&existing).UpdateColumns(map[string]interface{}{
		"units_sold":   gorm.Expr("units_sold + ?", units),
		"revenue":      gorm.Expr("revenue + ?", revenue),
		"order_count":  gorm.Expr("order_count + 1"),
		"last_sold_at": soldAt,
	}).Error
}

// RefreshAlertsForBook re-evaluates a book's stock against the alert
// thresholds. Called after anything that changes stock.
func (s *Service) RefreshAlertsForBook(tx *gorm.DB, bookID uint) error {
	var row struct {
		SellerID      uint
		StockQuantity int
	}
	if err := tx.Raw("SELECT seller_id, stock_quantity FROM books WHERE id = ?", bookID).Scan(&row).Error; err != nil {
		return fmt.Errorf("failed to read book stock: %w", err)
	}
	if row.SellerID == 0 {
		return nil
	}

	alertType := ""
	priority := AlertPriorityMedium
	switch {
	case row.StockQuantity <= 0:
		alertType = AlertTypeOutOfStock
		priority = AlertPriorityHigh
	case row.StockQuantity <= s.config.Marketplace.CriticalStockThreshold:
		alertType = AlertTypeLowStock
		priority = AlertPriorityHigh
	case row.StockQuantity <= s.config.Marketplace.LowStockThreshold:
		alertType = AlertTypeLowStock
	}

	var open InventoryAlert
	err := tx.Where("book_id = ? AND is_resolved = false", bookID).First(&open).Error
	hasOpen := err == nil
	if err != nil && err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to load inventory alert: %w", err)
	}

	now := time.Now().UTC()

	// Stock recovered, close any open alert
	if alertType == "" {
		if hasOpen {
			return tx.Model(&open).UpdateColumns(map[string]interface{}{
				"is_resolved": true,
				"resolved_at": now,
			}).Error
		}
		return nil
	}

	if hasOpen {
		if open.AlertType == alertType && open.Priority == priority && open.StockLevel == row.StockQuantity {
			return nil
		}
		return tx.Model(&open).UpdateColumns(map[string]interface{}{
			"alert_type":  alertType,
			"priority":    priority,
			"stock_level": row.StockQuantity,
		}).Error
	}

	alert := InventoryAlert{
		SellerID:   row.SellerID,
		BookID:     bookID,
		AlertType:  alertType,
		Priority:   priority,
		StockLevel: row.StockQuantity,
	}
	return tx.Create(&alert).Error
}

// GetInventoryAlerts lists a seller's open alerts, highest priority first
func (s *Service) GetInventoryAlerts(sellerID uint) ([]InventoryAlert, error) {
	var alerts []InventoryAlert
	err := s.db.Where("seller_id = ? AND is_resolved = false", sellerID).
		Order("CASE priority WHEN 'high' THEN 0 ELSE 1 END, updated_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve inventory alerts: %w", err)
	}
	return alerts, nil
}

// GetSellerDashboard builds the seller dashboard for 7d, 30d or 90d
func (s *Service) GetSellerDashboard(sellerID uint, period string) (*SellerDashboard, error) {
	days, err := periodDays(period)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -days)
	prevSince := since.AddDate(0, 0, -days)

	revenue, orders, units := s.sumDailySales(sellerID, since, now)
	prevRevenue, prevOrders, _ := s.sumDailySales(sellerID, prevSince, since)

	dashboard := &SellerDashboard{
		Period:        period,
		Revenue:       revenue,
		RevenueGrowth: calculateGrowth(revenue, prevRevenue),
		Orders:        orders,
		OrderGrowth:   calculateGrowth(orders, prevOrders),
		UnitsSold:     units,
	}
	if orders > 0 {
		dashboard.AvgOrderValue = revenue / orders
	}

	if err := s.db.Model(&DailySales{}).
		Select("TO_CHAR(date, 'YYYY-MM-DD') as date, revenue, order_count as orders").
		Where("seller_id = ? AND date >= ?", sellerID, since).
		Order("date").
		Scan(&dashboard.RevenueByDay).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate daily revenue: %w", err)
	}

	topBooks, err := s.topBooks(sellerID, 5)
	if err != nil {
		return nil, err
	}
	dashboard.TopBooks = topBooks

	alerts, err := s.GetInventoryAlerts(sellerID)
	if err != nil {
		return nil, err
	}
	dashboard.OpenAlerts = alerts

	return dashboard, nil
}

// GenerateSalesReport snapshots a seller's performance over a date range
func (s *Service) GenerateSalesReport(sellerID uint, startDate, endDate time.Time) (*SalesReport, error) {
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("end date must not be before start date")
	}

	report := &SalesReport{
		SellerID:  sellerID,
		StartDate: startDate,
		EndDate:   endDate,
	}

	s.db.Model(&DailySales{}).
		Where("seller_id = ? AND date >= ? AND date <= ?", sellerID, startDate, endDate).
		Select("COALESCE(SUM(order_count), 0)").Scan(&report.TotalOrders)
	s.db.Model(&DailySales{}).
		Where("seller_id = ? AND date >= ? AND date <= ?", sellerID, startDate, endDate).
		Select("COALESCE(SUM(units_sold), 0)").Scan(&report.TotalUnits)
	s.db.Model(&DailySales{}).
		Where("seller_id = ? AND date >= ? AND date <= ?", sellerID, startDate, endDate).
		Select("COALESCE(SUM(revenue), 0)").Scan(&report.TotalRevenue)

	topBooks, err := s.topBooks(sellerID, 10)
	if err != nil {
		return nil, err
	}
	if report.TopSellingBooks, err = json.Marshal(topBooks); err != nil {
		return nil, fmt.Errorf("failed to encode top selling books: %w", err)
	}

	var byDate []RevenuePoint
	if err := s.db.Model(&DailySales{}).
		Select("TO_CHAR(date, 'YYYY-MM-DD') as date, revenue, order_count as orders").
		Where("seller_id = ? AND date >= ? AND date <= ?", sellerID, startDate, endDate).
		Order("date").
		Scan(&byDate).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue by date: %w", err)
	}
	if report.RevenueByDate, err = json.Marshal(byDate); err != nil {
		return nil, fmt.Errorf("failed to encode revenue by date: %w", err)
	}

	if err := s.db.Create(report).Error; err != nil {
		return nil, fmt.Errorf("failed to save sales report: %w", err)
	}

	return report, nil
}

// GetSalesReports lists a seller's generated reports
func (s *Service) GetSalesReports(sellerID uint, page, limit int) ([]SalesReport, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&SalesReport{}).Where("seller_id = ?", sellerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sales reports: %w", err)
	}

	var reports []SalesReport
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve sales reports: %w", err)
	}

	return reports, total, nil
}

func (s *Service) sumDailySales(sellerID uint, from, to time.Time) (revenue, orders, units int64) {
	row := struct {
		Revenue int64
		Orders  int64
		Units   int64
	}{}
	s.db.Model(&DailySales{}).
		Select("COALESCE(SUM(revenue), 0) as revenue, COALESCE(SUM(order_count), 0) as orders, COALESCE(SUM(units_sold), 0) as units").
		Where("seller_id = ? AND date >= ? AND date < ?", sellerID, from, to).
		Scan(&row)
	return row.Revenue, row.Orders, row.Units
}

func (s *Service) topBooks(sellerID uint, limit int) ([]BookSalesData, error) {
	var books []BookSalesData
	err := s.db.Raw(`
		SELECT
			bp.book_id,
			b.title,
			b.author,
			bp.units_sold,
			bp.revenue
		FROM analytics_book_performance bp
		JOIN books b ON b.id = bp.book_id
		WHERE bp.seller_id = ? AND bp.units_sold > 0
		ORDER BY bp.units_sold DESC
		LIMIT ?
	`, sellerID, limit).Scan(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top books: %w", err)
	}
	return books, nil
}

// calculateGrowth returns the percent change between two period totals
func calculateGrowth(current, previous int64) float64 {
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
