// internal/domain/analytics/entity.go
package analytics

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Inventory alert types
const (
	AlertTypeLowStock   = "low_stock"
	AlertTypeOutOfStock = "out_of_stock"
)

// Inventory alert priorities
const (
	AlertPriorityHigh   = "high"
	AlertPriorityMedium = "medium"
)

// DailySales is a per-seller daily rollup maintained as orders are
// placed and cancelled
type DailySales struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	SellerID   uint           `json:"seller_id" gorm:"not null;index;uniqueIndex:idx_seller_date"`
	Date       time.Time      `json:"date" gorm:"type:date;not null;uniqueIndex:idx_seller_date"`
	OrderCount int64          `json:"order_count" gorm:"default:0"`
	UnitsSold  int64          `json:"units_sold" gorm:"default:0"`
	Revenue    int64          `json:"revenue" gorm:"default:0"` // In cents
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// BookPerformance accumulates lifetime sales per book per seller
type BookPerformance struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	SellerID   uint           `json:"seller_id" gorm:"not null;index;uniqueIndex:idx_seller_book"`
	BookID     uint           `json:"book_id" gorm:"not null;uniqueIndex:idx_seller_book"`
	UnitsSold  int64          `json:"units_sold" gorm:"default:0"`
	Revenue    int64          `json:"revenue" gorm:"default:0"` // In cents
	OrderCount int64          `json:"order_count" gorm:"default:0"`
	LastSoldAt *time.Time     `json:"last_sold_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// InventoryAlert flags books that are low on or out of stock. At most
// one open alert exists per book; refreshing stock resolves or rewrites
// it.
type InventoryAlert struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	SellerID   uint           `json:"seller_id" gorm:"not null;index"`
	BookID     uint           `json:"book_id" gorm:"not null;index"`
	AlertType  string         `json:"alert_type" gorm:"not null;size:20"`
	Priority   string         `json:"priority" gorm:"not null;size:10"`
	StockLevel int            `json:"stock_level" gorm:"default:0"`
	IsResolved bool           `json:"is_resolved" gorm:"default:false;index"`
	ResolvedAt *time.Time     `json:"resolved_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// SalesReport is a generated snapshot of a seller's performance over a
// date range, with the detail rows stored as JSONB
type SalesReport struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	SellerID        uint            `json:"seller_id" gorm:"not null;index"`
	StartDate       time.Time       `json:"start_date" gorm:"type:date;not null"`
	EndDate         time.Time       `json:"end_date" gorm:"type:date;not null"`
	TotalOrders     int64           `json:"total_orders" gorm:"default:0"`
	TotalUnits      int64           `json:"total_units" gorm:"default:0"`
	TotalRevenue    int64           `json:"total_revenue" gorm:"default:0"` // In cents
	TopSellingBooks json.RawMessage `json:"top_selling_books" gorm:"type:jsonb"`
	RevenueByDate   json.RawMessage `json:"revenue_by_date" gorm:"type:jsonb"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName overrides
func (DailySales) TableName() string {
	return "analytics_daily_sales"
}

func (BookPerformance) TableName() string {
	return "analytics_book_performance"
}

func (InventoryAlert) TableName() string {
	return "inventory_alerts"
}

func (SalesReport) TableName() string {
	return "sales_reports"
}

// IsOpen reports whether the alert still needs attention
func (a *InventoryAlert) IsOpen() bool {
	return !a.IsResolved
}
