// internal/domain/book/inventory_service.go
package book

import (
	"fmt"

	"github.com/your-org/bookstore-backend/internal/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryService handles manual stock adjustments on listings
type InventoryService struct {
	db     *gorm.DB
	config *config.Config
}

// NewInventoryService creates a new inventory service
func NewInventoryService(db *gorm.DB, cfg *config.Config) *InventoryService {
	return &InventoryService{
		db:     db,
		config: cfg,
	}
}

// InventoryAdjustRequest represents a manual stock change
type InventoryAdjustRequest struct {
	AdjustmentType string `json:"adjustment_type" binding:"required"` // set, add, subtract
	Quantity       int    `json:"quantity" binding:"required"`
	Reason         string `json:"reason"`
}

// AdjustInventory applies a manual stock change to a seller's listing
// and records it for audit. Subtracting below zero clamps at zero.
func (s *InventoryService) AdjustInventory(bookID, sellerID uint, isAdmin bool, req *InventoryAdjustRequest) (*InventoryAdjustment, error) {
	if !IsValidAdjustmentType(req.AdjustmentType) {
		return nil, fmt.Errorf("invalid adjustment type: %s", req.AdjustmentType)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var b Book
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", bookID).First(&b).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("book not found")
		}
		return nil, fmt.Errorf("failed to find book: %w", err)
	}

	if !isAdmin && b.SellerID != sellerID {
		tx.Rollback()
		return nil, fmt.Errorf("you can only adjust stock of your own listings")
	}

	stockBefore := b.StockQuantity
	var stockAfter int

	switch req.AdjustmentType {
	case "set":
		stockAfter = req.Quantity
	case "add":
		stockAfter = stockBefore + req.Quantity
	case "subtract":
		stockAfter = stockBefore - req.Quantity
		if stockAfter < 0 {
			stockAfter = 0
		}
	}

	if err := tx.Model(&Book{}).Where("id = ?", bookID).
		UpdateColumn("stock_quantity", stockAfter).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	adjustment := InventoryAdjustment{
		BookID:         bookID,
		SellerID:       b.SellerID,
		AdjustmentType: req.AdjustmentType,
		Quantity:       req.Quantity,
		StockBefore:    stockBefore,
		StockAfter:     stockAfter,
		Reason:         req.Reason,
	}

	if err := tx.Create(&adjustment).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record adjustment: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit adjustment: %w", err)
	}

	return &adjustment, nil
}

// GetAdjustmentHistory lists adjustments for a seller's listing
func (s *InventoryService) GetAdjustmentHistory(bookID, sellerID uint, isAdmin bool, page, limit int) ([]InventoryAdjustment, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var b Book
	if err := s.db.Where("id = ?", bookID).First(&b).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, 0, fmt.Errorf("book not found")
		}
		return nil, 0, fmt.Errorf("failed to find book: %w", err)
	}

	if !isAdmin && b.SellerID != sellerID {
		return nil, 0, fmt.Errorf("you can only view stock history of your own listings")
	}

	var adjustments []InventoryAdjustment
	var total int64

	query := s.db.Model(&InventoryAdjustment{}).Where("book_id = ?", bookID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count adjustments: %w", err)
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&adjustments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve adjustments: %w", err)
	}

	return adjustments, total, nil
}
