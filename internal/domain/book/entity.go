// internal/domain/book/entity.go
package book

import (
	"time"

	"gorm.io/gorm"
)

// Condition values for a listed copy
const (
	ConditionNew        = "new"
	ConditionLikeNew    = "like_new"
	ConditionVeryGood   = "very_good"
	ConditionGood       = "good"
	ConditionAcceptable = "acceptable"
)

// Book represents a listing in the marketplace catalog
type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"not null;size:255" json:"title"`
	Slug            string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	ISBN            string         `gorm:"not null;size:17;index" json:"isbn"`
	Author          string         `gorm:"not null;size:255" json:"author"`
	Description     string         `gorm:"type:text" json:"description"`
	Price           int64          `gorm:"not null" json:"price"` // Price in cents
	StockQuantity   int            `gorm:"default:0" json:"stock_quantity"`
	Condition       string         `gorm:"size:20;not null;default:'new'" json:"condition"`
	Language        string         `gorm:"size:10;not null;default:'en'" json:"language"`
	Format          string         `gorm:"size:20;default:'paperback'" json:"format"` // paperback, hardcover, ebook
	Pages           int            `json:"pages"`
	Publisher       string         `gorm:"size:255" json:"publisher"`
	PublicationDate *time.Time     `json:"publication_date"`
	CoverImageURL   string         `gorm:"size:500" json:"cover_image_url"`
	CategoryID      uint           `gorm:"not null;index" json:"category_id"`
	SellerID        uint           `gorm:"not null;index" json:"seller_id"`
	IsPublished     bool           `gorm:"default:false;index" json:"is_published"`
	IsFeatured      bool           `gorm:"default:false" json:"is_featured"`
	AverageRating   float64        `gorm:"default:0" json:"average_rating"` // Approved reviews only, 2dp
	ReviewCount     int            `gorm:"default:0" json:"review_count"`
	TotalSales      int            `gorm:"default:0" json:"total_sales"`
	TotalRevenue    int64          `gorm:"default:0" json:"total_revenue"` // Cents
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Genres   []Genre  `gorm:"many2many:book_genres;" json:"genres,omitempty"`
}

// Category represents the category tree
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	ParentID    *uint          `gorm:"index" json:"parent_id"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Books    []Book     `gorm:"foreignKey:CategoryID" json:"books,omitempty"`
}

// Genre is a flat tag attached to books through a join table
type Genre struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null;size:100" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Books []Book `gorm:"many2many:book_genres;" json:"books,omitempty"`
}

// InventoryAdjustment records every manual stock change for audit
type InventoryAdjustment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	BookID         uint      `gorm:"not null;index" json:"book_id"`
	SellerID       uint      `gorm:"not null;index" json:"seller_id"`
	AdjustmentType string    `gorm:"size:20;not null" json:"adjustment_type"` // set, add, subtract
	Quantity       int       `gorm:"not null" json:"quantity"`
	StockBefore    int       `gorm:"not null" json:"stock_before"`
	StockAfter     int       `gorm:"not null" json:"stock_after"`
	Reason         string    `gorm:"size:255" json:"reason"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName overrides
func (Book) TableName() string                { return "books" }
func (Category) TableName() string            { return "categories" }
func (Genre) TableName() string               { return "genres" }
func (InventoryAdjustment) TableName() string { return "inventory_adjustments" }

// Business methods for Book
func (b *Book) IsInStock() bool {
	return b.StockQuantity > 0
}

func (b *Book) IsAvailableForPurchase() bool {
	return b.IsPublished && b.StockQuantity > 0
}

func (b *Book) GetFormattedPrice() float64 {
	return float64(b.Price) / 100
}

// IsValidCondition reports whether condition is one of the accepted values
func IsValidCondition(condition string) bool {
	switch condition {
	case ConditionNew, ConditionLikeNew, ConditionVeryGood, ConditionGood, ConditionAcceptable:
		return true
	}
	return false
}

// IsValidAdjustmentType reports whether adjustmentType is accepted
func IsValidAdjustmentType(adjustmentType string) bool {
	switch adjustmentType {
	case "set", "add", "subtract":
		return true
	}
	return false
}
