// internal/domain/review/entity.go
package review

import (
	"time"

	"gorm.io/gorm"
)

// Review represents a buyer's review of a book. One review per user
// per book.
type Review struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index;uniqueIndex:idx_review_user_book" json:"user_id"`
	BookID uint `gorm:"not null;index;uniqueIndex:idx_review_user_book" json:"book_id"`

	Rating  int    `gorm:"not null" json:"rating"` // 1 to 5
	Title   string `gorm:"size:255" json:"title"`
	Comment string `gorm:"type:text" json:"comment"`

	// Set when the reviewer bought the book through a delivered order
	VerifiedPurchase bool `gorm:"default:false" json:"verified_purchase"`

	IsApproved bool `gorm:"default:true;index" json:"is_approved"`

	HelpfulCount   int `gorm:"default:0" json:"helpful_count"`
	UnhelpfulCount int `gorm:"default:0" json:"unhelpful_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Vote records one user's helpfulness vote on a review. One vote per
// user per review; voting the same way again removes it.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_vote_user_review" json:"user_id"`
	ReviewID  uint      `gorm:"not null;index;uniqueIndex:idx_vote_user_review" json:"review_id"`
	IsHelpful bool      `gorm:"not null" json:"is_helpful"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Report flags a review for moderation. One report per user per review.
type Report struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_report_user_review" json:"user_id"`
	ReviewID   uint       `gorm:"not null;index;uniqueIndex:idx_report_user_review" json:"review_id"`
	Reason     string     `gorm:"type:text;not null" json:"reason"`
	IsResolved bool       `gorm:"default:false;index" json:"is_resolved"`
	ResolvedAt *time.Time `json:"resolved_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Review Review `gorm:"foreignKey:ReviewID" json:"review,omitempty"`
}

// TableName overrides
func (Review) TableName() string { return "reviews" }
func (Vote) TableName() string   { return "review_votes" }
func (Report) TableName() string { return "review_reports" }

// IsValidRating reports whether a rating is in the allowed range
func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}
