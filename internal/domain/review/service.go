// internal/domain/review/service.go
package review

import (
	"fmt"
	"math"
	"time"

	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/book"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"gorm.io/gorm"
)

// Service handles review business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new review service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateReviewRequest represents a new review submission
type CreateReviewRequest struct {
	BookID  uint   `json:"book_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

// UpdateReviewRequest represents a review edit
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Title   *string `json:"title"`
	Comment *string `json:"comment"`
}

// VoteRequest represents a helpfulness vote
type VoteRequest struct {
	IsHelpful *bool `json:"is_helpful" binding:"required"`
}

// ReportRequest represents a review report
type ReportRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ReviewResponse is a review with the reviewer's display name
type ReviewResponse struct {
	Review
	ReviewerName string `json:"reviewer_name"`
}

// Pagination represents pagination info
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// CanReviewResult explains whether a user may review a book
type CanReviewResult struct {
	CanReview     bool   `json:"can_review"`
	Reason        string `json:"reason,omitempty"`
	PurchasedBook bool   `json:"purchased_book"`
}

// Summary aggregates a book's review statistics
type Summary struct {
	TotalReviews       int64         `json:"total_reviews"`
	AverageRating      float64       `json:"average_rating"`
	RatingDistribution map[int]int64 `json:"rating_distribution"`
	VerifiedPurchases  int64         `json:"verified_purchases"`
}

// CanReview checks whether the user is eligible to review a book:
// a delivered purchase and no review of it yet.
func (s *Service) CanReview(userID, bookID uint) (*CanReviewResult, error) {
	var b book.Book
	if err := s.db.Where("id = ?", bookID).First(&b).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("book not found")
		}
		return nil, fmt.Errorf("failed to retrieve book: %w", err)
	}

	var reviewed int64
	if err := s.db.Model(&Review{}).Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&reviewed).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}

	purchased := s.hasDeliveredPurchase(userID, bookID)

	result := &CanReviewResult{
		CanReview:     purchased && reviewed == 0,
		PurchasedBook: purchased,
	}
	switch {
	case reviewed > 0:
		result.Reason = "you have already reviewed this book"
	case !purchased:
		result.Reason = "you have not purchased this book yet"
	}
	return result, nil
}

// GetBookSummary aggregates the approved reviews of a book: count,
// cached average, star distribution and verified purchase count.
func (s *Service) GetBookSummary(bookID uint) (*Summary, error) {
	var b book.Book
	if err := s.db.Where("id = ?", bookID).First(&b).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("book not found")
		}
		return nil, fmt.Errorf("failed to retrieve book: %w", err)
	}

	summary := &Summary{
		AverageRating:      b.AverageRating,
		RatingDistribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	rows, err := s.db.Model(&Review{}).
		Select("rating, COUNT(*) as count").
		Where("book_id = ? AND is_approved = ?", bookID, true).
		Group("rating").Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rating int
		var count int64
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("failed to scan rating row: %w", err)
		}
		summary.RatingDistribution[rating] = count
		summary.TotalReviews += count
	}

	if err := s.db.Model(&Review{}).
		Where("book_id = ? AND is_approved = ? AND verified_purchase = ?", bookID, true, true).
		Count(&summary.VerifiedPurchases).Error; err != nil {
		return nil, fmt.Errorf("failed to count verified purchases: %w", err)
	}

	return summary, nil
}

// CreateReview creates a review for a published book. The verified
// purchase flag is set when the user has a delivered order containing
// the book.
func (s *Service) CreateReview(userID uint, req *CreateReviewRequest) (*Review, error) {
	var b book.Book
	if err := s.db.Where("id = ? AND is_published = ?", req.BookID, true).First(&b).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("book not found")
		}
		return nil, fmt.Errorf("failed to retrieve book: %w", err)
	}

	var existing Review
	if result := s.db.Where("user_id = ? AND book_id = ?", userID, req.BookID).First(&existing); result.Error == nil {
		return nil, fmt.Errorf("you have already reviewed this book")
	}

	verified := s.hasDeliveredPurchase(userID, req.BookID)

	review := Review{
		UserID:           userID,
		BookID:           req.BookID,
		Rating:           req.Rating,
		Title:            req.Title,
		Comment:          req.Comment,
		VerifiedPurchase: verified,
		IsApproved:       true,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&review).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.recomputeBookRating(tx, req.BookID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit review: %w", err)
	}

	return &review, nil
}

// GetBookReviews lists approved reviews for a book
func (s *Service) GetBookReviews(bookID uint, page, limit int, sortBy string) ([]ReviewResponse, *Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&Review{}).Where("book_id = ? AND is_approved = ?", bookID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	orderClause := "reviews.created_at DESC"
	switch sortBy {
	case "helpful":
		orderClause = "reviews.helpful_count DESC, reviews.created_at DESC"
	case "rating_high":
		orderClause = "reviews.rating DESC, reviews.created_at DESC"
	case "rating_low":
		orderClause = "reviews.rating ASC, reviews.created_at DESC"
	}

	var reviews []ReviewResponse
	offset := (page - 1) * limit
	err := s.db.Model(&Review{}).
		Select("reviews.*, CONCAT(users.first_name, ' ', users.last_name) as reviewer_name").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.book_id = ? AND reviews.is_approved = ?", bookID, true).
		Order(orderClause).
		Offset(offset).Limit(limit).
		Scan(&reviews).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	pagination := &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}

	return reviews, pagination, nil
}

// GetUserReviews lists a user's own reviews
func (s *Service) GetUserReviews(userID uint) ([]Review, error) {
	var reviews []Review
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}
	return reviews, nil
}

// UpdateReview edits the caller's own review
func (s *Service) UpdateReview(reviewID, userID uint, req *UpdateReviewRequest) (*Review, error) {
	var review Review
	if err := s.db.Where("id = ? AND user_id = ?", reviewID, userID).First(&review).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("review not found")
		}
		return nil, fmt.Errorf("failed to retrieve review: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Comment != nil {
		updates["comment"] = *req.Comment
	}
	if len(updates) == 0 {
		return &review, nil
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(&review).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	if req.Rating != nil {
		if err := s.recomputeBookRating(tx, review.BookID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit review update: %w", err)
	}

	s.db.First(&review, reviewID)
	return &review, nil
}

// DeleteReview removes a review. Owners can delete their own, admins
// any.
func (s *Service) DeleteReview(reviewID, actorID uint, isAdmin bool) error {
	var review Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("review not found")
		}
		return fmt.Errorf("failed to retrieve review: %w", err)
	}

	if !isAdmin && review.UserID != actorID {
		return fmt.Errorf("you can only delete your own reviews")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Delete(&review).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if err := s.recomputeBookRating(tx, review.BookID); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// VoteHelpful records a helpfulness vote. Voting the same way twice
// removes the vote, voting the other way flips it.
func (s *Service) VoteHelpful(reviewID, userID uint, isHelpful bool) (*Review, error) {
	var review Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("review not found")
		}
		return nil, fmt.Errorf("failed to retrieve review: %w", err)
	}

	if review.UserID == userID {
		return nil, fmt.Errorf("you cannot vote on your own review")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var vote Vote
	err := tx.Where("user_id = ? AND review_id = ?", userID, reviewID).First(&vote).Error

	switch {
	case err == gorm.ErrRecordNotFound:
		vote = Vote{UserID: userID, ReviewID: reviewID, IsHelpful: isHelpful}
		if err := tx.Create(&vote).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to record vote: %w", err)
		}
		if err := s.applyVoteDelta(tx, reviewID, isHelpful, 1); err != nil {
			tx.Rollback()
			return nil, err
		}
	case err != nil:
		tx.Rollback()
		return nil, fmt.Errorf("failed to look up vote: %w", err)
	case vote.IsHelpful == isHelpful:
		// Same vote again removes it
		if err := tx.Delete(&vote).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to remove vote: %w", err)
		}
		if err := s.applyVoteDelta(tx, reviewID, isHelpful, -1); err != nil {
			tx.Rollback()
			return nil, err
		}
	default:
		// Opposite vote flips it
		if err := tx.Model(&vote).Update("is_helpful", isHelpful).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to flip vote: %w", err)
		}
		if err := s.applyVoteDelta(tx, reviewID, !isHelpful, -1); err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := s.applyVoteDelta(tx, reviewID, isHelpful, 1); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}

	s.db.First(&review, reviewID)
	return &review, nil
}

// ReportReview flags a review for moderation
func (s *Service) ReportReview(reviewID, userID uint, req *ReportRequest) (*Report, error) {
	var review Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("review not found")
		}
		return nil, fmt.Errorf("failed to retrieve review: %w", err)
	}

	var existing Report
	if result := s.db.Where("user_id = ? AND review_id = ?", userID, reviewID).First(&existing); result.Error == nil {
		return nil, fmt.Errorf("you have already reported this review")
	}

	report := Report{
		UserID:   userID,
		ReviewID: reviewID,
		Reason:   req.Reason,
	}
	if err := s.db.Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	return &report, nil
}

// GetModerationQueue lists unresolved reports for admins
func (s *Service) GetModerationQueue(page, limit int) ([]Report, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&Report{}).Where("is_resolved = ?", false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	var reports []Report
	offset := (page - 1) * limit
	if err := query.Preload("Review").Order("created_at ASC").Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve reports: %w", err)
	}

	return reports, total, nil
}

// ModerateReview resolves reports on a review. Rejecting hides the
// review and pulls it out of the book's rating.
func (s *Service) ModerateReview(reviewID uint, approve bool) (*Review, error) {
	var review Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("review not found")
		}
		return nil, fmt.Errorf("failed to retrieve review: %w", err)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(&review).Update("is_approved", approve).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to moderate review: %w", err)
	}

	now := time.Now().UTC()
	if err := tx.Model(&Report{}).Where("review_id = ? AND is_resolved = ?", reviewID, false).
		UpdateColumns(map[string]interface{}{
			"is_resolved": true,
			"resolved_at": now,
		}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to resolve reports: %w", err)
	}

	if err := s.recomputeBookRating(tx, review.BookID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit moderation: %w", err)
	}

	s.db.First(&review, reviewID)
	return &review, nil
}

// applyVoteDelta adjusts one of the vote counters, clamped at zero
func (s *Service) applyVoteDelta(tx *gorm.DB, reviewID uint, helpful bool, delta int) error {
	column := "helpful_count"
	if !helpful {
		column = "unhelpful_count"
	}

	err := tx.Model(&Review{}).Where("id = ?", reviewID).
		UpdateColumn(column, gorm.Expr("GREATEST("+column+" + ?, 0)", delta)).Error
	if err != nil {
		return fmt.Errorf("failed to update vote counts: %w", err)
	}
	return nil
}

// recomputeBookRating recalculates a book's average rating and review
// count from its approved reviews
func (s *Service) recomputeBookRating(tx *gorm.DB, bookID uint) error {
	var stats struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&Review{}).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Where("book_id = ? AND is_approved = ?", bookID, true).
		Scan(&stats).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	rounded := math.Round(stats.Avg*100) / 100

	err = tx.Model(&book.Book{}).Where("id = ?", bookID).
		UpdateColumns(map[string]interface{}{
			"average_rating": rounded,
			"review_count":   stats.Count,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update book rating: %w", err)
	}
	return nil
}

// hasDeliveredPurchase reports whether the user received the book in a
// delivered order
func (s *Service) hasDeliveredPurchase(userID, bookID uint) bool {
	var count int64
	s.db.Model(&order.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.book_id = ?",
			userID, order.StatusDelivered, bookID).
		Count(&count)
	return count > 0
}
