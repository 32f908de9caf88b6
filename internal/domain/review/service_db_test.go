// internal/domain/review/service_db_test.go
package review

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/book"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&book.Category{}, &book.Book{},
		&order.Order{}, &order.OrderItem{},
		&Review{}, &Vote{}, &Report{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *user.User {
	t.Helper()
	u := user.User{
		Email:    fmt.Sprintf("reader-%s@example.com", uuid.New().String()[:8]),
		Password: "x",
		Role:     user.RoleBuyer,
		IsActive: true,
	}
	require.NoError(t, db.Create(&u).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&u) })
	return &u
}

func seedBook(t *testing.T, db *gorm.DB, sellerID uint) *book.Book {
	t.Helper()
	tag := uuid.New().String()[:8]

	category := book.Category{Name: "Fiction " + tag, Slug: "fiction-" + tag}
	require.NoError(t, db.Create(&category).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&category) })

	b := book.Book{
		Title:         "Reviewed Book " + tag,
		Slug:          "reviewed-book-" + tag,
		ISBN:          "9780306406157",
		Author:        "Test Author",
		Price:         1200,
		StockQuantity: 10,
		CategoryID:    category.ID,
		SellerID:      sellerID,
		IsPublished:   true,
	}
	require.NoError(t, db.Create(&b).Error)
	t.Cleanup(func() { db.Unscoped().Delete(&b) })
	return &b
}

func seedDeliveredOrder(t *testing.T, db *gorm.DB, u *user.User, b *book.Book) {
	t.Helper()
	o := order.Order{
		OrderNumber:    "TST-" + uuid.New().String()[:12],
		UserID:         u.ID,
		Email:          u.Email,
		Status:         order.StatusDelivered,
		SubtotalAmount: b.Price,
		TotalAmount:    b.Price,
		Items: []order.OrderItem{{
			BookID:     b.ID,
			SellerID:   b.SellerID,
			Title:      b.Title,
			Quantity:   1,
			UnitPrice:  b.Price,
			TotalPrice: b.Price,
		}},
	}
	require.NoError(t, db.Create(&o).Error)
	t.Cleanup(func() {
		db.Unscoped().Where("order_id = ?", o.ID).Delete(&order.OrderItem{})
		db.Unscoped().Delete(&o)
	})
}

func seedReview(t *testing.T, db *gorm.DB, userID, bookID uint, rating int, approved, verified bool) *Review {
	t.Helper()
	r := Review{
		UserID:           userID,
		BookID:           bookID,
		Rating:           rating,
		Comment:          "fine",
		IsApproved:       approved,
		VerifiedPurchase: verified,
	}
	require.NoError(t, db.Create(&r).Error)
	if !approved {
		// The column defaults to true, so a zero value is not inserted
		require.NoError(t, db.Model(&r).UpdateColumn("is_approved", false).Error)
	}
	t.Cleanup(func() {
		db.Unscoped().Where("review_id = ?", r.ID).Delete(&Vote{})
		db.Unscoped().Delete(&r)
	})
	return &r
}

func TestVoteToggleReturnsCountsToBaseline(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, &config.Config{})

	author := seedUser(t, db)
	voter := seedUser(t, db)
	b := seedBook(t, db, author.ID)
	r := seedReview(t, db, author.ID, b.ID, 4, true, false)

	updated, err := svc.VoteHelpful(r.ID, voter.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.HelpfulCount)
	assert.Equal(t, 0, updated.UnhelpfulCount)

	// Same vote again removes it
	updated, err = svc.VoteHelpful(r.ID, voter.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.HelpfulCount)
	assert.Equal(t, 0, updated.UnhelpfulCount)
}

func TestVoteFlipMovesCountAcross(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, &config.Config{})

	author := seedUser(t, db)
	voter := seedUser(t, db)
	b := seedBook(t, db, author.ID)
	r := seedReview(t, db, author.ID, b.ID, 4, true, false)

	_, err := svc.VoteHelpful(r.ID, voter.ID, true)
	require.NoError(t, err)

	updated, err := svc.VoteHelpful(r.ID, voter.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.HelpfulCount)
	assert.Equal(t, 1, updated.UnhelpfulCount)

	// Authors cannot vote on their own review
	_, err = svc.VoteHelpful(r.ID, author.ID, true)
	assert.Error(t, err)
}

func TestCanReviewEligibility(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, &config.Config{})

	reader := seedUser(t, db)
	b := seedBook(t, db, reader.ID)

	result, err := svc.CanReview(reader.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, result.CanReview)
	assert.False(t, result.PurchasedBook)
	assert.Equal(t, "you have not purchased this book yet", result.Reason)

	seedDeliveredOrder(t, db, reader, b)

	result, err = svc.CanReview(reader.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, result.CanReview)
	assert.True(t, result.PurchasedBook)
	assert.Empty(t, result.Reason)

	seedReview(t, db, reader.ID, b.ID, 5, true, true)

	result, err = svc.CanReview(reader.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, result.CanReview)
	assert.Equal(t, "you have already reviewed this book", result.Reason)
}

func TestBookSummaryDistribution(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, &config.Config{})

	seller := seedUser(t, db)
	b := seedBook(t, db, seller.ID)

	for _, f := range []struct {
		rating   int
		approved bool
		verified bool
	}{
		{5, true, true},
		{5, true, false},
		{3, true, false},
		{1, false, false}, // unapproved, must not count
	} {
		seedReview(t, db, seedUser(t, db).ID, b.ID, f.rating, f.approved, f.verified)
	}

	summary, err := svc.GetBookSummary(b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TotalReviews)
	assert.Equal(t, int64(2), summary.RatingDistribution[5])
	assert.Equal(t, int64(1), summary.RatingDistribution[3])
	assert.Equal(t, int64(0), summary.RatingDistribution[1])
	assert.Equal(t, int64(1), summary.VerifiedPurchases)

	_, err = svc.GetBookSummary(b.ID + 100000)
	assert.Error(t, err)
}
