// internal/domain/book/service.go
package book

import (
	"fmt"
	"strings"
	"time"

	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// BookListRequest represents catalog list query parameters
type BookListRequest struct {
	Page       int     `form:"page,default=1"`
	Limit      int     `form:"limit,default=20"`
	CategoryID uint    `form:"category_id"`
	GenreID    uint    `form:"genre_id"`
	SellerID   uint    `form:"seller_id"`
	Search     string  `form:"search"`
	Condition  string  `form:"condition"`
	Language   string  `form:"language"`
	SortBy     string  `form:"sort_by,default=created_at"`
	SortOrder  string  `form:"sort_order,default=desc"`
	MinPrice   int64   `form:"min_price"`
	MaxPrice   int64   `form:"max_price"`
	MinRating  float64 `form:"min_rating"`
	IsFeatured *bool   `form:"is_featured"`
}

// BookCreateRequest represents listing creation data
type BookCreateRequest struct {
	Title           string     `json:"title" binding:"required"`
	ISBN            string     `json:"isbn" binding:"required"`
	Author          string     `json:"author" binding:"required"`
	Description     string     `json:"description"`
	Price           int64      `json:"price" binding:"required"`
	StockQuantity   int        `json:"stock_quantity"`
	Condition       string     `json:"condition"`
	Language        string     `json:"language"`
	Format          string     `json:"format"`
	Pages           int        `json:"pages"`
	Publisher       string     `json:"publisher"`
	PublicationDate *time.Time `json:"publication_date"`
	CoverImageURL   string     `json:"cover_image_url"`
	CategoryID      uint       `json:"category_id" binding:"required"`
	GenreIDs        []uint     `json:"genre_ids"`
	IsPublished     bool       `json:"is_published"`
}

// BookUpdateRequest represents listing update data
type BookUpdateRequest struct {
	Title           *string    `json:"title"`
	ISBN            *string    `json:"isbn"`
	Author          *string    `json:"author"`
	Description     *string    `json:"description"`
	Price           *int64     `json:"price"`
	Condition       *string    `json:"condition"`
	Language        *string    `json:"language"`
	Format          *string    `json:"format"`
	Pages           *int       `json:"pages"`
	Publisher       *string    `json:"publisher"`
	PublicationDate *time.Time `json:"publication_date"`
	CoverImageURL   *string    `json:"cover_image_url"`
	CategoryID      *uint      `json:"category_id"`
	GenreIDs        []uint     `json:"genre_ids"`
	IsPublished     *bool      `json:"is_published"`
	IsFeatured      *bool      `json:"is_featured"`
}

// BookResponse represents catalog response with pagination
type BookResponse struct {
	Books      []Book     `json:"books"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// GetBooks retrieves published books with filtering and pagination
func (s *Service) GetBooks(req *BookListRequest) (*BookResponse, error) {
	var books []Book
	var total int64

	// Build query
	query := s.db.Model(&Book{}).
		Preload("Category").
		Preload("Genres").
		Where("is_published = ?", true)

	// Apply filters
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	if req.GenreID > 0 {
		query = query.Joins("JOIN book_genres ON book_genres.book_id = books.id").
			Where("book_genres.genre_id = ?", req.GenreID)
	}

	if req.SellerID > 0 {
		query = query.Where("seller_id = ?", req.SellerID)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR isbn = ?",
			search, search, NormalizeISBN(req.Search))
	}

	if req.Condition != "" {
		query = query.Where("condition = ?", req.Condition)
	}

	if req.Language != "" {
		query = query.Where("language = ?", req.Language)
	}

	if req.MinPrice > 0 {
		query = query.Where("price >= ?", req.MinPrice)
	}

	if req.MaxPrice > 0 {
		query = query.Where("price <= ?", req.MaxPrice)
	}

	if req.MinRating > 0 {
		query = query.Where("average_rating >= ?", req.MinRating)
	}

	if req.IsFeatured != nil {
		query = query.Where("is_featured = ?", *req.IsFeatured)
	}

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	// Apply sorting
	orderClause := s.buildOrderClause(req.SortBy, req.SortOrder)
	query = query.Order(orderClause)

	// Apply pagination
	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve books: %w", err)
	}

	// Calculate pagination info
	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &BookResponse{
		Books:      books,
		Pagination: pagination,
	}, nil
}

// GetBook retrieves a single book by ID
func (s *Service) GetBook(id uint) (*Book, error) {
	var b Book
	result := s.db.
		Preload("Category").
		Preload("Genres").
		Where("id = ?", id).
		First(&b)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("book not found")
		}
		return nil, fmt.Errorf("failed to retrieve book: %w", result.Error)
	}

	return &b, nil
}

// GetBookBySlug retrieves a single published book by slug
func (s *Service) GetBookBySlug(slug string) (*Book, error) {
	var b Book
	result := s.db.
		Preload("Category").
		Preload("Genres").
		Where("slug = ? AND is_published = ?", slug, true).
		First(&b)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("book not found")
		}
		return nil, fmt.Errorf("failed to retrieve book: %w", result.Error)
	}

	return &b, nil
}

// GetFeaturedBooks retrieves the featured shelf
func (s *Service) GetFeaturedBooks(limit int) ([]Book, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var books []Book
	if err := s.db.
		Preload("Category").
		Where("is_published = ? AND is_featured = ?", true, true).
		Order("updated_at DESC").
		Limit(limit).
		Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve featured books: %w", err)
	}

	return books, nil
}

// CreateBook creates a new listing for a seller
func (s *Service) CreateBook(sellerID uint, req *BookCreateRequest) (*Book, error) {
	// Only sellers may list books
	var seller user.User
	if err := s.db.Where("id = ?", sellerID).First(&seller).Error; err != nil {
		return nil, fmt.Errorf("seller not found")
	}
	if !seller.IsSeller() && !seller.IsAdmin() {
		return nil, fmt.Errorf("only sellers can list books")
	}

	if err := ValidateISBN(req.ISBN); err != nil {
		return nil, fmt.Errorf("invalid ISBN: %w", err)
	}

	if req.Price <= 0 {
		return nil, fmt.Errorf("price must be greater than zero")
	}

	if req.StockQuantity < 0 {
		return nil, fmt.Errorf("stock quantity must not be negative")
	}

	condition := req.Condition
	if condition == "" {
		condition = ConditionNew
	}
	if !IsValidCondition(condition) {
		return nil, fmt.Errorf("invalid condition: %s", condition)
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	// Category must exist and be active
	var category Category
	if err := s.db.Where("id = ? AND is_active = ?", req.CategoryID, true).First(&category).Error; err != nil {
		return nil, fmt.Errorf("category not found")
	}

	genres, err := s.loadGenres(req.GenreIDs)
	if err != nil {
		return nil, err
	}

	b := Book{
		Title:           req.Title,
		Slug:            s.generateSlug(req.Title),
		ISBN:            NormalizeISBN(req.ISBN),
		Author:          req.Author,
		Description:     req.Description,
		Price:           req.Price,
		StockQuantity:   req.StockQuantity,
		Condition:       condition,
		Language:        language,
		Format:          req.Format,
		Pages:           req.Pages,
		Publisher:       req.Publisher,
		PublicationDate: req.PublicationDate,
		CoverImageURL:   req.CoverImageURL,
		CategoryID:      req.CategoryID,
		SellerID:        sellerID,
		IsPublished:     req.IsPublished,
		Genres:          genres,
	}

	if err := s.db.Create(&b).Error; err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	// Load relationships
	s.db.Preload("Category").Preload("Genres").First(&b, b.ID)

	return &b, nil
}

// UpdateBook updates an existing listing. Sellers may only update their
// own listings, admins may update any.
func (s *Service) UpdateBook(id, actorID uint, isAdmin bool, req *BookUpdateRequest) (*Book, error) {
	var b Book
	result := s.db.Where("id = ?", id).First(&b)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("book not found")
		}
		return nil, fmt.Errorf("failed to find book: %w", result.Error)
	}

	if !isAdmin && b.SellerID != actorID {
		return nil, fmt.Errorf("you can only update your own listings")
	}

	// Update fields
	updates := make(map[string]interface{})

	if req.Title != nil {
		updates["title"] = *req.Title
		updates["slug"] = s.generateSlug(*req.Title)
	}
	if req.ISBN != nil {
		if err := ValidateISBN(*req.ISBN); err != nil {
			return nil, fmt.Errorf("invalid ISBN: %w", err)
		}
		updates["isbn"] = NormalizeISBN(*req.ISBN)
	}
	if req.Author != nil {
		updates["author"] = *req.Author
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, fmt.Errorf("price must be greater than zero")
		}
		updates["price"] = *req.Price
	}
	if req.Condition != nil {
		if !IsValidCondition(*req.Condition) {
			return nil, fmt.Errorf("invalid condition: %s", *req.Condition)
		}
		updates["condition"] = *req.Condition
	}
	if req.Language != nil {
		updates["language"] = *req.Language
	}
	if req.Format != nil {
		updates["format"] = *req.Format
	}
	if req.Pages != nil {
		updates["pages"] = *req.Pages
	}
	if req.Publisher != nil {
		updates["publisher"] = *req.Publisher
	}
	if req.PublicationDate != nil {
		updates["publication_date"] = *req.PublicationDate
	}
	if req.CoverImageURL != nil {
		updates["cover_image_url"] = *req.CoverImageURL
	}
	if req.CategoryID != nil {
		var category Category
		if err := s.db.Where("id = ? AND is_active = ?", *req.CategoryID, true).First(&category).Error; err != nil {
			return nil, fmt.Errorf("category not found")
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}
	if req.IsFeatured != nil {
		// Only admins curate the featured shelf
		if !isAdmin {
			return nil, fmt.Errorf("only admins can feature listings")
		}
		updates["is_featured"] = *req.IsFeatured
	}

	if len(updates) > 0 {
		if err := s.db.Model(&b).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update book: %w", err)
		}
	}

	if req.GenreIDs != nil {
		genres, err := s.loadGenres(req.GenreIDs)
		if err != nil {
			return nil, err
		}
		if err := s.db.Model(&b).Association("Genres").Replace(genres); err != nil {
			return nil, fmt.Errorf("failed to update genres: %w", err)
		}
	}

	// Load updated book with relationships
	s.db.Preload("Category").Preload("Genres").First(&b, b.ID)

	return &b, nil
}

// DeleteBook soft deletes a listing
func (s *Service) DeleteBook(id, actorID uint, isAdmin bool) error {
	var b Book
	if err := s.db.Where("id = ?", id).First(&b).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("book not found")
		}
		return fmt.Errorf("failed to find book: %w", err)
	}

	if !isAdmin && b.SellerID != actorID {
		return fmt.Errorf("you can only delete your own listings")
	}

	if err := s.db.Delete(&b).Error; err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

// GetSellerBooks retrieves all listings of a seller, published or not
func (s *Service) GetSellerBooks(sellerID uint, page, limit int) (*BookResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var books []Book
	var total int64

	query := s.db.Model(&Book{}).Preload("Category").Where("seller_id = ?", sellerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve books: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &BookResponse{
		Books: books,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// buildOrderClause builds ORDER BY clause for sorting
func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]string{
		"title":        "title",
		"price":        "price",
		"created_at":   "created_at",
		"rating":       "average_rating",
		"best_selling": "total_sales",
	}

	column, ok := validSortFields[sortBy]
	if !ok {
		column = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", column, sortOrder)
}

// loadGenres resolves genre IDs, failing on unknown IDs
func (s *Service) loadGenres(genreIDs []uint) ([]Genre, error) {
	if len(genreIDs) == 0 {
		return nil, nil
	}

	var genres []Genre
	if err := s.db.Where("id IN ?", genreIDs).Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("failed to load genres: %w", err)
	}
	if len(genres) != len(genreIDs) {
		return nil, fmt.Errorf("one or more genres not found")
	}
	return genres, nil
}

// generateSlug generates URL-friendly slug from the title
func (s *Service) generateSlug(title string) string {
	slug := strings.ToLower(title)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")

	return slug + "-" + fmt.Sprintf("%d", time.Now().Unix())
}
