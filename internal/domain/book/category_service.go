// internal/domain/book/category_service.go
package book

import (
	"fmt"
	"strings"

	"github.com/your-org/bookstore-backend/internal/config"
	"gorm.io/gorm"
)

// CategoryService handles category and genre business logic
type CategoryService struct {
	db     *gorm.DB
	config *config.Config
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB, cfg *config.Config) *CategoryService {
	return &CategoryService{
		db:     db,
		config: cfg,
	}
}

// CategoryCreateRequest represents category creation data
type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
}

// CategoryUpdateRequest represents category update data
type CategoryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ParentID    *uint   `json:"parent_id"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

// CategoryWithBookCount represents a category with its published book count
type CategoryWithBookCount struct {
	Category
	BookCount int64 `json:"book_count"`
}

// CategoryTree represents hierarchical category structure
type CategoryTree struct {
	Category
	Children []CategoryTree `json:"children,omitempty"`
}

// GenreCreateRequest represents genre creation data
type GenreCreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// GetCategories retrieves all categories with optional filtering
func (s *CategoryService) GetCategories(includeInactive bool) ([]Category, error) {
	var categories []Category

	query := s.db.Model(&Category{}).
		Preload("Parent").
		Order("sort_order ASC, name ASC")

	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}

	return categories, nil
}

// GetCategoryTree retrieves categories in hierarchical tree structure
func (s *CategoryService) GetCategoryTree(includeInactive bool) ([]CategoryTree, error) {
	categories, err := s.GetCategories(includeInactive)
	if err != nil {
		return nil, err
	}

	// Build tree structure
	categoryMap := make(map[uint]*CategoryTree)
	var rootCategories []CategoryTree

	// Create tree nodes
	for _, cat := range categories {
		categoryMap[cat.ID] = &CategoryTree{
			Category: cat,
			Children: []CategoryTree{},
		}
	}

	// Build hierarchy
	for _, cat := range categories {
		if cat.ParentID == nil {
			// Root category
			rootCategories = append(rootCategories, *categoryMap[cat.ID])
		} else {
			// Child category
			if parent, exists := categoryMap[*cat.ParentID]; exists {
				parent.Children = append(parent.Children, *categoryMap[cat.ID])
			}
		}
	}

	return rootCategories, nil
}

// GetCategoriesWithBookCount retrieves categories with published book counts
func (s *CategoryService) GetCategoriesWithBookCount(includeInactive bool) ([]CategoryWithBookCount, error) {
	var categories []Category

	query := s.db.Model(&Category{}).Order("sort_order ASC, name ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}

	var result []CategoryWithBookCount

	for _, cat := range categories {
		var bookCount int64

		countQuery := s.db.Model(&Book{}).Where("category_id = ?", cat.ID)
		if !includeInactive {
			countQuery = countQuery.Where("is_published = ?", true)
		}

		countQuery.Count(&bookCount)

		result = append(result, CategoryWithBookCount{
			Category:  cat,
			BookCount: bookCount,
		})
	}

	return result, nil
}

// GetCategory retrieves a single category by ID
func (s *CategoryService) GetCategory(id uint) (*Category, error) {
	var category Category
	result := s.db.
		Preload("Parent").
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sort_order ASC, name ASC")
		}).
		Where("id = ?", id).
		First(&category)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("category not found")
		}
		return nil, fmt.Errorf("failed to retrieve category: %w", result.Error)
	}

	return &category, nil
}

// GetCategoryBySlug retrieves a single category by slug
func (s *CategoryService) GetCategoryBySlug(slug string) (*Category, error) {
	var category Category
	result := s.db.
		Preload("Parent").
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sort_order ASC, name ASC")
		}).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&category)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("category not found")
		}
		return nil, fmt.Errorf("failed to retrieve category: %w", result.Error)
	}

	return &category, nil
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(req *CategoryCreateRequest) (*Category, error) {
	// Validate parent category if specified
	if req.ParentID != nil {
		var parent Category
		if result := s.db.Where("id = ?", *req.ParentID).First(&parent); result.Error != nil {
			return nil, fmt.Errorf("parent category not found")
		}
	}

	// Generate slug from name
	slug := s.generateSlug(req.Name)

	// Check if slug already exists
	var existing Category
	if result := s.db.Where("slug = ?", slug).First(&existing); result.Error == nil {
		return nil, fmt.Errorf("category with similar name already exists")
	}

	// Create category
	category := Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		ParentID:    req.ParentID,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	}

	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	// Load relationships
	s.db.Preload("Parent").First(&category, category.ID)

	return &category, nil
}

// UpdateCategory updates an existing category
func (s *CategoryService) UpdateCategory(id uint, req *CategoryUpdateRequest) (*Category, error) {
	var category Category
	result := s.db.Where("id = ?", id).First(&category)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("category not found")
		}
		return nil, fmt.Errorf("failed to find category: %w", result.Error)
	}

	// Validate parent category if being updated
	if req.ParentID != nil {
		// Prevent circular references
		if *req.ParentID == id {
			return nil, fmt.Errorf("category cannot be its own parent")
		}

		// Check if parent exists
		var parent Category
		if result := s.db.Where("id = ?", *req.ParentID).First(&parent); result.Error != nil {
			return nil, fmt.Errorf("parent category not found")
		}

		// Check for circular reference in ancestry
		if s.isCircularReference(id, *req.ParentID) {
			return nil, fmt.Errorf("circular reference detected")
		}
	}

	// Update fields
	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = s.generateSlug(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ParentID != nil {
		updates["parent_id"] = *req.ParentID
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(&category).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	// Load updated category with relationships
	s.db.Preload("Parent").First(&category, category.ID)

	return &category, nil
}

// DeleteCategory soft deletes a category
func (s *CategoryService) DeleteCategory(id uint) error {
	// Check if category has books
	var bookCount int64
	s.db.Model(&Book{}).Where("category_id = ?", id).Count(&bookCount)
	if bookCount > 0 {
		return fmt.Errorf("cannot delete category with existing books")
	}

	// Check if category has children
	var childCount int64
	s.db.Model(&Category{}).Where("parent_id = ?", id).Count(&childCount)
	if childCount > 0 {
		return fmt.Errorf("cannot delete category with subcategories")
	}

	result := s.db.Where("id = ?", id).Delete(&Category{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("category not found")
	}
	return nil
}

// GetGenres retrieves all genres
func (s *CategoryService) GetGenres() ([]Genre, error) {
	var genres []Genre
	if err := s.db.Order("name ASC").Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve genres: %w", err)
	}
	return genres, nil
}

// CreateGenre creates a new genre
func (s *CategoryService) CreateGenre(req *GenreCreateRequest) (*Genre, error) {
	slug := s.generateSlug(req.Name)

	var existing Genre
	if result := s.db.Where("slug = ? OR name = ?", slug, req.Name).First(&existing); result.Error == nil {
		return nil, fmt.Errorf("genre already exists")
	}

	genre := Genre{
		Name: req.Name,
		Slug: slug,
	}

	if err := s.db.Create(&genre).Error; err != nil {
		return nil, fmt.Errorf("failed to create genre: %w", err)
	}

	return &genre, nil
}

// DeleteGenre removes a genre and its book associations
func (s *CategoryService) DeleteGenre(id uint) error {
	var genre Genre
	if err := s.db.Where("id = ?", id).First(&genre).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("genre not found")
		}
		return fmt.Errorf("failed to find genre: %w", err)
	}

	if err := s.db.Model(&genre).Association("Books").Clear(); err != nil {
		return fmt.Errorf("failed to detach genre from books: %w", err)
	}

	if err := s.db.Delete(&genre).Error; err != nil {
		return fmt.Errorf("failed to delete genre: %w", err)
	}
	return nil
}

// isCircularReference checks if making parentID the parent of categoryID would create a circular reference
func (s *CategoryService) isCircularReference(categoryID, parentID uint) bool {
	// Get all ancestors of the parentID
	ancestors := s.getAncestors(parentID)

	// Check if categoryID is in the ancestors
	for _, ancestor := range ancestors {
		if ancestor == categoryID {
			return true
		}
	}

	return false
}

// getAncestors returns all ancestor IDs of a category
func (s *CategoryService) getAncestors(categoryID uint) []uint {
	var ancestors []uint
	currentID := categoryID

	for {
		var category Category
		result := s.db.Select("parent_id").Where("id = ?", currentID).First(&category)
		if result.Error != nil || category.ParentID == nil {
			break
		}

		ancestors = append(ancestors, *category.ParentID)
		currentID = *category.ParentID
	}

	return ancestors
}

// generateSlug generates URL-friendly slug from name
func (s *CategoryService) generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")
	slug = strings.ReplaceAll(slug, "&", "and")

	return slug
}
