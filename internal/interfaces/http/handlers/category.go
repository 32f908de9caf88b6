// internal/interfaces/http/handlers/category.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/book"
	"gorm.io/gorm"
)

// CategoryHandler handles category and genre endpoints
type CategoryHandler struct {
	categoryService *book.CategoryService
	config          *config.Config
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(db *gorm.DB, cfg *config.Config) *CategoryHandler {
	return &CategoryHandler{
		categoryService: book.NewCategoryService(db, cfg),
		config:          cfg,
	}
}

// GetCategories handles GET /categories
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	includeCounts := c.Query("include_counts") == "true"

	if includeCounts {
		categories, err := h.categoryService.GetCategoriesWithBookCount(false)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to retrieve categories")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Categories retrieved successfully",
			"data":    categories,
		})
		return
	}

	categories, err := h.categoryService.GetCategories(false)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Categories retrieved successfully",
		"data":    categories,
	})
}

// GetCategoryTree handles GET /categories/tree
func (h *CategoryHandler) GetCategoryTree(c *gin.Context) {
	tree, err := h.categoryService.GetCategoryTree(false)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve category tree")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category tree retrieved successfully",
		"data":    tree,
	})
}

// GetCategory handles GET /categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		// Fall back to slug lookup
		category, slugErr := h.categoryService.GetCategoryBySlug(c.Param("id"))
		if slugErr != nil {
			respondError(c, http.StatusNotFound, "Category not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Category retrieved successfully",
			"data":    category,
		})
		return
	}

	category, err := h.categoryService.GetCategory(uint(categoryID))
	if err != nil {
		respondError(c, http.StatusNotFound, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category retrieved successfully",
		"data":    category,
	})
}

// CreateCategory handles POST /admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req book.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	category, err := h.categoryService.CreateCategory(&req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Category created successfully",
		"data":    category,
	})
}

// UpdateCategory handles PUT /admin/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var req book.CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	category, err := h.categoryService.UpdateCategory(uint(categoryID), &req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category updated successfully",
		"data":    category,
	})
}

// DeleteCategory handles DELETE /admin/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := h.categoryService.DeleteCategory(uint(categoryID)); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category deleted successfully",
	})
}

// GetGenres handles GET /genres
func (h *CategoryHandler) GetGenres(c *gin.Context) {
	genres, err := h.categoryService.GetGenres()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve genres")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Genres retrieved successfully",
		"data":    genres,
	})
}

// CreateGenre handles POST /admin/genres
func (h *CategoryHandler) CreateGenre(c *gin.Context) {
	var req book.GenreCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	genre, err := h.categoryService.CreateGenre(&req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Genre created successfully",
		"data":    genre,
	})
}

// DeleteGenre handles DELETE /admin/genres/:id
func (h *CategoryHandler) DeleteGenre(c *gin.Context) {
	genreID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid genre ID")
		return
	}

	if err := h.categoryService.DeleteGenre(uint(genreID)); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Genre deleted successfully",
	})
}
