// internal/interfaces/http/handlers/book.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/book"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// BookHandler handles catalog endpoints
type BookHandler struct {
	bookService *book.Service
	config      *config.Config
}

// NewBookHandler creates a new book handler
func NewBookHandler(db *gorm.DB, cfg *config.Config) *BookHandler {
	return &BookHandler{
		bookService: book.NewService(db, cfg),
		config:      cfg,
	}
}

// GetBooks handles GET /books
func (h *BookHandler) GetBooks(c *gin.Context) {
	var req book.BookListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	response, err := h.bookService.GetBooks(&req)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve books")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Books retrieved successfully",
		"data":    response,
	})
}

// GetBook handles GET /books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid book ID")
		return
	}

	bookResponse, err := h.bookService.GetBook(uint(bookID))
	if err != nil {
		respondError(c, http.StatusNotFound, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Book retrieved successfully",
		"data":    bookResponse,
	})
}

// GetBookBySlug handles GET /books/slug/:slug
func (h *BookHandler) GetBookBySlug(c *gin.Context) {
	slug := c.Param("slug")

	bookResponse, err := h.bookService.GetBookBySlug(slug)
	if err != nil {
		respondError(c, http.StatusNotFound, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Book retrieved successfully",
		"data":    bookResponse,
	})
}

// GetFeaturedBooks handles GET /books/featured
func (h *BookHandler) GetFeaturedBooks(c *gin.Context) {
	limit := 10
	if limitParam := c.Query("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	books, err := h.bookService.GetFeaturedBooks(limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve featured books")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Featured books retrieved successfully",
		"data":    books,
	})
}

// CreateBook handles POST /books (seller)
func (h *BookHandler) CreateBook(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req book.BookCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	bookResponse, err := h.bookService.CreateBook(userID, &req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Book created successfully",
		"data":    bookResponse,
	})
}

// UpdateBook handles PUT /books/:id (owner or admin)
func (h *BookHandler) UpdateBook(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	bookID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid book ID")
		return
	}

	var req book.BookUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	bookResponse, err := h.bookService.UpdateBook(uint(bookID), userID, middleware.IsAdminFromContext(c), &req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Book updated successfully",
		"data":    bookResponse,
	})
}

// DeleteBook handles DELETE /books/:id (owner or admin)
func (h *BookHandler) DeleteBook(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	bookID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid book ID")
		return
	}

	if err := h.bookService.DeleteBook(uint(bookID), userID, middleware.IsAdminFromContext(c)); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Book deleted successfully",
	})
}

// GetSellerBooks handles GET /seller/books
func (h *BookHandler) GetSellerBooks(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	response, err := h.bookService.GetSellerBooks(userID, page, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve books")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Books retrieved successfully",
		"data":    response,
	})
}
