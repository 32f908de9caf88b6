// internal/interfaces/http/handlers/response.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// errorCode maps an HTTP status onto the machine-readable code
// carried by the error envelope.
func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return "ERROR"
	}
}

// respondError writes the error envelope every endpoint shares:
// error, code, details and timestamp.
func respondError(c *gin.Context, status int, message string, details ...string) {
	detail := gin.H{}
	if len(details) > 0 && details[0] != "" {
		detail = gin.H{"non_field_errors": details}
	}
	c.JSON(status, gin.H{
		"error":     message,
		"code":      errorCode(status),
		"details":   detail,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
