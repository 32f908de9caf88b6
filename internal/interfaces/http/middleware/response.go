// internal/interfaces/http/middleware/response.go
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// abortError stops the chain with the error envelope the API uses
// everywhere: error, code, details and timestamp.
func abortError(c *gin.Context, status int, message string, details gin.H) {
	if details == nil {
		details = gin.H{}
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":     message,
		"code":      codeForStatus(status),
		"details":   details,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusRequestTimeout:
		return "TIMEOUT"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		return "ERROR"
	}
}
