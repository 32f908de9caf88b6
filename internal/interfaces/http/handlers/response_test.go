// internal/interfaces/http/handlers/response_test.go
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", errorCode(http.StatusBadRequest))
	assert.Equal(t, "UNAUTHORIZED", errorCode(http.StatusUnauthorized))
	assert.Equal(t, "FORBIDDEN", errorCode(http.StatusForbidden))
	assert.Equal(t, "NOT_FOUND", errorCode(http.StatusNotFound))
	assert.Equal(t, "CONFLICT", errorCode(http.StatusConflict))
	assert.Equal(t, "ERROR", errorCode(http.StatusInternalServerError))
}

func TestRespondErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, http.StatusNotFound, "Book not found")

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Book not found", body["error"])
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.Equal(t, map[string]interface{}{}, body["details"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestRespondErrorWithDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, http.StatusBadRequest, "Invalid request data", "quantity must be positive")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "BAD_REQUEST", body["code"])

	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"quantity must be positive"}, details["non_field_errors"])
}
