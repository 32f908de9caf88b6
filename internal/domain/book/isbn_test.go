// internal/domain/book/isbn_test.go
package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeISBN(t *testing.T) {
	assert.Equal(t, "9780306406157", NormalizeISBN("978-0-306-40615-7"))
	assert.Equal(t, "9780306406157", NormalizeISBN("978 0 306 40615 7"))
	assert.Equal(t, "155860832X", NormalizeISBN("1-55860-832-x"))
}

func TestValidateISBN13(t *testing.T) {
	assert.NoError(t, ValidateISBN("978-0-306-40615-7"))
	assert.NoError(t, ValidateISBN("9780306406157"))

	// Wrong check digit
	assert.Error(t, ValidateISBN("978-0-306-40615-8"))

	// Non-digit character
	assert.Error(t, ValidateISBN("978X030640615Y"))
}

func TestValidateISBN10(t *testing.T) {
	assert.NoError(t, ValidateISBN("0-306-40615-2"))
	assert.NoError(t, ValidateISBN("0306406152"))

	// X is only valid as the check digit
	assert.NoError(t, ValidateISBN("1-55860-832-X"))
	assert.Error(t, ValidateISBN("1X5860832X"))

	// Wrong check digit
	assert.Error(t, ValidateISBN("0-306-40615-1"))
}

func TestValidateISBNLength(t *testing.T) {
	err := ValidateISBN("12345")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "10 or 13")

	assert.Error(t, ValidateISBN(""))
}
