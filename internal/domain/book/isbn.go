// internal/domain/book/isbn.go
package book

import (
	"fmt"
	"strings"
)

// NormalizeISBN strips hyphens and spaces and upper-cases the check digit
func NormalizeISBN(isbn string) string {
	cleaned := strings.NewReplacer("-", "", " ", "").Replace(isbn)
	return strings.ToUpper(cleaned)
}

// ValidateISBN accepts ISBN-10 or ISBN-13, with or without hyphens,
// and verifies the checksum.
func ValidateISBN(isbn string) error {
	cleaned := NormalizeISBN(isbn)

	switch len(cleaned) {
	case 10:
		if !isValidISBN10(cleaned) {
			return fmt.Errorf("invalid ISBN-10 checksum")
		}
	case 13:
		if !isValidISBN13(cleaned) {
			return fmt.Errorf("invalid ISBN-13 checksum")
		}
	default:
		return fmt.Errorf("ISBN must be 10 or 13 digits, got %d", len(cleaned))
	}

	return nil
}

func isValidISBN10(isbn string) bool {
	sum := 0
	for i, c := range isbn {
		var digit int
		switch {
		case c >= '0' && c <= '9':
			digit = int(c - '0')
		case c == 'X' && i == 9:
			digit = 10
		default:
			return false
		}
		sum += digit * (10 - i)
	}
	return sum%11 == 0
}

func isValidISBN13(isbn string) bool {
	sum := 0
	for i, c := range isbn {
		if c < '0' || c > '9' {
			return false
		}
		digit := int(c - '0')
		if i%2 == 0 {
			sum += digit
		} else {
			sum += digit * 3
		}
	}
	return sum%10 == 0
}
