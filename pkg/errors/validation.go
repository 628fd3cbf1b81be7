package errors

import (
	"strings"
	"unicode"
)

// Limits for user-supplied identifiers.
const (
	MaxSiteLength      = 256
	MaxCounterIDLength = 256
)

// ValidateSite checks the free-form owner label given at counter creation.
// Surrounding whitespace is ignored; the label must not be blank, must fit in
// MaxSiteLength bytes, and must not contain control characters.
func ValidateSite(site string) error {
	site = strings.TrimSpace(site)
	if site == "" {
		return New(ErrCodeInvalidInput, "site is required")
	}
	if len(site) > MaxSiteLength {
		return New(ErrCodeInvalidInput, "site too long (max %d characters)", MaxSiteLength)
	}
	for _, r := range site {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "site contains invalid control characters")
		}
	}
	return nil
}

// ValidateCounterID rejects ids that could never have been issued or migrated.
func ValidateCounterID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "counter id is required")
	}
	if len(id) > MaxCounterIDLength {
		return New(ErrCodeInvalidInput, "counter id too long (max %d characters)", MaxCounterIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "counter id contains invalid control characters")
		}
	}
	return nil
}
