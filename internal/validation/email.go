package validation

import (
	"net/mail"
	"strings"

	"github.com/cfmconsole/cfm/internal/apperr"
)

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks length (RFC 5321) and syntax (RFC 5322).
func ValidateEmail(email string) error {
	if email == "" {
		return apperr.Validation("email address is required")
	}
	if len(email) > 254 {
		return apperr.Validation("email address is too long (max 254 characters)")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.Validation("invalid email address format")
	}
	return nil
}
