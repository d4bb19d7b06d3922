package validation

import (
	"strings"

	"github.com/cfmconsole/cfm/internal/apperr"
)

const (
	minPasswordLength = 12
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
)

var commonPasswordPatterns = []string{
	"password", "123456", "qwerty", "letmein", "welcome",
	"monkey", "dragon", "master", "sunshine", "minecraft",
}

func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperr.Validation("password must be at least 12 characters")
	}
	if len(password) > maxPasswordLength {
		return apperr.Validation("password must not exceed 72 bytes")
	}

	lower := strings.ToLower(password)
	for _, pattern := range commonPasswordPatterns {
		if strings.Contains(lower, pattern) {
			return apperr.Validation("password is too common, please choose a stronger one")
		}
	}
	return nil
}
