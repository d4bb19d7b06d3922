package validation

import (
	"fmt"

	"github.com/cfmconsole/cfm/internal/apperr"
)

// ValidateUploadSize rejects a declared size above max. A max of zero or
// less disables the check. The declared size is only a hint; stored sizes
// are measured.
func ValidateUploadSize(declared, max int64) error {
	if max > 0 && declared > max {
		return apperr.Validation(fmt.Sprintf("file too large: maximum size is %s", humanSize(max)))
	}
	return nil
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
