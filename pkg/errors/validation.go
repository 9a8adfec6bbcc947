package errors

import (
	"strings"
	"unicode"
)

// MaxPanelBudget bounds panel budgets accepted from user input.
const MaxPanelBudget = 64

// ValidateBudget validates a panel budget (the target number of visible panel groups).
func ValidateBudget(n int) error {
	if n < 1 {
		return New(ErrCodeInvalidInput, "panel budget must be at least 1, got %d", n)
	}
	if n > MaxPanelBudget {
		return New(ErrCodeInvalidInput, "panel budget too large (max %d), got %d", MaxPanelBudget, n)
	}
	return nil
}

// ValidateViewport validates viewport dimensions reported by the shell.
// A zero height means "unknown" and is accepted.
func ValidateViewport(width, height int) error {
	if width <= 0 {
		return New(ErrCodeInvalidInput, "viewport width must be positive, got %d", width)
	}
	if height < 0 {
		return New(ErrCodeInvalidInput, "viewport height must not be negative, got %d", height)
	}
	return nil
}

// ValidatePath validates a template or layout file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateNodeID validates an id supplied from outside the engine (HTTP, CLI).
func ValidateNodeID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "node id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid control characters")
		}
	}
	return nil
}
