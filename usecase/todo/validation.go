package todo

import (
	"strings"
	"unicode/utf8"

	"github.com/taskdeck/backend/domain"
)

// MaxTitleLength caps titles at 500 characters after trimming.
const MaxTitleLength = 500

// ValidateTitle trims surrounding whitespace and enforces the 1..500 length
// bound. It returns the normalized title.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", domain.NewError(domain.ErrCodeInvalid, "title must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return "", domain.NewError(domain.ErrCodeInvalid, "title must be at most 500 characters")
	}
	return trimmed, nil
}
