package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SanitizeText removes C0 control characters (bytes below 0x20).
// Newlines and tabs are removed as well so a journey line stays on one line.
func SanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
}

// ValidateEpicNumber checks that n can identify an epic.
func ValidateEpicNumber(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: epic number must be a positive integer, got %d", ErrValidation, n)
	}
	return nil
}

// ParseEpicNumber parses a user-supplied epic number such as "42" or "#42".
func ParseEpicNumber(s string) (int, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "#")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: epic number must be a positive integer, got %q", ErrValidation, s)
	}
	if err := ValidateEpicNumber(n); err != nil {
		return 0, err
	}
	return n, nil
}
