// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	unsafeNameRun = regexp.MustCompile(`[^a-zA-Z0-9_\-]+`)
)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

// SanitizeInput trims surrounding space and removes null bytes.
func SanitizeInput(input string) string {
	return strings.ReplaceAll(strings.TrimSpace(input), "\x00", "")
}

// SafeFileStem turns a display name into an object-storage friendly stem.
func SafeFileStem(name, fallback string) string {
	stem := strings.Trim(unsafeNameRun.ReplaceAllString(strings.TrimSpace(name), "_"), "_")
	if stem == "" {
		return fallback
	}
	if len(stem) > 80 {
		stem = stem[:80]
	}
	return stem
}
