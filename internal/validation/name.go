package validation

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims a person's name and puts it in NFC form so that
// visually identical names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ValidateName validates a first or last name
func ValidateName(field, name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return fieldError(field, "name is required")
	}

	if len([]rune(trimmed)) > 100 {
		return fieldError(field, "name is too long (max 100 characters)")
	}

	return nil
}
