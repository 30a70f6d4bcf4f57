package validation

import (
	"strings"
	"unicode"
)

const (
	PhoneMinDigits = 10
	PhoneMaxLength = 15 // users.phone_number is VARCHAR(15)
)

// NormalizePhone strips common formatting (spaces, dashes, dots, parentheses)
// and keeps a single leading '+'. Registration, signup and backfill all
// normalize first so "555-123-4567" and "5551234567" address the same user.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	var b strings.Builder
	for i, r := range phone {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// formatting
		default:
			// Keep anything unexpected so validation rejects it
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidatePhone checks a normalized phone number.
func ValidatePhone(phone string) error {
	if phone == "" {
		return fieldError("phone", "phone number is required")
	}

	digits := strings.TrimPrefix(phone, "+")
	for _, r := range digits {
		if r < '0' || r > '9' {
			return fieldError("phone", "phone number may only contain digits")
		}
	}

	if len(digits) < PhoneMinDigits {
		return fieldError("phone", "phone number is too short (min 10 digits)")
	}

	if len(phone) > PhoneMaxLength {
		return fieldError("phone", "phone number is too long (max 15 characters)")
	}

	return nil
}
