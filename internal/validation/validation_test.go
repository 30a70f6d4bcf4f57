package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"5551234567":        "5551234567",
		" (555) 123-4567 ":  "5551234567",
		"555.123.4567":      "5551234567",
		"+1 555 123 4567":   "+15551234567",
		"555-123-4567 ext1": "5551234567ext1",
		"1+5551234567":      "1+5551234567",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestValidatePhone(t *testing.T) {
	valid := []string{"5551234567", "+15551234567", "123456789012345"}
	for _, p := range valid {
		assert.NoError(t, ValidatePhone(p), p)
	}

	invalid := []string{"", "12345", "555123456x", "+1234567890123456", "1+5551234567"}
	for _, p := range invalid {
		err := ValidatePhone(p)
		require.Error(t, err, p)

		var fe *FieldError
		require.True(t, errors.As(err, &fe), p)
		assert.Equal(t, "phone", fe.Field)
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ana@x.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("Ana <ana@x.com>"))
	assert.Equal(t, "ana@x.com", NormalizeEmail("  Ana@X.com "))
}

func TestNormalizeName(t *testing.T) {
	// "e" + combining acute accent composes to a single rune
	assert.Equal(t, "Jos\u00e9", NormalizeName("  Jose\u0301 "))
	assert.NoError(t, ValidateName("firstName", "Ana"))

	err := ValidateName("lastName", "   ")
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "lastName", fe.Field)
}

func TestParseDOB(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	dob, err := ParseDOB("1990-01-01", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), dob)

	dob, err = ParseDOB("1990-01-01T00:00:00.000Z", now)
	require.NoError(t, err)
	assert.Equal(t, 1990, dob.Year())

	for _, bad := range []string{"", "01/01/1990", "2030-01-01", "1850-01-01"} {
		_, err := ParseDOB(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestStruct(t *testing.T) {
	type request struct {
		Phone string `json:"phone" validate:"required"`
		Email string `json:"email" validate:"omitempty,email"`
		Name  string `json:"firstName" validate:"max=5"`
	}

	assert.NoError(t, Struct(request{Phone: "5551234567"}))

	err := Struct(request{})
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "phone", fe.Field)
	assert.Equal(t, "phone is required", fe.Message)

	err = Struct(request{Phone: "1", Email: "nope"})
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "email", fe.Field)

	err = Struct(request{Phone: "1", Name: "Alexandra"})
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "firstName is too long (max 5 characters)", fe.Message)
}
