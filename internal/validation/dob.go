package validation

import (
	"strings"
	"time"
)

// ParseDOB parses a date of birth in YYYY-MM-DD form. A full ISO timestamp
// is accepted and truncated to its date, since browser date pickers often
// serialize that way.
func ParseDOB(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fieldError("dob", "date of birth is required")
	}

	if len(value) > 10 && value[10] == 'T' {
		value = value[:10]
	}

	dob, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fieldError("dob", "date of birth must be YYYY-MM-DD")
	}

	if dob.After(now) {
		return time.Time{}, fieldError("dob", "date of birth cannot be in the future")
	}

	if dob.Year() < 1900 {
		return time.Time{}, fieldError("dob", "date of birth is out of range")
	}

	return dob, nil
}
