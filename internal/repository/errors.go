package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicatePhone    = errors.New("phone number already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateGoogleID = errors.New("google account already linked")
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// uniqueViolation reports whether err is a unique constraint failure and
// returns the text that names the offending column or constraint.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		return pgErr.ConstraintName, true
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return "", false
		}
		return sqliteErr.Error(), true
	}

	// Other drivers: match on the message (works for both SQLite and PostgreSQL)
	errStr := err.Error()
	if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
		return errStr, true
	}
	return "", false
}

// mapUniqueViolation turns a unique constraint failure on users into the
// sentinel for the column involved. Other errors pass through unchanged.
func mapUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	where, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	switch {
	case strings.Contains(where, "phone_number"):
		return ErrDuplicatePhone
	case strings.Contains(where, "google_id"):
		return ErrDuplicateGoogleID
	case strings.Contains(where, "email"):
		return ErrDuplicateEmail
	}
	return err
}
