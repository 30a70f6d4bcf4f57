package model

import (
	"time"
)

type User struct {
	ID                string     `db:"id"`
	PhoneNumber       *string    `db:"phone_number"` // Nullable until registration or backfill
	Email             *string    `db:"email"`
	FirstName         *string    `db:"first_name"`
	LastName          *string    `db:"last_name"`
	DOB               *time.Time `db:"dob"`
	GoogleID          *string    `db:"google_id"`
	ProfilePicture    *string    `db:"profile_picture"`
	GoogleAuthPending bool       `db:"google_auth_pending"`
	CreatedAt         time.Time  `db:"created_at"`
}

// HasPhone reports whether the user can be addressed by phone number.
func (u *User) HasPhone() bool {
	return u.PhoneNumber != nil && *u.PhoneNumber != ""
}

// IsPending reports whether a Google account still needs a phone number.
func (u *User) IsPending() bool {
	return u.GoogleAuthPending
}

// HasProfile reports whether signup completion has filled the profile fields.
func (u *User) HasProfile() bool {
	return u.FirstName != nil && u.LastName != nil && u.Email != nil && u.DOB != nil
}
