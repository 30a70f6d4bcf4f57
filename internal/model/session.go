package model

import "time"

// Session is a verified login session carried in the session cookie.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}
