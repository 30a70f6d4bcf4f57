package model

import "time"

// Profile holds the fields filled in by signup completion or full registration.
type Profile struct {
	FirstName string
	LastName  string
	DOB       time.Time
	Email     string
}
