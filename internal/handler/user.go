package handler

import (
	"time"

	"github.com/staybook/staybook-api/internal/model"
)

// UserResponse is the public JSON shape of a user.
type UserResponse struct {
	ID                string    `json:"id"`
	PhoneNumber       *string   `json:"phoneNumber"`
	Email             *string   `json:"email"`
	FirstName         *string   `json:"firstName"`
	LastName          *string   `json:"lastName"`
	DOB               *string   `json:"dob"`
	ProfilePicture    *string   `json:"profilePicture"`
	GoogleAuthPending bool      `json:"googleAuthPending"`
	ProfileComplete   bool      `json:"profileComplete"`
	CreatedAt         time.Time `json:"createdAt"`
}

func newUserResponse(user *model.User) *UserResponse {
	if user == nil {
		return nil
	}

	resp := &UserResponse{
		ID:                user.ID,
		PhoneNumber:       user.PhoneNumber,
		Email:             user.Email,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		ProfilePicture:    user.ProfilePicture,
		GoogleAuthPending: user.GoogleAuthPending,
		ProfileComplete:   user.HasProfile(),
		CreatedAt:         user.CreatedAt,
	}
	if user.DOB != nil {
		dob := user.DOB.Format(time.DateOnly)
		resp.DOB = &dob
	}
	return resp
}

type userEnvelope struct {
	Message string        `json:"message,omitempty"`
	User    *UserResponse `json:"user"`
	Created *bool         `json:"created,omitempty"`
}
