package handler

import (
	"net/http"

	"github.com/staybook/staybook-api/internal/respond"
	"github.com/staybook/staybook-api/internal/service"
	"github.com/staybook/staybook-api/internal/validation"
)

// phoneRequest accepts the phone under every name clients have sent it as.
// "phonenumber" lands in PhoneNumber through case-insensitive key matching.
type phoneRequest struct {
	Phone       string `json:"phone"`
	PhoneNumber string `json:"phoneNumber"`
	PhoneSnake  string `json:"phone_number"`
}

func (p phoneRequest) phone() string {
	return firstNonEmpty(p.Phone, p.PhoneNumber, p.PhoneSnake)
}

type profileRequest struct {
	phoneRequest
	FirstName      string `json:"firstName"`
	FirstNameSnake string `json:"first_name"`
	LastName       string `json:"lastName"`
	LastNameSnake  string `json:"last_name"`
	DOB            string `json:"dob"`
	Email          string `json:"email"`
}

func (p profileRequest) hasProfile() bool {
	return firstNonEmpty(p.FirstName, p.FirstNameSnake, p.LastName, p.LastNameSnake, p.DOB, p.Email) != ""
}

func (p profileRequest) form() profileForm {
	return profileForm{
		Phone:     p.phone(),
		FirstName: firstNonEmpty(p.FirstName, p.FirstNameSnake),
		LastName:  firstNonEmpty(p.LastName, p.LastNameSnake),
		DOB:       p.DOB,
		Email:     p.Email,
	}
}

type phoneForm struct {
	Phone string `json:"phone" validate:"required"`
}

type profileForm struct {
	Phone     string `json:"phone" validate:"required"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	DOB       string `json:"dob" validate:"required"`
	Email     string `json:"email" validate:"required,max=254"`
}

func (f profileForm) input() service.ProfileInput {
	return service.ProfileInput{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		DOB:       f.DOB,
		Email:     f.Email,
	}
}

type registrationHandler struct {
	userService *service.UserService
}

func NewRegistrationHandler(userService *service.UserService) *registrationHandler {
	return &registrationHandler{userService: userService}
}

// Register creates a phone-only user, or a complete user when the body
// carries profile fields. A number that is already registered is a 409 and
// the stored user is left untouched.
func (h *registrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.hasProfile() {
		h.registerWithProfile(w, r, req.form())
		return
	}

	form := phoneForm{Phone: req.phone()}
	err = validation.Struct(form)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.userService.RegisterPhone(r.Context(), form.Phone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !result.Created {
		writeError(w, r, service.ErrPhoneAlreadyRegistered)
		return
	}

	created := true
	respond.JSON(w, http.StatusCreated, userEnvelope{
		Message: "Phone number saved",
		User:    newUserResponse(result.User),
		Created: &created,
	})
}

func (h *registrationHandler) registerWithProfile(w http.ResponseWriter, r *http.Request, form profileForm) {
	err := validation.Struct(form)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.userService.Register(r.Context(), form.Phone, form.input())
	if err != nil {
		writeError(w, r, err)
		return
	}

	created := true
	respond.JSON(w, http.StatusCreated, userEnvelope{
		Message: "User registered",
		User:    newUserResponse(user),
		Created: &created,
	})
}

// CheckPhone answers whether a number is still available without writing.
func (h *registrationHandler) CheckPhone(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	form := phoneForm{Phone: req.phone()}
	err = validation.Struct(form)
	if err != nil {
		writeError(w, r, err)
		return
	}

	available, err := h.userService.CheckPhone(r.Context(), form.Phone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !available {
		writeError(w, r, service.ErrPhoneAlreadyRegistered)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{
		"status":  "new",
		"message": "Phone number available",
	})
}

// Signup completes the profile of a previously registered phone number.
func (h *registrationHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	form := req.form()
	err = validation.Struct(form)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.userService.CompleteSignup(r.Context(), form.Phone, form.input())
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, userEnvelope{
		Message: "Signup successful",
		User:    newUserResponse(user),
	})
}
