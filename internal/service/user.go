package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/staybook/staybook-api/internal/metrics"
	"github.com/staybook/staybook-api/internal/model"
	"github.com/staybook/staybook-api/internal/repository"
	"github.com/staybook/staybook-api/internal/validation"
)

var (
	ErrPhoneNotRegistered     = errors.New("phone number not registered")
	ErrPhoneAlreadyRegistered = errors.New("phone number already registered")
	ErrPhoneTaken             = errors.New("phone number belongs to another account")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
)

// ProfileInput is the raw profile submitted by signup or full registration.
type ProfileInput struct {
	FirstName string
	LastName  string
	DOB       string
	Email     string
}

// RegisterResult tells whether phone registration created a new user or
// found an existing one.
type RegisterResult struct {
	User    *model.User
	Created bool
}

type UserService struct {
	userRepository repository.UserRepository
	metrics        *metrics.Metrics
	now            func() time.Time
}

func NewUserService(userRepository repository.UserRepository, m *metrics.Metrics) *UserService {
	return &UserService{
		userRepository: userRepository,
		metrics:        m,
		now:            time.Now,
	}
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	return s.userRepository.ByID(ctx, id)
}

// ByPhone returns repository.ErrUserNotFound when no user owns the number.
func (s *UserService) ByPhone(ctx context.Context, phone string) (*model.User, error) {
	return s.userRepository.ByPhone(ctx, validation.NormalizePhone(phone))
}

func (s *UserService) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userRepository.ByEmail(ctx, validation.NormalizeEmail(email))
}

func (s *UserService) ByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return s.userRepository.ByGoogleID(ctx, googleID)
}

// CheckPhone reports whether the phone number is still free. It never writes.
func (s *UserService) CheckPhone(ctx context.Context, phone string) (bool, error) {
	phone = validation.NormalizePhone(phone)
	err := validation.ValidatePhone(phone)
	if err != nil {
		return false, err
	}

	_, err = s.userRepository.ByPhone(ctx, phone)
	if errors.Is(err, repository.ErrUserNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to lookup phone: %w", err)
	}
	return false, nil
}

// RegisterPhone creates a phone-only user. Registering a number twice returns
// the existing user with Created=false and never modifies it. The unique
// constraint on phone_number settles concurrent registrations: the loser of
// the insert race reads back the winner's row.
func (s *UserService) RegisterPhone(ctx context.Context, phone string) (*RegisterResult, error) {
	phone = validation.NormalizePhone(phone)
	err := validation.ValidatePhone(phone)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepository.ByPhone(ctx, phone)
	if err == nil {
		return &RegisterResult{User: existing}, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to lookup phone: %w", err)
	}

	user := &model.User{
		ID:          uuid.New().String(),
		PhoneNumber: &phone,
		CreatedAt:   s.now().UTC(),
	}

	err = s.userRepository.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicatePhone) {
		existing, err = s.userRepository.ByPhone(ctx, phone)
		if err != nil {
			return nil, fmt.Errorf("failed to load existing user: %w", err)
		}
		return &RegisterResult{User: existing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.Registered(metrics.MethodPhone)
	slog.Info("user registered by phone", "user_id", user.ID)
	return &RegisterResult{User: user, Created: true}, nil
}

// Register creates a user with phone and profile in one step.
func (s *UserService) Register(ctx context.Context, phone string, input ProfileInput) (*model.User, error) {
	phone = validation.NormalizePhone(phone)
	err := validation.ValidatePhone(phone)
	if err != nil {
		return nil, err
	}

	profile, err := s.parseProfile(input)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:          uuid.New().String(),
		PhoneNumber: &phone,
		Email:       &profile.Email,
		FirstName:   &profile.FirstName,
		LastName:    &profile.LastName,
		DOB:         &profile.DOB,
		CreatedAt:   s.now().UTC(),
	}

	err = s.userRepository.Create(ctx, user)
	if err != nil {
		return nil, s.conflict(err, "failed to create user")
	}

	s.metrics.Registered(metrics.MethodFull)
	slog.Info("user registered with profile", "user_id", user.ID)
	return user, nil
}

// CompleteSignup fills the profile of the user registered under phone.
// The phone number and id stay as they are.
func (s *UserService) CompleteSignup(ctx context.Context, phone string, input ProfileInput) (*model.User, error) {
	phone = validation.NormalizePhone(phone)
	err := validation.ValidatePhone(phone)
	if err != nil {
		return nil, err
	}

	profile, err := s.parseProfile(input)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepository.ByPhone(ctx, phone)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrPhoneNotRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lookup phone: %w", err)
	}

	err = s.userRepository.UpdateProfile(ctx, user.ID, *profile)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrPhoneNotRegistered
	}
	if err != nil {
		return nil, s.conflict(err, "failed to update profile")
	}

	updated, err := s.userRepository.ByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	slog.Info("signup completed", "user_id", user.ID)
	return updated, nil
}

// BackfillPhone attaches a phone number to the user's own record and clears
// the pending Google flag. Callers must pass the authenticated user's id.
// A number owned by another user is rejected with ErrPhoneTaken; replacing
// the user's own number is allowed.
func (s *UserService) BackfillPhone(ctx context.Context, userID, phone string) (*model.User, error) {
	phone = validation.NormalizePhone(phone)
	err := validation.ValidatePhone(phone)
	if err != nil {
		return nil, err
	}

	owner, err := s.userRepository.ByPhone(ctx, phone)
	switch {
	case err == nil && owner.ID != userID:
		s.metrics.Conflict("phone")
		return nil, ErrPhoneTaken
	case err != nil && !errors.Is(err, repository.ErrUserNotFound):
		return nil, fmt.Errorf("failed to lookup phone: %w", err)
	}

	err = s.userRepository.UpdatePhone(ctx, userID, phone)
	if errors.Is(err, repository.ErrDuplicatePhone) {
		s.metrics.Conflict("phone")
		return nil, ErrPhoneTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update phone: %w", err)
	}

	user, err := s.userRepository.ByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	s.metrics.Backfilled()
	slog.Info("phone backfilled", "user_id", userID)
	return user, nil
}

func (s *UserService) parseProfile(input ProfileInput) (*model.Profile, error) {
	firstName := validation.NormalizeName(input.FirstName)
	err := validation.ValidateName("firstName", firstName)
	if err != nil {
		return nil, err
	}

	lastName := validation.NormalizeName(input.LastName)
	err = validation.ValidateName("lastName", lastName)
	if err != nil {
		return nil, err
	}

	dob, err := validation.ParseDOB(input.DOB, s.now())
	if err != nil {
		return nil, err
	}

	email := validation.NormalizeEmail(input.Email)
	err = validation.ValidateEmail(email)
	if err != nil {
		return nil, err
	}

	return &model.Profile{
		FirstName: firstName,
		LastName:  lastName,
		DOB:       dob,
		Email:     email,
	}, nil
}

// conflict translates repository uniqueness errors into service errors.
func (s *UserService) conflict(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicatePhone):
		s.metrics.Conflict("phone")
		return ErrPhoneAlreadyRegistered
	case errors.Is(err, repository.ErrDuplicateEmail):
		s.metrics.Conflict("email")
		return ErrEmailAlreadyRegistered
	}
	return fmt.Errorf("%s: %w", msg, err)
}
