package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/staybook/staybook-api/internal/metrics"
	"github.com/staybook/staybook-api/internal/repository"
	"github.com/staybook/staybook-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anaProfile = ProfileInput{
	FirstName: "Ana",
	LastName:  "Diaz",
	DOB:       "1990-01-01",
	Email:     "ana@x.com",
}

func TestRegisterPhoneIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.users.RegisterPhone(ctx, "5551234567")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "5551234567", *first.User.PhoneNumber)
	assert.Nil(t, first.User.Email)
	assert.Nil(t, first.User.FirstName)
	assert.Nil(t, first.User.LastName)
	assert.Nil(t, first.User.DOB)
	assert.False(t, first.User.GoogleAuthPending)

	second, err := f.users.RegisterPhone(ctx, "(555) 123-4567")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.User.ID, second.User.ID)

	assert.Equal(t, 1, f.countPhone(t, "5551234567"))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Registrations.WithLabelValues(metrics.MethodPhone)))
}

func TestRegisterPhoneConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 8
	results := make([]*RegisterResult, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = f.users.RegisterPhone(ctx, "5559876543")
		}()
	}
	wg.Wait()

	created := 0
	for i := range workers {
		require.NoError(t, errs[i])
		if results[i].Created {
			created++
		}
		assert.Equal(t, results[0].User.ID, results[i].User.ID)
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, f.countPhone(t, "5559876543"))
}

func TestRegisterPhoneRequiresPhone(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.RegisterPhone(context.Background(), "  ")

	var fe *validation.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "phone", fe.Field)
	assert.Zero(t, f.countUsers(t))
}

func TestCheckPhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	available, err := f.users.CheckPhone(ctx, "5551234567")
	require.NoError(t, err)
	assert.True(t, available)
	assert.Zero(t, f.countUsers(t), "check must not write")

	_, err = f.users.RegisterPhone(ctx, "5551234567")
	require.NoError(t, err)

	available, err = f.users.CheckPhone(ctx, "555-123-4567")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestCompleteSignupFillsProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.users.RegisterPhone(ctx, "5551234567")
	require.NoError(t, err)

	user, err := f.users.CompleteSignup(ctx, "5551234567", anaProfile)
	require.NoError(t, err)

	assert.Equal(t, reg.User.ID, user.ID)
	assert.Equal(t, "5551234567", *user.PhoneNumber)
	assert.Equal(t, "Ana", *user.FirstName)
	assert.Equal(t, "Diaz", *user.LastName)
	assert.Equal(t, "ana@x.com", *user.Email)
	require.NotNil(t, user.DOB)
	assert.Equal(t, "1990-01-01", user.DOB.Format("2006-01-02"))
	assert.True(t, user.HasProfile())
}

func TestCompleteSignupOverwritesProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.RegisterPhone(ctx, "5551234567")
	require.NoError(t, err)
	_, err = f.users.CompleteSignup(ctx, "5551234567", anaProfile)
	require.NoError(t, err)

	updated := anaProfile
	updated.LastName = "Diaz Lopez"
	user, err := f.users.CompleteSignup(ctx, "5551234567", updated)
	require.NoError(t, err)
	assert.Equal(t, "Diaz Lopez", *user.LastName)
}

func TestCompleteSignupRequiresRegistration(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.CompleteSignup(context.Background(), "5550000000", anaProfile)

	assert.ErrorIs(t, err, ErrPhoneNotRegistered)
	assert.Zero(t, f.countUsers(t))
}

func TestCompleteSignupValidatesBeforeLookup(t *testing.T) {
	f := newFixture(t)

	missing := anaProfile
	missing.FirstName = ""

	_, err := f.users.CompleteSignup(context.Background(), "5550000000", missing)

	var fe *validation.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "firstName", fe.Field)
	assert.NotErrorIs(t, err, ErrPhoneNotRegistered)
}

func TestCompleteSignupDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, "5551111111", anaProfile)
	require.NoError(t, err)
	_, err = f.users.RegisterPhone(ctx, "5552222222")
	require.NoError(t, err)

	_, err = f.users.CompleteSignup(ctx, "5552222222", anaProfile)
	assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)

	other, err := f.users.ByPhone(ctx, "5552222222")
	require.NoError(t, err)
	assert.Nil(t, other.Email)
}

func TestRegisterWithProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.Register(ctx, "5551234567", anaProfile)
	require.NoError(t, err)
	assert.True(t, user.HasProfile())
	assert.Equal(t, "5551234567", *user.PhoneNumber)

	_, err = f.users.Register(ctx, "5551234567", ProfileInput{FirstName: "Bo", LastName: "Li", DOB: "1985-05-05", Email: "bo@x.com"})
	assert.ErrorIs(t, err, ErrPhoneAlreadyRegistered)

	_, err = f.users.Register(ctx, "5559999999", anaProfile)
	assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)

	assert.Equal(t, 1, f.countUsers(t))
}

func TestLookups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.Register(ctx, "5551234567", anaProfile)
	require.NoError(t, err)

	byPhone, err := f.users.ByPhone(ctx, "555 123 4567")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byPhone.ID)

	byEmail, err := f.users.ByEmail(ctx, "ANA@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = f.users.ByGoogleID(ctx, "g-none")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = f.users.ByPhone(ctx, "5550000000")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestBackfillPhoneCompletesPendingUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending, err := f.auth.AuthenticateExternal(ctx, googleIdentity("g-1", "ana@gmail.com"))
	require.NoError(t, err)
	require.True(t, pending.GoogleAuthPending)

	user, err := f.users.BackfillPhone(ctx, pending.ID, "5551234567")
	require.NoError(t, err)
	assert.False(t, user.GoogleAuthPending)
	assert.Equal(t, "5551234567", *user.PhoneNumber)

	// Replacing the number keeps the user complete
	user, err = f.users.BackfillPhone(ctx, pending.ID, "5557654321")
	require.NoError(t, err)
	assert.False(t, user.GoogleAuthPending)
	assert.Equal(t, "5557654321", *user.PhoneNumber)

	// Re-submitting the user's own number is not a conflict
	_, err = f.users.BackfillPhone(ctx, pending.ID, "5557654321")
	require.NoError(t, err)
}

func TestBackfillPhoneRejectsOtherUsersNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner, err := f.users.RegisterPhone(ctx, "5551234567")
	require.NoError(t, err)
	pending, err := f.auth.AuthenticateExternal(ctx, googleIdentity("g-2", "bo@gmail.com"))
	require.NoError(t, err)

	_, err = f.users.BackfillPhone(ctx, pending.ID, "5551234567")
	assert.ErrorIs(t, err, ErrPhoneTaken)

	stillPending, err := f.users.ByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.True(t, stillPending.GoogleAuthPending)
	assert.Nil(t, stillPending.PhoneNumber)

	unchanged, err := f.users.ByID(ctx, owner.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "5551234567", *unchanged.PhoneNumber)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Conflicts.WithLabelValues("phone")))
}

func TestBackfillPhoneValidatesLength(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.BackfillPhone(context.Background(), "u-1", "12345")

	var fe *validation.FieldError
	assert.True(t, errors.As(err, &fe))
}

func TestBackfillPhoneUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.BackfillPhone(context.Background(), "missing", "5551234567")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
