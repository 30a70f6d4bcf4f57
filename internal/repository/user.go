package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/staybook/staybook-api/internal/model"
)

const userColumns = `id, phone_number, email, first_name, last_name, dob, google_id, profile_picture, google_auth_pending, created_at`

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByPhone(ctx context.Context, phone string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, profile model.Profile) error
	UpdatePhone(ctx context.Context, id, phone string) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a user in a single statement. Unique violations come back as
// ErrDuplicatePhone, ErrDuplicateEmail or ErrDuplicateGoogleID.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.PhoneNumber,
		user.Email,
		user.FirstName,
		user.LastName,
		user.DOB,
		user.GoogleID,
		user.ProfilePicture,
		user.GoogleAuthPending,
		user.CreatedAt,
	)
	return mapUniqueViolation(err)
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	return r.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) ByPhone(ctx context.Context, phone string) (*model.User, error) {
	return r.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE phone_number = $1`, phone)
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) ByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = $1`, googleID)
}

func (r *userRepository) getBy(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}

	err := r.db.GetContext(ctx, user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateProfile overwrites the profile fields. Phone number and id are never touched.
func (r *userRepository) UpdateProfile(ctx context.Context, id string, profile model.Profile) error {
	query := `UPDATE users SET first_name = $1, last_name = $2, dob = $3, email = $4 WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, profile.FirstName, profile.LastName, profile.DOB, profile.Email, id)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return requireRow(result)
}

// UpdatePhone sets the phone number and clears the pending Google flag.
func (r *userRepository) UpdatePhone(ctx context.Context, id, phone string) error {
	query := `UPDATE users SET phone_number = $1, google_auth_pending = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, phone, false, id)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
