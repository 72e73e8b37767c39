package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/studhue/apiserver/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, email, full_name, username, age, COALESCE(birthdate, ''), address, phone_number, password, category, profile_picture, account_date_creation`

func (r *UserRepository) scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.Username,
		&user.Age,
		&user.Birthdate,
		&user.Address,
		&user.PhoneNumber,
		&user.PasswordHash,
		&user.Category,
		&user.ProfilePicture,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE user_id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

// GetByUsernameOrEmail backs the signup duplicate check. No distinction is
// made between which of the two fields collided.
func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1 OR email = $2`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username, email))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	const query = `
		INSERT INTO users (user_id, email, full_name, username, age, birthdate, address, phone_number, password, category, profile_picture, account_date_creation)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.FullName,
		user.Username,
		user.Age,
		user.Birthdate,
		user.Address,
		user.PhoneNumber,
		user.PasswordHash,
		user.Category,
		user.ProfilePicture,
		user.CreatedAt,
	)
	if err != nil {
		return types.User{}, conflictOr(err)
	}
	return user, nil
}

// SetProfilePicture records the object-storage key of the user's avatar.
func (r *UserRepository) SetProfilePicture(ctx context.Context, userID, objectKey string) error {
	const query = `UPDATE users SET profile_picture = $1 WHERE user_id = $2`
	result, err := r.db.ExecContext(ctx, query, objectKey, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
