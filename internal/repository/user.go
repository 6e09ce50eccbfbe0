package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/sealdrop/sealdrop/internal/model"
)

const userColumns = `id, username, email, password_hash, active, created_at, last_login_at`

// CreateUser inserts a new user. Uniqueness of username and email is
// enforced by table constraints, so concurrent duplicates lose cleanly.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO users (id, username, email, password_hash, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Active,
		user.CreatedAt,
	)
	if err != nil {
		switch uniqueViolation(err) {
		case "":
		case "users_email_unique":
			return ErrEmailExists
		default:
			return ErrUsernameExists
		}
		return fmt.Errorf("failed to create user: %w", classify(err))
	}

	return nil
}

// FindUserByUsername retrieves a user by exact username.
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user model.User
	err := pgxscan.Get(ctx, r.pool, &user,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", classify(err))
	}

	return &user, nil
}

// TouchLastLogin records a successful login time.
func (r *Repository) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, userID, at)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
