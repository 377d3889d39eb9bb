package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mindlog/mindlog/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
)

const (
	usernameConstraint = "users_username_unique"
	emailConstraint    = "users_email_unique"
)

// CreateUser inserts a new user into the database. An empty email is stored
// as NULL so it never collides.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		nullableString(user.Email),
		user.PasswordHash,
		user.CreatedAt,
	)

	if err != nil {
		switch {
		case isUniqueViolation(err, usernameConstraint):
			return ErrUsernameExists
		case isUniqueViolation(err, emailConstraint):
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return r.getUser(ctx, "id", id)
}

// GetUserByUsername retrieves a user by username. This is the login path.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getUser(ctx, "username", username)
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, "email", email)
}

// getUser looks a user up by one of the indexed columns above. column is
// never caller input.
func (r *Repository) getUser(ctx context.Context, column, value string) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE ` + column + ` = $1
	`

	var (
		user  model.User
		email *string
	)
	err := r.pool.QueryRow(ctx, query, value).Scan(
		&user.ID,
		&user.Username,
		&email,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	if email != nil {
		user.Email = *email
	}

	return &user, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
