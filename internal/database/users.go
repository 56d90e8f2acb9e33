package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/voltmap/chargepoint/internal/auth"
	"github.com/voltmap/chargepoint/internal/models"
)

// UserRepository handles user database operations. Email and google_id
// uniqueness is enforced by database constraints, not application-level
// check-then-insert: concurrent registrations for the same email resolve to
// exactly one success and one duplicate error.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// NormalizeEmail lowercases and trims an email so the uniqueness constraint
// is effectively case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new user. A unique violation on the email index maps to
// auth.ErrDuplicateEmail, on the google_id index to auth.ErrDuplicateGoogleID.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, google_id, name, picture_url, email_verified, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.Email = NormalizeEmail(user.Email)

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		nullString(user.PasswordHash),
		user.GoogleID,
		user.Name,
		user.PictureURL,
		user.EmailVerified,
		user.Role,
		now,
		now,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return auth.ErrDuplicateEmail
		}
		if isUniqueViolation(err, "users_google_id_key") {
			return auth.ErrDuplicateGoogleID
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `WHERE email = $1`, NormalizeEmail(email))
}

// GetByGoogleID retrieves a user by Google subject ID
func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.getOne(ctx, `WHERE google_id = $1`, googleID)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	user := &models.User{}
	var passwordHash sql.NullString

	query := `
		SELECT id, email, password_hash, google_id, name, picture_url, email_verified, role, created_at, updated_at
		FROM users
	` + where

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&passwordHash,
		&user.GoogleID,
		&user.Name,
		&user.PictureURL,
		&user.EmailVerified,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.PasswordHash = passwordHash.String
	return user, nil
}

// Update persists changes to an existing user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, google_id = $4, name = $5, picture_url = $6, email_verified = $7, role = $8, updated_at = $9
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		NormalizeEmail(user.Email),
		nullString(user.PasswordHash),
		user.GoogleID,
		user.Name,
		user.PictureURL,
		user.EmailVerified,
		user.Role,
		time.Now(),
	).Scan(&user.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return auth.ErrUserNotFound
	}
	if err != nil {
		if isUniqueViolation(err, "users_google_id_key") {
			return auth.ErrDuplicateGoogleID
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// SetRole updates a user's role. Used by the admin CLI.
func (r *UserRepository) SetRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`,
		id, role, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return auth.ErrUserNotFound
	}

	return nil
}

// List returns all users ordered by creation time. Used by the admin CLI.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT id, email, password_hash, google_id, name, picture_url, email_verified, role, created_at, updated_at
		FROM users
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		var passwordHash sql.NullString
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&passwordHash,
			&user.GoogleID,
			&user.Name,
			&user.PictureURL,
			&user.EmailVerified,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.PasswordHash = passwordHash.String
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally on a specific constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
