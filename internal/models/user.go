package models

import (
	"time"

	"github.com/google/uuid"
)

// Role controls access to administrative operations
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a user account. An account always has at least one
// credential: a password hash, a Google subject ID, or both after linking.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	GoogleID      *string   `json:"-"`
	Name          string    `json:"name"`
	PictureURL    *string   `json:"picture_url,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	Role          Role      `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasPassword reports whether password login is possible for this account.
// Google-only accounts have no password hash.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// IsGoogleLinked reports whether a Google identity is attached.
func (u *User) IsGoogleLinked() bool {
	return u.GoogleID != nil && *u.GoogleID != ""
}
