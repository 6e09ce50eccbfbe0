// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account.
type User struct {
	ID           string     `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never serialize
	Active       bool       `json:"active" db:"active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// Identity is the authenticated caller extracted from a verified token.
type Identity struct {
	UserID    string
	Username  string
	ExpiresAt time.Time
}
