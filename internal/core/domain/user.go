package domain

import (
	"errors"
	"time"
)

// AccountKind distinguishes auto-provisioned guest accounts from regular
// registrations. Guests are functionally identical to registered users.
type AccountKind string

const (
	KindRegistered AccountKind = "registered"
	KindGuest      AccountKind = "guest"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user with email or username already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidToken = errors.New("invalid or expired token")
var ErrMissingFields = errors.New("all fields are required")
var ErrPasswordPolicy = errors.New("password must be at least 8 characters long and contain at least one number and one special character")
var ErrPasswordMismatch = errors.New("new password and confirmation do not match")

// User models an account in the system.
//
// RefreshToken holds the single currently-valid refresh token. There is no
// session table: logging in elsewhere overwrites it and silently invalidates
// the previous session.
type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	FullName     string      `json:"full_name,omitempty"`
	PasswordHash string      `json:"-"`
	RefreshToken string      `json:"-"`
	Kind         AccountKind `json:"kind"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// IsGuest reports whether the account was auto-provisioned.
func (u *User) IsGuest() bool {
	return u.Kind == KindGuest
}
