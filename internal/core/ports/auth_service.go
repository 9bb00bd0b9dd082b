package ports

import (
	"context"
	"time"

	"github.com/gatherhub/event-management-api/internal/core/domain"
)

// GuestCredentials carries the plaintext identity generated for a guest
// account. It is returned exactly once, at registration time.
type GuestCredentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput carries the data needed to create an account. When Guest is
// true the identity fields are ignored and random credentials are generated.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Guest    bool
}

// RegisterResult is returned after a successful registration. Credentials is
// nil for non-guest accounts.
type RegisterResult struct {
	User        *domain.User
	Credentials *GuestCredentials
}

// TokenPair bundles a freshly issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	User   *domain.User
	Tokens TokenPair
}

// ChangePasswordInput carries the fields for a password change.
type ChangePasswordInput struct {
	UserID             string
	OldPassword        string
	NewPassword        string
	ConfirmNewPassword string
}

// AuthService defines account lifecycle and session operations.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Logout clears the stored refresh token and denylists the access token
	// identified by jti until expiresAt. Idempotent.
	Logout(ctx context.Context, userID, jti string, expiresAt time.Time) error
	// Refresh rotates the token pair. A token that does not match the one
	// currently stored on the user fails with domain.ErrInvalidToken.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	ChangePassword(ctx context.Context, input ChangePasswordInput) error
	UpdateProfile(ctx context.Context, userID, fullName, email string) (*domain.User, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}
