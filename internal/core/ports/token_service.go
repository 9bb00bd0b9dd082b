package ports

import (
	"context"
	"time"
)

// AccessClaims are the decoded claims of a verified access token.
type AccessClaims struct {
	UserID    string
	Username  string
	Kind      string
	JTI       string
	ExpiresAt time.Time
}

// RefreshClaims are the decoded claims of a verified refresh token.
type RefreshClaims struct {
	UserID string
	JTI    string
}

// TokenService issues and verifies signed, time-limited tokens. Access and
// refresh tokens are signed with separate keys so one class can never be
// replayed as the other.
type TokenService interface {
	IssueAccessToken(userID, username, kind string) (string, error)
	IssueRefreshToken(userID string) (string, error)
	VerifyAccessToken(token string) (*AccessClaims, error)
	VerifyRefreshToken(token string) (*RefreshClaims, error)
}

// TokenDenylist revokes access tokens ahead of their natural expiry
// (logout). Entries expire together with the token.
type TokenDenylist interface {
	Deny(ctx context.Context, jti string, until time.Time) error
	IsDenied(ctx context.Context, jti string) (bool, error)
}
