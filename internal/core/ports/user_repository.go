package ports

import (
	"context"

	"github.com/gatherhub/event-management-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create inserts a new user. A username or email collision returns
	// domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByIDs resolves a set of user IDs to their public identity fields.
	// Unknown IDs are silently skipped.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	// UpdateRefreshToken stores the single active refresh token for the user.
	// An empty token clears it (logout).
	UpdateRefreshToken(ctx context.Context, userID, token string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	// UpdateProfile sets the mutable profile fields and returns the updated user.
	UpdateProfile(ctx context.Context, userID, fullName, email string) (*domain.User, error)
}
