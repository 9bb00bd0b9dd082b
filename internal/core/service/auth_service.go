package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatherhub/event-management-api/internal/core/domain"
	"github.com/gatherhub/event-management-api/internal/core/ports"
)

// AuthService implements account registration, login, and the refresh-token
// session lifecycle.
type AuthService struct {
	repo     ports.UserRepository
	tokens   ports.TokenService
	denylist ports.TokenDenylist
	logger   zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenService, denylist ports.TokenDenylist, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, denylist: denylist, logger: logger}
}

var _ ports.AuthService = (*AuthService)(nil)

// Register creates a new account. Guest registrations ignore the supplied
// identity fields and generate random credentials; a uniqueness collision on
// a guest identity is retried once with a fresh identity instead of failing.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.RegisterResult, error) {
	if input.Guest {
		return s.registerGuest(ctx, input.FullName)
	}

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return nil, domain.ErrMissingFields
	}
	if !validPassword(input.Password) {
		return nil, domain.ErrPasswordPolicy
	}

	user, err := s.createUser(ctx, username, email, input.Password, input.FullName, domain.KindRegistered)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return &ports.RegisterResult{User: sanitize(user)}, nil
}

func (s *AuthService) registerGuest(ctx context.Context, fullName string) (*ports.RegisterResult, error) {
	creds := GenerateGuestCredentials()
	user, err := s.createUser(ctx, creds.Username, creds.Email, creds.Password, fullName, domain.KindGuest)
	if errors.Is(err, domain.ErrUserExists) {
		// 8 hex chars collide rarely; one regeneration is enough.
		creds = GenerateGuestCredentials()
		user, err = s.createUser(ctx, creds.Username, creds.Email, creds.Password, fullName, domain.KindGuest)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("guest account provisioned")
	return &ports.RegisterResult{User: sanitize(user), Credentials: &creds}, nil
}

func (s *AuthService) createUser(ctx context.Context, username, email, password, fullName string, kind domain.AccountKind) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		Kind:         kind,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Login verifies credentials and issues a fresh token pair. The refresh
// token replaces any previously stored one, so a login elsewhere ends the
// prior session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" {
		return nil, domain.ErrMissingFields
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{User: sanitize(user), Tokens: pair}, nil
}

// Logout clears the stored refresh token and denylists the presented access
// token until it would have expired. Safe to call repeatedly.
func (s *AuthService) Logout(ctx context.Context, userID, jti string, expiresAt time.Time) error {
	if err := s.repo.UpdateRefreshToken(ctx, userID, ""); err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if jti != "" && s.denylist != nil {
		if err := s.denylist.Deny(ctx, jti, expiresAt); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to denylist access token")
		}
	}
	s.logger.Info().Str("user_id", userID).Msg("user logged out")
	return nil
}

// Refresh rotates the token pair. A refresh token that no longer matches the
// one stored on the user record is treated as reuse of a rotated-out token
// and rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	if refreshToken == "" {
		return nil, domain.ErrInvalidToken
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		s.logger.Warn().Str("user_id", user.ID).Msg("rotated-out refresh token presented")
		return nil, domain.ErrInvalidToken
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// ChangePassword re-hashes and persists the new password after verifying
// the old one.
func (s *AuthService) ChangePassword(ctx context.Context, input ports.ChangePasswordInput) error {
	if input.NewPassword != input.ConfirmNewPassword {
		return domain.ErrPasswordMismatch
	}
	if !validPassword(input.NewPassword) {
		return domain.ErrPasswordPolicy
	}

	user, err := s.repo.FindByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, input.UserID, string(hash))
}

// UpdateProfile sets the mutable profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, fullName, email string) (*domain.User, error) {
	if strings.TrimSpace(fullName) == "" || strings.TrimSpace(email) == "" {
		return nil, domain.ErrMissingFields
	}
	user, err := s.repo.UpdateProfile(ctx, userID, fullName, email)
	if err != nil {
		return nil, err
	}
	return sanitize(user), nil
}

// CurrentUser returns the sanitized record for the authenticated user.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sanitize(user), nil
}

func (s *AuthService) issuePair(ctx context.Context, user *domain.User) (ports.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(user.ID, user.Username, string(user.Kind))
	if err != nil {
		return ports.TokenPair{}, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return ports.TokenPair{}, err
	}
	if err := s.repo.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return ports.TokenPair{}, err
	}
	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// sanitize returns a copy with credential material stripped, so callers can
// hand the record straight to serialization.
func sanitize(u *domain.User) *domain.User {
	clone := *u
	clone.PasswordHash = ""
	clone.RefreshToken = ""
	return &clone
}

// validPassword enforces the account password policy: at least 8 characters
// drawn from letters, digits, and !@#$%^&*, with at least one digit and one
// special character.
func validPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return hasDigit && hasSpecial
}
