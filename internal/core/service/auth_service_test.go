package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatherhub/event-management-api/internal/core/domain"
	"github.com/gatherhub/event-management-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[string]*domain.User // by ID
	nextID    int
	failFirst bool // force one ErrUserExists on Create
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.failFirst {
		r.failFirst = false
		return nil, domain.ErrUserExists
	}
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("user_%d", r.nextID)
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	var out []*domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *stubUserRepo) UpdateRefreshToken(_ context.Context, userID, token string) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshToken = token
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, userID, fullName, email string) (*domain.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.FullName = fullName
	u.Email = email
	return cloneUser(u), nil
}

type stubDenylist struct {
	denied map[string]time.Time
}

func newStubDenylist() *stubDenylist {
	return &stubDenylist{denied: make(map[string]time.Time)}
}

func (d *stubDenylist) Deny(_ context.Context, jti string, until time.Time) error {
	d.denied[jti] = until
	return nil
}

func (d *stubDenylist) IsDenied(_ context.Context, jti string) (bool, error) {
	_, ok := d.denied[jti]
	return ok, nil
}

func newAuthSvc(repo *stubUserRepo, denylist ports.TokenDenylist) *AuthService {
	tokens := NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	return NewAuthService(repo, tokens, denylist, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubDenylist())

	result, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Abc12345!",
		FullName: "Alice Doe",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if result.User.Kind != domain.KindRegistered {
		t.Fatalf("unexpected kind: %s", result.User.Kind)
	}
	if result.Credentials != nil {
		t.Fatalf("non-guest registration must not return credentials")
	}
	if result.User.PasswordHash != "" || result.User.RefreshToken != "" {
		t.Fatalf("returned user must be sanitized: %+v", result.User)
	}

	stored := repo.users[result.User.ID]
	if stored.PasswordHash == "Abc12345!" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Abc12345!")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo(), newStubDenylist())

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob"}); !errors.Is(err, domain.ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "bob", Email: "b@example.com", Password: "weakpass",
	}); !errors.Is(err, domain.ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubDenylist())

	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "bob", Email: "b@example.com", Password: "Abc12345!",
	}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "bob", Email: "other@example.com", Password: "Abc12345!",
	}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_Guest(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubDenylist())

	result, err := svc.Register(context.Background(), ports.RegisterInput{Guest: true})
	if err != nil {
		t.Fatalf("guest register failed: %v", err)
	}
	if result.User.Kind != domain.KindGuest {
		t.Fatalf("expected guest kind, got %s", result.User.Kind)
	}
	if result.Credentials == nil {
		t.Fatalf("guest registration must return plaintext credentials")
	}
	if result.Credentials.Username != result.User.Username {
		t.Fatalf("credentials/user mismatch: %s vs %s", result.Credentials.Username, result.User.Username)
	}

	// Guest must be able to log in with the returned credentials.
	if _, err := svc.Login(context.Background(), result.Credentials.Email, result.Credentials.Password); err != nil {
		t.Fatalf("guest login with returned credentials failed: %v", err)
	}
}

func TestAuthService_Register_GuestCollisionRegenerates(t *testing.T) {
	repo := newStubUserRepo()
	repo.failFirst = true // first identity collides
	svc := newAuthSvc(repo, newStubDenylist())

	result, err := svc.Register(context.Background(), ports.RegisterInput{Guest: true})
	if err != nil {
		t.Fatalf("expected collision to regenerate, got error: %v", err)
	}
	if result.User == nil || result.Credentials == nil {
		t.Fatalf("expected a user from the regenerated identity")
	}
}

// ---------------------------------------------------------------------------
// Login / Logout / Refresh
// ---------------------------------------------------------------------------

func registerUser(t *testing.T, svc *AuthService, email, password string) *domain.User {
	t.Helper()
	result, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "u_" + email, Email: email, Password: password,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return result.User
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubDenylist())
	user := registerUser(t, svc, "carol@example.com", "Abc12345!")

	result, err := svc.Login(context.Background(), "carol@example.com", "Abc12345!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatalf("expected a token pair")
	}
	if result.User.PasswordHash != "" || result.User.RefreshToken != "" {
		t.Fatalf("returned user must be sanitized")
	}
	if repo.users[user.ID].RefreshToken != result.Tokens.RefreshToken {
		t.Fatalf("refresh token not persisted")
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubDenylist())
	registerUser(t, svc, "dave@example.com", "Abc12345!")

	if _, err := svc.Login(context.Background(), "", "whatever"); !errors.Is(err, domain.ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ghost@example.com", "Abc12345!"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "dave@example.com", "WrongPass1!"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_ReplacesRefreshToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubDenylist())
	registerUser(t, svc, "erin@example.com", "Abc12345!")

	first, err := svc.Login(context.Background(), "erin@example.com", "Abc12345!")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.Login(context.Background(), "erin@example.com", "Abc12345!")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if first.Tokens.RefreshToken == second.Tokens.RefreshToken {
		t.Fatalf("expected a fresh refresh token per login")
	}

	// The token from the first session is no longer accepted.
	if _, err := svc.Refresh(context.Background(), first.Tokens.RefreshToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected rotated-out token to be rejected, got %v", err)
	}
}

func TestAuthService_Refresh_RotatesAndDetectsReuse(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubDenylist())
	registerUser(t, svc, "frank@example.com", "Abc12345!")

	login, err := svc.Login(context.Background(), "frank@example.com", "Abc12345!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	t1 := login.Tokens.RefreshToken

	pair, err := svc.Refresh(context.Background(), t1)
	if err != nil {
		t.Fatalf("refresh with current token failed: %v", err)
	}
	t2 := pair.RefreshToken
	if t1 == t2 {
		t.Fatalf("expected rotation to issue a new refresh token")
	}

	// Reuse of T1 after T2 exists must fail.
	if _, err := svc.Refresh(context.Background(), t1); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected reuse of rotated-out token to fail, got %v", err)
	}

	// T2 is still good.
	if _, err := svc.Refresh(context.Background(), t2); err != nil {
		t.Fatalf("refresh with current token failed: %v", err)
	}
}

func TestAuthService_Refresh_InvalidTokens(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo(), newStubDenylist())

	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), "garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage token, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	repo := newStubUserRepo()
	denylist := newStubDenylist()
	svc := newAuthSvc(repo, denylist)
	user := registerUser(t, svc, "gina@example.com", "Abc12345!")

	login, err := svc.Login(context.Background(), "gina@example.com", "Abc12345!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	until := time.Now().Add(time.Hour)
	if err := svc.Logout(context.Background(), user.ID, "jti-1", until); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if repo.users[user.ID].RefreshToken != "" {
		t.Fatalf("expected refresh token cleared")
	}
	if denied, _ := denylist.IsDenied(context.Background(), "jti-1"); !denied {
		t.Fatalf("expected access token denylisted")
	}

	// The old refresh token no longer works.
	if _, err := svc.Refresh(context.Background(), login.Tokens.RefreshToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected refresh after logout to fail, got %v", err)
	}

	// Logout again is a no-op.
	if err := svc.Logout(context.Background(), user.ID, "", time.Time{}); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Password / profile
// ---------------------------------------------------------------------------

func TestAuthService_ChangePassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubDenylist())
	user := registerUser(t, svc, "hank@example.com", "Abc12345!")

	input := ports.ChangePasswordInput{
		UserID:             user.ID,
		OldPassword:        "Abc12345!",
		NewPassword:        "Xyz98765#",
		ConfirmNewPassword: "Xyz98765#",
	}
	if err := svc.ChangePassword(context.Background(), input); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login(context.Background(), "hank@example.com", "Xyz98765#"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "hank@example.com", "Abc12345!"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password should no longer work, got %v", err)
	}
}

func TestAuthService_ChangePassword_Failures(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubDenylist())
	user := registerUser(t, svc, "iris@example.com", "Abc12345!")

	base := ports.ChangePasswordInput{UserID: user.ID, OldPassword: "Abc12345!"}

	mismatch := base
	mismatch.NewPassword, mismatch.ConfirmNewPassword = "Xyz98765#", "Other123!"
	if err := svc.ChangePassword(context.Background(), mismatch); !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}

	weak := base
	weak.NewPassword, weak.ConfirmNewPassword = "weakpass", "weakpass"
	if err := svc.ChangePassword(context.Background(), weak); !errors.Is(err, domain.ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy, got %v", err)
	}

	wrongOld := base
	wrongOld.OldPassword = "Nope1234!"
	wrongOld.NewPassword, wrongOld.ConfirmNewPassword = "Xyz98765#", "Xyz98765#"
	if err := svc.ChangePassword(context.Background(), wrongOld); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubDenylist())
	user := registerUser(t, svc, "judy@example.com", "Abc12345!")

	updated, err := svc.UpdateProfile(context.Background(), user.ID, "Judy Smith", "judy.smith@example.com")
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FullName != "Judy Smith" || updated.Email != "judy.smith@example.com" {
		t.Fatalf("unexpected profile: %+v", updated)
	}

	if _, err := svc.UpdateProfile(context.Background(), user.ID, "", "judy@example.com"); !errors.Is(err, domain.ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubDenylist())
	user := registerUser(t, svc, "kate@example.com", "Abc12345!")

	got, err := svc.CurrentUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if got.Email != "kate@example.com" || got.PasswordHash != "" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := svc.CurrentUser(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
