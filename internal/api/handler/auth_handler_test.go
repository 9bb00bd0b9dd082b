package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gatherhub/event-management-api/internal/core/domain"
	"github.com/gatherhub/event-management-api/internal/core/ports"
)

// stubAuthService returns canned results and records what it was called with.
type stubAuthService struct {
	registerResult *ports.RegisterResult
	registerErr    error
	loginResult    *ports.LoginResult
	loginErr       error
	refreshPair    *ports.TokenPair
	refreshErr     error
	user           *domain.User
	userErr        error
	changeErr      error

	loggedOutUserID string
	loggedOutJTI    string
	refreshedWith   string
	changeInput     ports.ChangePasswordInput
	loginCalled     bool
}

func (s *stubAuthService) Register(_ context.Context, _ ports.RegisterInput) (*ports.RegisterResult, error) {
	return s.registerResult, s.registerErr
}

func (s *stubAuthService) Login(_ context.Context, _, _ string) (*ports.LoginResult, error) {
	s.loginCalled = true
	return s.loginResult, s.loginErr
}

func (s *stubAuthService) Logout(_ context.Context, userID, jti string, _ time.Time) error {
	s.loggedOutUserID = userID
	s.loggedOutJTI = jti
	return nil
}

func (s *stubAuthService) Refresh(_ context.Context, refreshToken string) (*ports.TokenPair, error) {
	s.refreshedWith = refreshToken
	return s.refreshPair, s.refreshErr
}

func (s *stubAuthService) ChangePassword(_ context.Context, input ports.ChangePasswordInput) error {
	s.changeInput = input
	return s.changeErr
}

func (s *stubAuthService) UpdateProfile(_ context.Context, userID, fullName, email string) (*domain.User, error) {
	if s.userErr != nil {
		return nil, s.userErr
	}
	return &domain.User{ID: userID, FullName: fullName, Email: email}, nil
}

func (s *stubAuthService) CurrentUser(_ context.Context, _ string) (*domain.User, error) {
	return s.user, s.userErr
}

var _ ports.AuthService = (*stubAuthService)(nil)

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func authenticate(c echo.Context, userID string) {
	c.Set("user_id", userID)
	c.Set("jti", "jti-test")
	c.Set("token_expires", time.Now().Add(time.Hour))
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	svc := &stubAuthService{
		registerResult: &ports.RegisterResult{
			User: &domain.User{ID: "u1", Username: "alice", Email: "alice@example.com", Kind: domain.KindRegistered},
		},
	}
	h := NewAuthHandler(svc, CookieOptions{})

	c, rec := newTestContext(http.MethodPost, "/api/v1/users/register",
		`{"username":"alice","email":"alice@example.com","password":"Abc12345!"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp registerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !resp.Success || resp.User == nil || resp.User.Username != "alice" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Credentials != nil {
		t.Fatalf("non-guest response must not carry credentials")
	}
	if strings.Contains(rec.Body.String(), "credentials") {
		t.Fatalf("credentials key must be omitted when nil: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_Guest(t *testing.T) {
	svc := &stubAuthService{
		registerResult: &ports.RegisterResult{
			User:        &domain.User{ID: "u2", Username: "guest_a1b2c3d4", Kind: domain.KindGuest},
			Credentials: &ports.GuestCredentials{Username: "guest_a1b2c3d4", Email: "guest_a1b2c3d4@guest.local", Password: "!1abcdef"},
		},
	}
	h := NewAuthHandler(svc, CookieOptions{})

	c, rec := newTestContext(http.MethodPost, "/api/v1/users/register", `{"isGuest":true}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	var resp registerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Credentials == nil || resp.Credentials.Password != "!1abcdef" {
		t.Fatalf("expected plaintext credentials in response: %+v", resp.Credentials)
	}
}

func TestAuthHandler_Register_ServiceError(t *testing.T) {
	svc := &stubAuthService{registerErr: domain.ErrUserExists}
	h := NewAuthHandler(svc, CookieOptions{})

	c, _ := newTestContext(http.MethodPost, "/api/v1/users/register",
		`{"username":"bob","email":"b@example.com","password":"Abc12345!"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists passed through, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &stubAuthService{
		loginResult: &ports.LoginResult{
			User:   &domain.User{ID: "u1", Username: "alice"},
			Tokens: ports.TokenPair{AccessToken: "access-jwt", RefreshToken: "refresh-jwt"},
		},
	}
	h := NewAuthHandler(svc, CookieOptions{Secure: true})

	c, rec := newTestContext(http.MethodPost, "/api/v1/users/login",
		`{"email":"alice@example.com","password":"Abc12345!"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.AccessToken != "access-jwt" || resp.RefreshToken != "refresh-jwt" {
		t.Fatalf("tokens missing from body: %+v", resp)
	}

	access := cookieByName(rec, accessTokenCookie)
	refresh := cookieByName(rec, refreshTokenCookie)
	if access == nil || refresh == nil {
		t.Fatalf("expected both auth cookies to be set")
	}
	if access.Value != "access-jwt" || refresh.Value != "refresh-jwt" {
		t.Fatalf("cookie values wrong: %s / %s", access.Value, refresh.Value)
	}
	if !access.HttpOnly || !access.Secure || access.SameSite != http.SameSiteNoneMode {
		t.Fatalf("access cookie flags wrong: %+v", access)
	}
}

func TestAuthHandler_Login_Failure(t *testing.T) {
	svc := &stubAuthService{loginErr: domain.ErrInvalidCredentials}
	h := NewAuthHandler(svc, CookieOptions{})

	c, rec := newTestContext(http.MethodPost, "/api/v1/users/login",
		`{"email":"a@b.com","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if cookieByName(rec, accessTokenCookie) != nil {
		t.Fatalf("no cookies on failed login")
	}
}

func TestAuthHandler_Login_MalformedRequest(t *testing.T) {
	cases := []string{
		`{"password":"Abc12345!"}`,
		`{"email":"not-an-email","password":"Abc12345!"}`,
		`{"email":"a@example.com"}`,
	}
	for _, body := range cases {
		svc := &stubAuthService{}
		h := NewAuthHandler(svc, CookieOptions{})

		c, _ := newTestContext(http.MethodPost, "/api/v1/users/login", body)
		err := h.Login(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %v", body, err)
		}
		if svc.loginCalled {
			t.Fatalf("%s: service must not be called on a malformed request", body)
		}
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc, CookieOptions{})

	c, rec := newTestContext(http.MethodPost, "/api/v1/users/logout", "")
	authenticate(c, "u1")
	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if svc.loggedOutUserID != "u1" || svc.loggedOutJTI != "jti-test" {
		t.Fatalf("logout not forwarded: user=%s jti=%s", svc.loggedOutUserID, svc.loggedOutJTI)
	}

	access := cookieByName(rec, accessTokenCookie)
	if access == nil || access.Value != "" || access.MaxAge != -1 {
		t.Fatalf("expected access cookie expired, got %+v", access)
	}
}

func TestAuthHandler_Logout_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, CookieOptions{})

	c, _ := newTestContext(http.MethodPost, "/api/v1/users/logout", "")
	err := h.Logout(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_RefreshToken_CookiePreferred(t *testing.T) {
	svc := &stubAuthService{refreshPair: &ports.TokenPair{AccessToken: "a2", RefreshToken: "r2"}}
	h := NewAuthHandler(svc, CookieOptions{})

	c, rec := newTestContext(http.MethodPost, "/api/v1/users/refresh-token",
		`{"refreshToken":"from-body"}`)
	c.Request().AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: "from-cookie"})

	if err := h.RefreshToken(c); err != nil {
		t.Fatalf("RefreshToken returned error: %v", err)
	}
	if svc.refreshedWith != "from-cookie" {
		t.Fatalf("cookie should take precedence over body, got %q", svc.refreshedWith)
	}

	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.AccessToken != "a2" || resp.RefreshToken != "r2" {
		t.Fatalf("unexpected tokens: %+v", resp)
	}
	if ck := cookieByName(rec, refreshTokenCookie); ck == nil || ck.Value != "r2" {
		t.Fatalf("rotated refresh cookie not set: %+v", ck)
	}
}

func TestAuthHandler_RefreshToken_BodyFallback(t *testing.T) {
	svc := &stubAuthService{refreshPair: &ports.TokenPair{AccessToken: "a2", RefreshToken: "r2"}}
	h := NewAuthHandler(svc, CookieOptions{})

	c, _ := newTestContext(http.MethodPost, "/api/v1/users/refresh-token",
		`{"refreshToken":"from-body"}`)
	if err := h.RefreshToken(c); err != nil {
		t.Fatalf("RefreshToken returned error: %v", err)
	}
	if svc.refreshedWith != "from-body" {
		t.Fatalf("expected body token, got %q", svc.refreshedWith)
	}
}

func TestAuthHandler_RefreshToken_Rejected(t *testing.T) {
	svc := &stubAuthService{refreshErr: domain.ErrInvalidToken}
	h := NewAuthHandler(svc, CookieOptions{})

	c, _ := newTestContext(http.MethodPost, "/api/v1/users/refresh-token", "")
	if err := h.RefreshToken(c); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc, CookieOptions{})

	c, rec := newTestContext(http.MethodPost, "/api/v1/users/change-password",
		`{"oldPassword":"Abc12345!","newPassword":"Xyz98765#","confirmNewPassword":"Xyz98765#"}`)
	authenticate(c, "u1")
	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.changeInput.UserID != "u1" || svc.changeInput.NewPassword != "Xyz98765#" {
		t.Fatalf("input not forwarded: %+v", svc.changeInput)
	}
}

func TestAuthHandler_ChangePassword_MissingFields(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, CookieOptions{})

	c, _ := newTestContext(http.MethodPost, "/api/v1/users/change-password",
		`{"oldPassword":"Abc12345!"}`)
	authenticate(c, "u1")
	err := h.ChangePassword(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_CurrentUser(t *testing.T) {
	svc := &stubAuthService{user: &domain.User{ID: "u1", Username: "alice", Email: "alice@example.com"}}
	h := NewAuthHandler(svc, CookieOptions{})

	c, rec := newTestContext(http.MethodGet, "/api/v1/users/current-user", "")
	authenticate(c, "u1")
	if err := h.CurrentUser(c); err != nil {
		t.Fatalf("CurrentUser returned error: %v", err)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.User == nil || resp.User.Username != "alice" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
}

func TestAuthHandler_UpdateAccount(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc, CookieOptions{})

	c, rec := newTestContext(http.MethodPut, "/api/v1/users/update-account",
		`{"fullName":"Alice Doe","email":"alice@example.com"}`)
	authenticate(c, "u1")
	if err := h.UpdateAccount(c); err != nil {
		t.Fatalf("UpdateAccount returned error: %v", err)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.User.FullName != "Alice Doe" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
}

func TestAuthHandler_UpdateAccount_InvalidEmail(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, CookieOptions{})

	c, _ := newTestContext(http.MethodPut, "/api/v1/users/update-account",
		`{"fullName":"Alice Doe","email":"not-an-email"}`)
	authenticate(c, "u1")
	err := h.UpdateAccount(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
