package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gatherhub/event-management-api/internal/core/ports"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// CookieOptions controls how auth cookies are issued. Secure should be true
// everywhere except local development over plain HTTP.
type CookieOptions struct {
	Secure bool
}

// setAuthCookies issues the http-only accessToken/refreshToken cookies.
// SameSite=None allows the browser frontend to be served from another origin.
func setAuthCookies(c echo.Context, pair ports.TokenPair, opts CookieOptions) {
	c.SetCookie(authCookie(accessTokenCookie, pair.AccessToken, opts))
	c.SetCookie(authCookie(refreshTokenCookie, pair.RefreshToken, opts))
}

// clearAuthCookies expires both auth cookies.
func clearAuthCookies(c echo.Context, opts CookieOptions) {
	access := authCookie(accessTokenCookie, "", opts)
	access.MaxAge = -1
	access.Expires = time.Unix(0, 0)
	refresh := authCookie(refreshTokenCookie, "", opts)
	refresh.MaxAge = -1
	refresh.Expires = time.Unix(0, 0)
	c.SetCookie(access)
	c.SetCookie(refresh)
}

func authCookie(name, value string, opts CookieOptions) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteNoneMode,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	}
}
