package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ctxUserID extracts the authenticated user ID injected by the Auth
// middleware. Presence of the ID proves the middleware ran.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}

// ctxTokenRef extracts the access token's jti and expiry for revocation on
// logout. Both may be empty when the token predates jti support.
func ctxTokenRef(c echo.Context) (jti string, expiresAt time.Time) {
	jti, _ = c.Get("jti").(string)
	expiresAt, _ = c.Get("token_expires").(time.Time)
	return jti, expiresAt
}
