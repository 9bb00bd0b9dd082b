package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gatherhub/event-management-api/internal/core/ports"
)

// AccessTokenCookie is the cookie carrying the access token for browser clients.
const AccessTokenCookie = "accessToken"

// Auth validates the access token and injects its claims into context.
// The token is read from the Authorization header or, failing that, from the
// accessToken cookie. Tokens revoked by logout are rejected even before
// their natural expiry.
func Auth(tokens ports.TokenService, denylist ports.TokenDenylist, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			claims, err := tokens.VerifyAccessToken(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if denylist != nil {
				denied, err := denylist.IsDenied(c.Request().Context(), claims.JTI)
				if err != nil {
					// Denylist unavailable: fail open, the token signature
					// and expiry were already verified.
					log.Warn().Err(err).Msg("denylist check failed")
				} else if denied {
					return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
				}
			}

			c.Set("user_id", claims.UserID)
			c.Set("username", claims.Username)
			c.Set("kind", claims.Kind)
			c.Set("jti", claims.JTI)
			c.Set("token_expires", claims.ExpiresAt)

			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}

	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
