package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionCookieName is the cookie carrying the session token for browser clients.
const SessionCookieName = "session_token"

const claimsContextKey = "auth_claims"

// Middleware resolves the caller from a Bearer token or the session cookie.
// A valid token puts its claims on the echo context. When required is true,
// requests without a valid token get 401; otherwise they continue anonymously.
func Middleware(tokens *TokenManager, required bool, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := TokenFromRequest(c)
			if raw == "" {
				if required {
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				}
				return next(c)
			}

			claims, err := tokens.Validate(c.Request().Context(), raw)
			if err != nil {
				if !errors.Is(err, ErrInvalidToken) && !errors.Is(err, ErrTokenRevoked) {
					logger.Error("Failed to validate token", zap.Error(err))
					return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
				}
				if required {
					logger.Debug("Request rejected: invalid token", zap.Error(err))
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
				}
				return next(c)
			}

			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}

// TokenFromRequest extracts the raw token from the Authorization header or the session cookie.
func TokenFromRequest(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// ClaimsFromContext returns the claims stored by Middleware.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// UserID returns the authenticated user id, or "" for anonymous callers.
func UserID(c echo.Context) string {
	if claims, ok := ClaimsFromContext(c); ok {
		return claims.UserID
	}
	return ""
}
