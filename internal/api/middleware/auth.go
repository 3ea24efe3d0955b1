package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/accountd/auth-api/internal/api/metrics"
	"github.com/accountd/auth-api/internal/pkg/token"
)

// TokenCookie is the cookie the token may arrive in when no Authorization
// header is present. Verification is identical for both transports.
const TokenCookie = "token"

// Auth is the gate in front of every protected route: it extracts the bearer
// token, verifies it, and injects the decoded identity into the request
// context. Any failure short-circuits with 401 before service logic runs.
func Auth(verifier *token.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := extractToken(c)
			if err != nil {
				return err
			}

			claims, err := verifier.Parse(raw)
			if err != nil {
				metrics.TokenRejectionsTotal.WithLabelValues("invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("user_id", claims.UserID)
			c.Set("role", claims.Role)

			return next(c)
		}
	}
}

// extractToken prefers the Authorization header and falls back to the token
// cookie set at login.
func extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			metrics.TokenRejectionsTotal.WithLabelValues("malformed_header").Inc()
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}
		return parts[1], nil
	}

	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
	return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication token")
}
