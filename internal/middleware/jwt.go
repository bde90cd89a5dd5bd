package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abac-connect/van-booking/internal/auth"
)

// SessionVerifier checks a raw session token.
type SessionVerifier interface {
	Verify(raw string) (auth.Session, error)
}

// Authenticate verifies the bearer token of every request and stores the
// resulting session in the context for SessionFrom.  A missing token is
// refused with 403; an unreadable or expired one with 400.
func Authenticate(v SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			s, err := v.Verify(raw)
			switch {
			case err == nil:
			case errors.Is(err, auth.ErrMissingToken):
				return abort(c, http.StatusForbidden, "missing_token", "Access denied")
			case errors.Is(err, auth.ErrExpiredToken):
				return abort(c, http.StatusBadRequest, "token_expired", "Token expired")
			default:
				return abort(c, http.StatusBadRequest, "invalid_token", "Invalid token")
			}
			c.Set(sessionKey, s)
			return next(c)
		}
	}
}

func abort(c echo.Context, status int, code, message string) error {
	return c.JSON(status, echo.Map{"error": code, "message": message})
}
