package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abac-connect/van-booking/internal/auth"
	"github.com/abac-connect/van-booking/internal/model"
)

// RequireRole admits only sessions whose role equals role.  It must run
// after Authenticate.  Refusals carry message, which names the action that
// was denied.
func RequireRole(role model.Role, message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := SessionFrom(c)
			if !ok || auth.Authorize(role, s) != nil {
				return abort(c, http.StatusForbidden, "forbidden", message)
			}
			return next(c)
		}
	}
}
