package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/abac-connect/van-booking/internal/auth"
)

const sessionKey = "session"

// SessionFrom returns the session stored by Authenticate.
func SessionFrom(c echo.Context) (auth.Session, bool) {
	s, ok := c.Get(sessionKey).(auth.Session)
	return s, ok
}

// principalKey identifies the caller for rate limiting, e.g. "student:7".
// It returns "guest" on unauthenticated routes.
func principalKey(c echo.Context) string {
	s, ok := SessionFrom(c)
	if !ok {
		return "guest"
	}
	return string(s.Role) + ":" + strconv.FormatUint(s.PrincipalID, 10)
}
