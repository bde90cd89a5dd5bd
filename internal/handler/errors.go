package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abac-connect/van-booking/internal/auth"
	"github.com/abac-connect/van-booking/internal/service"
)

// requestTimeout bounds the store work done for one request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, echo.Map{"error": code, "message": message})
}

// respondError translates a service error into its HTTP response.
// Unexpected errors are logged and reported without detail.
func respondError(c echo.Context, log *slog.Logger, err error) error {
	var ve *service.ValidationError
	var se *service.StoreError
	switch {
	case errors.As(err, &ve):
		return fail(c, http.StatusBadRequest, "validation_error", ve.Error())
	case errors.Is(err, auth.ErrForbidden):
		return fail(c, http.StatusForbidden, "forbidden", "Access denied")
	case errors.Is(err, auth.ErrPrincipalNotFound):
		return fail(c, http.StatusBadRequest, "principal_not_found", "User not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return fail(c, http.StatusBadRequest, "invalid_credentials", "Invalid password")
	case errors.Is(err, service.ErrNotFound):
		return fail(c, http.StatusNotFound, "not_found", "Not found")
	case errors.As(err, &se) && se.CallerCaused():
		return fail(c, http.StatusBadRequest, "constraint_violation", se.Error())
	}
	log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "err", err)
	return fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
}

func bindError(c echo.Context) error {
	return fail(c, http.StatusBadRequest, "invalid_body", "request body must be a JSON object")
}

// pathID parses the positive integer path parameter name.  Ids must fit a
// signed 64-bit column.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 63)
	return id, err == nil && id > 0
}

// ErrorHandler renders errors that escape handlers, such as unknown routes
// and recovered panics, in the same JSON shape as every other error.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, message := http.StatusInternalServerError, "internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status, message = he.Code, fmt.Sprint(he.Message)
		} else {
			log.Error("unhandled error", "method", c.Request().Method, "path", c.Path(), "err", err)
		}
		code := strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = fail(c, status, code, message)
	}
}
