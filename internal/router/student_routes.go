package router

import (
	"github.com/labstack/echo/v4"

	"github.com/abac-connect/van-booking/internal/handler"
	"github.com/abac-connect/van-booking/internal/middleware"
	"github.com/abac-connect/van-booking/internal/model"
)

// RegisterStudent registers endpoints that require a student session.
func RegisterStudent(e *echo.Echo, b *handler.BookingHandler, authn echo.MiddlewareFunc) {
	e.POST("/bookings", b.Create, authn, middleware.RequireRole(model.RoleStudent, "Only students can book"))
}
