package router

import (
	"github.com/labstack/echo/v4"

	"github.com/abac-connect/van-booking/internal/handler"
	"github.com/abac-connect/van-booking/internal/middleware"
	"github.com/abac-connect/van-booking/internal/model"
)

type adminHandlers struct {
	Bookings *handler.BookingHandler
	Fleet    *handler.FleetHandler
	Reports  *handler.ReportHandler
}

// RegisterAdmin registers endpoints that require an administrator session.
// Catalogue writes drop the cached public listings they affect.
func RegisterAdmin(e *echo.Echo, h adminHandlers, authn echo.MiddlewareFunc, cache *middleware.ResponseCache) {
	admin := func(message string) []echo.MiddlewareFunc {
		return []echo.MiddlewareFunc{authn, middleware.RequireRole(model.RoleAdmin, message)}
	}
	with := func(mw []echo.MiddlewareFunc, extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		return append(mw, extra...)
	}

	e.GET("/bookings", h.Bookings.List, admin("Only admins can view bookings")...)
	e.DELETE("/bookings/:id", h.Bookings.Delete, admin("Only admins can delete bookings")...)
	e.GET("/payments", h.Reports.Payments, admin("Only admins can view payments")...)

	e.POST("/drivers", h.Fleet.CreateDriver,
		with(admin("Only admins can add drivers"), cache.InvalidateOnSuccess("/drivers"))...)
	e.POST("/vans", h.Fleet.CreateVan, admin("Only admins can add vans")...)
	e.PATCH("/vans/:id/status", h.Fleet.SetVanStatus, admin("Only admins can update vans")...)
	e.POST("/routes", h.Fleet.CreateRoute,
		with(admin("Only admins can add routes"), cache.InvalidateOnSuccess("/routes"))...)
}
