package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abac-connect/van-booking/internal/middleware"
	"github.com/abac-connect/van-booking/internal/service"
)

// BookingHandler serves the booking lifecycle.  Routes are mounted behind
// Authenticate; the service checks the role again.
type BookingHandler struct {
	Bookings *service.BookingService
	Log      *slog.Logger
}

func NewBookingHandler(b *service.BookingService, log *slog.Logger) *BookingHandler {
	return &BookingHandler{Bookings: b, Log: log}
}

// Create books a trip for the calling student.  Any user_id in the body is
// ignored.
func (h *BookingHandler) Create(c echo.Context) error {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return fail(c, http.StatusForbidden, "missing_token", "Access denied")
	}
	var req service.CreateBookingInput
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Bookings.Create(ctx, s, req)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"booking": b})
}

// List returns every booking joined with student, van and route.
func (h *BookingHandler) List(c echo.Context) error {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return fail(c, http.StatusForbidden, "missing_token", "Access denied")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Bookings.ListAll(ctx, s)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Delete removes a booking.  An id that matches nothing still succeeds.
func (h *BookingHandler) Delete(c echo.Context) error {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return fail(c, http.StatusForbidden, "missing_token", "Access denied")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_id", "booking id must be a positive integer")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Bookings.Delete(ctx, s, id); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Booking deleted successfully"})
}
