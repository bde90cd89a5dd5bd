package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abac-connect/van-booking/internal/middleware"
	"github.com/abac-connect/van-booking/internal/service"
)

// FleetHandler serves drivers, vans and routes.
type FleetHandler struct {
	Fleet *service.FleetService
	Log   *slog.Logger
}

func NewFleetHandler(f *service.FleetService, log *slog.Logger) *FleetHandler {
	return &FleetHandler{Fleet: f, Log: log}
}

type vanStatusReq struct {
	Status string `json:"status"`
}

func (h *FleetHandler) ListDrivers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	rows, err := h.Fleet.ListDrivers(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *FleetHandler) CreateDriver(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	var req service.CreateDriverInput
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	d, err := h.Fleet.CreateDriver(ctx, s, req)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"driver": d})
}

// ListVans returns only vans whose status is Available.
func (h *FleetHandler) ListVans(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	rows, err := h.Fleet.ListAvailableVans(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *FleetHandler) CreateVan(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	var req service.CreateVanInput
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Fleet.CreateVan(ctx, s, req)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"van": v})
}

func (h *FleetHandler) SetVanStatus(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	id, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_id", "van id must be a positive integer")
	}
	var req vanStatusReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Fleet.SetVanStatus(ctx, s, id, req.Status)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"van": v})
}

func (h *FleetHandler) ListRoutes(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	rows, err := h.Fleet.ListRoutes(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *FleetHandler) CreateRoute(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	var req service.CreateRouteInput
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.Fleet.CreateRoute(ctx, s, req)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"route": r})
}
