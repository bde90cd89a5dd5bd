package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abac-connect/van-booking/internal/middleware"
	"github.com/abac-connect/van-booking/internal/service"
)

type ReportHandler struct {
	Reports *service.ReportService
	Log     *slog.Logger
}

func NewReportHandler(r *service.ReportService, log *slog.Logger) *ReportHandler {
	return &ReportHandler{Reports: r, Log: log}
}

// Payments lists every payment with its booking and student.
func (h *ReportHandler) Payments(c echo.Context) error {
	s, _ := middleware.SessionFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	rows, err := h.Reports.ListPayments(ctx, s)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, rows)
}
