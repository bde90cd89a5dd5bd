package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abac-connect/van-booking/internal/middleware"
	"github.com/abac-connect/van-booking/internal/model"
	"github.com/abac-connect/van-booking/internal/service"
)

// AuthHandler serves registration, login and the current session.
type AuthHandler struct {
	Accounts *service.AccountService
	Log      *slog.Logger
}

func NewAuthHandler(a *service.AccountService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{Accounts: a, Log: log}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	Role      model.Role `json:"role"`
}

type meResp struct {
	PrincipalID uint64     `json:"principal_id"`
	Role        model.Role `json:"role"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

// Register creates an administrator or a student.  The response never
// contains the password or its hash.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Accounts.Register(ctx, req)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": p})
}

// Login exchanges credentials for a session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	tok, p, err := h.Accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, loginResp{Token: tok.Value, ExpiresAt: tok.ExpiresAt, Role: p.Role})
}

// Me echoes the verified session.
func (h *AuthHandler) Me(c echo.Context) error {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return fail(c, http.StatusForbidden, "missing_token", "Access denied")
	}
	return c.JSON(http.StatusOK, meResp{PrincipalID: s.PrincipalID, Role: s.Role, ExpiresAt: s.ExpiresAt})
}
