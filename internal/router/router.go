// Package router wires repositories, services and handlers into an Echo
// instance.  Routes are mounted at the root.
package router

import (
	"database/sql"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/abac-connect/van-booking/internal/auth"
	"github.com/abac-connect/van-booking/internal/config"
	"github.com/abac-connect/van-booking/internal/handler"
	"github.com/abac-connect/van-booking/internal/middleware"
	"github.com/abac-connect/van-booking/internal/queue"
	"github.com/abac-connect/van-booking/internal/repository"
	"github.com/abac-connect/van-booking/internal/service"
)

// Deps are the process-wide resources the HTTP server is built from.
// Redis may be nil; Events may be nil.
type Deps struct {
	DB         *sql.DB
	Sessions   *auth.SessionManager
	BcryptCost int
	Events     queue.Publisher
	Redis      *redis.Client
	Cache      config.CacheConfig
	RateLimit  config.RateLimitConfig
	Log        *slog.Logger
}

// New builds the server with every route registered.
func New(d Deps) *echo.Echo {
	admins := repository.NewAdminRepo(d.DB)
	students := repository.NewStudentRepo(d.DB)

	accounts := service.NewAccountService(admins, students, d.Sessions, d.BcryptCost, d.Log)
	bookings := service.NewBookingService(repository.NewBookingRepo(d.DB), d.Events, d.Log)
	fleet := service.NewFleetService(repository.NewDriverRepo(d.DB), repository.NewVanRepo(d.DB), repository.NewRouteRepo(d.DB))
	reports := service.NewReportService(repository.NewPaymentRepo(d.DB))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))

	cache := middleware.NewResponseCache(d.Cache, d.Redis, d.Log)
	limiter := middleware.NewRateLimiter(d.RateLimit, d.Redis, d.Log)
	authn := middleware.Authenticate(d.Sessions)

	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(accounts, d.Log), authn, limiter.Middleware())
	RegisterPublic(e, handler.NewFleetHandler(fleet, d.Log), cache.Middleware())
	RegisterStudent(e, handler.NewBookingHandler(bookings, d.Log), authn)
	RegisterAdmin(e, adminHandlers{
		Bookings: handler.NewBookingHandler(bookings, d.Log),
		Fleet:    handler.NewFleetHandler(fleet, d.Log),
		Reports:  handler.NewReportHandler(reports, d.Log),
	}, authn, cache)
	return e
}

// RegisterRoutes registers the welcome and health endpoints.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Welcome)
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration and login, both rate limited, and
// the session echo endpoint.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, authn, limit echo.MiddlewareFunc) {
	e.POST("/users/register", a.Register, limit)
	e.POST("/users/login", a.Login, limit)
	e.GET("/users/me", a.Me, authn)
}

// RegisterPublic registers the unauthenticated catalogue reads.  Driver
// and route listings are cached; van availability always reads the store,
// since van status can change there without passing through this server.
func RegisterPublic(e *echo.Echo, f *handler.FleetHandler, cache echo.MiddlewareFunc) {
	e.GET("/drivers", f.ListDrivers, cache)
	e.GET("/routes", f.ListRoutes, cache)
	e.GET("/vans", f.ListVans)
}
