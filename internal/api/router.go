package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/ispoms/oms-console/docs"
	"github.com/ispoms/oms-console/internal/api/handler"
	"github.com/ispoms/oms-console/internal/api/middleware"
	"github.com/ispoms/oms-console/internal/core/ports"
	"github.com/ispoms/oms-console/internal/core/service"
)

// Deps is everything the router wires into handlers. Directory, Mongo,
// Redis and Registry are optional; a nil Registry selects the default
// Prometheus registry.
type Deps struct {
	Sessions     *service.Sessions
	Directory    ports.DirectoryService
	JWTSecret    string
	CookieSecure bool
	Mongo        *mongo.Database
	Redis        *redis.Client
	Registry     *prometheus.Registry
	Log          zerolog.Logger
	Now          func() time.Time
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	metricsCfg := echoprometheus.MiddlewareConfig{Subsystem: "oms_console_http"}
	metricsHandler := echoprometheus.NewHandler()
	if d.Registry != nil {
		metricsCfg.Registerer = d.Registry
		metricsHandler = echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry})
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsCfg))

	// --- Operational routes ---
	health := handler.NewHealthHandler(d.Mongo, d.Redis)
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", metricsHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Console (cookie bound) ---
	// Route-level rather than group middleware so unknown paths never mint
	// console ids.
	console := middleware.Console(d.Sessions, d.CookieSecure)

	sessions := handler.NewSessionHandler(d.Now)
	e.POST("/api/session/login", sessions.Login, console)
	e.POST("/api/session/logout", sessions.Logout, console)
	e.GET("/api/session", sessions.Get, console)
	e.DELETE("/api/session/error", sessions.ClearError, console)
	e.GET("/api/session/can", sessions.Can, console)

	pages := handler.NewConsoleHandler()
	e.GET(middleware.LoginPath, pages.Login, console)
	e.GET(middleware.UnauthorizedPath, pages.Unauthorized, console)
	e.GET("/api/navigation", pages.Navigation, console, middleware.Guard())
	for _, v := range handler.Views {
		e.GET(v.Path, pages.Page(v), console, middleware.Guard(v.Permissions...))
	}

	// --- Identity directory ---
	if d.Directory != nil {
		dir := handler.NewDirectoryHandler(d.Directory, d.Log)
		idp := e.Group("/idp")
		idp.POST("/auth/register", dir.Register)
		idp.POST("/auth/login", dir.Login)
		idp.GET("/auth/verify-email", dir.VerifyEmail)
		idp.POST("/auth/resend-verification", dir.ResendVerification)
		idp.GET("/auth/profile", dir.Profile, middleware.Auth(d.JWTSecret))

		admin := idp.Group("/admin", middleware.Auth(d.JWTSecret))
		admin.GET("/users", dir.ListUsers, middleware.RequirePermission("admin:users"))
	}

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
