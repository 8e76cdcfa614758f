package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sirpyerre/members-portal/docs"
	"github.com/sirpyerre/members-portal/internal/api/handler"
	"github.com/sirpyerre/members-portal/internal/api/metrics"
	"github.com/sirpyerre/members-portal/internal/api/middleware"
	"github.com/sirpyerre/members-portal/internal/api/session"
	"github.com/sirpyerre/members-portal/internal/api/view"
	"github.com/sirpyerre/members-portal/internal/core/ports"
	"github.com/sirpyerre/members-portal/internal/core/service"
)

// Dependencies carries everything NewRouter wires into the handlers.
type Dependencies struct {
	Log      zerolog.Logger
	Users    ports.UserRepository
	Sessions ports.SessionStore
	Hasher   ports.PasswordHasher
	Session  session.Options

	// ReadinessChecks back /health/ready, keyed by dependency name.
	ReadinessChecks map[string]handler.DependencyCheck
	// MetricsRegisterer receives the HTTP metrics. Defaults to the
	// Prometheus default registerer.
	MetricsRegisterer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	reg := deps.MetricsRegisterer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	// --- Dependencies ---
	sessions := session.NewManager(deps.Sessions, deps.Session, deps.Log)
	authService := service.NewAuthService(deps.Users, metrics.InstrumentHasher(deps.Hasher), deps.Log)
	userService := service.NewUserService(deps.Users, deps.Log)

	authHandler := handler.NewAuthHandler(authService, sessions, deps.Log)
	pageHandler := handler.NewPageHandler(userService, deps.Log)
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.ReadinessChecks)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal",
		Registerer: reg,
	}))
	e.Use(sessions.Middleware())

	authenticated := middleware.RequireAuthenticated()
	admin := middleware.RequireAdmin(deps.Log)

	// --- Public pages ---
	e.GET("/", pageHandler.Home)
	e.GET("/signup", authHandler.SignupForm)
	e.POST("/submitUser", authHandler.SubmitUser)
	e.GET("/login", authHandler.LoginForm)
	e.POST("/loggingIn", authHandler.LoggingIn)
	e.POST("/loggingin", authHandler.LoggingIn)
	e.GET("/loggedin", authHandler.LoggedIn)
	e.GET("/logout", authHandler.Logout)

	// --- Members ---
	e.GET("/member", pageHandler.Member, authenticated)
	e.GET("/nosql-injection", pageHandler.NoSQLInjection, authenticated)

	// --- Admin ---
	e.GET("/admin", pageHandler.Admin, authenticated, admin)
	e.GET("/promote/:username", pageHandler.Promote, authenticated, admin)
	e.GET("/demote/:username", pageHandler.Demote, authenticated, admin)

	// --- Operations ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}
