package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/identity-service/docs"
	"github.com/99minutos/identity-service/internal/api/handler"
	"github.com/99minutos/identity-service/internal/api/middleware"
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// Services groups what the HTTP layer depends on.
type Services struct {
	Auth    ports.AuthService
	Users   ports.UserService
	Contact ports.ContactService
	Tokens  middleware.TokenVerifier
}

// Options tunes the router.
type Options struct {
	AllowedOrigins []string
	// EnforceAdminRBAC puts directory maintenance behind an admin token.
	EnforceAdminRBAC bool
	HealthChecks     map[string]handler.HealthCheck
	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: opts.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	userHandler := handler.NewUserHandler(svc.Users)
	contactHandler := handler.NewContactHandler(svc.Contact)
	healthHandler := handler.NewHealthHandler(opts.HealthChecks, log)

	var admin []echo.MiddlewareFunc
	if opts.EnforceAdminRBAC {
		admin = []echo.MiddlewareFunc{
			middleware.Auth(svc.Tokens),
			middleware.RBAC(domain.RoleAdmin),
		}
	}

	// --- Authentication ---
	e.POST("/users", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.GET("/check-role", authHandler.CheckRole)
	e.POST("/change-role", authHandler.ChangeRole, admin...)

	// --- Directory ---
	e.GET("/users", userHandler.List, admin...)
	e.GET("/all-users", userHandler.List, admin...)
	e.POST("/update-User", userHandler.Update, admin...)
	e.DELETE("/delete-user/:userId", userHandler.Delete, admin...)

	// --- Contact ---
	e.POST("/contact/:action", contactHandler.Send)

	// --- Health checks (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: opts.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
