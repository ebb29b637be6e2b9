package api

import (
	"context"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/taskbridge/marketplace-api/docs"
	"github.com/taskbridge/marketplace-api/internal/api/handler"
	"github.com/taskbridge/marketplace-api/internal/api/middleware"
	"github.com/taskbridge/marketplace-api/internal/core/domain"
	"github.com/taskbridge/marketplace-api/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Logger      zerolog.Logger
	Auth        ports.AuthService
	Requests    ports.RequestService
	Tokens      middleware.AccessVerifier
	Revoker     ports.SessionRevoker  // optional
	Attachments ports.AttachmentStore // optional; nil disables uploads
	Cookies     handler.CookieOptions
	Checks      map[string]func(ctx context.Context) error
	// Registry receives the HTTP metrics; nil means the default registry.
	Registry    *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "marketplace",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookies)
	requestHandler := handler.NewRequestHandler(deps.Requests, deps.Attachments)
	healthHandler := handler.NewHealthHandler(deps.Checks)

	authenticated := middleware.Auth(deps.Tokens, deps.Revoker, deps.Logger)
	clientOnly := middleware.RequireKind(domain.KindClient)

	// --- Auth routes ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.POST("/refresh-token", authHandler.Refresh)
	e.POST("/logout", authHandler.Logout, authenticated, clientOnly)

	// --- Request routes ---
	requests := e.Group("/requests", authenticated, clientOnly)
	requests.POST("", requestHandler.Create)
	requests.GET("", requestHandler.List)
	requests.POST("/attachments", requestHandler.Attachment)
	requests.PATCH("/:id", requestHandler.Update)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
