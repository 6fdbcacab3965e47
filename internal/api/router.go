package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lumispa/booking-system/internal/api/handler"
	"github.com/lumispa/booking-system/internal/api/middleware"
	"github.com/lumispa/booking-system/internal/core/domain"
	"github.com/lumispa/booking-system/internal/core/ports"
)

// RouterConfig carries the wired application services and infrastructure
// handles the HTTP layer needs. Services are constructed and started by the
// caller; the router only registers routes against them.
type RouterConfig struct {
	Sessions  ports.SessionService
	Registrar ports.RegistrationService
	Catalog   ports.CatalogService
	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("booking"))

	authHandler := handler.NewAuthHandler(cfg.Sessions, cfg.Registrar, cfg.JWTSecret, 24*time.Hour)
	sessionHandler := handler.NewSessionHandler(cfg.Sessions)
	catalogHandler := handler.NewCatalogHandler(cfg.Catalog)
	healthHandler := handler.NewHealthHandler(cfg.Mongo, cfg.Redis)

	authRequired := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authRequired)

	// --- Session ---
	e.GET("/session", sessionHandler.Current, authRequired)

	// --- Service catalog ---
	e.GET("/services", catalogHandler.List, authRequired)
	e.POST("/services", catalogHandler.Create, authRequired, adminOnly)
	e.PUT("/services/:id", catalogHandler.Update, authRequired, adminOnly)

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
