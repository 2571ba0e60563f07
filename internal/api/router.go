package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/sip-kpbj/api/docs"
	"github.com/sip-kpbj/api/internal/api/cookie"
	"github.com/sip-kpbj/api/internal/api/handler"
	"github.com/sip-kpbj/api/internal/api/middleware"
	"github.com/sip-kpbj/api/internal/core/domain"
	"github.com/sip-kpbj/api/internal/core/ports"
)

// Deps are the collaborators the router wires into handlers and middleware.
type Deps struct {
	Log            zerolog.Logger
	Sessions       ports.SessionService
	Users          ports.UserService
	Cookie         cookie.Jar
	AllowedOrigins []string

	// Mongo and Redis back the readiness probe; it is skipped when Mongo is nil.
	Mongo *mongo.Database
	Redis *redis.Client

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.Cookie)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:                 "sipkpbj",
		Registerer:                d.Registerer,
		DoNotUseRequestPathFor404: true,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Sessions, d.Cookie, d.Log)
	userHandler := handler.NewUserHandler(d.Users)
	requireSession := middleware.Auth(d.Sessions, d.Cookie, d.Log)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.GET("/me", authHandler.Me)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/permissions", authHandler.Permissions, requireSession)

	// --- User management ---
	users := e.Group("/api/users", requireSession)
	users.GET("", userHandler.List, middleware.RBAC(domain.RoleAdmin, domain.RoleAuditor))
	users.POST("", userHandler.Create, middleware.RBAC(domain.RoleAdmin))
	users.GET("/:id", userHandler.Get, middleware.RBACOrSelf("id", domain.RoleAdmin, domain.RoleAuditor))
	users.PATCH("/:id", userHandler.Update, middleware.RBACOrSelf("id", domain.RoleAdmin))
	users.DELETE("/:id", userHandler.Delete, middleware.RBAC(domain.RoleAdmin))

	// --- Ops (no auth required) ---
	healthHandler := handler.NewHealthHandler(d.Mongo, d.Redis)
	e.GET("/health", healthHandler.Liveness) // liveness  – is the process alive?
	if d.Mongo != nil {
		e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	}
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
