package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sanad-org/sanad/internal/adapter/http/handler"
	"github.com/sanad-org/sanad/internal/adapter/http/middleware"
	"github.com/sanad-org/sanad/internal/domain"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	PermissionHandler *handler.PermissionHandler
	HealthHandler     *handler.HealthHandler
	SessionValidator  middleware.SessionValidator
	Policy            *domain.Policy
	LoginLimiter      *middleware.RateLimiter
	Logger            zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	sessionAuth := middleware.SessionAuth(cfg.SessionValidator)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Authentication
		r.Route("/auth", func(r chi.Router) {
			login := http.HandlerFunc(cfg.AuthHandler.Login)
			if cfg.LoginLimiter != nil {
				r.Method(http.MethodPost, "/login", cfg.LoginLimiter.Limit(login))
			} else {
				r.Post("/login", login)
			}

			r.Post("/logout", cfg.AuthHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(sessionAuth)
				r.Get("/me", cfg.AuthHandler.Me)
			})
		})

		// Users
		r.Route("/users", func(r chi.Router) {
			r.Use(sessionAuth)

			r.With(middleware.RequirePermission(cfg.Policy, domain.ResourceUsers, domain.LevelView)).
				Get("/", cfg.UserHandler.List)
			r.With(middleware.RequirePermission(cfg.Policy, domain.ResourceUsers, domain.LevelCreate)).
				Post("/", cfg.UserHandler.Create)
			r.With(middleware.RequirePermission(cfg.Policy, domain.ResourceUsers, domain.LevelView)).
				Get("/{id}", cfg.UserHandler.Get)
			r.With(middleware.RequirePermission(cfg.Policy, domain.ResourceUsers, domain.LevelEdit)).
				Patch("/{id}", cfg.UserHandler.Update)
			r.With(middleware.RequirePermission(cfg.Policy, domain.ResourceUsers, domain.LevelDelete)).
				Post("/{id}/deactivate", cfg.UserHandler.Deactivate)
			r.With(middleware.RequirePermission(cfg.Policy, domain.ResourceUsers, domain.LevelView)).
				Get("/{id}/sessions", cfg.AuthHandler.Sessions)
		})

		// Permissions
		r.Route("/permissions", func(r chi.Router) {
			r.Use(sessionAuth)
			r.Get("/summary", cfg.PermissionHandler.Summary)
		})
	})

	return r
}
