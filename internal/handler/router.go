package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sealdrop/sealdrop/internal/middleware"
	"github.com/sealdrop/sealdrop/internal/service"
)

// maxJSONBody caps register and login bodies.
const maxJSONBody = 1 << 20

// RouterConfig holds everything the HTTP surface needs.
type RouterConfig struct {
	Logger         *slog.Logger
	Auth           *service.AuthService
	Transfers      *service.TransferService
	Health         *HealthHandler
	RateLimit      middleware.RateLimitConfig
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	MaxUploadBytes int64
	// Metrics serves GET /metrics when non-nil.
	Metrics http.Handler
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	h := New(cfg.Logger)
	authHandler := NewAuthHandler(cfg.Auth, cfg.Logger)
	transferHandler := NewTransferHandler(cfg.Transfers, cfg.Logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))

	r.Get("/", h.Hello)

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		// Health endpoints (no auth required)
		r.Get("/health", cfg.Health.Health)
		r.Get("/ready", cfg.Health.Ready)

		r.With(
			middleware.RateLimitIP(cfg.RateLimit, "register"),
			middleware.MaxBodySize(maxJSONBody),
		).Post("/register", authHandler.Register)
		r.With(
			middleware.RateLimitIP(cfg.RateLimit, "login"),
			middleware.MaxBodySize(maxJSONBody),
		).Post("/login", authHandler.Login)

		// Session routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(middleware.AuthConfig{
				Logger:   cfg.Logger,
				Verifier: cfg.Auth,
			}))

			r.Post("/logout", authHandler.Logout)
			r.Post("/verify-token", authHandler.VerifyToken)
			r.Get("/recent-transfers", transferHandler.Recent)
			r.With(middleware.MaxBodySize(cfg.MaxUploadBytes)).Post("/upload", transferHandler.Upload)
			r.Get("/download/{id}", transferHandler.Download)
		})
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
