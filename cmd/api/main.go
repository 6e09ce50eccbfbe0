// Package main is the entrypoint for the sealdrop API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/sealdrop/sealdrop/internal/auth"
	"github.com/sealdrop/sealdrop/internal/cache"
	"github.com/sealdrop/sealdrop/internal/codec"
	"github.com/sealdrop/sealdrop/internal/config"
	"github.com/sealdrop/sealdrop/internal/handler"
	"github.com/sealdrop/sealdrop/internal/metrics"
	"github.com/sealdrop/sealdrop/internal/middleware"
	"github.com/sealdrop/sealdrop/internal/server"
	"github.com/sealdrop/sealdrop/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Credential store (PostgreSQL or in-memory fallback)
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open credential store",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}

	// Transfer gateway
	gw, err := openGateway(ctx, cfg)
	if err != nil {
		logger.Error("failed to open transfer gateway",
			slog.String("error", sanitizeError(err, cfg.MinIOSecretKey)),
		)
		os.Exit(1)
	}
	logger.Info("transfer gateway ready", slog.String("gateway", gw.Name()))

	// Transform codec
	rawKey, err := cfg.DecodedEncryptionKey()
	if err != nil {
		logger.Error("invalid encryption key", slog.String("error", err.Error()))
		os.Exit(1)
	}
	key, source, err := codec.ResolveKey(rawKey, cfg.EncryptionPassphrase, cfg.EncryptionSalt)
	if err != nil {
		logger.Error("failed to resolve encryption key", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if source == codec.KeyEphemeral && cfg.IsProduction() {
		logger.Error("ENCRYPTION_KEY or ENCRYPTION_PASSPHRASE is required in production")
		os.Exit(1)
	}
	if source == codec.KeyEphemeral {
		logger.Warn("no ENCRYPTION_KEY or ENCRYPTION_PASSPHRASE set; using a random key, stored files will be unreadable after restart")
	}
	transformCodec, err := newCodec(cfg, key)
	if err != nil {
		logger.Error("failed to create codec", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Session tokens and password hashing
	secret, err := resolveJWTSecret(cfg, logger)
	if err != nil {
		logger.Error("failed to resolve JWT secret", slog.String("error", err.Error()))
		os.Exit(1)
	}
	tokens, err := auth.NewTokenManager(secret, cfg.TokenTTL, nil)
	if err != nil {
		logger.Error("failed to create token manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	hasher, err := auth.NewPasswordHasher(auth.DefaultHashParams)
	if err != nil {
		logger.Error("failed to create password hasher", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Cache (optional; only backs rate limiting)
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis unavailable; rate limiting falls back to per-process limits",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			cacheClient = nil
		} else {
			logger.Info("connected to Redis")
		}
	}

	// Metrics
	var metricsRecorder metrics.Recorder = metrics.NewNoop()
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		prom := metrics.NewPrometheus()
		metricsRecorder = prom
		metricsHandler = prom.Handler()
	}

	// Initialize services
	authService := service.NewAuthService(store, hasher, tokens, metricsRecorder, logger)
	transferService := service.NewTransferService(store, gw, transformCodec, metricsRecorder, logger)

	// Setup router
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Metrics: metricsRecorder,
		Enabled: cfg.RateLimitAuthEnabled,
		RPS:     cfg.RateLimitAuthRPS,
		Burst:   cfg.RateLimitAuthBurst,
	}
	var cacheCheck handler.HealthChecker
	if cacheClient != nil {
		rateLimitCfg.Limiter = cacheClient
		cacheCheck = cacheClient
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := handler.NewRouter(handler.RouterConfig{
		Logger:         logger,
		Auth:           authService,
		Transfers:      transferService,
		Health:         handler.NewHealthHandler(store, gw, cacheCheck),
		RateLimit:      rateLimitCfg,
		CORS:           corsCfg,
		Security:       middleware.SecurityConfig{HSTS: cfg.TLSEnabled()},
		MaxUploadBytes: cfg.MaxUploadBytes,
		Metrics:        metricsHandler,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	if cfg.TLSEnabled() {
		srv.WithTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	}

	srv.OnShutdown("store", func(context.Context) error {
		store.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("cache", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"tls", cfg.TLSEnabled(),
		"metrics", cfg.MetricsEnabled,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" || redacted == secret {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
