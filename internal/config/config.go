// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"5000"`

	// Credential store (PostgreSQL). Empty selects the in-memory store.
	DatabaseURL    string `env:"DATABASE_URL"`
	StoreFallback  bool   `env:"STORE_FALLBACK" envDefault:"true"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	// Cache (Redis). Empty keeps rate limiting in-process.
	RedisURL string `env:"REDIS_URL"`

	// Session tokens
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// Transform codec key material
	EncryptionKey        string `env:"ENCRYPTION_KEY"`
	EncryptionPassphrase string `env:"ENCRYPTION_PASSPHRASE"`
	EncryptionSalt       string `env:"ENCRYPTION_SALT" envDefault:"sealdrop-salt"`

	// gzip level: -2 (Huffman only), -1 (default) or 0-9
	CompressionLevel int `env:"COMPRESSION_LEVEL" envDefault:"-1"`
	// Ceiling on inflated download size (default 256MB), independent of the
	// upload limit so stored files stay readable if MAX_UPLOAD_BYTES is lowered.
	// Zero disables the ceiling.
	MaxDecodeBytes int64 `env:"MAX_DECODE_BYTES" envDefault:"268435456"`

	// Upload ceiling in bytes (default 32MB)
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"33554432"`

	// Transfer gateway. Empty MinIOEndpoint selects the local directory gateway.
	MinIOEndpoint   string `env:"MINIO_ENDPOINT"`
	MinIOAccessKey  string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinIOSecretKey  string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	MinIOBucket     string `env:"MINIO_BUCKET" envDefault:"sealdrop-transfers"`
	MinIOUseSSL     bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	LocalStorageDir string `env:"LOCAL_STORAGE_DIR" envDefault:"./data/objects"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// TLS (both or neither)
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,chrome-extension://abc")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Rate limiting for register/login (per client IP)
	RateLimitAuthEnabled bool `env:"RATE_LIMIT_AUTH_ENABLED" envDefault:"true"`
	RateLimitAuthRPS     int  `env:"RATE_LIMIT_AUTH_RPS" envDefault:"5"`
	RateLimitAuthBurst   int  `env:"RATE_LIMIT_AUTH_BURST" envDefault:"10"`

	// Prometheus metrics on /metrics
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"false"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// TLSEnabled returns true if both certificate and key are configured.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// DecodedEncryptionKey returns the raw ENCRYPTION_KEY bytes, or nil if unset.
// Both standard and URL-safe base64 are accepted.
func (c *Config) DecodedEncryptionKey() ([]byte, error) {
	if c.EncryptionKey == "" {
		return nil, nil
	}

	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		key, err = base64.URLEncoding.DecodeString(c.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("ENCRYPTION_KEY is not valid base64: %w", err)
		}
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.MaxDecodeBytes < 0 {
		errs = append(errs, errors.New("MAX_DECODE_BYTES must not be negative"))
	}
	if c.MaxDecodeBytes > 0 && c.MaxDecodeBytes < c.MaxUploadBytes {
		errs = append(errs, errors.New("MAX_DECODE_BYTES must be at least MAX_UPLOAD_BYTES"))
	}
	if c.CompressionLevel < -2 || c.CompressionLevel > 9 {
		errs = append(errs, fmt.Errorf("COMPRESSION_LEVEL must be between -2 and 9, got %d", c.CompressionLevel))
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	if _, err := c.DecodedEncryptionKey(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
