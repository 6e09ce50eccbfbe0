package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSConfig holds CORS configuration options.
type CORSConfig struct {
	// AllowedOrigins is a list of origins allowed to make cross-origin requests.
	// Entries may contain one wildcard, e.g. "https://*.example.com".
	// Empty denies every cross-origin request.
	AllowedOrigins []string

	// AllowedMethods specifies the allowed HTTP methods.
	AllowedMethods []string

	// AllowedHeaders specifies the allowed request headers.
	AllowedHeaders []string

	// ExposedHeaders specifies which headers the browser can access.
	ExposedHeaders []string

	// AllowCredentials indicates whether credentials (cookies, auth) are allowed.
	AllowCredentials bool

	// MaxAge is the value for Access-Control-Max-Age header (in seconds).
	MaxAge int
}

// DefaultCORSConfig returns production-safe CORS defaults.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			"X-Request-ID",
			"Accept",
			"Accept-Language",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"Retry-After",
		},
		AllowCredentials: false,
		MaxAge:           86400, // 24 hours
	}
}

// CORS returns a middleware that handles Cross-Origin Resource Sharing.
// Disallowed origins get no CORS headers, so the browser blocks the response.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:       cfg.AllowedOrigins,
		AllowedMethods:       cfg.AllowedMethods,
		AllowedHeaders:       cfg.AllowedHeaders,
		ExposedHeaders:       cfg.ExposedHeaders,
		AllowCredentials:     cfg.AllowCredentials,
		MaxAge:               cfg.MaxAge,
		OptionsSuccessStatus: http.StatusNoContent,
	}

	// go-chi/cors treats an empty list as "allow all".
	if len(cfg.AllowedOrigins) == 0 {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}

	return cors.Handler(opts)
}
