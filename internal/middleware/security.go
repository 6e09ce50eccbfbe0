package middleware

import (
	"net/http"

	"github.com/sealdrop/sealdrop/internal/apperr"
)

// SecurityConfig holds configuration for security headers.
type SecurityConfig struct {
	// HSTS adds Strict-Transport-Security. Enable only when served over TLS.
	HSTS bool
}

// Security returns a middleware that applies security headers to all responses.
//
// Headers applied:
//   - Strict-Transport-Security (HSTS) - only when enabled
//   - X-Content-Type-Options: nosniff
//   - X-Frame-Options: DENY
//   - Referrer-Policy: no-referrer
//   - Content-Security-Policy: minimal policy for API responses
//   - Cross-Origin-Opener-Policy and Cross-Origin-Resource-Policy: same-origin
//   - Cache-Control: no-store, since responses carry tokens and file data
func Security(cfg SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=(), usb=()")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Cross-Origin-Resource-Policy", "same-origin")

			// max-age=31536000 = 1 year
			if cfg.HSTS {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			h.Set("Cache-Control", "no-store")

			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodySize returns a middleware that limits request body size.
// A declared Content-Length over the limit is rejected up front; streamed
// bodies fail on read with *http.MaxBytesError.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeError(w, apperr.PayloadTooLarge, "Request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}
